//go:generate go run go.uber.org/mock/mockgen -source=chat.go -destination=../mocks/mock_chat_repository.go -package=mocks
package repositories

import (
	"chat-desk/domain"
	"chat-desk/errors"
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"github.com/samber/lo"
)

const (
	chatPrefix           = "chat:"
	chatPairIndex        = "idx:chat:pair:"
	chatAdminIndex       = "idx:chat:admin:"
	chatProjectIndex     = "idx:chat:project:"
	chatParticipantIndex = "idx:chat:participant:"
)

type IChatRepository interface {
	// GetOrCreateChat returns the chat of the triple, creating it when absent.
	// The boolean reports whether this call created it.
	GetOrCreateChat(ctx context.Context, projectID, adminID, participantID string) (domain.Chat, bool, error)
	GetChat(ctx context.Context, id string) (domain.Chat, error)
	ListChatsForAdmin(ctx context.Context, adminID string, filter domain.ChatFilter) ([]domain.Chat, error)
	ListChatsForProject(ctx context.Context, projectID string) ([]domain.Chat, error)
	ListChatsForParticipant(ctx context.Context, projectID, participantID string) ([]domain.Chat, error)
	SetActive(ctx context.Context, id string, active bool) (domain.Chat, error)
}

type ChatRepository struct {
	db  *badger.DB
	log *slog.Logger
}

func NewChatRepository(db *badger.DB, log *slog.Logger) *ChatRepository {
	return &ChatRepository{db: db, log: log}
}

type DiskChat struct {
	ID            string `cbor:"id"`
	ProjectID     string `cbor:"project_id"`
	AdminID       string `cbor:"admin_id"`
	ParticipantID string `cbor:"participant_id"`
	IsActive      bool   `cbor:"is_active"`
	UnreadCount   int    `cbor:"unread_count"`
	CreatedAt     int64  `cbor:"created_at"`
	UpdatedAt     int64  `cbor:"updated_at"`
}

func chatKey(id string) string { return chatPrefix + id }

func chatPairKey(projectID, adminID, participantID string) string {
	return fmt.Sprintf("%s%s:%s:%s", chatPairIndex, projectID, adminID, participantID)
}

// GetOrCreateChat looks the triple up in the pair index and inserts the chat
// with its indexes in the same transaction when it is missing. Two racing
// callers conflict on the pair key; the loser retries once and finds the
// winner's chat.
func (r *ChatRepository) GetOrCreateChat(ctx context.Context, projectID, adminID, participantID string) (domain.Chat, bool, error) {
	var (
		chat    DiskChat
		created bool
	)
	err := update(ctx, r.db, uniqueInsertRetry, func(txn *badger.Txn) error {
		created = false
		pairKey := chatPairKey(projectID, adminID, participantID)

		item, err := txn.Get([]byte(pairKey))
		if err == nil {
			id, err := item.ValueCopy(nil)
			if err != nil {
				return err
			}
			return loadChat(txn, string(id), &chat)
		}
		if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}

		now := time.Now().UTC().UnixNano()
		chat = DiskChat{
			ID:            uuid.New().String(),
			ProjectID:     projectID,
			AdminID:       adminID,
			ParticipantID: participantID,
			IsActive:      true,
			CreatedAt:     now,
			UpdatedAt:     now,
		}
		if err = set(txn, chatKey(chat.ID), chat); err != nil {
			return err
		}
		indexes := []string{
			pairKey,
			fmt.Sprintf("%s%s:%s", chatAdminIndex, adminID, chat.ID),
			fmt.Sprintf("%s%s:%s", chatProjectIndex, projectID, chat.ID),
			fmt.Sprintf("%s%s:%s:%s", chatParticipantIndex, projectID, participantID, chat.ID),
		}
		for i, key := range indexes {
			var val []byte
			if i == 0 {
				val = []byte(chat.ID)
			}
			if err = txn.Set([]byte(key), val); err != nil {
				return err
			}
		}
		created = true
		return nil
	})
	if err != nil {
		return domain.Chat{}, false, storageError(err)
	}
	if created {
		r.log.Debug("Chat created", "chat_id", chat.ID, "project_id", projectID)
	}
	return toChat(chat), created, nil
}

func (r *ChatRepository) GetChat(ctx context.Context, id string) (domain.Chat, error) {
	var chat DiskChat
	err := view(ctx, r.db, func(txn *badger.Txn) error {
		return loadChat(txn, id, &chat)
	})
	if err != nil {
		return domain.Chat{}, storageError(err)
	}
	return toChat(chat), nil
}

// ListChatsForAdmin returns the admin's chats matching filter, most recently
// updated first, windowed by filter.Page.
func (r *ChatRepository) ListChatsForAdmin(ctx context.Context, adminID string, filter domain.ChatFilter) ([]domain.Chat, error) {
	chats, err := r.listByIndex(ctx, chatAdminIndex+adminID+":")
	if err != nil {
		return nil, err
	}
	chats = lo.Filter(chats, func(c domain.Chat, _ int) bool {
		return filter.Match(c)
	})
	start, end := filter.Page.Window(len(chats))
	return chats[start:end], nil
}

func (r *ChatRepository) ListChatsForProject(ctx context.Context, projectID string) ([]domain.Chat, error) {
	return r.listByIndex(ctx, chatProjectIndex+projectID+":")
}

func (r *ChatRepository) ListChatsForParticipant(ctx context.Context, projectID, participantID string) ([]domain.Chat, error) {
	return r.listByIndex(ctx, fmt.Sprintf("%s%s:%s:", chatParticipantIndex, projectID, participantID))
}

// SetActive toggles the chat's active flag and bumps updatedAt when it changes.
func (r *ChatRepository) SetActive(ctx context.Context, id string, active bool) (domain.Chat, error) {
	var chat DiskChat
	err := update(ctx, r.db, maxConflictRetries, func(txn *badger.Txn) error {
		if err := loadChat(txn, id, &chat); err != nil {
			return err
		}
		if chat.IsActive == active {
			return nil
		}
		chat.IsActive = active
		chat.UpdatedAt = time.Now().UTC().UnixNano()
		return set(txn, chatKey(id), chat)
	})
	if err != nil {
		return domain.Chat{}, storageError(err)
	}
	return toChat(chat), nil
}

func (r *ChatRepository) listByIndex(ctx context.Context, prefix string) ([]domain.Chat, error) {
	var chats []domain.Chat
	err := view(ctx, r.db, func(txn *badger.Txn) error {
		for _, id := range keysWithPrefix(txn, prefix) {
			var chat DiskChat
			if err := loadChat(txn, id, &chat); err != nil {
				return err
			}
			chats = append(chats, toChat(chat))
		}
		return nil
	})
	if err != nil {
		return nil, storageError(err)
	}
	sort.SliceStable(chats, func(i, j int) bool {
		return chats[i].UpdatedAt.After(chats[j].UpdatedAt)
	})
	return chats, nil
}

func loadChat(txn *badger.Txn, id string, out *DiskChat) error {
	err := get(txn, chatKey(id), out)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return errors.ErrChatNotFound
	}
	return err
}

func saveChat(txn *badger.Txn, chat DiskChat) error {
	return set(txn, chatKey(chat.ID), chat)
}

func toChat(d DiskChat) domain.Chat {
	return domain.Chat{
		ID:            d.ID,
		ProjectID:     d.ProjectID,
		AdminID:       d.AdminID,
		ParticipantID: d.ParticipantID,
		IsActive:      d.IsActive,
		UnreadCount:   d.UnreadCount,
		CreatedAt:     fromNanos(d.CreatedAt),
		UpdatedAt:     fromNanos(d.UpdatedAt),
	}
}
