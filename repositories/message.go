//go:generate go run go.uber.org/mock/mockgen -source=message.go -destination=../mocks/mock_message_repository.go -package=mocks
package repositories

import (
	"chat-desk/domain"
	"chat-desk/errors"
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
)

const (
	messagePrefix    = "msg:"
	messageSequence  = "seq:message"
	sequenceLease    = 1000
	maxCursorDigits  = "99999999999999999999"
	seqDigitsPadding = 20
)

type IMessageRepository interface {
	// AppendMessage stores msg and bumps the chat's updatedAt (and unread
	// counter when bumpUnread is set) atomically.
	AppendMessage(ctx context.Context, msg domain.Message, bumpUnread bool) (domain.Message, domain.Chat, error)
	GetMessages(ctx context.Context, chatID string, cursor *string, limit int) ([]domain.Message, *string, error)
	// MarkRead flips every unread message not sent by reader and returns the
	// updated chat with the number of messages flipped.
	MarkRead(ctx context.Context, chatID string, reader domain.Role, at time.Time) (domain.Chat, int, error)
}

type MessageRepository struct {
	db  *badger.DB
	log *slog.Logger
	seq *badger.Sequence
}

// NewMessageRepository leases the message sequence. Close releases it.
func NewMessageRepository(db *badger.DB, log *slog.Logger) (*MessageRepository, error) {
	seq, err := db.GetSequence([]byte(messageSequence), sequenceLease)
	if err != nil {
		return nil, errors.Persistence(err)
	}
	return &MessageRepository{db: db, log: log, seq: seq}, nil
}

func (m *MessageRepository) Close() error {
	return m.seq.Release()
}

// DiskMessage is the stored form of domain.Message.
type DiskMessage struct {
	ID         string         `cbor:"id"`
	ChatID     string         `cbor:"chat_id"`
	SenderID   string         `cbor:"sender_id"`
	SenderRole string         `cbor:"sender_role"`
	Content    string         `cbor:"content"`
	Type       string         `cbor:"type"`
	Metadata   map[string]any `cbor:"metadata,omitempty"`
	Read       bool           `cbor:"read"`
	ReadAt     int64          `cbor:"read_at"`
	Seq        uint64         `cbor:"seq"`
	CreatedAt  int64          `cbor:"created_at"`
}

// messageKey is formatted as "msg:{chat_id}:{seq}" with the sequence padded
// to 20 digits so lexicographical order is persistence order.
func messageKey(chatID string, seq uint64) string {
	return fmt.Sprintf("%s%s:%0*d", messagePrefix, chatID, seqDigitsPadding, seq)
}

func (m *MessageRepository) AppendMessage(ctx context.Context, msg domain.Message, bumpUnread bool) (domain.Message, domain.Chat, error) {
	next, err := m.seq.Next()
	if err != nil {
		return domain.Message{}, domain.Chat{}, errors.Persistence(err)
	}

	msg.ID = uuid.New().String()
	msg.Seq = next + 1
	msg.CreatedAt = time.Now().UTC().Round(0)
	msg.Read = false
	msg.ReadAt = nil
	disk := fromMessage(msg)

	var chat DiskChat
	err = update(ctx, m.db, maxConflictRetries, func(txn *badger.Txn) error {
		if err := loadChat(txn, msg.ChatID, &chat); err != nil {
			return err
		}
		if !chat.IsActive {
			return errors.ErrChatInactive
		}
		if err := set(txn, messageKey(msg.ChatID, msg.Seq), disk); err != nil {
			return err
		}
		chat.UpdatedAt = disk.CreatedAt
		if bumpUnread {
			chat.UnreadCount++
		}
		return saveChat(txn, chat)
	})
	if err != nil {
		return domain.Message{}, domain.Chat{}, storageError(err)
	}
	return msg, toChat(chat), nil
}

// GetMessages pages through a chat newest first. The cursor is the padded
// sequence of the last message returned; a nil next cursor means the history
// is exhausted.
func (m *MessageRepository) GetMessages(ctx context.Context, chatID string, cursor *string, limit int) ([]domain.Message, *string, error) {
	var (
		messages []domain.Message
		lastKey  string
		hasMore  bool
	)
	err := view(ctx, m.db, func(txn *badger.Txn) error {
		prefixStr := messagePrefix + chatID + ":"
		prefix := []byte(prefixStr)
		options := badger.DefaultIteratorOptions
		options.Reverse = true
		it := txn.NewIterator(options)
		defer it.Close()

		var seekKey []byte
		switch cursor {
		case nil:
			seekKey = []byte(prefixStr + maxCursorDigits)
		default:
			seekKey = []byte(prefixStr + *cursor)
		}

		it.Seek(seekKey)
		if cursor != nil && it.ValidForPrefix(prefix) && string(it.Item().Key()) == string(seekKey) {
			it.Next()
		}

		for ; it.ValidForPrefix(prefix); it.Next() {
			if len(messages) == limit {
				hasMore = true
				break
			}
			item := it.Item()
			lastKey = string(item.Key()[len(prefix):])
			var disk DiskMessage
			err := item.Value(func(val []byte) error {
				return unmarshal(val, &disk)
			})
			if err != nil {
				return err
			}
			messages = append(messages, toMessage(disk))
		}
		return nil
	})
	if err != nil {
		return nil, nil, storageError(err)
	}
	if !hasMore {
		return messages, nil, nil
	}
	return messages, &lastKey, nil
}

// MarkRead walks the chat backwards and stops at the first counterpart
// message already read: everything older was read by an earlier call.
func (m *MessageRepository) MarkRead(ctx context.Context, chatID string, reader domain.Role, at time.Time) (domain.Chat, int, error) {
	var (
		chat    DiskChat
		flipped int
	)
	readAt := toNanos(at)
	err := update(ctx, m.db, maxConflictRetries, func(txn *badger.Txn) error {
		flipped = 0
		if err := loadChat(txn, chatID, &chat); err != nil {
			return err
		}

		var pending []DiskMessage
		prefixStr := messagePrefix + chatID + ":"
		prefix := []byte(prefixStr)
		options := badger.DefaultIteratorOptions
		options.Reverse = true
		it := txn.NewIterator(options)
		for it.Seek([]byte(prefixStr + maxCursorDigits)); it.ValidForPrefix(prefix); it.Next() {
			var disk DiskMessage
			err := it.Item().Value(func(val []byte) error {
				return unmarshal(val, &disk)
			})
			if err != nil {
				it.Close()
				return err
			}
			if disk.SenderRole == string(reader) {
				continue
			}
			if disk.Read {
				break
			}
			pending = append(pending, disk)
		}
		it.Close()

		for _, disk := range pending {
			disk.Read = true
			disk.ReadAt = readAt
			if err := set(txn, messageKey(chatID, disk.Seq), disk); err != nil {
				return err
			}
		}
		flipped = len(pending)

		if reader == domain.RoleAdmin && chat.UnreadCount != 0 {
			chat.UnreadCount = 0
			return saveChat(txn, chat)
		}
		return nil
	})
	if err != nil {
		return domain.Chat{}, 0, storageError(err)
	}
	return toChat(chat), flipped, nil
}

func fromMessage(msg domain.Message) DiskMessage {
	return DiskMessage{
		ID:         msg.ID,
		ChatID:     msg.ChatID,
		SenderID:   msg.SenderID,
		SenderRole: string(msg.SenderRole),
		Content:    msg.Content,
		Type:       string(msg.Type),
		Metadata:   msg.Metadata,
		Read:       msg.Read,
		ReadAt:     toNanosPtr(msg.ReadAt),
		Seq:        msg.Seq,
		CreatedAt:  toNanos(msg.CreatedAt),
	}
}

func toMessage(d DiskMessage) domain.Message {
	return domain.Message{
		ID:         d.ID,
		ChatID:     d.ChatID,
		SenderID:   d.SenderID,
		SenderRole: domain.Role(d.SenderRole),
		Content:    d.Content,
		Type:       domain.MessageType(d.Type),
		Metadata:   d.Metadata,
		Read:       d.Read,
		ReadAt:     fromNanosPtr(d.ReadAt),
		Seq:        d.Seq,
		CreatedAt:  fromNanos(d.CreatedAt),
	}
}
