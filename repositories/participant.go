//go:generate go run go.uber.org/mock/mockgen -source=participant.go -destination=../mocks/mock_participant_repository.go -package=mocks
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
)

const (
	participantPrefix   = "participant:"
	participantUIDIndex = "idx:participant:uid:"
)

type IParticipantRepository interface {
	CreateParticipant(ctx context.Context, p domain.Participant) (domain.Participant, error)
	GetParticipant(ctx context.Context, projectID, id string) (domain.Participant, error)
	GetParticipantByUID(ctx context.Context, projectID, uid string) (domain.Participant, error)
	ListParticipants(ctx context.Context, projectID string, page domain.Page) ([]domain.Participant, error)
	CountParticipants(ctx context.Context, projectID string) (int, error)
	DeleteParticipant(ctx context.Context, projectID, id string) error
}

type ParticipantRepository struct {
	db  *badger.DB
	log *slog.Logger
}

func NewParticipantRepository(db *badger.DB, log *slog.Logger) *ParticipantRepository {
	return &ParticipantRepository{db: db, log: log}
}

type DiskParticipant struct {
	ID             string `cbor:"id"`
	ProjectID      string `cbor:"project_id"`
	ParticipantUID string `cbor:"participant_uid"`
	DisplayName    string `cbor:"display_name"`
	CreatedAt      int64  `cbor:"created_at"`
}

func participantKey(projectID, id string) string {
	return fmt.Sprintf("%s%s:%s", participantPrefix, projectID, id)
}

func participantUIDKey(projectID, uid string) string {
	return fmt.Sprintf("%s%s:%s", participantUIDIndex, projectID, uid)
}

// CreateParticipant registers p under its project. The (project, uid) index
// is checked inside the transaction: when two callers race, the loser's
// retry observes the winner's index entry and fails as a duplicate.
func (r *ParticipantRepository) CreateParticipant(ctx context.Context, p domain.Participant) (domain.Participant, error) {
	participant := DiskParticipant{
		ID:             uuid.New().String(),
		ProjectID:      p.ProjectID,
		ParticipantUID: p.ParticipantUID,
		DisplayName:    p.DisplayName,
		CreatedAt:      time.Now().UTC().UnixNano(),
	}

	err := update(ctx, r.db, uniqueInsertRetry, func(txn *badger.Txn) error {
		uidKey := participantUIDKey(participant.ProjectID, participant.ParticipantUID)
		taken, err := exists(txn, uidKey)
		if err != nil {
			return err
		}
		if taken {
			return errors.ErrDuplicateParticipant
		}
		if err = set(txn, participantKey(participant.ProjectID, participant.ID), participant); err != nil {
			return err
		}
		return txn.Set([]byte(uidKey), []byte(participant.ID))
	})
	if err != nil {
		return domain.Participant{}, storageError(err)
	}
	r.log.Debug("Participant created",
		"project_id", participant.ProjectID, "participant_id", participant.ID)
	return toParticipant(participant), nil
}

func (r *ParticipantRepository) GetParticipant(ctx context.Context, projectID, id string) (domain.Participant, error) {
	var participant DiskParticipant
	err := view(ctx, r.db, func(txn *badger.Txn) error {
		return loadParticipant(txn, projectID, id, &participant)
	})
	if err != nil {
		return domain.Participant{}, storageError(err)
	}
	return toParticipant(participant), nil
}

func (r *ParticipantRepository) GetParticipantByUID(ctx context.Context, projectID, uid string) (domain.Participant, error) {
	var participant DiskParticipant
	err := view(ctx, r.db, func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(participantUIDKey(projectID, uid)))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return errors.ErrNoSuchParticipant
		}
		if err != nil {
			return err
		}
		id, err := item.ValueCopy(nil)
		if err != nil {
			return err
		}
		return loadParticipant(txn, projectID, string(id), &participant)
	})
	if err != nil {
		return domain.Participant{}, storageError(err)
	}
	return toParticipant(participant), nil
}

// ListParticipants returns one page of a project's participants, oldest first.
func (r *ParticipantRepository) ListParticipants(ctx context.Context, projectID string, page domain.Page) ([]domain.Participant, error) {
	var all []domain.Participant
	err := view(ctx, r.db, func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefix := []byte(participantPrefix + projectID + ":")
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var participant DiskParticipant
			err := it.Item().Value(func(val []byte) error {
				return unmarshal(val, &participant)
			})
			if err != nil {
				return err
			}
			all = append(all, toParticipant(participant))
		}
		return nil
	})
	if err != nil {
		return nil, storageError(err)
	}

	sort.Slice(all, func(i, j int) bool {
		if all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].ID < all[j].ID
		}
		return all[i].CreatedAt.Before(all[j].CreatedAt)
	})
	start, end := page.Window(len(all))
	return all[start:end], nil
}

func (r *ParticipantRepository) CountParticipants(ctx context.Context, projectID string) (int, error) {
	count := 0
	err := view(ctx, r.db, func(txn *badger.Txn) error {
		count = len(keysWithPrefix(txn, participantPrefix+projectID+":"))
		return nil
	})
	if err != nil {
		return 0, storageError(err)
	}
	return count, nil
}

// DeleteParticipant removes the participant and frees its uid. Chats and
// messages are kept for the admin's history.
func (r *ParticipantRepository) DeleteParticipant(ctx context.Context, projectID, id string) error {
	err := update(ctx, r.db, maxConflictRetries, func(txn *badger.Txn) error {
		var participant DiskParticipant
		if err := loadParticipant(txn, projectID, id, &participant); err != nil {
			return err
		}
		if err := txn.Delete([]byte(participantKey(projectID, id))); err != nil {
			return err
		}
		return txn.Delete([]byte(participantUIDKey(projectID, participant.ParticipantUID)))
	})
	return storageError(err)
}

func loadParticipant(txn *badger.Txn, projectID, id string, out *DiskParticipant) error {
	err := get(txn, participantKey(projectID, id), out)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return errors.ErrNoSuchParticipant
	}
	return err
}

func toParticipant(d DiskParticipant) domain.Participant {
	return domain.Participant{
		ID:             d.ID,
		ProjectID:      d.ProjectID,
		ParticipantUID: d.ParticipantUID,
		DisplayName:    d.DisplayName,
		CreatedAt:      fromNanos(d.CreatedAt),
	}
}
