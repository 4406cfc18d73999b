//go:generate go run go.uber.org/mock/mockgen -source=admin.go -destination=../mocks/mock_admin_repository.go -package=mocks
package repositories

import (
	"chat-desk/domain"
	"chat-desk/errors"
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
)

const (
	adminPrefix     = "admin:"
	adminEmailIndex = "idx:admin:email:"
)

type IAdminRepository interface {
	CreateAdmin(ctx context.Context, email, passwordHash string) (domain.Admin, error)
	GetAdmin(ctx context.Context, id string) (domain.Admin, error)
	GetAdminByEmail(ctx context.Context, email string) (domain.Admin, error)
	SetPresence(ctx context.Context, id string, online bool, at time.Time) error
	ResetPresence(ctx context.Context, at time.Time) (int, error)
}

type AdminRepository struct {
	db  *badger.DB
	log *slog.Logger
}

func NewAdminRepository(db *badger.DB, log *slog.Logger) *AdminRepository {
	return &AdminRepository{db: db, log: log}
}

// DiskAdmin is the stored form of domain.Admin.
type DiskAdmin struct {
	ID           string `cbor:"id"`
	Email        string `cbor:"email"`
	PasswordHash string `cbor:"password_hash"`
	IsOnline     bool   `cbor:"is_online"`
	LastSeen     int64  `cbor:"last_seen"`
	CreatedAt    int64  `cbor:"created_at"`
}

func adminKey(id string) string { return adminPrefix + id }

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// CreateAdmin persists a new admin. Emails are unique, case insensitive.
func (r *AdminRepository) CreateAdmin(ctx context.Context, email, passwordHash string) (domain.Admin, error) {
	email = normalizeEmail(email)
	admin := DiskAdmin{
		ID:           uuid.New().String(),
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now().UTC().UnixNano(),
	}

	err := update(ctx, r.db, uniqueInsertRetry, func(txn *badger.Txn) error {
		taken, err := exists(txn, adminEmailIndex+email)
		if err != nil {
			return err
		}
		if taken {
			return errors.ErrUserAlreadyExists
		}
		if err = set(txn, adminKey(admin.ID), admin); err != nil {
			return err
		}
		return txn.Set([]byte(adminEmailIndex+email), []byte(admin.ID))
	})
	if err != nil {
		return domain.Admin{}, storageError(err)
	}
	r.log.Debug("Admin created", "admin_id", admin.ID)
	return toAdmin(admin), nil
}

func (r *AdminRepository) GetAdmin(ctx context.Context, id string) (domain.Admin, error) {
	var admin DiskAdmin
	err := view(ctx, r.db, func(txn *badger.Txn) error {
		return loadAdmin(txn, id, &admin)
	})
	if err != nil {
		return domain.Admin{}, storageError(err)
	}
	return toAdmin(admin), nil
}

func (r *AdminRepository) GetAdminByEmail(ctx context.Context, email string) (domain.Admin, error) {
	var admin DiskAdmin
	err := view(ctx, r.db, func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(adminEmailIndex + normalizeEmail(email)))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return errors.ErrAdminNotFound
		}
		if err != nil {
			return err
		}
		id, err := item.ValueCopy(nil)
		if err != nil {
			return err
		}
		return loadAdmin(txn, string(id), &admin)
	})
	if err != nil {
		return domain.Admin{}, storageError(err)
	}
	return toAdmin(admin), nil
}

// SetPresence flips the online flag. LastSeen is stamped when going offline.
func (r *AdminRepository) SetPresence(ctx context.Context, id string, online bool, at time.Time) error {
	err := update(ctx, r.db, maxConflictRetries, func(txn *badger.Txn) error {
		var admin DiskAdmin
		if err := loadAdmin(txn, id, &admin); err != nil {
			return err
		}
		admin.IsOnline = online
		if !online {
			admin.LastSeen = toNanos(at)
		}
		return set(txn, adminKey(id), admin)
	})
	return storageError(err)
}

// ResetPresence marks every admin offline. A crash leaves stale online flags
// behind, so this runs once at boot before connections are accepted.
func (r *AdminRepository) ResetPresence(ctx context.Context, at time.Time) (int, error) {
	reset := 0
	err := update(ctx, r.db, maxConflictRetries, func(txn *badger.Txn) error {
		reset = 0
		var stale []DiskAdmin

		it := txn.NewIterator(badger.DefaultIteratorOptions)
		prefix := []byte(adminPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var admin DiskAdmin
			err := it.Item().Value(func(val []byte) error {
				return unmarshal(val, &admin)
			})
			if err != nil {
				it.Close()
				return err
			}
			if admin.IsOnline {
				stale = append(stale, admin)
			}
		}
		it.Close()

		for _, admin := range stale {
			admin.IsOnline = false
			admin.LastSeen = toNanos(at)
			if err := set(txn, adminKey(admin.ID), admin); err != nil {
				return err
			}
			reset++
		}
		return nil
	})
	if err != nil {
		return 0, storageError(err)
	}
	return reset, nil
}

func loadAdmin(txn *badger.Txn, id string, out *DiskAdmin) error {
	err := get(txn, adminKey(id), out)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return errors.ErrAdminNotFound
	}
	return err
}

func toAdmin(d DiskAdmin) domain.Admin {
	return domain.Admin{
		ID:           d.ID,
		Email:        d.Email,
		PasswordHash: d.PasswordHash,
		IsOnline:     d.IsOnline,
		LastSeen:     fromNanosPtr(d.LastSeen),
		CreatedAt:    fromNanos(d.CreatedAt),
	}
}
