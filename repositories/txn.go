package repositories

import (
	"chat-desk/errors"
	"context"
	"time"

	"github.com/dgraph-io/badger/v4"
)

// maxConflictRetries bounds the optimistic retries of counter updates.
// Unique inserts use a single retry: the second attempt always observes the
// winner's index key.
const (
	maxConflictRetries = 8
	uniqueInsertRetry  = 1
)

// update runs fn in a read-write transaction and retries when badger reports
// that a concurrent commit touched a key fn read. fn must be idempotent.
func update(ctx context.Context, db *badger.DB, retries int, fn func(txn *badger.Txn) error) error {
	var err error
	for attempt := 0; attempt <= retries; attempt++ {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		err = db.Update(fn)
		if !errors.Is(err, badger.ErrConflict) {
			return err
		}
	}
	return err
}

func view(ctx context.Context, db *badger.DB, fn func(txn *badger.Txn) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return db.View(fn)
}

func get(txn *badger.Txn, key string, out any) error {
	item, err := txn.Get([]byte(key))
	if err != nil {
		return err
	}
	return item.Value(func(val []byte) error {
		return unmarshal(val, out)
	})
}

func set(txn *badger.Txn, key string, v any) error {
	data, err := marshal(v)
	if err != nil {
		return err
	}
	return txn.Set([]byte(key), data)
}

func exists(txn *badger.Txn, key string) (bool, error) {
	_, err := txn.Get([]byte(key))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, badger.ErrKeyNotFound):
		return false, nil
	default:
		return false, err
	}
}

// keysWithPrefix returns the suffix of every key under prefix, values are
// not fetched.
func keysWithPrefix(txn *badger.Txn, prefix string) []string {
	options := badger.DefaultIteratorOptions
	options.PrefetchValues = false
	it := txn.NewIterator(options)
	defer it.Close()

	var suffixes []string
	p := []byte(prefix)
	for it.Seek(p); it.ValidForPrefix(p); it.Next() {
		suffixes = append(suffixes, string(it.Item().Key()[len(p):]))
	}
	return suffixes
}

// storageError keeps domain sentinels intact and marks everything else as a
// persistence failure.
func storageError(err error) error {
	if err == nil {
		return nil
	}
	switch errors.KindOf(err) {
	case errors.KindInternal:
		return errors.Persistence(err)
	default:
		return err
	}
}

func toNanos(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixNano()
}

func fromNanos(n int64) time.Time {
	if n == 0 {
		return time.Time{}
	}
	return time.Unix(0, n).UTC()
}

func fromNanosPtr(n int64) *time.Time {
	if n == 0 {
		return nil
	}
	t := fromNanos(n)
	return &t
}

func toNanosPtr(t *time.Time) int64 {
	if t == nil {
		return 0
	}
	return toNanos(*t)
}
