package badger

import (
	"context"
	"encoding/binary"
	"fmt"
	"log/slog"
	"os"
	"slices"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/dgraph-io/badger/v4/options"
	"github.com/poiesic/domicil/core"
	"github.com/poiesic/domicil/storage"
)

// Index wraps a BadgerDB instance and implements storage.VectorIndex.
type Index struct {
	db     *badger.DB
	logger *slog.Logger
}

var _ storage.VectorIndex = (*Index)(nil)

// badgerLoggerAdapter adapts slog.Logger to badger.Logger interface.
type badgerLoggerAdapter struct {
	logger *slog.Logger
}

var _ badger.Logger = (*badgerLoggerAdapter)(nil)

func (bl *badgerLoggerAdapter) Errorf(msg string, items ...any) {
	bl.logger.Error(fmt.Sprintf(msg, items...))
}

func (bl *badgerLoggerAdapter) Warningf(msg string, items ...any) {
	bl.logger.Warn(fmt.Sprintf(msg, items...))
}

func (bl *badgerLoggerAdapter) Infof(msg string, items ...any) {
	bl.logger.Info(fmt.Sprintf(msg, items...))
}

func (bl *badgerLoggerAdapter) Debugf(msg string, items ...any) {
	bl.logger.Debug(fmt.Sprintf(msg, items...))
}

// OpenIndex opens a BadgerDB vector index at the specified path.
// Creates the directory if it doesn't exist.
func OpenIndex(filePath string, inMemory bool) (*Index, error) {
	var opts badger.Options

	if inMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		info, err := os.Stat(filePath)
		if err != nil {
			if os.IsNotExist(err) {
				if err := os.MkdirAll(filePath, 0755); err != nil {
					return nil, err
				}
				info, err = os.Stat(filePath)
				if err != nil {
					return nil, err
				}
			} else {
				return nil, err
			}
		}
		if !info.IsDir() {
			return nil, fmt.Errorf("%s is not a directory", filePath)
		}
		opts = badger.DefaultOptions(filePath)
	}

	opts.Logger = &badgerLoggerAdapter{logger: slog.Default()}
	opts.Compression = options.None

	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}

	return &Index{
		db:     db,
		logger: slog.Default().With("component", "badger-index"),
	}, nil
}

// Close closes the BadgerDB database.
func (i *Index) Close() error {
	return i.db.Close()
}

// withTx executes a function within a BadgerDB transaction.
// The transaction is automatically discarded if fn returns an error.
func (i *Index) withTx(fn func(tx *badger.Txn) error, isWrite bool) error {
	tx := i.db.NewTransaction(isWrite)
	defer tx.Discard()
	if err := fn(tx); err != nil {
		return err
	}
	if isWrite {
		return tx.Commit()
	}
	return nil
}

// Upsert inserts or replaces index entries by listing ID.
func (i *Index) Upsert(ctx context.Context, entries ...core.VectorEntry) error {
	if i.db.IsClosed() {
		return storage.ErrStorageClosed
	}
	return i.withTx(func(tx *badger.Txn) error {
		for idx := range entries {
			entry := &entries[idx]
			if entry.ListingID == "" {
				return fmt.Errorf("%w: entry without listing id", storage.ErrInvalidQuery)
			}
			if entry.UpdatedAt.IsZero() {
				entry.UpdatedAt = time.Now().UTC()
			}
			if err := tx.Set(makeVectorEntryKey(entry.ListingID), storage.MarshalVectorEntry(entry)); err != nil {
				return err
			}
		}
		return nil
	}, true)
}

// Delete removes index entries by listing ID. Missing IDs are ignored.
func (i *Index) Delete(ctx context.Context, ids ...string) error {
	if i.db.IsClosed() {
		return storage.ErrStorageClosed
	}
	return i.withTx(func(tx *badger.Txn) error {
		for _, id := range ids {
			if err := tx.Delete(makeVectorEntryKey(id)); err != nil {
				return err
			}
		}
		return nil
	}, true)
}

// NearestNeighbors returns up to k entries with cosine similarity
// >= minSimilarity, ordered by similarity descending. Entries are stored
// unit-length, so the dot product is the cosine similarity.
func (i *Index) NearestNeighbors(ctx context.Context, vector []float32, k int, minSimilarity float64) ([]storage.VectorMatch, error) {
	if i.db.IsClosed() {
		return nil, storage.ErrStorageClosed
	}
	if len(vector) == 0 {
		return nil, fmt.Errorf("%w: empty query vector", storage.ErrInvalidQuery)
	}

	var results []storage.VectorMatch

	err := i.withTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(vectorEntryPrefix)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}

			item := iter.Item()

			var entry *core.VectorEntry
			err := item.Value(func(val []byte) error {
				var err error
				entry, err = storage.UnmarshalVectorEntry(val)
				return err
			})
			if err != nil {
				return err
			}
			if entry == nil || len(entry.Vector) == 0 {
				continue
			}

			similarity := float64(dotProduct(vector, entry.Vector))
			if similarity >= minSimilarity {
				results = append(results, storage.VectorMatch{
					Entry: *entry,
					Score: similarity,
				})
			}
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}

	slices.SortFunc(results, func(a, b storage.VectorMatch) int {
		if a.Score > b.Score {
			return -1
		}
		if a.Score < b.Score {
			return 1
		}
		return 0
	})

	if k > 0 && len(results) > k {
		results = results[:k]
	}
	return results, nil
}

// Count returns the number of indexed entries.
func (i *Index) Count(ctx context.Context) (int, error) {
	if i.db.IsClosed() {
		return 0, storage.ErrStorageClosed
	}
	count := 0
	err := i.withTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(vectorEntryPrefix)
		opts.PrefetchValues = false
		iter := tx.NewIterator(opts)
		defer iter.Close()
		for iter.Rewind(); iter.Valid(); iter.Next() {
			count++
		}
		return nil
	}, false)
	return count, err
}

// LastSyncedAt returns the watermark written by the sync job, or the zero
// time if no sync has completed yet.
func (i *Index) LastSyncedAt(ctx context.Context) (time.Time, error) {
	if i.db.IsClosed() {
		return time.Time{}, storage.ErrStorageClosed
	}
	var t time.Time
	err := i.withTx(func(tx *badger.Txn) error {
		item, err := tx.Get([]byte(syncWatermarkKey))
		if err == badger.ErrKeyNotFound {
			return nil
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			if len(val) != 8 {
				return fmt.Errorf("%w: watermark value", storage.ErrSerializationFailed)
			}
			t = time.UnixMicro(int64(binary.BigEndian.Uint64(val))).UTC()
			return nil
		})
	}, false)
	return t, err
}

// SetLastSyncedAt records the sync watermark.
func (i *Index) SetLastSyncedAt(ctx context.Context, t time.Time) error {
	if i.db.IsClosed() {
		return storage.ErrStorageClosed
	}
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, uint64(t.UnixMicro()))
	return i.withTx(func(tx *badger.Txn) error {
		return tx.Set([]byte(syncWatermarkKey), buf)
	}, true)
}

// dotProduct calculates the dot product of two vectors.
func dotProduct(a, b []float32) float32 {
	var sum float32
	minLen := len(a)
	if len(b) < minLen {
		minLen = len(b)
	}
	for i := 0; i < minLen; i++ {
		sum += a[i] * b[i]
	}
	return sum
}
