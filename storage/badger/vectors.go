package badger

import (
	"context"
	"fmt"
	"slices"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/docindex/core"
	"github.com/poiesic/docindex/storage"
)

// VectorIndex implements storage.VectorIndex on BadgerDB.
//
// Records are keyed by chunk ID, so upserting a record that already exists
// overwrites it in place.
type VectorIndex struct {
	backend *Backend
}

var _ storage.VectorIndex = (*VectorIndex)(nil)

// NewVectorIndex creates a VectorIndex on the given backend.
func NewVectorIndex(backend *Backend) (storage.VectorIndex, error) {
	if backend == nil {
		return nil, fmt.Errorf("backend is required")
	}
	return &VectorIndex{backend: backend}, nil
}

// Upsert writes records keyed by ID, overwriting existing entries.
func (v *VectorIndex) Upsert(ctx context.Context, records ...*core.VectorRecord) error {
	if v.backend.IsClosed() {
		return storage.ErrStorageClosed
	}
	return v.backend.WithTx(func(tx *badger.Txn) error {
		for _, record := range records {
			if record.ID == "" {
				return fmt.Errorf("%w: missing record ID", storage.ErrInvalidRecord)
			}
			if err := ctx.Err(); err != nil {
				return err
			}
			key := makeVectorRecordKey(record.ID)
			if err := tx.Set(key, storage.MarshalVectorRecord(record)); err != nil {
				return err
			}
		}
		return nil
	}, true)
}

// FindSimilar scans all stored records, scoring each against vector with a
// dot product. Vectors from the embedding providers are normalized, so the
// dot product equals cosine similarity.
func (v *VectorIndex) FindSimilar(ctx context.Context, vector []float32, filter storage.VectorFilter, limit int) ([]*storage.VectorMatch, error) {
	if v.backend.IsClosed() {
		return nil, storage.ErrStorageClosed
	}

	var results []*storage.VectorMatch

	err := v.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(vectorRecordPrefix)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}

			var record *core.VectorRecord
			err := iter.Item().Value(func(val []byte) error {
				var err error
				record, err = storage.UnmarshalVectorRecord(val)
				return err
			})
			if err != nil {
				return err
			}
			if record == nil || len(record.Values) == 0 {
				continue
			}
			if !filter.Matches(record.Metadata) {
				continue
			}

			results = append(results, &storage.VectorMatch{
				Record: record,
				Score:  dotProduct(vector, record.Values),
			})
		}

		return nil
	}, false)

	if err != nil {
		return nil, err
	}

	// Sort by similarity descending
	slices.SortFunc(results, func(a, b *storage.VectorMatch) int {
		if a.Score > b.Score {
			return -1
		}
		if a.Score < b.Score {
			return 1
		}
		return 0
	})

	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}

	return results, nil
}

// Count returns the number of stored records matching filter.
func (v *VectorIndex) Count(ctx context.Context, filter storage.VectorFilter) (int, error) {
	if v.backend.IsClosed() {
		return 0, storage.ErrStorageClosed
	}

	count := 0
	err := v.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(vectorRecordPrefix)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			if filter == (storage.VectorFilter{}) {
				count++
				continue
			}
			err := iter.Item().Value(func(val []byte) error {
				record, err := storage.UnmarshalVectorRecord(val)
				if err != nil {
					return err
				}
				if filter.Matches(record.Metadata) {
					count++
				}
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	}, false)
	if err != nil {
		return 0, err
	}
	return count, nil
}

// Close is a no-op; the shared backend owns the database handle.
func (v *VectorIndex) Close() error {
	return nil
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
