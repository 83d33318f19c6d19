// Package store layers model.Entry/model.MasterEntry codecs and
// GameInfo/PGN text over internal/kvstore, giving each a merge/subtract
// contract that performs its read-modify-write atomically under the
// engine's per-key lock.
package store

import (
	"errors"
	"fmt"

	"github.com/lichess-org/lila-openingexplorer/internal/apperr"
	"github.com/lichess-org/lila-openingexplorer/internal/kvstore"
	"github.com/lichess-org/lila-openingexplorer/internal/model"
	"github.com/lichess-org/lila-openingexplorer/internal/pack"
)

// ErrNotFound is returned by Get/PGN/GameInfo lookups when the key has no
// live value. It is kvstore.ErrNotFound under a store-local name so
// callers don't need to import kvstore directly.
var ErrNotFound = kvstore.ErrNotFound

// EntryStore is the ordered position-hash -> model.Entry store for one
// chess variant's Lichess-rated games.
type EntryStore struct {
	variant model.Variant
	engine  *kvstore.Engine
}

// OpenEntryStore opens (creating if necessary) the position store for one
// variant, rooted at dir.
func OpenEntryStore(dir string, variant model.Variant, opts kvstore.Options) (*EntryStore, error) {
	e, err := kvstore.Open(dir, opts)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindStoreIO, "open position store", err)
	}
	return &EntryStore{variant: variant, engine: e}, nil
}

// Variant reports which chess variant this store holds.
func (s *EntryStore) Variant() model.Variant {
	return s.variant
}

// Get decodes the Entry stored under hash, or a nil Entry if the key is
// absent.
func (s *EntryStore) Get(hash model.Hash) (*model.Entry, error) {
	raw, err := s.engine.Get(hash.Bytes())
	if errors.Is(err, kvstore.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, apperr.Wrap(apperr.KindStoreIO, "get position", err)
	}
	entry, err := model.DecodeEntry(raw)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindDecode, fmt.Sprintf("decode entry %s", hash), err)
	}
	return entry, nil
}

// Exists reports whether hash has a stored Entry.
func (s *EntryStore) Exists(hash model.Hash) bool {
	return s.engine.Exists(hash.Bytes())
}

// RecordCount returns the number of distinct positions currently stored.
func (s *EntryStore) RecordCount() uint64 {
	return s.engine.RecordCount()
}

// Merge atomically inserts ref's contribution to the move played at hash:
// absent is treated as an empty Entry, the ref is inserted, and the result
// is re-encoded and written back under the engine's per-key lock.
func (s *EntryStore) Merge(hash model.Hash, ref model.GameRef, move pack.MoveToken) error {
	err := s.engine.Update(hash.Bytes(), func(old []byte, found bool) ([]byte, bool, error) {
		entry := model.NewEntry()
		if found {
			decoded, err := model.DecodeEntry(old)
			if err != nil {
				return nil, false, apperr.Wrap(apperr.KindDecode, fmt.Sprintf("decode entry %s", hash), err)
			}
			entry = decoded
		}
		entry.InsertRef(ref, move)
		return entry.Encode(), true, nil
	})
	if err != nil {
		return apperr.Wrap(apperr.KindStoreIO, "merge position", err)
	}
	return nil
}

// Subtract reverses a prior Merge. If the resulting Entry has no games
// left, the record is removed entirely rather than written empty.
func (s *EntryStore) Subtract(hash model.Hash, ref model.GameRef, move pack.MoveToken) error {
	err := s.engine.Update(hash.Bytes(), func(old []byte, found bool) ([]byte, bool, error) {
		if !found {
			return nil, false, nil
		}
		entry, err := model.DecodeEntry(old)
		if err != nil {
			return nil, false, apperr.Wrap(apperr.KindDecode, fmt.Sprintf("decode entry %s", hash), err)
		}
		entry.SubtractRef(ref, move)
		if entry.IsEmpty() {
			return nil, false, nil
		}
		return entry.Encode(), true, nil
	})
	if err != nil {
		return apperr.Wrap(apperr.KindStoreIO, "subtract position", err)
	}
	return nil
}

// Close flushes buffered writes and releases the underlying file handles.
func (s *EntryStore) Close() error {
	return s.engine.Close()
}
