package store

import (
	"errors"
	"fmt"

	"github.com/lichess-org/lila-openingexplorer/internal/apperr"
	"github.com/lichess-org/lila-openingexplorer/internal/kvstore"
	"github.com/lichess-org/lila-openingexplorer/internal/model"
	"github.com/lichess-org/lila-openingexplorer/internal/pack"
)

// MasterStore is the single position-hash -> model.MasterEntry store for
// the high-rated master games database (no rating/speed partitioning).
type MasterStore struct {
	engine *kvstore.Engine
}

// OpenMasterStore opens (creating if necessary) the master position store
// rooted at dir.
func OpenMasterStore(dir string, opts kvstore.Options) (*MasterStore, error) {
	e, err := kvstore.Open(dir, opts)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindStoreIO, "open master store", err)
	}
	return &MasterStore{engine: e}, nil
}

// Get decodes the MasterEntry stored under hash, or a nil entry if absent.
func (s *MasterStore) Get(hash model.Hash) (*model.MasterEntry, error) {
	raw, err := s.engine.Get(hash.Bytes())
	if errors.Is(err, kvstore.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, apperr.Wrap(apperr.KindStoreIO, "get master position", err)
	}
	entry, err := model.DecodeMasterEntry(raw)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindDecode, fmt.Sprintf("decode master entry %s", hash), err)
	}
	return entry, nil
}

// Exists reports whether hash has a stored MasterEntry.
func (s *MasterStore) Exists(hash model.Hash) bool {
	return s.engine.Exists(hash.Bytes())
}

// RecordCount returns the number of distinct master positions stored.
func (s *MasterStore) RecordCount() uint64 {
	return s.engine.RecordCount()
}

// Merge atomically inserts ref's contribution to the move played at hash.
func (s *MasterStore) Merge(hash model.Hash, ref model.GameRef, move pack.MoveToken) error {
	err := s.engine.Update(hash.Bytes(), func(old []byte, found bool) ([]byte, bool, error) {
		entry := model.NewMasterEntry()
		if found {
			decoded, err := model.DecodeMasterEntry(old)
			if err != nil {
				return nil, false, apperr.Wrap(apperr.KindDecode, fmt.Sprintf("decode master entry %s", hash), err)
			}
			entry = decoded
		}
		entry.InsertRef(ref, move)
		return entry.Encode(), true, nil
	})
	if err != nil {
		return apperr.Wrap(apperr.KindStoreIO, "merge master position", err)
	}
	return nil
}

// Subtract reverses a prior Merge, used to correct a single previously
// imported master game. If the resulting entry is empty, the record is
// removed rather than written empty.
func (s *MasterStore) Subtract(hash model.Hash, ref model.GameRef, move pack.MoveToken) error {
	err := s.engine.Update(hash.Bytes(), func(old []byte, found bool) ([]byte, bool, error) {
		if !found {
			return nil, false, nil
		}
		entry, err := model.DecodeMasterEntry(old)
		if err != nil {
			return nil, false, apperr.Wrap(apperr.KindDecode, fmt.Sprintf("decode master entry %s", hash), err)
		}
		entry.SubtractRef(ref, move)
		if entry.IsEmpty() {
			return nil, false, nil
		}
		return entry.Encode(), true, nil
	})
	if err != nil {
		return apperr.Wrap(apperr.KindStoreIO, "subtract master position", err)
	}
	return nil
}

// Close flushes buffered writes and releases the underlying file handles.
func (s *MasterStore) Close() error {
	return s.engine.Close()
}
