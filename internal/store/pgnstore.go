package store

import (
	"errors"

	"github.com/lichess-org/lila-openingexplorer/internal/apperr"
	"github.com/lichess-org/lila-openingexplorer/internal/kvstore"
)

// PgnStore is the string-keyed (by game id) auxiliary store holding
// zstd-compressed raw PGN text. Used by the master pipeline, where it is
// written last so its presence implies the game's plies were fully
// indexed, and serves PGN-fetch requests.
type PgnStore struct {
	engine *kvstore.Engine
	codec  *textCodec
}

// OpenPgnStore opens (creating if necessary) the PGN text store rooted at
// dir.
func OpenPgnStore(dir string, opts kvstore.Options) (*PgnStore, error) {
	e, err := kvstore.Open(dir, opts)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindStoreIO, "open pgn store", err)
	}
	codec, err := newTextCodec()
	if err != nil {
		e.Close()
		return nil, apperr.Wrap(apperr.KindStoreIO, "open pgn codec", err)
	}
	return &PgnStore{engine: e, codec: codec}, nil
}

// Get returns the PGN text stored for gameID.
func (s *PgnStore) Get(gameID string) (string, error) {
	raw, err := s.engine.Get([]byte(gameID))
	if errors.Is(err, kvstore.ErrNotFound) {
		return "", apperr.New(apperr.KindNotFound, "pgn not found")
	}
	if err != nil {
		return "", apperr.Wrap(apperr.KindStoreIO, "get pgn", err)
	}
	text, err := s.codec.decompress(raw)
	if err != nil {
		return "", apperr.Wrap(apperr.KindDecode, "decompress pgn", err)
	}
	return text, nil
}

// Exists reports whether gameID already has stored PGN text.
func (s *PgnStore) Exists(gameID string) bool {
	return s.engine.Exists([]byte(gameID))
}

// Store writes pgn under gameID only if no record exists yet, returning
// true if this call performed the write.
func (s *PgnStore) Store(gameID string, pgn string) (wrote bool, err error) {
	updateErr := s.engine.Update([]byte(gameID), func(old []byte, found bool) ([]byte, bool, error) {
		if found {
			wrote = false
			return old, true, nil
		}
		wrote = true
		return s.codec.compress(pgn), true, nil
	})
	if updateErr != nil {
		return false, apperr.Wrap(apperr.KindStoreIO, "store pgn", updateErr)
	}
	return wrote, nil
}

// Delete removes the PGN text for gameID, used when a master game is
// retracted.
func (s *PgnStore) Delete(gameID string) error {
	err := s.engine.Update([]byte(gameID), func(old []byte, found bool) ([]byte, bool, error) {
		return nil, false, nil
	})
	if err != nil {
		return apperr.Wrap(apperr.KindStoreIO, "delete pgn", err)
	}
	return nil
}

// RecordCount returns the number of distinct PGNs stored.
func (s *PgnStore) RecordCount() uint64 {
	return s.engine.RecordCount()
}

// Close flushes buffered writes and releases the underlying file handles.
func (s *PgnStore) Close() error {
	s.codec.close()
	return s.engine.Close()
}
