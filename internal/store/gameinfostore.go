package store

import (
	"errors"

	"github.com/lichess-org/lila-openingexplorer/internal/apperr"
	"github.com/lichess-org/lila-openingexplorer/internal/kvstore"
	"github.com/lichess-org/lila-openingexplorer/internal/model"
)

// GameInfoStore is the string-keyed (by game id) auxiliary store holding a
// compact, zstd-compressed GameInfo record per indexed Lichess game. Its
// presence for a game id is the dedup invariant the importer relies on:
// because it is written last in a game's import, seeing the record implies
// every ply of that game was indexed.
type GameInfoStore struct {
	engine *kvstore.Engine
	codec  *textCodec
}

// OpenGameInfoStore opens (creating if necessary) the game-info store
// rooted at dir.
func OpenGameInfoStore(dir string, opts kvstore.Options) (*GameInfoStore, error) {
	e, err := kvstore.Open(dir, opts)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindStoreIO, "open game info store", err)
	}
	codec, err := newTextCodec()
	if err != nil {
		e.Close()
		return nil, apperr.Wrap(apperr.KindStoreIO, "open game info codec", err)
	}
	return &GameInfoStore{engine: e, codec: codec}, nil
}

// Get returns the GameInfo stored for gameID.
func (s *GameInfoStore) Get(gameID string) (model.GameInfo, error) {
	raw, err := s.engine.Get([]byte(gameID))
	if errors.Is(err, kvstore.ErrNotFound) {
		return model.GameInfo{}, apperr.New(apperr.KindNotFound, "game info not found")
	}
	if err != nil {
		return model.GameInfo{}, apperr.Wrap(apperr.KindStoreIO, "get game info", err)
	}
	text, err := s.codec.decompress(raw)
	if err != nil {
		return model.GameInfo{}, apperr.Wrap(apperr.KindDecode, "decompress game info", err)
	}
	info, err := model.DecodeGameInfo(text)
	if err != nil {
		return model.GameInfo{}, apperr.Wrap(apperr.KindDecode, "decode game info", err)
	}
	return info, nil
}

// Exists reports whether gameID already has a stored GameInfo.
func (s *GameInfoStore) Exists(gameID string) bool {
	return s.engine.Exists([]byte(gameID))
}

// Store writes info under gameID only if no record exists yet, returning
// true if this call performed the write ("first write wins"). A false
// return means a concurrent or prior call already stored this game id, and
// the caller must not perform the position-store merges that would
// otherwise double-count it.
func (s *GameInfoStore) Store(gameID string, info model.GameInfo) (wrote bool, err error) {
	updateErr := s.engine.Update([]byte(gameID), func(old []byte, found bool) ([]byte, bool, error) {
		if found {
			wrote = false
			return old, true, nil
		}
		wrote = true
		return s.codec.compress(info.Encode()), true, nil
	})
	if updateErr != nil {
		return false, apperr.Wrap(apperr.KindStoreIO, "store game info", updateErr)
	}
	return wrote, nil
}

// RecordCount returns the number of distinct games recorded.
func (s *GameInfoStore) RecordCount() uint64 {
	return s.engine.RecordCount()
}

// Close flushes buffered writes and releases the underlying file handles.
func (s *GameInfoStore) Close() error {
	s.codec.close()
	return s.engine.Close()
}
