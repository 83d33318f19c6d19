package store

import (
	"testing"

	"github.com/lichess-org/lila-openingexplorer/internal/apperr"
	"github.com/lichess-org/lila-openingexplorer/internal/kvstore"
	"github.com/lichess-org/lila-openingexplorer/internal/model"
)

func openTestGameInfoStore(t *testing.T) *GameInfoStore {
	t.Helper()
	s, err := OpenGameInfoStore(t.TempDir(), kvstore.Options{})
	if err != nil {
		t.Fatalf("OpenGameInfoStore: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestGameInfoStoreFirstWriteWins(t *testing.T) {
	s := openTestGameInfoStore(t)
	info := model.GameInfo{WhiteName: "a", WhiteRating: 2000, BlackName: "b", BlackRating: 2000, Year: 2024}

	wrote, err := s.Store("game0001", info)
	if err != nil {
		t.Fatalf("Store: %v", err)
	}
	if !wrote {
		t.Fatalf("first Store returned wrote=false")
	}

	other := model.GameInfo{WhiteName: "x", WhiteRating: 1000, BlackName: "y", BlackRating: 1000, Year: 1999}
	wrote, err = s.Store("game0001", other)
	if err != nil {
		t.Fatalf("Store (duplicate): %v", err)
	}
	if wrote {
		t.Fatalf("duplicate Store returned wrote=true")
	}

	got, err := s.Get("game0001")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got != info {
		t.Fatalf("Get = %+v, want the first-written %+v", got, info)
	}
}

func TestGameInfoStoreGetMissingIsNotFound(t *testing.T) {
	s := openTestGameInfoStore(t)
	_, err := s.Get("nosuchid")
	if !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("apperr.Is(err, KindNotFound) = false, got kind %v", apperr.KindOf(err))
	}
}

func TestGameInfoStoreRecordCount(t *testing.T) {
	s := openTestGameInfoStore(t)
	info := model.GameInfo{WhiteName: "a", WhiteRating: 2000, BlackName: "b", BlackRating: 2000}
	if _, err := s.Store("game0001", info); err != nil {
		t.Fatalf("Store: %v", err)
	}
	if _, err := s.Store("game0002", info); err != nil {
		t.Fatalf("Store: %v", err)
	}
	if s.RecordCount() != 2 {
		t.Fatalf("RecordCount = %d, want 2", s.RecordCount())
	}
}
