package store

import (
	"testing"

	"github.com/lichess-org/lila-openingexplorer/internal/apperr"
	"github.com/lichess-org/lila-openingexplorer/internal/kvstore"
)

func openTestPgnStore(t *testing.T) *PgnStore {
	t.Helper()
	s, err := OpenPgnStore(t.TempDir(), kvstore.Options{})
	if err != nil {
		t.Fatalf("OpenPgnStore: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestPgnStoreStoreAndGetRoundTrip(t *testing.T) {
	s := openTestPgnStore(t)
	pgn := "1. e4 e5 2. Nf3 Nc6 *"

	wrote, err := s.Store("game0001", pgn)
	if err != nil {
		t.Fatalf("Store: %v", err)
	}
	if !wrote {
		t.Fatalf("first Store returned wrote=false")
	}

	got, err := s.Get("game0001")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got != pgn {
		t.Fatalf("Get = %q, want %q", got, pgn)
	}
}

func TestPgnStoreDuplicateStoreDoesNotOverwrite(t *testing.T) {
	s := openTestPgnStore(t)
	if _, err := s.Store("game0001", "first"); err != nil {
		t.Fatalf("Store: %v", err)
	}
	wrote, err := s.Store("game0001", "second")
	if err != nil {
		t.Fatalf("Store (duplicate): %v", err)
	}
	if wrote {
		t.Fatalf("duplicate Store returned wrote=true")
	}
	got, _ := s.Get("game0001")
	if got != "first" {
		t.Fatalf("Get = %q, want %q", got, "first")
	}
}

func TestPgnStoreDelete(t *testing.T) {
	s := openTestPgnStore(t)
	if _, err := s.Store("game0001", "text"); err != nil {
		t.Fatalf("Store: %v", err)
	}
	if err := s.Delete("game0001"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if s.Exists("game0001") {
		t.Fatalf("Exists = true after Delete")
	}
	_, err := s.Get("game0001")
	if !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("Get after Delete: kind = %v, want KindNotFound", apperr.KindOf(err))
	}
}
