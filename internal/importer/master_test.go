package importer

import (
	"strings"
	"testing"

	"github.com/lichess-org/lila-openingexplorer/internal/apperr"
	"github.com/lichess-org/lila-openingexplorer/internal/kvstore"
	"github.com/lichess-org/lila-openingexplorer/internal/model"
	"github.com/lichess-org/lila-openingexplorer/internal/rules"
	"github.com/lichess-org/lila-openingexplorer/internal/store"
)

func newMasterImporter(t *testing.T) *MasterImporter {
	t.Helper()
	ms, err := store.OpenMasterStore(t.TempDir(), kvstore.Options{})
	if err != nil {
		t.Fatalf("OpenMasterStore: %v", err)
	}
	t.Cleanup(func() { ms.Close() })

	ps, err := store.OpenPgnStore(t.TempDir(), kvstore.Options{})
	if err != nil {
		t.Fatalf("OpenPgnStore: %v", err)
	}
	t.Cleanup(func() { ps.Close() })

	return &MasterImporter{MasterStore: ms, PgnStore: ps, MaxPlies: 40}
}

const samplePGN = `[Event "Test Open"]
[Site "https://lichess.org/aaaaaaa1"]
[White "Alice"]
[Black "Bob"]
[Result "1-0"]
[WhiteElo "2500"]
[BlackElo "2400"]

1. e4 e5 2. Nf3 Nc6 1-0
`

func TestMasterImportAndRetract(t *testing.T) {
	imp := newMasterImporter(t)

	if err := imp.Import(samplePGN); err != nil {
		t.Fatalf("Import: %v", err)
	}

	if !imp.PgnStore.Exists("aaaaaaa1") {
		t.Fatalf("PgnStore.Exists(aaaaaaa1) = false, want true after import")
	}

	situation := rules.NewGame(model.VariantStandard)
	startHash := situation.Hash()
	entry, err := imp.MasterStore.Get(startHash)
	if err != nil {
		t.Fatalf("MasterStore.Get(start): %v", err)
	}
	if entry == nil || entry.IsEmpty() {
		t.Fatalf("expected a merged entry at the start position, got %+v", entry)
	}

	if err := imp.Retract("aaaaaaa1"); err != nil {
		t.Fatalf("Retract: %v", err)
	}
	if imp.PgnStore.Exists("aaaaaaa1") {
		t.Fatalf("PgnStore.Exists(aaaaaaa1) = true, want false after retract")
	}

	entry, err = imp.MasterStore.Get(startHash)
	if err != nil {
		t.Fatalf("MasterStore.Get(start) after retract: %v", err)
	}
	if entry != nil && !entry.IsEmpty() {
		t.Fatalf("MasterStore entry at start not fully subtracted, got %+v", entry)
	}
}

func TestMasterImportRejectsBelowRatingFloor(t *testing.T) {
	imp := newMasterImporter(t)

	low := strings.Replace(samplePGN, "2500", "1000", 1)
	err := imp.Import(low)
	if err == nil {
		t.Fatalf("Import below rating floor = nil error, want rejection")
	}
	if !apperr.Is(err, apperr.KindImportReject) {
		t.Fatalf("Import below rating floor: error kind = %v, want KindImportReject", apperr.KindOf(err))
	}
}

func TestMasterImportRejectsDuplicateGameID(t *testing.T) {
	imp := newMasterImporter(t)

	if err := imp.Import(samplePGN); err != nil {
		t.Fatalf("first Import: %v", err)
	}
	err := imp.Import(samplePGN)
	if err == nil {
		t.Fatalf("duplicate Import = nil error, want rejection")
	}
	if !apperr.Is(err, apperr.KindImportReject) {
		t.Fatalf("duplicate Import: error kind = %v, want KindImportReject", apperr.KindOf(err))
	}
}
