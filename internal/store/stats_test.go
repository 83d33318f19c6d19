package store

import (
	"testing"

	"github.com/lichess-org/lila-openingexplorer/internal/kvstore"
	"github.com/lichess-org/lila-openingexplorer/internal/model"
)

func TestDatabasesStatsAggregatesCounts(t *testing.T) {
	master, err := OpenMasterStore(t.TempDir(), kvstore.Options{})
	if err != nil {
		t.Fatalf("OpenMasterStore: %v", err)
	}
	lichess, err := OpenEntryStore(t.TempDir(), model.VariantStandard, kvstore.Options{})
	if err != nil {
		t.Fatalf("OpenEntryStore: %v", err)
	}
	gameInfo, err := OpenGameInfoStore(t.TempDir(), kvstore.Options{})
	if err != nil {
		t.Fatalf("OpenGameInfoStore: %v", err)
	}
	d := &Databases{
		Master:   master,
		Lichess:  map[model.Variant]*EntryStore{model.VariantStandard: lichess},
		GameInfo: gameInfo,
	}
	t.Cleanup(func() { d.Close() })

	hash := testHash(1)
	move := testMove(t)
	ref := model.GameRef{GameID: "ref00000", Winner: model.WinnerWhite, Speed: model.SpeedBullet, AverageRating: 1999}
	if err := master.Merge(hash, ref, move); err != nil {
		t.Fatalf("Merge: %v", err)
	}
	if err := lichess.Merge(hash, ref, move); err != nil {
		t.Fatalf("Merge: %v", err)
	}
	if _, err := gameInfo.Store("ref00000", model.GameInfo{WhiteName: "a", BlackName: "b"}); err != nil {
		t.Fatalf("Store: %v", err)
	}

	stats := d.Stats()
	if stats.MasterPositions != 1 {
		t.Fatalf("MasterPositions = %d, want 1", stats.MasterPositions)
	}
	if stats.LichessPositions[model.VariantStandard] != 1 {
		t.Fatalf("LichessPositions[standard] = %d, want 1", stats.LichessPositions[model.VariantStandard])
	}
	if stats.LichessGames != 1 {
		t.Fatalf("LichessGames = %d, want 1", stats.LichessGames)
	}
}
