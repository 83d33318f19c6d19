package model

import (
	"testing"

	"github.com/lichess-org/lila-openingexplorer/internal/pack"
)

func TestSubEntryInsertOrdersNewestFirst(t *testing.T) {
	sub := NewSubEntry()
	m, _ := pack.EncodeMove(12, 28, pack.RoleNone)

	refs := []GameRef{
		{GameID: "game0001", Winner: WinnerWhite, Speed: SpeedClassical, AverageRating: 2000},
		{GameID: "game0002", Winner: WinnerBlack, Speed: SpeedClassical, AverageRating: 2000},
		{GameID: "game0003", Winner: WinnerDraw, Speed: SpeedClassical, AverageRating: 2000},
	}
	for _, ref := range refs {
		sub.Insert(ref, m)
	}

	want := []string{"game0003", "game0002", "game0001"}
	if len(sub.Games) != len(want) {
		t.Fatalf("len(Games) = %d, want %d", len(sub.Games), len(want))
	}
	for i, id := range want {
		if sub.Games[i].GameID != id {
			t.Fatalf("Games[%d] = %s, want %s", i, sub.Games[i].GameID, id)
		}
	}

	stats := sub.Moves[m]
	if stats.White != 1 || stats.Black != 1 || stats.Draws != 1 {
		t.Fatalf("aggregated stats = %+v", stats)
	}
}

func TestSubEntryRemoveDropsEmptyMoveAndGame(t *testing.T) {
	sub := NewSubEntry()
	m, _ := pack.EncodeMove(12, 28, pack.RoleNone)
	ref := GameRef{GameID: "game0001", Winner: WinnerWhite, Speed: SpeedClassical, AverageRating: 2000}

	sub.Insert(ref, m)
	sub.Remove(ref, m)

	if _, ok := sub.Moves[m]; ok {
		t.Fatalf("move stats should be removed once empty")
	}
	if len(sub.Games) != 0 {
		t.Fatalf("game ref should be removed, got %v", sub.Games)
	}
	if !sub.IsEmpty() {
		t.Fatalf("SubEntry should be empty after full removal")
	}
}

func TestSubEntryMasterCodecRoundTrip(t *testing.T) {
	sub := NewSubEntry()
	m1, _ := pack.EncodeMove(12, 28, pack.RoleNone)
	m2, _ := pack.EncodeMove(6, 21, pack.RoleNone)

	refs := []GameRef{
		{GameID: "game0001", Winner: WinnerWhite, Speed: SpeedClassical, AverageRating: 2600},
		{GameID: "game0002", Winner: WinnerBlack, Speed: SpeedClassical, AverageRating: 2700},
	}
	sub.Insert(refs[0], m1)
	sub.Insert(refs[1], m2)

	w := pack.NewWriter()
	if err := sub.EncodeMaster(w, sub.Games); err != nil {
		t.Fatalf("EncodeMaster: %v", err)
	}

	got, err := DecodeMaster(w.Bytes())
	if err != nil {
		t.Fatalf("DecodeMaster: %v", err)
	}
	if len(got.Games) != 2 {
		t.Fatalf("got %d games, want 2", len(got.Games))
	}
	if len(got.Moves) != 2 {
		t.Fatalf("got %d moves, want 2", len(got.Moves))
	}
}
