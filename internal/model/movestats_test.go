package model

import (
	"testing"

	"github.com/lichess-org/lila-openingexplorer/internal/pack"
)

func TestMoveStatsAddAndRemove(t *testing.T) {
	var s MoveStats
	s = s.AddGame(WinnerWhite, 1500)
	s = s.AddGame(WinnerBlack, 1600)
	s = s.AddGame(WinnerDraw, 1700)

	if s.White != 1 || s.Black != 1 || s.Draws != 1 {
		t.Fatalf("got %+v", s)
	}
	if s.Total() != 3 {
		t.Fatalf("Total() = %d, want 3", s.Total())
	}
	if s.RatingSum != 1500+1600+1700 {
		t.Fatalf("RatingSum = %d", s.RatingSum)
	}

	s = s.RemoveGame(WinnerWhite, 1500)
	if s.White != 0 || s.Total() != 2 {
		t.Fatalf("after remove: %+v", s)
	}
}

func TestMoveStatsRemoveSaturatesAtZero(t *testing.T) {
	var s MoveStats
	s = s.RemoveGame(WinnerWhite, 1500)
	if s.White != 0 || s.RatingSum != 0 {
		t.Fatalf("removing from empty stats should saturate at zero, got %+v", s)
	}
}

func TestMoveStatsEmpty(t *testing.T) {
	var s MoveStats
	if !s.IsEmpty() {
		t.Fatalf("zero-value MoveStats should be empty")
	}
	s = s.AddGame(WinnerDraw, 0)
	if s.IsEmpty() {
		t.Fatalf("stats with one game should not be empty")
	}
}

func TestMoveStatsMerge(t *testing.T) {
	a := MoveStats{White: 1, Draws: 2, Black: 3, RatingSum: 100}
	b := MoveStats{White: 10, Draws: 20, Black: 30, RatingSum: 900}
	got := a.Merge(b)
	want := MoveStats{White: 11, Draws: 22, Black: 33, RatingSum: 1000}
	if got != want {
		t.Fatalf("Merge = %+v, want %+v", got, want)
	}
}

func TestMovesOnlyCodecRoundTrip(t *testing.T) {
	m1, _ := pack.EncodeMove(12, 28, pack.RoleNone)
	m2, _ := pack.EncodeMove(6, 21, pack.RoleNone)

	moves := map[pack.MoveToken]MoveStats{
		m1: {White: 5, Draws: 1, Black: 2, RatingSum: 12345},
		m2: {White: 0, Draws: 0, Black: 7, RatingSum: 9999},
	}

	w := pack.NewWriter()
	encodeMovesOnly(w, moves)

	got, err := decodeMovesOnly(pack.NewReader(w.Bytes()))
	if err != nil {
		t.Fatalf("decodeMovesOnly: %v", err)
	}
	if len(got) != len(moves) {
		t.Fatalf("got %d moves, want %d", len(got), len(moves))
	}
	for token, want := range moves {
		if got[token] != want {
			t.Fatalf("move %x: got %+v, want %+v", token, got[token], want)
		}
	}
}
