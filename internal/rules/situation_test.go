package rules

import (
	"testing"

	"github.com/lichess-org/lila-openingexplorer/internal/model"
)

func TestNewGameHashIsDeterministic(t *testing.T) {
	a := NewGame(model.VariantStandard)
	b := NewGame(model.VariantStandard)
	if a.Hash() != b.Hash() {
		t.Fatalf("two fresh starting positions hashed differently: %v vs %v", a.Hash(), b.Hash())
	}
}

func TestHashDiffersByVariant(t *testing.T) {
	a := NewGame(model.VariantStandard)
	b := NewGame(model.VariantChess960)
	if a.Hash() == b.Hash() {
		t.Fatalf("standard and chess960 starting positions hashed the same")
	}
}

func TestLegalMovesFromStartIncludesE4(t *testing.T) {
	s := NewGame(model.VariantStandard)
	moves := s.LegalMoves()
	if len(moves) == 0 {
		t.Fatalf("LegalMoves() returned none from the starting position")
	}
	found := false
	for _, m := range moves {
		if m.UCI == "e2e4" {
			found = true
		}
	}
	if !found {
		t.Fatalf("e2e4 not found among legal moves: %+v", moves)
	}
}

func TestApplySANAdvancesPositionAndHash(t *testing.T) {
	s := NewGame(model.VariantStandard)
	start := s.Hash()
	mv, err := s.ApplySAN("e4")
	if err != nil {
		t.Fatalf("ApplySAN: %v", err)
	}
	if mv.UCI != "e2e4" {
		t.Fatalf("ApplySAN resolved UCI = %q, want e2e4", mv.UCI)
	}
	if s.Hash() == start {
		t.Fatalf("Hash() unchanged after ApplySAN")
	}
}

func TestChildDoesNotMutateParent(t *testing.T) {
	s := NewGame(model.VariantStandard)
	start := s.Hash()
	moves := s.LegalMoves()
	if len(moves) == 0 {
		t.Fatalf("no legal moves from start")
	}
	child, err := s.Child(moves[0])
	if err != nil {
		t.Fatalf("Child: %v", err)
	}
	if s.Hash() != start {
		t.Fatalf("Child mutated the parent Situation")
	}
	if child.Hash() == start {
		t.Fatalf("Child produced the same hash as its parent")
	}
}
