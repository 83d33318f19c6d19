package importer

import "testing"

func TestSplitPGNBatch(t *testing.T) {
	batch := `[Event "A"]
[Result "1-0"]

1. e4 e5 1-0

[Event "B"]
[Result "0-1"]

1. d4 d5 0-1
`
	games := SplitPGNBatch(batch)
	if len(games) != 2 {
		t.Fatalf("SplitPGNBatch: got %d games, want 2: %q", len(games), games)
	}
	for i, want := range []string{`[Event "A"]`, `[Event "B"]`} {
		if games[i] == "" {
			t.Fatalf("game %d is empty", i)
		}
		if games[i][:len(want)] != want {
			t.Fatalf("game %d = %q, want prefix %q", i, games[i], want)
		}
	}
}

func TestSplitPGNBatchSingleGame(t *testing.T) {
	games := SplitPGNBatch(samplePGN)
	if len(games) != 1 {
		t.Fatalf("SplitPGNBatch(single game): got %d games, want 1", len(games))
	}
}

func TestSplitPGNBatchEmptyInput(t *testing.T) {
	if games := SplitPGNBatch(""); len(games) != 0 {
		t.Fatalf("SplitPGNBatch(\"\") = %v, want empty", games)
	}
	if games := SplitPGNBatch("   \n\n  "); len(games) != 0 {
		t.Fatalf("SplitPGNBatch(blank) = %v, want empty", games)
	}
}
