package model

import "github.com/lichess-org/lila-openingexplorer/internal/pack"

// SubEntry is the unit of aggregation for a single (rating band, speed)
// cell: per-move win/draw/loss/rating totals, plus the game refs that
// contributed to the cell, newest first.
type SubEntry struct {
	Moves map[pack.MoveToken]MoveStats
	Games []GameRef
}

// NewSubEntry returns an empty SubEntry.
func NewSubEntry() *SubEntry {
	return &SubEntry{Moves: make(map[pack.MoveToken]MoveStats)}
}

// Insert records one game: its move's stats are incremented and its ref is
// prepended to Games (index 0 is always the most recently inserted game).
func (s *SubEntry) Insert(ref GameRef, move pack.MoveToken) {
	s.Moves[move] = s.Moves[move].AddGame(ref.Winner, ref.AverageRating)
	s.Games = append([]GameRef{ref}, s.Games...)
}

// Remove reverses a prior Insert of the same (ref, move) pair: the move's
// stats are decremented (the entry is dropped once empty) and the first
// matching game id is removed from Games.
func (s *SubEntry) Remove(ref GameRef, move pack.MoveToken) {
	if stats, ok := s.Moves[move]; ok {
		stats = stats.RemoveGame(ref.Winner, ref.AverageRating)
		if stats.IsEmpty() {
			delete(s.Moves, move)
		} else {
			s.Moves[move] = stats
		}
	}
	for i, g := range s.Games {
		if g.GameID == ref.GameID {
			s.Games = append(s.Games[:i], s.Games[i+1:]...)
			break
		}
	}
}

// TotalStats sums the MoveStats of every move in the cell.
func (s *SubEntry) TotalStats() MoveStats {
	var total MoveStats
	for _, stats := range s.Moves {
		total = total.Merge(stats)
	}
	return total
}

// IsEmpty reports whether the cell carries no games and no move stats. An
// empty cell is dropped from its parent Entry rather than persisted.
func (s *SubEntry) IsEmpty() bool {
	return len(s.Moves) == 0 && len(s.Games) == 0
}

// EncodeStatsOnly writes the move-stats table, without any embedded game
// refs. Used as the trailing section of each Entry block, where the game
// refs are written separately ahead of it.
func (s *SubEntry) EncodeStatsOnly(w *pack.Writer) {
	encodeMovesOnly(w, s.Moves)
}

// EncodeMaster writes the full standalone encoding used by MasterEntry:
// the moves table, followed by the given (already-selected) game refs
// consumed until the end of the buffer.
func (s *SubEntry) EncodeMaster(w *pack.Writer, games []GameRef) error {
	encodeMovesOnly(w, s.Moves)
	for _, ref := range games {
		if err := writeGameRef(w, ref); err != nil {
			return err
		}
	}
	return nil
}

// DecodeMaster reads the full standalone encoding used by MasterEntry: the
// moves table, then game refs until the buffer is exhausted.
func DecodeMaster(data []byte) (*SubEntry, error) {
	r := pack.NewReader(data)
	moves, err := decodeMovesOnly(r)
	if err != nil {
		return nil, err
	}
	var games []GameRef
	for r.Len() >= 8 {
		ref, err := readGameRef(r)
		if err != nil {
			return nil, err
		}
		games = append(games, ref)
	}
	if !r.Done() {
		return nil, pack.ErrMalformed
	}
	return &SubEntry{Moves: moves, Games: games}, nil
}
