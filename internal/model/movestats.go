package model

import "github.com/lichess-org/lila-openingexplorer/internal/pack"

// MoveStats is the running White/Draws/Black game count and rating sum for
// one move played from a position. RatingSum divided by Total gives the
// average rating of games that reached it.
type MoveStats struct {
	White     uint64
	Draws     uint64
	Black     uint64
	RatingSum uint64
}

// Total returns the total number of games contributing to the stats.
func (s MoveStats) Total() uint64 {
	return s.White + s.Draws + s.Black
}

// IsEmpty reports whether no games have contributed to the stats.
func (s MoveStats) IsEmpty() bool {
	return s.Total() == 0
}

// AddGame returns a copy of s incremented by one game with the given
// outcome and average rating.
func (s MoveStats) AddGame(winner Winner, averageRating uint16) MoveStats {
	switch winner {
	case WinnerWhite:
		s.White++
	case WinnerBlack:
		s.Black++
	default:
		s.Draws++
	}
	s.RatingSum += uint64(averageRating)
	return s
}

// RemoveGame returns a copy of s decremented by one game, saturating at
// zero rather than wrapping.
func (s MoveStats) RemoveGame(winner Winner, averageRating uint16) MoveStats {
	switch winner {
	case WinnerWhite:
		s.White = saturatingSub(s.White, 1)
	case WinnerBlack:
		s.Black = saturatingSub(s.Black, 1)
	default:
		s.Draws = saturatingSub(s.Draws, 1)
	}
	s.RatingSum = saturatingSub(s.RatingSum, uint64(averageRating))
	return s
}

func saturatingSub(a, b uint64) uint64 {
	if a < b {
		return 0
	}
	return a - b
}

// Merge sums two MoveStats, as used when aggregating across multiple
// rating-band/speed cells for a query.
func (s MoveStats) Merge(other MoveStats) MoveStats {
	return MoveStats{
		White:     s.White + other.White,
		Draws:     s.Draws + other.Draws,
		Black:     s.Black + other.Black,
		RatingSum: s.RatingSum + other.RatingSum,
	}
}

// encodeMovesOnly writes the moves-only portion of a SubEntry: varuint move
// count, then for each move its token followed by four varuints
// (white, draws, black, ratingSum). Map iteration order does not matter on
// the wire: every reader reconstructs the same map regardless of order.
func encodeMovesOnly(w *pack.Writer, moves map[pack.MoveToken]MoveStats) {
	w.WriteVaruint(uint64(len(moves)))
	for token, stats := range moves {
		w.WriteMoveToken(token)
		w.WriteVaruint(stats.White)
		w.WriteVaruint(stats.Draws)
		w.WriteVaruint(stats.Black)
		w.WriteVaruint(stats.RatingSum)
	}
}

func decodeMovesOnly(r *pack.Reader) (map[pack.MoveToken]MoveStats, error) {
	n, err := r.ReadVaruint()
	if err != nil {
		return nil, err
	}
	moves := make(map[pack.MoveToken]MoveStats, n)
	for i := uint64(0); i < n; i++ {
		token, err := r.ReadMoveToken()
		if err != nil {
			return nil, err
		}
		white, err := r.ReadVaruint()
		if err != nil {
			return nil, err
		}
		draws, err := r.ReadVaruint()
		if err != nil {
			return nil, err
		}
		black, err := r.ReadVaruint()
		if err != nil {
			return nil, err
		}
		ratingSum, err := r.ReadVaruint()
		if err != nil {
			return nil, err
		}
		moves[token] = MoveStats{White: white, Draws: draws, Black: black, RatingSum: ratingSum}
	}
	return moves, nil
}
