// Package query implements the read-side aggregation/ranking algorithm
// (hash a position, sum its filtered cells, rank moves, select top and
// recent games, enumerate child positions) shared by the master and
// Lichess databases.
package query

import (
	"sort"

	"github.com/lichess-org/lila-openingexplorer/internal/model"
	"github.com/lichess-org/lila-openingexplorer/internal/pack"
	"github.com/lichess-org/lila-openingexplorer/internal/rules"
)

// Filter narrows which cells of an Entry contribute to a query, and caps
// how much of the result is returned. Zero-value RatingBands/Speeds mean
// "every band"/"every speed".
type Filter struct {
	RatingBands []model.RatingBand
	Speeds      []model.Speed
	MaxMoves    int // [1,20], default 12
	TopGames    int // [0,4], default 4
	RecentGames int // [0,10], default 0
}

// Normalized clamps every field of f into its spec-mandated range,
// applying defaults to zero values that mean "unset" rather than
// "explicitly zero" (MaxMoves; TopGames/RecentGames treat 0 as a valid
// explicit request for no games).
func (f Filter) Normalized() Filter {
	out := f
	if out.MaxMoves <= 0 {
		out.MaxMoves = 12
	}
	if out.MaxMoves > 20 {
		out.MaxMoves = 20
	}
	if out.TopGames < 0 {
		out.TopGames = 0
	}
	if out.TopGames > 4 {
		out.TopGames = 4
	}
	if out.RecentGames < 0 {
		out.RecentGames = 0
	}
	if out.RecentGames > 10 {
		out.RecentGames = 10
	}
	return out
}

// MoveResult is one ranked move with its aggregated stats and the
// notations rendered by the rule engine adapter.
type MoveResult struct {
	Token pack.MoveToken
	UCI   string
	SAN   string
	Stats model.MoveStats
}

// Result is the outcome of probing one Situation.
type Result struct {
	Total       model.MoveStats
	Moves       []MoveResult
	TopGames    []model.GameRef
	RecentGames []model.GameRef
}

// ChildResult pairs a legal move with the aggregated totals of the
// position it leads to (spec §4.6 step 6: no top/recent games needed for
// child enumeration).
type ChildResult struct {
	Move  rules.LegalMove
	Total model.MoveStats
}

func bandSelected(bands []model.RatingBand, band model.RatingBand) bool {
	if len(bands) == 0 {
		return true
	}
	for _, b := range bands {
		if b == band {
			return true
		}
	}
	return false
}

func speedSelected(speeds []model.Speed, speed model.Speed) bool {
	if len(speeds) == 0 {
		return true
	}
	for _, s := range speeds {
		if s == speed {
			return true
		}
	}
	return false
}

// legalMoveIndex builds a token -> LegalMove lookup so aggregated stats
// (keyed only by token) can be rendered with SAN/UCI.
func legalMoveIndex(situation *rules.Situation) map[pack.MoveToken]rules.LegalMove {
	idx := make(map[pack.MoveToken]rules.LegalMove)
	for _, mv := range situation.LegalMoves() {
		idx[mv.Token] = mv
	}
	return idx
}

// rankMoves discards zero-total moves, sorts by total descending, and
// truncates to maxMoves.
func rankMoves(stats map[pack.MoveToken]model.MoveStats, legal map[pack.MoveToken]rules.LegalMove, maxMoves int) []MoveResult {
	out := make([]MoveResult, 0, len(stats))
	for token, st := range stats {
		if st.Total() == 0 {
			continue
		}
		mr := MoveResult{Token: token, Stats: st}
		if lm, ok := legal[token]; ok {
			mr.UCI = lm.UCI
			mr.SAN = lm.SAN
		}
		out = append(out, mr)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Stats.Total() > out[j].Stats.Total() })
	if len(out) > maxMoves {
		out = out[:maxMoves]
	}
	return out
}

func sumTotal(stats map[pack.MoveToken]model.MoveStats) model.MoveStats {
	var total model.MoveStats
	for _, st := range stats {
		total = total.Merge(st)
	}
	return total
}
