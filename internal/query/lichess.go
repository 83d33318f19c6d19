package query

import (
	"sort"

	"github.com/lichess-org/lila-openingexplorer/internal/model"
	"github.com/lichess-org/lila-openingexplorer/internal/rules"
	"github.com/lichess-org/lila-openingexplorer/internal/store"
)

// Lichess probes one Situation against its variant's EntryStore and
// returns the filtered, ranked result. An absent position is not an
// error: it probes as an empty Entry.
func Lichess(situation *rules.Situation, entryStore *store.EntryStore, filter Filter) (Result, error) {
	filter = filter.Normalized()

	entry, err := entryStore.Get(situation.Hash())
	if err != nil {
		return Result{}, err
	}
	if entry == nil {
		entry = model.NewEntry()
	}

	stats := entry.AggregateStats(filter.RatingBands, filter.Speeds)
	legal := legalMoveIndex(situation)

	return Result{
		Total:       sumTotal(stats),
		Moves:       rankMoves(stats, legal, filter.MaxMoves),
		TopGames:    lichessTopGames(entry, filter),
		RecentGames: entry.RecentGames(filter.RatingBands, filter.Speeds, filter.RecentGames),
	}, nil
}

// lichessTopGames implements spec §4.6 step 4: candidates are gathered
// across every rating band for the requested speeds, ranked by rating,
// and truncated to filter.TopGames — but the whole result is discarded if
// the single highest-rated candidate's band isn't itself in the requested
// band set (preserving "top games represent the user's top rating slice";
// excluding that slice yields no top games rather than a lower substitute,
// spec §9 open question 3).
func lichessTopGames(entry *model.Entry, filter Filter) []model.GameRef {
	if filter.TopGames <= 0 {
		return nil
	}
	var candidates []model.GameRef
	cells := entry.Cells()
	for _, key := range model.SortedCellKeys(cells) {
		if !speedSelected(filter.Speeds, key.Speed) {
			continue
		}
		candidates = append(candidates, cells[key].Games...)
	}
	if len(candidates) == 0 {
		return nil
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].AverageRating > candidates[j].AverageRating
	})
	if len(candidates) > filter.TopGames {
		candidates = candidates[:filter.TopGames]
	}

	topBand := model.RatingBandOf(int(candidates[0].AverageRating))
	if !bandSelected(filter.RatingBands, topBand) {
		return nil
	}

	out := make([]model.GameRef, 0, len(candidates))
	for _, ref := range candidates {
		if bandSelected(filter.RatingBands, model.RatingBandOf(int(ref.AverageRating))) {
			out = append(out, ref)
		}
	}
	return out
}

// Children enumerates every legal move from situation and aggregates the
// resulting position's stats under the same filter (spec §4.6 step 6: no
// top/recent games are computed here).
func Children(situation *rules.Situation, entryStore *store.EntryStore, filter Filter) ([]ChildResult, error) {
	filter = filter.Normalized()
	moves := situation.LegalMoves()
	out := make([]ChildResult, 0, len(moves))
	for _, mv := range moves {
		child, err := situation.Child(mv)
		if err != nil {
			continue
		}
		entry, err := entryStore.Get(child.Hash())
		if err != nil {
			return nil, err
		}
		if entry == nil {
			entry = model.NewEntry()
		}
		stats := entry.AggregateStats(filter.RatingBands, filter.Speeds)
		out = append(out, ChildResult{Move: mv, Total: sumTotal(stats)})
	}
	return out, nil
}
