package query

import (
	"github.com/lichess-org/lila-openingexplorer/internal/model"
	"github.com/lichess-org/lila-openingexplorer/internal/rules"
	"github.com/lichess-org/lila-openingexplorer/internal/store"
)

// Master probes one Situation against the master database. The master
// entry has no rating/speed partitioning, so Filter's RatingBands/Speeds
// are ignored; only MaxMoves and TopGames apply (spec §6: the /master
// endpoint takes no speed/rating params).
func Master(situation *rules.Situation, masterStore *store.MasterStore, filter Filter) (Result, error) {
	filter = filter.Normalized()

	entry, err := masterStore.Get(situation.Hash())
	if err != nil {
		return Result{}, err
	}
	if entry == nil {
		entry = model.NewMasterEntry()
	}

	legal := legalMoveIndex(situation)
	top := entry.Sub.Games
	if len(top) > filter.TopGames {
		top = top[:filter.TopGames]
	}

	return Result{
		Total: entry.Sub.TotalStats(),
		Moves: rankMoves(entry.Sub.Moves, legal, filter.MaxMoves),
		// entry.Sub.Games is already the highest-rated MaxTopGames refs
		// (model.MasterEntry.Encode selects them at write time); querying
		// only ever narrows that set further, it never needs to re-rank it.
		TopGames: top,
	}, nil
}
