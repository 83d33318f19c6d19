package httpapi

import (
	"github.com/lichess-org/lila-openingexplorer/internal/eco"
	"github.com/lichess-org/lila-openingexplorer/internal/model"
	"github.com/lichess-org/lila-openingexplorer/internal/query"
)

// MoveJSON is one ranked move in a query response (spec §6's illustrative
// response shape).
type MoveJSON struct {
	UCI           string `json:"uci"`
	SAN           string `json:"san"`
	White         uint64 `json:"white"`
	Draws         uint64 `json:"draws"`
	Black         uint64 `json:"black"`
	AverageRating uint64 `json:"averageRating,omitempty"`
}

// PlayerJSON names one side of a game, when GameInfo has it (Lichess
// games only; the master database has no player-name store).
type PlayerJSON struct {
	Name   string `json:"name"`
	Rating uint16 `json:"rating"`
}

// GameJSON is one top/recent game reference.
type GameJSON struct {
	ID            string      `json:"id"`
	Winner        string      `json:"winner"`
	AverageRating uint16      `json:"averageRating,omitempty"`
	White         *PlayerJSON `json:"white,omitempty"`
	Black         *PlayerJSON `json:"black,omitempty"`
	Year          int         `json:"year,omitempty"`
}

// OpeningJSON names the ECO opening a query's root position belongs to.
type OpeningJSON struct {
	ECO  string `json:"eco"`
	Name string `json:"name"`
}

// QueryResponse is the body of a /master or /lichess GET.
type QueryResponse struct {
	White         uint64       `json:"white"`
	Draws         uint64       `json:"draws"`
	Black         uint64       `json:"black"`
	AverageRating uint64       `json:"averageRating,omitempty"`
	Moves         []MoveJSON   `json:"moves"`
	TopGames      []GameJSON   `json:"topGames,omitempty"`
	RecentGames   []GameJSON   `json:"recentGames,omitempty"`
	Opening       *OpeningJSON `json:"opening,omitempty"`
}

// gameInfoLookup resolves a game id to its GameInfo, when one exists. Master
// queries pass nil (no such store); Lichess queries pass
// store.GameInfoStore.Get adapted to the (info, ok) shape.
type gameInfoLookup func(gameID string) (model.GameInfo, bool)

func averageRatingOf(stats model.MoveStats) uint64 {
	if stats.Total() == 0 {
		return 0
	}
	return stats.RatingSum / stats.Total()
}

func toGameJSON(ref model.GameRef, lookup gameInfoLookup) GameJSON {
	g := GameJSON{ID: ref.GameID, Winner: ref.Winner.String(), AverageRating: ref.AverageRating}
	if lookup == nil {
		return g
	}
	info, ok := lookup(ref.GameID)
	if !ok {
		return g
	}
	g.White = &PlayerJSON{Name: info.WhiteName, Rating: info.WhiteRating}
	g.Black = &PlayerJSON{Name: info.BlackName, Rating: info.BlackRating}
	g.Year = info.Year
	return g
}

func toQueryResponse(result query.Result, opening *eco.Opening, lookup gameInfoLookup) QueryResponse {
	resp := QueryResponse{
		White:         result.Total.White,
		Draws:         result.Total.Draws,
		Black:         result.Total.Black,
		AverageRating: averageRatingOf(result.Total),
		Moves:         make([]MoveJSON, 0, len(result.Moves)),
	}
	for _, m := range result.Moves {
		resp.Moves = append(resp.Moves, MoveJSON{
			UCI:           m.UCI,
			SAN:           m.SAN,
			White:         m.Stats.White,
			Draws:         m.Stats.Draws,
			Black:         m.Stats.Black,
			AverageRating: averageRatingOf(m.Stats),
		})
	}
	for _, ref := range result.TopGames {
		resp.TopGames = append(resp.TopGames, toGameJSON(ref, lookup))
	}
	for _, ref := range result.RecentGames {
		resp.RecentGames = append(resp.RecentGames, toGameJSON(ref, lookup))
	}
	if opening != nil {
		resp.Opening = &OpeningJSON{ECO: opening.ECO, Name: opening.Name}
	}
	return resp
}

// StatsResponse is the body of GET /stats.
type StatsResponse struct {
	MasterPositions  uint64            `json:"masterPositions"`
	MasterGames      uint64            `json:"masterGames"`
	LichessPositions map[string]uint64 `json:"lichessPositions"`
	LichessGames     uint64            `json:"lichessGames"`
}

// ImportResponse is the body of a successful PUT /lichess.
type ImportResponse struct {
	Accepted   int      `json:"accepted"`
	Rejected   int      `json:"rejected"`
	Rejections []string `json:"rejections,omitempty"`
}
