package importer

import (
	"github.com/lichess-org/lila-openingexplorer/internal/apperr"
	"github.com/lichess-org/lila-openingexplorer/internal/model"
	"github.com/lichess-org/lila-openingexplorer/internal/rules"
	"github.com/lichess-org/lila-openingexplorer/internal/store"
)

// masterRatingFloor is the average-rating threshold below which a game is
// not eligible for the master database (spec §4.7).
const masterRatingFloor = 2200

// MasterImporter drives the PGN -> master-store pipeline for PUT /master.
type MasterImporter struct {
	MasterStore *store.MasterStore
	PgnStore    *store.PgnStore
	MaxPlies    int

	locks keyedMutex
}

// Import imports a single master-database PGN. Only the first game found
// in text is imported; spec §6 describes the endpoint as importing "a
// single master PGN" per call.
func (imp *MasterImporter) Import(text string) error {
	games, err := parsePGNText(text)
	if err != nil {
		return apperr.Wrap(apperr.KindImportReject, "unparsable PGN", err)
	}
	if len(games) == 0 {
		return apperr.New(apperr.KindImportReject, "no games found in PGN text")
	}
	game := games[0]
	tags := game.Tags

	if !isStandardStart(tags) {
		return rejectf("initial position is not the standard start")
	}
	rating, ok := averageRating(tags)
	if !ok {
		return rejectf("missing WhiteElo/BlackElo")
	}
	if int(rating) < masterRatingFloor {
		return rejectf("average rating %d below master threshold %d", rating, masterRatingFloor)
	}
	winner, ok := parseWinner(tags["Result"])
	if !ok {
		return rejectf("unparsable or missing Result tag")
	}
	gid, err := gameID(tags)
	if err != nil {
		return rejectf("invalid game id: %v", err)
	}

	unlock := imp.locks.Lock(gid)
	defer unlock()

	if imp.PgnStore.Exists(gid) {
		return rejectf("duplicate game id %s", gid)
	}

	ref := model.GameRef{
		GameID:        gid,
		Winner:        winner,
		Speed:         speedOf(tags),
		AverageRating: rating,
	}

	situation := rules.NewGame(model.VariantStandard)
	maxPlies := imp.MaxPlies
	if maxPlies <= 0 {
		maxPlies = defaultMaxPlies
	}
	for _, mv := range truncate(game.Moves, maxPlies) {
		hash := situation.Hash()
		lm, err := situation.ApplyMv(mv)
		if err != nil {
			return rejectf("illegal move while replaying game %s: %v", gid, err)
		}
		if err := imp.MasterStore.Merge(hash, ref, lm.Token); err != nil {
			return err
		}
	}

	wrote, err := imp.PgnStore.Store(gid, text)
	if err != nil {
		return err
	}
	if !wrote {
		return rejectf("duplicate game id %s", gid)
	}
	return nil
}

// Retract subtracts a previously imported master game (DELETE
// /master/{id}): it decrements every position the game touched and
// deletes its stored PGN text.
func (imp *MasterImporter) Retract(gid string) error {
	unlock := imp.locks.Lock(gid)
	defer unlock()

	text, err := imp.PgnStore.Get(gid)
	if err != nil {
		return err
	}
	games, err := parsePGNText(text)
	if err != nil {
		return apperr.Wrap(apperr.KindDecode, "re-parse stored PGN for retraction", err)
	}
	if len(games) == 0 {
		return apperr.New(apperr.KindDecode, "stored PGN for retraction has no games")
	}
	game := games[0]
	tags := game.Tags

	rating, _ := averageRating(tags)
	winner, _ := parseWinner(tags["Result"])
	ref := model.GameRef{
		GameID:        gid,
		Winner:        winner,
		Speed:         speedOf(tags),
		AverageRating: rating,
	}

	situation := rules.NewGame(model.VariantStandard)
	maxPlies := imp.MaxPlies
	if maxPlies <= 0 {
		maxPlies = defaultMaxPlies
	}
	for _, mv := range truncate(game.Moves, maxPlies) {
		hash := situation.Hash()
		lm, err := situation.ApplyMv(mv)
		if err != nil {
			return apperr.Wrap(apperr.KindDecode, "replay stored PGN for retraction", err)
		}
		if err := imp.MasterStore.Subtract(hash, ref, lm.Token); err != nil {
			return err
		}
	}

	return imp.PgnStore.Delete(gid)
}
