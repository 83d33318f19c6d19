package importer

import (
	"context"
	"fmt"
	"runtime"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/lichess-org/lila-openingexplorer/internal/apperr"
	"github.com/lichess-org/lila-openingexplorer/internal/model"
	"github.com/lichess-org/lila-openingexplorer/internal/rules"
	"github.com/lichess-org/lila-openingexplorer/internal/store"
)

// LichessStores bundles the collaborators a Lichess import touches: one
// EntryStore per variant, plus the shared dedup/metadata store.
type LichessStores struct {
	Entries  map[model.Variant]*store.EntryStore
	GameInfo *store.GameInfoStore
}

// MaxPliesFor resolves the configured truncation depth for a variant
// (spec §6: "explorer.lichess.<variant>.maxPlies").
type MaxPliesFor func(model.Variant) int

// BatchResult tallies a batch import's outcome. ImportReject doesn't abort
// the batch (spec §7), so Rejections accumulates every rejected game's
// reason rather than stopping at the first one.
type BatchResult struct {
	Accepted   int
	Rejected   int
	Rejections []string
}

// LichessImporter drives the PGN -> per-variant-EntryStore pipeline for
// PUT /lichess.
type LichessImporter struct {
	Stores   LichessStores
	MaxPlies MaxPliesFor

	locks keyedMutex
}

var pgnVariantTags = map[string]model.Variant{
	"":                 model.VariantStandard,
	"standard":         model.VariantStandard,
	"chess960":         model.VariantChess960,
	"from position":    model.VariantFromPosition,
	"king of the hill": model.VariantKingOfTheHill,
	"three-check":      model.VariantThreeCheck,
	"threecheck":       model.VariantThreeCheck,
	"antichess":        model.VariantAntichess,
	"atomic":           model.VariantAtomic,
	"horde":            model.VariantHorde,
	"racing kings":     model.VariantRacingKings,
	"crazyhouse":       model.VariantCrazyhouse,
}

func variantOf(tags map[string]string) (model.Variant, bool) {
	v, ok := pgnVariantTags[strings.ToLower(tags["Variant"])]
	return v, ok
}

// Import imports a batch of Lichess PGNs (spec §4.7 "Lichess"): games are
// parsed and replayed concurrently (the hot path is CPU-bound; store
// merges serialize per key under the engine's own lock), up to
// GOMAXPROCS at a time. A StoreIO failure aborts the batch and leaves
// every not-yet-dispatched game unprocessed; an ImportReject only skips
// that one game.
func (imp *LichessImporter) Import(text string) (BatchResult, error) {
	games, err := parsePGNText(text)
	if err != nil {
		return BatchResult{}, apperr.Wrap(apperr.KindImportReject, "unparsable PGN batch", err)
	}

	var (
		mu     sync.Mutex
		result BatchResult
	)

	g, ctx := errgroup.WithContext(context.Background())
	g.SetLimit(runtime.GOMAXPROCS(0))

dispatch:
	for _, game := range games {
		select {
		case <-ctx.Done():
			break dispatch
		default:
		}
		game := game
		g.Go(func() error {
			accepted, reason, err := imp.importOne(game)
			if err != nil {
				return err
			}
			mu.Lock()
			if accepted {
				result.Accepted++
			} else {
				result.Rejected++
				result.Rejections = append(result.Rejections, reason)
			}
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return result, apperr.Wrap(apperr.KindStoreIO, "lichess batch import", err)
	}
	return result, nil
}

func (imp *LichessImporter) importOne(game parsedGame) (accepted bool, rejectReason string, err error) {
	tags := game.Tags

	variant, ok := variantOf(tags)
	if !ok {
		return false, fmt.Sprintf("unrecognized Variant tag %q", tags["Variant"]), nil
	}
	entryStore, ok := imp.Stores.Entries[variant]
	if !ok {
		return false, fmt.Sprintf("no store open for variant %s", variant), nil
	}

	winner, ok := parseWinner(tags["Result"])
	if !ok {
		return false, "unparsable or missing Result tag", nil
	}
	rating, ok := averageRating(tags)
	if !ok {
		return false, "missing WhiteElo/BlackElo", nil
	}
	gid, err := gameID(tags)
	if err != nil {
		return false, fmt.Sprintf("invalid game id: %v", err), nil
	}

	unlock := imp.locks.Lock(gid)
	defer unlock()

	if imp.Stores.GameInfo.Exists(gid) {
		return false, fmt.Sprintf("duplicate game id %s", gid), nil
	}

	speed := speedOf(tags)
	ref := model.GameRef{GameID: gid, Winner: winner, Speed: speed, AverageRating: rating}

	maxPlies := defaultMaxPlies
	if imp.MaxPlies != nil {
		if n := imp.MaxPlies(variant); n > 0 {
			maxPlies = n
		}
	}

	situation := rules.NewGame(variant)
	for _, mv := range truncate(game.Moves, maxPlies) {
		hash := situation.Hash()
		lm, applyErr := situation.ApplyMv(mv)
		if applyErr != nil {
			return false, fmt.Sprintf("illegal move while replaying game %s: %v", gid, applyErr), nil
		}
		if mergeErr := entryStore.Merge(hash, ref, lm.Token); mergeErr != nil {
			return false, "", mergeErr
		}
	}

	info := model.GameInfo{
		WhiteName:   tags["White"],
		WhiteRating: uint16(parseRating(tags["WhiteElo"])),
		BlackName:   tags["Black"],
		BlackRating: uint16(parseRating(tags["BlackElo"])),
		Year:        parseYear(tags["Date"]),
	}
	wrote, storeErr := imp.Stores.GameInfo.Store(gid, info)
	if storeErr != nil {
		return false, "", storeErr
	}
	if !wrote {
		return false, fmt.Sprintf("duplicate game id %s", gid), nil
	}
	return true, "", nil
}
