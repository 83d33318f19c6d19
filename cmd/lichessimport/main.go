// Command lichessimport batch-loads Lichess-rated PGNs from a file into
// the per-variant EntryStores, driving the same
// internal/importer.LichessImporter.Import path PUT /lichess uses.
package main

import (
	"flag"
	"os"
	"path/filepath"

	"github.com/lichess-org/lila-openingexplorer/internal/config"
	"github.com/lichess-org/lila-openingexplorer/internal/importer"
	"github.com/lichess-org/lila-openingexplorer/internal/logx"
	"github.com/lichess-org/lila-openingexplorer/internal/model"
	"github.com/lichess-org/lila-openingexplorer/internal/store"
)

func main() {
	cfg := config.Register(flag.CommandLine)
	inputPath := flag.String("input", "", "PGN file to import")
	flag.Parse()

	logger := logx.NewLogger()
	if *inputPath == "" {
		logger.Fatal().Msg("-input is required")
	}

	data, err := os.ReadFile(*inputPath)
	if err != nil {
		logger.Fatal().Err(err).Str("path", *inputPath).Msg("read input file")
	}

	opts := cfg.StoreOptions()
	opts.Logger = logger

	gameInfoStore, err := store.OpenGameInfoStore(filepath.Join(cfg.LichessDir, "gameInfo.kct"), opts)
	if err != nil {
		logger.Fatal().Err(err).Msg("open game info store")
	}
	defer gameInfoStore.Close()

	entries := make(map[model.Variant]*store.EntryStore, len(model.AllVariants()))
	for _, variant := range model.AllVariants() {
		entryStore, err := store.OpenEntryStore(filepath.Join(cfg.LichessDir, variant.String()+".kct"), variant, opts)
		if err != nil {
			logger.Fatal().Err(err).Str("variant", variant.String()).Msg("open position store")
		}
		entries[variant] = entryStore
		defer entryStore.Close()
	}

	imp := &importer.LichessImporter{
		Stores:   importer.LichessStores{Entries: entries, GameInfo: gameInfoStore},
		MaxPlies: cfg.LichessMaxPlies,
	}

	result, err := imp.Import(string(data))
	if err != nil {
		logger.Fatal().Err(err).Msg("aborting batch on store error")
	}
	for _, reason := range result.Rejections {
		logger.Warn().Str("reason", reason).Msg("rejected")
	}
	logger.Info().Int("accepted", result.Accepted).Int("rejected", result.Rejected).Msg("lichess import complete")
}
