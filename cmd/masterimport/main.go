// Command masterimport batch-loads master-database PGNs from a file,
// driving the same internal/importer.MasterImporter.Import path PUT
// /master uses one game at a time.
package main

import (
	"flag"
	"os"
	"path/filepath"

	"github.com/lichess-org/lila-openingexplorer/internal/apperr"
	"github.com/lichess-org/lila-openingexplorer/internal/config"
	"github.com/lichess-org/lila-openingexplorer/internal/importer"
	"github.com/lichess-org/lila-openingexplorer/internal/logx"
	"github.com/lichess-org/lila-openingexplorer/internal/store"
)

func main() {
	cfg := config.Register(flag.CommandLine)
	inputPath := flag.String("input", "", "PGN file to import (games separated by blank lines)")
	flag.Parse()

	logger := logx.NewLogger()
	if *inputPath == "" {
		logger.Fatal().Msg("-input is required")
	}

	opts := cfg.StoreOptions()
	opts.Logger = logger

	data, err := os.ReadFile(*inputPath)
	if err != nil {
		logger.Fatal().Err(err).Str("path", *inputPath).Msg("read input file")
	}

	ms, err := store.OpenMasterStore(filepath.Join(cfg.MasterDir, "master.kct"), opts)
	if err != nil {
		logger.Fatal().Err(err).Msg("open master store")
	}
	defer ms.Close()

	pgnStore, err := store.OpenPgnStore(filepath.Join(cfg.MasterDir, "master-pgn.kct"), opts)
	if err != nil {
		logger.Fatal().Err(err).Msg("open master pgn store")
	}
	defer pgnStore.Close()

	imp := &importer.MasterImporter{MasterStore: ms, PgnStore: pgnStore, MaxPlies: cfg.MasterMaxPlies}

	games := importer.SplitPGNBatch(string(data))
	var accepted, rejected int
	for i, gameText := range games {
		if err := imp.Import(gameText); err != nil {
			rejected++
			if apperr.Is(err, apperr.KindImportReject) {
				logger.Warn().Err(err).Int("game", i).Msg("rejected")
				continue
			}
			logger.Fatal().Err(err).Int("game", i).Msg("aborting batch on store error")
		}
		accepted++
	}
	logger.Info().Int("accepted", accepted).Int("rejected", rejected).Msg("master import complete")
}
