package main

import (
	"context"
	"flag"
	"net/http"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/lichess-org/lila-openingexplorer/internal/cache"
	"github.com/lichess-org/lila-openingexplorer/internal/config"
	"github.com/lichess-org/lila-openingexplorer/internal/eco"
	"github.com/lichess-org/lila-openingexplorer/internal/httpapi"
	"github.com/lichess-org/lila-openingexplorer/internal/importer"
	"github.com/lichess-org/lila-openingexplorer/internal/logx"
	"github.com/lichess-org/lila-openingexplorer/internal/model"
	"github.com/lichess-org/lila-openingexplorer/internal/store"
)

func main() {
	cfg := config.Register(flag.CommandLine)
	flag.Parse()

	logger := logx.NewLogger()

	opts := cfg.StoreOptions()
	opts.Logger = logger

	databases := &store.Databases{Lichess: make(map[model.Variant]*store.EntryStore)}

	masterStore, err := store.OpenMasterStore(filepath.Join(cfg.MasterDir, "master.kct"), opts)
	if err != nil {
		logger.Fatal().Err(err).Msg("open master store")
	}
	databases.Master = masterStore

	masterPgnStore, err := store.OpenPgnStore(filepath.Join(cfg.MasterDir, "master-pgn.kct"), opts)
	if err != nil {
		logger.Fatal().Err(err).Msg("open master pgn store")
	}
	databases.MasterPgn = masterPgnStore

	gameInfoStore, err := store.OpenGameInfoStore(filepath.Join(cfg.LichessDir, "gameInfo.kct"), opts)
	if err != nil {
		logger.Fatal().Err(err).Msg("open game info store")
	}
	databases.GameInfo = gameInfoStore

	for _, variant := range model.AllVariants() {
		entryStore, err := store.OpenEntryStore(filepath.Join(cfg.LichessDir, variant.String()+".kct"), variant, opts)
		if err != nil {
			logger.Fatal().Err(err).Str("variant", variant.String()).Msg("open lichess position store")
		}
		databases.Lichess[variant] = entryStore
	}
	defer func() {
		if err := databases.Close(); err != nil {
			logger.Error().Err(err).Msg("close stores")
		}
	}()

	ecoDB := eco.NewDatabase()
	if err := ecoDB.LoadDir(cfg.EcoDir); err != nil {
		logger.Warn().Err(err).Str("dir", cfg.EcoDir).Msg("ECO database not loaded")
		ecoDB = nil
	} else {
		logger.Info().Int("openings", ecoDB.Count()).Msg("ECO database loaded")
	}

	respCache := cache.New(cfg.CacheMaxEntries, cfg.CacheTTL)

	masterImporter := &importer.MasterImporter{
		MasterStore: databases.Master,
		PgnStore:    databases.MasterPgn,
		MaxPlies:    cfg.MasterMaxPlies,
	}
	lichessImporter := &importer.LichessImporter{
		Stores:   importer.LichessStores{Entries: databases.Lichess, GameInfo: databases.GameInfo},
		MaxPlies: cfg.LichessMaxPlies,
	}

	router := httpapi.NewRouter(logger, databases, ecoDB, respCache, masterImporter, lichessImporter, httpapi.Options{
		CORSEnabled:              cfg.CORSHeader,
		CacheMoveNumberThreshold: cfg.CacheMoveNumberThreshold,
	})

	srv := &http.Server{
		Addr:         cfg.Addr,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info().Str("addr", srv.Addr).Msg("opening explorer listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("api server")
		}
	}()

	<-ctx.Done()
	logger.Info().Msg("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn().Err(err).Msg("http server shutdown error")
	}

	logger.Info().Msg("shutdown complete")
}
