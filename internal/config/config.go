// Package config loads the static, once-at-startup configuration spec §6
// describes: store locations and tuning, per-database ply truncation, the
// response-cache policy, and the CORS toggle. The teacher loads everything
// through the standard library's flag package (cmd/api/main.go); no
// configuration-file library appears anywhere in the example corpus, so
// this package keeps that choice rather than introducing one.
package config

import (
	"flag"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/lichess-org/lila-openingexplorer/internal/kvstore"
	"github.com/lichess-org/lila-openingexplorer/internal/model"
)

// Config is the full set of static configuration for the server and the
// batch-import CLIs, all populated from flag.FlagSet.
type Config struct {
	Addr string

	MasterDir  string
	LichessDir string
	EcoDir     string

	CORSHeader bool

	MasterMaxPlies  int
	lichessMaxPlies variantPlies

	CacheTTL                 time.Duration
	CacheMaxEntries          int
	CacheMoveNumberThreshold int

	FlushThreshold int
	MaxSegments    int
}

// Register binds every field of Config to fs, matching the teacher's flat
// flag.* style (cmd/api/main.go) but collected into one struct so
// cmd/masterimport and cmd/lichessimport can share the flag surface.
func Register(fs *flag.FlagSet) *Config {
	cfg := &Config{lichessMaxPlies: variantPlies{base: 40, overrides: map[model.Variant]int{}}}

	fs.StringVar(&cfg.Addr, "addr", ":8080", "listen address")
	fs.StringVar(&cfg.MasterDir, "master-dir", "./data/master", "master database directory")
	fs.StringVar(&cfg.LichessDir, "lichess-dir", "./data/lichess", "lichess database root (one subdirectory per variant)")
	fs.StringVar(&cfg.EcoDir, "eco-dir", "./data/eco", "directory of ECO .tsv opening-name files")

	fs.BoolVar(&cfg.CORSHeader, "cors", true, "emit Access-Control-Allow-Origin: * (explorer.corsHeader)")

	fs.IntVar(&cfg.MasterMaxPlies, "master-max-plies", 50, "explorer.master.maxPlies: truncate master games after this many plies")
	fs.Var(&cfg.lichessMaxPlies, "lichess-max-plies", "explorer.lichess.<variant>.maxPlies: \"<default>\" or \"<default>,crazyhouse=30,horde=60\"")

	fs.DurationVar(&cfg.CacheTTL, "cache-ttl", 10*time.Minute, "explorer.cache.ttl: response cache entry lifetime")
	fs.IntVar(&cfg.CacheMaxEntries, "cache-max-entries", 10000, "explorer.cache.maxEntries: response cache capacity")
	fs.IntVar(&cfg.CacheMoveNumberThreshold, "cache-move-number-threshold", 40, "bypass the cache once the FEN's move number exceeds this")

	fs.IntVar(&cfg.FlushThreshold, "store-flush-threshold", 4096, "kvstore memtable entries buffered before an async flush")
	fs.IntVar(&cfg.MaxSegments, "store-max-segments", 8, "kvstore segment count that triggers background compaction")

	return cfg
}

// LichessMaxPlies returns the configured truncation depth for variant,
// suitable as an importer.MaxPliesFor closure.
func (c *Config) LichessMaxPlies(variant model.Variant) int {
	return c.lichessMaxPlies.For(variant)
}

// StoreOptions builds the kvstore.Options every opened store shares.
func (c *Config) StoreOptions() kvstore.Options {
	return kvstore.Options{
		FlushThreshold: c.FlushThreshold,
		MaxSegments:    c.MaxSegments,
	}
}

// variantPlies is a flag.Value parsing "<default>[,variant=plies,...]" into
// a base truncation depth plus per-variant overrides, since the standard
// flag package has no native map-valued flag.
type variantPlies struct {
	base      int
	overrides map[model.Variant]int
}

func (v *variantPlies) String() string {
	if v == nil {
		return ""
	}
	parts := []string{strconv.Itoa(v.base)}
	for variant, plies := range v.overrides {
		parts = append(parts, fmt.Sprintf("%s=%d", variant, plies))
	}
	return strings.Join(parts, ",")
}

func (v *variantPlies) Set(s string) error {
	fields := strings.Split(s, ",")
	base, err := strconv.Atoi(strings.TrimSpace(fields[0]))
	if err != nil {
		return fmt.Errorf("invalid default maxPlies %q: %w", fields[0], err)
	}
	v.base = base
	v.overrides = make(map[model.Variant]int)
	for _, field := range fields[1:] {
		kv := strings.SplitN(field, "=", 2)
		if len(kv) != 2 {
			return fmt.Errorf("invalid variant override %q, want variant=plies", field)
		}
		variant, ok := model.ParseVariant(strings.TrimSpace(kv[0]))
		if !ok {
			return fmt.Errorf("unknown variant %q in maxPlies override", kv[0])
		}
		plies, err := strconv.Atoi(strings.TrimSpace(kv[1]))
		if err != nil {
			return fmt.Errorf("invalid maxPlies %q for variant %s: %w", kv[1], variant, err)
		}
		v.overrides[variant] = plies
	}
	return nil
}

func (v variantPlies) For(variant model.Variant) int {
	if n, ok := v.overrides[variant]; ok {
		return n
	}
	return v.base
}
