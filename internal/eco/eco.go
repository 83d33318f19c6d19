// Package eco provides ECO (Encyclopedia of Chess Openings) name lookup,
// the "opening-name lookup" collaborator spec §1 names as out of scope
// for the core query engine and spec §4.6 step 5 attaches to a query
// result's root position. Positions are keyed the same way the store is
// (internal/rules.Situation.Hash), not by the rule engine's own packed
// position, so a lookup is variant-aware exactly like a store lookup.
package eco

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/lichess-org/lila-openingexplorer/internal/model"
	"github.com/lichess-org/lila-openingexplorer/internal/rules"
)

// Opening is an ECO classification attached to a position.
type Opening struct {
	ECO  string `json:"eco"`
	Name string `json:"name"`
}

// Database holds ECO opening data indexed by store hash. Only the
// standard variant has ECO coverage (the .tsv files are standard-chess
// opening lines), so a Database is only ever consulted for
// model.VariantStandard positions.
type Database struct {
	byHash map[model.Hash]Opening
	count  int
}

// NewDatabase creates an empty ECO database.
func NewDatabase() *Database {
	return &Database{byHash: make(map[model.Hash]Opening)}
}

// moveNumberRegex matches move numbers like "1." or "12..."
var moveNumberRegex = regexp.MustCompile(`\d+\.+\s*`)

// LoadDir loads every .tsv file in dir.
func (db *Database) LoadDir(dir string) error {
	files, err := filepath.Glob(filepath.Join(dir, "*.tsv"))
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no .tsv files found in %s", dir)
	}

	for _, file := range files {
		if err := db.LoadFile(file); err != nil {
			return fmt.Errorf("load %s: %w", file, err)
		}
	}
	return nil
}

// LoadFile loads a single "eco\tname\tpgn" TSV file.
func (db *Database) LoadFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := scanner.Text()

		if lineNum == 1 && strings.HasPrefix(line, "eco\t") {
			continue
		}

		parts := strings.SplitN(line, "\t", 3)
		if len(parts) != 3 {
			continue
		}
		eco, name, pgnMoves := parts[0], parts[1], parts[2]

		situation := rules.NewGame(model.VariantStandard)
		if err := db.applyMoves(situation, pgnMoves); err != nil {
			continue // skip invalid lines silently, matching the teacher
		}

		db.byHash[situation.Hash()] = Opening{ECO: eco, Name: name}
		db.count++
	}

	return scanner.Err()
}

// applyMoves parses and replays movetext like "1. e4 e5 2. Nf3 Nc6".
func (db *Database) applyMoves(situation *rules.Situation, pgnMoves string) error {
	cleaned := moveNumberRegex.ReplaceAllString(pgnMoves, "")
	for _, san := range strings.Fields(cleaned) {
		if san == "" || san[0] == '$' || san[0] == '{' {
			continue
		}
		san = strings.TrimSuffix(san, "+")
		san = strings.TrimSuffix(san, "#")

		if _, err := situation.ApplySAN(san); err != nil {
			return fmt.Errorf("apply %q: %w", san, err)
		}
	}
	return nil
}

// Lookup returns the ECO opening for hash, or nil if not found.
func (db *Database) Lookup(hash model.Hash) *Opening {
	if o, ok := db.byHash[hash]; ok {
		return &o
	}
	return nil
}

// LookupSituation returns the ECO opening for a Situation's current
// position.
func (db *Database) LookupSituation(situation *rules.Situation) *Opening {
	return db.Lookup(situation.Hash())
}

// Count returns the number of openings loaded.
func (db *Database) Count() int {
	return db.count
}
