package importer

import (
	"os"
	"strings"

	"github.com/freeeve/pgn/v3"
)

// parsedGame is one game parsed from a batch, kept minimal to exactly the
// fields the import pipeline needs.
type parsedGame struct {
	Tags  map[string]string
	Moves []pgn.Mv
}

// SplitPGNBatch splits a multi-game PGN text into the literal per-game
// substrings it contains (spec §4.7: "games separated by a blank line").
// The master pipeline stores a game's raw text verbatim in pgnStore, so a
// batch-import CLI driving MasterImporter.Import one call per game needs
// the original substrings, not just the parsed tags/moves parsePGNText
// returns.
func SplitPGNBatch(text string) []string {
	lines := strings.Split(text, "\n")
	var games []string
	var cur []string
	inMovetext := false
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "[") && inMovetext {
			if joined := strings.TrimSpace(strings.Join(cur, "\n")); joined != "" {
				games = append(games, joined)
			}
			cur = nil
			inMovetext = false
		}
		if trimmed != "" && !strings.HasPrefix(trimmed, "[") {
			inMovetext = true
		}
		cur = append(cur, line)
	}
	if joined := strings.TrimSpace(strings.Join(cur, "\n")); joined != "" {
		games = append(games, joined)
	}
	return games
}

// parsePGNText parses one or more games out of a PGN text blob, the same
// way the teacher's own folder-watching worker parses a PGN file
// (internal/ingest/ingest.go: pgn.Games, draining its channel). The rule
// engine's parser only accepts a path, so a batch delivered as an HTTP
// request body is spooled to a temp file first; the parsed games are
// collected into a slice before returning.
func parsePGNText(text string) ([]parsedGame, error) {
	f, err := os.CreateTemp("", "openingexplorer-import-*.pgn")
	if err != nil {
		return nil, err
	}
	path := f.Name()
	defer os.Remove(path)

	if _, err := f.WriteString(text); err != nil {
		f.Close()
		return nil, err
	}
	if err := f.Close(); err != nil {
		return nil, err
	}

	parser := pgn.Games(path)
	var games []parsedGame
	for g := range parser.Games {
		games = append(games, parsedGame{Tags: g.Tags, Moves: g.Moves})
	}
	if err := parser.Err(); err != nil {
		return nil, err
	}
	return games, nil
}
