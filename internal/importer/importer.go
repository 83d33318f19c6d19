// Package importer drives the PGN -> (hash, move, GameRef) pipeline that
// feeds position-store merges, for both the master and Lichess databases.
// It mirrors the shape of the teacher's own folder-watching ingest worker
// (parse -> filter -> replay -> merge) without the filesystem-watching
// half: import here is driven by an HTTP body or a CLI input file, not a
// polled directory, and flushing is left to the stores themselves.
package importer

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strconv"
	"strings"

	"github.com/freeeve/pgn/v3"

	"github.com/lichess-org/lila-openingexplorer/internal/apperr"
	"github.com/lichess-org/lila-openingexplorer/internal/model"
)

// defaultMaxPlies is used when a variant has no explicit configuration
// (spec §6: "explorer.lichess.<variant>.maxPlies", default 40-50).
const defaultMaxPlies = 40

// base62Alphabet mirrors model's own alphabet so a randomly generated id
// decodes through the same gameIDToUint64 packing as any real game id.
const base62Alphabet = "0123456789abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"

// randomGameID returns an 8-character base-62 id, used when a PGN carries
// no identifying tag (spec §4.7: "gameId ... or random 8-char for
// testing").
func randomGameID() (string, error) {
	var buf [8]byte
	for i := range buf {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(base62Alphabet))))
		if err != nil {
			return "", err
		}
		buf[i] = base62Alphabet[n.Int64()]
	}
	return string(buf[:]), nil
}

// gameID extracts the 8-character identifier a game should be keyed by:
// a valid "GameId" tag if present, else the last path segment of the
// "Site" tag, which is where Lichess PGN exports carry it
// (e.g. "https://lichess.org/abcdefgh"); anything else falls back to a
// fresh random id rather than rejecting the import outright, per spec's
// "or random 8-char for testing" allowance.
func gameID(tags map[string]string) (string, error) {
	if id := tags["GameId"]; isGameID(id) {
		return id, nil
	}
	if site := tags["Site"]; site != "" {
		if idx := strings.LastIndexByte(site, '/'); idx >= 0 && isGameID(site[idx+1:]) {
			return site[idx+1:], nil
		}
	}
	return randomGameID()
}

func isGameID(s string) bool {
	if len(s) != 8 {
		return false
	}
	for i := 0; i < len(s); i++ {
		if strings.IndexByte(base62Alphabet, s[i]) < 0 {
			return false
		}
	}
	return true
}

// parseWinner maps a PGN "Result" tag to a Winner, rejecting anything that
// isn't a decisive or drawn result (an in-progress "*" game is not
// importable).
func parseWinner(result string) (model.Winner, bool) {
	switch result {
	case "1-0":
		return model.WinnerWhite, true
	case "0-1":
		return model.WinnerBlack, true
	case "1/2-1/2":
		return model.WinnerDraw, true
	default:
		return 0, false
	}
}

// parseRating parses a PGN Elo tag, treating "", "?" and "-" as absent
// (mirrors the teacher's own parseRating in cmd/ingest/main.go).
func parseRating(s string) int {
	if s == "" || s == "?" || s == "-" {
		return 0
	}
	r, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return r
}

// averageRating returns the mean of the white/black Elo tags. A zero on
// either side means the rating is absent, not zero.
func averageRating(tags map[string]string) (uint16, bool) {
	white := parseRating(tags["WhiteElo"])
	black := parseRating(tags["BlackElo"])
	if white == 0 || black == 0 {
		return 0, false
	}
	return uint16((white + black) / 2), true
}

// parseYear extracts the four-digit year prefix of a PGN "Date" tag
// ("YYYY.MM.DD"), returning 0 (unknown) if it can't be parsed.
func parseYear(date string) int {
	if len(date) < 4 {
		return 0
	}
	y, err := strconv.Atoi(date[:4])
	if err != nil {
		return 0
	}
	return y
}

// isStandardStart reports whether a parsed game begins from the normal
// starting array, rather than a PGN "SetUp"/"FEN" custom position.
func isStandardStart(tags map[string]string) bool {
	return tags["SetUp"] != "1" && tags["FEN"] == ""
}

// speedOf classifies a game's TimeControl tag into a Speed bucket.
func speedOf(tags map[string]string) model.Speed {
	return model.SpeedFromTimeControl(tags["TimeControl"])
}

// truncate caps moves to at most maxPlies entries.
func truncate(moves []pgn.Mv, maxPlies int) []pgn.Mv {
	if maxPlies > 0 && len(moves) > maxPlies {
		return moves[:maxPlies]
	}
	return moves
}

func rejectf(format string, args ...any) error {
	return apperr.New(apperr.KindImportReject, fmt.Sprintf(format, args...))
}
