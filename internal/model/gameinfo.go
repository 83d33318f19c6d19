package model

import (
	"strconv"
	"strings"

	"github.com/lichess-org/lila-openingexplorer/internal/pack"
)

// GameInfo is the compact record kept for a Lichess game once indexed: just
// enough to render a top-games/recent-games row without re-parsing its PGN.
type GameInfo struct {
	WhiteName   string
	WhiteRating uint16
	BlackName   string
	BlackRating uint16
	Year        int // 0 means unknown, rendered as "?"
}

// Encode renders the pipe-separated on-disk string form:
//
//	"{whiteName}|{whiteRating}|{blackName}|{blackRating}|{year|?}"
func (g GameInfo) Encode() string {
	year := "?"
	if g.Year > 0 {
		year = strconv.Itoa(g.Year)
	}
	return strings.Join([]string{
		g.WhiteName,
		strconv.Itoa(int(g.WhiteRating)),
		g.BlackName,
		strconv.Itoa(int(g.BlackRating)),
		year,
	}, "|")
}

// DecodeGameInfo parses the pipe-separated on-disk string form.
func DecodeGameInfo(s string) (GameInfo, error) {
	parts := strings.Split(s, "|")
	if len(parts) != 5 {
		return GameInfo{}, pack.ErrMalformed
	}
	whiteRating, err := strconv.Atoi(parts[1])
	if err != nil {
		return GameInfo{}, pack.ErrMalformed
	}
	blackRating, err := strconv.Atoi(parts[3])
	if err != nil {
		return GameInfo{}, pack.ErrMalformed
	}
	year := 0
	if parts[4] != "?" {
		year, err = strconv.Atoi(parts[4])
		if err != nil {
			return GameInfo{}, pack.ErrMalformed
		}
	}
	return GameInfo{
		WhiteName:   parts[0],
		WhiteRating: uint16(whiteRating),
		BlackName:   parts[2],
		BlackRating: uint16(blackRating),
		Year:        year,
	}, nil
}
