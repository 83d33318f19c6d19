package rules

import (
	"github.com/freeeve/pgn/v3"

	"github.com/lichess-org/lila-openingexplorer/internal/pack"
)

// moveToken converts the rule engine's move representation into this
// module's wire MoveToken. Drops are not produced here: the rule engine
// this wraps models standard chess only, so Crazyhouse piece drops (the
// only case pack.EncodeDrop exists for) never originate from this
// adapter.
func moveToken(mv pgn.Mv) (pack.MoveToken, error) {
	return pack.EncodeMove(int(mv.From), int(mv.To), promoRole(mv.Promo))
}

func promoRole(promo int) uint8 {
	switch promo {
	case pgn.PromoQueen:
		return pack.RoleQueen
	case pgn.PromoRook:
		return pack.RoleRook
	case pgn.PromoBishop:
		return pack.RoleBishop
	case pgn.PromoKnight:
		return pack.RoleKnight
	default:
		return pack.RoleNone
	}
}

// moveUCI renders a move in UCI notation, matching the teacher's own
// moveToUCI helper (router_tablebase.go) byte for byte in behavior.
func moveUCI(mv pgn.Mv) string {
	const files = "abcdefgh"
	const ranks = "12345678"

	from := string(files[mv.From%8]) + string(ranks[mv.From/8])
	to := string(files[mv.To%8]) + string(ranks[mv.To/8])
	uci := from + to

	switch mv.Promo {
	case pgn.PromoQueen:
		uci += "q"
	case pgn.PromoRook:
		uci += "r"
	case pgn.PromoBishop:
		uci += "b"
	case pgn.PromoKnight:
		uci += "n"
	}
	return uci
}
