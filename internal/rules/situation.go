// Package rules is the thin adapter between this module's position-store
// domain and the external chess rule engine (github.com/freeeve/pgn/v3):
// move generation, SAN/UCI rendering, and position hashing are all
// delegated to it, since implementing a rule engine is explicitly out of
// scope here (see spec Non-goals).
package rules

import (
	"github.com/freeeve/pgn/v3"

	"github.com/lichess-org/lila-openingexplorer/internal/model"
	"github.com/lichess-org/lila-openingexplorer/internal/pack"
)

// Situation is a board position tagged with the variant it belongs to.
// Variant-specific legality (Crazyhouse drops, antichess capture-forcing,
// ...) is not enforced here: the rule engine this wraps only knows
// standard chess, so Situation only carries the variant as a partitioning
// tag for the position-store lookup and the store key's hash input.
type Situation struct {
	Variant model.Variant
	pos     *pgn.GameState
}

// LegalMove is one move available from a Situation, with the wire token
// and the UCI/SAN strings the HTTP layer renders directly.
type LegalMove struct {
	Token pack.MoveToken
	UCI   string
	SAN   string
	mv    pgn.Mv
}

// NewGame returns the Situation at the starting position for variant.
func NewGame(variant model.Variant) *Situation {
	return &Situation{Variant: variant, pos: pgn.NewStartingPosition()}
}

// NewGameFromFEN parses a Forsyth-Edwards string into a Situation tagged
// with variant, the path the HTTP query handlers use to resolve a
// request's `fen` parameter. Grounded on the rule engine's own
// FEN-to-PackedPosition-to-GameState round trip (see the pack/unpack
// cycle Child uses below).
func NewGameFromFEN(variant model.Variant, fen string) (*Situation, error) {
	packedStr, err := pgn.PackedPositionFromFEN(fen)
	if err != nil {
		return nil, err
	}
	packed, err := pgn.ParsePackedPosition(packedStr)
	if err != nil {
		return nil, err
	}
	pos := packed.Unpack()
	if pos == nil {
		return nil, pack.ErrMalformed
	}
	return &Situation{Variant: variant, pos: pos}, nil
}

// FEN renders the current position in Forsyth-Edwards notation.
func (s *Situation) FEN() string {
	return s.pos.ToFEN()
}

// Hash computes the store key for this Situation: the rule engine's own
// packed-position string, folded into the 128-bit key space, salted by
// variant so that otherwise-identical piece placements in different
// variants never collide across the per-variant stores (each variant
// already has its own store file, so this is a belt-and-braces guard, not
// load-bearing).
func (s *Situation) Hash() model.Hash {
	return hashPackedPosition(s.pos.Pack().String(), s.Variant)
}

// LegalMoves enumerates the moves available from the current position.
// The rule engine's generator is one-shot and non-lazy, so this is a
// plain slice rather than an iterator; spec's "generator-style" design
// note applies to move enumeration conceptually (finite, one-shot) and
// does not require literal lazy iteration in this language.
func (s *Situation) LegalMoves() []LegalMove {
	mvs := pgn.GenerateLegalMoves(s.pos)
	out := make([]LegalMove, 0, len(mvs))
	for _, mv := range mvs {
		token, err := moveToken(mv)
		if err != nil {
			continue
		}
		out = append(out, LegalMove{
			Token: token,
			UCI:   moveUCI(mv),
			SAN:   mv.String(),
			mv:    mv,
		})
	}
	return out
}

// ApplySAN plays a move given in PGN move-text SAN notation, advancing s
// in place, and returns the LegalMove it resolved to.
func (s *Situation) ApplySAN(san string) (LegalMove, error) {
	mv, err := pgn.ParseSAN(s.pos, san)
	if err != nil {
		return LegalMove{}, err
	}
	token, err := moveToken(mv)
	if err != nil {
		return LegalMove{}, err
	}
	lm := LegalMove{Token: token, UCI: moveUCI(mv), SAN: mv.String(), mv: mv}
	if err := pgn.ApplyMove(s.pos, mv); err != nil {
		return LegalMove{}, err
	}
	return lm, nil
}

// ApplyMv advances s in place by a move already parsed by the rule engine
// (as opposed to ApplySAN, which parses move text itself). This is the
// path the importer uses: a whole game's move list comes back from the
// PGN parser pre-parsed, and replaying it ply-by-ply must not re-derive
// SAN text for each move just to parse it again.
func (s *Situation) ApplyMv(mv pgn.Mv) (LegalMove, error) {
	token, err := moveToken(mv)
	if err != nil {
		return LegalMove{}, err
	}
	lm := LegalMove{Token: token, UCI: moveUCI(mv), SAN: mv.String(), mv: mv}
	if err := pgn.ApplyMove(s.pos, mv); err != nil {
		return LegalMove{}, err
	}
	return lm, nil
}

// Child returns the Situation reached by playing mv from s, without
// mutating s: the rule engine's pack/unpack round trip is its own
// documented way of cloning a position (see router_tablebase.go in the
// corpus this adapter is grounded on).
func (s *Situation) Child(mv LegalMove) (*Situation, error) {
	clone := s.pos.Pack().Unpack()
	if clone == nil {
		return nil, pack.ErrMalformed
	}
	if err := pgn.ApplyMove(clone, mv.mv); err != nil {
		return nil, err
	}
	return &Situation{Variant: s.Variant, pos: clone}, nil
}
