package pack

// MoveToken is the 16-bit wire encoding of a board move or a piece drop:
//
//	bits 15..12: role (promotion piece 1..4, or drop piece 1..6)
//	bits 11..6:  dest square (0..63)
//	bits 5..0:   orig square (0..63)
//
// A drop is distinguished from a board move by orig == dest. Promotions use
// role in [1,4]; drops use role in [1,6].
type MoveToken uint16

const (
	squareMask = 0x3f
	roleShift  = 12
	destShift  = 6
)

// Promotion/drop role identifiers. Roles 1-4 are valid promotion pieces;
// roles 1-6 are valid drop pieces (Crazyhouse).
const (
	RoleNone   = 0
	RoleQueen  = 1
	RoleRook   = 2
	RoleBishop = 3
	RoleKnight = 4
	RolePawn   = 5
	RoleKing   = 6
)

// EncodeMove packs a board move (orig, dest, optional promotion role 0..4)
// into a MoveToken. orig must differ from dest (a move with orig == dest
// would be indistinguishable from a drop).
func EncodeMove(orig, dest int, promoRole uint8) (MoveToken, error) {
	if orig < 0 || orig > 63 || dest < 0 || dest > 63 {
		return 0, ErrMalformed
	}
	if orig == dest {
		return 0, ErrMalformed
	}
	if promoRole > RoleKnight {
		return 0, ErrMalformed
	}
	return encode(orig, dest, promoRole), nil
}

// EncodeDrop packs a piece drop (role 1..6, destination square) into a
// MoveToken. A drop is stored with orig == dest.
func EncodeDrop(role uint8, dest int) (MoveToken, error) {
	if dest < 0 || dest > 63 {
		return 0, ErrMalformed
	}
	if role < RoleQueen || role > RoleKing {
		return 0, ErrMalformed
	}
	return encode(dest, dest, role), nil
}

func encode(orig, dest int, role uint8) MoveToken {
	return MoveToken(uint16(role)<<roleShift | uint16(dest&squareMask)<<destShift | uint16(orig&squareMask))
}

// Orig returns the origin square (0..63). For a drop this equals Dest.
func (m MoveToken) Orig() int {
	return int(m & squareMask)
}

// Dest returns the destination square (0..63).
func (m MoveToken) Dest() int {
	return int((m >> destShift) & squareMask)
}

// Role returns the promotion or drop role (0 if this is a plain move).
func (m MoveToken) Role() uint8 {
	return uint8(m >> roleShift)
}

// IsDrop reports whether this token encodes a piece drop.
func (m MoveToken) IsDrop() bool {
	return m.Orig() == m.Dest()
}

// Validate checks that the decoded orig/dest/role triple is internally
// consistent (legal squares, a role appropriate to move-vs-drop).
func (m MoveToken) Validate() error {
	role := m.Role()
	if m.IsDrop() {
		if role < RoleQueen || role > RoleKing {
			return ErrMalformed
		}
		return nil
	}
	if role > RoleKnight {
		return ErrMalformed
	}
	return nil
}

// WriteMoveToken appends the big-endian 16-bit encoding of m.
func (w *Writer) WriteMoveToken(m MoveToken) {
	w.WriteU16(uint16(m))
}

// ReadMoveToken reads and validates a 16-bit move token.
func (r *Reader) ReadMoveToken() (MoveToken, error) {
	v, err := r.ReadU16()
	if err != nil {
		return 0, err
	}
	m := MoveToken(v)
	if err := m.Validate(); err != nil {
		return 0, err
	}
	return m, nil
}

// squareName converts a 0..63 square index to algebraic notation (a1..h8).
func squareName(sq int) string {
	file := byte('a' + sq%8)
	rank := byte('1' + sq/8)
	return string([]byte{file, rank})
}

var promoLetters = map[uint8]byte{RoleQueen: 'q', RoleRook: 'r', RoleBishop: 'b', RoleKnight: 'n'}
var dropLetters = map[uint8]byte{RoleQueen: 'Q', RoleRook: 'R', RoleBishop: 'B', RoleKnight: 'N', RolePawn: 'P', RoleKing: 'K'}

// UCI renders the token in UCI-equivalent notation: "e2e4", "e7e8q" for a
// promotion, "N@f3" for a Crazyhouse drop.
func (m MoveToken) UCI() string {
	if m.IsDrop() {
		letter := dropLetters[m.Role()]
		return string([]byte{letter, '@'}) + squareName(m.Dest())
	}
	s := squareName(m.Orig()) + squareName(m.Dest())
	if letter, ok := promoLetters[m.Role()]; ok {
		s += string([]byte{letter})
	}
	return s
}
