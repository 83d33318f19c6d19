package pack

import "testing"

func TestEncodeMoveRoundTrip(t *testing.T) {
	tests := []struct {
		name  string
		orig  int
		dest  int
		promo uint8
	}{
		{"g1f3", 6, 21, RoleNone},
		{"e2e4", 12, 28, RoleNone},
		{"e7e8q", 52, 60, RoleQueen},
		{"a7a8r", 48, 56, RoleRook},
		{"h2h1b", 15, 7, RoleBishop},
		{"b7b8n", 49, 57, RoleKnight},
		{"a1h8", 0, 63, RoleNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := EncodeMove(tt.orig, tt.dest, tt.promo)
			if err != nil {
				t.Fatalf("EncodeMove: %v", err)
			}
			if m.IsDrop() {
				t.Fatalf("move incorrectly decoded as a drop")
			}
			if m.Orig() != tt.orig || m.Dest() != tt.dest || m.Role() != tt.promo {
				t.Fatalf("decode = (%d,%d,%d), want (%d,%d,%d)",
					m.Orig(), m.Dest(), m.Role(), tt.orig, tt.dest, tt.promo)
			}
		})
	}
}

func TestEncodeDropRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		role uint8
		dest int
	}{
		{"N@f3", RoleKnight, 21},
		{"Q@d4", RoleQueen, 27},
		{"P@e4", RolePawn, 28},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := EncodeDrop(tt.role, tt.dest)
			if err != nil {
				t.Fatalf("EncodeDrop: %v", err)
			}
			if !m.IsDrop() {
				t.Fatalf("drop incorrectly decoded as a board move")
			}
			if m.Dest() != tt.dest || m.Role() != tt.role {
				t.Fatalf("decode = (dest=%d,role=%d), want (dest=%d,role=%d)",
					m.Dest(), m.Role(), tt.dest, tt.role)
			}
		})
	}
}

// TestMoveTokenWireRoundTrip confirms the spec's "single-game recency" move:
// orig=6 dest=21 role=0, round-tripped through the 16-bit wire encoding.
func TestMoveTokenWireRoundTrip(t *testing.T) {
	m, err := EncodeMove(6, 21, RoleNone)
	if err != nil {
		t.Fatalf("EncodeMove: %v", err)
	}

	w := NewWriter()
	w.WriteMoveToken(m)
	if len(w.Bytes()) != 2 {
		t.Fatalf("move token encoded to %d bytes, want 2", len(w.Bytes()))
	}

	got, err := NewReader(w.Bytes()).ReadMoveToken()
	if err != nil {
		t.Fatalf("ReadMoveToken: %v", err)
	}
	if got != m {
		t.Fatalf("round trip: got %x, want %x", got, m)
	}
	if got.UCI() != "g1f3" {
		t.Fatalf("UCI() = %q, want g1f3", got.UCI())
	}
}

func TestInvalidMoveRejected(t *testing.T) {
	if _, err := EncodeMove(64, 0, RoleNone); err != ErrMalformed {
		t.Fatalf("out-of-range orig: got %v, want ErrMalformed", err)
	}
	if _, err := EncodeMove(0, 0, RoleNone); err != ErrMalformed {
		t.Fatalf("orig==dest (ambiguous with drop): got %v, want ErrMalformed", err)
	}
	if _, err := EncodeMove(0, 1, RoleKing); err != ErrMalformed {
		t.Fatalf("king is not a valid promotion role: got %v, want ErrMalformed", err)
	}
	if _, err := EncodeDrop(RoleNone, 10); err != ErrMalformed {
		t.Fatalf("role-none drop: got %v, want ErrMalformed", err)
	}
}

func TestMalformedTokenRejectedOnDecode(t *testing.T) {
	// role=7 (invalid for both a promotion and a drop) at dest!=orig.
	raw := MoveToken(7<<roleShift | uint16(21)<<destShift | uint16(6))
	w := NewWriter()
	w.WriteMoveToken(raw)
	if _, err := NewReader(w.Bytes()).ReadMoveToken(); err != ErrMalformed {
		t.Fatalf("decode of invalid role = %v, want ErrMalformed", err)
	}
}
