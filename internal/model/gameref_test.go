package model

import "testing"

func TestGameRefRoundTrip(t *testing.T) {
	tests := []GameRef{
		{GameID: "g0000001", Winner: WinnerWhite, Speed: SpeedBlitz, AverageRating: 1500},
		{GameID: "abcdefgh", Winner: WinnerBlack, Speed: SpeedClassical, AverageRating: 2871},
		{GameID: "00000000", Winner: WinnerDraw, Speed: SpeedBullet, AverageRating: 0},
		{GameID: "zzzzzzzz", Winner: WinnerWhite, Speed: SpeedRapid, AverageRating: 4095},
	}
	for _, ref := range tests {
		t.Run(ref.GameID, func(t *testing.T) {
			b, err := ref.Encode()
			if err != nil {
				t.Fatalf("Encode: %v", err)
			}
			got, err := DecodeGameRef(b)
			if err != nil {
				t.Fatalf("DecodeGameRef: %v", err)
			}
			if got != ref {
				t.Fatalf("round trip = %+v, want %+v", got, ref)
			}
		})
	}
}

func TestGameRefRatingClamped(t *testing.T) {
	ref := GameRef{GameID: "g0000001", Winner: WinnerWhite, Speed: SpeedBlitz, AverageRating: 9000}
	b, err := ref.Encode()
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	got, err := DecodeGameRef(b)
	if err != nil {
		t.Fatalf("DecodeGameRef: %v", err)
	}
	if got.AverageRating != maxAverageRating {
		t.Fatalf("AverageRating = %d, want %d", got.AverageRating, maxAverageRating)
	}
}

func TestGameRefReservedWinnerDecodesAsDraw(t *testing.T) {
	// Header with winner bits set to the reserved value 3.
	ref := GameRef{GameID: "g0000001", Winner: 3, Speed: SpeedBlitz, AverageRating: 1500}
	b, err := ref.Encode()
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	got, err := DecodeGameRef(b)
	if err != nil {
		t.Fatalf("DecodeGameRef: %v", err)
	}
	if got.Winner != WinnerDraw {
		t.Fatalf("Winner = %v, want draw", got.Winner)
	}
}

func TestGameRefSize(t *testing.T) {
	ref := GameRef{GameID: "g0000001", Winner: WinnerWhite, Speed: SpeedBlitz, AverageRating: 1500}
	b, err := ref.Encode()
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if len(b) != 8 {
		t.Fatalf("encoded size = %d, want 8", len(b))
	}
}

func TestGameIDMustBeEightChars(t *testing.T) {
	ref := GameRef{GameID: "short", Winner: WinnerWhite, Speed: SpeedBlitz, AverageRating: 1500}
	if _, err := ref.Encode(); err == nil {
		t.Fatalf("Encode of a non-8-char id should fail")
	}
}

func TestBase62Boundaries(t *testing.T) {
	for _, id := range []string{"00000000", "99999999", "aaaaaaaa", "ZZZZZZZZ", "zzzzzzzz"} {
		v, err := gameIDToUint64(id)
		if err != nil {
			t.Fatalf("gameIDToUint64(%q): %v", id, err)
		}
		if got := uint64ToGameID(v); got != id {
			t.Fatalf("round trip of %q = %q", id, got)
		}
	}
}
