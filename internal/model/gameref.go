package model

import "github.com/lichess-org/lila-openingexplorer/internal/pack"

// base62Alphabet is the digit set used to pack an 8-character game id into
// 48 bits: digits, then lower-case, then upper-case.
const base62Alphabet = "0123456789abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"

const gameIDLength = 8

var base62Index = func() map[byte]uint64 {
	m := make(map[byte]uint64, len(base62Alphabet))
	for i := 0; i < len(base62Alphabet); i++ {
		m[base62Alphabet[i]] = uint64(i)
	}
	return m
}()

// gameIDToUint64 decodes an 8-character base-62 game id into its integer
// value, most-significant digit first.
func gameIDToUint64(id string) (uint64, error) {
	if len(id) != gameIDLength {
		return 0, pack.ErrMalformed
	}
	var v uint64
	for i := 0; i < gameIDLength; i++ {
		digit, ok := base62Index[id[i]]
		if !ok {
			return 0, pack.ErrMalformed
		}
		v = v*62 + digit
	}
	return v, nil
}

// uint64ToGameID encodes v back into an 8-character, left-zero-padded
// base-62 string.
func uint64ToGameID(v uint64) string {
	var buf [gameIDLength]byte
	for i := gameIDLength - 1; i >= 0; i-- {
		buf[i] = base62Alphabet[v%62]
		v /= 62
	}
	return string(buf[:])
}

const maxAverageRating = 0x0FFF // 12 bits

// GameRef is the 8-byte reference to a single game, as embedded in a
// position's SubEntry game lists: the game's id, its result, its speed
// bucket, and the average rating of the two players at the time it was
// played.
type GameRef struct {
	GameID        string
	Winner        Winner
	Speed         Speed
	AverageRating uint16
}

// Encode packs the GameRef into its 8-byte wire form:
//
//	bits 15..14: speed
//	bits 13..12: winner
//	bits 11..0:  averageRating, clamped to [0,4095]
//	bits 47..0 (following): base-62 decoded game id
func (g GameRef) Encode() ([8]byte, error) {
	id, err := gameIDToUint64(g.GameID)
	if err != nil {
		return [8]byte{}, err
	}
	rating := g.AverageRating
	if rating > maxAverageRating {
		rating = maxAverageRating
	}
	header := uint16(g.Speed&0x3)<<14 | uint16(g.Winner&0x3)<<12 | rating&maxAverageRating

	w := pack.NewWriterSize(8)
	w.WriteU16(header)
	w.WriteU48(id)

	var out [8]byte
	copy(out[:], w.Bytes())
	return out, nil
}

// DecodeGameRef unpacks an 8-byte GameRef. The reserved winner value (3)
// decodes as a draw.
func DecodeGameRef(b [8]byte) (GameRef, error) {
	r := pack.NewReader(b[:])
	header, err := r.ReadU16()
	if err != nil {
		return GameRef{}, err
	}
	id, err := r.ReadU48()
	if err != nil {
		return GameRef{}, err
	}

	speed := Speed((header >> 14) & 0x3)
	winner := Winner((header >> 12) & 0x3)
	if winner == winnerReserved {
		winner = WinnerDraw
	}
	rating := header & maxAverageRating

	return GameRef{
		GameID:        uint64ToGameID(id),
		Winner:        winner,
		Speed:         speed,
		AverageRating: rating,
	}, nil
}

func writeGameRef(w *pack.Writer, ref GameRef) error {
	b, err := ref.Encode()
	if err != nil {
		return err
	}
	w.WriteBytes(b[:])
	return nil
}

func readGameRef(r *pack.Reader) (GameRef, error) {
	raw, err := r.ReadBytes(8)
	if err != nil {
		return GameRef{}, err
	}
	var b [8]byte
	copy(b[:], raw)
	return DecodeGameRef(b)
}
