package model

import "github.com/lichess-org/lila-openingexplorer/internal/pack"

// MasterEntry is the degenerate, single-cell form of a position record used
// by the master-games database: no rating band or speed partitioning, just
// move stats and a capped list of the highest-rated games.
type MasterEntry struct {
	Sub *SubEntry
}

// NewMasterEntry returns an empty MasterEntry.
func NewMasterEntry() *MasterEntry {
	return &MasterEntry{Sub: NewSubEntry()}
}

// InsertRef records one game's move.
func (m *MasterEntry) InsertRef(ref GameRef, move pack.MoveToken) {
	m.Sub.Insert(ref, move)
}

// SubtractRef reverses a prior InsertRef.
func (m *MasterEntry) SubtractRef(ref GameRef, move pack.MoveToken) {
	m.Sub.Remove(ref, move)
}

// IsEmpty reports whether the entry carries no games and no move stats.
func (m *MasterEntry) IsEmpty() bool {
	return m.Sub.IsEmpty()
}

// Encode writes the moves table followed by the MaxTopGames highest-rated
// games (ties broken in favor of the more recently inserted game).
func (m *MasterEntry) Encode() []byte {
	w := pack.NewWriter()
	top := selectTop(m.Sub.Games, MaxTopGames)
	m.Sub.EncodeMaster(w, top)
	return w.Bytes()
}

// DecodeMasterEntry parses the encoding written by Encode.
func DecodeMasterEntry(data []byte) (*MasterEntry, error) {
	sub, err := DecodeMaster(data)
	if err != nil {
		return nil, err
	}
	return &MasterEntry{Sub: sub}, nil
}
