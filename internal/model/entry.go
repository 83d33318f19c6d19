package model

import (
	"sort"

	"github.com/lichess-org/lila-openingexplorer/internal/pack"
)

// CellKey identifies one (rating band, speed) cell of an Entry.
type CellKey struct {
	Band  RatingBand
	Speed Speed
}

// Entry is the sparse (rating band x speed) cross-product of statistics
// for one Lichess position: each populated cell is an independent SubEntry.
type Entry struct {
	cells map[CellKey]*SubEntry
}

// NewEntry returns an Entry with no populated cells.
func NewEntry() *Entry {
	return &Entry{cells: make(map[CellKey]*SubEntry)}
}

// Cells exposes the populated cells for read-only iteration by the query
// layer. Callers must not mutate the returned SubEntry values directly;
// use InsertRef/SubtractRef instead.
func (e *Entry) Cells() map[CellKey]*SubEntry {
	return e.cells
}

// Cell returns the SubEntry for a specific band/speed, or nil if empty.
func (e *Entry) Cell(band RatingBand, speed Speed) *SubEntry {
	return e.cells[CellKey{Band: band, Speed: speed}]
}

func (e *Entry) cellFor(band RatingBand, speed Speed) *SubEntry {
	k := CellKey{Band: band, Speed: speed}
	sub, ok := e.cells[k]
	if !ok {
		sub = NewSubEntry()
		e.cells[k] = sub
	}
	return sub
}

// InsertRef records one game's move into the cell its rating and speed
// naturally belong to.
func (e *Entry) InsertRef(ref GameRef, move pack.MoveToken) {
	band := RatingBandOf(int(ref.AverageRating))
	e.cellFor(band, ref.Speed).Insert(ref, move)
}

// SubtractRef reverses a prior InsertRef, dropping the cell entirely once
// it becomes empty.
func (e *Entry) SubtractRef(ref GameRef, move pack.MoveToken) {
	band := RatingBandOf(int(ref.AverageRating))
	key := CellKey{Band: band, Speed: ref.Speed}
	sub, ok := e.cells[key]
	if !ok {
		return
	}
	sub.Remove(ref, move)
	if sub.IsEmpty() {
		delete(e.cells, key)
	}
}

// IsEmpty reports whether the Entry has no populated cells.
func (e *Entry) IsEmpty() bool {
	return len(e.cells) == 0
}

// SortedCellKeys returns the keys of cells in ascending (band, speed)
// order, for callers that need deterministic iteration over an Entry's
// cells instead of Go's randomized map order.
func SortedCellKeys(cells map[CellKey]*SubEntry) []CellKey {
	keys := make([]CellKey, 0, len(cells))
	for k := range cells {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Band != keys[j].Band {
			return keys[i].Band < keys[j].Band
		}
		return keys[i].Speed < keys[j].Speed
	})
	return keys
}

// Encode serializes the Entry as a sequence of per-cell blocks:
//
//	[varuint N][N x 8-byte GameRef][moves-only SubEntry]
//
// repeated once per non-empty cell, in ascending (band, speed) order. The
// game refs persisted in a cell are the union of its most recent
// MaxRecentGames games and the highest-rated MaxTopGames games of its speed
// bucket across every rating band (deduplicated), so that a handful of
// notable high-rated games survive compaction even outside their own band's
// recency window.
func (e *Entry) Encode() []byte {
	w := pack.NewWriter()
	if len(e.cells) == 0 {
		return w.Bytes()
	}

	bySpeed := make(map[Speed][]GameRef)
	for key, sub := range e.cells {
		bySpeed[key.Speed] = append(bySpeed[key.Speed], sub.Games...)
	}

	topExtra := make(map[CellKey][]GameRef)
	for speed, candidates := range bySpeed {
		for _, ref := range selectTop(candidates, MaxTopGames) {
			key := CellKey{Band: RatingBandOf(int(ref.AverageRating)), Speed: speed}
			topExtra[key] = append(topExtra[key], ref)
		}
	}

	for _, key := range SortedCellKeys(e.cells) {
		sub := e.cells[key]
		recent := sub.Games
		if len(recent) > MaxRecentGames {
			recent = recent[:MaxRecentGames]
		}
		final := dedupeRefs(append(append([]GameRef{}, recent...), topExtra[key]...))
		if len(final) == 0 {
			continue
		}
		w.WriteVaruint(uint64(len(final)))
		for _, ref := range final {
			if err := writeGameRef(w, ref); err != nil {
				continue
			}
		}
		sub.EncodeStatsOnly(w)
	}
	return w.Bytes()
}

// DecodeEntry parses the block sequence written by Encode.
func DecodeEntry(data []byte) (*Entry, error) {
	e := NewEntry()
	r := pack.NewReader(data)
	for !r.Done() {
		n, err := r.ReadVaruint()
		if err != nil {
			return nil, err
		}
		if n == 0 {
			return nil, pack.ErrMalformed
		}
		refs := make([]GameRef, 0, n)
		for i := uint64(0); i < n; i++ {
			ref, err := readGameRef(r)
			if err != nil {
				return nil, err
			}
			refs = append(refs, ref)
		}
		moves, err := decodeMovesOnly(r)
		if err != nil {
			return nil, err
		}
		band := RatingBandOf(int(refs[0].AverageRating))
		speed := refs[0].Speed
		sub := e.cellFor(band, speed)
		sub.Games = append(sub.Games, refs...)
		sub.Moves = moves
	}
	return e, nil
}

// AggregateStats merges the MoveStats of every cell whose band and speed
// appear in bands and speeds (nil/empty means "all").
func (e *Entry) AggregateStats(bands []RatingBand, speeds []Speed) map[pack.MoveToken]MoveStats {
	out := make(map[pack.MoveToken]MoveStats)
	for _, key := range SortedCellKeys(e.cells) {
		if !bandSelected(bands, key.Band) || !speedSelected(speeds, key.Speed) {
			continue
		}
		for token, stats := range e.cells[key].Moves {
			out[token] = out[token].Merge(stats)
		}
	}
	return out
}

// RecentGames returns up to n game refs from the selected cells,
// approximating global recency across cells (see interleaveRecent).
func (e *Entry) RecentGames(bands []RatingBand, speeds []Speed, n int) []GameRef {
	var lists [][]GameRef
	for _, key := range SortedCellKeys(e.cells) {
		if !bandSelected(bands, key.Band) || !speedSelected(speeds, key.Speed) {
			continue
		}
		lists = append(lists, e.cells[key].Games)
	}
	return interleaveRecent(lists, n)
}

func bandSelected(bands []RatingBand, band RatingBand) bool {
	if len(bands) == 0 {
		return true
	}
	for _, b := range bands {
		if b == band {
			return true
		}
	}
	return false
}

func speedSelected(speeds []Speed, speed Speed) bool {
	if len(speeds) == 0 {
		return true
	}
	for _, s := range speeds {
		if s == speed {
			return true
		}
	}
	return false
}
