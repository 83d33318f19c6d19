package store

import "github.com/lichess-org/lila-openingexplorer/internal/model"

// Stats holds the global per-database counters served by the stats
// endpoint.
type Stats struct {
	MasterPositions uint64
	MasterGames     uint64

	LichessPositions map[model.Variant]uint64
	LichessGames     uint64
}

// Databases bundles every open store the stats endpoint and the importer
// need a handle to, so main only has to wire this once.
type Databases struct {
	Master    *MasterStore
	MasterPgn *PgnStore
	Lichess   map[model.Variant]*EntryStore
	GameInfo  *GameInfoStore
}

// Stats aggregates record counts across every open store. Game counts
// track the auxiliary stores, since those (not the position stores) hold
// exactly one record per indexed game.
func (d *Databases) Stats() Stats {
	s := Stats{
		LichessPositions: make(map[model.Variant]uint64, len(d.Lichess)),
	}
	if d.Master != nil {
		s.MasterPositions = d.Master.RecordCount()
	}
	if d.MasterPgn != nil {
		s.MasterGames = d.MasterPgn.RecordCount()
	}
	for variant, st := range d.Lichess {
		s.LichessPositions[variant] = st.RecordCount()
	}
	if d.GameInfo != nil {
		s.LichessGames = d.GameInfo.RecordCount()
	}
	return s
}

// Close closes every store that is non-nil, collecting the first error
// encountered but still attempting to close the rest.
func (d *Databases) Close() error {
	var first error
	note := func(err error) {
		if err != nil && first == nil {
			first = err
		}
	}
	if d.Master != nil {
		note(d.Master.Close())
	}
	if d.MasterPgn != nil {
		note(d.MasterPgn.Close())
	}
	if d.GameInfo != nil {
		note(d.GameInfo.Close())
	}
	for _, st := range d.Lichess {
		note(st.Close())
	}
	return first
}
