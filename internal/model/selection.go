package model

import "sort"

// MaxRecentGames is the number of most-recent game refs persisted per cell.
const MaxRecentGames = 2

// MaxTopGames is the number of highest-rated game refs persisted across all
// of a MasterEntry's games, or per speed bucket across all rating bands
// (Entry).
const MaxTopGames = 4

// selectTop returns up to n refs from candidates, ordered by descending
// average rating. Ties keep the candidates' relative order, so a caller
// that lists candidates newest-first breaks rating ties in favor of the
// more recently inserted game.
func selectTop(candidates []GameRef, n int) []GameRef {
	sorted := make([]GameRef, len(candidates))
	copy(sorted, candidates)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].AverageRating > sorted[j].AverageRating
	})
	if len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}

// dedupeRefs removes duplicate game ids, keeping the first occurrence.
func dedupeRefs(refs []GameRef) []GameRef {
	seen := make(map[string]bool, len(refs))
	out := make([]GameRef, 0, len(refs))
	for _, ref := range refs {
		if seen[ref.GameID] {
			continue
		}
		seen[ref.GameID] = true
		out = append(out, ref)
	}
	return out
}

// interleaveRecent merges multiple newest-first game-ref lists into a
// single list truncated to n, approximating global recency by taking each
// list's most-recent entry first, then each list's second-most-recent, and
// so on. GameRef carries no timestamp, so this is the best recency ordering
// recoverable once games from independent cells are combined; a single-cell
// query (the common case) is unaffected, since there is nothing to
// interleave.
func interleaveRecent(lists [][]GameRef, n int) []GameRef {
	out := make([]GameRef, 0, n)
	for depth := 0; len(out) < n; depth++ {
		added := false
		for _, list := range lists {
			if depth < len(list) {
				out = append(out, list[depth])
				added = true
				if len(out) == n {
					return out
				}
			}
		}
		if !added {
			break
		}
	}
	return out
}
