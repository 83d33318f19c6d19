package model

import "fmt"

// ratingBandBounds are the lower bounds of each band. The final band is
// unbounded above.
var ratingBandBounds = []int{0, 1000, 1200, 1400, 1600, 1800, 2000, 2200, 2400, 2600, 2800}

// RatingBand indexes one of the fixed Elo bands used to partition a
// position's statistics. It is stored as the index into ratingBandBounds,
// not the rating itself.
type RatingBand uint8

// RatingBandOf returns the band containing rating, clamping ratings below
// the lowest bound into the lowest band and ratings above the highest bound
// into the open-ended top band.
func RatingBandOf(rating int) RatingBand {
	band := 0
	for i, bound := range ratingBandBounds {
		if rating >= bound {
			band = i
		}
	}
	return RatingBand(band)
}

// Min returns the lower (inclusive) bound of the band.
func (b RatingBand) Min() int {
	if int(b) >= len(ratingBandBounds) {
		return ratingBandBounds[len(ratingBandBounds)-1]
	}
	return ratingBandBounds[b]
}

// Max returns the upper (exclusive) bound of the band, or -1 if the band is
// unbounded above.
func (b RatingBand) Max() int {
	if int(b)+1 >= len(ratingBandBounds) {
		return -1
	}
	return ratingBandBounds[b+1]
}

// String renders the band as its lower bound, e.g. "1600".
func (b RatingBand) String() string {
	return fmt.Sprintf("%d", b.Min())
}

// AllRatingBands returns every rating band, ascending.
func AllRatingBands() []RatingBand {
	out := make([]RatingBand, len(ratingBandBounds))
	for i := range ratingBandBounds {
		out[i] = RatingBand(i)
	}
	return out
}

// ParseRatingBand parses a band by its lower-bound string, e.g. "1600".
func ParseRatingBand(s string) (RatingBand, bool) {
	for i, bound := range ratingBandBounds {
		if fmt.Sprintf("%d", bound) == s {
			return RatingBand(i), true
		}
	}
	return 0, false
}
