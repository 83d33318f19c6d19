package rules

import (
	"encoding/binary"
	"hash/fnv"

	"github.com/lichess-org/lila-openingexplorer/internal/model"
)

// hashPackedPosition folds the rule engine's own packed-position string
// into a 128-bit model.Hash using two independently-seeded FNV-1a passes.
// A true Zobrist hash would XOR per-(piece,square,side) random values
// incrementally as the rule engine applies moves, but that requires
// access to the engine's internal board representation, which this
// module treats as opaque (spec Non-goals: implementing a rule engine).
// Hashing the engine's own canonical serialization gives the same
// identity invariant this module actually needs (equal positions produce
// equal keys) without reaching into it.
func hashPackedPosition(packed string, variant model.Variant) model.Hash {
	lo := fnv.New64a()
	lo.Write([]byte(packed))
	lo.Write([]byte{byte(variant)})

	hi := fnv.New64a()
	hi.Write([]byte{0x01}) // distinct seed byte so lo/hi don't collide
	hi.Write([]byte(packed))
	hi.Write([]byte{byte(variant)})

	var h model.Hash
	binary.BigEndian.PutUint64(h[0:8], hi.Sum64())
	binary.BigEndian.PutUint64(h[8:16], lo.Sum64())
	return h
}
