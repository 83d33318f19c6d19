package store

import "github.com/klauspost/compress/zstd"

// textCodec holds a persistent zstd encoder/decoder pair, reused across
// calls rather than constructed per value: both are safe for concurrent
// use and expensive enough to set up that per-call construction would
// dominate small-value compression.
type textCodec struct {
	encoder *zstd.Encoder
	decoder *zstd.Decoder
}

func newTextCodec() (*textCodec, error) {
	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, err
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		enc.Close()
		return nil, err
	}
	return &textCodec{encoder: enc, decoder: dec}, nil
}

// compress substitutes klauspost/compress/zstd for the LZMA compression
// used by the system this was modeled on: both are general-purpose
// dictionary compressors over the same pipe-separated/plain-text values,
// and zstd is already the codec the rest of this module depends on for
// segment bodies, so no second compression library is pulled in only for
// these two stores.
func (c *textCodec) compress(s string) []byte {
	return c.encoder.EncodeAll([]byte(s), nil)
}

func (c *textCodec) decompress(b []byte) (string, error) {
	out, err := c.decoder.DecodeAll(b, nil)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

func (c *textCodec) close() {
	c.encoder.Close()
	c.decoder.Close()
}
