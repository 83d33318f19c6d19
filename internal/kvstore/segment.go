package kvstore

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"hash/crc32"
	"io"
	"os"
	"sort"

	"github.com/klauspost/compress/zstd"
)

// segmentMagic identifies a segment file; segmentVersion allows the format
// to change without breaking detection of foreign files.
var segmentMagic = [4]byte{'o', 'e', 's', 'g'}

const segmentVersion = 1

// segmentRecord is one entry of a flushed, immutable segment: a key, its
// value, and whether it is a tombstone (a deletion recorded so it can
// shadow the same key in an older segment until compaction drops both).
type segmentRecord struct {
	key       []byte
	value     []byte
	tombstone bool
}

// segment is a sorted, immutable run of records backing a Get once its
// data has left the memtable. The whole body is kept decompressed in
// memory after loading: at the scale of one opening-explorer position
// store this is simpler and fast enough, and avoids the complexity of
// multi-block segment files the corpus's original fixed-record-width
// format relies on (see DESIGN.md).
type segment struct {
	path    string
	records []segmentRecord
	bloom   *bloomFilter
	minKey  []byte
	maxKey  []byte
}

// writeSegment persists sorted records (as produced by
// shardedMemtable.freezeAllSorted or a compaction merge) to path as a
// single zstd-compressed body, and returns the in-memory segment handle
// for it.
func writeSegment(path string, records []segmentRecord) (*segment, error) {
	if len(records) == 0 {
		return nil, fmt.Errorf("kvstore: refuse to write an empty segment")
	}

	var body bytes.Buffer
	binary.Write(&body, binary.BigEndian, uint32(len(records)))
	for _, rec := range records {
		var flags byte
		if rec.tombstone {
			flags = 1
		}
		body.WriteByte(flags)
		writeUint32Prefixed(&body, rec.key)
		writeUint32Prefixed(&body, rec.value)
	}

	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, err
	}
	compressed := enc.EncodeAll(body.Bytes(), nil)
	if err := enc.Close(); err != nil {
		return nil, err
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var header [12]byte
	copy(header[0:4], segmentMagic[:])
	binary.BigEndian.PutUint32(header[4:8], segmentVersion)
	binary.BigEndian.PutUint32(header[8:12], crc32.ChecksumIEEE(compressed))
	if _, err := f.Write(header[:]); err != nil {
		return nil, err
	}
	if _, err := f.Write(compressed); err != nil {
		return nil, err
	}
	if err := f.Sync(); err != nil {
		return nil, err
	}

	return buildSegment(path, records), nil
}

func writeUint32Prefixed(buf *bytes.Buffer, b []byte) {
	var lenBuf [4]byte
	binary.BigEndian.PutUint32(lenBuf[:], uint32(len(b)))
	buf.Write(lenBuf[:])
	buf.Write(b)
}

func readUint32Prefixed(r *bytes.Reader) ([]byte, error) {
	var lenBuf [4]byte
	if _, err := io.ReadFull(r, lenBuf[:]); err != nil {
		return nil, err
	}
	n := binary.BigEndian.Uint32(lenBuf[:])
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, err
	}
	return buf, nil
}

func buildSegment(path string, records []segmentRecord) *segment {
	s := &segment{path: path, records: records}
	s.bloom = newBloomFilter(len(records))
	for _, rec := range records {
		s.bloom.add(rec.key)
	}
	if len(records) > 0 {
		s.minKey = records[0].key
		s.maxKey = records[len(records)-1].key
	}
	return s
}

// loadSegment reads a segment file written by writeSegment back into
// memory, verifying its checksum.
func loadSegment(path string) (*segment, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if len(raw) < 12 || string(raw[0:4]) != string(segmentMagic[:]) {
		return nil, fmt.Errorf("%w: bad segment header in %s", ErrCorrupt, path)
	}
	compressed := raw[12:]
	wantCRC := binary.BigEndian.Uint32(raw[8:12])
	if crc32.ChecksumIEEE(compressed) != wantCRC {
		return nil, fmt.Errorf("%w: checksum mismatch in %s", ErrCorrupt, path)
	}

	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, err
	}
	defer dec.Close()
	body, err := dec.DecodeAll(compressed, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}

	r := bytes.NewReader(body)
	var count uint32
	if err := binary.Read(r, binary.BigEndian, &count); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	records := make([]segmentRecord, 0, count)
	for i := uint32(0); i < count; i++ {
		flags, err := r.ReadByte()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
		}
		key, err := readUint32Prefixed(r)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
		}
		value, err := readUint32Prefixed(r)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
		}
		records = append(records, segmentRecord{key: key, value: value, tombstone: flags&1 != 0})
	}

	return buildSegment(path, records), nil
}

// get performs a bloom-filtered binary search for key. found is false if
// the segment has no record for key at all; if found and tombstone is
// true, the key was deleted as of this segment.
func (s *segment) get(key []byte) (value []byte, tombstone bool, found bool) {
	if s.bloom != nil && !s.bloom.mayContain(key) {
		return nil, false, false
	}
	i := sort.Search(len(s.records), func(i int) bool {
		return bytes.Compare(s.records[i].key, key) >= 0
	})
	if i >= len(s.records) || !bytes.Equal(s.records[i].key, key) {
		return nil, false, false
	}
	rec := s.records[i]
	return rec.value, rec.tombstone, true
}
