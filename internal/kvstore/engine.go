package kvstore

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

// Options configures an Engine.
type Options struct {
	// FlushThreshold is the number of buffered memtable entries at which a
	// write triggers an asynchronous flush to a new segment file.
	FlushThreshold int
	// MaxSegments is the segment count at which background compaction
	// merges all segments into one.
	MaxSegments int
	Logger      zerolog.Logger
}

func (o Options) withDefaults() Options {
	if o.FlushThreshold <= 0 {
		o.FlushThreshold = 4096
	}
	if o.MaxSegments <= 0 {
		o.MaxSegments = 8
	}
	return o
}

// Engine is an embedded ordered byte-key/byte-value store: a WAL for
// crash durability, a sharded memtable for recent writes, and a list of
// immutable sorted segment files for everything flushed to disk.
type Engine struct {
	dir  string
	opts Options
	log  zerolog.Logger

	wal *wal
	mem *shardedMemtable

	segMu    sync.RWMutex
	segments []*segment
	nextSeg  int

	recordCount int64
	closed      int32

	flushMu sync.Mutex

	compactStop chan struct{}
	compactDone chan struct{}
}

// Open opens (creating if necessary) the store rooted at dir, replaying its
// WAL and loading any existing segment files.
func Open(dir string, opts Options) (*Engine, error) {
	opts = opts.withDefaults()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}

	e := &Engine{
		dir:  dir,
		opts: opts,
		log:  opts.Logger,
		mem:  newShardedMemtable(),
	}

	segPaths, err := existingSegmentPaths(dir)
	if err != nil {
		return nil, err
	}
	for _, p := range segPaths {
		seg, err := loadSegment(p)
		if err != nil {
			return nil, fmt.Errorf("kvstore: loading %s: %w", p, err)
		}
		e.segments = append(e.segments, seg)
	}
	e.nextSeg = len(e.segments)

	w, err := openWAL(filepath.Join(dir, "wal.log"))
	if err != nil {
		return nil, err
	}
	e.wal = w

	if err := w.replay(func(rec walRecord) {
		e.applyToMemtable(rec)
	}); err != nil {
		return nil, err
	}

	e.recordCount = e.countLiveKeysSlow()

	return e, nil
}

func existingSegmentPaths(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var paths []string
	for _, ent := range entries {
		if strings.HasPrefix(ent.Name(), "seg-") && strings.HasSuffix(ent.Name(), ".seg") {
			paths = append(paths, filepath.Join(dir, ent.Name()))
		}
	}
	sort.Slice(paths, func(i, j int) bool { return segmentOrdinal(paths[i]) < segmentOrdinal(paths[j]) })
	return paths, nil
}

func segmentOrdinal(path string) int {
	base := filepath.Base(path)
	base = strings.TrimPrefix(base, "seg-")
	base = strings.TrimSuffix(base, ".seg")
	n, _ := strconv.Atoi(base)
	return n
}

func (e *Engine) applyToMemtable(rec walRecord) {
	shard := e.mem.shardFor(rec.key)
	switch rec.op {
	case opPut:
		shard.set(string(rec.key), memValue{value: rec.value})
	case opDelete:
		shard.set(string(rec.key), memValue{tombstone: true})
	}
}

// countLiveKeysSlow recomputes the live key count by scanning every
// segment and the memtable once, used only at Open to seed the running
// counter that Update then maintains incrementally.
func (e *Engine) countLiveKeysSlow() int64 {
	seen := make(map[string]bool)
	live := make(map[string]bool)
	for i := len(e.segments) - 1; i >= 0; i-- {
		for _, rec := range e.segments[i].records {
			if seen[string(rec.key)] {
				continue
			}
			seen[string(rec.key)] = true
			live[string(rec.key)] = !rec.tombstone
		}
	}
	for _, shard := range e.mem.shards {
		shard.mu.Lock()
		for k, v := range shard.entries {
			seen[k] = true
			live[k] = !v.tombstone
		}
		shard.mu.Unlock()
	}
	var n int64
	for _, alive := range live {
		if alive {
			n++
		}
	}
	return n
}

func (e *Engine) isClosed() bool {
	return atomic.LoadInt32(&e.closed) != 0
}

// getLocked looks up key across the memtable shard (already locked by the
// caller) and, failing that, every segment newest-first. It returns
// tombstone=true if the most recent write was a deletion.
func (e *Engine) getLocked(shard *memtableShard, key []byte) (value []byte, tombstone bool, found bool) {
	if v, ok := shard.get(string(key)); ok {
		return v.value, v.tombstone, true
	}
	e.segMu.RLock()
	defer e.segMu.RUnlock()
	for i := len(e.segments) - 1; i >= 0; i-- {
		if v, tomb, ok := e.segments[i].get(key); ok {
			return v, tomb, true
		}
	}
	return nil, false, false
}

// Get returns the current value for key.
func (e *Engine) Get(key []byte) ([]byte, error) {
	if e.isClosed() {
		return nil, ErrClosed
	}
	shard := e.mem.shardFor(key)
	shard.mu.Lock()
	value, tombstone, found := e.getLocked(shard, key)
	shard.mu.Unlock()
	if !found || tombstone {
		return nil, ErrNotFound
	}
	out := make([]byte, len(value))
	copy(out, value)
	return out, nil
}

// Exists reports whether key has a live value.
func (e *Engine) Exists(key []byte) bool {
	_, err := e.Get(key)
	return err == nil
}

// RecordCount returns the number of distinct keys currently live.
func (e *Engine) RecordCount() uint64 {
	return uint64(atomic.LoadInt64(&e.recordCount))
}

// UpdateFunc is the read-modify-write visitor passed to Update. old is nil
// and found is false if the key currently has no live value. Returning
// keep=false deletes the key; keep=true writes newValue (which may be
// unchanged from old).
type UpdateFunc func(old []byte, found bool) (newValue []byte, keep bool, err error)

// Update performs an atomic read-modify-write of key: fn observes the
// current value (or absence) and decides the next value, with every
// concurrent Update to the same key serialized through the key's memtable
// shard lock. The new state is appended to the WAL (fsynced) before the
// call returns, so a crash immediately after Update never loses the
// write and never exposes a partially-applied one.
func (e *Engine) Update(key []byte, fn UpdateFunc) error {
	if e.isClosed() {
		return ErrClosed
	}
	shard := e.mem.shardFor(key)
	shard.mu.Lock()
	defer shard.mu.Unlock()

	old, tombstone, found := e.getLocked(shard, key)
	liveBefore := found && !tombstone
	if tombstone {
		found = false
	}

	newValue, keep, err := fn(old, found)
	if err != nil {
		return err
	}

	seq := e.wal.nextSeq()
	if keep {
		if err := e.wal.append(walRecord{seq: seq, op: opPut, key: key, value: newValue}); err != nil {
			return err
		}
		shard.set(string(key), memValue{value: newValue})
		if !liveBefore {
			atomic.AddInt64(&e.recordCount, 1)
		}
	} else {
		if !liveBefore {
			return nil
		}
		if err := e.wal.append(walRecord{seq: seq, op: opDelete, key: key}); err != nil {
			return err
		}
		shard.set(string(key), memValue{tombstone: true})
		atomic.AddInt64(&e.recordCount, -1)
	}

	if e.mem.len() >= e.opts.FlushThreshold {
		go func() {
			if err := e.FlushAll(); err != nil {
				e.log.Error().Err(err).Msg("background flush failed")
			}
		}()
	}
	return nil
}

// FlushAll freezes every memtable shard into a single new sorted segment
// file and truncates the WAL, since the WAL's job is only to survive a
// crash before the data reaches a segment. Between freezing the shards and
// registering the resulting segment under segMu, every frozen key stays
// visible to getLocked through the shard's frozen snapshot (see
// memtableShard.freeze), so a concurrent Get or Update never observes the
// key as absent: it is either still in the frozen snapshot or already in
// e.segments, never neither.
func (e *Engine) FlushAll() error {
	e.flushMu.Lock()
	defer e.flushMu.Unlock()

	records := e.mem.freezeAllSorted()
	if len(records) == 0 {
		return nil
	}

	id := e.nextSeg
	e.nextSeg++
	path := filepath.Join(e.dir, fmt.Sprintf("seg-%06d.seg", id))
	seg, err := writeSegment(path, records)
	if err != nil {
		// Leave the frozen snapshot in place: it is still fully served by
		// getLocked, so nothing is lost. The next flush attempt merges any
		// newly written entries into this same frozen snapshot (see
		// memtableShard.freeze) and retries writing all of it.
		return err
	}

	e.segMu.Lock()
	e.segments = append(e.segments, seg)
	count := len(e.segments)
	e.segMu.Unlock()

	// Only now, with the flushed data durable in a registered segment, is
	// it safe to drop the frozen snapshot that kept it visible during the
	// write.
	e.mem.unfreezeAll()

	if err := e.wal.truncate(); err != nil {
		return err
	}

	e.log.Debug().Int("records", len(records)).Int("segments", count).Msg("flushed memtable")
	e.CompactIfNeeded()
	return nil
}

// CompactIfNeeded merges all segments into one once the segment
// count reaches Options.MaxSegments, dropping tombstones and
// shadowed (superseded) older values in the process.
func (e *Engine) CompactIfNeeded() {
	e.segMu.RLock()
	need := len(e.segments) >= e.opts.MaxSegments
	e.segMu.RUnlock()
	if !need {
		return
	}
	go func() {
		if err := e.compact(); err != nil {
			e.log.Error().Err(err).Msg("compaction failed")
		}
	}()
}

func (e *Engine) compact() error {
	e.flushMu.Lock()
	defer e.flushMu.Unlock()

	e.segMu.RLock()
	segs := make([]*segment, len(e.segments))
	copy(segs, e.segments)
	e.segMu.RUnlock()
	if len(segs) < 2 {
		return nil
	}

	merged := mergeSegments(segs)
	live := merged[:0]
	for _, rec := range merged {
		if !rec.tombstone {
			live = append(live, rec)
		}
	}
	if len(live) == 0 {
		e.segMu.Lock()
		oldPaths := pathsOf(e.segments)
		e.segments = nil
		e.segMu.Unlock()
		return removeAll(oldPaths)
	}

	id := e.nextSeg
	e.nextSeg++
	path := filepath.Join(e.dir, fmt.Sprintf("seg-%06d.seg", id))
	newSeg, err := writeSegment(path, live)
	if err != nil {
		return err
	}

	e.segMu.Lock()
	oldPaths := pathsOf(e.segments)
	e.segments = []*segment{newSeg}
	e.segMu.Unlock()

	e.log.Debug().Int("merged_segments", len(segs)).Int("records", len(live)).Msg("compacted")
	return removeAll(oldPaths)
}

func pathsOf(segs []*segment) []string {
	out := make([]string, len(segs))
	for i, s := range segs {
		out[i] = s.path
	}
	return out
}

func removeAll(paths []string) error {
	for _, p := range paths {
		if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
			return err
		}
	}
	return nil
}

// mergeSegments performs a key-wise merge across segments (oldest first),
// keeping only the newest record for each key.
func mergeSegments(segs []*segment) []segmentRecord {
	latest := make(map[string]segmentRecord)
	order := make([]string, 0)
	for _, seg := range segs {
		for _, rec := range seg.records {
			k := string(rec.key)
			if _, ok := latest[k]; !ok {
				order = append(order, k)
			}
			latest[k] = rec
		}
	}
	sort.Strings(order)
	out := make([]segmentRecord, 0, len(order))
	for _, k := range order {
		out = append(out, latest[k])
	}
	return out
}

// StartBackgroundCompaction runs CompactIfNeeded on a timer until
// StopBackgroundCompaction is called.
func (e *Engine) StartBackgroundCompaction(interval time.Duration) {
	if e.compactStop != nil {
		return
	}
	e.compactStop = make(chan struct{})
	e.compactDone = make(chan struct{})
	go func() {
		defer close(e.compactDone)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-e.compactStop:
				return
			case <-ticker.C:
				e.CompactIfNeeded()
			}
		}
	}()
}

// StopBackgroundCompaction stops the goroutine started by
// StartBackgroundCompaction, blocking until it has exited.
func (e *Engine) StopBackgroundCompaction() {
	if e.compactStop == nil {
		return
	}
	close(e.compactStop)
	<-e.compactDone
	e.compactStop = nil
	e.compactDone = nil
}

// Close flushes any buffered writes and releases the store's file handles.
func (e *Engine) Close() error {
	if !atomic.CompareAndSwapInt32(&e.closed, 0, 1) {
		return nil
	}
	e.StopBackgroundCompaction()
	if err := e.FlushAll(); err != nil {
		return err
	}
	return e.wal.close()
}
