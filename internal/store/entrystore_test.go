package store

import (
	"testing"

	"github.com/lichess-org/lila-openingexplorer/internal/apperr"
	"github.com/lichess-org/lila-openingexplorer/internal/kvstore"
	"github.com/lichess-org/lila-openingexplorer/internal/model"
	"github.com/lichess-org/lila-openingexplorer/internal/pack"
)

func openTestEntryStore(t *testing.T) *EntryStore {
	t.Helper()
	s, err := OpenEntryStore(t.TempDir(), model.VariantStandard, kvstore.Options{})
	if err != nil {
		t.Fatalf("OpenEntryStore: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func testHash(b byte) model.Hash {
	var h model.Hash
	h[0] = b
	return h
}

func testMove(t *testing.T) pack.MoveToken {
	t.Helper()
	tok, err := pack.EncodeMove(6, 21, pack.RoleNone)
	if err != nil {
		t.Fatalf("EncodeMove: %v", err)
	}
	return tok
}

func TestEntryStoreGetAbsentReturnsNil(t *testing.T) {
	s := openTestEntryStore(t)
	entry, err := s.Get(testHash(1))
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if entry != nil {
		t.Fatalf("Get(absent) = %+v, want nil", entry)
	}
}

func TestEntryStoreMergeThenGet(t *testing.T) {
	s := openTestEntryStore(t)
	hash := testHash(1)
	move := testMove(t)
	ref := model.GameRef{GameID: "ref00000", Winner: model.WinnerWhite, Speed: model.SpeedBullet, AverageRating: 1999}

	if err := s.Merge(hash, ref, move); err != nil {
		t.Fatalf("Merge: %v", err)
	}

	entry, err := s.Get(hash)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if entry == nil {
		t.Fatalf("Get returned nil after Merge")
	}
	stats := entry.AggregateStats(nil, nil)
	total := stats[move]
	if total.White != 1 || total.Draws != 0 || total.Black != 0 {
		t.Fatalf("stats = %+v, want one white win", total)
	}
	if s.RecordCount() != 1 {
		t.Fatalf("RecordCount = %d, want 1", s.RecordCount())
	}
}

func TestEntryStoreSubtractRemovesEmptyRecord(t *testing.T) {
	s := openTestEntryStore(t)
	hash := testHash(1)
	move := testMove(t)
	ref := model.GameRef{GameID: "ref00000", Winner: model.WinnerWhite, Speed: model.SpeedBullet, AverageRating: 1999}

	if err := s.Merge(hash, ref, move); err != nil {
		t.Fatalf("Merge: %v", err)
	}
	if err := s.Subtract(hash, ref, move); err != nil {
		t.Fatalf("Subtract: %v", err)
	}

	if s.Exists(hash) {
		t.Fatalf("Exists = true after subtracting the only game, want false")
	}
	if s.RecordCount() != 0 {
		t.Fatalf("RecordCount = %d, want 0", s.RecordCount())
	}
}

func TestEntryStoreSubtractAbsentIsNoop(t *testing.T) {
	s := openTestEntryStore(t)
	hash := testHash(1)
	move := testMove(t)
	ref := model.GameRef{GameID: "ref00000", Winner: model.WinnerWhite, Speed: model.SpeedBullet, AverageRating: 1999}

	if err := s.Subtract(hash, ref, move); err != nil {
		t.Fatalf("Subtract on absent key: %v", err)
	}
	if s.Exists(hash) {
		t.Fatalf("Subtract on absent key created a record")
	}
}

func TestEntryStoreCorruptValueSurfacesDecodeKind(t *testing.T) {
	s := openTestEntryStore(t)
	hash := testHash(1)

	if err := s.engine.Update(hash.Bytes(), func(old []byte, found bool) ([]byte, bool, error) {
		return []byte{0xFF, 0xFF, 0xFF, 0xFF, 0xFF}, true, nil
	}); err != nil {
		t.Fatalf("seeding corrupt value: %v", err)
	}

	_, err := s.Get(hash)
	if err == nil {
		t.Fatalf("Get(corrupt) succeeded, want decode error")
	}
	if !apperr.Is(err, apperr.KindDecode) {
		t.Fatalf("apperr.Is(err, KindDecode) = false, got kind %v", apperr.KindOf(err))
	}
}

func TestEntryStoreVariant(t *testing.T) {
	s := openTestEntryStore(t)
	if s.Variant() != model.VariantStandard {
		t.Fatalf("Variant() = %v, want standard", s.Variant())
	}
}
