package entitystore

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
)

func TestStoreWriteLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "entities.vxe")

	records := []Record{
		{
			GUID:       uuid.New(),
			Flags:      IsStatic,
			Transform:  TransformData{Position: [3]float32{1, 2, 3}, Orientation: [4]float32{0, 0, 0, 1}},
			DirtyFlags: 1,
			Sectors:    [][3]int32{{0, 0, 0}},
		},
		{
			GUID:           uuid.New(),
			Flags:          HasPhysics | IsInfinite,
			Transform:      TransformData{Position: [3]float32{-5, 0, 5}, Orientation: [4]float32{1, 0, 0, 0}},
			DirtyFlags:     2,
			Physics:        make([]byte, PhysicsBlockSize),
			InfiniteLoader: make([]byte, InfiniteLoaderBlockSize),
			Sectors:        [][3]int32{{1, 0, 0}, {0, 1, 0}, {-1, -1, -1}},
		},
	}

	st := NewStore()
	if err := st.Write(path, records); err != nil {
		t.Fatalf("Write error: %v", err)
	}

	got, err := st.Load(path)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if len(got) != len(records) {
		t.Fatalf("got %d records, want %d", len(got), len(records))
	}

	byGUID := make(map[uuid.UUID]Record)
	for _, r := range got {
		byGUID[r.GUID] = r
	}
	for _, want := range records {
		r, ok := byGUID[want.GUID]
		if !ok {
			t.Fatalf("missing record %s", want.GUID)
		}
		if r.Flags != want.Flags {
			t.Errorf("record %s: Flags = %#x, want %#x", want.GUID, r.Flags, want.Flags)
		}
		if len(r.Sectors) != len(want.Sectors) {
			t.Errorf("record %s: %d sectors, want %d", want.GUID, len(r.Sectors), len(want.Sectors))
		}
	}
}

func TestStoreLoadRejectsBadMagic(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.vxe")
	if err := os.WriteFile(path, make([]byte, listingHeaderLen), 0o644); err != nil {
		t.Fatal(err)
	}
	st := NewStore()
	if _, err := st.Load(path); err == nil {
		t.Fatal("expected an error for a zeroed (bad magic) header")
	}
}
