package region

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/gekko3d/voxcore/world"
)

func TestWriteReadSectorRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "region_0_0_0.vxr")
	st := NewStore()

	key := [3]int32{0, 0, 0}
	s := world.NewSector(key)
	s.SetBlock(1, 2, 3, world.NewBlock(42, 7))

	if err := st.WriteSector(path, key, s, Infinite); err != nil {
		t.Fatalf("WriteSector error: %v", err)
	}

	got, ok, err := st.ReadSector(path, key)
	if err != nil {
		t.Fatalf("ReadSector error: %v", err)
	}
	if !ok {
		t.Fatal("expected ReadSector to find the written key")
	}
	if got.GetBlock(1, 2, 3).ID() != 42 {
		t.Errorf("round-tripped block id = %d, want 42", got.GetBlock(1, 2, 3).ID())
	}
}

func TestWriteSectorMultipleKeysGrowsIndex(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "region_0_0_0.vxr")
	st := NewStore()

	keyA := [3]int32{0, 0, 0}
	keyB := [3]int32{1, 0, 0}
	sa := world.NewSector(keyA)
	sa.SetBlock(0, 0, 0, world.NewBlock(1, 0))
	sb := world.NewSector(keyB)
	sb.SetBlock(0, 0, 0, world.NewBlock(2, 0))

	if err := st.WriteSector(path, keyA, sa, Infinite); err != nil {
		t.Fatal(err)
	}
	if err := st.WriteSector(path, keyB, sb, Infinite); err != nil {
		t.Fatal(err)
	}

	gotA, ok, err := st.ReadSector(path, keyA)
	if err != nil || !ok {
		t.Fatalf("ReadSector(keyA) = %v, %v, %v", gotA, ok, err)
	}
	if gotA.GetBlock(0, 0, 0).ID() != 1 {
		t.Errorf("keyA id = %d, want 1", gotA.GetBlock(0, 0, 0).ID())
	}
	gotB, ok, err := st.ReadSector(path, keyB)
	if err != nil || !ok {
		t.Fatalf("ReadSector(keyB) = %v, %v, %v", gotB, ok, err)
	}
	if gotB.GetBlock(0, 0, 0).ID() != 2 {
		t.Errorf("keyB id = %d, want 2", gotB.GetBlock(0, 0, 0).ID())
	}
}

func TestWriteSectorOverwriteSameKey(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "region_0_0_0.vxr")
	st := NewStore()
	key := [3]int32{0, 0, 0}

	s1 := world.NewSector(key)
	s1.SetBlock(0, 0, 0, world.NewBlock(1, 0))
	if err := st.WriteSector(path, key, s1, Infinite); err != nil {
		t.Fatal(err)
	}

	s2 := world.NewSector(key)
	s2.SetBlock(0, 0, 0, world.NewBlock(99, 0))
	if err := st.WriteSector(path, key, s2, Infinite); err != nil {
		t.Fatal(err)
	}

	got, ok, err := st.ReadSector(path, key)
	if err != nil || !ok {
		t.Fatalf("ReadSector = %v, %v, %v", got, ok, err)
	}
	if got.GetBlock(0, 0, 0).ID() != 99 {
		t.Errorf("expected the overwritten value 99, got %d", got.GetBlock(0, 0, 0).ID())
	}
}

// S6: corrupting one byte of a stored payload makes ReadSector on that
// key return false without error, while an unaffected key still
// round-trips.
func TestReadSectorCorruptedPayloadFails(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "region_0_0_0.vxr")
	st := NewStore()

	keyA := [3]int32{0, 0, 0}
	keyB := [3]int32{1, 0, 0}
	sa := world.NewSector(keyA)
	sa.SetBlock(0, 0, 0, world.NewBlock(5, 0))
	sb := world.NewSector(keyB)
	sb.SetBlock(0, 0, 0, world.NewBlock(6, 0))

	if err := st.WriteSector(path, keyA, sa, Infinite); err != nil {
		t.Fatal(err)
	}
	if err := st.WriteSector(path, keyB, sb, Infinite); err != nil {
		t.Fatal(err)
	}

	_, entries, err := readHeaderForTest(path)
	if err != nil {
		t.Fatal(err)
	}
	idxB := indexOf(entries, keyB)
	if idxB < 0 {
		t.Fatal("expected index entry for keyB")
	}
	corruptOffset := entries[idxB].Offset

	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		t.Fatal(err)
	}
	b := make([]byte, 1)
	if _, err := f.ReadAt(b, int64(corruptOffset)); err != nil {
		t.Fatal(err)
	}
	b[0] ^= 0xFF
	if _, err := f.WriteAt(b, int64(corruptOffset)); err != nil {
		t.Fatal(err)
	}
	f.Close()

	_, ok, err := st.ReadSector(path, keyB)
	if err != nil {
		t.Fatalf("ReadSector on corrupted key should not error, got %v", err)
	}
	if ok {
		t.Fatal("ReadSector on corrupted key should report false")
	}

	gotA, ok, err := st.ReadSector(path, keyA)
	if err != nil || !ok {
		t.Fatalf("ReadSector on unaffected key failed: %v, %v, %v", gotA, ok, err)
	}
	if gotA.GetBlock(0, 0, 0).ID() != 5 {
		t.Errorf("unaffected key id = %d, want 5", gotA.GetBlock(0, 0, 0).ID())
	}
}

func readHeaderForTest(path string) (Header, []indexEntry, error) {
	f, err := os.Open(path)
	if err != nil {
		return Header{}, nil, err
	}
	defer f.Close()
	return readHeader(f)
}

func TestCompactPacksPayloadsWithNoGaps(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "region_0_0_0.vxr")
	st := NewStore()
	key := [3]int32{0, 0, 0}

	for i := 0; i < 3; i++ {
		s := world.NewSector(key)
		s.SetBlock(0, 0, 0, world.NewBlock(uint16(i+1), 0))
		if err := st.WriteSector(path, key, s, Infinite); err != nil {
			t.Fatal(err)
		}
	}

	beforeInfo, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}

	if err := st.Compact(path); err != nil {
		t.Fatalf("Compact error: %v", err)
	}

	afterInfo, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if afterInfo.Size() >= beforeInfo.Size() {
		t.Errorf("expected Compact to shrink the file (garbage from 2 stale writes), before=%d after=%d", beforeInfo.Size(), afterInfo.Size())
	}

	got, ok, err := st.ReadSector(path, key)
	if err != nil || !ok {
		t.Fatalf("ReadSector after Compact = %v, %v, %v", got, ok, err)
	}
	if got.GetBlock(0, 0, 0).ID() != 3 {
		t.Errorf("expected the latest value 3 to survive Compact, got %d", got.GetBlock(0, 0, 0).ID())
	}
}

func TestInfiniteRegionPathDerivation(t *testing.T) {
	cases := []struct {
		key  [3]int32
		want string
	}{
		{[3]int32{0, 0, 0}, "region_0_0_0.vxr"},
		{[3]int32{15, 0, 0}, "region_0_0_0.vxr"},
		{[3]int32{16, 0, 0}, "region_1_0_0.vxr"},
		{[3]int32{-1, 0, 0}, "region_-1_0_0.vxr"},
		{[3]int32{-16, 0, 0}, "region_-1_0_0.vxr"},
		{[3]int32{-17, 0, 0}, "region_-2_0_0.vxr"},
	}
	for _, c := range cases {
		got := InfiniteRegionPath("/base", c.key)
		want := filepath.Join("/base", c.want)
		if got != want {
			t.Errorf("InfiniteRegionPath(%v) = %s, want %s", c.key, got, want)
		}
	}
}
