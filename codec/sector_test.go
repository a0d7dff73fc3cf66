package codec

import (
	"testing"

	"github.com/gekko3d/voxcore/world"
)

func TestSectorRoundTrip(t *testing.T) {
	pos := [3]int32{3, -1, 7}
	s := world.NewSector(pos)
	s.SetBlock(0, 0, 0, world.NewBlock(1, 0))
	s.SetBlock(127, 127, 127, world.NewBlock(2, 0))
	s.SetBlock(64, 64, 64, world.NewBlock(3, 9))

	buf, err := CompressSector(s)
	if err != nil {
		t.Fatalf("CompressSector error: %v", err)
	}

	decoded, err := DecompressSector(pos, buf)
	if err != nil {
		t.Fatalf("DecompressSector error: %v", err)
	}

	if decoded.Position != pos {
		t.Errorf("Position = %v, want %v", decoded.Position, pos)
	}
	if decoded.NonEmptyBrickCount() != s.NonEmptyBrickCount() {
		t.Errorf("NonEmptyBrickCount = %d, want %d", decoded.NonEmptyBrickCount(), s.NonEmptyBrickCount())
	}
	if decoded.SectorDirtyFlags != s.SectorDirtyFlags {
		t.Errorf("SectorDirtyFlags = %#x, want %#x", decoded.SectorDirtyFlags, s.SectorDirtyFlags)
	}
	for i := range s.BrickDirtyFlags {
		if decoded.BrickDirtyFlags[i] != s.BrickDirtyFlags[i] {
			t.Fatalf("BrickDirtyFlags[%d] = %#x, want %#x", i, decoded.BrickDirtyFlags[i], s.BrickDirtyFlags[i])
		}
	}
	for i := range s.BrickDirtyDirectionMask {
		if decoded.BrickDirtyDirectionMask[i] != s.BrickDirtyDirectionMask[i] {
			t.Fatalf("BrickDirtyDirectionMask[%d] = %#x, want %#x", i, decoded.BrickDirtyDirectionMask[i], s.BrickDirtyDirectionMask[i])
		}
	}

	checks := [][3]int{{0, 0, 0}, {127, 127, 127}, {64, 64, 64}, {5, 5, 5}}
	for _, c := range checks {
		got := decoded.GetBlock(c[0], c[1], c[2])
		want := s.GetBlock(c[0], c[1], c[2])
		if got != want {
			t.Errorf("GetBlock%v = %#x, want %#x", c, got, want)
		}
	}
}

func TestSectorRoundTripEmpty(t *testing.T) {
	pos := [3]int32{0, 0, 0}
	s := world.NewSector(pos)

	buf, err := CompressSector(s)
	if err != nil {
		t.Fatal(err)
	}
	decoded, err := DecompressSector(pos, buf)
	if err != nil {
		t.Fatal(err)
	}
	if decoded.NonEmptyBrickCount() != 0 {
		t.Errorf("expected 0 non-empty bricks, got %d", decoded.NonEmptyBrickCount())
	}
}

func TestDecompressSectorTruncatedHeader(t *testing.T) {
	if _, err := DecompressSector([3]int32{}, make([]byte, 5)); err == nil {
		t.Fatal("expected an error for a truncated sector header")
	}
}

func TestDecompressSectorTruncatedBrickEntry(t *testing.T) {
	pos := [3]int32{0, 0, 0}
	s := world.NewSector(pos)
	s.SetBlock(0, 0, 0, world.NewBlock(1, 0))

	buf, err := CompressSector(s)
	if err != nil {
		t.Fatal(err)
	}
	truncated := buf[:len(buf)-1]
	if _, err := DecompressSector(pos, truncated); err == nil {
		t.Fatal("expected an error for a truncated brick RLE entry")
	}
}
