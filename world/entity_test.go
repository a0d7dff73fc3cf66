package world

import (
	"context"
	"testing"

	"github.com/google/uuid"
)

func TestVoxelEntitySetGetAcrossSectorBoundary(t *testing.T) {
	e := NewVoxelEntity(uuid.New())

	e.SetBlock([3]int32{0, 0, 0}, NewBlock(1, 0))
	e.SetBlock([3]int32{SectorSizeInBlocks, 0, 0}, NewBlock(2, 0))
	e.SetBlock([3]int32{-1, 0, 0}, NewBlock(3, 0))

	if got := e.GetBlock([3]int32{0, 0, 0}); got.ID() != 1 {
		t.Errorf("id at origin = %d, want 1", got.ID())
	}
	if got := e.GetBlock([3]int32{SectorSizeInBlocks, 0, 0}); got.ID() != 2 {
		t.Errorf("id at +X sector = %d, want 2", got.ID())
	}
	if got := e.GetBlock([3]int32{-1, 0, 0}); got.ID() != 3 {
		t.Errorf("id at -X sector = %d, want 3", got.ID())
	}
	if e.SectorCount() != 3 {
		t.Errorf("expected 3 sectors allocated, got %d", e.SectorCount())
	}
}

func TestVoxelEntitySetEmptyDoesNotCreateSector(t *testing.T) {
	e := NewVoxelEntity(uuid.New())
	e.SetBlock([3]int32{500, 500, 500}, Empty)
	if e.SectorCount() != 0 {
		t.Errorf("writing Empty must not create a sector, got %d sectors", e.SectorCount())
	}
	if got := e.GetBlock([3]int32{500, 500, 500}); !got.IsEmpty() {
		t.Error("unallocated region must read as Empty")
	}
}

func TestVoxelEntityAddSectorWiresNeighborsSymmetrically(t *testing.T) {
	e := NewVoxelEntity(uuid.New())
	e.SetBlock([3]int32{0, 0, 0}, NewBlock(1, 0))
	e.SetBlock([3]int32{SectorSizeInBlocks, 0, 0}, NewBlock(2, 0))

	keyA := [3]int32{0, 0, 0}
	keyB := [3]int32{1, 0, 0}
	hA, ok := e.NeighborHandlesAt(keyA)
	if !ok {
		t.Fatal("expected neighbor handles for sector A")
	}
	hB, ok := e.NeighborHandlesAt(keyB)
	if !ok {
		t.Fatal("expected neighbor handles for sector B")
	}

	idxPlusX, _ := DirectionIndex(1, 0, 0)
	idxMinusX, _ := DirectionIndex(-1, 0, 0)

	sb, _ := e.SectorAt(keyB)
	sa, _ := e.SectorAt(keyA)
	if hA.Neighbors[idxPlusX] != sb {
		t.Error("sector A should have a +X handle pointing at sector B")
	}
	if hB.Neighbors[idxMinusX] != sa {
		t.Error("sector B should have a -X handle pointing at sector A")
	}
}

func TestVoxelEntityRemoveSectorClearsSymmetricNeighbors(t *testing.T) {
	e := NewVoxelEntity(uuid.New())
	e.SetBlock([3]int32{0, 0, 0}, NewBlock(1, 0))
	e.SetBlock([3]int32{SectorSizeInBlocks, 0, 0}, NewBlock(2, 0))

	keyA := [3]int32{0, 0, 0}
	keyB := [3]int32{1, 0, 0}

	e.RemoveSectorAt(keyA)

	if _, ok := e.SectorAt(keyA); ok {
		t.Error("removed sector must no longer be reachable")
	}
	hB, ok := e.NeighborHandlesAt(keyB)
	if !ok {
		t.Fatal("sector B's neighbor handles should still exist")
	}
	idxMinusX, _ := DirectionIndex(-1, 0, 0)
	if hB.Neighbors[idxMinusX] != nil {
		t.Error("sector B's -X handle must be cleared once sector A is removed")
	}
}

func TestVoxelEntityPropagateAcrossOwnedSectors(t *testing.T) {
	e := NewVoxelEntity(uuid.New())
	e.SetBlock([3]int32{SectorSizeInBlocks - 1, 64, 64}, NewBlock(7, 0))
	e.SetBlock([3]int32{SectorSizeInBlocks, 64, 64}, Empty) // an empty write creates no sector
	e.SetBlock([3]int32{SectorSizeInBlocks, 0, 0}, NewBlock(9, 0)) // this write creates sector B

	positions := [][3]int32{{0, 0, 0}, {1, 0, 0}}
	if err := e.Propagate(context.Background(), positions, BlockModified); err != nil {
		t.Fatalf("Propagate error: %v", err)
	}

	sb, ok := e.SectorAt([3]int32{1, 0, 0})
	if !ok {
		t.Fatal("expected sector B to exist")
	}
	by, bz := 64/SizeInBlocks, 64/SizeInBlocks
	slot := BrickSlotIndex(0, by, bz)
	if sb.BrickRequireUpdateFlags[slot]&uint16(BlockModified) == 0 {
		t.Error("sector B's boundary brick should require update after cross-sector propagation via entity")
	}
}

func TestVoxelEntityTransformRoundTrip(t *testing.T) {
	e := NewVoxelEntity(uuid.New())
	e.Transform.Position[0] = 1.5
	e.Transform.Position[1] = -2.25
	e.Transform.Position[2] = 100

	var data TransformData
	e.SyncTransformToData(&data)

	e2 := NewVoxelEntity(uuid.New())
	e2.SyncTransformFromData(&data)

	if e2.Transform.Position != e.Transform.Position {
		t.Errorf("position round trip mismatch: got %v want %v", e2.Transform.Position, e.Transform.Position)
	}
	if e2.Transform.Orientation != e.Transform.Orientation {
		t.Errorf("orientation round trip mismatch: got %v want %v", e2.Transform.Orientation, e.Transform.Orientation)
	}
}

func TestVoxelEntitySectorsIteratorCoversAll(t *testing.T) {
	e := NewVoxelEntity(uuid.New())
	e.SetBlock([3]int32{0, 0, 0}, NewBlock(1, 0))
	e.SetBlock([3]int32{SectorSizeInBlocks, 0, 0}, NewBlock(2, 0))
	e.SetBlock([3]int32{0, SectorSizeInBlocks, 0}, NewBlock(3, 0))

	seen := 0
	for range e.Sectors() {
		seen++
	}
	if seen != e.SectorCount() {
		t.Errorf("Sectors() yielded %d, want %d", seen, e.SectorCount())
	}
}
