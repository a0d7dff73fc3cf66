package world

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// PropagateDirty computes each brick's require-update flags from the
// current dirty flags and direction masks of positions and their
// present neighbors, for the bits in flagsToPropagate.
//
// The job is embarrassingly parallel across sectors (spec.md §4.3,
// §5): each goroutine writes only to the sector it owns and only reads
// its neighbors, so no locking is required provided the caller
// guarantees positions is disjoint from any concurrently mutated
// sector — the same guarantee the Tick Pipeline's scheduler owes its
// hooks. Parallel fan-out is built on golang.org/x/sync/errgroup, the
// same dependency buildbarn-bb-storage pulls in for its own
// embarrassingly-parallel maintenance jobs.
func PropagateDirty(ctx context.Context, sectors map[[3]int32]*Sector, neighbors map[[3]int32]*NeighborHandles, positions [][3]int32, flagsToPropagate DirtyFlag) error {
	g, _ := errgroup.WithContext(ctx)
	for _, pos := range positions {
		g.Go(func() error {
			propagateSector(sectors, neighbors, pos, flagsToPropagate)
			return nil
		})
	}
	return g.Wait()
}

func propagateSector(sectors map[[3]int32]*Sector, neighbors map[[3]int32]*NeighborHandles, pos [3]int32, flagsToPropagate DirtyFlag) {
	sector, ok := sectors[pos]
	if !ok {
		return
	}
	handles := neighbors[pos]
	if handles == nil {
		handles = &NeighborHandles{}
	}
	reader := NewNeighborhoodReader(sector, handles)
	f := uint16(flagsToPropagate)

	anyDirty := sector.SectorDirtyFlags&f != 0
	if !anyDirty {
		for _, n := range handles.Neighbors {
			if n != nil && n.SectorDirtyFlags&f != 0 {
				anyDirty = true
				break
			}
		}
	}
	if !anyDirty {
		return
	}

	for slot := 0; slot < BricksInSector; slot++ {
		acc := sector.BrickDirtyFlags[slot] & f

		bx, by, bz := BrickSlotPosition(slot)
		for d, dir := range Directions {
			nbx, nby, nbz := int32(bx)+dir[0], int32(by)+dir[1], int32(bz)+dir[2]

			neighborFlags := reader.GetBrickDirtyFlags(nbx, nby, nbz) & f
			if neighborFlags == 0 {
				continue
			}
			neighborMask := reader.GetBrickDirtyDirectionMask(nbx, nby, nbz)
			if neighborMask&(1<<uint(OppositeDirection(d))) != 0 {
				acc |= neighborFlags
			}
		}

		if acc != 0 {
			sector.BrickRequireUpdateFlags[slot] |= acc
			sector.SectorRequireUpdateFlags |= acc
		}
	}
}
