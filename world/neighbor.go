package world

// NeighborHandles holds, for each of the 26 strict neighbor directions
// (indexed the same way as Directions), either nil ("no neighbor sector
// exists") or a weak, non-owning pointer to the sector at key+direction.
// A slot MUST be cleared before the sector it refers to is destroyed —
// that invariant is maintained by VoxelEntity's sector add/remove API,
// not by NeighborHandles itself.
type NeighborHandles struct {
	Neighbors [26]*Sector
}

// NeighborhoodReader provides transparent cross-sector access to blocks
// and brick-level dirty flags. It is stateless aside from the two
// references it wraps.
type NeighborhoodReader struct {
	Center   *Sector
	Handles  *NeighborHandles
}

// NewNeighborhoodReader builds a reader around a center sector and its
// neighbor table.
func NewNeighborhoodReader(center *Sector, handles *NeighborHandles) NeighborhoodReader {
	return NeighborhoodReader{Center: center, Handles: handles}
}

// floorDivMod splits v into a quotient and a non-negative remainder
// using floored (mathematical) division, as opposed to Go's truncating
// "/" and "%" — required so that negative coordinates wrap the same way
// on both sides of a sector boundary (spec.md §4.2, testable property 10).
func floorDivMod(v, size int32) (q, r int32) {
	r = v % size
	if r < 0 {
		r += size
	}
	q = (v - r) / size
	return
}

// GetBlock returns the block at coordinates (x,y,z) relative to the
// center sector's origin, with arbitrary sign. Coordinates outside
// [0,SectorSizeInBlocks) on at most one axis-step resolve through the
// matching neighbor handle; if that neighbor is absent, the result is
// Empty.
func (r NeighborhoodReader) GetBlock(x, y, z int32) Block {
	qx, lx := floorDivMod(x, SectorSizeInBlocks)
	qy, ly := floorDivMod(y, SectorSizeInBlocks)
	qz, lz := floorDivMod(z, SectorSizeInBlocks)

	if qx == 0 && qy == 0 && qz == 0 {
		return r.Center.GetBlock(int(lx), int(ly), int(lz))
	}
	idx, ok := DirectionIndex(qx, qy, qz)
	if !ok {
		panic("world: NeighborhoodReader.GetBlock coordinate more than one sector away")
	}
	neighbor := r.Handles.Neighbors[idx]
	if neighbor == nil {
		return Empty
	}
	return neighbor.GetBlock(int(lx), int(ly), int(lz))
}

// GetBrickDirtyFlags returns the dirty-flag word for the brick at
// brick-grid coordinates (bx,by,bz) relative to the center sector,
// applying the same cross-boundary translation as GetBlock at brick
// scale (range [0,SizeInBricks)).
func (r NeighborhoodReader) GetBrickDirtyFlags(bx, by, bz int32) uint16 {
	qx, lx := floorDivMod(bx, SizeInBricks)
	qy, ly := floorDivMod(by, SizeInBricks)
	qz, lz := floorDivMod(bz, SizeInBricks)

	if qx == 0 && qy == 0 && qz == 0 {
		return r.Center.BrickDirtyFlags[BrickSlotIndex(int(lx), int(ly), int(lz))]
	}
	idx, ok := DirectionIndex(qx, qy, qz)
	if !ok {
		panic("world: NeighborhoodReader.GetBrickDirtyFlags coordinate more than one sector away")
	}
	neighbor := r.Handles.Neighbors[idx]
	if neighbor == nil {
		return 0
	}
	return neighbor.BrickDirtyFlags[BrickSlotIndex(int(lx), int(ly), int(lz))]
}

// GetBrickDirtyDirectionMask returns the propagation direction mask for
// the brick at brick-grid coordinates (bx,by,bz) relative to the center
// sector, with the same cross-boundary translation as
// GetBrickDirtyFlags. DirtyPropagation uses this alongside
// GetBrickDirtyFlags to decide whether a neighbor brick's dirtiness
// actually points back at the brick being processed.
func (r NeighborhoodReader) GetBrickDirtyDirectionMask(bx, by, bz int32) uint32 {
	qx, lx := floorDivMod(bx, SizeInBricks)
	qy, ly := floorDivMod(by, SizeInBricks)
	qz, lz := floorDivMod(bz, SizeInBricks)

	if qx == 0 && qy == 0 && qz == 0 {
		return r.Center.BrickDirtyDirectionMask[BrickSlotIndex(int(lx), int(ly), int(lz))]
	}
	idx, ok := DirectionIndex(qx, qy, qz)
	if !ok {
		panic("world: NeighborhoodReader.GetBrickDirtyDirectionMask coordinate more than one sector away")
	}
	neighbor := r.Handles.Neighbors[idx]
	if neighbor == nil {
		return 0
	}
	return neighbor.BrickDirtyDirectionMask[BrickSlotIndex(int(lx), int(ly), int(lz))]
}

// HasNeighbor reports whether a neighbor sector exists in the given
// direction index.
func (r NeighborhoodReader) HasNeighbor(direction int) bool {
	return r.Handles.Neighbors[direction] != nil
}
