package world

import "iter"

// Sector-scale constants (spec.md §3).
const (
	SizeInBlocks       = 8   // brick edge, in blocks
	SizeInBricks       = 16  // sector edge, in bricks
	BlocksInBrick      = SizeInBlocks * SizeInBlocks * SizeInBlocks // 512
	BricksInSector     = SizeInBricks * SizeInBricks * SizeInBricks // 4096
	SectorSizeInBlocks = SizeInBricks * SizeInBlocks                // 128
)

// BrickEmpty marks a brick_idx slot with no allocated brick.
const BrickEmpty int16 = -1

// DirtyFlag is a 16-bit bitset of "something changed that consumer class
// X should react to". The 16 bits are named Reserved0..Reserved15 in the
// source; a project fixes a meaning per bit. BlockModified is the one bit
// this module fixes at build time, per spec.md §4.1 ("If the caller
// passes no flag, default to DirtyFlag::BlockModified... the exact bit
// is a design decision fixed at build time").
type DirtyFlag uint16

// Reserved dirty-flag bits. Propagation is oblivious to bit meaning; it
// only cares that flagsToPropagate is a subset of these.
const (
	Reserved0 DirtyFlag = 1 << iota
	Reserved1
	Reserved2
	Reserved3
	Reserved4
	Reserved5
	Reserved6
	Reserved7
	Reserved8
	Reserved9
	Reserved10
	Reserved11
	Reserved12
	Reserved13
	Reserved14
	Reserved15
)

// BlockModified is the dirty-flag bit set by SetBlock when the caller
// does not specify one explicitly.
const BlockModified = Reserved0

// Sector is a fixed 128^3-block volume organized as 16^3 bricks of 8^3
// blocks. Only non-empty bricks are allocated; fields are exported
// directly (matching the teacher's Sector/Brick struct shape in
// voxelrt/rt/volume/xbrickmap.go) since sibling packages (codec, the
// propagation job, the region store) all operate on this state directly.
type Sector struct {
	// Position is this sector's key in the entity's sector grid.
	Position [3]int32

	// BrickIdx[s] is BrickEmpty, or a compact index into Voxels.
	BrickIdx [BricksInSector]int16

	// Voxels holds BlocksInBrick blocks per allocated brick, indexed by
	// compactIdx*BlocksInBrick + blockIndexInBrick(x,y,z).
	Voxels []Block

	// NonEmptyBrickList holds absolute brick slots in allocation order;
	// NonEmptyBrickList[compactIdx] is the slot owning that compact index.
	NonEmptyBrickList []uint16

	BrickDirtyFlags         [BricksInSector]uint16
	BrickDirtyDirectionMask [BricksInSector]uint32
	BrickRequireUpdateFlags [BricksInSector]uint16

	SectorDirtyFlags         uint16
	SectorRequireUpdateFlags uint16
	SectorNeighborsToCreate  uint32

	// UpdateRecord is a FIFO of absolute brick slots that became dirty
	// since the last EndTick, for consumers that want to avoid scanning
	// all 4096 slots. Duplicates are possible but avoided on the common
	// path (see MarkBrickDirty).
	UpdateRecord []uint16
}

// NewSector allocates an empty sector at the given sector-grid position.
func NewSector(position [3]int32) *Sector {
	s := &Sector{Position: position}
	for i := range s.BrickIdx {
		s.BrickIdx[i] = BrickEmpty
	}
	return s
}

// BrickSlotIndex maps brick-grid coordinates (each in [0,SizeInBricks))
// to an absolute brick slot in [0,BricksInSector).
func BrickSlotIndex(bx, by, bz int) int {
	return bx + SizeInBricks*by + SizeInBricks*SizeInBricks*bz
}

// BrickSlotPosition is the inverse of BrickSlotIndex.
func BrickSlotPosition(slot int) (bx, by, bz int) {
	bx = slot % SizeInBricks
	by = (slot / SizeInBricks) % SizeInBricks
	bz = slot / (SizeInBricks * SizeInBricks)
	return
}

// blockIndexInBrick maps local block coordinates (each in [0,SizeInBlocks))
// to an index within a brick's 512-block run.
func blockIndexInBrick(lx, ly, lz int) int {
	return lx + SizeInBlocks*ly + SizeInBlocks*SizeInBlocks*lz
}

// NonEmptyBrickCount is the number of currently allocated bricks.
func (s *Sector) NonEmptyBrickCount() int {
	return len(s.NonEmptyBrickList)
}

// Brick is a logical 8^3 block region — physically a 512-element window
// into the owning sector's Voxels array (spec.md §9 design notes: "keep
// this layout — it is what the RLE codec and the GPU uploader assume
// bit-for-bit").
type Brick struct {
	Slot   int
	Blocks []Block
}

// BrickAt returns the brick at brick-grid coordinates (bx,by,bz), or
// false if that slot has no allocated brick.
func (s *Sector) BrickAt(bx, by, bz int) (Brick, bool) {
	slot := BrickSlotIndex(bx, by, bz)
	return s.brickBySlot(slot)
}

func (s *Sector) brickBySlot(slot int) (Brick, bool) {
	compact := s.BrickIdx[slot]
	if compact == BrickEmpty {
		return Brick{}, false
	}
	base := int(compact) * BlocksInBrick
	return Brick{Slot: slot, Blocks: s.Voxels[base : base+BlocksInBrick : base+BlocksInBrick]}, true
}

// GetBlock returns the block at sector-local coordinates x,y,z in
// [0,SectorSizeInBlocks). Returns Empty if the enclosing brick is not
// allocated. Never allocates.
func (s *Sector) GetBlock(x, y, z int) Block {
	bx, by, bz := x/SizeInBlocks, y/SizeInBlocks, z/SizeInBlocks
	lx, ly, lz := x%SizeInBlocks, y%SizeInBlocks, z%SizeInBlocks
	slot := BrickSlotIndex(bx, by, bz)
	compact := s.BrickIdx[slot]
	if compact == BrickEmpty {
		return Empty
	}
	return s.Voxels[int(compact)*BlocksInBrick+blockIndexInBrick(lx, ly, lz)]
}

// SetBlock writes b at sector-local coordinates x,y,z, recording
// BlockModified as the dirty flag.
func (s *Sector) SetBlock(x, y, z int, b Block) {
	s.SetBlockFlags(x, y, z, b, BlockModified)
}

// SetBlockFlags writes b and ORs flags into the owning brick's and the
// sector's dirty-flag words. See spec.md §4.1 for the full contract.
func (s *Sector) SetBlockFlags(x, y, z int, b Block, flags DirtyFlag) {
	bx, by, bz := x/SizeInBlocks, y/SizeInBlocks, z/SizeInBlocks
	lx, ly, lz := x%SizeInBlocks, y%SizeInBlocks, z%SizeInBlocks
	slot := BrickSlotIndex(bx, by, bz)

	compact := s.BrickIdx[slot]
	if compact == BrickEmpty {
		if b.IsEmpty() {
			return // empty-write into an unallocated brick is free
		}
		compact = int16(len(s.NonEmptyBrickList))
		s.Voxels = append(s.Voxels, make([]Block, BlocksInBrick)...)
		s.BrickIdx[slot] = compact
		s.NonEmptyBrickList = append(s.NonEmptyBrickList, uint16(slot))
	}

	s.Voxels[int(compact)*BlocksInBrick+blockIndexInBrick(lx, ly, lz)] = b

	mask := directionMaskForLocalPos(lx, ly, lz)
	s.MarkBrickDirty(slot, flags, mask)
}

// MarkBrickDirty is the explicit form of dirty-flag bookkeeping: OR flags
// into the brick's (and sector's) dirty-flag word and OR directionMask
// into the brick's propagation direction mask, recording the slot in
// UpdateRecord once per tick.
func (s *Sector) MarkBrickDirty(slot int, flags DirtyFlag, directionMask uint32) {
	if s.BrickDirtyFlags[slot] == 0 {
		s.UpdateRecord = append(s.UpdateRecord, uint16(slot))
	}
	s.BrickDirtyDirectionMask[slot] |= directionMask
	s.BrickDirtyFlags[slot] |= uint16(flags)
	s.SectorDirtyFlags |= uint16(flags)
}

// directionMaskForLocalPos computes which of the 26 neighbor directions
// a changed block at local brick position (lx,ly,lz), each in
// [0,SizeInBlocks), should propagate its dirtiness towards (spec.md
// §4.1 "Direction-mask computation").
func directionMaskForLocalPos(lx, ly, lz int) uint32 {
	axisDelta := func(v int) int32 {
		switch {
		case v == 0:
			return -1
		case v == SizeInBlocks-1:
			return 1
		default:
			return 0
		}
	}
	dx, dy, dz := axisDelta(lx), axisDelta(ly), axisDelta(lz)

	choices := func(d int32) []int32 {
		if d == 0 {
			return []int32{0}
		}
		return []int32{0, d}
	}

	var mask uint32
	for _, sx := range choices(dx) {
		for _, sy := range choices(dy) {
			for _, sz := range choices(dz) {
				if sx == 0 && sy == 0 && sz == 0 {
					continue
				}
				idx, ok := DirectionIndex(sx, sy, sz)
				if ok {
					mask |= 1 << uint(idx)
				}
			}
		}
	}
	return mask
}

// UpdateNonEmptyBricks rebuilds NonEmptyBrickList from BrickIdx. Used
// after a bulk load (codec.DecompressSector) where BrickIdx's compact
// indices are already fixed by load order.
func (s *Sector) UpdateNonEmptyBricks() {
	count := 0
	for _, v := range s.BrickIdx {
		if v != BrickEmpty {
			count++
		}
	}
	list := make([]uint16, count)
	for slot, v := range s.BrickIdx {
		if v != BrickEmpty {
			list[v] = uint16(slot)
		}
	}
	s.NonEmptyBrickList = list
}

// IterateNonEmptyBlocks yields every non-empty block in allocation
// order, as (sector-local position, block). The sequence is finite and
// fresh on each call (range-over-func semantics): nothing is mutated
// here, so calling it again mid-iteration is safe but yields a
// brand-new pass rather than resuming the old one.
func (s *Sector) IterateNonEmptyBlocks() iter.Seq2[[3]int32, Block] {
	return func(yield func([3]int32, Block) bool) {
		for _, slot := range s.NonEmptyBrickList {
			compact := s.BrickIdx[slot]
			if compact == BrickEmpty {
				continue
			}
			bx, by, bz := BrickSlotPosition(int(slot))
			base := int(compact) * BlocksInBrick
			for lz := 0; lz < SizeInBlocks; lz++ {
				for ly := 0; ly < SizeInBlocks; ly++ {
					for lx := 0; lx < SizeInBlocks; lx++ {
						blk := s.Voxels[base+blockIndexInBrick(lx, ly, lz)]
						if blk.IsEmpty() {
							continue
						}
						pos := [3]int32{
							int32(bx*SizeInBlocks + lx),
							int32(by*SizeInBlocks + ly),
							int32(bz*SizeInBlocks + lz),
						}
						if !yield(pos, blk) {
							return
						}
					}
				}
			}
		}
	}
}

// IterateRequireUpdateBricks yields (absolute brick slot, brick-grid
// position) for every brick whose require-update flags intersect mask.
// If clear, the matched bits are cleared from that brick's
// require-update word as they are yielded (spec.md §9's resolution of
// the per-mask-vs-full-clear open question: consumers clear only the
// bits they acted on).
func (s *Sector) IterateRequireUpdateBricks(mask DirtyFlag, clear bool) iter.Seq2[int, [3]int32] {
	return func(yield func(int, [3]int32) bool) {
		changed := false
		defer func() {
			if changed {
				var acc uint16
				for _, f := range s.BrickRequireUpdateFlags {
					acc |= f
				}
				s.SectorRequireUpdateFlags = acc
			}
		}()

		for slot := 0; slot < BricksInSector; slot++ {
			if s.BrickRequireUpdateFlags[slot]&uint16(mask) == 0 {
				continue
			}
			bx, by, bz := BrickSlotPosition(slot)
			if clear {
				s.BrickRequireUpdateFlags[slot] &^= uint16(mask)
				changed = true
			}
			if !yield(slot, [3]int32{int32(bx), int32(by), int32(bz)}) {
				return
			}
		}
	}
}

// EndTick clears UpdateRecord, BrickDirtyFlags, BrickDirtyDirectionMask
// and SectorDirtyFlags. RequireUpdateFlags are untouched — consumers
// clear those per-mask via IterateRequireUpdateBricks(..., clear=true).
func (s *Sector) EndTick() {
	s.UpdateRecord = s.UpdateRecord[:0]
	for i := range s.BrickDirtyFlags {
		s.BrickDirtyFlags[i] = 0
	}
	for i := range s.BrickDirtyDirectionMask {
		s.BrickDirtyDirectionMask[i] = 0
	}
	s.SectorDirtyFlags = 0
}
