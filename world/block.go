// Package world implements the sparse-voxel data store: packed blocks,
// bricks, sectors, the cross-sector neighborhood reader, dirty-flag
// propagation, and the voxel entity that owns a sparse sector map.
package world

// Block is a single packed voxel: a 32-bit value laid out as
//
//	bits 31-16: id (16-bit block id)
//	bits 15-0:  meta (16-bit opaque payload)
//
// Within id:
//
//	bits 15-11: red   (0..31)
//	bits 10-6:  green (0..31)
//	bits 5-1:   blue  (0..31)
//	bit 0:      emission flag
//
// The zero value is the empty block.
type Block uint32

// Empty is the zero-value block; IsEmpty reports true only for it.
const Empty Block = 0

// NewBlock packs an id and a meta value into a Block.
func NewBlock(id, meta uint16) Block {
	return Block(uint32(id)<<16 | uint32(meta))
}

// IsEmpty reports whether the block is the all-zero empty voxel.
func (b Block) IsEmpty() bool {
	return b == Empty
}

// ID returns the 16-bit block id (bits 31-16).
func (b Block) ID() uint16 {
	return uint16(b >> 16)
}

// Meta returns the 16-bit opaque metadata (bits 15-0).
func (b Block) Meta() uint16 {
	return uint16(b)
}

// WithID returns a copy of the block with its id bits replaced.
func (b Block) WithID(id uint16) Block {
	return NewBlock(id, b.Meta())
}

// WithMeta returns a copy of the block with its meta bits replaced.
func (b Block) WithMeta(meta uint16) Block {
	return NewBlock(b.ID(), meta)
}

// Red returns the 5-bit red channel packed into bits 15-11 of id.
func (b Block) Red() uint8 { return uint8((b.ID() >> 11) & 0x1F) }

// Green returns the 5-bit green channel packed into bits 10-6 of id.
func (b Block) Green() uint8 { return uint8((b.ID() >> 6) & 0x1F) }

// Blue returns the 5-bit blue channel packed into bits 5-1 of id.
func (b Block) Blue() uint8 { return uint8((b.ID() >> 1) & 0x1F) }

// Emissive reports the emission flag, bit 0 of id.
func (b Block) Emissive() bool { return b.ID()&0x1 != 0 }

// NewColorBlock packs RGB channels (each 0..31), an emission flag and a
// meta value into a Block using the id layout from the package doc.
func NewColorBlock(r, g, b, meta uint16, emissive bool) Block {
	id := (r&0x1F)<<11 | (g&0x1F)<<6 | (b&0x1F)<<1
	if emissive {
		id |= 1
	}
	return NewBlock(id, meta)
}

// Phase is the opaque top-2-bit field of a block's id (bits 31-30 of the
// full 32-bit Block). The core treats phase bits as opaque; a simulation
// consumer assigns them meaning (gas/liquid/powder/solid).
type Phase uint8

// Phase extracts the opaque top-2 bits of the block's id.
func (b Block) Phase() Phase {
	return Phase(b.ID() >> 14)
}

// WithPhase returns a copy of the block with its top-2 id bits replaced.
func (b Block) WithPhase(p Phase) Block {
	id := (b.ID() & 0x3FFF) | (uint16(p&0x3) << 14)
	return b.WithID(id)
}
