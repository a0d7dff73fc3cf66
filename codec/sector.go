package codec

import (
	"encoding/binary"
	"fmt"

	"github.com/gekko3d/voxcore/world"
)

// sectorDataHeaderLen is SectorDataHeader's packed size: int3 position
// (12) + u16 non_empty_brick_count (2) + u16 sector_dirty_flags (2) +
// u32 sector_neighbors_to_create (4) = 20 bytes (spec.md §6).
const sectorDataHeaderLen = 20

const (
	brickDirtyFlagsLen         = world.BricksInSector * 2 // u16 each
	brickDirtyDirectionMaskLen = world.BricksInSector * 4 // u32 each
)

// CompressSector encodes a sector's dirty-flag bookkeeping (uncompressed,
// spec.md §4.6: "they compress poorly and we want O(1) loads") followed
// by one RLE brick entry per non-empty brick, each prefixed with its
// absolute slot.
func CompressSector(s *world.Sector) ([]byte, error) {
	n := s.NonEmptyBrickCount()
	buf := make([]byte, sectorDataHeaderLen+brickDirtyFlagsLen+brickDirtyDirectionMaskLen)

	binary.LittleEndian.PutUint32(buf[0:4], uint32(s.Position[0]))
	binary.LittleEndian.PutUint32(buf[4:8], uint32(s.Position[1]))
	binary.LittleEndian.PutUint32(buf[8:12], uint32(s.Position[2]))
	binary.LittleEndian.PutUint16(buf[12:14], uint16(n))
	binary.LittleEndian.PutUint16(buf[14:16], s.SectorDirtyFlags)
	binary.LittleEndian.PutUint32(buf[16:20], s.SectorNeighborsToCreate)

	off := sectorDataHeaderLen
	for slot := 0; slot < world.BricksInSector; slot++ {
		binary.LittleEndian.PutUint16(buf[off:off+2], s.BrickDirtyFlags[slot])
		off += 2
	}
	for slot := 0; slot < world.BricksInSector; slot++ {
		binary.LittleEndian.PutUint32(buf[off:off+4], s.BrickDirtyDirectionMask[slot])
		off += 4
	}

	for _, slot := range s.NonEmptyBrickList {
		brick, ok := s.BrickAt(brickCoordsFromSlot(int(slot)))
		if !ok {
			return nil, fmt.Errorf("codec: CompressSector: non-empty brick list points at empty slot %d: %w", slot, ErrDecoderInconsistency)
		}
		rle, err := CompressBrick(brick.Blocks)
		if err != nil {
			return nil, fmt.Errorf("codec: CompressSector: brick at slot %d: %w", slot, err)
		}
		entry := make([]byte, 2+len(rle))
		binary.LittleEndian.PutUint16(entry[0:2], slot)
		copy(entry[2:], rle)
		buf = append(buf, entry...)
	}
	return buf, nil
}

func brickCoordsFromSlot(slot int) (int, int, int) {
	return world.BrickSlotPosition(slot)
}

// DecompressSector decodes a buffer produced by CompressSector into a
// freshly allocated sector at the given position. Before decoding each
// brick entry, it validates the remaining buffer is long enough for that
// entry's declared run count — spec.md §9's fourth open question,
// resolved here as a mandatory check rather than an opportunistic one.
func DecompressSector(position [3]int32, buf []byte) (*world.Sector, error) {
	if len(buf) < sectorDataHeaderLen+brickDirtyFlagsLen+brickDirtyDirectionMaskLen {
		return nil, fmt.Errorf("codec: DecompressSector: header/flags region: %w", ErrTruncated)
	}

	nonEmptyBrickCount := int(binary.LittleEndian.Uint16(buf[12:14]))
	sectorDirtyFlags := binary.LittleEndian.Uint16(buf[14:16])
	sectorNeighborsToCreate := binary.LittleEndian.Uint32(buf[16:20])

	s := world.NewSector(position)
	s.SectorDirtyFlags = sectorDirtyFlags
	s.SectorNeighborsToCreate = sectorNeighborsToCreate

	off := sectorDataHeaderLen
	for slot := 0; slot < world.BricksInSector; slot++ {
		s.BrickDirtyFlags[slot] = binary.LittleEndian.Uint16(buf[off : off+2])
		off += 2
	}
	for slot := 0; slot < world.BricksInSector; slot++ {
		s.BrickDirtyDirectionMask[slot] = binary.LittleEndian.Uint32(buf[off : off+4])
		off += 4
	}

	for i := 0; i < nonEmptyBrickCount; i++ {
		if len(buf)-off < 2 {
			return nil, fmt.Errorf("codec: DecompressSector: entry %d slot header: %w", i, ErrTruncated)
		}
		absoluteSlot := int(binary.LittleEndian.Uint16(buf[off : off+2]))
		off += 2

		rleLen, err := brickEncodedLen(buf[off:])
		if err != nil {
			return nil, fmt.Errorf("codec: DecompressSector: entry %d: %w", i, err)
		}
		blocks, err := DecompressBrick(buf[off : off+rleLen])
		if err != nil {
			return nil, fmt.Errorf("codec: DecompressSector: entry %d: %w", i, err)
		}
		off += rleLen

		if absoluteSlot < 0 || absoluteSlot >= world.BricksInSector {
			return nil, fmt.Errorf("codec: DecompressSector: entry %d has out-of-range slot %d: %w", i, absoluteSlot, ErrDecoderInconsistency)
		}
		compact := int16(len(s.NonEmptyBrickList))
		s.Voxels = append(s.Voxels, blocks...)
		s.BrickIdx[absoluteSlot] = compact
		s.NonEmptyBrickList = append(s.NonEmptyBrickList, uint16(absoluteSlot))
	}

	s.UpdateNonEmptyBricks()
	return s, nil
}
