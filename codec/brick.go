// Package codec implements the RLE codec (spec component C8): run-length
// encoding for a single 512-block brick, and the sector-level container
// format that wraps per-brick RLE streams with uncompressed dirty-flag
// bookkeeping arrays. Binary layout follows spec.md §6 exactly, encoded
// with encoding/binary little-endian, matching the teacher's own
// encoding/binary usage in ecs.go and the voxelrt/rt/gpu manager files.
package codec

import (
	"encoding/binary"
	"fmt"

	"github.com/gekko3d/voxcore/world"
)

const maxRunLength = 256

// CompressBrick run-length encodes exactly world.BlocksInBrick blocks
// into spec.md §6's brick RLE layout: u16 run_count, run_count×u32 run
// values, run_count×u8 run lengths (stored as length-1). Runs longer
// than 256 blocks are split.
func CompressBrick(blocks []world.Block) ([]byte, error) {
	if len(blocks) != world.BlocksInBrick {
		return nil, fmt.Errorf("codec: CompressBrick: got %d blocks, want %d", len(blocks), world.BlocksInBrick)
	}

	var values []uint32
	var lengths []uint8

	i := 0
	for i < len(blocks) {
		v := uint32(blocks[i])
		j := i + 1
		for j < len(blocks) && uint32(blocks[j]) == v && j-i < maxRunLength {
			j++
		}
		values = append(values, v)
		lengths = append(lengths, uint8(j-i-1))
		i = j
	}

	runCount := len(values)
	buf := make([]byte, 2+4*runCount+runCount)
	binary.LittleEndian.PutUint16(buf[0:2], uint16(runCount))
	off := 2
	for _, v := range values {
		binary.LittleEndian.PutUint32(buf[off:off+4], v)
		off += 4
	}
	for _, l := range lengths {
		buf[off] = l
		off++
	}
	return buf, nil
}

// brickEncodedLen returns the total byte length of the brick RLE stream
// that starts at buf[0], without decoding it, so a sector decoder can
// walk consecutive brick entries. It performs the same truncation check
// DecompressBrick performs on the header.
func brickEncodedLen(buf []byte) (int, error) {
	if len(buf) < 2 {
		return 0, fmt.Errorf("codec: brick run_count header: %w", ErrTruncated)
	}
	runCount := int(binary.LittleEndian.Uint16(buf[0:2]))
	total := 2 + 4*runCount + runCount
	if len(buf) < total {
		return 0, fmt.Errorf("codec: brick RLE body (run_count=%d, need %d bytes, have %d): %w", runCount, total, len(buf), ErrTruncated)
	}
	return total, nil
}

// DecompressBrick decodes a brick RLE stream produced by CompressBrick.
// Decompression fails if the buffer is too small for the declared run
// count (ErrTruncated), or if the declared runs don't sum to exactly
// world.BlocksInBrick blocks (ErrDecoderInconsistency) — spec.md §4.6's
// mandatory invariant checks, resolving the "what exactly must be
// validated before each brick decompress" open question: the length
// check runs before any block is decoded, and the run-total check runs
// on the decoded scratch slice before any block is returned.
func DecompressBrick(buf []byte) ([]world.Block, error) {
	if _, err := brickEncodedLen(buf); err != nil {
		return nil, err
	}
	runCount := int(binary.LittleEndian.Uint16(buf[0:2]))

	values := make([]uint32, runCount)
	off := 2
	for i := 0; i < runCount; i++ {
		values[i] = binary.LittleEndian.Uint32(buf[off : off+4])
		off += 4
	}
	lengths := make([]uint8, runCount)
	copy(lengths, buf[off:off+runCount])

	blocks := make([]world.Block, 0, world.BlocksInBrick)
	for i := 0; i < runCount; i++ {
		runLen := int(lengths[i]) + 1
		for n := 0; n < runLen; n++ {
			blocks = append(blocks, world.Block(values[i]))
		}
	}
	if len(blocks) != world.BlocksInBrick {
		return nil, fmt.Errorf("codec: decoded %d blocks, want %d: %w", len(blocks), world.BlocksInBrick, ErrDecoderInconsistency)
	}
	return blocks, nil
}
