// Package region implements the region store (spec component C9): a
// binary container file holding many sectors' RLE-compressed payloads
// behind a fixed header and an index of (key, offset, length, crc32)
// entries, exactly as spec.md §6 / §4.7 lay out. Encoding uses
// encoding/binary with explicit little-endian field writes (the teacher's
// own convention, e.g. voxelrt/rt/gpu's manager files) rather than a
// reflection-based codec, and hash/crc32's IEEE table for integrity
// checks (see DESIGN.md's standard-library justification — the spec pins
// the exact IEEE/reflected polynomial, not a library gap).
package region

import (
	"encoding/binary"
	"fmt"
)

// MagicRegion is the ASCII "VXRG" interpreted as a little-endian u32
// (spec.md §6).
const MagicRegion uint32 = 0x47525856

// CurrentVersion is the only header version this package writes; it
// accepts any header version <= CurrentVersion.
const CurrentVersion uint16 = 1

// RegionType distinguishes an auto-derived infinite-world region file
// from one keyed by a single entity's GUID.
type RegionType uint8

const (
	Infinite RegionType = 0
	Finite   RegionType = 1
)

// headerLen is the fixed 56-byte file header (spec.md §6).
const headerLen = 56

// indexEntryLen is one 28-byte index entry: int3 key (12) + u64 offset
// (8) + u32 length (4) + u32 crc32 (4).
const indexEntryLen = 28

// Header is the region file's fixed 56-byte preamble.
type Header struct {
	Version     uint16
	RegionType  RegionType
	Flags       uint8
	RegionSize  [3]int32
	SectorCount uint32
}

func (h Header) encode() []byte {
	buf := make([]byte, headerLen)
	binary.LittleEndian.PutUint32(buf[0:4], MagicRegion)
	binary.LittleEndian.PutUint16(buf[4:6], h.Version)
	buf[6] = byte(h.RegionType)
	buf[7] = h.Flags
	binary.LittleEndian.PutUint32(buf[8:12], uint32(h.RegionSize[0]))
	binary.LittleEndian.PutUint32(buf[12:16], uint32(h.RegionSize[1]))
	binary.LittleEndian.PutUint32(buf[16:20], uint32(h.RegionSize[2]))
	binary.LittleEndian.PutUint32(buf[20:24], h.SectorCount)
	// bytes 24:56 are reserved, left zero.
	return buf
}

func decodeHeader(buf []byte) (Header, error) {
	if len(buf) < headerLen {
		return Header{}, fmt.Errorf("region: header: %w", ErrTruncated)
	}
	magic := binary.LittleEndian.Uint32(buf[0:4])
	if magic != MagicRegion {
		return Header{}, fmt.Errorf("region: header magic %#x: %w", magic, ErrBadMagic)
	}
	version := binary.LittleEndian.Uint16(buf[4:6])
	if version > CurrentVersion {
		return Header{}, fmt.Errorf("region: header version %d: %w", version, ErrUnsupportedVersion)
	}
	h := Header{
		Version:    version,
		RegionType: RegionType(buf[6]),
		Flags:      buf[7],
		RegionSize: [3]int32{
			int32(binary.LittleEndian.Uint32(buf[8:12])),
			int32(binary.LittleEndian.Uint32(buf[12:16])),
			int32(binary.LittleEndian.Uint32(buf[16:20])),
		},
		SectorCount: binary.LittleEndian.Uint32(buf[20:24]),
	}
	return h, nil
}

type indexEntry struct {
	Key    [3]int32
	Offset uint64
	Length uint32
	CRC32  uint32
}

func (e indexEntry) encode() []byte {
	buf := make([]byte, indexEntryLen)
	binary.LittleEndian.PutUint32(buf[0:4], uint32(e.Key[0]))
	binary.LittleEndian.PutUint32(buf[4:8], uint32(e.Key[1]))
	binary.LittleEndian.PutUint32(buf[8:12], uint32(e.Key[2]))
	binary.LittleEndian.PutUint64(buf[12:20], e.Offset)
	binary.LittleEndian.PutUint32(buf[20:24], e.Length)
	binary.LittleEndian.PutUint32(buf[24:28], e.CRC32)
	return buf
}

func decodeIndexEntry(buf []byte) indexEntry {
	return indexEntry{
		Key: [3]int32{
			int32(binary.LittleEndian.Uint32(buf[0:4])),
			int32(binary.LittleEndian.Uint32(buf[4:8])),
			int32(binary.LittleEndian.Uint32(buf[8:12])),
		},
		Offset: binary.LittleEndian.Uint64(buf[12:20]),
		Length: binary.LittleEndian.Uint32(buf[20:24]),
		CRC32:  binary.LittleEndian.Uint32(buf[24:28]),
	}
}

func encodeIndex(entries []indexEntry) []byte {
	buf := make([]byte, len(entries)*indexEntryLen)
	for i, e := range entries {
		copy(buf[i*indexEntryLen:], e.encode())
	}
	return buf
}

func decodeIndex(buf []byte, count int) ([]indexEntry, error) {
	if len(buf) < count*indexEntryLen {
		return nil, fmt.Errorf("region: index (%d entries): %w", count, ErrTruncated)
	}
	entries := make([]indexEntry, count)
	for i := range entries {
		entries[i] = decodeIndexEntry(buf[i*indexEntryLen : (i+1)*indexEntryLen])
	}
	return entries, nil
}
