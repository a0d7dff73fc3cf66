package region

import (
	"fmt"
	"hash/crc32"
	"io"
	"os"

	"github.com/gekko3d/voxcore/codec"
	"github.com/gekko3d/voxcore/world"
)

// RegionSizeInSectors is the edge length, in sectors, of one region file
// under infinite-region path derivation (spec.md §4.7 "REGION_SIZE").
// The spec leaves the exact constant to the implementation; 16 matches
// world.SizeInBricks so a region and a sector subdivide their respective
// parents by the same factor.
const RegionSizeInSectors = 16

// Store performs WriteSector/ReadSector/Compact against region files on
// a filesystem. It holds no long-lived file handles or in-memory cache;
// every call opens, does its work, and closes.
type Store struct{}

// NewStore constructs a Store.
func NewStore() *Store { return &Store{} }

// WriteSector encodes sector via codec.CompressSector, CRC32s the
// result, and writes it into path's region file, creating the file with
// a fresh header if it doesn't exist. If key already has an index entry,
// the new payload is appended at file end and only that entry is
// rewritten in place — the old payload is left as garbage until Compact
// runs (spec.md §4.7). Adding a never-seen key grows the index, which
// requires relocating existing payloads; this package does that by
// rewriting the whole file rather than leaving a reserved index
// capacity, trading one-time write cost for a simpler format.
func (st *Store) WriteSector(path string, key [3]int32, s *world.Sector, regionType RegionType) error {
	payload, err := codec.CompressSector(s)
	if err != nil {
		return fmt.Errorf("region: WriteSector: encode sector: %w", err)
	}
	crc := crc32.ChecksumIEEE(payload)

	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		return fmt.Errorf("region: WriteSector: open %s: %w", path, err)
	}
	defer f.Close()

	header, entries, err := readOrInitHeader(f, regionType)
	if err != nil {
		return fmt.Errorf("region: WriteSector: %w", err)
	}

	idx := indexOf(entries, key)
	if idx >= 0 {
		offset, err := f.Seek(0, io.SeekEnd)
		if err != nil {
			return fmt.Errorf("region: WriteSector: seek end: %w", err)
		}
		if _, err := f.Write(payload); err != nil {
			return fmt.Errorf("region: WriteSector: write payload: %w", err)
		}
		entries[idx] = indexEntry{Key: key, Offset: uint64(offset), Length: uint32(len(payload)), CRC32: crc}
		if err := writeHeaderAndIndex(f, header, entries); err != nil {
			return fmt.Errorf("region: WriteSector: %w", err)
		}
		return nil
	}

	oldPayloads := make([][]byte, len(entries))
	for i, e := range entries {
		buf := make([]byte, e.Length)
		if _, err := f.ReadAt(buf, int64(e.Offset)); err != nil {
			return fmt.Errorf("region: WriteSector: read existing payload for key %v: %w", e.Key, err)
		}
		oldPayloads[i] = buf
	}

	newEntries := append(entries, indexEntry{Key: key, Length: uint32(len(payload)), CRC32: crc})
	base := uint64(headerLen + len(newEntries)*indexEntryLen)
	off := base
	for i := range entries {
		newEntries[i].Offset = off
		off += uint64(len(oldPayloads[i]))
	}
	newEntries[len(entries)].Offset = off

	header.SectorCount = uint32(len(newEntries))

	if err := f.Truncate(0); err != nil {
		return fmt.Errorf("region: WriteSector: truncate: %w", err)
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("region: WriteSector: seek start: %w", err)
	}
	if _, err := f.Write(header.encode()); err != nil {
		return fmt.Errorf("region: WriteSector: write header: %w", err)
	}
	if _, err := f.Write(encodeIndex(newEntries)); err != nil {
		return fmt.Errorf("region: WriteSector: write index: %w", err)
	}
	for _, p := range oldPayloads {
		if _, err := f.Write(p); err != nil {
			return fmt.Errorf("region: WriteSector: write relocated payload: %w", err)
		}
	}
	if _, err := f.Write(payload); err != nil {
		return fmt.Errorf("region: WriteSector: write new payload: %w", err)
	}
	return nil
}

// ReadSector locates key via the file's index, reads its payload,
// verifies the CRC32, and decodes it. A CRC mismatch or missing key
// returns (nil, false, nil) without touching any caller-owned state —
// there is none to mutate, since a fresh *world.Sector is only
// constructed on success (spec.md §4.7 "do not mutate the sector").
func (st *Store) ReadSector(path string, key [3]int32) (*world.Sector, bool, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("region: ReadSector: open %s: %w", path, err)
	}
	defer f.Close()

	_, entries, err := readHeader(f)
	if err != nil {
		return nil, false, fmt.Errorf("region: ReadSector: %w", err)
	}

	idx := indexOf(entries, key)
	if idx < 0 {
		return nil, false, nil
	}
	e := entries[idx]
	buf := make([]byte, e.Length)
	if _, err := f.ReadAt(buf, int64(e.Offset)); err != nil {
		return nil, false, fmt.Errorf("region: ReadSector: read payload for key %v: %w", key, err)
	}
	if crc32.ChecksumIEEE(buf) != e.CRC32 {
		return nil, false, nil
	}
	s, err := codec.DecompressSector(key, buf)
	if err != nil {
		return nil, false, fmt.Errorf("region: ReadSector: decode key %v: %w", key, err)
	}
	return s, true, nil
}

// Compact rewrites path's payload region packed with no gaps, dropping
// any garbage left behind by repeated WriteSector calls to the same key,
// then atomically replaces the original file.
func (st *Store) Compact(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("region: Compact: open %s: %w", path, err)
	}
	header, entries, err := readHeader(f)
	if err != nil {
		f.Close()
		return fmt.Errorf("region: Compact: %w", err)
	}

	payloads := make([][]byte, len(entries))
	for i, e := range entries {
		buf := make([]byte, e.Length)
		if _, err := f.ReadAt(buf, int64(e.Offset)); err != nil {
			f.Close()
			return fmt.Errorf("region: Compact: read payload for key %v: %w", e.Key, err)
		}
		payloads[i] = buf
	}
	f.Close()

	off := uint64(headerLen + len(entries)*indexEntryLen)
	for i := range entries {
		entries[i].Offset = off
		off += uint64(len(payloads[i]))
	}

	tmpPath := path + ".compact.tmp"
	tmp, err := os.OpenFile(tmpPath, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("region: Compact: create temp file: %w", err)
	}
	if _, err := tmp.Write(header.encode()); err != nil {
		tmp.Close()
		return fmt.Errorf("region: Compact: write header: %w", err)
	}
	if _, err := tmp.Write(encodeIndex(entries)); err != nil {
		tmp.Close()
		return fmt.Errorf("region: Compact: write index: %w", err)
	}
	for _, p := range payloads {
		if _, err := tmp.Write(p); err != nil {
			tmp.Close()
			return fmt.Errorf("region: Compact: write payload: %w", err)
		}
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("region: Compact: close temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("region: Compact: rename into place: %w", err)
	}
	return nil
}

func readOrInitHeader(f *os.File, regionType RegionType) (Header, []indexEntry, error) {
	size, err := f.Seek(0, io.SeekEnd)
	if err != nil {
		return Header{}, nil, fmt.Errorf("seek end: %w", err)
	}
	if size == 0 {
		header := Header{Version: CurrentVersion, RegionType: regionType, RegionSize: [3]int32{RegionSizeInSectors, RegionSizeInSectors, RegionSizeInSectors}}
		return header, nil, nil
	}
	return readHeader(f)
}

func readHeader(f *os.File) (Header, []indexEntry, error) {
	headerBuf := make([]byte, headerLen)
	if _, err := f.ReadAt(headerBuf, 0); err != nil {
		return Header{}, nil, fmt.Errorf("read header: %w", err)
	}
	header, err := decodeHeader(headerBuf)
	if err != nil {
		return Header{}, nil, err
	}
	indexBuf := make([]byte, int(header.SectorCount)*indexEntryLen)
	if header.SectorCount > 0 {
		if _, err := f.ReadAt(indexBuf, headerLen); err != nil {
			return Header{}, nil, fmt.Errorf("read index: %w", err)
		}
	}
	entries, err := decodeIndex(indexBuf, int(header.SectorCount))
	if err != nil {
		return Header{}, nil, err
	}
	return header, entries, nil
}

func writeHeaderAndIndex(f *os.File, header Header, entries []indexEntry) error {
	header.SectorCount = uint32(len(entries))
	if _, err := f.WriteAt(header.encode(), 0); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	if _, err := f.WriteAt(encodeIndex(entries), headerLen); err != nil {
		return fmt.Errorf("write index: %w", err)
	}
	return nil
}

func indexOf(entries []indexEntry, key [3]int32) int {
	for i, e := range entries {
		if e.Key == key {
			return i
		}
	}
	return -1
}
