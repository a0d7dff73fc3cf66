package entitystore

import (
	"encoding/binary"
	"fmt"
	"hash/crc32"
	"os"

	"github.com/google/uuid"
)

// MagicEntity is the ASCII "VXEN" interpreted as a little-endian u32
// (spec.md §6).
const MagicEntity uint32 = 0x4E455856

// CurrentVersion is the only header version this package writes.
const CurrentVersion uint16 = 1

const (
	listingHeaderLen     = 64
	listingIndexEntryLen = 32 // guid(16) + offset(8) + length(4) + crc32(4)
)

type listingIndexEntry struct {
	GUID   uuid.UUID
	Offset uint64
	Length uint32
	CRC32  uint32
}

// Store reads and writes the entity listing file (entities.vxe).
type Store struct{}

// NewStore constructs a Store.
func NewStore() *Store { return &Store{} }

// Write encodes every record and writes a fresh listing file at path,
// replacing any existing file in full (unlike region.Store, the listing
// is small enough that a full rewrite per save is the natural choice).
func (st *Store) Write(path string, records []Record) error {
	bodies := make([][]byte, len(records))
	entries := make([]listingIndexEntry, len(records))

	off := uint64(listingHeaderLen + len(records)*listingIndexEntryLen)
	for i, r := range records {
		body, err := encodeRecord(r)
		if err != nil {
			return fmt.Errorf("entitystore: Write: encode record %s: %w", r.GUID, err)
		}
		bodies[i] = body
		entries[i] = listingIndexEntry{
			GUID:   r.GUID,
			Offset: off,
			Length: uint32(len(body)),
			CRC32:  crc32.ChecksumIEEE(body),
		}
		off += uint64(len(body))
	}

	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("entitystore: Write: create %s: %w", path, err)
	}
	defer f.Close()

	header := make([]byte, listingHeaderLen)
	binary.LittleEndian.PutUint32(header[0:4], MagicEntity)
	binary.LittleEndian.PutUint16(header[4:6], CurrentVersion)
	binary.LittleEndian.PutUint32(header[8:12], uint32(len(records)))
	if _, err := f.Write(header); err != nil {
		return fmt.Errorf("entitystore: Write: write header: %w", err)
	}

	for _, e := range entries {
		entryBuf := make([]byte, listingIndexEntryLen)
		guidBytes, err := e.GUID.MarshalBinary()
		if err != nil {
			return fmt.Errorf("entitystore: Write: marshal guid: %w", err)
		}
		copy(entryBuf[0:16], guidBytes)
		binary.LittleEndian.PutUint64(entryBuf[16:24], e.Offset)
		binary.LittleEndian.PutUint32(entryBuf[24:28], e.Length)
		binary.LittleEndian.PutUint32(entryBuf[28:32], e.CRC32)
		if _, err := f.Write(entryBuf); err != nil {
			return fmt.Errorf("entitystore: Write: write index entry: %w", err)
		}
	}

	for _, body := range bodies {
		if _, err := f.Write(body); err != nil {
			return fmt.Errorf("entitystore: Write: write record body: %w", err)
		}
	}
	return nil
}

// Load reads and decodes every record in path's listing file, verifying
// each record's CRC32.
func (st *Store) Load(path string) ([]Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("entitystore: Load: open %s: %w", path, err)
	}
	defer f.Close()

	headerBuf := make([]byte, listingHeaderLen)
	if _, err := f.ReadAt(headerBuf, 0); err != nil {
		return nil, fmt.Errorf("entitystore: Load: read header: %w", err)
	}
	magic := binary.LittleEndian.Uint32(headerBuf[0:4])
	if magic != MagicEntity {
		return nil, fmt.Errorf("entitystore: Load: magic %#x: %w", magic, ErrBadMagic)
	}
	version := binary.LittleEndian.Uint16(headerBuf[4:6])
	if version > CurrentVersion {
		return nil, fmt.Errorf("entitystore: Load: version %d: %w", version, ErrUnsupportedVersion)
	}
	entityCount := int(binary.LittleEndian.Uint32(headerBuf[8:12]))

	indexBuf := make([]byte, entityCount*listingIndexEntryLen)
	if entityCount > 0 {
		if _, err := f.ReadAt(indexBuf, listingHeaderLen); err != nil {
			return nil, fmt.Errorf("entitystore: Load: read index: %w", err)
		}
	}

	records := make([]Record, entityCount)
	for i := 0; i < entityCount; i++ {
		entryBuf := indexBuf[i*listingIndexEntryLen : (i+1)*listingIndexEntryLen]
		var guid uuid.UUID
		if err := guid.UnmarshalBinary(entryBuf[0:16]); err != nil {
			return nil, fmt.Errorf("entitystore: Load: unmarshal guid: %w", err)
		}
		offset := binary.LittleEndian.Uint64(entryBuf[16:24])
		length := binary.LittleEndian.Uint32(entryBuf[24:28])
		wantCRC := binary.LittleEndian.Uint32(entryBuf[28:32])

		body := make([]byte, length)
		if _, err := f.ReadAt(body, int64(offset)); err != nil {
			return nil, fmt.Errorf("entitystore: Load: read record %s body: %w", guid, err)
		}
		if crc32.ChecksumIEEE(body) != wantCRC {
			return nil, fmt.Errorf("entitystore: Load: record %s: %w", guid, ErrChecksumMismatch)
		}
		r, err := decodeRecord(body)
		if err != nil {
			return nil, fmt.Errorf("entitystore: Load: decode record %s: %w", guid, err)
		}
		records[i] = r
	}
	return records, nil
}
