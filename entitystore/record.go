// Package entitystore implements the entity listing file (spec
// component C10): a binary index of every VoxelEntity's transform,
// dirty flags and owned sector keys, plus the Save/Load orchestration
// that ties entity records to region.Store-backed sector payloads
// (spec.md §4.8).
package entitystore

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/google/uuid"
)

// Flag bits on an entity record (spec.md §6).
const (
	HasPhysics uint8 = 1 << iota
	IsInfinite
	IsStatic
)

// PhysicsBlockSize and InfiniteLoaderBlockSize are the fixed byte
// lengths of the optional physics and infinite-loader blocks. Physics
// simulation and streaming policy are out of scope for this module
// (spec.md §1 "deliberately out of scope" / consumer-only); these
// blocks are persisted as opaque byte blobs owned by those external
// consumers, not interpreted here.
const (
	PhysicsBlockSize        = 24
	InfiniteLoaderBlockSize = 4
)

// TransformData is the wire-precision transform snapshot stored in a
// record: pos f32x3, rot f32x4 (spec.md §4.8).
type TransformData struct {
	Position    [3]float32
	Orientation [4]float32
}

// Record is one entity's listing entry: everything spec.md §4.8's
// record body needs, independent of any in-memory world.VoxelEntity.
type Record struct {
	GUID           uuid.UUID
	Flags          uint8
	Transform      TransformData
	DirtyFlags     uint16
	Physics        []byte // len == PhysicsBlockSize iff Flags&HasPhysics != 0
	InfiniteLoader []byte // len == InfiniteLoaderBlockSize iff Flags&IsInfinite != 0
	Sectors        [][3]int32
}

func encodeRecord(r Record) ([]byte, error) {
	if r.Flags&HasPhysics != 0 && len(r.Physics) != PhysicsBlockSize {
		return nil, fmt.Errorf("entitystore: record %s: HasPhysics set but physics block is %d bytes, want %d", r.GUID, len(r.Physics), PhysicsBlockSize)
	}
	if r.Flags&IsInfinite != 0 && len(r.InfiniteLoader) != InfiniteLoaderBlockSize {
		return nil, fmt.Errorf("entitystore: record %s: IsInfinite set but infinite-loader block is %d bytes, want %d", r.GUID, len(r.InfiniteLoader), InfiniteLoaderBlockSize)
	}

	size := 16 + 1 + 12 + 16 + 2
	if r.Flags&HasPhysics != 0 {
		size += PhysicsBlockSize
	}
	if r.Flags&IsInfinite != 0 {
		size += InfiniteLoaderBlockSize
	}
	size += 4 + len(r.Sectors)*12

	buf := make([]byte, size)
	off := 0
	guidBytes, err := r.GUID.MarshalBinary()
	if err != nil {
		return nil, fmt.Errorf("entitystore: marshal guid: %w", err)
	}
	copy(buf[off:off+16], guidBytes)
	off += 16

	buf[off] = r.Flags
	off++

	for i := 0; i < 3; i++ {
		binary.LittleEndian.PutUint32(buf[off:off+4], math.Float32bits(r.Transform.Position[i]))
		off += 4
	}
	for i := 0; i < 4; i++ {
		binary.LittleEndian.PutUint32(buf[off:off+4], math.Float32bits(r.Transform.Orientation[i]))
		off += 4
	}

	binary.LittleEndian.PutUint16(buf[off:off+2], r.DirtyFlags)
	off += 2

	if r.Flags&HasPhysics != 0 {
		copy(buf[off:off+PhysicsBlockSize], r.Physics)
		off += PhysicsBlockSize
	}
	if r.Flags&IsInfinite != 0 {
		copy(buf[off:off+InfiniteLoaderBlockSize], r.InfiniteLoader)
		off += InfiniteLoaderBlockSize
	}

	binary.LittleEndian.PutUint32(buf[off:off+4], uint32(len(r.Sectors)))
	off += 4
	for _, key := range r.Sectors {
		binary.LittleEndian.PutUint32(buf[off:off+4], uint32(key[0]))
		binary.LittleEndian.PutUint32(buf[off+4:off+8], uint32(key[1]))
		binary.LittleEndian.PutUint32(buf[off+8:off+12], uint32(key[2]))
		off += 12
	}
	return buf, nil
}

func decodeRecord(buf []byte) (Record, error) {
	const fixedLen = 16 + 1 + 12 + 16 + 2
	if len(buf) < fixedLen {
		return Record{}, fmt.Errorf("entitystore: record fixed fields: %w", ErrTruncated)
	}
	var r Record
	off := 0
	if err := r.GUID.UnmarshalBinary(buf[off : off+16]); err != nil {
		return Record{}, fmt.Errorf("entitystore: unmarshal guid: %w", err)
	}
	off += 16

	r.Flags = buf[off]
	off++

	for i := 0; i < 3; i++ {
		r.Transform.Position[i] = math.Float32frombits(binary.LittleEndian.Uint32(buf[off : off+4]))
		off += 4
	}
	for i := 0; i < 4; i++ {
		r.Transform.Orientation[i] = math.Float32frombits(binary.LittleEndian.Uint32(buf[off : off+4]))
		off += 4
	}

	r.DirtyFlags = binary.LittleEndian.Uint16(buf[off : off+2])
	off += 2

	if r.Flags&HasPhysics != 0 {
		if len(buf)-off < PhysicsBlockSize {
			return Record{}, fmt.Errorf("entitystore: physics block: %w", ErrTruncated)
		}
		r.Physics = append([]byte(nil), buf[off:off+PhysicsBlockSize]...)
		off += PhysicsBlockSize
	}
	if r.Flags&IsInfinite != 0 {
		if len(buf)-off < InfiniteLoaderBlockSize {
			return Record{}, fmt.Errorf("entitystore: infinite-loader block: %w", ErrTruncated)
		}
		r.InfiniteLoader = append([]byte(nil), buf[off:off+InfiniteLoaderBlockSize]...)
		off += InfiniteLoaderBlockSize
	}

	if len(buf)-off < 4 {
		return Record{}, fmt.Errorf("entitystore: sector_count: %w", ErrTruncated)
	}
	sectorCount := int(binary.LittleEndian.Uint32(buf[off : off+4]))
	off += 4
	if len(buf)-off < sectorCount*12 {
		return Record{}, fmt.Errorf("entitystore: sector keys (%d entries): %w", sectorCount, ErrTruncated)
	}
	r.Sectors = make([][3]int32, sectorCount)
	for i := 0; i < sectorCount; i++ {
		r.Sectors[i] = [3]int32{
			int32(binary.LittleEndian.Uint32(buf[off : off+4])),
			int32(binary.LittleEndian.Uint32(buf[off+4 : off+8])),
			int32(binary.LittleEndian.Uint32(buf[off+8 : off+12])),
		}
		off += 12
	}
	return r, nil
}
