package world

import (
	"context"
	"iter"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"
)

// Transform is an entity's rigid transform: a position plus a unit
// quaternion orientation. Double precision (mgl64) is used rather than
// the teacher's mgl32 because a VoxelEntity's position is expressed in
// block-space across many sectors, which can exceed float32 precision
// at the far edges of a large infinite world.
type Transform struct {
	Position    mgl64.Vec3
	Orientation mgl64.Quat
}

// TransformData is the wire-precision snapshot of a Transform, matching
// the entity record's on-disk layout (pos f32x3, rot f32x4) from
// spec.md §4.8 / §6.
type TransformData struct {
	Position    [3]float32
	Orientation [4]float32 // x, y, z, w
}

// VoxelEntity is a sparse sector map plus a sector-neighborhood index;
// it is the primary API surface for block get/set, and owns every
// Sector reachable from its map exclusively.
type VoxelEntity struct {
	GUID       uuid.UUID
	Transform  Transform
	DirtyFlags DirtyFlag

	sectors         map[[3]int32]*Sector
	neighborHandles map[[3]int32]*NeighborHandles
}

// NewVoxelEntity creates an empty entity with the identity transform.
func NewVoxelEntity(guid uuid.UUID) *VoxelEntity {
	return &VoxelEntity{
		GUID:            guid,
		Transform:       Transform{Orientation: mgl64.QuatIdent()},
		sectors:         make(map[[3]int32]*Sector),
		neighborHandles: make(map[[3]int32]*NeighborHandles),
	}
}

// blockToSectorKey splits an entity-local block position into its
// owning sector key and the sector-local block coordinates, using
// floored division so negative coordinates route correctly.
func blockToSectorKey(p [3]int32) (key, local [3]int32) {
	for i := 0; i < 3; i++ {
		q, r := floorDivMod(p[i], SectorSizeInBlocks)
		key[i] = q
		local[i] = r
	}
	return
}

// GetBlock returns the block at an entity-local block position, or
// Empty if the owning sector doesn't exist.
func (e *VoxelEntity) GetBlock(p [3]int32) Block {
	key, local := blockToSectorKey(p)
	s, ok := e.sectors[key]
	if !ok {
		return Empty
	}
	return s.GetBlock(int(local[0]), int(local[1]), int(local[2]))
}

// SetBlock writes b at an entity-local block position, creating the
// owning sector (and wiring it into the neighborhood index) if it does
// not exist and b is non-empty.
func (e *VoxelEntity) SetBlock(p [3]int32, b Block) {
	key, local := blockToSectorKey(p)
	s, ok := e.sectors[key]
	if !ok {
		if b.IsEmpty() {
			return
		}
		s = NewSector(key)
		e.AddSectorAt(key, s)
	}
	s.SetBlock(int(local[0]), int(local[1]), int(local[2]), b)
}

// AddSectorAt registers sector as the entity's owned sector at key,
// wiring neighbor handles symmetrically: key's table picks up any
// already-present neighbors, and each of those neighbors' tables picks
// up a handle pointing back at sector.
func (e *VoxelEntity) AddSectorAt(key [3]int32, sector *Sector) {
	e.sectors[key] = sector
	handles := e.neighborHandlesFor(key)

	for d, dir := range Directions {
		nk := [3]int32{key[0] + dir[0], key[1] + dir[1], key[2] + dir[2]}
		neighborSector, ok := e.sectors[nk]
		if !ok {
			continue
		}
		handles.Neighbors[d] = neighborSector
		e.neighborHandlesFor(nk).Neighbors[OppositeDirection(d)] = sector
	}
}

// RemoveSectorAt deletes the entity's sector at key, clearing every
// neighbor's handle that pointed at it (the symmetry invariant from
// spec.md §4.4) before the sector itself becomes unreachable.
func (e *VoxelEntity) RemoveSectorAt(key [3]int32) {
	if _, ok := e.sectors[key]; !ok {
		return
	}
	if _, ok := e.neighborHandles[key]; ok {
		for d, dir := range Directions {
			nk := [3]int32{key[0] + dir[0], key[1] + dir[1], key[2] + dir[2]}
			if nh, ok := e.neighborHandles[nk]; ok {
				nh.Neighbors[OppositeDirection(d)] = nil
			}
		}
	}
	delete(e.neighborHandles, key)
	delete(e.sectors, key)
}

func (e *VoxelEntity) neighborHandlesFor(key [3]int32) *NeighborHandles {
	h, ok := e.neighborHandles[key]
	if !ok {
		h = &NeighborHandles{}
		e.neighborHandles[key] = h
	}
	return h
}

// SectorAt returns the owned sector at key, if any.
func (e *VoxelEntity) SectorAt(key [3]int32) (*Sector, bool) {
	s, ok := e.sectors[key]
	return s, ok
}

// NeighborHandlesAt returns the neighbor table for key, if any.
func (e *VoxelEntity) NeighborHandlesAt(key [3]int32) (*NeighborHandles, bool) {
	h, ok := e.neighborHandles[key]
	return h, ok
}

// Sectors iterates over every (key, sector) pair the entity owns.
func (e *VoxelEntity) Sectors() iter.Seq2[[3]int32, *Sector] {
	return func(yield func([3]int32, *Sector) bool) {
		for k, s := range e.sectors {
			if !yield(k, s) {
				return
			}
		}
	}
}

// SectorCount reports how many sectors the entity currently owns.
func (e *VoxelEntity) SectorCount() int {
	return len(e.sectors)
}

// Propagate runs DirtyPropagation over positions against this entity's
// sectors and neighbor tables.
func (e *VoxelEntity) Propagate(ctx context.Context, positions [][3]int32, flagsToPropagate DirtyFlag) error {
	return PropagateDirty(ctx, e.sectors, e.neighborHandles, positions, flagsToPropagate)
}

// SyncTransformToData copies the authoritative Transform into a
// wire-precision TransformData snapshot, e.g. before persisting an
// entity record.
func (e *VoxelEntity) SyncTransformToData(data *TransformData) {
	pos := e.Transform.Position
	data.Position = [3]float32{float32(pos.X()), float32(pos.Y()), float32(pos.Z())}
	q := e.Transform.Orientation
	data.Orientation = [4]float32{float32(q.V.X()), float32(q.V.Y()), float32(q.V.Z()), float32(q.W)}
}

// SyncTransformFromData copies a wire-precision TransformData snapshot
// back into the authoritative Transform, e.g. after loading an entity
// record.
func (e *VoxelEntity) SyncTransformFromData(data *TransformData) {
	e.Transform.Position = mgl64.Vec3{
		float64(data.Position[0]), float64(data.Position[1]), float64(data.Position[2]),
	}
	e.Transform.Orientation = mgl64.Quat{
		W: float64(data.Orientation[3]),
		V: mgl64.Vec3{float64(data.Orientation[0]), float64(data.Orientation[1]), float64(data.Orientation[2])},
	}
}
