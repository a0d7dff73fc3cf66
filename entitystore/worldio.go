package entitystore

import (
	"fmt"
	"os"

	"github.com/google/uuid"

	"github.com/gekko3d/voxcore/region"
	"github.com/gekko3d/voxcore/world"
)

// Meta carries the parts of an entity record that a world.VoxelEntity
// doesn't itself track: the flag byte and its optional blocks. Transform
// and Sectors are derived from the entity at save time.
type Meta struct {
	Flags          uint8
	DirtyFlags     uint16
	Physics        []byte
	InfiniteLoader []byte
}

func toTransformData(td world.TransformData) TransformData {
	return TransformData{Position: td.Position, Orientation: td.Orientation}
}

func fromTransformData(td TransformData) world.TransformData {
	return world.TransformData{Position: td.Position, Orientation: td.Orientation}
}

// Save writes the listing file at listingPath, then writes every entity's
// sectors through regionStore, resolving each sector's path via
// pathFor — the Go realization of spec.md §4.8's "save = entity_store.write
// then for each sector region_store.write_sector(...)".
func Save(
	listingPath string,
	regionDir string,
	regionStore *region.Store,
	regionType region.RegionType,
	entities map[uuid.UUID]*world.VoxelEntity,
	metas map[uuid.UUID]Meta,
) error {
	records := make([]Record, 0, len(entities))
	for guid, e := range entities {
		meta := metas[guid]
		var td world.TransformData
		e.SyncTransformToData(&td)

		var sectors [][3]int32
		for key := range e.Sectors() {
			sectors = append(sectors, key)
		}

		records = append(records, Record{
			GUID:           guid,
			Flags:          meta.Flags,
			Transform:      toTransformData(td),
			DirtyFlags:     meta.DirtyFlags,
			Physics:        meta.Physics,
			InfiniteLoader: meta.InfiniteLoader,
			Sectors:        sectors,
		})
	}

	st := NewStore()
	if err := st.Write(listingPath, records); err != nil {
		return fmt.Errorf("entitystore: Save: %w", err)
	}

	if err := os.MkdirAll(regionDir, 0o755); err != nil {
		return fmt.Errorf("entitystore: Save: create region dir %s: %w", regionDir, err)
	}

	for guid, e := range entities {
		for key, sector := range e.Sectors() {
			path := pathFor(regionType, regionDir, key, guid)
			if err := regionStore.WriteSector(path, key, sector, regionType); err != nil {
				return fmt.Errorf("entitystore: Save: write sector %v of entity %s: %w", key, guid, err)
			}
		}
	}
	return nil
}

// Load reads the listing file at listingPath, then for each entity
// re-reads its owned sectors through regionStore, building a fresh
// *world.VoxelEntity per record — spec.md §4.8's "load = reverse, with
// sectors freshly allocated empty before codec.decompress_sector" (the
// fresh allocation happens inside codec.DecompressSector itself, which
// region.Store.ReadSector calls).
func Load(
	listingPath string,
	regionDir string,
	regionStore *region.Store,
	regionType region.RegionType,
) (map[uuid.UUID]*world.VoxelEntity, map[uuid.UUID]Meta, error) {
	st := NewStore()
	records, err := st.Load(listingPath)
	if err != nil {
		return nil, nil, fmt.Errorf("entitystore: Load: %w", err)
	}

	entities := make(map[uuid.UUID]*world.VoxelEntity, len(records))
	metas := make(map[uuid.UUID]Meta, len(records))

	for _, r := range records {
		e := world.NewVoxelEntity(r.GUID)
		td := fromTransformData(r.Transform)
		e.SyncTransformFromData(&td)
		e.DirtyFlags = world.DirtyFlag(r.DirtyFlags)

		for _, key := range r.Sectors {
			path := pathFor(regionType, regionDir, key, r.GUID)
			sector, ok, err := regionStore.ReadSector(path, key)
			if err != nil {
				return nil, nil, fmt.Errorf("entitystore: Load: read sector %v of entity %s: %w", key, r.GUID, err)
			}
			if !ok {
				continue
			}
			e.AddSectorAt(key, sector)
		}

		entities[r.GUID] = e
		metas[r.GUID] = Meta{Flags: r.Flags, DirtyFlags: r.DirtyFlags, Physics: r.Physics, InfiniteLoader: r.InfiniteLoader}
	}
	return entities, metas, nil
}

func pathFor(regionType region.RegionType, regionDir string, key [3]int32, guid uuid.UUID) string {
	if regionType == region.Finite {
		return region.FiniteRegionPath(regionDir, guid)
	}
	return region.InfiniteRegionPath(regionDir, key)
}
