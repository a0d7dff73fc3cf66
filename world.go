package voxcore

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/gekko3d/voxcore/entitystore"
	"github.com/gekko3d/voxcore/region"
	"github.com/gekko3d/voxcore/tick"
	"github.com/gekko3d/voxcore/world"
)

// World is the host-facing composition root (spec.md §3.1): the set of
// entities (spec.md §2 "the world is a set of entities"), wired to a
// region store for sector persistence, an entity listing for save/load,
// and a tick pipeline. It does not reimplement C6–C10; it ties them
// together the way the teacher's WorldComponent/Region/loadRegion ties
// volume.XBrickMap to disk I/O, completing the teacher's
// diskLoadSector/diskSaveSector TODO stubs via entitystore.Save/Load.
type World struct {
	Logger Logger

	RegionDir   string
	ListingPath string
	RegionType  region.RegionType

	Pipeline *tick.Pipeline

	mu          sync.Mutex
	regionStore *region.Store
	entities    map[uuid.UUID]*world.VoxelEntity
	metas       map[uuid.UUID]entitystore.Meta
}

// NewWorld constructs an empty World. regionDir is where sector region
// files live; listingPath is the entities.vxe file's path.
func NewWorld(regionDir, listingPath string, regionType region.RegionType, logger Logger) *World {
	if logger == nil {
		logger = NewNopLogger()
	}
	return &World{
		Logger:      logger,
		RegionDir:   regionDir,
		ListingPath: listingPath,
		RegionType:  regionType,
		Pipeline:    tick.NewPipeline("world-tick", logger),
		regionStore: region.NewStore(),
		entities:    make(map[uuid.UUID]*world.VoxelEntity),
		metas:       make(map[uuid.UUID]entitystore.Meta),
	}
}

// AddEntity registers e (and its save metadata) with the world.
func (w *World) AddEntity(e *world.VoxelEntity, meta entitystore.Meta) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.entities[e.GUID] = e
	w.metas[e.GUID] = meta
}

// RemoveEntity drops guid from the world; it does not touch anything
// already persisted to disk.
func (w *World) RemoveEntity(guid uuid.UUID) {
	w.mu.Lock()
	defer w.mu.Unlock()
	delete(w.entities, guid)
	delete(w.metas, guid)
}

// Entity returns the live entity for guid, if any.
func (w *World) Entity(guid uuid.UUID) (*world.VoxelEntity, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	e, ok := w.entities[guid]
	return e, ok
}

// EntityCount reports how many entities are currently loaded.
func (w *World) EntityCount() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.entities)
}

// Save persists every loaded entity's listing record and owned sectors
// (spec.md §4.8 "save = entity_store.write then for each sector
// region_store.write_sector").
func (w *World) Save() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := entitystore.Save(w.ListingPath, w.RegionDir, w.regionStore, w.RegionType, w.entities, w.metas); err != nil {
		return fmt.Errorf("voxcore: World.Save: %w", err)
	}
	return nil
}

// Load replaces the world's entity set with what entitystore.Load reads
// back from disk.
func (w *World) Load() error {
	entities, metas, err := entitystore.Load(w.ListingPath, w.RegionDir, w.regionStore, w.RegionType)
	if err != nil {
		return fmt.Errorf("voxcore: World.Load: %w", err)
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.entities = entities
	w.metas = metas
	return nil
}

// Tick runs the world's pipeline once against every sector owned by a
// loaded entity, logging and skipping hook failures as tick.Stage does,
// then clears every sector's transient dirty state via the pipeline's
// mandatory end-of-tick pass.
func (w *World) Tick(ctx context.Context) error {
	w.mu.Lock()
	var sectors []*world.Sector
	for _, e := range w.entities {
		for _, s := range e.Sectors() {
			sectors = append(sectors, s)
		}
	}
	w.mu.Unlock()

	if err := w.Pipeline.Run(ctx, tick.Inputs{Sectors: sectors, Extra: w}); err != nil {
		return fmt.Errorf("voxcore: World.Tick: %w", err)
	}
	return nil
}

// PropagateEntity runs dirty-flag propagation (C5) over one entity's
// sectors at the given keys.
func (w *World) PropagateEntity(ctx context.Context, guid uuid.UUID, positions [][3]int32, flags world.DirtyFlag) error {
	e, ok := w.Entity(guid)
	if !ok {
		return fmt.Errorf("voxcore: PropagateEntity: unknown entity %s", guid)
	}
	if err := e.Propagate(ctx, positions, flags); err != nil {
		return fmt.Errorf("voxcore: PropagateEntity: %w", err)
	}
	return nil
}
