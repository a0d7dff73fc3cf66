package region

import (
	"fmt"
	"path/filepath"

	"github.com/google/uuid"
)

// floorDiv is floored integer division, matching world's own
// floorDivMod: region coordinates must wrap the same way sector
// coordinates do for negative sector keys.
func floorDiv(v, size int32) int32 {
	q := v / size
	if (v%size != 0) && ((v < 0) != (size < 0)) {
		q--
	}
	return q
}

// InfiniteRegionPath derives the region file path owning sector key
// under an infinite world: region_coord = floor(key / RegionSizeInSectors)
// componentwise, filename "region_{x}_{y}_{z}.vxr" under dir (spec.md
// §4.7).
func InfiniteRegionPath(dir string, key [3]int32) string {
	rx := floorDiv(key[0], RegionSizeInSectors)
	ry := floorDiv(key[1], RegionSizeInSectors)
	rz := floorDiv(key[2], RegionSizeInSectors)
	return filepath.Join(dir, fmt.Sprintf("region_%d_%d_%d.vxr", rx, ry, rz))
}

// FiniteRegionPath derives the region file path for a finite region
// keyed by an entity GUID (spec.md §9 open question: finite regions are
// identified by the owning entity rather than by world-space coordinate).
func FiniteRegionPath(dir string, entity uuid.UUID) string {
	return filepath.Join(dir, fmt.Sprintf("entity_%s.vxr", entity.String()))
}
