package world

// Directions enumerates the 26 nonzero vectors in {-1,0,1}^3 in a fixed,
// canonical order: z varies slowest, then y, then x, skipping (0,0,0).
// This ordering is used uniformly for direction_mask bit numbering,
// NeighborHandles slot indices, and DirtyPropagation's neighbor walk —
// the spec leaves the exact ordering to the implementer (spec.md §9
// Open Questions) and this is the one fixed choice, used everywhere.
var Directions [26][3]int32

// opposite[i] is the index of the direction pointing the opposite way
// from Directions[i].
var opposite [26]int

// directionIndex maps a direction vector back to its index in Directions.
var directionIndex map[[3]int32]int

func init() {
	idx := 0
	for dz := -1; dz <= 1; dz++ {
		for dy := -1; dy <= 1; dy++ {
			for dx := -1; dx <= 1; dx++ {
				if dx == 0 && dy == 0 && dz == 0 {
					continue
				}
				Directions[idx] = [3]int32{int32(dx), int32(dy), int32(dz)}
				idx++
			}
		}
	}

	directionIndex = make(map[[3]int32]int, 26)
	for i, d := range Directions {
		directionIndex[d] = i
	}

	for i, d := range Directions {
		opp := [3]int32{-d[0], -d[1], -d[2]}
		opposite[i] = directionIndex[opp]
	}
}

// OppositeDirection returns the index of the direction opposite i.
func OppositeDirection(i int) int {
	return opposite[i]
}

// DirectionIndex returns the index into Directions for the vector
// (dx,dy,dz), each in {-1,0,1}, and false if the vector is the zero
// vector or has components outside that range.
func DirectionIndex(dx, dy, dz int32) (int, bool) {
	i, ok := directionIndex[[3]int32{dx, dy, dz}]
	return i, ok
}
