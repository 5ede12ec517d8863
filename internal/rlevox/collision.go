package rlevox

import "math"

// GridToWorld returns the world-space center of the cell at the given
// index: origin + (index + 0.5) * voxel_size.
func (f *Field) GridToWorld(ix, iy, iz int) [3]float64 {
	size := float64(f.VoxelSize)
	return [3]float64{
		float64(f.Origin[0]) + (float64(ix)+0.5)*size,
		float64(f.Origin[1]) + (float64(iy)+0.5)*size,
		float64(f.Origin[2]) + (float64(iz)+0.5)*size,
	}
}

// WorldToGrid returns the index of the cell containing the world position:
// floor((position - origin) / voxel_size). The result may be out of bounds.
func (f *Field) WorldToGrid(pos [3]float64) (int, int, int) {
	size := float64(f.VoxelSize)
	return int(math.Floor((pos[0] - float64(f.Origin[0])) / size)),
		int(math.Floor((pos[1] - float64(f.Origin[1])) / size)),
		int(math.Floor((pos[2] - float64(f.Origin[2])) / size))
}

// SolidAt reports whether the cell containing the world position is solid.
// Positions outside the grid are non-solid.
func (f *Field) SolidAt(pos [3]float64) bool {
	x, y, z := f.WorldToGrid(pos)
	if !f.Grid.InBounds(x, y, z) {
		return false
	}
	return f.Grid.At(x, y, z)
}

// CapsuleCollides tests a vertical player capsule (feet at pos, given
// radius and height) against the grid, approximated by the capsule's
// axis-aligned bounding box. It returns true on the first solid cell found
// within the clamped box.
func (f *Field) CapsuleCollides(pos [3]float64, radius, height float64) bool {
	size := float64(f.VoxelSize)
	minX := int(math.Floor((pos[0] - radius - float64(f.Origin[0])) / size))
	minY := int(math.Floor((pos[1] - float64(f.Origin[1])) / size))
	minZ := int(math.Floor((pos[2] - radius - float64(f.Origin[2])) / size))
	maxX := int(math.Ceil((pos[0] + radius - float64(f.Origin[0])) / size))
	maxY := int(math.Ceil((pos[1] + height - float64(f.Origin[1])) / size))
	maxZ := int(math.Ceil((pos[2] + radius - float64(f.Origin[2])) / size))

	g := f.Grid
	minX, minY, minZ = clamp(minX, 0, g.DimX), clamp(minY, 0, g.DimY), clamp(minZ, 0, g.DimZ)
	maxX, maxY, maxZ = clamp(maxX, 0, g.DimX), clamp(maxY, 0, g.DimY), clamp(maxZ, 0, g.DimZ)

	for x := minX; x < maxX; x++ {
		for y := minY; y < maxY; y++ {
			for z := minZ; z < maxZ; z++ {
				if g.At(x, y, z) {
					return true
				}
			}
		}
	}
	return false
}
