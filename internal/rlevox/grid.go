// Package rlevox implements the RLEVOX binary format: a run-length encoded
// 3D boolean occupancy grid used as collision geometry for explorable
// spaces. The codec is bit-exact: decode(encode(f)) reproduces f, and the
// encoded byte stream for a given field is deterministic.
package rlevox

import "fmt"

// Grid is a dense 3D boolean occupancy field indexed [x, y, z].
// Cells are stored flat as x + DimX*(y + DimY*z).
type Grid struct {
	DimX, DimY, DimZ int
	cells            []bool
}

// NewGrid allocates an all-empty grid. All dimensions must be at least 1.
func NewGrid(dimX, dimY, dimZ int) (*Grid, error) {
	if dimX < 1 || dimY < 1 || dimZ < 1 {
		return nil, fmt.Errorf("rlevox: invalid grid dimensions %dx%dx%d", dimX, dimY, dimZ)
	}
	return &Grid{
		DimX:  dimX,
		DimY:  dimY,
		DimZ:  dimZ,
		cells: make([]bool, dimX*dimY*dimZ),
	}, nil
}

func (g *Grid) index(x, y, z int) int {
	return x + g.DimX*(y+g.DimY*z)
}

// InBounds reports whether the index lies within the grid.
func (g *Grid) InBounds(x, y, z int) bool {
	return x >= 0 && x < g.DimX && y >= 0 && y < g.DimY && z >= 0 && z < g.DimZ
}

// At returns the cell value. The index must be in bounds.
func (g *Grid) At(x, y, z int) bool {
	return g.cells[g.index(x, y, z)]
}

// Set assigns the cell value. The index must be in bounds.
func (g *Grid) Set(x, y, z int, solid bool) {
	g.cells[g.index(x, y, z)] = solid
}

// SetBox marks every cell with x in [x0,x1), y in [y0,y1), z in [z0,z1).
// Bounds are clamped to the grid.
func (g *Grid) SetBox(x0, x1, y0, y1, z0, z1 int, solid bool) {
	x0, x1 = clamp(x0, 0, g.DimX), clamp(x1, 0, g.DimX)
	y0, y1 = clamp(y0, 0, g.DimY), clamp(y1, 0, g.DimY)
	z0, z1 = clamp(z0, 0, g.DimZ), clamp(z1, 0, g.DimZ)
	for z := z0; z < z1; z++ {
		for y := y0; y < y1; y++ {
			for x := x0; x < x1; x++ {
				g.cells[g.index(x, y, z)] = solid
			}
		}
	}
}

// Count returns the number of solid cells.
func (g *Grid) Count() int {
	n := 0
	for _, c := range g.cells {
		if c {
			n++
		}
	}
	return n
}

// Equal reports whether two grids have identical dimensions and cells.
func (g *Grid) Equal(other *Grid) bool {
	if other == nil || g.DimX != other.DimX || g.DimY != other.DimY || g.DimZ != other.DimZ {
		return false
	}
	for i := range g.cells {
		if g.cells[i] != other.cells[i] {
			return false
		}
	}
	return true
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Field pairs a grid with its world placement: a uniform cell edge length
// in meters and the world position of cell [0,0,0].
type Field struct {
	Grid      *Grid
	VoxelSize float32
	Origin    [3]float32
}

// Stats summarizes a field's occupancy.
type Stats struct {
	DimX, DimY, DimZ int
	VoxelSizeM       float32
	TotalVoxels      int
	SolidVoxels      int
	EmptyVoxels      int
	FillRatio        float64
	WorldSizeM       [3]float64
}

// Stats computes occupancy statistics for the field.
func (f *Field) Stats() Stats {
	g := f.Grid
	total := g.DimX * g.DimY * g.DimZ
	solid := g.Count()
	s := Stats{
		DimX:        g.DimX,
		DimY:        g.DimY,
		DimZ:        g.DimZ,
		VoxelSizeM:  f.VoxelSize,
		TotalVoxels: total,
		SolidVoxels: solid,
		EmptyVoxels: total - solid,
		WorldSizeM: [3]float64{
			float64(g.DimX) * float64(f.VoxelSize),
			float64(g.DimY) * float64(f.VoxelSize),
			float64(g.DimZ) * float64(f.VoxelSize),
		},
	}
	if total > 0 {
		s.FillRatio = float64(solid) / float64(total)
	}
	return s
}
