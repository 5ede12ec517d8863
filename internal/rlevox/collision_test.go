package rlevox

import "testing"

func testField(t *testing.T) *Field {
	t.Helper()
	g := mustGrid(t, 10, 10, 10)
	// Solid floor slab at y in [0,2).
	g.SetBox(0, 10, 0, 2, 0, 10, true)
	return &Field{Grid: g, VoxelSize: 0.1, Origin: [3]float32{0, 0, 0}}
}

func TestGridToWorldCenters(t *testing.T) {
	f := testField(t)
	got := f.GridToWorld(0, 0, 0)
	want := [3]float64{0.05, 0.05, 0.05}
	for i := range want {
		if diff := got[i] - want[i]; diff > 1e-9 || diff < -1e-9 {
			t.Fatalf("GridToWorld(0,0,0) = %v, want %v", got, want)
		}
	}
}

func TestWorldToGridInverse(t *testing.T) {
	f := testField(t)
	for z := 0; z < f.Grid.DimZ; z++ {
		for y := 0; y < f.Grid.DimY; y++ {
			for x := 0; x < f.Grid.DimX; x++ {
				gx, gy, gz := f.WorldToGrid(f.GridToWorld(x, y, z))
				if gx != x || gy != y || gz != z {
					t.Fatalf("inverse failed at (%d,%d,%d): got (%d,%d,%d)", x, y, z, gx, gy, gz)
				}
			}
		}
	}
}

func TestSolidAt(t *testing.T) {
	f := testField(t)
	if !f.SolidAt([3]float64{0.5, 0.1, 0.5}) {
		t.Fatalf("point inside floor slab should be solid")
	}
	if f.SolidAt([3]float64{0.5, 0.5, 0.5}) {
		t.Fatalf("point above floor should be empty")
	}
	// Out of bounds is non-solid, not an error.
	if f.SolidAt([3]float64{-5, 0, 0}) || f.SolidAt([3]float64{0.5, 99, 0.5}) {
		t.Fatalf("out-of-bounds positions must be non-solid")
	}
}

func TestCapsuleCollides(t *testing.T) {
	f := testField(t)

	// Feet inside the floor slab.
	if !f.CapsuleCollides([3]float64{0.5, 0.1, 0.5}, 0.3, 1.7) {
		t.Fatalf("capsule intersecting floor should collide")
	}
	// Standing well above the slab.
	if f.CapsuleCollides([3]float64{0.5, 0.5, 0.5}, 0.3, 0.3) {
		t.Fatalf("capsule above floor should not collide")
	}
	// Entirely outside the grid.
	if f.CapsuleCollides([3]float64{50, 50, 50}, 0.3, 1.7) {
		t.Fatalf("capsule outside grid should not collide")
	}
}
