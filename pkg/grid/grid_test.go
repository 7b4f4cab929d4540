package grid

import (
	"testing"

	"github.com/pkg/errors"
)

func TestNewRejectsSmallAxes(t *testing.T) {
	tests := []struct {
		name string
		dims [3]int
		ok   bool
	}{
		{"minimum", [3]int{3, 3, 3}, true},
		{"elongated", [3]int{3, 10, 4}, true},
		{"thin x", [3]int{2, 5, 5}, false},
		{"thin y", [3]int{5, 1, 5}, false},
		{"thin z", [3]int{5, 5, 0}, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			g, err := New(tc.dims)
			if tc.ok {
				if err != nil {
					t.Fatalf("Unexpected error for %v: %v", tc.dims, err)
				}
				if g.Dims() != tc.dims {
					t.Errorf("Expected dims %v, got %v", tc.dims, g.Dims())
				}
				return
			}
			if errors.Cause(err) != ErrTooSmall {
				t.Errorf("Expected ErrTooSmall for %v, got %v", tc.dims, err)
			}
		})
	}
}

func TestIndexCoordsRoundTrip(t *testing.T) {
	g, err := New([3]int{4, 5, 6})
	if err != nil {
		t.Fatal(err)
	}
	for idx := 0; idx < g.Len(); idx++ {
		x, y, z := g.Coords(idx)
		if !g.InBounds(x, y, z) {
			t.Fatalf("Coords(%d) = (%d,%d,%d) out of bounds", idx, x, y, z)
		}
		if back := g.Index(x, y, z); back != idx {
			t.Fatalf("Index(Coords(%d)) = %d", idx, back)
		}
	}
}

// TestNeighborOffsets checks that the offsets from an interior voxel hit
// exactly the 26 voxels of its 3x3x3 block, excluding itself.
func TestNeighborOffsets(t *testing.T) {
	g, err := New([3]int{5, 6, 7})
	if err != nil {
		t.Fatal(err)
	}
	center := g.Index(2, 3, 3)
	seen := make(map[int]bool)
	for _, off := range g.NeighborOffsets() {
		if off == 0 {
			t.Fatal("Offsets must not contain zero")
		}
		nb := center + off
		x, y, z := g.Coords(nb)
		if abs(x-2) > 1 || abs(y-3) > 1 || abs(z-3) > 1 {
			t.Errorf("Offset %d leads to (%d,%d,%d), not adjacent to (2,3,3)", off, x, y, z)
		}
		if seen[nb] {
			t.Errorf("Neighbor %d listed twice", nb)
		}
		seen[nb] = true
	}
	if len(seen) != NumNeighbors {
		t.Errorf("Expected %d distinct neighbors, got %d", NumNeighbors, len(seen))
	}
}

func TestNeighborSizes(t *testing.T) {
	g, err := New([3]int{4, 3, 5})
	if err != nil {
		t.Fatal(err)
	}
	sizes := g.NeighborSizes()
	if len(sizes) != g.Len() {
		t.Fatalf("Expected %d entries, got %d", g.Len(), len(sizes))
	}

	interior := 0
	for idx, s := range sizes {
		if int(s) != g.NeighborCount(idx) {
			t.Errorf("Voxel %d: table says %d, NeighborCount says %d", idx, s, g.NeighborCount(idx))
		}
		if s == NumNeighbors {
			interior++
		}
	}
	// (4-2)*(3-2)*(5-2)
	if interior != 6 {
		t.Errorf("Expected 6 interior voxels, got %d", interior)
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
