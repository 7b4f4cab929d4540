// Package grid provides flat-index addressing over a padded 3D voxel grid
// and the 26-connected neighborhood used by the labeling engine.
package grid

import (
	"github.com/pkg/errors"
)

// MinDim is the smallest usable extent along any axis. One voxel of
// padding on each side leaves at least one interior voxel.
const MinDim = 3

// NumNeighbors is the size of the full 26-connected neighborhood.
const NumNeighbors = 26

// ErrTooSmall is returned when an axis is shorter than MinDim.
var ErrTooSmall = errors.New("grid dimensions too small")

// Grid maps (x,y,z) coordinates to flat indices in x-fastest order.
type Grid struct {
	nx, ny, nz int
	sliceSize  int
	offsets    [NumNeighbors]int
}

// New returns a grid for the given dimensions, or ErrTooSmall if any axis
// is below MinDim.
func New(dims [3]int) (*Grid, error) {
	for axis, d := range dims {
		if d < MinDim {
			return nil, errors.Wrapf(ErrTooSmall, "axis %d has %d voxels, need at least %d", axis, d, MinDim)
		}
	}
	g := &Grid{
		nx:        dims[0],
		ny:        dims[1],
		nz:        dims[2],
		sliceSize: dims[0] * dims[1],
	}
	g.offsets = g.computeOffsets()
	return g, nil
}

// computeOffsets enumerates every (dx,dy,dz) in {-1,0,1}^3 except the
// origin, z slowest, x fastest.
func (g *Grid) computeOffsets() [NumNeighbors]int {
	var offs [NumNeighbors]int
	n := 0
	for dz := -1; dz <= 1; dz++ {
		for dy := -1; dy <= 1; dy++ {
			for dx := -1; dx <= 1; dx++ {
				if dx == 0 && dy == 0 && dz == 0 {
					continue
				}
				offs[n] = dz*g.sliceSize + dy*g.nx + dx
				n++
			}
		}
	}
	return offs
}

// Dims returns the grid extent.
func (g *Grid) Dims() [3]int {
	return [3]int{g.nx, g.ny, g.nz}
}

// Len returns the number of voxels.
func (g *Grid) Len() int {
	return g.sliceSize * g.nz
}

// Index returns the flat index of (x,y,z).
func (g *Grid) Index(x, y, z int) int {
	return z*g.sliceSize + y*g.nx + x
}

// Coords is the inverse of Index.
func (g *Grid) Coords(idx int) (x, y, z int) {
	z = idx / g.sliceSize
	rem := idx - z*g.sliceSize
	y = rem / g.nx
	x = rem - y*g.nx
	return
}

// NeighborOffsets returns the 26 signed flat-index deltas of the
// neighborhood. They are only valid from interior voxels.
func (g *Grid) NeighborOffsets() [NumNeighbors]int {
	return g.offsets
}

// IsBorder reports whether idx lies on the outer one-voxel shell.
func (g *Grid) IsBorder(idx int) bool {
	x, y, z := g.Coords(idx)
	return x == 0 || y == 0 || z == 0 || x == g.nx-1 || y == g.ny-1 || z == g.nz-1
}

// NeighborCount returns 0 for border voxels and NumNeighbors otherwise.
func (g *Grid) NeighborCount(idx int) int {
	if g.IsBorder(idx) {
		return 0
	}
	return NumNeighbors
}

// NeighborSizes builds the dense per-voxel neighbor-count table so the
// relaxation loop never has to do boundary checks.
func (g *Grid) NeighborSizes() []uint8 {
	sizes := make([]uint8, g.Len())
	for z := 1; z < g.nz-1; z++ {
		for y := 1; y < g.ny-1; y++ {
			row := g.Index(1, y, z)
			for x := 1; x < g.nx-1; x++ {
				sizes[row] = NumNeighbors
				row++
			}
		}
	}
	return sizes
}

// InBounds reports whether (x,y,z) addresses a voxel of the grid.
func (g *Grid) InBounds(x, y, z int) bool {
	return x >= 0 && y >= 0 && z >= 0 && x < g.nx && y < g.ny && z < g.nz
}
