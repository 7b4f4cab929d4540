package models

import (
	"fmt"
	"math"
)

// Sample is the set of element types an intensity volume may hold.
type Sample interface {
	~int8 | ~uint8 | ~int16 | ~uint16 | ~int32 | ~uint32 | ~float32 | ~float64
}

// Label is the set of element types a seed volume may hold before it is
// normalised to int32.
type Label interface {
	~int8 | ~uint8 | ~int16 | ~uint16 | ~int32 | ~uint32 | ~int64 | ~uint64
}

// Geometry describes the regular grid a volume is sampled on
type Geometry struct {
	// Dims holds the number of voxels along x, y and z
	Dims [3]int `yaml:"dims"`

	// Origin is the physical position of voxel (0,0,0) in mm
	Origin [3]float64 `yaml:"origin"`

	// Spacing is the physical size of a voxel along each axis in mm
	Spacing [3]float64 `yaml:"spacing"`
}

// NewGeometry returns a geometry with the given dimensions, zero origin
// and unit spacing.
func NewGeometry(nx, ny, nz int) Geometry {
	return Geometry{
		Dims:    [3]int{nx, ny, nz},
		Spacing: [3]float64{1, 1, 1},
	}
}

// NumVoxels returns Nx*Ny*Nz, or -1 if any dimension is negative or the
// product overflows an int.
func (g Geometry) NumVoxels() int {
	n := 1
	for _, d := range g.Dims {
		if d < 0 {
			return -1
		}
		if d != 0 && n > math.MaxInt/d {
			return -1
		}
		n *= d
	}
	return n
}

// SameDims reports whether both geometries have identical dimensions.
func (g Geometry) SameDims(o Geometry) bool {
	return g.Dims == o.Dims
}

// Equal reports whether both geometries have identical dimensions and
// origin/spacing that agree within tol.
func (g Geometry) Equal(o Geometry, tol float64) bool {
	if !g.SameDims(o) {
		return false
	}
	for i := 0; i < 3; i++ {
		if math.Abs(g.Origin[i]-o.Origin[i]) > tol {
			return false
		}
		if math.Abs(g.Spacing[i]-o.Spacing[i]) > tol {
			return false
		}
	}
	return true
}

func (g Geometry) geometry() Geometry { return g }

// GeometryOf returns the geometry of a *Volume of any element type.
func GeometryOf(vol interface{}) (Geometry, bool) {
	v, ok := vol.(interface{ geometry() Geometry })
	if !ok {
		return Geometry{}, false
	}
	return v.geometry(), true
}

func (g Geometry) String() string {
	return fmt.Sprintf("%dx%dx%d origin=(%g,%g,%g) spacing=(%g,%g,%g)",
		g.Dims[0], g.Dims[1], g.Dims[2],
		g.Origin[0], g.Origin[1], g.Origin[2],
		g.Spacing[0], g.Spacing[1], g.Spacing[2])
}

// Volume is a 3D scalar grid stored as a flat array in x-fastest order,
// i.e. the sample at (x,y,z) lives at z*Nx*Ny + y*Nx + x.
type Volume[T any] struct {
	Geometry

	// Data holds Nx*Ny*Nz samples
	Data []T
}

// LabelVolume is the normalised seed and output label representation.
// 0 means unlabeled.
type LabelVolume = Volume[int32]

// NewVolume allocates a zero-filled volume on the given geometry.
func NewVolume[T any](geom Geometry) *Volume[T] {
	n := geom.NumVoxels()
	if n < 0 {
		n = 0
	}
	return &Volume[T]{Geometry: geom, Data: make([]T, n)}
}

// Index returns the flat index of (x,y,z).
func (v *Volume[T]) Index(x, y, z int) int {
	return z*v.Dims[0]*v.Dims[1] + y*v.Dims[0] + x
}

// At returns the sample at (x,y,z).
func (v *Volume[T]) At(x, y, z int) T {
	return v.Data[v.Index(x, y, z)]
}

// Set stores a sample at (x,y,z).
func (v *Volume[T]) Set(x, y, z int, val T) {
	v.Data[v.Index(x, y, z)] = val
}

// Validate checks that the data length matches the dimensions.
func (v *Volume[T]) Validate() error {
	n := v.NumVoxels()
	if n < 0 {
		return fmt.Errorf("invalid dimensions %v", v.Dims)
	}
	if len(v.Data) != n {
		return fmt.Errorf("volume has %d samples, dimensions %v require %d", len(v.Data), v.Dims, n)
	}
	return nil
}

// NormalizeLabels converts a seed volume of any integer element type to a
// LabelVolume. Values outside the int32 range are reported as an error.
func NormalizeLabels[L Label](v *Volume[L]) (*LabelVolume, error) {
	out := &LabelVolume{Geometry: v.Geometry, Data: make([]int32, len(v.Data))}
	for i, l := range v.Data {
		if l < 0 {
			if int64(l) < math.MinInt32 {
				return nil, fmt.Errorf("label %d at voxel %d does not fit in int32", l, i)
			}
		} else if uint64(l) > math.MaxInt32 {
			return nil, fmt.Errorf("label %d at voxel %d does not fit in int32", l, i)
		}
		out.Data[i] = int32(l)
	}
	return out, nil
}
