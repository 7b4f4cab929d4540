package growcut

import (
	"math/rand"
	"testing"

	"fastgrowcut/internal/models"
	"fastgrowcut/pkg/grid"
)

// createTestVolume builds a float32 image with random intensities in
// [0, 100). Random floats make equal-cost paths practically impossible.
func createTestVolume(nx, ny, nz int, seed int64) *models.Volume[float32] {
	rng := rand.New(rand.NewSource(seed))
	vol := models.NewVolume[float32](models.NewGeometry(nx, ny, nz))
	for i := range vol.Data {
		vol.Data[i] = rng.Float32() * 100
	}
	return vol
}

// createIntegerVolume builds a uint8 image using only the given number of
// intensity levels, 20 apart. Few levels give many equal-cost paths.
func createIntegerVolume(nx, ny, nz, levels int, seed int64) *models.Volume[uint8] {
	rng := rand.New(rand.NewSource(seed))
	vol := models.NewVolume[uint8](models.NewGeometry(nx, ny, nz))
	for i := range vol.Data {
		vol.Data[i] = uint8(rng.Intn(levels) * 20)
	}
	return vol
}

// createSeeds returns an empty seed volume on the geometry of img.
func createSeeds(geom models.Geometry) *models.LabelVolume {
	return models.NewVolume[int32](geom)
}

// paintBox sets every voxel of the box [x0,x1]x[y0,y1]x[z0,z1] to label.
func paintBox(seeds *models.LabelVolume, x0, y0, z0, x1, y1, z1 int, label int32) {
	for z := z0; z <= z1; z++ {
		for y := y0; y <= y1; y++ {
			for x := x0; x <= x1; x++ {
				seeds.Set(x, y, z, label)
			}
		}
	}
}

func cloneSeeds(seeds *models.LabelVolume) *models.LabelVolume {
	out := createSeeds(seeds.Geometry)
	copy(out.Data, seeds.Data)
	return out
}

func absDiff(a, b float32) float32 {
	if a > b {
		return a - b
	}
	return b - a
}

// oracleDistances computes the seed distances by repeated relaxation until
// nothing changes, propagating only out of interior voxels.
func oracleDistances(t *testing.T, img *models.Volume[float32], seeds *models.LabelVolume) []float32 {
	t.Helper()
	g, err := grid.New(img.Dims)
	if err != nil {
		t.Fatal(err)
	}
	dist := make([]float32, g.Len())
	for i, s := range seeds.Data {
		if s != 0 {
			dist[i] = Epsilon
		} else {
			dist[i] = Inf
		}
	}
	offsets := g.NeighborOffsets()
	for changed := true; changed; {
		changed = false
		for u := range dist {
			if dist[u] == Inf || g.NeighborCount(u) == 0 {
				continue
			}
			for _, off := range offsets {
				v := u + off
				tv := dist[u] + absDiff(img.Data[u], img.Data[v])
				if tv < dist[v] {
					dist[v] = tv
					changed = true
				}
			}
		}
	}
	return dist
}

// reachesSeed searches backwards from v along edges that account exactly
// for its distance and carry its label, looking for a seed of that label.
func reachesSeed(g *grid.Grid, img []float32, seeds, lab []int32, dist []float32, v int) bool {
	label := lab[v]
	visited := map[int]bool{v: true}
	stack := []int{v}
	for len(stack) > 0 {
		w := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if seeds[w] == label && dist[w] == Epsilon {
			return true
		}
		x, y, z := g.Coords(w)
		for dz := -1; dz <= 1; dz++ {
			for dy := -1; dy <= 1; dy++ {
				for dx := -1; dx <= 1; dx++ {
					if !g.InBounds(x+dx, y+dy, z+dz) {
						continue
					}
					u := g.Index(x+dx, y+dy, z+dz)
					if u != w && !visited[u] && predecessor(g, img, lab, dist, u, w, label) {
						visited[u] = true
						stack = append(stack, u)
					}
				}
			}
		}
	}
	return false
}

func predecessor(g *grid.Grid, img []float32, lab []int32, dist []float32, u, w int, label int32) bool {
	return g.NeighborCount(u) > 0 && lab[u] == label && dist[u]+absDiff(img[u], img[w]) == dist[w]
}

func runSession(t *testing.T, s *Session, img *models.Volume[float32], seeds *models.LabelVolume) *models.LabelVolume {
	t.Helper()
	out, err := s.Run(img, seeds)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	return out
}

func equalLabels(a, b *models.LabelVolume) int {
	diff := 0
	for i := range a.Data {
		if a.Data[i] != b.Data[i] {
			diff++
		}
	}
	return diff
}
