package growcut

import (
	"context"
	"math"

	"github.com/pkg/errors"

	"fastgrowcut/pkg/grid"
	"fastgrowcut/pkg/pqueue"
)

const (
	// Epsilon is the initial cost of a seed voxel. It is kept above zero so
	// that seeds win every tie against voxels reached at zero cost.
	Epsilon float32 = 0.01

	// cancelCheckMask sets how often the relaxation loop polls its context.
	cancelCheckMask = 1<<12 - 1
)

// Inf marks a voxel that no seed has reached.
var Inf = float32(math.Inf(1))

// Mode selects how a pass is initialised.
type Mode int

const (
	// Cold labels from scratch using only the current seeds.
	Cold Mode = iota

	// Warm reuses the previous label and distance fields and only
	// recomputes what newly painted seeds can improve.
	Warm
)

func (m Mode) String() string {
	switch m {
	case Cold:
		return "cold"
	case Warm:
		return "warm"
	default:
		return "unknown"
	}
}

// pass holds everything one relaxation run touches. lab and dist are
// written; labPrev and distPrev are only read.
type pass struct {
	mode      Mode
	intensity []float32
	seed      []int32
	nbSize    []uint8
	offsets   [grid.NumNeighbors]int

	lab  []int32
	dist []float32

	labPrev  []int32
	distPrev []float32

	queue *pqueue.Queue
	stats *Stats
}

// initialize fills lab and dist from the seeds and loads every voxel into
// the queue.
//
// A cold pass starts all seeds at Epsilon and everything else at Inf. A
// warm pass only restarts voxels whose seed differs from the previous
// result; all others are provisionally unreached and will either be
// improved by the new seeds or copied back from the previous fields.
func (p *pass) initialize() error {
	switch p.mode {
	case Cold:
		for i, s := range p.seed {
			p.lab[i] = s
			if s == 0 {
				p.dist[i] = Inf
			} else {
				p.dist[i] = Epsilon
				p.stats.Seeds++
			}
		}
	case Warm:
		for i, s := range p.seed {
			if s != 0 && s != p.labPrev[i] {
				p.dist[i] = Epsilon
				p.lab[i] = s
				p.stats.Seeds++
			} else {
				p.dist[i] = Inf
				p.lab[i] = 0
			}
		}
	default:
		return errors.Errorf("unknown mode %d", p.mode)
	}
	return p.queue.Init(p.dist)
}

// relax runs Dijkstra over the 26-connected grid with edge cost
// |I(u)-I(v)|, carrying the source label along each shortest path.
//
// In warm mode two shortcuts apply. A voxel popped with a cost above its
// previous distance keeps its previous label and distance and does not
// propagate. Once the smallest key is Inf nothing further can be reached,
// so every voxel still queued takes its previous values and the loop ends.
func (p *pass) relax(ctx context.Context) error {
	adaptive := p.mode == Warm
	q := p.queue
	img := p.intensity

	for iter := 0; q.Len() > 0; iter++ {
		if iter&cancelCheckMask == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}

		u, t, err := q.ExtractMin()
		if err != nil {
			return errors.Wrap(err, "relaxation")
		}

		if adaptive {
			if t == Inf {
				p.copyThrough(u)
				p.drain()
				return nil
			}
			if t > p.distPrev[u] {
				p.dist[u] = p.distPrev[u]
				p.lab[u] = p.labPrev[u]
				p.stats.Pruned++
				continue
			}
		}

		p.dist[u] = t
		p.stats.Extracted++
		if p.nbSize[u] == 0 {
			continue
		}

		iu := img[u]
		l := p.lab[u]
		for _, off := range p.offsets {
			v := u + off
			w := iu - img[v]
			if w < 0 {
				w = -w
			}
			tv := t + w
			if tv < p.dist[v] {
				p.dist[v] = tv
				p.lab[v] = l
				if err := q.DecreaseKey(v, tv); err != nil {
					return errors.Wrapf(err, "relaxing voxel %d from %d", v, u)
				}
				p.stats.Relaxed++
			}
		}
	}
	return nil
}

func (p *pass) copyThrough(u int) {
	p.dist[u] = p.distPrev[u]
	p.lab[u] = p.labPrev[u]
	p.stats.CopiedThrough++
}

// drain restores previous values for every voxel still queued, i.e. every
// voxel the new seeds never reached. A linear scan is cheaper than popping
// the remaining Inf keys one by one.
func (p *pass) drain() {
	for u := range p.lab {
		if p.queue.Contains(u) {
			p.copyThrough(u)
		}
	}
}
