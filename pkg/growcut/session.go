// Package growcut implements interactive seeded segmentation of 3D images.
//
// Every voxel takes the label of the seed it can reach along the path with
// the smallest accumulated intensity difference. The computation is a
// multi-source Dijkstra over the 26-connected voxel grid. A Session keeps
// the label and distance fields of its last run so that small seed edits
// can be resolved incrementally instead of from scratch.
package growcut

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"

	"fastgrowcut/internal/models"
	"fastgrowcut/pkg/grid"
	"fastgrowcut/pkg/logging"
	"fastgrowcut/pkg/pqueue"
)

// Options tunes a Session.
type Options struct {
	// GeometryTolerance is the largest origin or spacing difference, in mm,
	// still treated as the same geometry
	GeometryTolerance float64

	// MaxVoxels caps the grid size a session will allocate for
	MaxVoxels int
}

// DefaultOptions returns the options used by NewSession when none are given.
func DefaultOptions() Options {
	return Options{
		GeometryTolerance: 1e-6,
		MaxVoxels:         512 * 512 * 512,
	}
}

// Session is one segmentation session on one image. It owns the cached
// fields of the previous run and is not safe for concurrent use.
type Session struct {
	opts Options

	geom   models.Geometry
	grid   *grid.Grid
	nbSize []uint8

	// result of the last successful run
	labPrev  []int32
	distPrev []float32

	// working fields, swapped with the previous ones after each run
	lab  []int32
	dist []float32

	initialized bool
	stats       Stats
}

// NewSession creates an empty session.
func NewSession(opts Options) *Session {
	def := DefaultOptions()
	if opts.GeometryTolerance <= 0 {
		opts.GeometryTolerance = def.GeometryTolerance
	}
	if opts.MaxVoxels <= 0 {
		opts.MaxVoxels = def.MaxVoxels
	}
	if opts.MaxVoxels > math.MaxInt32 {
		opts.MaxVoxels = math.MaxInt32
	}
	return &Session{opts: opts}
}

// IsInitialized reports whether the next run on the same geometry can
// reuse the previous result.
func (s *Session) IsInitialized() bool {
	return s.initialized
}

// Reset drops all cached state so the next run is a cold pass.
func (s *Session) Reset() {
	s.geom = models.Geometry{}
	s.grid = nil
	s.nbSize = nil
	s.labPrev = nil
	s.distPrev = nil
	s.lab = nil
	s.dist = nil
	s.initialized = false
}

// Geometry returns the geometry of the cached state.
func (s *Session) Geometry() models.Geometry {
	return s.geom
}

// LastStats returns statistics for the most recent successful run.
func (s *Session) LastStats() Stats {
	return s.stats
}

// Distances returns a copy of the distance field of the last successful
// run, or nil if there is none.
func (s *Session) Distances() []float32 {
	if !s.initialized {
		return nil
	}
	out := make([]float32, len(s.distPrev))
	copy(out, s.distPrev)
	return out
}

// Run segments intensity using the given seeds. See RunContext.
func (s *Session) Run(intensity, seed interface{}) (*models.LabelVolume, error) {
	return s.RunContext(context.Background(), intensity, seed)
}

// RunContext segments intensity using the given seeds and returns the
// label volume. intensity must be a *models.Volume of a Sample type and
// seed a *models.Volume of a Label type; anything else fails with
// ErrUnsupportedElementType before any work is done.
//
// A cancelled context stops the pass and leaves the cached result of the
// previous run in place.
func (s *Session) RunContext(ctx context.Context, intensity, seed interface{}) (*models.LabelVolume, error) {
	labels, err := normalizeSeed(seed)
	if err != nil {
		return nil, err
	}
	switch img := intensity.(type) {
	case *models.Volume[uint8]:
		return Segment(ctx, s, img, labels)
	case *models.Volume[int8]:
		return Segment(ctx, s, img, labels)
	case *models.Volume[uint16]:
		return Segment(ctx, s, img, labels)
	case *models.Volume[int16]:
		return Segment(ctx, s, img, labels)
	case *models.Volume[uint32]:
		return Segment(ctx, s, img, labels)
	case *models.Volume[int32]:
		return Segment(ctx, s, img, labels)
	case *models.Volume[float32]:
		return Segment(ctx, s, img, labels)
	case *models.Volume[float64]:
		return Segment(ctx, s, img, labels)
	default:
		return nil, errors.Wrapf(ErrUnsupportedElementType, "intensity volume of type %T", intensity)
	}
}

// normalizeSeed converts any supported seed volume to int32 labels.
func normalizeSeed(seed interface{}) (*models.LabelVolume, error) {
	var (
		labels *models.LabelVolume
		err    error
	)
	switch v := seed.(type) {
	case *models.LabelVolume:
		return v, nil
	case *models.Volume[uint8]:
		labels, err = models.NormalizeLabels(v)
	case *models.Volume[int8]:
		labels, err = models.NormalizeLabels(v)
	case *models.Volume[uint16]:
		labels, err = models.NormalizeLabels(v)
	case *models.Volume[int16]:
		labels, err = models.NormalizeLabels(v)
	case *models.Volume[uint32]:
		labels, err = models.NormalizeLabels(v)
	case *models.Volume[int64]:
		labels, err = models.NormalizeLabels(v)
	case *models.Volume[uint64]:
		labels, err = models.NormalizeLabels(v)
	default:
		return nil, errors.Wrapf(ErrUnsupportedElementType, "seed volume of type %T", seed)
	}
	if err != nil {
		return nil, errors.Wrap(ErrUnsupportedElementType, err.Error())
	}
	return labels, nil
}

// Segment is the typed entry point behind RunContext.
func Segment[T models.Sample](ctx context.Context, s *Session, intensity *models.Volume[T], seed *models.LabelVolume) (*models.LabelVolume, error) {
	if intensity == nil || seed == nil {
		return nil, errors.Wrap(ErrInputMismatch, "nil volume")
	}
	if err := intensity.Validate(); err != nil {
		return nil, errors.Wrapf(ErrInputMismatch, "intensity: %v", err)
	}
	if err := seed.Validate(); err != nil {
		return nil, errors.Wrapf(ErrInputMismatch, "seed: %v", err)
	}
	if !intensity.Equal(seed.Geometry, s.opts.GeometryTolerance) {
		return nil, errors.Wrapf(ErrInputMismatch, "intensity is %s, seed is %s", intensity.Geometry, seed.Geometry)
	}

	g, err := grid.New(intensity.Dims)
	if err != nil {
		return nil, err
	}
	n := g.Len()
	if n > s.opts.MaxVoxels {
		return nil, errors.Wrapf(ErrAllocation, "%s voxels exceed the limit of %s",
			humanize.Comma(int64(n)), humanize.Comma(int64(s.opts.MaxVoxels)))
	}

	start := time.Now()
	img, err := widen(intensity.Data)
	if err != nil {
		return nil, err
	}
	queue, err := newQueue(n)
	if err != nil {
		return nil, err
	}
	if err := s.prepare(g, intensity.Geometry); err != nil {
		return nil, err
	}

	mode := Cold
	if s.initialized {
		mode = Warm
	}

	st := Stats{Mode: mode, Voxels: n}
	p := &pass{
		mode:      mode,
		intensity: img,
		seed:      seed.Data,
		nbSize:    s.nbSize,
		offsets:   g.NeighborOffsets(),
		lab:       s.lab,
		dist:      s.dist,
		labPrev:   s.labPrev,
		distPrev:  s.distPrev,
		queue:     queue,
		stats:     &st,
	}
	if err := p.initialize(); err != nil {
		return nil, err
	}
	if err := p.relax(ctx); err != nil {
		logging.Warningf("Segmentation pass aborted: %v", err)
		return nil, err
	}

	// The working fields become the cached result; the old cached fields
	// are reused as working space next time.
	s.lab, s.labPrev = s.labPrev, s.lab
	s.dist, s.distPrev = s.distPrev, s.dist
	s.initialized = true

	st.Duration = time.Since(start)
	st.summarize(s.labPrev, s.distPrev)
	s.stats = st
	logging.Debugf("%s", st)

	out := &models.LabelVolume{Geometry: intensity.Geometry, Data: make([]int32, n)}
	copy(out.Data, s.labPrev)
	return out, nil
}

// prepare makes sure the cached fields match the geometry of the image.
// A changed geometry discards the previous result. Nothing is modified
// unless every allocation succeeds.
func (s *Session) prepare(g *grid.Grid, geom models.Geometry) error {
	if s.grid != nil && s.geom.Equal(geom, s.opts.GeometryTolerance) {
		return nil
	}

	n := g.Len()
	var (
		nbSize   []uint8
		labPrev  []int32
		distPrev []float32
		lab      []int32
		dist     []float32
	)
	err := allocate(n, func() {
		nbSize = g.NeighborSizes()
		labPrev = make([]int32, n)
		distPrev = make([]float32, n)
		lab = make([]int32, n)
		dist = make([]float32, n)
	})
	if err != nil {
		return err
	}

	if s.grid != nil {
		logging.Infof("Geometry changed from %s to %s, discarding previous segmentation", s.geom, geom)
	}
	logging.Debugf("Allocated %s of segmentation fields for %s voxels",
		humanize.Bytes(uint64(n)*17), humanize.Comma(int64(n)))

	s.Reset()
	s.grid = g
	s.geom = geom
	s.nbSize = nbSize
	s.labPrev, s.distPrev = labPrev, distPrev
	s.lab, s.dist = lab, dist
	return nil
}

func widen[T models.Sample](data []T) (out []float32, err error) {
	err = allocate(len(data), func() {
		out = make([]float32, len(data))
	})
	if err != nil {
		return nil, err
	}
	for i, v := range data {
		out[i] = float32(v)
	}
	return out, nil
}

func newQueue(n int) (q *pqueue.Queue, err error) {
	err = allocate(n, func() {
		q = pqueue.New(n)
	})
	return q, err
}

// allocate runs fn and turns a runtime allocation panic into ErrAllocation.
func allocate(n int, fn func()) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.Wrapf(ErrAllocation, "%d voxels: %v", n, r)
		}
	}()
	fn()
	return nil
}

// String describes the session state.
func (s *Session) String() string {
	if s.grid == nil {
		return "empty session"
	}
	return fmt.Sprintf("session on %s (initialized=%t)", s.geom, s.initialized)
}
