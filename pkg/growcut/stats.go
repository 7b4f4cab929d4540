package growcut

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/dustin/go-humanize"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Stats summarises one segmentation pass.
type Stats struct {
	// Mode is the initialisation used for the pass
	Mode Mode

	// Voxels is the size of the grid
	Voxels int

	// Seeds counts voxels that started at Epsilon
	Seeds int

	// Extracted counts voxels finalised by the relaxation loop
	Extracted int

	// Relaxed counts successful decrease-key operations
	Relaxed int

	// Pruned counts warm-mode voxels that kept their previous result
	// because the new cost was higher
	Pruned int

	// CopiedThrough counts warm-mode voxels restored after the queue ran
	// out of finite keys
	CopiedThrough int

	// Labeled counts voxels with a nonzero label after the pass
	Labeled int

	// LabelCounts maps each label to its voxel count
	LabelCounts map[int32]int

	// MeanDistance and StdDevDistance describe the finite distances
	MeanDistance   float64
	StdDevDistance float64

	// MaxDistance is the largest finite distance
	MaxDistance float64

	// Duration is the wall time spent in the pass
	Duration time.Duration
}

// summarize fills the field-derived statistics from a finished pass.
func (st *Stats) summarize(lab []int32, dist []float32) {
	st.LabelCounts = make(map[int32]int)
	finite := make([]float64, 0, len(dist))
	for i, d := range dist {
		if l := lab[i]; l != 0 {
			st.LabelCounts[l]++
			st.Labeled++
		}
		if !math.IsInf(float64(d), 1) {
			finite = append(finite, float64(d))
		}
	}
	if len(finite) == 0 {
		return
	}
	st.MeanDistance, st.StdDevDistance = stat.MeanStdDev(finite, nil)
	if len(finite) == 1 {
		st.StdDevDistance = 0
	}
	st.MaxDistance = floats.Max(finite)
}

// Labels returns the labels present after the pass in ascending order.
func (st *Stats) Labels() []int32 {
	labels := make([]int32, 0, len(st.LabelCounts))
	for l := range st.LabelCounts {
		labels = append(labels, l)
	}
	sort.Slice(labels, func(i, j int) bool { return labels[i] < labels[j] })
	return labels
}

func (st Stats) String() string {
	return fmt.Sprintf("%s pass over %s voxels in %s: %s seeds, %s extracted, %s relaxed, %s pruned, %s copied, %s labeled in %d labels, distance mean %.3f sd %.3f max %.3f",
		st.Mode, humanize.Comma(int64(st.Voxels)), st.Duration,
		humanize.Comma(int64(st.Seeds)), humanize.Comma(int64(st.Extracted)),
		humanize.Comma(int64(st.Relaxed)), humanize.Comma(int64(st.Pruned)),
		humanize.Comma(int64(st.CopiedThrough)), humanize.Comma(int64(st.Labeled)),
		len(st.LabelCounts), st.MeanDistance, st.StdDevDistance, st.MaxDistance)
}
