package growcut

import (
	"math"
	"strings"
	"testing"
)

func TestSummarize(t *testing.T) {
	lab := []int32{0, 1, 1, 2, 2, 2}
	dist := []float32{Inf, 1, 3, 1, 3, 2}

	st := Stats{Mode: Warm, Voxels: len(lab)}
	st.summarize(lab, dist)

	if st.Labeled != 5 {
		t.Errorf("Expected 5 labeled voxels, got %d", st.Labeled)
	}
	if st.LabelCounts[1] != 2 || st.LabelCounts[2] != 3 {
		t.Errorf("Unexpected label counts %v", st.LabelCounts)
	}
	if math.Abs(st.MeanDistance-2) > 1e-9 {
		t.Errorf("Expected mean 2, got %g", st.MeanDistance)
	}
	// sample standard deviation of {1,3,1,3,2}
	if math.Abs(st.StdDevDistance-1) > 1e-9 {
		t.Errorf("Expected standard deviation 1, got %g", st.StdDevDistance)
	}
	if st.MaxDistance != 3 {
		t.Errorf("Expected max 3, got %g", st.MaxDistance)
	}

	labels := st.Labels()
	if len(labels) != 2 || labels[0] != 1 || labels[1] != 2 {
		t.Errorf("Expected labels [1 2], got %v", labels)
	}
	if s := st.String(); !strings.HasPrefix(s, "warm pass over 6 voxels") {
		t.Errorf("Unexpected summary %q", s)
	}
}

func TestSummarizeSingleDistance(t *testing.T) {
	st := Stats{}
	st.summarize([]int32{7, 0}, []float32{Epsilon, Inf})
	if st.StdDevDistance != 0 {
		t.Errorf("Expected zero spread for one sample, got %g", st.StdDevDistance)
	}
	if float32(st.MeanDistance) != Epsilon {
		t.Errorf("Expected mean %g, got %g", Epsilon, st.MeanDistance)
	}
}
