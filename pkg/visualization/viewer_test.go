package visualization

import (
	"fmt"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"fastgrowcut/internal/models"
)

// createTestLabels builds a label volume whose label equals z+1 on the
// left half of each slice and 0 on the right half
func createTestLabels(width, height, depth int) *models.LabelVolume {
	labels := models.NewVolume[int32](models.NewGeometry(width, height, depth))
	for z := 0; z < depth; z++ {
		for y := 0; y < height; y++ {
			for x := 0; x < width/2; x++ {
				labels.Set(x, y, z, int32(z+1))
			}
		}
	}
	return labels
}

// sameColor compares colors at 8 bits per channel, the precision of the
// rendered slices
func sameColor(a, b color.Color) bool {
	return color.RGBAModel.Convert(a) == color.RGBAModel.Convert(b)
}

// TestLabelColor verifies that colors are stable and distinct per label
func TestLabelColor(t *testing.T) {
	viewer := NewLabelViewer(createTestLabels(4, 4, 3))

	if !sameColor(viewer.LabelColor(0), color.Black) {
		t.Error("Unlabeled voxels should be black")
	}

	seen := make(map[color.Color]int32)
	for l := int32(1); l <= 20; l++ {
		c := viewer.LabelColor(l)
		if !sameColor(c, viewer.LabelColor(l)) {
			t.Errorf("Label %d changed color between calls", l)
		}
		if sameColor(c, color.Black) {
			t.Errorf("Label %d rendered black", l)
		}
		key := color.RGBAModel.Convert(c)
		if prev, dup := seen[key]; dup {
			t.Errorf("Labels %d and %d share a color", prev, l)
		}
		seen[key] = l
	}

	other := NewLabelViewer(createTestLabels(4, 4, 3))
	if !sameColor(viewer.LabelColor(7), other.LabelColor(7)) {
		t.Error("Colors should not depend on the viewer instance")
	}
}

// TestExtractSlice verifies slice dimensions and pixel colors on each axis
func TestExtractSlice(t *testing.T) {
	width, height, depth := 10, 8, 5
	viewer := NewLabelViewer(createTestLabels(width, height, depth))

	for z := 0; z < depth; z++ {
		img, err := viewer.ExtractSlice("z", z)
		if err != nil {
			t.Fatalf("Failed to extract Z slice at position %d: %v", z, err)
		}
		bounds := img.Bounds()
		if bounds.Dx() != width || bounds.Dy() != height {
			t.Errorf("Expected Z slice dimensions %dx%d, got %dx%d",
				width, height, bounds.Dx(), bounds.Dy())
		}
		if !sameColor(img.At(0, height/2), viewer.LabelColor(int32(z+1))) {
			t.Errorf("Z slice %d: left half should show label %d", z, z+1)
		}
		if !sameColor(img.At(width-1, height/2), color.Black) {
			t.Errorf("Z slice %d: right half should be black", z)
		}
	}

	imgX, err := viewer.ExtractSlice("x", 1)
	if err != nil {
		t.Fatalf("Failed to extract X slice: %v", err)
	}
	if b := imgX.Bounds(); b.Dx() != depth || b.Dy() != height {
		t.Errorf("Expected X slice dimensions %dx%d, got %dx%d", depth, height, b.Dx(), b.Dy())
	}
	if !sameColor(imgX.At(3, 0), viewer.LabelColor(4)) {
		t.Error("X slice column 3 should show label 4")
	}

	imgY, err := viewer.ExtractSlice("y", 2)
	if err != nil {
		t.Fatalf("Failed to extract Y slice: %v", err)
	}
	if b := imgY.Bounds(); b.Dx() != width || b.Dy() != depth {
		t.Errorf("Expected Y slice dimensions %dx%d, got %dx%d", width, depth, b.Dx(), b.Dy())
	}

	if _, err := viewer.ExtractSlice("invalid", 0); err == nil {
		t.Error("Expected error for invalid axis, got nil")
	}
	if _, err := viewer.ExtractSlice("z", depth); err == nil {
		t.Error("Expected error for out of bounds position, got nil")
	}
	if _, err := viewer.ExtractSlice("y", -1); err == nil {
		t.Error("Expected error for negative position, got nil")
	}
}

// TestSaveSliceSequence verifies that a sequence of slices can be saved
func TestSaveSliceSequence(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping file I/O test in short mode")
	}

	width, height, depth := 5, 5, 3
	viewer := NewLabelViewer(createTestLabels(width, height, depth))

	outputDir := filepath.Join(t.TempDir(), "slices")
	if err := viewer.SaveSliceSequence("z", outputDir); err != nil {
		t.Fatalf("Failed to save slice sequence: %v", err)
	}

	for z := 0; z < depth; z++ {
		filename := filepath.Join(outputDir, fmt.Sprintf("slice_z_%03d.png", z))
		f, err := os.Open(filename)
		if err != nil {
			t.Errorf("Expected slice file does not exist: %s", filename)
			continue
		}
		img, err := png.Decode(f)
		f.Close()
		if err != nil {
			t.Errorf("Slice %s is not a valid PNG: %v", filename, err)
			continue
		}
		if !sameColor(img.At(0, 0), viewer.LabelColor(int32(z+1))) {
			t.Errorf("Slice %d: unexpected color at origin", z)
		}
	}

	if err := viewer.SaveSliceSequence("invalid", outputDir); err == nil {
		t.Error("Expected error for invalid axis, got nil")
	}
}

func TestPhysicalSlice(t *testing.T) {
	labels := createTestLabels(4, 6, 3)
	labels.Spacing = [3]float64{1, 1, 2.5}
	viewer := NewLabelViewer(labels)

	tests := []struct {
		axis string
		w, h int
	}{
		{"z", 4, 6},
		{"x", 8, 6},
		{"y", 4, 8},
	}
	for _, tt := range tests {
		img, err := viewer.ExtractSlice(tt.axis, 1)
		if err != nil {
			t.Fatalf("ExtractSlice(%s): %v", tt.axis, err)
		}
		scaled, err := viewer.PhysicalSlice(img, tt.axis)
		if err != nil {
			t.Fatalf("PhysicalSlice(%s): %v", tt.axis, err)
		}
		b := scaled.Bounds()
		if b.Dx() != tt.w || b.Dy() != tt.h {
			t.Errorf("axis %s: expected %dx%d, got %dx%d", tt.axis, tt.w, tt.h, b.Dx(), b.Dy())
		}
	}

	img, _ := viewer.ExtractSlice("y", 0)
	scaled, _ := viewer.PhysicalSlice(img, "y")
	// Row 0 of the stretched image still shows z=0, labeled 1 on the left.
	if !sameColor(scaled.At(0, 0), viewer.LabelColor(1)) {
		t.Error("nearest-neighbor stretch changed a label color")
	}

	if _, err := viewer.PhysicalSlice(img, "w"); err == nil {
		t.Error("Expected error for invalid axis, got nil")
	}
}
