package visualization

import (
	"fmt"
	"image"
	"image/color"
	"math"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"
	colorful "github.com/lucasb-eyer/go-colorful"

	"fastgrowcut/internal/models"
)

// goldenAngle spreads consecutive labels around the hue circle.
const goldenAngle = 137.50776405003785

// LabelViewer extracts axis-aligned slices from a label volume and renders
// them as color images, one color per label and black for unlabeled.
type LabelViewer struct {
	labels  *models.LabelVolume
	palette map[int32]color.Color
}

// NewLabelViewer creates a viewer for the given label volume
func NewLabelViewer(labels *models.LabelVolume) *LabelViewer {
	return &LabelViewer{
		labels:  labels,
		palette: make(map[int32]color.Color),
	}
}

// LabelColor returns the display color of a label. Colors depend only on
// the label value, so the same label looks the same across runs.
func (v *LabelViewer) LabelColor(label int32) color.Color {
	if label == 0 {
		return color.Black
	}
	if c, ok := v.palette[label]; ok {
		return c
	}
	hue := math.Mod(float64(label)*goldenAngle, 360)
	if hue < 0 {
		hue += 360
	}
	c := colorful.Hsv(hue, 0.65, 0.95).Clamped()
	v.palette[label] = c
	return c
}

// ExtractSlice extracts a 2D slice from the label volume along the specified axis
func (v *LabelViewer) ExtractSlice(axis string, position int) (image.Image, error) {
	if position < 0 {
		return nil, fmt.Errorf("position must be non-negative")
	}

	nx, ny, nz := v.labels.Dims[0], v.labels.Dims[1], v.labels.Dims[2]
	var (
		img  *image.RGBA
		at   func(i, j int) int32
		w, h int
	)

	switch axis {
	case "x", "X":
		// YZ plane
		if position >= nx {
			return nil, fmt.Errorf("position %d exceeds width %d", position, nx)
		}
		w, h = nz, ny
		at = func(i, j int) int32 { return v.labels.At(position, j, i) }

	case "y", "Y":
		// XZ plane
		if position >= ny {
			return nil, fmt.Errorf("position %d exceeds height %d", position, ny)
		}
		w, h = nx, nz
		at = func(i, j int) int32 { return v.labels.At(i, position, j) }

	case "z", "Z":
		// XY plane
		if position >= nz {
			return nil, fmt.Errorf("position %d exceeds depth %d", position, nz)
		}
		w, h = nx, ny
		at = func(i, j int) int32 { return v.labels.At(i, j, position) }

	default:
		return nil, fmt.Errorf("invalid axis: %s (must be x, y, or z)", axis)
	}

	img = image.NewRGBA(image.Rect(0, 0, w, h))
	for j := 0; j < h; j++ {
		for i := 0; i < w; i++ {
			img.Set(i, j, v.LabelColor(at(i, j)))
		}
	}
	return img, nil
}

// SaveSlice saves an extracted slice; the format follows the file extension.
func (v *LabelViewer) SaveSlice(img image.Image, filename string) error {
	return imaging.Save(img, filename)
}

// PhysicalSlice stretches a slice extracted along axis so that one pixel
// covers the same physical length in both directions. Nearest-neighbor
// sampling keeps label colors exact.
func (v *LabelViewer) PhysicalSlice(img image.Image, axis string) (image.Image, error) {
	sp := v.labels.Spacing
	var sw, sh float64
	switch axis {
	case "x", "X":
		sw, sh = sp[2], sp[1]
	case "y", "Y":
		sw, sh = sp[0], sp[2]
	case "z", "Z":
		sw, sh = sp[0], sp[1]
	default:
		return nil, fmt.Errorf("invalid axis: %s (must be x, y, or z)", axis)
	}
	if sw <= 0 || sh <= 0 || sw == sh {
		return img, nil
	}

	unit := math.Min(sw, sh)
	b := img.Bounds()
	w := int(math.Round(float64(b.Dx()) * sw / unit))
	h := int(math.Round(float64(b.Dy()) * sh / unit))
	return imaging.Resize(img, w, h, imaging.NearestNeighbor), nil
}

// SaveSliceSequence extracts and saves every slice along the specified axis
func (v *LabelViewer) SaveSliceSequence(axis string, outputDir string) error {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return err
	}

	var maxPos int
	switch axis {
	case "x", "X":
		maxPos = v.labels.Dims[0]
	case "y", "Y":
		maxPos = v.labels.Dims[1]
	case "z", "Z":
		maxPos = v.labels.Dims[2]
	default:
		return fmt.Errorf("invalid axis: %s (must be x, y, or z)", axis)
	}

	for pos := 0; pos < maxPos; pos++ {
		img, err := v.ExtractSlice(axis, pos)
		if err != nil {
			return err
		}
		if img, err = v.PhysicalSlice(img, axis); err != nil {
			return err
		}

		filename := filepath.Join(outputDir, fmt.Sprintf("slice_%s_%03d.png", axis, pos))
		if err := v.SaveSlice(img, filename); err != nil {
			return err
		}
	}

	return nil
}
