package growcut

import (
	"github.com/pkg/errors"

	"fastgrowcut/pkg/grid"
)

// Failures reported by a Session. Use errors.Cause (or errors.Is) to
// classify an error returned from Run.
var (
	// ErrGeometryTooSmall means an axis has fewer than grid.MinDim voxels.
	// Retrying with the same volume will fail again.
	ErrGeometryTooSmall = grid.ErrTooSmall

	// ErrAllocation means the working fields for the volume could not be
	// allocated. Cached state from earlier runs is left untouched.
	ErrAllocation = errors.New("cannot allocate segmentation fields")

	// ErrUnsupportedElementType means the intensity or seed volume holds a
	// sample type the engine does not handle.
	ErrUnsupportedElementType = errors.New("unsupported element type")

	// ErrInputMismatch means the intensity and seed volumes do not describe
	// the same grid, or a volume's data does not match its dimensions.
	ErrInputMismatch = errors.New("intensity and seed volumes do not match")
)
