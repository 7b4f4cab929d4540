// Package volumeio reads and writes volumes as NumPy .npy arrays.
//
// A volume of Nx*Ny*Nz voxels is stored as a C-ordered array of shape
// (Nz, Ny, Nx), so the flat data order matches models.Volume. Origin and
// spacing live in an optional YAML sidecar next to the array, named
// <file>.geom.yaml.
package volumeio

import (
	"os"
	"strings"

	"github.com/kshedden/gonpy"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"fastgrowcut/internal/models"
)

// ErrUnsupportedDtype is returned for arrays that are not real integer or
// floating point data.
var ErrUnsupportedDtype = errors.New("unsupported npy dtype")

// ErrShape is returned for arrays that are not three dimensional.
var ErrShape = errors.New("npy array is not three dimensional")

// sidecar is the on-disk form of the physical geometry.
type sidecar struct {
	Origin  [3]float64 `yaml:"origin"`
	Spacing [3]float64 `yaml:"spacing"`
}

// SidecarPath returns the geometry sidecar path for an array file.
func SidecarPath(path string) string {
	return path + ".geom.yaml"
}

// Read loads a volume from an .npy file. The result is a *models.Volume
// whose element type follows the array dtype, e.g. *models.Volume[uint16]
// for "<u2".
func Read(path string) (interface{}, error) {
	return read(path, nil)
}

// ReadLike loads a volume like Read, but an array without a sidecar takes
// its origin and spacing from ref. Seed masks painted on an image are
// usually saved without one.
func ReadLike(path string, ref models.Geometry) (interface{}, error) {
	return read(path, &ref)
}

func read(path string, ref *models.Geometry) (interface{}, error) {
	r, err := gonpy.NewFileReader(path)
	if err != nil {
		return nil, errors.Wrapf(err, "opening %s", path)
	}
	geom, err := geometryFromShape(r.Shape, r.ColumnMajor)
	if err != nil {
		return nil, errors.Wrap(err, path)
	}
	found, err := readSidecar(path, &geom)
	if err != nil {
		return nil, err
	}
	if !found && ref != nil {
		geom.Origin = ref.Origin
		geom.Spacing = ref.Spacing
	}

	dtype := strings.TrimLeft(r.Dtype, "<>|=")
	var vol interface{}
	switch dtype {
	case "u1":
		vol, err = wrap(geom)(r.GetUint8())
	case "i1":
		vol, err = wrap(geom)(r.GetInt8())
	case "u2":
		vol, err = wrap(geom)(r.GetUint16())
	case "i2":
		vol, err = wrap(geom)(r.GetInt16())
	case "u4":
		vol, err = wrap(geom)(r.GetUint32())
	case "i4":
		vol, err = wrap(geom)(r.GetInt32())
	case "u8":
		vol, err = wrap(geom)(r.GetUint64())
	case "i8":
		vol, err = wrap(geom)(r.GetInt64())
	case "f4":
		vol, err = wrap(geom)(r.GetFloat32())
	case "f8":
		vol, err = wrap(geom)(r.GetFloat64())
	default:
		return nil, errors.Wrapf(ErrUnsupportedDtype, "%s has dtype %q", path, r.Dtype)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s", path)
	}
	return vol, nil
}

// wrap returns an adapter that turns a typed getter result into a volume.
func wrap(geom models.Geometry) func(data interface{}, err error) (interface{}, error) {
	return func(data interface{}, err error) (interface{}, error) {
		if err != nil {
			return nil, err
		}
		switch d := data.(type) {
		case []uint8:
			return &models.Volume[uint8]{Geometry: geom, Data: d}, nil
		case []int8:
			return &models.Volume[int8]{Geometry: geom, Data: d}, nil
		case []uint16:
			return &models.Volume[uint16]{Geometry: geom, Data: d}, nil
		case []int16:
			return &models.Volume[int16]{Geometry: geom, Data: d}, nil
		case []uint32:
			return &models.Volume[uint32]{Geometry: geom, Data: d}, nil
		case []int32:
			return &models.Volume[int32]{Geometry: geom, Data: d}, nil
		case []uint64:
			return &models.Volume[uint64]{Geometry: geom, Data: d}, nil
		case []int64:
			return &models.Volume[int64]{Geometry: geom, Data: d}, nil
		case []float32:
			return &models.Volume[float32]{Geometry: geom, Data: d}, nil
		case []float64:
			return &models.Volume[float64]{Geometry: geom, Data: d}, nil
		}
		return nil, errors.Errorf("unexpected data type %T", data)
	}
}

func geometryFromShape(shape []int, columnMajor bool) (models.Geometry, error) {
	if len(shape) != 3 {
		return models.Geometry{}, errors.Wrapf(ErrShape, "shape %v", shape)
	}
	if columnMajor {
		return models.NewGeometry(shape[0], shape[1], shape[2]), nil
	}
	return models.NewGeometry(shape[2], shape[1], shape[0]), nil
}

// WriteLabels stores a label volume as an int32 array plus its sidecar.
func WriteLabels(path string, v *models.LabelVolume) error {
	return Write(path, v)
}

// Write stores any supported volume as an .npy array plus its sidecar.
func Write(path string, vol interface{}) error {
	var (
		geom  models.Geometry
		write func(w *gonpy.NpyWriter) error
	)
	switch v := vol.(type) {
	case *models.Volume[uint8]:
		geom, write = v.Geometry, func(w *gonpy.NpyWriter) error { return w.WriteUint8(v.Data) }
	case *models.Volume[int8]:
		geom, write = v.Geometry, func(w *gonpy.NpyWriter) error { return w.WriteInt8(v.Data) }
	case *models.Volume[uint16]:
		geom, write = v.Geometry, func(w *gonpy.NpyWriter) error { return w.WriteUint16(v.Data) }
	case *models.Volume[int16]:
		geom, write = v.Geometry, func(w *gonpy.NpyWriter) error { return w.WriteInt16(v.Data) }
	case *models.Volume[uint32]:
		geom, write = v.Geometry, func(w *gonpy.NpyWriter) error { return w.WriteUint32(v.Data) }
	case *models.Volume[int32]:
		geom, write = v.Geometry, func(w *gonpy.NpyWriter) error { return w.WriteInt32(v.Data) }
	case *models.Volume[float32]:
		geom, write = v.Geometry, func(w *gonpy.NpyWriter) error { return w.WriteFloat32(v.Data) }
	case *models.Volume[float64]:
		geom, write = v.Geometry, func(w *gonpy.NpyWriter) error { return w.WriteFloat64(v.Data) }
	default:
		return errors.Wrapf(ErrUnsupportedDtype, "cannot write %T", vol)
	}

	w, err := gonpy.NewFileWriter(path)
	if err != nil {
		return errors.Wrapf(err, "creating %s", path)
	}
	w.Shape = []int{geom.Dims[2], geom.Dims[1], geom.Dims[0]}
	if err := write(w); err != nil {
		return errors.Wrapf(err, "writing %s", path)
	}
	return writeSidecar(path, geom)
}

// readSidecar fills origin and spacing from the sidecar and reports
// whether one was present.
func readSidecar(path string, geom *models.Geometry) (bool, error) {
	data, err := os.ReadFile(SidecarPath(path))
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, errors.Wrap(err, "reading geometry sidecar")
	}
	var sc sidecar
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return false, errors.Wrapf(err, "parsing %s", SidecarPath(path))
	}
	geom.Origin = sc.Origin
	geom.Spacing = sc.Spacing
	return true, nil
}

func writeSidecar(path string, geom models.Geometry) error {
	data, err := yaml.Marshal(sidecar{Origin: geom.Origin, Spacing: geom.Spacing})
	if err != nil {
		return errors.Wrap(err, "encoding geometry sidecar")
	}
	if err := os.WriteFile(SidecarPath(path), data, 0644); err != nil {
		return errors.Wrap(err, "writing geometry sidecar")
	}
	return nil
}
