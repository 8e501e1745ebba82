package config

import (
	"image"
	"math"

	"gorgonia.org/tensor"
)

type FaceDetectionOutput struct {
	Box   *tensor.Dense
	Score *tensor.Dense
}

type Size struct {
	Width  int `json:"width" validate:"gt=0"`
	Height int `json:"height" validate:"gt=0"`
}

func (s *Size) Max() int {
	if s.Height > s.Width {
		return s.Height
	}
	return s.Width
}

func (s *Size) Min() int {
	if s.Height < s.Width {
		return s.Height
	}
	return s.Width
}

// ScreenGeometry is the logical display size in device-independent units.
type ScreenGeometry struct {
	Width  float64 `json:"width" validate:"gt=0"`
	Height float64 `json:"height" validate:"gt=0"`
}

// Aspect returns width / height.
func (s ScreenGeometry) Aspect() float64 {
	return s.Width / s.Height
}

// FrameSpec is the guide frame size and its top-left position.
//
// A frame built by NewCenteredFrame lives in screen units, one built by NewDetectorFrame lives in
// detector pixel units. The two are not interchangeable.
type FrameSpec struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Left   float64 `json:"left"`
	Top    float64 `json:"top"`
}

// NewCenteredFrame places a width x height frame in the middle of the screen.
func NewCenteredFrame(screen ScreenGeometry, width, height float64) FrameSpec {
	return FrameSpec{
		Width:  width,
		Height: height,
		Left:   (screen.Width - width) / 2,
		Top:    (screen.Height - height) / 2,
	}
}

// NewDetectorFrame returns a frame anchored at the detector origin.
func NewDetectorFrame(width, height float64) FrameSpec {
	return FrameSpec{
		Width:  width,
		Height: height,
	}
}

// Area returns width * height.
func (f FrameSpec) Area() float64 {
	return f.Width * f.Height
}

// PhotoGeometry is the pixel size of a captured photo.
type PhotoGeometry struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

func NewPhotoGeometry(img image.Image) PhotoGeometry {
	b := img.Bounds()
	return PhotoGeometry{
		Width:  b.Dx(),
		Height: b.Dy(),
	}
}

// Aspect returns width / height.
func (p PhotoGeometry) Aspect() float64 {
	return float64(p.Width) / float64(p.Height)
}

// BoundingBox is a detected face in detector space. Missing fields are NaN.
type BoundingBox struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// BoundingBoxFromCorners converts a x1, y1, x2, y2 box.
func BoundingBoxFromCorners(x1, y1, x2, y2 float64) BoundingBox {
	return BoundingBox{
		X:      x1,
		Y:      y1,
		Width:  x2 - x1,
		Height: y2 - y1,
	}
}

// BoundingBoxFromTensor reads a x1, y1, x2, y2 detector box. Coordinates the tensor does not carry
// come back as NaN so the box reports itself incomplete.
func BoundingBoxFromTensor(t *tensor.Dense) BoundingBox {
	corners := [4]float64{math.NaN(), math.NaN(), math.NaN(), math.NaN()}
	if t != nil {
		for i, v := range t.Float32s() {
			if i >= len(corners) {
				break
			}
			corners[i] = float64(v)
		}
	}
	return BoundingBoxFromCorners(corners[0], corners[1], corners[2], corners[3])
}

// IsComplete reports whether all four fields hold finite values.
func (b BoundingBox) IsComplete() bool {
	for _, v := range [4]float64{b.X, b.Y, b.Width, b.Height} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func (b BoundingBox) Center() (float64, float64) {
	return b.X + b.Width/2, b.Y + b.Height/2
}

func (b BoundingBox) Area() float64 {
	return b.Width * b.Height
}

// CropRegion is a pixel rectangle inside a photo.
type CropRegion struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

func (r CropRegion) Rect() image.Rectangle {
	return image.Rect(r.X, r.Y, r.X+r.Width, r.Y+r.Height)
}

// IsEmpty reports a region that cannot produce a usable crop.
func (r CropRegion) IsEmpty() bool {
	return r.Width <= 0 || r.Height <= 0
}

// Within reports whether the region lies inside the photo bounds.
func (r CropRegion) Within(photo PhotoGeometry) bool {
	return r.X >= 0 && r.Y >= 0 && r.X+r.Width <= photo.Width && r.Y+r.Height <= photo.Height
}
