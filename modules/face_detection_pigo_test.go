package modules

import (
	"context"
	"image"
	"path/filepath"
	"testing"

	"github.com/disintegration/imaging"
	pigo "github.com/esimov/pigo/core"
	"github.com/okieraised/go-selfie-frame/cascade"
	"github.com/okieraised/go-selfie-frame/config"
	"github.com/stretchr/testify/assert"
)

func newTestPigoDetector(t *testing.T) *PigoFaceDetector {
	t.Helper()
	params := *config.DefaultPigoParams
	params.ShiftFactor = 0.2
	params.IoUThreshold = 0.1
	params.QualityThreshold = 0

	detector, err := NewPigoFaceDetectorFromCascade(cascade.Facefinder, &params)
	assert.NoError(t, err)
	return detector
}

func loadTestFace(t *testing.T) *image.NRGBA {
	t.Helper()
	img, err := imaging.Open(filepath.Join("testdata", "face.jpg"))
	assert.NoError(t, err)
	return imaging.Clone(img)
}

func TestPigoDetectionsToBoxes(t *testing.T) {
	dets := []pigo.Detection{
		{Row: 175, Col: 175, Scale: 200, Q: 8.5},
		{Row: 40, Col: 60, Scale: 30, Q: 2.0},
		{Row: 100, Col: 120, Scale: 80, Q: 12.0},
		{Row: 10, Col: 10, Scale: 0, Q: 50.0},
	}

	boxes := pigoDetectionsToBoxes(dets, 5.0)
	assert.Equal(t, []config.BoundingBox{
		{X: 80, Y: 60, Width: 80, Height: 80},
		{X: 75, Y: 75, Width: 200, Height: 200},
	}, boxes)

	assert.Empty(t, pigoDetectionsToBoxes(nil, 5.0))
}

func TestPigoDetectionsToBoxes_FeedsEvaluator(t *testing.T) {
	boxes := pigoDetectionsToBoxes([]pigo.Detection{{Row: 175, Col: 175, Scale: 200, Q: 9}}, 5.0)

	instruction := Evaluate(FirstFace(boxes), config.NewDetectorFrame(350, 350), config.StrictFitPolicy)
	assert.Equal(t, config.GoodFit, instruction)
}

func TestNewPigoFaceDetector_Errors(t *testing.T) {
	_, err := NewPigoFaceDetectorFromCascade(nil, nil)
	assert.Error(t, err)

	params := *config.DefaultPigoParams
	params.CascadePath = filepath.Join(t.TempDir(), "missing")
	_, err = NewPigoFaceDetector(&params)
	assert.Error(t, err)
}

func TestPigoFaceDetector_Detect(t *testing.T) {
	detector := newTestPigoDetector(t)
	face := loadTestFace(t)

	boxes, err := detector.Detect(context.Background(), face)
	assert.NoError(t, err)
	assert.NotEmpty(t, boxes)

	cx, cy := boxes[0].Center()
	assert.Greater(t, cx, 0.0)
	assert.Less(t, cx, float64(face.Bounds().Dx()))
	assert.Greater(t, cy, 0.0)
	assert.Less(t, cy, float64(face.Bounds().Dy()))
}

func TestPigoFaceDetector_DetectSubImage(t *testing.T) {
	detector := newTestPigoDetector(t)
	face := loadTestFace(t)
	want, err := detector.Detect(context.Background(), face)
	assert.NoError(t, err)

	offset := image.Pt(200, 150)
	canvas := imaging.New(800, 800, image.White.C)
	canvas = imaging.Paste(canvas, face, offset)
	framed := canvas.SubImage(face.Bounds().Add(offset))
	assert.Equal(t, offset, framed.Bounds().Min)

	got, err := detector.Detect(context.Background(), framed)
	assert.NoError(t, err)
	assert.Equal(t, want, got)

	blank := image.NewRGBA(image.Rect(0, 0, 800, 800)).SubImage(image.Rect(200, 200, 550, 550))
	assert.NotPanics(t, func() {
		_, err = detector.Detect(context.Background(), blank)
	})
	assert.NoError(t, err)
}

func TestPigoFaceDetector_EmbeddedCascade(t *testing.T) {
	detector, err := NewPigoFaceDetector(nil)
	assert.NoError(t, err)

	_, err = detector.Detect(context.Background(), image.NewRGBA(image.Rectangle{}))
	assert.Error(t, err)
}
