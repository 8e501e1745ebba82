package modules

import (
	"context"
	"errors"
	"fmt"
	"image"
	"os"
	"sort"

	"github.com/disintegration/imaging"
	pigo "github.com/esimov/pigo/core"
	"github.com/okieraised/go-selfie-frame/cascade"
	"github.com/okieraised/go-selfie-frame/config"
)

// PigoFaceDetector runs the pigo pixel intensity cascade on the CPU. It needs no OpenCV or
// inference server.
type PigoFaceDetector struct {
	classifier  *pigo.Pigo
	ModelParams *config.PigoParams
}

// NewPigoFaceDetector loads the cascade file named in cfg, or the embedded facefinder cascade when
// no path is set.
func NewPigoFaceDetector(cfg *config.PigoParams) (*PigoFaceDetector, error) {
	if cfg == nil {
		cfg = config.DefaultPigoParams
	}
	if cfg.CascadePath == "" {
		return NewPigoFaceDetectorFromCascade(cascade.Facefinder, cfg)
	}

	data, err := os.ReadFile(cfg.CascadePath)
	if err != nil {
		return nil, fmt.Errorf("reading cascade file: %w", err)
	}
	return NewPigoFaceDetectorFromCascade(data, cfg)
}

func NewPigoFaceDetectorFromCascade(data []byte, cfg *config.PigoParams) (*PigoFaceDetector, error) {
	if cfg == nil {
		cfg = config.DefaultPigoParams
	}
	if len(data) == 0 {
		return nil, errors.New("empty cascade")
	}

	classifier, err := pigo.NewPigo().Unpack(data)
	if err != nil {
		return nil, fmt.Errorf("unpacking cascade: %w", err)
	}

	return &PigoFaceDetector{
		classifier:  classifier,
		ModelParams: cfg,
	}, nil
}

// Detect returns the faces found in img, best scoring first. Boxes are relative to the top-left
// corner of img.Bounds().
func (d *PigoFaceDetector) Detect(ctx context.Context, img image.Image) ([]config.BoundingBox, error) {
	if err := checkContext(ctx); err != nil {
		return nil, err
	}
	if img == nil || img.Bounds().Empty() {
		return nil, errors.New("empty image")
	}

	// pigo reads pixels from (0, 0).
	if img.Bounds().Min != (image.Point{}) {
		img = imaging.Clone(img)
	}
	cols, rows := img.Bounds().Dx(), img.Bounds().Dy()

	params := pigo.CascadeParams{
		MinSize:     d.ModelParams.MinSize,
		MaxSize:     min(d.ModelParams.MaxSize, max(cols, rows)),
		ShiftFactor: d.ModelParams.ShiftFactor,
		ScaleFactor: d.ModelParams.ScaleFactor,
		ImageParams: pigo.ImageParams{
			Pixels: pigo.RgbToGrayscale(img),
			Rows:   rows,
			Cols:   cols,
			Dim:    cols,
		},
	}

	dets := d.classifier.RunCascade(params, d.ModelParams.Angle)
	dets = d.classifier.ClusterDetections(dets, d.ModelParams.IoUThreshold)

	if err := checkContext(ctx); err != nil {
		return nil, err
	}
	return pigoDetectionsToBoxes(dets, d.ModelParams.QualityThreshold), nil
}

// pigoDetectionsToBoxes drops weak detections and converts the center/scale squares to boxes.
func pigoDetectionsToBoxes(dets []pigo.Detection, qualityThreshold float32) []config.BoundingBox {
	kept := make([]pigo.Detection, 0, len(dets))
	for _, det := range dets {
		if det.Q >= qualityThreshold && det.Scale > 0 {
			kept = append(kept, det)
		}
	}
	sort.SliceStable(kept, func(i, j int) bool {
		return kept[i].Q > kept[j].Q
	})

	boxes := make([]config.BoundingBox, 0, len(kept))
	for _, det := range kept {
		half := float64(det.Scale) / 2
		boxes = append(boxes, config.BoundingBox{
			X:      float64(det.Col) - half,
			Y:      float64(det.Row) - half,
			Width:  float64(det.Scale),
			Height: float64(det.Scale),
		})
	}
	return boxes
}
