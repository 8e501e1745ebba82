package modules

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
	"github.com/okieraised/go-selfie-frame/config"
	"github.com/okieraised/go-selfie-frame/utils"
	"gocv.io/x/gocv"
)

const cropFileExt = ".jpg"

func newCropPath(outputDir string) (string, error) {
	if outputDir == "" {
		outputDir = os.TempDir()
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return "", fmt.Errorf("creating crop directory: %w", err)
	}
	return filepath.Join(outputDir, "crop-"+uuid.NewString()+cropFileExt), nil
}

func checkRegion(region config.CropRegion, photo config.PhotoGeometry) error {
	if region.IsEmpty() {
		return fmt.Errorf("empty crop region %+v", region)
	}
	if !region.Within(photo) {
		return fmt.Errorf("crop region %+v outside %dx%d photo", region, photo.Width, photo.Height)
	}
	return nil
}

// MatCropper crops with OpenCV and writes JPEG files into OutputDir.
type MatCropper struct {
	OutputDir   string
	JPEGQuality int
}

func NewMatCropper(outputDir string, jpegQuality int) *MatCropper {
	return &MatCropper{
		OutputDir:   outputDir,
		JPEGQuality: jpegQuality,
	}
}

func (c *MatCropper) Crop(ctx context.Context, srcPath string, region config.CropRegion) (string, error) {
	if err := checkContext(ctx); err != nil {
		return "", err
	}

	img := gocv.IMRead(srcPath, gocv.IMReadColor)
	defer img.Close()
	if img.Empty() {
		return "", fmt.Errorf("cannot read image %s", srcPath)
	}

	if err := checkRegion(region, config.PhotoGeometry{Width: img.Cols(), Height: img.Rows()}); err != nil {
		return "", err
	}

	roi := img.Region(region.Rect())
	defer roi.Close()
	cropped := roi.Clone()
	defer cropped.Close()

	outPath, err := newCropPath(c.OutputDir)
	if err != nil {
		return "", err
	}
	if err := utils.SaveMat(outPath, c.JPEGQuality, cropped); err != nil {
		return "", fmt.Errorf("writing crop: %w", err)
	}
	return outPath, nil
}

// ImagingCropper crops in pure Go. EXIF orientation is applied before cropping so that the
// region matches the photo as it was previewed.
type ImagingCropper struct {
	OutputDir   string
	JPEGQuality int
}

func NewImagingCropper(outputDir string, jpegQuality int) *ImagingCropper {
	return &ImagingCropper{
		OutputDir:   outputDir,
		JPEGQuality: jpegQuality,
	}
}

func (c *ImagingCropper) Crop(ctx context.Context, srcPath string, region config.CropRegion) (string, error) {
	if err := checkContext(ctx); err != nil {
		return "", err
	}

	src, err := imaging.Open(srcPath, imaging.AutoOrientation(true))
	if err != nil {
		return "", fmt.Errorf("opening image: %w", err)
	}

	if err := checkRegion(region, config.NewPhotoGeometry(src)); err != nil {
		return "", err
	}

	cropped := imaging.Crop(src, region.Rect().Add(src.Bounds().Min))

	outPath, err := newCropPath(c.OutputDir)
	if err != nil {
		return "", err
	}
	if err := imaging.Save(cropped, outPath, imaging.JPEGQuality(c.JPEGQuality)); err != nil {
		return "", fmt.Errorf("writing crop: %w", err)
	}
	return outPath, nil
}
