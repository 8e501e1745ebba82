package modules

import (
	"context"
	"errors"
	"fmt"
	"image"

	"github.com/disintegration/imaging"
	"github.com/okieraised/go-selfie-frame/config"
)

// FaceDetector finds faces in a frame. Boxes are in the frame's pixel space.
type FaceDetector interface {
	Detect(ctx context.Context, img image.Image) ([]config.BoundingBox, error)
}

// ImageCropper writes the region of srcPath to a new file and returns its path.
type ImageCropper interface {
	Crop(ctx context.Context, srcPath string, region config.CropRegion) (string, error)
}

// GalleryWriter persists an image into a named album and returns where it was stored.
type GalleryWriter interface {
	Save(ctx context.Context, srcPath, album string) (string, error)
}

// StorageAccess is implemented by gallery writers that need a separate storage grant.
type StorageAccess interface {
	StoragePermission(ctx context.Context) (bool, error)
}

// Photo is a single captured still.
type Photo struct {
	Path     string
	Geometry config.PhotoGeometry
}

// Camera grants access and takes stills.
type Camera interface {
	Permission(ctx context.Context) (bool, error)
	TakePhoto(ctx context.Context) (Photo, error)
}

// Display receives user-facing text.
type Display interface {
	Show(text string)
}

// FileCamera serves an existing image file as the captured photo.
type FileCamera struct {
	Path string
}

func NewFileCamera(fPath string) *FileCamera {
	return &FileCamera{Path: fPath}
}

func (c *FileCamera) Permission(ctx context.Context) (bool, error) {
	return c.Path != "", checkContext(ctx)
}

func (c *FileCamera) TakePhoto(ctx context.Context) (Photo, error) {
	if err := checkContext(ctx); err != nil {
		return Photo{}, err
	}
	if c.Path == "" {
		return Photo{}, errors.New("no photo source configured")
	}

	img, err := imaging.Open(c.Path, imaging.AutoOrientation(true))
	if err != nil {
		return Photo{}, fmt.Errorf("opening photo: %w", err)
	}
	return Photo{
		Path:     c.Path,
		Geometry: config.NewPhotoGeometry(img),
	}, nil
}

func checkContext(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		return nil
	}
}
