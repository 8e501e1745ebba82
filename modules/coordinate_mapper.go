package modules

import (
	"github.com/okieraised/go-selfie-frame/config"
	"github.com/okieraised/go-selfie-frame/logger"
	"github.com/okieraised/go-selfie-frame/utils"
	"github.com/sirupsen/logrus"
)

/*
ComputeCropRegion maps the on-screen guide frame onto the pixels of a captured photo.

The live preview shows the photo center-cropped to fill the screen ("cover" fit), so the axis on
which the photo is relatively longer loses an equal strip on both sides. The frame corner is scaled
into photo pixels and shifted by that strip before the frame size is scaled with the same factor.
Preview modes other than cover are not handled.

Inputs:

  - photo (config.PhotoGeometry): pixel size of the captured photo.
  - screen (config.ScreenGeometry): logical screen size.
  - frame (config.FrameSpec): guide frame in screen units.

Outputs:

  - region (config.CropRegion): crop rectangle, always inside the photo bounds. Zero when any
    input is non-finite or non-positive; empty when the frame lies past the photo edge.
  - clamped (bool): true when the unclamped rectangle overflowed the photo.
*/
func ComputeCropRegion(photo config.PhotoGeometry, screen config.ScreenGeometry, frame config.FrameSpec) (config.CropRegion, bool) {
	if photo.Width <= 0 || photo.Height <= 0 || !utils.IsPositive(screen.Width, screen.Height) {
		return config.CropRegion{}, false
	}
	if !utils.IsFinite(frame.Left, frame.Top, frame.Width, frame.Height) {
		return config.CropRegion{}, false
	}

	photoW, photoH := float64(photo.Width), float64(photo.Height)
	screenAspect := screen.Aspect()
	photoAspect := photo.Aspect()

	var scale, previewCroppedX, previewCroppedY float64
	switch {
	case photoAspect > screenAspect:
		// Height fills the screen, the sides are cut.
		scale = photoH / screen.Height
		effectiveWidth := photoW * (screen.Height / photoH)
		previewCroppedX = (effectiveWidth - screen.Width) / 2 * scale
	case photoAspect < screenAspect:
		// Width fills the screen, top and bottom are cut.
		scale = photoW / screen.Width
		effectiveHeight := photoH * (screen.Width / photoW)
		previewCroppedY = (effectiveHeight - screen.Height) / 2 * scale
	default:
		scale = photoW / screen.Width
	}

	cropX := max(0, utils.FloorInt(frame.Left*scale+previewCroppedX))
	cropY := max(0, utils.FloorInt(frame.Top*scale+previewCroppedY))
	cropW := max(0, utils.FloorInt(frame.Width*scale))
	cropH := max(0, utils.FloorInt(frame.Height*scale))

	region := config.CropRegion{
		X:      min(cropX, photo.Width),
		Y:      min(cropY, photo.Height),
		Width:  utils.Clamp(cropW, 0, max(0, photo.Width-cropX)),
		Height: utils.Clamp(cropH, 0, max(0, photo.Height-cropY)),
	}
	clamped := cropW > photo.Width-cropX || cropH > photo.Height-cropY

	return region, clamped
}

// CoordinateMapper wraps ComputeCropRegion and reports clamped regions to the log.
type CoordinateMapper struct {
	screen config.ScreenGeometry
	frame  config.FrameSpec
	log    *logrus.Entry
}

func NewCoordinateMapper(screen config.ScreenGeometry, frame config.FrameSpec) *CoordinateMapper {
	return &CoordinateMapper{
		screen: screen,
		frame:  frame,
		log:    logger.WithComponent("coordinate_mapper"),
	}
}

// CropRegion returns the frame region of the photo. The region may be empty; callers treat an
// empty region as a failed crop.
func (m *CoordinateMapper) CropRegion(photo config.PhotoGeometry) config.CropRegion {
	region, clamped := ComputeCropRegion(photo, m.screen, m.frame)
	if clamped {
		m.log.WithFields(logger.Fields{
			"crop_x":       region.X,
			"crop_y":       region.Y,
			"crop_width":   region.Width,
			"crop_height":  region.Height,
			"photo_width":  photo.Width,
			"photo_height": photo.Height,
		}).Warn("crop region adjusted to fit photo bounds")
	}
	return region
}
