package go_selfie_frame

import (
	"context"
	"errors"
	"fmt"
	"image"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okieraised/go-selfie-frame/config"
	"github.com/okieraised/go-selfie-frame/logger"
	"github.com/okieraised/go-selfie-frame/modules"
	"github.com/sirupsen/logrus"
)

const (
	msgCapturing        = "Capturing..."
	msgProcessing       = "Processing..."
	msgSaving           = "Saving to gallery..."
	msgSaved            = "Photo saved!"
	msgPermissionDenied = "Camera permission denied"
	msgStorageDenied    = "Storage permission denied"
	msgNoCameraDevice   = "No front camera device found"
)

// SelfieFramePipeline guides the user into the frame and captures the framed crop.
type SelfieFramePipeline struct {
	Params    *config.PipelineParams
	camera    modules.Camera
	detector  modules.FaceDetector
	cropper   modules.ImageCropper
	gallery   modules.GalleryWriter
	display   modules.Display
	mapper    *modules.CoordinateMapper
	evaluator *modules.FitEvaluator
	busy      atomic.Bool
	stateMu   sync.Mutex
	timerMu   sync.Mutex
	timer     *time.Timer
	log       *logrus.Entry
}

// NewSelfieFramePipeline initializes a new pipeline. A nil camera is allowed; capture then fails
// with ErrNoCameraDevice.
func NewSelfieFramePipeline(
	params *config.PipelineParams,
	camera modules.Camera,
	detector modules.FaceDetector,
	cropper modules.ImageCropper,
	gallery modules.GalleryWriter,
	display modules.Display,
) (*SelfieFramePipeline, error) {
	if params == nil {
		params = config.DefaultPipelineParams
	}
	if err := params.Validate(); err != nil {
		return nil, fmt.Errorf("invalid pipeline params: %w", err)
	}
	if detector == nil || cropper == nil || gallery == nil || display == nil {
		return nil, errors.New("detector, cropper, gallery and display are required")
	}

	policy := params.Policy
	return &SelfieFramePipeline{
		Params:    params,
		camera:    camera,
		detector:  detector,
		cropper:   cropper,
		gallery:   gallery,
		display:   display,
		mapper:    modules.NewCoordinateMapper(params.Screen, params.ScreenFrame()),
		evaluator: modules.NewFitEvaluator(params.DetectorFrameSpec(), &policy),
		log:       logger.WithComponent("pipeline"),
	}, nil
}

/*
RequestPermissions asks the camera for access, then the gallery when it implements
modules.StorageAccess.

Inputs:

  - ctx (context.Context): cancels the request.

Outputs:

  - error: ErrNoCameraDevice without a camera, ErrPermissionDenied when camera or storage access
    is refused.
*/
func (p *SelfieFramePipeline) RequestPermissions(ctx context.Context) error {
	if p.camera == nil {
		p.display.Show(msgNoCameraDevice)
		return ErrNoCameraDevice
	}

	granted, err := p.camera.Permission(ctx)
	if err != nil {
		p.log.WithError(err).Error("requesting permissions")
		p.display.Show("Permission error: " + err.Error())
		return fmt.Errorf("%w: %w", ErrPermissionDenied, err)
	}
	if !granted {
		p.display.Show(msgPermissionDenied)
		return ErrPermissionDenied
	}

	if storage, ok := p.gallery.(modules.StorageAccess); ok {
		granted, err = storage.StoragePermission(ctx)
		if err != nil {
			p.log.WithError(err).Error("requesting storage permission")
			p.display.Show("Permission error: " + err.Error())
			return fmt.Errorf("%w: %w", ErrPermissionDenied, err)
		}
		if !granted {
			p.display.Show(msgStorageDenied)
			return fmt.Errorf("%w: storage", ErrPermissionDenied)
		}
	}

	p.display.Show(config.Idle.String())
	return nil
}

/*
ProcessFrame runs face detection on a preview frame and updates the display when the
instruction changes. Detector failures yield config.DetectionError together with the error;
the caller keeps feeding frames.

Inputs:

  - ctx (context.Context): cancels detection.
  - img (image.Image): preview frame in detector pixel space.

Outputs:

  - instruction (config.Instruction): guidance for this frame.
*/
func (p *SelfieFramePipeline) ProcessFrame(ctx context.Context, img image.Image) (config.Instruction, error) {
	faces, err := p.detector.Detect(ctx, img)
	if err != nil {
		p.log.WithError(err).Warn("face detection failed")
		p.stateMu.Lock()
		p.emit(config.DetectionError, p.evaluator.Record(config.DetectionError))
		p.stateMu.Unlock()
		return config.DetectionError, fmt.Errorf("detecting faces: %w", err)
	}

	p.stateMu.Lock()
	defer p.stateMu.Unlock()

	instruction, changed := p.evaluator.Observe(faces)
	p.emit(instruction, changed)
	return instruction, nil
}

// emit shows a changed instruction unless a capture owns the display. Callers hold stateMu.
func (p *SelfieFramePipeline) emit(instruction config.Instruction, changed bool) {
	if !changed || p.busy.Load() {
		return
	}
	p.log.WithField("instruction", instruction.String()).Debug("instruction changed")
	p.display.Show(instruction.String())
}

/*
CapturePhoto takes a photo, crops it to the guide frame and saves the crop into the album.
Only one capture runs at a time. The display returns to the idle prompt ResetDelay after the
capture ends, successful or not.

Inputs:

  - ctx (context.Context): cancels the capture.

Outputs:

  - savedPath (string): location of the saved crop.
*/
func (p *SelfieFramePipeline) CapturePhoto(ctx context.Context) (string, error) {
	if p.camera == nil {
		p.display.Show(msgNoCameraDevice)
		return "", ErrNoCameraDevice
	}
	if !p.acquire() {
		p.log.Debug("already saving")
		return "", ErrBusy
	}

	if p.Params.CaptureTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.Params.CaptureTimeout)
		defer cancel()
	}

	savedPath, err := p.capture(ctx)
	if err != nil {
		p.log.WithError(err).Error("capturing or cropping photo")
		p.display.Show("Error: " + err.Error())
	} else {
		p.log.WithField("path", savedPath).Info("photo saved")
		p.display.Show(msgSaved)
	}

	p.scheduleReset()
	return savedPath, err
}

func (p *SelfieFramePipeline) capture(ctx context.Context) (string, error) {
	p.display.Show(msgCapturing)

	photo, err := p.camera.TakePhoto(ctx)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrCaptureFailure, err)
	}
	p.log.WithFields(logger.Fields{
		"path":   photo.Path,
		"width":  photo.Geometry.Width,
		"height": photo.Geometry.Height,
	}).Debug("photo captured")

	region := p.mapper.CropRegion(photo.Geometry)
	if region.IsEmpty() {
		return "", fmt.Errorf("%w: frame falls outside the %dx%d photo", ErrCropFailure, photo.Geometry.Width, photo.Geometry.Height)
	}
	p.display.Show(msgProcessing)

	croppedPath, err := p.cropper.Crop(ctx, photo.Path, region)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrCropFailure, err)
	}
	p.display.Show(msgSaving)

	savedPath, err := p.gallery.Save(ctx, croppedPath, p.Params.Album)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrSaveFailure, err)
	}
	return savedPath, nil
}

// acquire takes the busy flag. An instruction being emitted is shown before any capture message.
func (p *SelfieFramePipeline) acquire() bool {
	p.stateMu.Lock()
	defer p.stateMu.Unlock()

	return p.busy.CompareAndSwap(false, true)
}

// scheduleReset restores the idle prompt and releases the busy flag after ResetDelay. The tracker
// is cleared in the same critical section, so the first frame after the reset is always shown.
func (p *SelfieFramePipeline) scheduleReset() {
	p.timerMu.Lock()
	defer p.timerMu.Unlock()

	p.timer = time.AfterFunc(p.Params.ResetDelay, func() {
		p.stateMu.Lock()
		defer p.stateMu.Unlock()

		p.display.Show(config.Idle.String())
		p.evaluator.Reset()
		p.busy.Store(false)
	})
}

// Busy reports whether a capture or its reset delay is in progress.
func (p *SelfieFramePipeline) Busy() bool {
	return p.busy.Load()
}

// Close stops a pending reset and releases the busy flag.
func (p *SelfieFramePipeline) Close() {
	p.timerMu.Lock()
	defer p.timerMu.Unlock()

	if p.timer != nil && p.timer.Stop() {
		p.stateMu.Lock()
		p.evaluator.Reset()
		p.busy.Store(false)
		p.stateMu.Unlock()
	}
	p.timer = nil
}
