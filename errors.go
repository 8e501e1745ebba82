package go_selfie_frame

import "errors"

var (
	ErrPermissionDenied = errors.New("camera permission denied")
	ErrNoCameraDevice   = errors.New("no camera device available")
	ErrCaptureFailure   = errors.New("photo capture failed")
	ErrCropFailure      = errors.New("photo crop failed")
	ErrSaveFailure      = errors.New("saving to gallery failed")
	ErrBusy             = errors.New("a capture is already in progress")
)
