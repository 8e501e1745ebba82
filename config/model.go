package config

import (
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	jsoniter "github.com/json-iterator/go"
)

var (
	json     = jsoniter.ConfigCompatibleWithStandardLibrary
	validate = validator.New()
)

type FaceDetectionParams struct {
	ModelName string        `json:"model_name" validate:"required"`
	Mean      float64       `json:"mean"`
	Scale     float64       `json:"scale"`
	Timeout   time.Duration `json:"timeout"`
}

func NewFaceDetectionParams(modelName string, mean, scale float64, timeout time.Duration) *FaceDetectionParams {
	return &FaceDetectionParams{
		ModelName: modelName,
		Mean:      mean,
		Scale:     scale,
		Timeout:   timeout,
	}
}

var DefaultFaceDetectionParams = &FaceDetectionParams{
	ModelName: "scrfd",
	Mean:      127.5,
	Scale:     0.00784313725490196,
	Timeout:   10 * time.Second,
}

// PigoParams configures the pure Go cascade detector. An empty CascadePath selects the embedded
// facefinder cascade.
type PigoParams struct {
	CascadePath      string  `json:"cascade_path"`
	MinSize          int     `json:"min_size" validate:"gt=0"`
	MaxSize          int     `json:"max_size" validate:"gtfield=MinSize"`
	ShiftFactor      float64 `json:"shift_factor" validate:"gt=0,lt=1"`
	ScaleFactor      float64 `json:"scale_factor" validate:"gt=1"`
	Angle            float64 `json:"angle" validate:"gte=0,lte=1"`
	IoUThreshold     float64 `json:"iou_threshold" validate:"gte=0,lte=1"`
	QualityThreshold float32 `json:"quality_threshold"`
}

func NewPigoParams(cascadePath string, minSize, maxSize int, shiftFactor, scaleFactor, iouThreshold float64, qualityThreshold float32) *PigoParams {
	return &PigoParams{
		CascadePath:      cascadePath,
		MinSize:          minSize,
		MaxSize:          maxSize,
		ShiftFactor:      shiftFactor,
		ScaleFactor:      scaleFactor,
		IoUThreshold:     iouThreshold,
		QualityThreshold: qualityThreshold,
	}
}

var DefaultPigoParams = &PigoParams{
	MinSize:          20,
	MaxSize:          1000,
	ShiftFactor:      0.1,
	ScaleFactor:      1.1,
	Angle:            0.0,
	IoUThreshold:     0.2,
	QualityThreshold: 5.0,
}

// FitPolicy holds the tolerances used to judge a face against the guide frame.
// A zero ContainmentMargin disables the containment check.
type FitPolicy struct {
	CenterTolerance   float64 `json:"center_tolerance" validate:"gt=0,lt=1"`
	MinFill           float64 `json:"min_fill" validate:"gte=0,lt=1"`
	MaxFill           float64 `json:"max_fill" validate:"gtfield=MinFill,lte=1"`
	ContainmentMargin float64 `json:"containment_margin" validate:"gte=0,lt=1"`
}

func NewFitPolicy(centerTolerance, minFill, maxFill, containmentMargin float64) *FitPolicy {
	return &FitPolicy{
		CenterTolerance:   centerTolerance,
		MinFill:           minFill,
		MaxFill:           maxFill,
		ContainmentMargin: containmentMargin,
	}
}

func (p *FitPolicy) Validate() error {
	return validate.Struct(p)
}

// ContainmentEnabled reports whether boxes escaping the frame are rejected.
func (p *FitPolicy) ContainmentEnabled() bool {
	return p.ContainmentMargin > 0
}

var DefaultFitPolicy = &FitPolicy{
	CenterTolerance: 0.2,
	MinFill:         0.25,
	MaxFill:         0.7,
}

// RelaxedFitPolicy is used by the live preview screen that also captures photos.
var RelaxedFitPolicy = &FitPolicy{
	CenterTolerance: 0.2,
	MinFill:         0.25,
	MaxFill:         0.7,
}

var TightCenterFitPolicy = &FitPolicy{
	CenterTolerance: 0.15,
	MinFill:         0.25,
	MaxFill:         0.7,
}

var StrictFitPolicy = &FitPolicy{
	CenterTolerance:   0.15,
	MinFill:           0.3,
	MaxFill:           0.8,
	ContainmentMargin: 0.1,
}

var fitPolicyPresets = map[string]*FitPolicy{
	"default":      DefaultFitPolicy,
	"relaxed":      RelaxedFitPolicy,
	"tight_center": TightCenterFitPolicy,
	"strict":       StrictFitPolicy,
}

// FitPolicyPreset looks up a named preset and returns a copy of it.
func FitPolicyPreset(name string) (*FitPolicy, error) {
	p, ok := fitPolicyPresets[name]
	if !ok {
		return nil, fmt.Errorf("unknown fit policy preset %q", name)
	}
	cp := *p
	return &cp, nil
}

type PipelineParams struct {
	Screen         ScreenGeometry `json:"screen"`
	FrameSize      float64        `json:"frame_size" validate:"gt=0"`
	DetectorFrame  Size           `json:"detector_frame"`
	Policy         FitPolicy      `json:"policy"`
	Album          string         `json:"album" validate:"required"`
	OutputDir      string         `json:"output_dir"`
	ResetDelay     time.Duration  `json:"reset_delay" validate:"gte=0"`
	JPEGQuality    int            `json:"jpeg_quality" validate:"gte=1,lte=100"`
	CaptureTimeout time.Duration  `json:"capture_timeout" validate:"gte=0"`
}

func NewPipelineParams(screen ScreenGeometry, frameSize float64, policy FitPolicy, album string, resetDelay time.Duration) *PipelineParams {
	params := *DefaultPipelineParams
	params.Screen = screen
	params.FrameSize = frameSize
	params.DetectorFrame = Size{Width: int(frameSize), Height: int(frameSize)}
	params.Policy = policy
	params.Album = album
	params.ResetDelay = resetDelay
	return &params
}

var DefaultPipelineParams = &PipelineParams{
	Screen:         ScreenGeometry{Width: 390, Height: 844},
	FrameSize:      350,
	DetectorFrame:  Size{Width: 350, Height: 350},
	Policy:         *DefaultFitPolicy,
	Album:          "Camera App",
	OutputDir:      os.TempDir(),
	ResetDelay:     2 * time.Second,
	JPEGQuality:    100,
	CaptureTimeout: 30 * time.Second,
}

func (p *PipelineParams) Validate() error {
	return validate.Struct(p)
}

// ScreenFrame returns the guide frame in screen units.
func (p *PipelineParams) ScreenFrame() FrameSpec {
	return NewCenteredFrame(p.Screen, p.FrameSize, p.FrameSize)
}

// DetectorFrameSpec returns the guide frame in detector pixel units.
func (p *PipelineParams) DetectorFrameSpec() FrameSpec {
	return NewDetectorFrame(float64(p.DetectorFrame.Width), float64(p.DetectorFrame.Height))
}

// LoadPipelineParams reads a JSON file on top of DefaultPipelineParams.
func LoadPipelineParams(fPath string) (*PipelineParams, error) {
	content, err := os.ReadFile(fPath)
	if err != nil {
		return nil, err
	}

	params := *DefaultPipelineParams
	if err := json.Unmarshal(content, &params); err != nil {
		return nil, fmt.Errorf("decoding pipeline params: %w", err)
	}
	if err := params.Validate(); err != nil {
		return nil, fmt.Errorf("validating pipeline params: %w", err)
	}
	return &params, nil
}
