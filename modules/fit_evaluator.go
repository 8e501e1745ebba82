package modules

import (
	"sync"

	"github.com/okieraised/go-selfie-frame/config"
	"github.com/okieraised/go-selfie-frame/utils"
)

/*
Evaluate judges a detected face against the guide frame and returns the instruction to show.

Face coordinates are frame-local detector pixels: the frame center is (frame.Width/2, frame.Height/2).
The first matching rule wins: no face, incomplete box, good fit, off center, too small, too large.
Fill bounds are strict on both ends, so a face filling exactly MinFill still has to move closer.

Inputs:

  - face (*config.BoundingBox): first detected face, nil when the detector found none.
  - frame (config.FrameSpec): guide frame in detector space.
  - policy (*config.FitPolicy): tolerances, config.DefaultFitPolicy when nil.

Outputs:

  - instruction (config.Instruction): guidance for the user.
*/
func Evaluate(face *config.BoundingBox, frame config.FrameSpec, policy *config.FitPolicy) config.Instruction {
	if face == nil {
		return config.NoFaceDetected
	}
	if !face.IsComplete() || !utils.IsPositive(frame.Width, frame.Height) {
		return config.DetectionError
	}
	if policy == nil {
		policy = config.DefaultFitPolicy
	}

	faceCenterX, faceCenterY := face.Center()
	centerOffsetX := utils.Abs(faceCenterX - frame.Width/2)
	centerOffsetY := utils.Abs(faceCenterY - frame.Height/2)
	isCentered := centerOffsetX < frame.Width*policy.CenterTolerance &&
		centerOffsetY < frame.Height*policy.CenterTolerance

	fillPercentage := face.Area() / frame.Area()
	isRightSize := fillPercentage > policy.MinFill && fillPercentage < policy.MaxFill

	isContained := true
	if policy.ContainmentEnabled() {
		isContained = isContainedInFrame(face, frame, policy.ContainmentMargin)
	}

	switch {
	case isCentered && isRightSize && isContained:
		return config.GoodFit
	case !isCentered:
		return config.MoveToCenter
	case fillPercentage <= policy.MinFill:
		return config.MoveCloser
	default:
		return config.MoveBack
	}
}

// isContainedInFrame allows the box to spill over each frame side by margin of its own size.
func isContainedInFrame(face *config.BoundingBox, frame config.FrameSpec, margin float64) bool {
	slackX := face.Width * margin
	slackY := face.Height * margin

	return face.X >= -slackX &&
		face.Y >= -slackY &&
		face.X+face.Width <= frame.Width+slackX &&
		face.Y+face.Height <= frame.Height+slackY
}

// FirstFace returns the face the evaluator looks at, nil when there is none.
func FirstFace(faces []config.BoundingBox) *config.BoundingBox {
	if len(faces) == 0 {
		return nil
	}
	face := faces[0]
	return &face
}

// InstructionTracker remembers the last emitted instruction so that callers only push changes
// downstream. It does not smooth or debounce.
type InstructionTracker struct {
	mu      sync.Mutex
	last    config.Instruction
	emitted bool
}

// Update records the instruction and reports whether it differs from the previous one.
func (t *InstructionTracker) Update(instruction config.Instruction) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	changed := !t.emitted || t.last != instruction
	t.last = instruction
	t.emitted = true
	return changed
}

// Last returns the most recent instruction, config.Idle before the first update.
func (t *InstructionTracker) Last() config.Instruction {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.emitted {
		return config.Idle
	}
	return t.last
}

// Reset forgets the last instruction so that the next update is always reported.
func (t *InstructionTracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.emitted = false
	t.last = config.Idle
}

// FitEvaluator evaluates detections per frame against a fixed frame and policy.
type FitEvaluator struct {
	frame   config.FrameSpec
	policy  *config.FitPolicy
	tracker *InstructionTracker
}

func NewFitEvaluator(frame config.FrameSpec, policy *config.FitPolicy) *FitEvaluator {
	if policy == nil {
		policy = config.DefaultFitPolicy
	}
	return &FitEvaluator{
		frame:   frame,
		policy:  policy,
		tracker: &InstructionTracker{},
	}
}

// Observe evaluates the first face of a detection event and reports whether the instruction
// changed since the previous event.
func (e *FitEvaluator) Observe(faces []config.BoundingBox) (config.Instruction, bool) {
	instruction := Evaluate(FirstFace(faces), e.frame, e.policy)
	return instruction, e.tracker.Update(instruction)
}

// Record feeds an instruction that was decided outside Evaluate, such as a detector failure.
func (e *FitEvaluator) Record(instruction config.Instruction) bool {
	return e.tracker.Update(instruction)
}

// Reset makes the next Observe report a change.
func (e *FitEvaluator) Reset() {
	e.tracker.Reset()
}

func (e *FitEvaluator) Policy() config.FitPolicy {
	return *e.policy
}
