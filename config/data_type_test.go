package config

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"gorgonia.org/tensor"
)

func TestNewCenteredFrame(t *testing.T) {
	frame := NewCenteredFrame(ScreenGeometry{Width: 390, Height: 844}, 350, 350)

	assert.Equal(t, FrameSpec{Width: 350, Height: 350, Left: 20, Top: 247}, frame)
	assert.Equal(t, 122500.0, frame.Area())
}

func TestNewDetectorFrame(t *testing.T) {
	frame := NewDetectorFrame(350, 350)
	assert.Equal(t, 0.0, frame.Left)
	assert.Equal(t, 0.0, frame.Top)
}

func TestBoundingBoxFromTensor(t *testing.T) {
	box := tensor.New(
		tensor.Of(tensor.Float32),
		tensor.WithShape(4),
		tensor.WithBacking([]float32{100, 120, 250, 300}),
	)

	actual := BoundingBoxFromTensor(box)
	assert.Equal(t, BoundingBox{X: 100, Y: 120, Width: 150, Height: 180}, actual)
	assert.True(t, actual.IsComplete())

	cx, cy := actual.Center()
	assert.Equal(t, 175.0, cx)
	assert.Equal(t, 210.0, cy)
}

func TestBoundingBoxFromTensor_MissingFields(t *testing.T) {
	short := tensor.New(
		tensor.Of(tensor.Float32),
		tensor.WithShape(2),
		tensor.WithBacking([]float32{100, 120}),
	)

	actual := BoundingBoxFromTensor(short)
	assert.False(t, actual.IsComplete())
	assert.True(t, math.IsNaN(actual.Width))

	assert.False(t, BoundingBoxFromTensor(nil).IsComplete())
}

func TestBoundingBox_IsComplete(t *testing.T) {
	tests := []struct {
		name string
		box  BoundingBox
		want bool
	}{
		{"zero origin", BoundingBox{X: 0, Y: 0, Width: 350, Height: 350}, true},
		{"nan x", BoundingBox{X: math.NaN(), Y: 0, Width: 10, Height: 10}, false},
		{"inf height", BoundingBox{X: 0, Y: 0, Width: 10, Height: math.Inf(1)}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.box.IsComplete())
		})
	}
}

func TestCropRegion(t *testing.T) {
	photo := PhotoGeometry{Width: 100, Height: 50}

	r := CropRegion{X: 10, Y: 5, Width: 90, Height: 45}
	assert.True(t, r.Within(photo))
	assert.False(t, r.IsEmpty())
	assert.Equal(t, 90, r.Rect().Dx())
	assert.Equal(t, 45, r.Rect().Dy())

	outside := CropRegion{X: 20, Y: 5, Width: 90, Height: 45}
	assert.False(t, outside.Within(photo))

	assert.True(t, CropRegion{X: 100, Y: 0, Width: 0, Height: 50}.IsEmpty())
}

func TestInstruction_String(t *testing.T) {
	assert.Equal(t, "Perfect! Hold still", GoodFit.String())
	assert.Equal(t, "Move to center", MoveToCenter.String())
	assert.Equal(t, "Move closer", MoveCloser.String())
	assert.Equal(t, "Move back", MoveBack.String())
	assert.Equal(t, "No face detected", NoFaceDetected.String())
	assert.Equal(t, "Face detection error", DetectionError.String())
	assert.Equal(t, "Fit your face in the frame", Idle.String())
}
