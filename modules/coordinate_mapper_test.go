package modules

import (
	"math"
	"math/rand"
	"testing"

	"github.com/okieraised/go-selfie-frame/config"
	"github.com/stretchr/testify/assert"
)

var testScreen = config.ScreenGeometry{Width: 390, Height: 844}

func TestComputeCropRegion(t *testing.T) {
	frame := config.NewCenteredFrame(testScreen, 350, 350)

	tests := []struct {
		name    string
		photo   config.PhotoGeometry
		screen  config.ScreenGeometry
		frame   config.FrameSpec
		want    config.CropRegion
		clamped bool
	}{
		{
			name:   "same aspect ratio",
			photo:  config.PhotoGeometry{Width: 780, Height: 1688},
			screen: testScreen,
			frame:  frame,
			want:   config.CropRegion{X: 40, Y: 494, Width: 700, Height: 700},
		},
		{
			name:   "photo wider than screen",
			photo:  config.PhotoGeometry{Width: 3000, Height: 4000},
			screen: testScreen,
			frame:  frame,
			want:   config.CropRegion{X: 670, Y: 1170, Width: 1658, Height: 1658},
		},
		{
			name:   "photo taller than screen",
			photo:  config.PhotoGeometry{Width: 1000, Height: 3000},
			screen: testScreen,
			frame:  frame,
			want:   config.CropRegion{X: 51, Y: 1051, Width: 897, Height: 897},
		},
		{
			name:    "frame wider than screen",
			photo:   config.PhotoGeometry{Width: 390, Height: 844},
			screen:  testScreen,
			frame:   config.NewCenteredFrame(testScreen, 500, 500),
			want:    config.CropRegion{X: 0, Y: 172, Width: 390, Height: 500},
			clamped: true,
		},
		{
			name:    "frame outside photo",
			photo:   config.PhotoGeometry{Width: 390, Height: 844},
			screen:  testScreen,
			frame:   config.FrameSpec{Width: 100, Height: 100, Left: 500, Top: 10},
			want:    config.CropRegion{X: 390, Y: 10, Width: 0, Height: 100},
			clamped: true,
		},
		{
			name:   "empty photo",
			photo:  config.PhotoGeometry{},
			screen: testScreen,
			frame:  frame,
			want:   config.CropRegion{},
		},
		{
			name:   "degenerate screen",
			photo:  config.PhotoGeometry{Width: 780, Height: 1688},
			screen: config.ScreenGeometry{Width: 0, Height: math.NaN()},
			frame:  frame,
			want:   config.CropRegion{},
		},
		{
			name:   "non-finite frame left",
			photo:  config.PhotoGeometry{Width: 780, Height: 1688},
			screen: testScreen,
			frame:  config.FrameSpec{Width: 350, Height: 350, Left: math.NaN(), Top: frame.Top},
			want:   config.CropRegion{},
		},
		{
			name:   "infinite frame left",
			photo:  config.PhotoGeometry{Width: 780, Height: 1688},
			screen: testScreen,
			frame:  config.FrameSpec{Width: 350, Height: 350, Left: math.Inf(1), Top: frame.Top},
			want:   config.CropRegion{},
		},
		{
			name:   "infinite frame size",
			photo:  config.PhotoGeometry{Width: 780, Height: 1688},
			screen: testScreen,
			frame:  config.FrameSpec{Width: math.Inf(1), Height: 350, Left: frame.Left, Top: frame.Top},
			want:   config.CropRegion{},
		},
		{
			name:    "frame left beyond int range",
			photo:   config.PhotoGeometry{Width: 780, Height: 1688},
			screen:  testScreen,
			frame:   config.FrameSpec{Width: 350, Height: 350, Left: 1e20, Top: frame.Top},
			want:    config.CropRegion{X: 780, Y: 494, Width: 0, Height: 700},
			clamped: true,
		},
		{
			name:    "frame width beyond int range",
			photo:   config.PhotoGeometry{Width: 780, Height: 1688},
			screen:  testScreen,
			frame:   config.FrameSpec{Width: 1e20, Height: 350, Left: frame.Left, Top: frame.Top},
			want:    config.CropRegion{X: 40, Y: 494, Width: 740, Height: 700},
			clamped: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			region, clamped := ComputeCropRegion(tt.photo, tt.screen, tt.frame)
			assert.Equal(t, tt.want, region)
			assert.Equal(t, tt.clamped, clamped)
			if tt.photo.Width > 0 {
				assert.True(t, region.Within(tt.photo))
			}
		})
	}
}

func TestComputeCropRegion_SameAspectHasNoPreviewOffset(t *testing.T) {
	photo := config.PhotoGeometry{Width: 1080, Height: 1920}
	screen := config.ScreenGeometry{Width: 360, Height: 640}
	frame := config.NewCenteredFrame(screen, 350, 350)

	region, clamped := ComputeCropRegion(photo, screen, frame)
	scale := float64(photo.Width) / screen.Width

	assert.False(t, clamped)
	assert.Equal(t, int(math.Floor(frame.Left*scale)), region.X)
	assert.Equal(t, int(math.Floor(frame.Top*scale)), region.Y)
	assert.Equal(t, config.CropRegion{X: 15, Y: 435, Width: 1050, Height: 1050}, region)
}

func TestComputeCropRegion_Idempotent(t *testing.T) {
	photo := config.PhotoGeometry{Width: 3024, Height: 4032}
	frame := config.NewCenteredFrame(testScreen, 350, 350)

	first, firstClamped := ComputeCropRegion(photo, testScreen, frame)
	second, secondClamped := ComputeCropRegion(photo, testScreen, frame)

	assert.Equal(t, first, second)
	assert.Equal(t, firstClamped, secondClamped)
}

func TestComputeCropRegion_AlwaysWithinPhoto(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for i := 0; i < 2000; i++ {
		photo := config.PhotoGeometry{Width: 1 + rng.Intn(5000), Height: 1 + rng.Intn(5000)}
		screen := config.ScreenGeometry{Width: 1 + rng.Float64()*1500, Height: 1 + rng.Float64()*1500}
		size := rng.Float64() * 2000
		frame := config.NewCenteredFrame(screen, size, size)

		region, _ := ComputeCropRegion(photo, screen, frame)
		assert.Truef(t, region.Within(photo), "photo=%+v screen=%+v frame=%+v region=%+v", photo, screen, frame, region)
		assert.GreaterOrEqual(t, region.Width, 0)
		assert.GreaterOrEqual(t, region.Height, 0)
	}
}

func TestCoordinateMapper_CropRegion(t *testing.T) {
	mapper := NewCoordinateMapper(testScreen, config.NewCenteredFrame(testScreen, 500, 500))

	region := mapper.CropRegion(config.PhotoGeometry{Width: 390, Height: 844})
	assert.Equal(t, config.CropRegion{X: 0, Y: 172, Width: 390, Height: 500}, region)
}
