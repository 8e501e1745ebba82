package modules

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/okieraised/go-selfie-frame/config"
	"github.com/stretchr/testify/assert"
)

func TestFileCamera(t *testing.T) {
	ctx := context.Background()
	src := writeTestPhoto(t, 120, 90)

	camera := NewFileCamera(src)
	granted, err := camera.Permission(ctx)
	assert.NoError(t, err)
	assert.True(t, granted)

	photo, err := camera.TakePhoto(ctx)
	assert.NoError(t, err)
	assert.Equal(t, src, photo.Path)
	assert.Equal(t, config.PhotoGeometry{Width: 120, Height: 90}, photo.Geometry)

	empty := NewFileCamera("")
	granted, err = empty.Permission(ctx)
	assert.NoError(t, err)
	assert.False(t, granted)
	_, err = empty.TakePhoto(ctx)
	assert.Error(t, err)

	_, err = NewFileCamera(filepath.Join(t.TempDir(), "missing.jpg")).TakePhoto(ctx)
	assert.Error(t, err)
}
