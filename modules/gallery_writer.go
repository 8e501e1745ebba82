package modules

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
)

// AlbumWriter keeps one directory per album under Root.
type AlbumWriter struct {
	Root        string
	JPEGQuality int
}

func NewAlbumWriter(root string, jpegQuality int) *AlbumWriter {
	return &AlbumWriter{
		Root:        root,
		JPEGQuality: jpegQuality,
	}
}

// Save re-encodes srcPath as JPEG into the album directory.
func (w *AlbumWriter) Save(ctx context.Context, srcPath, album string) (string, error) {
	if err := checkContext(ctx); err != nil {
		return "", err
	}

	albumDir, err := w.albumDir(album)
	if err != nil {
		return "", err
	}

	img, err := imaging.Open(srcPath)
	if err != nil {
		return "", fmt.Errorf("opening image: %w", err)
	}

	name := fmt.Sprintf("IMG_%s_%s.jpg", time.Now().Format("20060102_150405"), uuid.NewString()[:8])
	dstPath := filepath.Join(albumDir, name)
	if err := imaging.Save(img, dstPath, imaging.JPEGQuality(w.JPEGQuality)); err != nil {
		return "", fmt.Errorf("writing %s: %w", dstPath, err)
	}
	return dstPath, nil
}

// StoragePermission reports whether files can be created under Root. A permission error means
// not granted; other failures are returned.
func (w *AlbumWriter) StoragePermission(ctx context.Context) (bool, error) {
	if err := checkContext(ctx); err != nil {
		return false, err
	}
	if w.Root == "" {
		return false, errors.New("gallery root not configured")
	}

	if err := os.MkdirAll(w.Root, 0o755); err != nil {
		if errors.Is(err, fs.ErrPermission) {
			return false, nil
		}
		return false, fmt.Errorf("creating gallery root: %w", err)
	}

	f, err := os.CreateTemp(w.Root, ".access-*")
	if err != nil {
		if errors.Is(err, fs.ErrPermission) {
			return false, nil
		}
		return false, fmt.Errorf("checking gallery root: %w", err)
	}
	name := f.Name()
	_ = f.Close()
	return true, os.Remove(name)
}

func (w *AlbumWriter) albumDir(album string) (string, error) {
	album = strings.TrimSpace(album)
	if album == "" || album == "." || album == ".." || strings.ContainsAny(album, `/\`) {
		return "", fmt.Errorf("invalid album name %q", album)
	}
	if w.Root == "" {
		return "", errors.New("gallery root not configured")
	}

	dir := filepath.Join(w.Root, album)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating album: %w", err)
	}
	return dir, nil
}
