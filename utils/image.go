package utils

import (
	"fmt"
	"image"

	"github.com/disintegration/imaging"
	"gocv.io/x/gocv"
)

// ImageToRGBMat converts a decoded frame into an RGB ordered 8UC3 Mat.
func ImageToRGBMat(img image.Image) (gocv.Mat, error) {
	dstMat := gocv.NewMat()
	srcMat, err := gocv.ImageToMatRGB(img)
	if err != nil {
		return dstMat, err
	}
	defer srcMat.Close()

	gocv.CvtColor(srcMat, &dstMat, gocv.ColorBGRToRGB)
	return dstMat, nil
}

// SaveMat encodes a Mat to fPath. The format follows the file extension.
func SaveMat(fPath string, jpegQuality int, img gocv.Mat) error {
	if img.Empty() {
		return fmt.Errorf("cannot save empty image to %s", fPath)
	}
	outImg, err := img.ToImage()
	if err != nil {
		return err
	}
	return imaging.Save(outImg, fPath, imaging.JPEGQuality(jpegQuality))
}
