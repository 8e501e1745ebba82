package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/disintegration/imaging"
	"github.com/joho/godotenv"
	selfieframe "github.com/okieraised/go-selfie-frame"
	"github.com/okieraised/go-selfie-frame/config"
	"github.com/okieraised/go-selfie-frame/logger"
	"github.com/okieraised/go-selfie-frame/modules"
	gotritonclient "github.com/okieraised/go-triton-client"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/keepalive"
)

type consoleDisplay struct{}

func (consoleDisplay) Show(text string) {
	fmt.Println(text)
}

func main() {
	if err := godotenv.Load(); err != nil {
		logger.Debug(logger.Fields{"error": err}, "no .env file loaded")
	}

	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: selfie-frame <photo>")
		os.Exit(2)
	}
	photoPath := os.Args[1]

	params, err := loadParams()
	if err != nil {
		logger.Fatal(logger.Fields{"error": err}, "loading pipeline params")
	}

	photo, err := imaging.Open(photoPath, imaging.AutoOrientation(true))
	if err != nil {
		logger.Fatal(logger.Fields{"error": err, "path": photoPath}, "opening photo")
	}

	// Detection runs on the part of the photo under the guide frame, so the detector frame is
	// the crop region itself.
	region, _ := modules.ComputeCropRegion(config.NewPhotoGeometry(photo), params.Screen, params.ScreenFrame())
	if region.IsEmpty() {
		logger.Fatal(logger.Fields{"region": region}, "guide frame falls outside the photo")
	}
	params.DetectorFrame = config.Size{Width: region.Width, Height: region.Height}

	detector, err := newDetector()
	if err != nil {
		logger.Fatal(logger.Fields{"error": err}, "initializing face detector")
	}

	albumRoot := envOr("SELFIE_FRAME_ALBUM_ROOT", filepath.Join(params.OutputDir, "gallery"))
	pipeline, err := selfieframe.NewSelfieFramePipeline(
		params,
		modules.NewFileCamera(photoPath),
		detector,
		modules.NewImagingCropper(params.OutputDir, params.JPEGQuality),
		modules.NewAlbumWriter(albumRoot, params.JPEGQuality),
		consoleDisplay{},
	)
	if err != nil {
		logger.Fatal(logger.Fields{"error": err}, "initializing pipeline")
	}
	defer pipeline.Close()

	ctx := context.Background()
	if err := pipeline.RequestPermissions(ctx); err != nil {
		logger.Fatal(logger.Fields{"error": err}, "requesting permissions")
	}

	framed := imaging.Crop(photo, region.Rect().Add(photo.Bounds().Min))
	instruction, err := pipeline.ProcessFrame(ctx, framed)
	if err != nil {
		logger.Warn(logger.Fields{"error": err}, "processing frame")
	}
	if instruction != config.GoodFit && !envBool("SELFIE_FRAME_FORCE_CAPTURE") {
		os.Exit(1)
	}

	savedPath, err := pipeline.CapturePhoto(ctx)
	if err != nil {
		logger.Error(logger.Fields{"error": err}, "capturing photo")
		os.Exit(1)
	}
	logger.Info(logger.Fields{"path": savedPath}, "crop saved")
}

func loadParams() (*config.PipelineParams, error) {
	var params *config.PipelineParams
	if fPath := os.Getenv("SELFIE_FRAME_CONFIG"); fPath != "" {
		loaded, err := config.LoadPipelineParams(fPath)
		if err != nil {
			return nil, err
		}
		params = loaded
	} else {
		defaults := *config.DefaultPipelineParams
		params = &defaults
	}

	if name := os.Getenv("SELFIE_FRAME_POLICY"); name != "" {
		policy, err := config.FitPolicyPreset(name)
		if err != nil {
			return nil, err
		}
		params.Policy = *policy
	}
	if album := os.Getenv("SELFIE_FRAME_ALBUM"); album != "" {
		params.Album = album
	}
	return params, params.Validate()
}

func newDetector() (modules.FaceDetector, error) {
	if url := os.Getenv("SELFIE_FRAME_TRITON_URL"); url != "" {
		tritonClient, err := gotritonclient.NewTritonGRPCClient(
			url,
			grpc.WithTransportCredentials(insecure.NewCredentials()),
			grpc.WithKeepaliveParams(keepalive.ClientParameters{PermitWithoutStream: true}),
		)
		if err != nil {
			return nil, err
		}
		return modules.NewFaceDetectionClient(tritonClient, config.DefaultFaceDetectionParams)
	}

	pigoParams := *config.DefaultPigoParams
	pigoParams.CascadePath = envOr("SELFIE_FRAME_CASCADE", pigoParams.CascadePath)
	return modules.NewPigoFaceDetector(&pigoParams)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envBool(key string) bool {
	v, err := strconv.ParseBool(os.Getenv(key))
	return err == nil && v
}
