package modules

import (
	"context"
	"errors"
	"image"
	"time"

	"github.com/okieraised/go-selfie-frame/config"
	"github.com/okieraised/go-selfie-frame/utils"
	gotritonclient "github.com/okieraised/go-triton-client"
	"github.com/okieraised/go-triton-client/triton_proto"
	"gocv.io/x/gocv"
	"gorgonia.org/tensor"
)

// FaceDetectionClient runs SCRFD on a Triton inference server.
type FaceDetectionClient struct {
	tritonClient *gotritonclient.TritonGRPCClient
	ModelConfig  *triton_proto.ModelConfigResponse
	ModelParams  *config.FaceDetectionParams
}

func NewFaceDetectionClient(triton *gotritonclient.TritonGRPCClient, cfg *config.FaceDetectionParams) (*FaceDetectionClient, error) {
	if cfg == nil {
		cfg = config.DefaultFaceDetectionParams
	}

	inferenceConfig, err := triton.GetModelConfiguration(cfg.Timeout, cfg.ModelName, "")
	if err != nil {
		return nil, err
	}

	return &FaceDetectionClient{
		tritonClient: triton,
		ModelParams:  cfg,
		ModelConfig:  inferenceConfig,
	}, nil
}

// inputDims returns the model input as channels, height, width.
func (c *FaceDetectionClient) inputDims() (int, int, int) {
	dims := c.ModelConfig.Config.Input[0].Dims
	return int(dims[0]), int(dims[1]), int(dims[2])
}

// preprocess letterboxes the RGB frame into the model input, anchored at the top-left corner.
func (c *FaceDetectionClient) preprocess(input gocv.Mat) (*tensor.Dense, config.Size, error) {
	imgH, imgW := input.Size()[0], input.Size()[1]
	size := config.Size{
		Width:  imgW,
		Height: imgH,
	}

	channels, modelH, modelW := c.inputDims()
	imgRatio := float64(imgW) / float64(imgH)
	modelRatio := float64(modelW) / float64(modelH)

	var newWidth, newHeight int
	if imgRatio > modelRatio {
		newWidth = modelW
		newHeight = int(float64(newWidth) / imgRatio)
	} else {
		newHeight = modelH
		newWidth = int(float64(newHeight) * imgRatio)
	}

	scaledImg := gocv.NewMatWithSizesWithScalar(
		[]int{modelH, modelW},
		gocv.MatTypeCV8UC3,
		gocv.NewScalar(0, 0, 0, 0),
	)
	defer scaledImg.Close()

	roi := scaledImg.Region(image.Rect(0, 0, newWidth, newHeight))
	defer roi.Close()
	gocv.Resize(input, &roi, image.Point{X: newWidth, Y: newHeight}, 0, 0, gocv.InterpolationLinear)

	imgTensor := tensor.New(
		tensor.Of(tensor.Float32),
		tensor.WithShape(channels, modelH, modelW),
	)

	mean := float32(c.ModelParams.Mean)
	scale := float32(c.ModelParams.Scale)
	for y := range modelH {
		for x := range modelW {
			px := scaledImg.GetVecbAt(y, x)
			for z := range channels {
				err := imgTensor.SetAt((float32(px[z])-mean)*scale, z, y, x)
				if err != nil {
					return nil, size, err
				}
			}
		}
	}
	return imgTensor, size, nil
}

// postprocess scales the normalized boxes back to frame pixels. Outputs are ordered as
// num_dets, boxes, scores.
func (c *FaceDetectionClient) postprocess(rawOutputs []*tensor.Dense, size config.Size) ([]config.FaceDetectionOutput, error) {
	if len(rawOutputs) < 3 {
		return nil, errors.New("unexpected number of detection outputs")
	}

	numDets, err := rawOutputs[0].Slice(tensor.S(0))
	if err != nil {
		return nil, err
	}
	boxes, err := rawOutputs[1].Slice(tensor.S(0))
	if err != nil {
		return nil, err
	}
	scores, err := rawOutputs[2].Slice(tensor.S(0))
	if err != nil {
		return nil, err
	}

	_, modelH, modelW := c.inputDims()
	scale := float32(max(modelH, modelW))
	if size.Max() > 0 {
		scale = float32(size.Max())
	}

	count := detectionCount(numDets, boxes.Shape()[0])
	results := make([]config.FaceDetectionOutput, 0, count)
	for i := range count {
		score, err := scores.Slice(tensor.S(i))
		if err != nil {
			return nil, err
		}
		box, err := boxes.Slice(tensor.S(i))
		if err != nil {
			return nil, err
		}
		scaledBox, err := box.Apply(func(x float32) float32 {
			return x * scale
		})
		if err != nil {
			return nil, err
		}

		results = append(results, config.FaceDetectionOutput{
			Box:   scaledBox.(*tensor.Dense),
			Score: score.(*tensor.Dense),
		})
	}
	return results, nil
}

// detectionCount reads the number of valid detections, never more than limit.
func detectionCount(numDets tensor.View, limit int) int {
	var n int
	switch v := numDets.Data().(type) {
	case int32:
		n = int(v)
	case []int32:
		if len(v) > 0 {
			n = int(v[0])
		}
	case float32:
		n = int(v)
	case []float32:
		if len(v) > 0 {
			n = int(v[0])
		}
	default:
		n = limit
	}
	return utils.Clamp(n, 0, limit)
}

// InferSingle runs one RGB frame through the model.
func (c *FaceDetectionClient) InferSingle(input gocv.Mat, timeout time.Duration) ([]config.FaceDetectionOutput, error) {
	inputTensor, size, err := c.preprocess(input)
	if err != nil {
		return nil, err
	}

	modelRequest := &triton_proto.ModelInferRequest{
		ModelName: c.ModelParams.ModelName,
	}

	modelInputs := make([]*triton_proto.ModelInferRequest_InferInputTensor, 0, len(c.ModelConfig.Config.Input))
	for _, inputCfg := range c.ModelConfig.Config.Input {
		modelInputs = append(modelInputs, &triton_proto.ModelInferRequest_InferInputTensor{
			Name:     inputCfg.Name,
			Datatype: inputCfg.DataType.String()[5:],
			Shape:    []int64{1, inputCfg.Dims[0], inputCfg.Dims[1], inputCfg.Dims[2]},
			Contents: &triton_proto.InferTensorContents{
				Fp32Contents: inputTensor.Float32s(),
			},
		})
	}
	modelRequest.Inputs = modelInputs

	inferResp, err := c.tritonClient.ModelGRPCInfer(timeout, modelRequest)
	if err != nil {
		return nil, err
	}

	outputs := make([]*tensor.Dense, 0, len(inferResp.GetOutputs()))
	for oIdx, output := range inferResp.GetOutputs() {
		outputShape := make([]int, 0, len(output.Shape))
		for _, shp := range output.Shape {
			outputShape = append(outputShape, int(shp))
		}
		var t *tensor.Dense
		switch output.Datatype {
		case "FP32":
			t = tensor.New(
				tensor.WithShape(outputShape...),
				tensor.WithBacking(utils.BytesToT32[float32](inferResp.RawOutputContents[oIdx])),
			)
		case "INT32":
			t = tensor.New(
				tensor.WithShape(outputShape...),
				tensor.WithBacking(utils.BytesToT32[int32](inferResp.RawOutputContents[oIdx])),
			)
		default:
			return nil, errors.New("unsupported output datatype " + output.Datatype)
		}
		outputs = append(outputs, t)
	}

	return c.postprocess(outputs, size)
}

// Detect implements FaceDetector. Boxes come back best scoring first as ordered by the model.
func (c *FaceDetectionClient) Detect(ctx context.Context, img image.Image) ([]config.BoundingBox, error) {
	if err := checkContext(ctx); err != nil {
		return nil, err
	}

	mat, err := utils.ImageToRGBMat(img)
	if err != nil {
		return nil, err
	}
	defer mat.Close()

	timeout := c.ModelParams.Timeout
	if deadline, ok := ctx.Deadline(); ok {
		timeout = min(timeout, time.Until(deadline))
	}

	dets, err := c.InferSingle(mat, timeout)
	if err != nil {
		return nil, err
	}
	return detectionsToBoxes(dets), nil
}

func detectionsToBoxes(dets []config.FaceDetectionOutput) []config.BoundingBox {
	if len(dets) == 0 {
		return nil
	}
	boxes := make([]config.BoundingBox, 0, len(dets))
	for _, det := range dets {
		boxes = append(boxes, config.BoundingBoxFromTensor(det.Box))
	}
	return boxes
}
