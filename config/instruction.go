package config

// Instruction is the guidance shown to the user for the latest evaluation.
type Instruction int

const (
	Idle Instruction = iota
	GoodFit
	MoveToCenter
	MoveCloser
	MoveBack
	NoFaceDetected
	DetectionError
)

var instructionText = map[Instruction]string{
	Idle:           "Fit your face in the frame",
	GoodFit:        "Perfect! Hold still",
	MoveToCenter:   "Move to center",
	MoveCloser:     "Move closer",
	MoveBack:       "Move back",
	NoFaceDetected: "No face detected",
	DetectionError: "Face detection error",
}

// String returns the user-facing text of the instruction.
func (i Instruction) String() string {
	if s, ok := instructionText[i]; ok {
		return s
	}
	return instructionText[DetectionError]
}
