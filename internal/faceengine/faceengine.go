package faceengine

import "context"

// Point is a pixel coordinate on the analyzed image.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Landmarks holds the six-point eye contours of a single detected face.
// Each eye is ordered p1..p6: outer corner, upper lid (2), inner corner,
// lower lid (2), in the order the eye aspect ratio formula expects.
type Landmarks struct {
	LeftEye  [6]Point `json:"left_eye"`
	RightEye [6]Point `json:"right_eye"`
}

// Provider exposes the face analysis capabilities consumed by the
// verification flow. Both calls follow zero-or-one semantics: when no
// face is detected the result is nil with a nil error. Errors indicate
// transport or server failures only.
type Provider interface {
	Landmarks(ctx context.Context, image []byte) (*Landmarks, error)
	Embedding(ctx context.Context, image []byte) ([]float64, error)
}
