package usecase

import (
	"context"
	"math"

	"go.uber.org/zap"

	"github.com/example/facegate/internal/faceengine"
)

const (
	// minLivenessFrames guards against trivially short submissions;
	// below this the detector answers without touching the provider.
	minLivenessFrames = 3
	// earThreshold is the eye aspect ratio below which the eyes count
	// as closed.
	earThreshold = 0.21
	// blinkConsecFrames is how many consecutive closed-eye frames make
	// a blink.
	blinkConsecFrames = 2
)

// LivenessDetector decides whether a frame sequence shows a live person
// by looking for a blink: a run of consecutive frames where the averaged
// eye aspect ratio drops below the threshold.
type LivenessDetector struct {
	provider faceengine.Provider
	logger   *zap.Logger
}

// NewLivenessDetector constructs a detector using the given provider.
func NewLivenessDetector(provider faceengine.Provider, logger *zap.Logger) *LivenessDetector {
	return &LivenessDetector{
		provider: provider,
		logger:   logger.Named("liveness"),
	}
}

// IsLive reports whether a blink occurred anywhere in the ordered frame
// sequence. Frames where no face is detected reset the blink run but do
// not abort the scan; provider errors are treated the same way.
func (d *LivenessDetector) IsLive(ctx context.Context, frames [][]byte) bool {
	if len(frames) < minLivenessFrames {
		return false
	}

	blinkDetected := false
	consecBelow := 0

	for _, frame := range frames {
		landmarks, err := d.provider.Landmarks(ctx, frame)
		if err != nil {
			d.logger.Warn("landmark request failed, treating frame as no detection", zap.Error(err))
			landmarks = nil
		}
		if landmarks == nil {
			consecBelow = 0
			continue
		}

		ear := (eyeAspectRatio(landmarks.LeftEye) + eyeAspectRatio(landmarks.RightEye)) / 2.0
		if ear < earThreshold {
			consecBelow++
			if consecBelow >= blinkConsecFrames {
				blinkDetected = true
			}
		} else {
			consecBelow = 0
		}
	}

	return blinkDetected
}

// eyeAspectRatio computes (|p2-p6| + |p3-p5|) / (2*|p1-p4|) over the
// six-point eye contour. Returns 0 when the horizontal span is zero.
func eyeAspectRatio(eye [6]faceengine.Point) float64 {
	numerator := pointDistance(eye[1], eye[5]) + pointDistance(eye[2], eye[4])
	denominator := 2.0 * pointDistance(eye[0], eye[3])
	if denominator == 0 {
		return 0
	}
	return numerator / denominator
}

func pointDistance(a, b faceengine.Point) float64 {
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}
