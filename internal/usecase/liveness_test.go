package usecase

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/example/facegate/internal/faceengine"
)

func TestIsLiveShortSequenceSkipsProvider(t *testing.T) {
	provider := &stubProvider{}
	detector := NewLivenessDetector(provider, zap.NewNop())

	frames := [][]byte{[]byte("f1"), []byte("f2")}
	if detector.IsLive(context.Background(), frames) {
		t.Fatal("expected not live for short sequence")
	}
	if provider.landmarkCalls != 0 {
		t.Fatalf("expected no provider calls, got %d", provider.landmarkCalls)
	}
}

func TestIsLiveDetectsBlinkRun(t *testing.T) {
	// open, closed, closed, open: a run of 2 below the threshold
	provider := &stubProvider{landmarks: []*faceengine.Landmarks{
		landmarksWithEAR(0.30),
		landmarksWithEAR(0.15),
		landmarksWithEAR(0.14),
		landmarksWithEAR(0.30),
	}}
	detector := NewLivenessDetector(provider, zap.NewNop())

	frames := [][]byte{[]byte("f1"), []byte("f2"), []byte("f3"), []byte("f4")}
	if !detector.IsLive(context.Background(), frames) {
		t.Fatal("expected blink to be detected")
	}
	if provider.landmarkCalls != 4 {
		t.Fatalf("expected 4 provider calls, got %d", provider.landmarkCalls)
	}
}

func TestIsLiveMissedDetectionResetsRun(t *testing.T) {
	// closed, no detection, closed: the run never reaches length 2
	provider := &stubProvider{landmarks: []*faceengine.Landmarks{
		landmarksWithEAR(0.15),
		nil,
		landmarksWithEAR(0.14),
	}}
	detector := NewLivenessDetector(provider, zap.NewNop())

	frames := [][]byte{[]byte("f1"), []byte("f2"), []byte("f3")}
	if detector.IsLive(context.Background(), frames) {
		t.Fatal("expected no blink when detection gap splits the run")
	}
}

func TestIsLiveOpenEyeResetsRun(t *testing.T) {
	provider := &stubProvider{landmarks: []*faceengine.Landmarks{
		landmarksWithEAR(0.15),
		landmarksWithEAR(0.30),
		landmarksWithEAR(0.14),
	}}
	detector := NewLivenessDetector(provider, zap.NewNop())

	frames := [][]byte{[]byte("f1"), []byte("f2"), []byte("f3")}
	if detector.IsLive(context.Background(), frames) {
		t.Fatal("expected no blink when an open frame splits the run")
	}
}

func TestIsLiveProviderErrorTreatedAsNoDetection(t *testing.T) {
	provider := &stubProvider{
		landmarks: []*faceengine.Landmarks{
			landmarksWithEAR(0.15),
			landmarksWithEAR(0.14), // paired with an error below
			landmarksWithEAR(0.14),
		},
		landmarkErrs: []error{nil, errors.New("engine unavailable"), nil},
	}
	detector := NewLivenessDetector(provider, zap.NewNop())

	frames := [][]byte{[]byte("f1"), []byte("f2"), []byte("f3")}
	if detector.IsLive(context.Background(), frames) {
		t.Fatal("expected provider error to reset the run")
	}
}

func TestEyeAspectRatio(t *testing.T) {
	tests := []struct {
		name     string
		eye      [6]faceengine.Point
		expected float64
	}{
		{"open eye", landmarksWithEAR(0.30).LeftEye, 0.30},
		{"closed eye", landmarksWithEAR(0.10).LeftEye, 0.10},
		{"degenerate horizontal span", [6]faceengine.Point{
			{X: 0, Y: 0}, {X: 0, Y: 1}, {X: 0, Y: 1}, {X: 0, Y: 0}, {X: 0, Y: 2}, {X: 0, Y: 2},
		}, 0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := eyeAspectRatio(tc.eye)
			if diff := got - tc.expected; diff > 1e-9 || diff < -1e-9 {
				t.Fatalf("eyeAspectRatio = %f; want %f", got, tc.expected)
			}
		})
	}
}
