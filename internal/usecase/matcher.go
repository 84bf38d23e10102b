package usecase

import (
	"context"
	"encoding/json"
	"math"

	"go.uber.org/zap"

	"github.com/example/facegate/internal/faceengine"
)

// matchDistanceThreshold is the Euclidean distance below which two face
// embeddings count as the same person.
const matchDistanceThreshold = 0.6

// FaceMatcher compares a live capture against a stored face encoding.
type FaceMatcher struct {
	provider faceengine.Provider
	logger   *zap.Logger
}

// NewFaceMatcher constructs a matcher using the given provider.
func NewFaceMatcher(provider faceengine.Provider, logger *zap.Logger) *FaceMatcher {
	return &FaceMatcher{
		provider: provider,
		logger:   logger.Named("matcher"),
	}
}

// Matches extracts an embedding from the image and compares it to the
// stored JSON-encoded vector. Any condition that prevents a comparison
// (no face found, provider failure, corrupt stored encoding, dimension
// mismatch) counts as no match rather than an error.
func (m *FaceMatcher) Matches(ctx context.Context, image []byte, storedEncoding string) bool {
	embedding, err := m.provider.Embedding(ctx, image)
	if err != nil {
		m.logger.Warn("embedding request failed, treating as no match", zap.Error(err))
		return false
	}
	if embedding == nil {
		return false
	}

	var known []float64
	if err := json.Unmarshal([]byte(storedEncoding), &known); err != nil {
		m.logger.Warn("corrupt stored face encoding", zap.Error(err))
		return false
	}
	if len(known) == 0 || len(known) != len(embedding) {
		return false
	}

	return euclideanDistance(known, embedding) < matchDistanceThreshold
}

func euclideanDistance(a, b []float64) float64 {
	var sum float64
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return math.Sqrt(sum)
}
