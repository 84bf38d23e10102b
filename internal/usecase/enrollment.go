package usecase

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/example/facegate/internal/imageutil"
	"github.com/example/facegate/internal/logging"
	"github.com/example/facegate/internal/repository"
)

const enrollDateLayout = "2006-01-02"

// EnrollRequest carries the data needed to enroll a new user. Exactly
// one of ImageBytes (file upload) or ImageBase64 (camera capture) must
// be set; ImageBase64 wins when both are present.
type EnrollRequest struct {
	FirstName   string
	LastName    string
	ExpiresDate string // YYYY-MM-DD, optional; stored as end of day
	ImageBytes  []byte
	ImageBase64 string
}

// EnrollResult reports the persisted identity.
type EnrollResult struct {
	UserID uint
	Name   string
	QRCode string
}

// Enroll extracts a reference embedding from the supplied image and
// persists the new user. The QR code is assigned by the repository in
// two phases so it is unique and derived from the final id. The first
// detected face is used when the image contains more than one.
func (uc *AccessUseCase) Enroll(ctx context.Context, req EnrollRequest) (*EnrollResult, error) {
	opLogger := logging.WithOperation(uc.logger, "usecase.enroll", "")

	name := strings.TrimSpace(strings.TrimSpace(req.FirstName) + " " + strings.TrimSpace(req.LastName))

	var image []byte
	switch {
	case req.ImageBase64 != "":
		_, data, err := imageutil.DecodeDataURL(req.ImageBase64)
		if err != nil {
			return nil, &EnrollmentError{Message: "could not decode the reference image"}
		}
		image = data
	case len(req.ImageBytes) > 0:
		image = req.ImageBytes
	default:
		return nil, &EnrollmentError{Message: "add a face image file or capture one from the camera"}
	}

	var expiresAt *string
	if req.ExpiresDate != "" {
		if _, err := time.Parse(enrollDateLayout, req.ExpiresDate); err != nil {
			return nil, &ValidationError{Message: "expiry date must be formatted as YYYY-MM-DD"}
		}
		endOfDay := req.ExpiresDate + "T23:59:59"
		expiresAt = &endOfDay
	}

	embedding, err := uc.provider.Embedding(ctx, image)
	if err != nil {
		wrapped := logging.NewOperationError("usecase.enroll.embedding", "", err)
		opLogger.Error("embedding extraction failed", zap.Error(wrapped))
		return nil, wrapped
	}
	if embedding == nil {
		return nil, &EnrollmentError{Message: "no face detected in the reference image"}
	}

	encoded, err := json.Marshal(embedding)
	if err != nil {
		return nil, logging.NewOperationError("usecase.enroll.encode", "", err)
	}

	user := &repository.User{
		Name:         name,
		FaceEncoding: string(encoded),
		QRExpiresAt:  expiresAt,
	}
	if err := uc.repo.CreateUser(ctx, user); err != nil {
		opLogger.Error("failed to persist user", zap.Error(err))
		return nil, err
	}

	// warm the cache so the fresh badge resolves without a DB round trip
	uc.resolver.cacheUser(ctx, user)

	opLogger.Info("user enrolled", zap.Uint("user_id", user.ID), zap.String("qr_code", user.QRCode))
	return &EnrollResult{UserID: user.ID, Name: user.Name, QRCode: user.QRCode}, nil
}
