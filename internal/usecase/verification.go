package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/example/facegate/internal/faceengine"
	"github.com/example/facegate/internal/imageutil"
	"github.com/example/facegate/internal/logging"
	"github.com/example/facegate/internal/repository"
)

// Repository defines the persistence operations needed by the use case.
type Repository interface {
	CreateUser(ctx context.Context, user *repository.User) error
	FindUserByQR(ctx context.Context, qrCode string) (*repository.User, error)
	FindUserByID(ctx context.Context, id uint) (*repository.User, error)
	ListUsers(ctx context.Context) ([]*repository.User, error)
	SaveEvent(ctx context.Context, event *repository.AccessEvent) error
	ListEvents(ctx context.Context, start, end *time.Time, status string) ([]*repository.AccessEvent, error)
	FindEventByID(ctx context.Context, id uint) (*repository.AccessEvent, error)
	GetAdminPasswordHash(ctx context.Context) (string, error)
	SetAdminPasswordHash(ctx context.Context, hash string) error
}

// Verification statuses returned to the transport layer.
const (
	StatusSuccess  = "success"
	StatusSpoofing = "spoofing"
	StatusFraud    = "fraud"
	StatusExpired  = "expired"
	StatusError    = "error"
)

// Directions recorded with each audit event.
const (
	DirectionIn      = "IN"
	DirectionOut     = "OUT"
	DirectionUnknown = "UNKNOWN"
)

// VerifyRequest is a single access verification attempt: the scanned QR
// payload plus the chronological frame sequence captured at the gate.
// Frames are base64 strings, with or without a data URL prefix.
type VerifyRequest struct {
	QRCode    string
	Frames    []string
	Direction string
}

// VerifyResult is the outcome presented to the caller.
type VerifyResult struct {
	Status  string
	Message string
}

// AccessUseCase wires the verification pipeline, enrollment and audit
// reporting on top of the repository, cache and face engine provider.
type AccessUseCase struct {
	repo     Repository
	cache    Cache
	provider faceengine.Provider
	liveness *LivenessDetector
	resolver *CredentialResolver
	matcher  *FaceMatcher
	logger   *zap.Logger
	now      func() time.Time
}

// NewAccessUseCase constructs a new use case instance.
func NewAccessUseCase(repo Repository, cache Cache, provider faceengine.Provider, logger *zap.Logger) *AccessUseCase {
	return &AccessUseCase{
		repo:     repo,
		cache:    cache,
		provider: provider,
		liveness: NewLivenessDetector(provider, logger),
		resolver: NewCredentialResolver(repo, cache, logger),
		matcher:  NewFaceMatcher(provider, logger),
		logger:   logger.Named("access_usecase"),
		now:      time.Now,
	}
}

// Verify runs the full verification pipeline: input validation, liveness,
// credential resolution, expiry, face match. The first failing stage is
// terminal; every completed run appends exactly one audit event. Audit
// write failures are logged but never change the computed verdict.
func (uc *AccessUseCase) Verify(ctx context.Context, req VerifyRequest) VerifyResult {
	requestID := uuid.NewString()
	opLogger := logging.WithOperation(uc.logger, "usecase.verify", requestID)

	direction := normalizeDirection(req.Direction)
	timestamp := uc.now().UTC().Truncate(time.Second)

	var qrCode *string
	if req.QRCode != "" {
		qrCode = &req.QRCode
	}
	var evidence *string
	if len(req.Frames) > 0 {
		last := req.Frames[len(req.Frames)-1]
		evidence = &last
	}

	fail := func(code, status, message string, userID *uint) VerifyResult {
		uc.audit(ctx, opLogger, &repository.AccessEvent{
			UserID:       userID,
			Timestamp:    timestamp,
			Direction:    direction,
			Status:       repository.StatusFail,
			ErrorCode:    &code,
			QRCode:       qrCode,
			AttemptImage: evidence,
		})
		return VerifyResult{Status: status, Message: message}
	}

	if req.QRCode == "" || len(req.Frames) == 0 {
		return fail(repository.CodeMissingData, StatusError,
			"Missing required data (QR code or video frames).", nil)
	}

	frames := make([][]byte, 0, len(req.Frames))
	for _, f := range req.Frames {
		if _, data, err := imageutil.DecodeDataURL(f); err == nil {
			frames = append(frames, data)
		}
	}

	if !uc.liveness.IsLive(ctx, frames) {
		return fail(repository.CodeNoBlink, StatusSpoofing,
			"Spoofing attempt detected: no blink found.", nil)
	}

	user, expired, err := uc.resolver.Resolve(ctx, req.QRCode)
	if errors.Is(err, ErrUserNotFound) {
		return fail(repository.CodeUnknownQR, StatusFraud,
			"No user found for the provided QR code.", nil)
	}
	if err != nil {
		opLogger.Error("credential lookup failed", zap.Error(err))
		return VerifyResult{Status: StatusError, Message: "Verification is temporarily unavailable."}
	}

	if expired {
		return fail(repository.CodeQRExpired, StatusExpired,
			"QR code has expired. Contact the administrator.", &user.ID)
	}

	// liveness passed, so at least minLivenessFrames frames decoded.
	// The match uses the newest decodable frame even when the final
	// submitted frame was corrupt.
	lastFrame := frames[len(frames)-1]
	if !uc.matcher.Matches(ctx, lastFrame, user.FaceEncoding) {
		return fail(repository.CodeFaceMismatch, StatusFraud,
			"Face does not match the user linked to the QR code.", &user.ID)
	}

	uc.audit(ctx, opLogger, &repository.AccessEvent{
		UserID:    &user.ID,
		Timestamp: timestamp,
		Direction: direction,
		Status:    repository.StatusOK,
		QRCode:    qrCode,
	})
	return VerifyResult{
		Status:  StatusSuccess,
		Message: fmt.Sprintf("User %s verified successfully. Recorded: %s.", user.Name, directionLabel(direction)),
	}
}

// audit appends an event to the ledger. Failures are suppressed so that
// a storage problem never masks the verification decision; the event is
// lost in that case.
func (uc *AccessUseCase) audit(ctx context.Context, opLogger *zap.Logger, event *repository.AccessEvent) {
	if err := uc.repo.SaveEvent(ctx, event); err != nil {
		opLogger.Warn("failed to record audit event", zap.Error(err))
	}
}

// normalizeDirection folds the caller-supplied direction tag: absent
// means IN, anything unrecognized means UNKNOWN.
func normalizeDirection(direction string) string {
	if direction == "" {
		return DirectionIn
	}
	switch strings.ToUpper(direction) {
	case DirectionIn:
		return DirectionIn
	case DirectionOut:
		return DirectionOut
	default:
		return DirectionUnknown
	}
}

func directionLabel(direction string) string {
	switch direction {
	case DirectionIn:
		return "ENTRY"
	case DirectionOut:
		return "EXIT"
	default:
		return "EVENT"
	}
}
