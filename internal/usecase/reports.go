package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/example/facegate/internal/imageutil"
	"github.com/example/facegate/internal/repository"
)

const reportDateLayout = "2006-01-02"

// ListEvents returns audit events for the optional [startDate, endDate]
// calendar range, expanded to start-of-day and end-of-day instants, and
// the optional status filter (OK or FAIL). Ordering is newest first.
func (uc *AccessUseCase) ListEvents(ctx context.Context, startDate, endDate, status string) ([]*repository.AccessEvent, error) {
	var start, end *time.Time

	if startDate != "" {
		t, err := time.Parse(reportDateLayout, startDate)
		if err != nil {
			return nil, &ValidationError{Message: fmt.Sprintf("invalid start date %q", startDate)}
		}
		s := t.UTC()
		start = &s
	}
	if endDate != "" {
		t, err := time.Parse(reportDateLayout, endDate)
		if err != nil {
			return nil, &ValidationError{Message: fmt.Sprintf("invalid end date %q", endDate)}
		}
		e := t.UTC().Add(24*time.Hour - time.Second)
		end = &e
	}

	switch status {
	case "", repository.StatusOK, repository.StatusFail:
	default:
		return nil, &ValidationError{Message: fmt.Sprintf("invalid status %q", status)}
	}

	return uc.repo.ListEvents(ctx, start, end, status)
}

// EventImage returns the evidence image attached to a failed event,
// decoded to MIME type and raw bytes.
func (uc *AccessUseCase) EventImage(ctx context.Context, eventID uint) (string, []byte, error) {
	event, err := uc.repo.FindEventByID(ctx, eventID)
	if err != nil {
		return "", nil, err
	}
	if event.AttemptImage == nil || *event.AttemptImage == "" {
		return "", nil, ErrNoEvidence
	}
	return imageutil.DecodeDataURL(*event.AttemptImage)
}

// ListUsers returns all enrolled users.
func (uc *AccessUseCase) ListUsers(ctx context.Context) ([]*repository.User, error) {
	return uc.repo.ListUsers(ctx)
}

// UserQRPayload returns the QR payload string for an enrolled user, for
// rendering by an external QR generator.
func (uc *AccessUseCase) UserQRPayload(ctx context.Context, userID uint) (string, error) {
	user, err := uc.repo.FindUserByID(ctx, userID)
	if err != nil {
		return "", err
	}
	if user.QRCode == "" {
		return repository.QRCodeForUserID(user.ID), nil
	}
	return user.QRCode, nil
}

// IsNotFound reports whether err is a missing-record error from the store.
func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
