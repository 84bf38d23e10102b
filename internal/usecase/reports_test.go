package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/example/facegate/internal/repository"
)

func TestListEventsExpandsDateRange(t *testing.T) {
	repo := &stubRepository{}
	uc := newTestUseCase(repo, &stubCache{}, &stubProvider{})

	if _, err := uc.ListEvents(context.Background(), "2024-03-01", "2024-03-02", ""); err != nil {
		t.Fatalf("expected success, got error: %v", err)
	}

	wantStart := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	wantEnd := time.Date(2024, 3, 2, 23, 59, 59, 0, time.UTC)
	if repo.listStart == nil || !repo.listStart.Equal(wantStart) {
		t.Fatalf("expected start %v, got %v", wantStart, repo.listStart)
	}
	if repo.listEnd == nil || !repo.listEnd.Equal(wantEnd) {
		t.Fatalf("expected end %v, got %v", wantEnd, repo.listEnd)
	}
}

func TestListEventsOpenRange(t *testing.T) {
	repo := &stubRepository{}
	uc := newTestUseCase(repo, &stubCache{}, &stubProvider{})

	if _, err := uc.ListEvents(context.Background(), "", "", repository.StatusFail); err != nil {
		t.Fatalf("expected success, got error: %v", err)
	}
	if repo.listStart != nil || repo.listEnd != nil {
		t.Fatal("expected open-ended range")
	}
	if repo.listStatus != repository.StatusFail {
		t.Fatalf("expected status filter %s, got %s", repository.StatusFail, repo.listStatus)
	}
}

func TestListEventsRejectsBadInput(t *testing.T) {
	uc := newTestUseCase(&stubRepository{}, &stubCache{}, &stubProvider{})

	tests := []struct {
		name   string
		start  string
		end    string
		status string
	}{
		{"bad start date", "01.03.2024", "", ""},
		{"bad end date", "", "yesterday", ""},
		{"bad status", "", "", "MAYBE"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := uc.ListEvents(context.Background(), tc.start, tc.end, tc.status)
			var validationErr *ValidationError
			if !errors.As(err, &validationErr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
		})
	}
}

func TestEventImageDecodesEvidence(t *testing.T) {
	evidence := "data:image/png;base64," + b64Frame("png-bytes")
	repo := &stubRepository{eventByID: &repository.AccessEvent{ID: 1, AttemptImage: &evidence}}
	uc := newTestUseCase(repo, &stubCache{}, &stubProvider{})

	mime, data, err := uc.EventImage(context.Background(), 1)
	if err != nil {
		t.Fatalf("expected success, got error: %v", err)
	}
	if mime != "image/png" {
		t.Fatalf("expected image/png, got %s", mime)
	}
	if string(data) != "png-bytes" {
		t.Fatalf("unexpected image bytes %q", data)
	}
}

func TestEventImageWithoutEvidence(t *testing.T) {
	repo := &stubRepository{eventByID: &repository.AccessEvent{ID: 1}}
	uc := newTestUseCase(repo, &stubCache{}, &stubProvider{})

	_, _, err := uc.EventImage(context.Background(), 1)
	if !errors.Is(err, ErrNoEvidence) {
		t.Fatalf("expected ErrNoEvidence, got %v", err)
	}
}

func TestEventImageUnknownEvent(t *testing.T) {
	uc := newTestUseCase(&stubRepository{}, &stubCache{}, &stubProvider{})

	_, _, err := uc.EventImage(context.Background(), 42)
	if !IsNotFound(err) {
		t.Fatalf("expected not-found error, got %v", err)
	}
}
