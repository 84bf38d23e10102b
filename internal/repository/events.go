package repository

import (
	"context"
	"time"
)

// SaveEvent appends an event to the audit log.
func (r *AccessRepository) SaveEvent(ctx context.Context, event *AccessEvent) error {
	return r.executeWithRetry(ctx, "repository.save_event", "", func() error {
		return r.db.WithContext(ctx).Create(event).Error
	})
}

// ListEvents returns audit events within the inclusive [start, end]
// window, optionally filtered by status. Results are ordered newest
// first; equal timestamps break ties by larger id first.
func (r *AccessRepository) ListEvents(ctx context.Context, start, end *time.Time, status string) ([]*AccessEvent, error) {
	query := r.db.WithContext(ctx).Model(&AccessEvent{})
	if start != nil {
		query = query.Where("timestamp >= ?", *start)
	}
	if end != nil {
		query = query.Where("timestamp <= ?", *end)
	}
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var events []*AccessEvent
	if err := query.Order("timestamp DESC, id DESC").Find(&events).Error; err != nil {
		return nil, err
	}
	return events, nil
}

// FindEventByID retrieves a single audit event by primary key.
func (r *AccessRepository) FindEventByID(ctx context.Context, id uint) (*AccessEvent, error) {
	var event AccessEvent
	if err := r.db.WithContext(ctx).First(&event, id).Error; err != nil {
		return nil, err
	}
	return &event, nil
}
