package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/example/facegate/internal/repository"
)

// ErrUserNotFound signals that no enrolled user holds the presented QR code.
var ErrUserNotFound = errors.New("user not found")

const userCacheTTL = 5 * time.Minute

// expiry values are stored as ISO text; both offset and local forms are
// accepted when checking.
var expiryLayouts = []string{time.RFC3339, "2006-01-02T15:04:05"}

// CredentialResolver maps a scanned QR code to an enrolled user and
// checks credential expiry. Lookups read through the cache; cache
// failures are logged and fall back to the database.
type CredentialResolver struct {
	repo   Repository
	cache  Cache
	logger *zap.Logger
	now    func() time.Time
}

// NewCredentialResolver constructs a resolver.
func NewCredentialResolver(repo Repository, cache Cache, logger *zap.Logger) *CredentialResolver {
	return &CredentialResolver{
		repo:   repo,
		cache:  cache,
		logger: logger.Named("resolver"),
		now:    time.Now,
	}
}

type cachedUser struct {
	ID           uint    `json:"id"`
	Name         string  `json:"name"`
	QRCode       string  `json:"qr_code"`
	FaceEncoding string  `json:"face_encoding"`
	QRExpiresAt  *string `json:"qr_expires_at"`
}

// Resolve returns the user holding qrCode and whether their credential
// has expired. Expiry uses a strict comparison: a credential is expired
// only when the current instant is after the stored instant. A stored
// expiry that fails to parse does not block verification.
func (r *CredentialResolver) Resolve(ctx context.Context, qrCode string) (*repository.User, bool, error) {
	user, err := r.lookup(ctx, qrCode)
	if err != nil {
		return nil, false, err
	}

	if user.QRExpiresAt != nil && *user.QRExpiresAt != "" {
		if expiresAt, ok := parseExpiry(*user.QRExpiresAt); ok {
			if r.now().UTC().After(expiresAt) {
				return user, true, nil
			}
		} else {
			r.logger.Warn("unparseable expiry value, not blocking verification",
				zap.Uint("user_id", user.ID), zap.String("qr_expires_at", *user.QRExpiresAt))
		}
	}

	return user, false, nil
}

func (r *CredentialResolver) lookup(ctx context.Context, qrCode string) (*repository.User, error) {
	cacheKey := userCacheKey(qrCode)
	if cached, err := r.cache.Get(ctx, cacheKey); err == nil {
		var payload cachedUser
		if err := json.Unmarshal([]byte(cached), &payload); err != nil {
			r.logger.Warn("failed to decode cached user", zap.Error(err))
		} else {
			return &repository.User{
				ID:           payload.ID,
				Name:         payload.Name,
				QRCode:       payload.QRCode,
				FaceEncoding: payload.FaceEncoding,
				QRExpiresAt:  payload.QRExpiresAt,
			}, nil
		}
	} else if !errors.Is(err, redis.Nil) {
		r.logger.Warn("failed to read user cache", zap.Error(err))
	}

	user, err := r.repo.FindUserByQR(ctx, qrCode)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}

	r.cacheUser(ctx, user)
	return user, nil
}

// cacheUser stores the user payload; failures only log since the cache
// is an optimization, not a source of truth.
func (r *CredentialResolver) cacheUser(ctx context.Context, user *repository.User) {
	payload := cachedUser{
		ID:           user.ID,
		Name:         user.Name,
		QRCode:       user.QRCode,
		FaceEncoding: user.FaceEncoding,
		QRExpiresAt:  user.QRExpiresAt,
	}
	serialized, err := json.Marshal(payload)
	if err != nil {
		r.logger.Warn("failed to serialize user for cache", zap.Error(err))
		return
	}
	if err := r.cache.Set(ctx, userCacheKey(user.QRCode), string(serialized), userCacheTTL); err != nil {
		r.logger.Warn("failed to cache user", zap.Error(err))
	}
}

func userCacheKey(qrCode string) string {
	return fmt.Sprintf("user:qr:%s", qrCode)
}

func parseExpiry(value string) (time.Time, bool) {
	for _, layout := range expiryLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}
