package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

const adminSettingID = 1

// GetAdminPasswordHash returns the stored admin password hash, or an
// empty string when no admin password has been set up yet.
func (r *AccessRepository) GetAdminPasswordHash(ctx context.Context) (string, error) {
	var setting AdminSetting
	err := r.db.WithContext(ctx).First(&setting, adminSettingID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return setting.PasswordHash, nil
}

// SetAdminPasswordHash stores the admin password hash.
func (r *AccessRepository) SetAdminPasswordHash(ctx context.Context, hash string) error {
	setting := AdminSetting{ID: adminSettingID, PasswordHash: hash}
	return r.db.WithContext(ctx).Save(&setting).Error
}
