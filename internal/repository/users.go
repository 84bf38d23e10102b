package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CreateUser persists a new identity and assigns its QR code in two
// phases: the row is first inserted with a random placeholder so the
// unique constraint cannot collide, then the final code is derived from
// the assigned id and written back. Both steps run in one transaction.
// On success user.ID and user.QRCode carry the final values.
func (r *AccessRepository) CreateUser(ctx context.Context, user *User) error {
	return r.executeWithRetry(ctx, "repository.create_user", "", func() error {
		return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			user.QRCode = uuid.NewString()
			if err := tx.Create(user).Error; err != nil {
				return err
			}

			finalCode := QRCodeForUserID(user.ID)
			if err := tx.Model(user).Update("qr_code", finalCode).Error; err != nil {
				return err
			}
			user.QRCode = finalCode
			return nil
		})
	})
}

// QRCodeForUserID derives the permanent QR payload from an assigned user id.
func QRCodeForUserID(id uint) string {
	return fmt.Sprintf("EMP:%d", id)
}

// FindUserByQR retrieves the user holding the given QR code.
func (r *AccessRepository) FindUserByQR(ctx context.Context, qrCode string) (*User, error) {
	var user User
	if err := r.db.WithContext(ctx).First(&user, "qr_code = ?", qrCode).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindUserByID retrieves a user by primary key.
func (r *AccessRepository) FindUserByID(ctx context.Context, id uint) (*User, error) {
	var user User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// ListUsers returns all enrolled users, newest first.
func (r *AccessRepository) ListUsers(ctx context.Context) ([]*User, error) {
	var users []*User
	if err := r.db.WithContext(ctx).Order("id DESC").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}
