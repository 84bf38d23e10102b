package usecase

import (
	"context"

	"golang.org/x/crypto/bcrypt"
)

const minAdminPasswordLength = 8

// SetupAdmin stores the initial admin password. It refuses to overwrite
// an existing credential; password changes are out of band.
func (uc *AccessUseCase) SetupAdmin(ctx context.Context, password string) error {
	if len(password) < minAdminPasswordLength {
		return &ValidationError{Message: "password must be at least 8 characters"}
	}

	existing, err := uc.repo.GetAdminPasswordHash(ctx)
	if err != nil {
		return err
	}
	if existing != "" {
		return &ValidationError{Message: "admin password is already set"}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	return uc.repo.SetAdminPasswordHash(ctx, string(hash))
}

// CheckAdminPassword validates an admin login attempt.
func (uc *AccessUseCase) CheckAdminPassword(ctx context.Context, password string) error {
	hash, err := uc.repo.GetAdminPasswordHash(ctx)
	if err != nil {
		return err
	}
	if hash == "" {
		return &ValidationError{Message: "admin password has not been set up"}
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return ErrInvalidCredentials
	}
	return nil
}

// AdminConfigured reports whether the initial admin password exists.
func (uc *AccessUseCase) AdminConfigured(ctx context.Context) (bool, error) {
	hash, err := uc.repo.GetAdminPasswordHash(ctx)
	if err != nil {
		return false, err
	}
	return hash != "", nil
}
