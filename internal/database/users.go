package database

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// ErrInvalidCredentials is returned by Authenticate for any mismatch
var ErrInvalidCredentials = errors.New("invalid credentials")

// SetPassword stores a bcrypt hash of password
func (u *User) SetPassword(password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	u.PasswordHash = string(hash)
	return nil
}

func (u *User) CheckPassword(password string) bool {
	if u.PasswordHash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) == nil
}

// Authenticate finds an active user by first name, ignoring case, and checks the password
func Authenticate(ctx context.Context, db *gorm.DB, firstName, password string) (*User, error) {
	var user User
	err := db.WithContext(ctx).
		Where("LOWER(first_name) = ? AND is_deleted = ?", strings.ToLower(strings.TrimSpace(firstName)), false).
		First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	if !user.CheckPassword(password) {
		return nil, ErrInvalidCredentials
	}
	return &user, nil
}

// FindOwner returns the first user with the owner role
func FindOwner(ctx context.Context, db *gorm.DB) (*User, error) {
	var owner User
	if err := db.WithContext(ctx).Where("role = ?", "owner").Order("id").First(&owner).Error; err != nil {
		return nil, err
	}
	return &owner, nil
}
