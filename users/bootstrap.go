package users

import (
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"simop-pkpt/auth"
)

// EnsureAdmin bootstraps the first admin account when the directory has none.
// The system invariant requires at least one admin to exist at all times, and
// a user row without a credential account cannot log in, so both rows are
// written together.
func EnsureAdmin(db *gorm.DB, username, password string) error {
	adminCount, err := CountAdmins(db)
	if err != nil {
		return fmt.Errorf("count admins: %w", err)
	}
	if adminCount > 0 {
		return nil
	}

	if username == "" || password == "" {
		return fmt.Errorf("no admin account exists and ADMIN_USERNAME/ADMIN_PASSWORD are not set")
	}

	passwordHash, err := auth.HashPassword(password)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}

	now := time.Now()
	admin := UserModel{
		ID:        uuid.New().String(),
		Username:  username,
		Name:      "Administrator",
		Role:      string(auth.RoleAdmin),
		CreatedAt: now,
		UpdatedAt: now,
	}
	account := AccountModel{
		ID:           uuid.New().String(),
		UserID:       admin.ID,
		Provider:     auth.CredentialProvider,
		PasswordHash: passwordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&admin).Error; err != nil {
			return err
		}
		return tx.Create(&account).Error
	})
	if err != nil {
		return fmt.Errorf("create bootstrap admin: %w", err)
	}

	log.Printf("Bootstrapped admin account %q", username)
	return nil
}
