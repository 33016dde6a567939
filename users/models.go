package users

import (
	"time"

	"gorm.io/gorm"
)

// UserModel represents an account in the user directory.
// Role is 'admin' or 'operator'; Unit is set only for operators and names the
// organizational unit the operator is scoped to (irban1, irban2, ...).
type UserModel struct {
	ID        string    `gorm:"primaryKey;type:text" json:"id"`
	Username  string    `gorm:"uniqueIndex;not null" json:"username"`
	Name      string    `gorm:"not null" json:"name"`
	Role      string    `gorm:"not null;default:'operator'" json:"role"`
	Unit      string    `json:"unit"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

// AccountModel is the credential record linked to a user. A user without a
// credential account cannot log in, so provisioning always writes both rows.
type AccountModel struct {
	ID           string    `gorm:"primaryKey;type:text" json:"id"`
	UserID       string    `gorm:"not null;index" json:"user_id"`
	Provider     string    `gorm:"not null" json:"provider"`
	PasswordHash string    `gorm:"not null" json:"-"`
	CreatedAt    time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt    time.Time `gorm:"not null" json:"updated_at"`
}

func (UserModel) TableName() string {
	return "users"
}

func (AccountModel) TableName() string {
	return "accounts"
}

// AutoMigrate creates the users and accounts tables
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&UserModel{}, &AccountModel{})
}

// CountAdmins returns the number of admin-role users
func CountAdmins(db *gorm.DB) (int64, error) {
	var count int64
	err := db.Model(&UserModel{}).Where("role = ?", "admin").Count(&count).Error
	return count, err
}
