package programs

import (
	"time"

	"gorm.io/gorm"
)

// Inspection types
const (
	TypeRegular = "regular"
	TypeSpecial = "special"
)

// Program statuses
const (
	StatusPlanning   = "planning"
	StatusInProgress = "in-progress"
	StatusCompleted  = "completed"
)

var (
	InspectionTypes = []string{TypeRegular, TypeSpecial}
	Statuses        = []string{StatusPlanning, StatusInProgress, StatusCompleted}
)

// ProgramModel is an audit/inspection program record (PKPT).
// Code is generated at creation and never updated. ResponsibleUnit drives
// operator visibility and is forced to the creator's unit for operators.
// Secret programs never appear in the public feed regardless of the publish
// flag, and only admins may set or change IsSecret.
type ProgramModel struct {
	ID               uint      `gorm:"primaryKey" json:"id"`
	Code             string    `gorm:"uniqueIndex;not null" json:"code"`
	ActivityName     string    `gorm:"not null" json:"activity_name"`
	ResponsibleUnit  string    `gorm:"index" json:"responsible_unit"`
	InspectionObject string    `gorm:"not null" json:"inspection_object"`
	InspectionType   string    `gorm:"not null" json:"inspection_type"`
	StartDate        string    `gorm:"not null" json:"start_date"`
	EndDate          string    `gorm:"not null" json:"end_date"`
	Status           string    `gorm:"not null" json:"status"`
	ProgressPercent  int       `gorm:"default:0" json:"progress_percent"`
	IsPublished      bool      `json:"is_published"`
	IsSecret         bool      `json:"is_secret"`
	CreatedByID      string    `gorm:"not null;index" json:"created_by_id"`
	CreatedAt        time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt        time.Time `gorm:"not null" json:"updated_at"`
}

func (ProgramModel) TableName() string {
	return "pkpt_programs"
}

// AutoMigrate creates the programs table
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&ProgramModel{})
}
