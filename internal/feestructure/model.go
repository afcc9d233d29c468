package feestructure

import (
	"time"

	"gorm.io/gorm"
)

// ClassFeeStructure records one bulk assignment of a fee type to a class.
// The derived ledger rows live in student_fee_items; this row is the audit
// trail of who got assigned what, and when.
type ClassFeeStructure struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deletedAt,omitempty"`

	FeeTypeID uint   `gorm:"not null;index" json:"feeTypeId"`
	Class     string `gorm:"size:50;not null;index" json:"class"`

	TotalAmount      int64 `gorm:"not null;default:0" json:"totalAmount"`
	InstallmentCount int   `gorm:"not null;default:0" json:"installmentCount"`

	AssignedCount int `gorm:"not null;default:0" json:"assignedCount"`
	SkippedCount  int `gorm:"not null;default:0" json:"skippedCount"`

	Branch       string `gorm:"size:50" json:"branch"`
	AcademicYear string `gorm:"size:20;index" json:"academicYear"`
}

// Migrate creates the table in the database.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&ClassFeeStructure{})
}
