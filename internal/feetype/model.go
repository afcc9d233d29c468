package feetype

import (
	"time"

	"gorm.io/gorm"
)

// Fee type kinds. Installment fees carry a schedule; one-time fees are a
// single charge with no serial ordering.
const (
	KindInstallment = "Installment"
	KindOneTime     = "OneTime"
)

// FeeType is administrator-created reference data (e.g. Tuition, Transport).
type FeeType struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deletedAt,omitempty"`

	Name         string `gorm:"size:100;not null" json:"name"`
	DisplayName  string `gorm:"size:100" json:"displayName"`
	Category     string `gorm:"size:50" json:"category"`
	Kind         string `gorm:"size:50;not null;default:'Installment'" json:"kind"`
	IsRefundable bool   `gorm:"not null;default:false" json:"isRefundable"`
	Description  string `gorm:"size:255" json:"description"`

	Branch       string `gorm:"size:50" json:"branch"`
	AcademicYear string `gorm:"size:20;index" json:"academicYear"`
}

// Migrate creates the table in the database.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&FeeType{})
}

// IsInstallment reports whether items of this type carry a serial order.
func (f *FeeType) IsInstallment() bool {
	return f.Kind == KindInstallment
}
