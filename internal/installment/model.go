package installment

import (
	"time"

	"gorm.io/gorm"
)

// Definition is one scheduled installment of an installment-kind fee type.
// Number is 1-based and defines payment order; Amount is the per-period
// share produced by the schedule generator.
type Definition struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deletedAt,omitempty"`

	FeeTypeID uint   `gorm:"not null;index" json:"feeTypeId"`
	Number    int    `gorm:"not null" json:"number"`
	Title     string `gorm:"size:100;not null" json:"title"`
	Amount    int64  `gorm:"not null;default:0" json:"amount"`

	// LastPayDate is the concession cutoff carried onto derived ledger rows.
	LastPayDate *time.Time `gorm:"type:date" json:"lastPayDate,omitempty"`

	Branch       string `gorm:"size:50" json:"branch"`
	AcademicYear string `gorm:"size:20;index" json:"academicYear"`
}

// Migrate creates the table in the database.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&Definition{})
}
