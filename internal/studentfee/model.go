package studentfee

import (
	"time"

	"gorm.io/gorm"
)

// Ledger item states. Transitions are monotonic Unpaid → Partial → Paid;
// the only way back is a reversal batch that recomputes from the new totals.
const (
	StatusUnpaid  = "Unpaid"
	StatusPartial = "Partial"
	StatusPaid    = "Paid"
)

// StudentFeeItem is one ledger row per (student, fee type, installment).
// Amounts are whole currency units. DueAmount is always
// GrossPayable - ConcessionAmount - PaidAmount, clamped at zero.
type StudentFeeItem struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deletedAt,omitempty"`

	StudentID uint `gorm:"not null;index" json:"studentId"`
	FeeTypeID uint `gorm:"not null;index" json:"feeTypeId"`

	// SerialNumber orders installments within one fee type, 1-based and
	// gap-free. Zero for one-time fees.
	SerialNumber int    `gorm:"not null;default:0;index" json:"serialNumber"`
	Title        string `gorm:"size:100;not null" json:"title"`

	GrossPayable     int64 `gorm:"not null;default:0" json:"grossPayable"`
	ConcessionAmount int64 `gorm:"not null;default:0" json:"concessionAmount"`
	PaidAmount       int64 `gorm:"not null;default:0" json:"paidAmount"`
	DueAmount        int64 `gorm:"not null;default:0" json:"dueAmount"`

	DueDate *time.Time `gorm:"type:date" json:"dueDate,omitempty"`
	Status  string     `gorm:"size:20;not null;default:'Unpaid';index" json:"status"`

	AcademicYear string `gorm:"size:20;index" json:"academicYear"`
}

// Migrate creates the table in the database.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&StudentFeeItem{})
}

// Recompute derives DueAmount and Status from the amount fields.
// Due is clamped at zero so over-application can never go negative.
func (i *StudentFeeItem) Recompute() {
	due := i.GrossPayable - i.ConcessionAmount - i.PaidAmount
	if due < 0 {
		due = 0
	}
	i.DueAmount = due

	switch {
	case i.DueAmount <= 0:
		i.Status = StatusPaid
	case i.PaidAmount > 0:
		i.Status = StatusPartial
	default:
		i.Status = StatusUnpaid
	}
}

// Outstanding is the base a concession is computed against: the remaining
// due when something is still open, otherwise the gross payable.
func (i *StudentFeeItem) Outstanding() int64 {
	if i.DueAmount > 0 {
		return i.DueAmount
	}
	return i.GrossPayable
}
