package payment

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Allocation is the portion of one payment applied to one ledger item. A
// single payment action produces one receipt number and a batch of
// allocations sharing a BatchID. Rows are never updated or deleted: voiding
// a receipt inserts a mirror batch with negated amounts (IsReversal).
type Allocation struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"createdAt"`

	BatchID   uuid.UUID `gorm:"type:uuid;not null;index" json:"batchId"`
	ReceiptNo string    `gorm:"size:50;not null;index" json:"receiptNo"`

	StudentID        uint `gorm:"not null;index" json:"studentId"`
	StudentFeeItemID uint `gorm:"not null;index" json:"studentFeeItemId"`

	// Snapshot of the ledger item at write time. SerialNumber is persisted
	// here so receipts can be regrouped later without re-deriving order from
	// titles.
	FeeTypeID        uint   `gorm:"not null;index" json:"feeTypeId"`
	FeeTypeName      string `gorm:"size:100" json:"feeTypeName"`
	SerialNumber     int    `gorm:"not null;default:0" json:"serialNumber"`
	InstallmentTitle string `gorm:"size:100" json:"installmentTitle"`

	GrossAmount       int64 `gorm:"not null;default:0" json:"grossAmount"`
	ConcessionApplied int64 `gorm:"not null;default:0" json:"concessionApplied"`
	AmountPaid        int64 `gorm:"not null;default:0" json:"amountPaid"`
	DueAfter          int64 `gorm:"not null;default:0" json:"dueAfter"`

	ConcessionTemplateID *uint `gorm:"index" json:"concessionTemplateId,omitempty"`

	PaymentMode    string    `gorm:"size:50" json:"paymentMode"`
	PaymentDate    time.Time `gorm:"type:date;not null" json:"paymentDate"`
	Note           string    `gorm:"size:255" json:"note"`
	TransactionRef string    `gorm:"size:100" json:"transactionRef"`

	CollectedBy     uint   `json:"collectedBy"`
	CollectedByName string `gorm:"size:100" json:"collectedByName"`

	IsReversal bool `gorm:"not null;default:false;index" json:"isReversal"`
}

// TableName pins the table; other packages reference it by name to avoid
// importing this package inside their own queries.
func (Allocation) TableName() string {
	return "payment_allocations"
}

// DisplayNumber extracts the per-scope sequence portion of a stored receipt
// number ("branch/year/NN" -> "NN"). Printed receipts show this short form.
func DisplayNumber(receiptNo string) string {
	if i := strings.LastIndexByte(receiptNo, '/'); i >= 0 {
		return receiptNo[i+1:]
	}
	return receiptNo
}

// ReceiptSequence issues receipt numbers per (branch, academic year). The
// row is read FOR UPDATE inside the payment transaction, so concurrent
// payments cannot mint the same number.
type ReceiptSequence struct {
	ID            uint   `gorm:"primaryKey" json:"id"`
	Branch        string `gorm:"size:50;not null;uniqueIndex:uniq_branch_year" json:"branch"`
	AcademicYear  string `gorm:"size:20;not null;uniqueIndex:uniq_branch_year" json:"academicYear"`
	LastReceiptNo int    `gorm:"not null;default:0" json:"lastReceiptNo"`
}

// Migrate creates the tables in the database.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&Allocation{}, &ReceiptSequence{})
}
