package payment

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository encapsulates data access for payment allocations.
type Repository struct {
	DB *gorm.DB
}

// NewRepository returns an initialized repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{DB: db}
}

// WithDB returns a copy of the repo bound to a specific *gorm.DB (e.g. a tx).
func (r *Repository) WithDB(db *gorm.DB) *Repository {
	if db == nil {
		db = r.DB
	}
	return &Repository{DB: db}
}

// CreateInBatch inserts an allocation batch (no-op when empty).
func (r *Repository) CreateInBatch(allocs []*Allocation) error {
	if len(allocs) == 0 {
		return nil
	}
	return r.DB.Create(allocs).Error
}

// ListByStudent returns a student's payment history, newest first.
func (r *Repository) ListByStudent(studentID uint) ([]Allocation, error) {
	var allocs []Allocation
	err := r.DB.
		Where("student_id = ?", studentID).
		Order("payment_date DESC, id DESC").
		Find(&allocs).Error
	return allocs, err
}

// ListByReceipt returns the original (non-reversal) rows of one receipt in
// ledger order.
func (r *Repository) ListByReceipt(receiptNo string) ([]Allocation, error) {
	var allocs []Allocation
	err := r.DB.
		Where("receipt_no = ? AND is_reversal = ?", receiptNo, false).
		Order("fee_type_id ASC, serial_number ASC, id ASC").
		Find(&allocs).Error
	return allocs, err
}

// ReceiptIsVoided reports whether a reversal batch exists for the receipt.
func (r *Repository) ReceiptIsVoided(receiptNo string) (bool, error) {
	var count int64
	err := r.DB.Model(&Allocation{}).
		Where("receipt_no = ? AND is_reversal = ?", receiptNo, true).
		Count(&count).Error
	return count > 0, err
}

// NextReceiptNumber increments the receipt counter for (branch, academic
// year) and returns the stored receipt number plus its per-scope display
// form. Counters restart per scope, so the stored number carries the scope
// ("branch/year/NN") and stays unique across branches and years; receipts
// from different branches can never shadow each other on lookup. Must run
// inside the payment transaction; the sequence row is locked FOR UPDATE so
// numbers are never issued twice.
func (r *Repository) NextReceiptNumber(branch, academicYear string) (string, string, error) {
	if branch == "" {
		branch = "All"
	}
	if academicYear == "" {
		academicYear = "All"
	}

	var seq ReceiptSequence
	err := r.DB.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("branch = ? AND academic_year = ?", branch, academicYear).
		First(&seq).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		seq = ReceiptSequence{Branch: branch, AcademicYear: academicYear}
		if err := r.DB.Create(&seq).Error; err != nil {
			return "", "", err
		}
	} else if err != nil {
		return "", "", err
	}

	seq.LastReceiptNo++
	if err := r.DB.Save(&seq).Error; err != nil {
		return "", "", err
	}
	display := fmt.Sprintf("%02d", seq.LastReceiptNo)
	return branch + "/" + academicYear + "/" + display, display, nil
}
