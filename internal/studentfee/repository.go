package studentfee

import (
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrHasPayments rejects deletion of a ledger item money has been applied to.
// Receipts must be voided first so the audit trail stays intact.
var ErrHasPayments = errors.New("fee item has collected payments; void its receipts first")

// Repository encapsulates data access for the fee ledger.
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

func (r *Repository) Create(item *StudentFeeItem) error {
	return r.DB.Create(item).Error
}

func (r *Repository) CreateInBatch(items []*StudentFeeItem) error {
	if len(items) == 0 {
		return nil
	}
	return r.DB.Create(items).Error
}

func (r *Repository) FindByID(id uint) (*StudentFeeItem, error) {
	var item StudentFeeItem
	if err := r.DB.First(&item, id).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

// ListByStudent returns the student's ledger ordered by fee type and serial,
// optionally filtered by academic year.
func (r *Repository) ListByStudent(studentID uint, academicYear string) ([]StudentFeeItem, error) {
	var items []StudentFeeItem
	q := r.DB.Where("student_id = ?", studentID)
	if academicYear != "" {
		q = q.Where("academic_year = ?", academicYear)
	}
	err := q.Order("fee_type_id ASC, serial_number ASC, id ASC").Find(&items).Error
	return items, err
}

// ListByStudentForUpdate is ListByStudent with row-level locks, for use inside
// a payment transaction so two allocations against the same student cannot
// interleave their read-modify-write.
func (r *Repository) ListByStudentForUpdate(studentID uint, academicYear string) ([]StudentFeeItem, error) {
	var items []StudentFeeItem
	q := r.DB.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("student_id = ?", studentID)
	if academicYear != "" {
		q = q.Where("academic_year = ?", academicYear)
	}
	err := q.Order("fee_type_id ASC, serial_number ASC, id ASC").Find(&items).Error
	return items, err
}

// ListByFeeTypeForUpdate locks every ledger row derived from one fee type,
// used by schedule regeneration.
func (r *Repository) ListByFeeTypeForUpdate(feeTypeID uint, academicYear string) ([]StudentFeeItem, error) {
	var items []StudentFeeItem
	q := r.DB.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("fee_type_id = ?", feeTypeID)
	if academicYear != "" {
		q = q.Where("academic_year = ?", academicYear)
	}
	err := q.Order("student_id ASC, serial_number ASC").Find(&items).Error
	return items, err
}

func (r *Repository) Save(item *StudentFeeItem) error {
	return r.DB.Save(item).Error
}

// DeleteByID removes a ledger item. Deletion is only legal while fully
// unpaid; anything else returns ErrHasPayments.
func (r *Repository) DeleteByID(id uint) error {
	var item StudentFeeItem
	if err := r.DB.First(&item, id).Error; err != nil {
		return err
	}
	if item.PaidAmount > 0 {
		return ErrHasPayments
	}
	return r.DB.Delete(&item).Error
}

// HasFeeType reports whether the student already carries any item of the
// given fee type for the year; used to keep structure assignment idempotent.
func (r *Repository) HasFeeType(studentID, feeTypeID uint, academicYear string) (bool, error) {
	var count int64
	q := r.DB.Model(&StudentFeeItem{}).
		Where("student_id = ? AND fee_type_id = ?", studentID, feeTypeID)
	if academicYear != "" {
		q = q.Where("academic_year = ?", academicYear)
	}
	if err := q.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
