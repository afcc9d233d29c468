package installment

import (
	"gorm.io/gorm"
)

// Repository encapsulates data access for installment definitions.
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

// CreateInBatch creates multiple definitions at once (no-op when empty).
func (r *Repository) CreateInBatch(defs []*Definition) error {
	if len(defs) == 0 {
		return nil
	}
	return r.DB.Create(defs).Error
}

// ListByFeeType returns a fee type's definitions in payment order.
func (r *Repository) ListByFeeType(feeTypeID uint, academicYear string) ([]Definition, error) {
	var defs []Definition
	q := r.DB.Where("fee_type_id = ?", feeTypeID)
	if academicYear != "" {
		q = q.Where("academic_year = ?", academicYear)
	}
	err := q.Order("number ASC").Find(&defs).Error
	return defs, err
}

// DeleteByFeeType removes all of a fee type's definitions; used when a
// schedule is regenerated wholesale.
func (r *Repository) DeleteByFeeType(feeTypeID uint, academicYear string) error {
	q := r.DB.Where("fee_type_id = ?", feeTypeID)
	if academicYear != "" {
		q = q.Where("academic_year = ?", academicYear)
	}
	return q.Delete(&Definition{}).Error
}
