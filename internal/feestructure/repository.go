package feestructure

import (
	"gorm.io/gorm"
)

// Repository encapsulates data access for class fee structures.
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

func (r *Repository) Create(s *ClassFeeStructure) error {
	return r.DB.Create(s).Error
}

// List returns assignments, optionally filtered by class and academic year.
func (r *Repository) List(class, academicYear string) ([]ClassFeeStructure, error) {
	var structures []ClassFeeStructure
	q := r.DB.Order("created_at DESC")
	if class != "" {
		q = q.Where("class = ?", class)
	}
	if academicYear != "" {
		q = q.Where("academic_year = ?", academicYear)
	}
	err := q.Find(&structures).Error
	return structures, err
}
