package feetype

import (
	"gorm.io/gorm"
)

// Repository encapsulates data access for fee types.
type Repository struct {
	DB *gorm.DB
}

// NewRepository returns an initialized repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{DB: db}
}

func (r *Repository) Create(f *FeeType) error {
	return r.DB.Create(f).Error
}

func (r *Repository) FindByID(id uint) (*FeeType, error) {
	var f FeeType
	if err := r.DB.First(&f, id).Error; err != nil {
		return nil, err
	}
	return &f, nil
}

// List returns fee types, optionally filtered by academic year.
func (r *Repository) List(academicYear string) ([]FeeType, error) {
	var types []FeeType
	q := r.DB.Order("name ASC")
	if academicYear != "" {
		q = q.Where("academic_year = ?", academicYear)
	}
	err := q.Find(&types).Error
	return types, err
}

func (r *Repository) Update(f *FeeType) error {
	return r.DB.Save(f).Error
}

// DeleteByID removes the fee type; returns gorm.ErrRecordNotFound if nothing was deleted.
func (r *Repository) DeleteByID(id uint) error {
	res := r.DB.Delete(&FeeType{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
