package student

import (
	"gorm.io/gorm"
)

type Repository interface {
	Save(db *gorm.DB, s *Student) error
	FindByID(db *gorm.DB, id uint) (*Student, error)
	FindByIDWithFees(db *gorm.DB, id uint) (*Student, error)
	List(db *gorm.DB, class, branch, academicYear string) ([]Student, error)
	ListByClass(db *gorm.DB, class, branch, academicYear string) ([]Student, error)
	Update(db *gorm.DB, id uint, changes *Student) error
	Delete(db *gorm.DB, id uint) error
}

type repositoryImpl struct{}

func NewRepository() Repository {
	return &repositoryImpl{}
}

func (r *repositoryImpl) Save(db *gorm.DB, s *Student) error {
	return db.Save(s).Error
}

func (r *repositoryImpl) FindByID(db *gorm.DB, id uint) (*Student, error) {
	var s Student
	if err := db.First(&s, id).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

// FindByIDWithFees preloads the ledger ordered by fee type and serial.
func (r *repositoryImpl) FindByIDWithFees(db *gorm.DB, id uint) (*Student, error) {
	var s Student
	err := db.Preload("FeeItems", func(db *gorm.DB) *gorm.DB {
		return db.Order("fee_type_id ASC, serial_number ASC, id ASC")
	}).First(&s, id).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *repositoryImpl) List(db *gorm.DB, class, branch, academicYear string) ([]Student, error) {
	var students []Student
	q := db.Where("is_active = ?", true).Order("class ASC, first_name ASC")
	if class != "" {
		q = q.Where("class = ?", class)
	}
	if branch != "" && branch != "All" {
		q = q.Where("branch = ?", branch)
	}
	if academicYear != "" {
		q = q.Where("academic_year = ?", academicYear)
	}
	err := q.Find(&students).Error
	return students, err
}

// ListByClass is the assignment-side variant: every active student a class
// fee structure applies to.
func (r *repositoryImpl) ListByClass(db *gorm.DB, class, branch, academicYear string) ([]Student, error) {
	return r.List(db, class, branch, academicYear)
}

func (r *repositoryImpl) Update(db *gorm.DB, id uint, changes *Student) error {
	var existing Student
	if err := db.First(&existing, id).Error; err != nil {
		return err
	}

	existing.AdmissionNo = changes.AdmissionNo
	existing.FirstName = changes.FirstName
	existing.LastName = changes.LastName
	existing.Class = changes.Class
	existing.Section = changes.Section
	existing.FatherName = changes.FatherName
	existing.Phone = changes.Phone
	existing.IsActive = changes.IsActive
	existing.Branch = changes.Branch
	existing.AcademicYear = changes.AcademicYear

	return db.Save(&existing).Error
}

func (r *repositoryImpl) Delete(db *gorm.DB, id uint) error {
	return db.Delete(&Student{}, id).Error
}
