package student

import (
	"time"

	"github.com/VidyaERP/api-fees/internal/studentfee"
	"gorm.io/gorm"
)

// Student owns its fee ledger rows. Branch and academic year are carried as
// plain filters; branch selection itself is out of scope here.
type Student struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deletedAt,omitempty"`

	AdmissionNo string `gorm:"size:50;uniqueIndex" json:"admissionNo"`
	FirstName   string `gorm:"size:100;not null" json:"firstName"`
	LastName    string `gorm:"size:100" json:"lastName"`
	Class       string `gorm:"size:50;index" json:"class"`
	Section     string `gorm:"size:20" json:"section"`
	FatherName  string `gorm:"size:100" json:"fatherName"`
	Phone       string `gorm:"size:20" json:"phone"`
	IsActive    bool   `gorm:"not null;default:true" json:"isActive"`

	Branch       string `gorm:"size:50;index" json:"branch"`
	AcademicYear string `gorm:"size:20;index" json:"academicYear"`

	FeeItems []studentfee.StudentFeeItem `gorm:"foreignKey:StudentID" json:"feeItems,omitempty"`
}

// Migrate creates the table in the database.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&Student{})
}

// FullName joins first and last name for receipt snapshots.
func (s *Student) FullName() string {
	if s.LastName == "" {
		return s.FirstName
	}
	return s.FirstName + " " + s.LastName
}
