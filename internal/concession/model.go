package concession

import (
	"time"

	"gorm.io/gorm"
)

// Template is a named concession (e.g. "Sibling Discount"). IsPercentage
// selects how each rule's Value is read: percentage of the outstanding
// amount, or a flat currency amount. Templates referenced by payments are
// immutable so historical concessions stay reconstructable.
type Template struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deletedAt,omitempty"`

	Title        string `gorm:"size:100;not null" json:"title"`
	Description  string `gorm:"size:255" json:"description"`
	IsPercentage bool   `gorm:"not null;default:true" json:"isPercentage"`

	Branch       string `gorm:"size:50" json:"branch"`
	AcademicYear string `gorm:"size:20;index" json:"academicYear"`

	Rules []Rule `gorm:"foreignKey:TemplateID;constraint:OnDelete:CASCADE" json:"rules"`
}

// Rule binds a template to one fee type. Value is a percentage (0-100) or a
// flat amount depending on the template's IsPercentage flag.
type Rule struct {
	ID         uint    `gorm:"primaryKey" json:"id"`
	TemplateID uint    `gorm:"not null;index" json:"templateId"`
	FeeTypeID  uint    `gorm:"not null;index" json:"feeTypeId"`
	Value      float64 `gorm:"not null;default:0" json:"value"`
}

// Migrate creates the tables in the database.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&Template{}, &Rule{})
}
