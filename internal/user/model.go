package user

import (
	"gorm.io/gorm"
)

// User is a portal account (administrator or fee counter cashier).
type User struct {
	gorm.Model
	Name     string `json:"name"`
	Email    string `json:"email" gorm:"unique"`
	Password string `json:"-"`
	IsAdmin  bool   `json:"isAdmin"`
	Branch   string `gorm:"size:50" json:"branch"`
}

// Migrate creates the table in the database.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&User{})
}
