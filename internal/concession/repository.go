package concession

import (
	"gorm.io/gorm"
)

// Repository encapsulates data access for concession templates.
type Repository struct {
	DB *gorm.DB
}

// NewRepository returns an initialized repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{DB: db}
}

func (r *Repository) Create(t *Template) error {
	return r.DB.Create(t).Error
}

// FindByID loads a template with its rules.
func (r *Repository) FindByID(id uint) (*Template, error) {
	var t Template
	if err := r.DB.Preload("Rules").First(&t, id).Error; err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *Repository) List(academicYear string) ([]Template, error) {
	var templates []Template
	q := r.DB.Preload("Rules").Order("title ASC")
	if academicYear != "" {
		q = q.Where("academic_year = ?", academicYear)
	}
	err := q.Find(&templates).Error
	return templates, err
}

// ReplaceRules swaps a template's rule set atomically with its own update.
func (r *Repository) ReplaceRules(t *Template, rules []Rule) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("template_id = ?", t.ID).Delete(&Rule{}).Error; err != nil {
			return err
		}
		for i := range rules {
			rules[i].ID = 0
			rules[i].TemplateID = t.ID
		}
		if len(rules) > 0 {
			if err := tx.Create(&rules).Error; err != nil {
				return err
			}
		}
		t.Rules = rules
		return tx.Save(t).Error
	})
}

// DeleteByID removes the template and its rules.
func (r *Repository) DeleteByID(id uint) error {
	res := r.DB.Select("Rules").Delete(&Template{ID: id})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
