package concession

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"gorm.io/gorm"
)

type Handler struct {
	Repo *Repository
}

func NewHandler(db *gorm.DB) *Handler {
	return &Handler{Repo: NewRepository(db)}
}

// DTO used on POST /concessions and PUT /concessions/{id}
type TemplateRequest struct {
	Title        string `json:"title"`
	Description  string `json:"description"`
	IsPercentage bool   `json:"isPercentage"`
	Branch       string `json:"branch"`
	AcademicYear string `json:"academicYear"`
	Rules        []struct {
		FeeTypeID uint    `json:"feeTypeId"`
		Value     float64 `json:"value"`
	} `json:"rules"`
}

func (req *TemplateRequest) valid() string {
	if req.Title == "" {
		return "title is required"
	}
	for _, r := range req.Rules {
		if r.FeeTypeID == 0 {
			return "every rule needs a feeTypeId"
		}
		if r.Value < 0 {
			return "rule values cannot be negative"
		}
		if req.IsPercentage && r.Value > 100 {
			return "percentage rules cannot exceed 100"
		}
	}
	return ""
}

// referencedByPayments reports whether any allocation was recorded against
// this template; such templates are frozen to keep history reconstructable.
func (h *Handler) referencedByPayments(id uint) (bool, error) {
	var count int64
	err := h.Repo.DB.Table("payment_allocations").
		Where("concession_template_id = ?", id).
		Count(&count).Error
	return count > 0, err
}

// POST /concessions
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req TemplateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "malformed JSON", http.StatusBadRequest)
		return
	}
	if msg := req.valid(); msg != "" {
		http.Error(w, msg, http.StatusBadRequest)
		return
	}

	t := Template{
		Title:        req.Title,
		Description:  req.Description,
		IsPercentage: req.IsPercentage,
		Branch:       req.Branch,
		AcademicYear: req.AcademicYear,
	}
	for _, rule := range req.Rules {
		t.Rules = append(t.Rules, Rule{FeeTypeID: rule.FeeTypeID, Value: rule.Value})
	}

	if err := h.Repo.Create(&t); err != nil {
		http.Error(w, "failed to create concession", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(t)
}

// GET /concessions
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	templates, err := h.Repo.List(r.URL.Query().Get("academicYear"))
	if err != nil {
		http.Error(w, "failed to list concessions", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(templates)
}

// PUT /concessions/{id}
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "invalid concession ID", http.StatusBadRequest)
		return
	}

	var req TemplateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "malformed JSON", http.StatusBadRequest)
		return
	}
	if msg := req.valid(); msg != "" {
		http.Error(w, msg, http.StatusBadRequest)
		return
	}

	t, err := h.Repo.FindByID(uint(id))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			http.Error(w, "concession not found", http.StatusNotFound)
			return
		}
		http.Error(w, "failed to fetch concession", http.StatusInternalServerError)
		return
	}

	used, err := h.referencedByPayments(t.ID)
	if err != nil {
		http.Error(w, "failed to check concession usage", http.StatusInternalServerError)
		return
	}
	if used {
		http.Error(w, "concession is referenced by recorded payments and cannot change", http.StatusConflict)
		return
	}

	t.Title = req.Title
	t.Description = req.Description
	t.IsPercentage = req.IsPercentage
	t.Branch = req.Branch
	t.AcademicYear = req.AcademicYear

	rules := make([]Rule, 0, len(req.Rules))
	for _, rule := range req.Rules {
		rules = append(rules, Rule{FeeTypeID: rule.FeeTypeID, Value: rule.Value})
	}
	if err := h.Repo.ReplaceRules(t, rules); err != nil {
		http.Error(w, "failed to update concession", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(t)
}

// DELETE /concessions/{id}
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "invalid concession ID", http.StatusBadRequest)
		return
	}

	used, err := h.referencedByPayments(uint(id))
	if err != nil {
		http.Error(w, "failed to check concession usage", http.StatusInternalServerError)
		return
	}
	if used {
		http.Error(w, "concession is referenced by recorded payments and cannot be deleted", http.StatusConflict)
		return
	}

	if err := h.Repo.DeleteByID(uint(id)); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			http.Error(w, "concession not found", http.StatusNotFound)
			return
		}
		http.Error(w, "failed to delete concession", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
