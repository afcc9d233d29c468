package feetype

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"gorm.io/gorm"
)

type Handler struct {
	Repo     *Repository
	validate *validator.Validate
}

func NewHandler(db *gorm.DB) *Handler {
	return &Handler{
		Repo:     NewRepository(db),
		validate: validator.New(),
	}
}

// DTO used on POST /fee-types and PUT /fee-types/{id}
type FeeTypeRequest struct {
	Name         string `json:"name" validate:"required,max=100"`
	DisplayName  string `json:"displayName" validate:"max=100"`
	Category     string `json:"category" validate:"max=50"`
	Kind         string `json:"kind" validate:"required,oneof=Installment OneTime"`
	IsRefundable bool   `json:"isRefundable"`
	Description  string `json:"description" validate:"max=255"`
	Branch       string `json:"branch"`
	AcademicYear string `json:"academicYear"`
}

// POST /fee-types
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req FeeTypeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "malformed JSON", http.StatusBadRequest)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	f := FeeType{
		Name:         req.Name,
		DisplayName:  req.DisplayName,
		Category:     req.Category,
		Kind:         req.Kind,
		IsRefundable: req.IsRefundable,
		Description:  req.Description,
		Branch:       req.Branch,
		AcademicYear: req.AcademicYear,
	}
	if f.DisplayName == "" {
		f.DisplayName = f.Name
	}

	if err := h.Repo.Create(&f); err != nil {
		http.Error(w, "failed to create fee type", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(f)
}

// GET /fee-types
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	types, err := h.Repo.List(r.URL.Query().Get("academicYear"))
	if err != nil {
		http.Error(w, "failed to list fee types", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(types)
}

// PUT /fee-types/{id}
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "invalid fee type ID", http.StatusBadRequest)
		return
	}

	var req FeeTypeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "malformed JSON", http.StatusBadRequest)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	f, err := h.Repo.FindByID(uint(id))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			http.Error(w, "fee type not found", http.StatusNotFound)
			return
		}
		http.Error(w, "failed to fetch fee type", http.StatusInternalServerError)
		return
	}

	f.Name = req.Name
	f.DisplayName = req.DisplayName
	f.Category = req.Category
	f.Kind = req.Kind
	f.IsRefundable = req.IsRefundable
	f.Description = req.Description
	f.Branch = req.Branch
	f.AcademicYear = req.AcademicYear

	if err := h.Repo.Update(f); err != nil {
		http.Error(w, "failed to update fee type", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(f)
}

// DELETE /fee-types/{id}
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "invalid fee type ID", http.StatusBadRequest)
		return
	}

	if err := h.Repo.DeleteByID(uint(id)); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			http.Error(w, "fee type not found", http.StatusNotFound)
			return
		}
		http.Error(w, "failed to delete fee type", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
