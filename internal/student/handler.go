package student

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"gorm.io/gorm"
)

// Handler wraps DB and repository.
type Handler struct {
	DB         *gorm.DB
	Repository Repository
}

// NewHandler returns an initialized handler.
func NewHandler(db *gorm.DB) *Handler {
	return &Handler{
		DB:         db,
		Repository: NewRepository(),
	}
}

type studentRequest struct {
	AdmissionNo  string `json:"admissionNo"`
	FirstName    string `json:"firstName"`
	LastName     string `json:"lastName"`
	Class        string `json:"class"`
	Section      string `json:"section"`
	FatherName   string `json:"fatherName"`
	Phone        string `json:"phone"`
	IsActive     *bool  `json:"isActive"`
	Branch       string `json:"branch"`
	AcademicYear string `json:"academicYear"`
}

// POST /students
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req studentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "malformed JSON", http.StatusBadRequest)
		return
	}
	if req.FirstName == "" || req.AdmissionNo == "" {
		http.Error(w, "admissionNo and firstName are required", http.StatusBadRequest)
		return
	}

	s := Student{
		AdmissionNo:  req.AdmissionNo,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Class:        req.Class,
		Section:      req.Section,
		FatherName:   req.FatherName,
		Phone:        req.Phone,
		IsActive:     true,
		Branch:       req.Branch,
		AcademicYear: req.AcademicYear,
	}
	if req.IsActive != nil {
		s.IsActive = *req.IsActive
	}

	if err := h.Repository.Save(h.DB, &s); err != nil {
		http.Error(w, "failed to create student", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(s)
}

// GET /students
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	students, err := h.Repository.List(h.DB, q.Get("class"), q.Get("branch"), q.Get("academicYear"))
	if err != nil {
		http.Error(w, "failed to list students", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(students)
}

// GET /students/{id}
func (h *Handler) FindByID(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "invalid student ID", http.StatusBadRequest)
		return
	}

	s, err := h.Repository.FindByIDWithFees(h.DB, uint(id))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			http.Error(w, "student not found", http.StatusNotFound)
			return
		}
		http.Error(w, "failed to fetch student", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(s)
}

// PUT /students/{id}
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "invalid student ID", http.StatusBadRequest)
		return
	}

	var req studentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "malformed JSON", http.StatusBadRequest)
		return
	}

	changes := Student{
		AdmissionNo:  req.AdmissionNo,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Class:        req.Class,
		Section:      req.Section,
		FatherName:   req.FatherName,
		Phone:        req.Phone,
		IsActive:     true,
		Branch:       req.Branch,
		AcademicYear: req.AcademicYear,
	}
	if req.IsActive != nil {
		changes.IsActive = *req.IsActive
	}

	if err := h.Repository.Update(h.DB, uint(id), &changes); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			http.Error(w, "student not found", http.StatusNotFound)
			return
		}
		http.Error(w, "failed to update student", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// DELETE /students/{id}
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "invalid student ID", http.StatusBadRequest)
		return
	}

	if err := h.Repository.Delete(h.DB, uint(id)); err != nil {
		http.Error(w, "failed to delete student", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
