package studentfee

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"gorm.io/gorm"
)

type Handler struct {
	Repo *Repository
}

func NewHandler(db *gorm.DB) *Handler {
	return &Handler{Repo: NewRepository(db)}
}

// DTO used on POST /students/{id}/fees (manual/special fee)
type AddFeeRequest struct {
	FeeTypeID    uint   `json:"feeTypeId"`
	Title        string `json:"title"`
	Amount       int64  `json:"amount"`
	DueDate      string `json:"dueDate"` // YYYY-MM-DD, optional
	AcademicYear string `json:"academicYear"`
}

// DTO used on PUT /student-fees/{id}
type UpdateFeeRequest struct {
	GrossPayable     int64 `json:"grossPayable"`
	ConcessionAmount int64 `json:"concessionAmount"`
}

// GET /students/{id}/fees
func (h *Handler) ListForStudent(w http.ResponseWriter, r *http.Request) {
	studentID, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "invalid student ID", http.StatusBadRequest)
		return
	}

	items, err := h.Repo.ListByStudent(uint(studentID), r.URL.Query().Get("academicYear"))
	if err != nil {
		http.Error(w, "failed to fetch fee items", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(items)
}

// POST /students/{id}/fees
// Adds a one-off fee row (special fee). Serial stays 0: one-time fees take
// no part in installment ordering.
func (h *Handler) AddForStudent(w http.ResponseWriter, r *http.Request) {
	studentID, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "invalid student ID", http.StatusBadRequest)
		return
	}

	var req AddFeeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "malformed JSON", http.StatusBadRequest)
		return
	}
	if req.FeeTypeID == 0 || req.Amount <= 0 {
		http.Error(w, "feeTypeId and a positive amount are required", http.StatusBadRequest)
		return
	}

	item := StudentFeeItem{
		StudentID:    uint(studentID),
		FeeTypeID:    req.FeeTypeID,
		Title:        req.Title,
		GrossPayable: req.Amount,
		AcademicYear: req.AcademicYear,
	}
	if req.DueDate != "" {
		d, err := time.Parse("2006-01-02", req.DueDate)
		if err != nil {
			http.Error(w, "invalid due date, use YYYY-MM-DD", http.StatusBadRequest)
			return
		}
		item.DueDate = &d
	}
	item.Recompute()

	if err := h.Repo.Create(&item); err != nil {
		http.Error(w, "failed to add fee", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(item)
}

// PUT /student-fees/{id}
// Edits gross and concession, recomputing due and status. The edit may not
// reduce the payable below what has already been collected.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "invalid fee item ID", http.StatusBadRequest)
		return
	}

	var req UpdateFeeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "malformed JSON", http.StatusBadRequest)
		return
	}
	if req.GrossPayable < 0 || req.ConcessionAmount < 0 {
		http.Error(w, "amounts cannot be negative", http.StatusBadRequest)
		return
	}

	item, err := h.Repo.FindByID(uint(id))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			http.Error(w, "fee item not found", http.StatusNotFound)
			return
		}
		http.Error(w, "failed to fetch fee item", http.StatusInternalServerError)
		return
	}

	if req.GrossPayable-req.ConcessionAmount < item.PaidAmount {
		http.Error(w, "payable cannot drop below the amount already collected", http.StatusConflict)
		return
	}

	item.GrossPayable = req.GrossPayable
	item.ConcessionAmount = req.ConcessionAmount
	item.Recompute()

	if err := h.Repo.Save(item); err != nil {
		http.Error(w, "failed to update fee item", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(item)
}

// DELETE /student-fees/{id}
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "invalid fee item ID", http.StatusBadRequest)
		return
	}

	if err := h.Repo.DeleteByID(uint(id)); err != nil {
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			http.Error(w, "fee item not found", http.StatusNotFound)
		case errors.Is(err, ErrHasPayments):
			http.Error(w, err.Error(), http.StatusConflict)
		default:
			http.Error(w, "failed to delete fee item", http.StatusInternalServerError)
		}
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
