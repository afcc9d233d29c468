package installment

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/VidyaERP/api-fees/internal/studentfee"
	"github.com/gorilla/mux"
	"gorm.io/gorm"
)

type Handler struct {
	Repo     *Repository
	FeeItems *studentfee.Repository
}

func NewHandler(db *gorm.DB) *Handler {
	return &Handler{
		Repo:     NewRepository(db),
		FeeItems: studentfee.NewRepository(db),
	}
}

// DTO used on POST /fee-types/{id}/schedule
type RegenerateRequest struct {
	TotalAmount      int64    `json:"totalAmount"`
	InstallmentCount int      `json:"installmentCount"`
	Titles           []string `json:"titles,omitempty"`
	AcademicYear     string   `json:"academicYear"`
}

// GET /fee-types/{id}/installments
func (h *Handler) ListForFeeType(w http.ResponseWriter, r *http.Request) {
	feeTypeID, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "invalid fee type ID", http.StatusBadRequest)
		return
	}

	defs, err := h.Repo.ListByFeeType(uint(feeTypeID), r.URL.Query().Get("academicYear"))
	if err != nil {
		http.Error(w, "failed to fetch installments", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(defs)
}

// POST /fee-types/{id}/schedule
//
// Regenerates the installment schedule from a total amount and count,
// replacing the stored definitions and every not-yet-paid ledger row derived
// from them. Rows money has been applied to are left untouched; if the new
// split would change such a row's amount the whole operation is rejected.
func (h *Handler) Regenerate(w http.ResponseWriter, r *http.Request) {
	feeTypeID, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "invalid fee type ID", http.StatusBadRequest)
		return
	}

	var req RegenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "malformed JSON", http.StatusBadRequest)
		return
	}
	if req.TotalAmount <= 0 {
		http.Error(w, "totalAmount must be positive", http.StatusBadRequest)
		return
	}

	amounts, err := GenerateSchedule(req.TotalAmount, req.InstallmentCount)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	tx := h.Repo.DB.Begin()
	if tx.Error != nil {
		http.Error(w, "failed to start transaction", http.StatusInternalServerError)
		return
	}

	txRepo := h.Repo.WithDB(tx)
	existing, err := txRepo.ListByFeeType(uint(feeTypeID), req.AcademicYear)
	if err != nil {
		_ = tx.Rollback()
		http.Error(w, "failed to fetch installments", http.StatusInternalServerError)
		return
	}

	titles := resolveTitles(req.Titles, existing, req.InstallmentCount)
	dueDates := make([]*time.Time, req.InstallmentCount)
	for _, d := range existing {
		if d.Number >= 1 && d.Number <= req.InstallmentCount {
			dueDates[d.Number-1] = d.LastPayDate
		}
	}

	// Fail fast before touching anything: the new split may not alter any
	// ledger row that has already collected money.
	items, err := h.FeeItems.WithDB(tx).ListByFeeTypeForUpdate(uint(feeTypeID), req.AcademicYear)
	if err != nil {
		_ = tx.Rollback()
		http.Error(w, "failed to fetch ledger rows", http.StatusInternalServerError)
		return
	}
	for i := range items {
		it := &items[i]
		if it.SerialNumber < 1 || it.PaidAmount == 0 {
			continue
		}
		if it.SerialNumber > req.InstallmentCount {
			_ = tx.Rollback()
			http.Error(w, fmt.Sprintf("installment %d of student %d is paid and would be removed", it.SerialNumber, it.StudentID), http.StatusConflict)
			return
		}
		if amounts[it.SerialNumber-1] != it.GrossPayable {
			_ = tx.Rollback()
			http.Error(w, fmt.Sprintf("installment %d of student %d is paid and would change amount", it.SerialNumber, it.StudentID), http.StatusConflict)
			return
		}
	}

	// Rewrite unpaid ledger rows: update amounts and titles in place, drop
	// serials past the new count, add serials each student is missing.
	byStudent := map[uint][]*studentfee.StudentFeeItem{}
	for i := range items {
		if items[i].SerialNumber >= 1 {
			byStudent[items[i].StudentID] = append(byStudent[items[i].StudentID], &items[i])
		}
	}
	feeItemsTx := h.FeeItems.WithDB(tx)
	for studentID, rows := range byStudent {
		bySerial := map[int]*studentfee.StudentFeeItem{}
		for _, row := range rows {
			bySerial[row.SerialNumber] = row
		}
		for n := 1; n <= req.InstallmentCount; n++ {
			row, ok := bySerial[n]
			if !ok {
				fresh := &studentfee.StudentFeeItem{
					StudentID:    studentID,
					FeeTypeID:    uint(feeTypeID),
					SerialNumber: n,
					Title:        titles[n-1],
					GrossPayable: amounts[n-1],
					DueDate:      dueDates[n-1],
					AcademicYear: req.AcademicYear,
				}
				fresh.Recompute()
				if err := feeItemsTx.Create(fresh); err != nil {
					_ = tx.Rollback()
					http.Error(w, "failed to create ledger row", http.StatusInternalServerError)
					return
				}
				continue
			}
			row.GrossPayable = amounts[n-1]
			row.Title = titles[n-1]
			row.Recompute()
			if err := feeItemsTx.Save(row); err != nil {
				_ = tx.Rollback()
				http.Error(w, "failed to update ledger row", http.StatusInternalServerError)
				return
			}
		}
		for serial, row := range bySerial {
			if serial > req.InstallmentCount {
				if err := tx.Delete(row).Error; err != nil {
					_ = tx.Rollback()
					http.Error(w, "failed to drop ledger row", http.StatusInternalServerError)
					return
				}
			}
		}
	}

	// Replace the definitions wholesale.
	if err := txRepo.DeleteByFeeType(uint(feeTypeID), req.AcademicYear); err != nil {
		_ = tx.Rollback()
		http.Error(w, "failed to clear installments", http.StatusInternalServerError)
		return
	}
	defs := make([]*Definition, req.InstallmentCount)
	for n := 1; n <= req.InstallmentCount; n++ {
		defs[n-1] = &Definition{
			FeeTypeID:    uint(feeTypeID),
			Number:       n,
			Title:        titles[n-1],
			Amount:       amounts[n-1],
			LastPayDate:  dueDates[n-1],
			AcademicYear: req.AcademicYear,
		}
	}
	if err := txRepo.CreateInBatch(defs); err != nil {
		_ = tx.Rollback()
		http.Error(w, "failed to save installments", http.StatusInternalServerError)
		return
	}

	if err := tx.Commit().Error; err != nil {
		http.Error(w, "failed to commit schedule", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(defs)
}

// resolveTitles keeps caller-supplied titles when they cover the full count,
// then falls back to the existing schedule's titles, then to a plain
// "Installment N" label.
func resolveTitles(requested []string, existing []Definition, count int) []string {
	titles := make([]string, count)
	if len(requested) == count {
		copy(titles, requested)
		return titles
	}
	for _, d := range existing {
		if d.Number >= 1 && d.Number <= count {
			titles[d.Number-1] = d.Title
		}
	}
	for i := range titles {
		if titles[i] == "" {
			titles[i] = fmt.Sprintf("Installment %d", i+1)
		}
	}
	return titles
}
