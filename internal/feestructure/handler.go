package feestructure

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/VidyaERP/api-fees/internal/feetype"
	"github.com/VidyaERP/api-fees/internal/installment"
	"github.com/VidyaERP/api-fees/internal/student"
	"github.com/VidyaERP/api-fees/internal/studentfee"
	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"
)

type Handler struct {
	Repo     *Repository
	FeeTypes *feetype.Repository
	Defs     *installment.Repository
	FeeItems *studentfee.Repository
	Students student.Repository
	validate *validator.Validate
}

func NewHandler(db *gorm.DB) *Handler {
	return &Handler{
		Repo:     NewRepository(db),
		FeeTypes: feetype.NewRepository(db),
		Defs:     installment.NewRepository(db),
		FeeItems: studentfee.NewRepository(db),
		Students: student.NewRepository(),
		validate: validator.New(),
	}
}

// DTO used on POST /class-fee-structures
type AssignRequest struct {
	FeeTypeID        uint   `json:"feeTypeId" validate:"required"`
	Class            string `json:"class" validate:"required"`
	TotalAmount      int64  `json:"totalAmount" validate:"gte=0"`
	InstallmentCount int    `json:"installmentCount" validate:"gte=0"`
	Branch           string `json:"branch"`
	AcademicYear     string `json:"academicYear"`
}

// POST /class-fee-structures
//
// Assigns a fee type to every active student of a class in one transaction.
// Installment fee types fan out one ledger row per scheduled installment;
// one-time types produce a single serial-zero row. Students that already
// carry the fee type for the year are skipped, so re-posting the same
// structure is harmless.
func (h *Handler) Assign(w http.ResponseWriter, r *http.Request) {
	var req AssignRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "malformed JSON", http.StatusBadRequest)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	ft, err := h.FeeTypes.FindByID(req.FeeTypeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			http.Error(w, "fee type not found", http.StatusNotFound)
			return
		}
		http.Error(w, "failed to fetch fee type", http.StatusInternalServerError)
		return
	}
	if !ft.IsInstallment() && req.TotalAmount <= 0 {
		http.Error(w, "totalAmount is required for one-time fee types", http.StatusBadRequest)
		return
	}

	tx := h.Repo.DB.Begin()
	if tx.Error != nil {
		http.Error(w, "failed to start transaction", http.StatusInternalServerError)
		return
	}

	var defs []installment.Definition
	if ft.IsInstallment() {
		defs, err = h.Defs.WithDB(tx).ListByFeeType(ft.ID, req.AcademicYear)
		if err != nil {
			_ = tx.Rollback()
			http.Error(w, "failed to fetch installment schedule", http.StatusInternalServerError)
			return
		}
		if len(defs) == 0 {
			// No schedule yet: derive one from the structure's own amounts.
			if req.TotalAmount <= 0 || req.InstallmentCount <= 0 {
				_ = tx.Rollback()
				http.Error(w, "fee type has no installment schedule; provide totalAmount and installmentCount", http.StatusBadRequest)
				return
			}
			amounts, err := installment.GenerateSchedule(req.TotalAmount, req.InstallmentCount)
			if err != nil {
				_ = tx.Rollback()
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			created := make([]*installment.Definition, len(amounts))
			for i, amount := range amounts {
				created[i] = &installment.Definition{
					FeeTypeID:    ft.ID,
					Number:       i + 1,
					Title:        fmt.Sprintf("Installment %d", i+1),
					Amount:       amount,
					Branch:       req.Branch,
					AcademicYear: req.AcademicYear,
				}
			}
			if err := h.Defs.WithDB(tx).CreateInBatch(created); err != nil {
				_ = tx.Rollback()
				http.Error(w, "failed to save installment schedule", http.StatusInternalServerError)
				return
			}
			for _, d := range created {
				defs = append(defs, *d)
			}
		}
	}

	students, err := h.Students.ListByClass(tx, req.Class, req.Branch, req.AcademicYear)
	if err != nil {
		_ = tx.Rollback()
		http.Error(w, "failed to fetch students", http.StatusInternalServerError)
		return
	}

	feeItemsTx := h.FeeItems.WithDB(tx)
	assigned, skipped := 0, 0
	for _, stu := range students {
		has, err := feeItemsTx.HasFeeType(stu.ID, ft.ID, req.AcademicYear)
		if err != nil {
			_ = tx.Rollback()
			http.Error(w, "failed to check existing fee items", http.StatusInternalServerError)
			return
		}
		if has {
			skipped++
			continue
		}

		var items []*studentfee.StudentFeeItem
		if ft.IsInstallment() {
			for _, def := range defs {
				item := &studentfee.StudentFeeItem{
					StudentID:    stu.ID,
					FeeTypeID:    ft.ID,
					SerialNumber: def.Number,
					Title:        def.Title,
					GrossPayable: def.Amount,
					DueDate:      def.LastPayDate,
					AcademicYear: req.AcademicYear,
				}
				item.Recompute()
				items = append(items, item)
			}
		} else {
			title := ft.DisplayName
			if title == "" {
				title = ft.Name
			}
			item := &studentfee.StudentFeeItem{
				StudentID:    stu.ID,
				FeeTypeID:    ft.ID,
				SerialNumber: 0,
				Title:        title,
				GrossPayable: req.TotalAmount,
				AcademicYear: req.AcademicYear,
			}
			item.Recompute()
			items = append(items, item)
		}

		if err := feeItemsTx.CreateInBatch(items); err != nil {
			_ = tx.Rollback()
			http.Error(w, "failed to assign fee items", http.StatusInternalServerError)
			return
		}
		assigned++
	}

	structure := ClassFeeStructure{
		FeeTypeID:        ft.ID,
		Class:            req.Class,
		TotalAmount:      req.TotalAmount,
		InstallmentCount: len(defs),
		AssignedCount:    assigned,
		SkippedCount:     skipped,
		Branch:           req.Branch,
		AcademicYear:     req.AcademicYear,
	}
	if err := h.Repo.WithDB(tx).Create(&structure); err != nil {
		_ = tx.Rollback()
		http.Error(w, "failed to save fee structure", http.StatusInternalServerError)
		return
	}

	if err := tx.Commit().Error; err != nil {
		http.Error(w, "failed to commit fee structure", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"id":       structure.ID,
		"assigned": assigned,
		"skipped":  skipped,
		"students": len(students),
	})
}

// GET /class-fee-structures
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	structures, err := h.Repo.List(r.URL.Query().Get("class"), r.URL.Query().Get("academicYear"))
	if err != nil {
		http.Error(w, "failed to fetch fee structures", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(structures)
}
