package payment

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/VidyaERP/api-fees/internal/auth"
	"github.com/VidyaERP/api-fees/internal/concession"
	"github.com/VidyaERP/api-fees/internal/feetype"
	"github.com/VidyaERP/api-fees/internal/notification"
	"github.com/VidyaERP/api-fees/internal/student"
	"github.com/VidyaERP/api-fees/internal/studentfee"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"gorm.io/gorm"
)

type Handler struct {
	Repo        *Repository
	FeeItems    *studentfee.Repository
	FeeTypes    *feetype.Repository
	Concessions *concession.Repository
	Students    student.Repository
	validate    *validator.Validate
}

func NewHandler(db *gorm.DB) *Handler {
	return &Handler{
		Repo:        NewRepository(db),
		FeeItems:    studentfee.NewRepository(db),
		FeeTypes:    feetype.NewRepository(db),
		Concessions: concession.NewRepository(db),
		Students:    student.NewRepository(),
		validate:    validator.New(),
	}
}

// DTO used on POST /payments
type RecordRequest struct {
	StudentID            uint   `json:"studentId" validate:"required"`
	SelectedItemIDs      []uint `json:"selectedItemIds" validate:"required,min=1,dive,required"`
	TotalPaid            int64  `json:"totalPaid" validate:"required,gt=0"`
	ConcessionTemplateID *uint  `json:"concessionTemplateId"`
	PaymentDate          string `json:"paymentDate" validate:"required,datetime=2006-01-02"`
	PaymentMode          string `json:"paymentMode"`
	Note                 string `json:"note"`
	TransactionRef       string `json:"transactionRef"`
	AcademicYear         string `json:"academicYear"`
}

// POST /payments
//
// One payment action: concession evaluation, ordered allocation and ledger
// mutation all commit in a single transaction, with the student's ledger
// rows locked so two payments for the same student cannot interleave.
func (h *Handler) Record(w http.ResponseWriter, r *http.Request) {
	var req RecordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "malformed JSON", http.StatusBadRequest)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	paymentDate, err := time.Parse("2006-01-02", req.PaymentDate)
	if err != nil {
		http.Error(w, "invalid payment date, use YYYY-MM-DD", http.StatusBadRequest)
		return
	}
	if req.PaymentMode == "" {
		req.PaymentMode = "Cash"
	}

	stu, err := h.Students.FindByID(h.Repo.DB, req.StudentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			http.Error(w, "student not found", http.StatusNotFound)
			return
		}
		http.Error(w, "failed to fetch student", http.StatusInternalServerError)
		return
	}

	var tpl *concession.Template
	if req.ConcessionTemplateID != nil {
		tpl, err = h.Concessions.FindByID(*req.ConcessionTemplateID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				http.Error(w, "concession not found", http.StatusNotFound)
				return
			}
			http.Error(w, "failed to fetch concession", http.StatusInternalServerError)
			return
		}
	}

	feeTypes, err := h.FeeTypes.List("")
	if err != nil {
		http.Error(w, "failed to fetch fee types", http.StatusInternalServerError)
		return
	}
	typeNames := map[uint]string{}
	for _, ft := range feeTypes {
		name := ft.DisplayName
		if name == "" {
			name = ft.Name
		}
		typeNames[ft.ID] = name
	}

	tx := h.Repo.DB.Begin()
	if tx.Error != nil {
		http.Error(w, "failed to start transaction", http.StatusInternalServerError)
		return
	}

	ledger, err := h.FeeItems.WithDB(tx).ListByStudentForUpdate(req.StudentID, req.AcademicYear)
	if err != nil {
		_ = tx.Rollback()
		http.Error(w, "failed to fetch fee items", http.StatusInternalServerError)
		return
	}

	selectedSet := map[uint]bool{}
	for _, id := range req.SelectedItemIDs {
		selectedSet[id] = true
	}
	var selected []*studentfee.StudentFeeItem
	for i := range ledger {
		if selectedSet[ledger[i].ID] {
			selected = append(selected, &ledger[i])
		}
	}
	if len(selected) != len(selectedSet) {
		_ = tx.Rollback()
		http.Error(w, "selection contains unknown fee items", http.StatusNotFound)
		return
	}

	if err := ValidateSelectionOrder(ledger, selectedSet); err != nil {
		_ = tx.Rollback()
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	// Concession runs against the pre-allocation state of the selection.
	snapshot := make([]studentfee.StudentFeeItem, len(selected))
	for i, item := range selected {
		snapshot[i] = *item
	}
	conc := concession.Evaluate(tpl, snapshot, paymentDate)

	lines, err := Allocate(selected, conc.Discounts, req.TotalPaid)
	if err != nil {
		_ = tx.Rollback()
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	receiptNo, displayNo, err := h.Repo.WithDB(tx).NextReceiptNumber(stu.Branch, req.AcademicYear)
	if err != nil {
		_ = tx.Rollback()
		http.Error(w, "failed to issue receipt number", http.StatusInternalServerError)
		return
	}

	collectorID, collectorName := auth.UserFromContext(r.Context())
	batchID := uuid.New()

	var allocs []*Allocation
	var totalAllocated int64
	feeItemsTx := h.FeeItems.WithDB(tx)
	for _, line := range lines {
		if err := feeItemsTx.Save(line.Item); err != nil {
			_ = tx.Rollback()
			http.Error(w, "failed to update fee item", http.StatusInternalServerError)
			return
		}
		totalAllocated += line.Amount
		if line.Amount == 0 && line.Discount == 0 {
			continue
		}
		allocs = append(allocs, &Allocation{
			BatchID:              batchID,
			ReceiptNo:            receiptNo,
			StudentID:            stu.ID,
			StudentFeeItemID:     line.Item.ID,
			FeeTypeID:            line.Item.FeeTypeID,
			FeeTypeName:          typeNames[line.Item.FeeTypeID],
			SerialNumber:         line.Item.SerialNumber,
			InstallmentTitle:     line.Item.Title,
			GrossAmount:          line.Item.GrossPayable,
			ConcessionApplied:    line.Discount,
			AmountPaid:           line.Amount,
			DueAfter:             line.Item.DueAmount,
			ConcessionTemplateID: req.ConcessionTemplateID,
			PaymentMode:          req.PaymentMode,
			PaymentDate:          paymentDate,
			Note:                 req.Note,
			TransactionRef:       req.TransactionRef,
			CollectedBy:          collectorID,
			CollectedByName:      collectorName,
		})
	}

	if err := h.Repo.WithDB(tx).CreateInBatch(allocs); err != nil {
		_ = tx.Rollback()
		http.Error(w, "failed to record payment", http.StatusInternalServerError)
		return
	}

	if err := tx.Commit().Error; err != nil {
		http.Error(w, "failed to commit payment", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"receiptNo":          receiptNo,
		"displayNo":          displayNo,
		"batchId":            batchID,
		"totalPaid":          totalAllocated,
		"skippedConcessions": conc.SkippedLate,
		"collectedBy":        collectorName,
	})
}

// GET /students/{id}/payments
func (h *Handler) HistoryForStudent(w http.ResponseWriter, r *http.Request) {
	studentID, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "invalid student ID", http.StatusBadRequest)
		return
	}

	allocs, err := h.Repo.ListByStudent(uint(studentID))
	if err != nil {
		http.Error(w, "failed to fetch payment history", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(allocs)
}

// DELETE /receipts/{no}
//
// Voids a receipt: every allocation of the batch is mirrored with negated
// amounts and each touched ledger row is recomputed from the new totals.
// Nothing is decremented in place, so payment history stays complete.
func (h *Handler) DeleteReceipt(w http.ResponseWriter, r *http.Request) {
	receiptNo := mux.Vars(r)["no"]

	tx := h.Repo.DB.Begin()
	if tx.Error != nil {
		http.Error(w, "failed to start transaction", http.StatusInternalServerError)
		return
	}
	txRepo := h.Repo.WithDB(tx)

	originals, err := txRepo.ListByReceipt(receiptNo)
	if err != nil {
		_ = tx.Rollback()
		http.Error(w, "failed to fetch receipt", http.StatusInternalServerError)
		return
	}
	if len(originals) == 0 {
		_ = tx.Rollback()
		http.Error(w, "receipt not found", http.StatusNotFound)
		return
	}

	voided, err := txRepo.ReceiptIsVoided(receiptNo)
	if err != nil {
		_ = tx.Rollback()
		http.Error(w, "failed to check receipt status", http.StatusInternalServerError)
		return
	}
	if voided {
		_ = tx.Rollback()
		http.Error(w, "receipt is already voided", http.StatusConflict)
		return
	}

	studentID := originals[0].StudentID
	ledger, err := h.FeeItems.WithDB(tx).ListByStudentForUpdate(studentID, "")
	if err != nil {
		_ = tx.Rollback()
		http.Error(w, "failed to fetch fee items", http.StatusInternalServerError)
		return
	}
	byID := map[uint]*studentfee.StudentFeeItem{}
	for i := range ledger {
		byID[ledger[i].ID] = &ledger[i]
	}

	voiderID, voiderName := auth.UserFromContext(r.Context())
	batchID := uuid.New()
	today := time.Now()

	feeItemsTx := h.FeeItems.WithDB(tx)
	reversals := make([]*Allocation, 0, len(originals))
	for _, orig := range originals {
		item, ok := byID[orig.StudentFeeItemID]
		if !ok {
			_ = tx.Rollback()
			http.Error(w, "ledger row for receipt is missing", http.StatusConflict)
			return
		}

		item.PaidAmount -= orig.AmountPaid
		item.ConcessionAmount -= orig.ConcessionApplied
		item.Recompute()
		if err := feeItemsTx.Save(item); err != nil {
			_ = tx.Rollback()
			http.Error(w, "failed to revert fee item", http.StatusInternalServerError)
			return
		}

		reversals = append(reversals, &Allocation{
			BatchID:              batchID,
			ReceiptNo:            receiptNo,
			StudentID:            orig.StudentID,
			StudentFeeItemID:     orig.StudentFeeItemID,
			FeeTypeID:            orig.FeeTypeID,
			FeeTypeName:          orig.FeeTypeName,
			SerialNumber:         orig.SerialNumber,
			InstallmentTitle:     orig.InstallmentTitle,
			GrossAmount:          orig.GrossAmount,
			ConcessionApplied:    -orig.ConcessionApplied,
			AmountPaid:           -orig.AmountPaid,
			DueAfter:             item.DueAmount,
			ConcessionTemplateID: orig.ConcessionTemplateID,
			PaymentMode:          orig.PaymentMode,
			PaymentDate:          today,
			Note:                 "reversal of receipt " + receiptNo,
			CollectedBy:          voiderID,
			CollectedByName:      voiderName,
			IsReversal:           true,
		})
	}

	if err := txRepo.CreateInBatch(reversals); err != nil {
		_ = tx.Rollback()
		http.Error(w, "failed to record reversal", http.StatusInternalServerError)
		return
	}

	if err := tx.Commit().Error; err != nil {
		http.Error(w, "failed to commit reversal", http.StatusInternalServerError)
		return
	}

	stu, err := h.Students.FindByID(h.Repo.DB, studentID)
	studentName := ""
	if err == nil {
		studentName = stu.FullName()
	}
	notification.SendReceiptVoidAlert(receiptNo, studentName, voiderName)

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"message": "receipt voided and ledger reverted"})
}
