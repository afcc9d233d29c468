package receipt

import (
	"encoding/json"
	"net/http"

	"github.com/VidyaERP/api-fees/internal/payment"
	"github.com/gorilla/mux"
	"gorm.io/gorm"
)

type Handler struct {
	Payments *payment.Repository
}

func NewHandler(db *gorm.DB) *Handler {
	return &Handler{Payments: payment.NewRepository(db)}
}

// GET /receipts/{no}
//
// Rebuilds the printable receipt from the stored allocation rows, so a
// receipt can be reprinted long after the payment without relying on any
// in-memory selection state.
func (h *Handler) Reprint(w http.ResponseWriter, r *http.Request) {
	receiptNo := mux.Vars(r)["no"]

	allocs, err := h.Payments.ListByReceipt(receiptNo)
	if err != nil {
		http.Error(w, "failed to fetch receipt", http.StatusInternalServerError)
		return
	}
	if len(allocs) == 0 {
		http.Error(w, "receipt not found", http.StatusNotFound)
		return
	}

	voided, err := h.Payments.ReceiptIsVoided(receiptNo)
	if err != nil {
		http.Error(w, "failed to check receipt status", http.StatusInternalServerError)
		return
	}

	items := make([]LineItem, 0, len(allocs))
	for _, a := range allocs {
		items = append(items, LineItem{
			FeeTypeID:    a.FeeTypeID,
			FeeTypeName:  a.FeeTypeName,
			SerialNumber: a.SerialNumber,
			Title:        a.InstallmentTitle,
			Gross:        a.GrossAmount,
			Concession:   a.ConcessionApplied,
			Paid:         a.AmountPaid,
		})
	}

	first := allocs[0]
	resp := map[string]interface{}{
		"receiptNo":   receiptNo,
		"displayNo":   payment.DisplayNumber(receiptNo),
		"studentId":   first.StudentID,
		"paymentDate": first.PaymentDate,
		"paymentMode": first.PaymentMode,
		"collectedBy": first.CollectedByName,
		"voided":      voided,
		"lines":       Group(items),
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}
