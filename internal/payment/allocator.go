package payment

import (
	"errors"

	"github.com/VidyaERP/api-fees/internal/studentfee"
)

// Validation failures reported verbatim to the caller. None are retryable.
var (
	// ErrSelectionOrder: a later installment was selected while an earlier
	// one of the same fee type is still open and not part of the selection.
	ErrSelectionOrder = errors.New("earlier installments must be paid or included before later ones")
	// ErrOverpayment: the cash tendered exceeds what the selection can
	// absorb after discounts. Checked before any allocation happens.
	ErrOverpayment = errors.New("amount paid exceeds the payable total for the selected installments")
)

// Line is one computed allocation before persistence.
type Line struct {
	Item     *studentfee.StudentFeeItem
	Amount   int64
	Discount int64
}

// ValidateSelectionOrder enforces the ledger's selection invariant: within
// one fee type, serial n may be selected only if every lower serial is
// already Paid or selected too. One-time rows (serial 0) are exempt. The
// ledger slice must hold every item of the student so gaps are visible.
func ValidateSelectionOrder(ledger []studentfee.StudentFeeItem, selected map[uint]bool) error {
	for _, item := range ledger {
		if !selected[item.ID] || item.SerialNumber < 1 {
			continue
		}
		for _, prev := range ledger {
			if prev.FeeTypeID != item.FeeTypeID || prev.SerialNumber < 1 {
				continue
			}
			if prev.SerialNumber >= item.SerialNumber {
				continue
			}
			if prev.Status != studentfee.StatusPaid && !selected[prev.ID] {
				return ErrSelectionOrder
			}
		}
	}
	return nil
}

// PayableTotal is the cash the selection can absorb: per item the due
// amount minus its discount, floored at zero.
func PayableTotal(items []*studentfee.StudentFeeItem, discounts map[uint]int64) int64 {
	var total int64
	for _, item := range items {
		needed := item.DueAmount - discounts[item.ID]
		if needed > 0 {
			total += needed
		}
	}
	return total
}

// Allocate fills the selected items in order from totalPaid, applying the
// per-item discounts, and mutates each item's paid/concession/due/status.
// Overpayment is rejected before the first item is touched. When the cash
// runs out early the remaining items are left as they were — deliberately
// paying less than the selection covers earlier installments first.
//
// Conservation: the allocated amounts always sum to exactly totalPaid.
func Allocate(items []*studentfee.StudentFeeItem, discounts map[uint]int64, totalPaid int64) ([]Line, error) {
	if totalPaid > PayableTotal(items, discounts) {
		return nil, ErrOverpayment
	}

	lines := make([]Line, 0, len(items))
	remaining := totalPaid
	for _, item := range items {
		discount := discounts[item.ID]
		needed := item.DueAmount - discount
		if needed < 0 {
			needed = 0
		}
		allocated := needed
		if allocated > remaining {
			allocated = remaining
		}

		item.PaidAmount += allocated
		item.ConcessionAmount += discount
		item.Recompute()
		remaining -= allocated

		lines = append(lines, Line{Item: item, Amount: allocated, Discount: discount})
	}
	return lines, nil
}
