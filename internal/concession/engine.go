package concession

import (
	"math"
	"time"

	"github.com/VidyaERP/api-fees/internal/studentfee"
)

// SkippedItem reports an installment a concession was not applied to and
// why. Skips are warnings, not errors: the caller must surface them.
type SkippedItem struct {
	ItemID  uint       `json:"itemId"`
	Title   string     `json:"title"`
	DueDate *time.Time `json:"dueDate,omitempty"`
	Reason  string     `json:"reason"`
}

// Result of evaluating a template against a payment selection.
type Result struct {
	// Discounts maps ledger item ID to the discount in whole currency units.
	Discounts map[uint]int64 `json:"discounts"`
	// SkippedLate lists items excluded because the payment date fell after
	// their due date.
	SkippedLate []SkippedItem `json:"skippedLate"`
}

// Evaluate computes per-item discounts for the selected ledger items. Pure
// function: no storage access, no mutation of the items.
//
// Per item, in selection order: no rule for its fee type means zero
// discount; an item already carrying a concession is skipped silently (a
// template cannot be stacked); a payment dated after the item's due date is
// skipped and reported in SkippedLate. Percentage discounts round to the
// nearest whole unit, flat discounts clamp at the outstanding amount.
func Evaluate(tpl *Template, items []studentfee.StudentFeeItem, paymentDate time.Time) Result {
	res := Result{Discounts: map[uint]int64{}}
	if tpl == nil {
		return res
	}

	rules := map[uint]float64{}
	for _, r := range tpl.Rules {
		rules[r.FeeTypeID] = r.Value
	}

	for _, item := range items {
		value, ok := rules[item.FeeTypeID]
		if !ok {
			continue
		}
		if item.ConcessionAmount > 0 {
			continue
		}
		if item.DueDate != nil && paymentDate.After(*item.DueDate) {
			res.SkippedLate = append(res.SkippedLate, SkippedItem{
				ItemID:  item.ID,
				Title:   item.Title,
				DueDate: item.DueDate,
				Reason:  "payment date is after due date",
			})
			continue
		}

		base := item.Outstanding()
		var discount int64
		if tpl.IsPercentage {
			discount = int64(math.Round(float64(base) * value / 100))
		} else {
			discount = int64(math.Round(value))
			if discount > base {
				discount = base
			}
		}
		res.Discounts[item.ID] = discount
	}
	return res
}
