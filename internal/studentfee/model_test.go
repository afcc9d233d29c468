package studentfee

import (
	"testing"
)

func TestRecomputeStatusTransitions(t *testing.T) {
	cases := []struct {
		name       string
		gross      int64
		concession int64
		paid       int64
		wantDue    int64
		wantStatus string
	}{
		{"fresh item", 1000, 0, 0, 1000, StatusUnpaid},
		{"partially paid", 1000, 0, 400, 600, StatusPartial},
		{"fully paid", 1000, 0, 1000, 0, StatusPaid},
		{"paid via concession only", 1000, 1000, 0, 0, StatusPaid},
		{"concession plus cash", 1000, 250, 750, 0, StatusPaid},
		{"zero gross", 0, 0, 0, 0, StatusPaid},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			item := StudentFeeItem{
				GrossPayable:     c.gross,
				ConcessionAmount: c.concession,
				PaidAmount:       c.paid,
			}
			item.Recompute()
			if item.DueAmount != c.wantDue {
				t.Errorf("due: expected %d, got %d", c.wantDue, item.DueAmount)
			}
			if item.Status != c.wantStatus {
				t.Errorf("status: expected %s, got %s", c.wantStatus, item.Status)
			}
		})
	}
}

func TestRecomputeClampsNegativeDue(t *testing.T) {
	item := StudentFeeItem{GrossPayable: 1000, ConcessionAmount: 600, PaidAmount: 600}
	item.Recompute()
	if item.DueAmount != 0 {
		t.Fatalf("due must clamp at zero, got %d", item.DueAmount)
	}
	if item.Status != StatusPaid {
		t.Fatalf("over-covered item must read Paid, got %s", item.Status)
	}
}

func TestRecomputeReversalReopensItem(t *testing.T) {
	item := StudentFeeItem{GrossPayable: 1000, PaidAmount: 1000}
	item.Recompute()
	if item.Status != StatusPaid {
		t.Fatalf("precondition: expected Paid, got %s", item.Status)
	}

	// Voiding the receipt subtracts the allocation and recomputes.
	item.PaidAmount -= 1000
	item.Recompute()
	if item.Status != StatusUnpaid || item.DueAmount != 1000 {
		t.Fatalf("expected Unpaid/1000 after reversal, got %s/%d", item.Status, item.DueAmount)
	}
}

func TestOutstanding(t *testing.T) {
	open := StudentFeeItem{GrossPayable: 1000, PaidAmount: 400}
	open.Recompute()
	if open.Outstanding() != 600 {
		t.Errorf("open item: expected 600, got %d", open.Outstanding())
	}

	settled := StudentFeeItem{GrossPayable: 1000, PaidAmount: 1000}
	settled.Recompute()
	if settled.Outstanding() != 1000 {
		t.Errorf("settled item falls back to gross, got %d", settled.Outstanding())
	}
}
