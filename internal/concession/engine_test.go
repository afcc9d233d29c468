package concession

import (
	"testing"
	"time"

	"github.com/VidyaERP/api-fees/internal/studentfee"
)

func date(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func TestEvaluateNilTemplate(t *testing.T) {
	items := []studentfee.StudentFeeItem{{ID: 1, FeeTypeID: 1, GrossPayable: 1000, DueAmount: 1000}}
	res := Evaluate(nil, items, time.Now())
	if len(res.Discounts) != 0 || len(res.SkippedLate) != 0 {
		t.Fatalf("nil template must produce no discounts, got %+v", res)
	}
}

func TestEvaluatePercentage(t *testing.T) {
	tpl := &Template{
		IsPercentage: true,
		Rules:        []Rule{{FeeTypeID: 1, Value: 10}},
	}
	items := []studentfee.StudentFeeItem{
		{ID: 11, FeeTypeID: 1, GrossPayable: 1000, DueAmount: 1000},
		{ID: 12, FeeTypeID: 2, GrossPayable: 500, DueAmount: 500},
	}

	res := Evaluate(tpl, items, time.Now())
	if res.Discounts[11] != 100 {
		t.Errorf("expected 10%% of 1000 = 100, got %d", res.Discounts[11])
	}
	if _, ok := res.Discounts[12]; ok {
		t.Error("fee type without a rule must get no discount")
	}
}

func TestEvaluatePercentageRounding(t *testing.T) {
	tpl := &Template{
		IsPercentage: true,
		Rules:        []Rule{{FeeTypeID: 1, Value: 33}},
	}
	items := []studentfee.StudentFeeItem{{ID: 1, FeeTypeID: 1, GrossPayable: 995, DueAmount: 995}}

	res := Evaluate(tpl, items, time.Now())
	// 33% of 995 = 328.35, rounds to 328.
	if res.Discounts[1] != 328 {
		t.Errorf("expected 328, got %d", res.Discounts[1])
	}
}

func TestEvaluateFlatClampsAtOutstanding(t *testing.T) {
	tpl := &Template{
		Rules: []Rule{{FeeTypeID: 1, Value: 800}},
	}
	items := []studentfee.StudentFeeItem{
		{ID: 1, FeeTypeID: 1, GrossPayable: 1000, PaidAmount: 700, DueAmount: 300},
	}

	res := Evaluate(tpl, items, time.Now())
	if res.Discounts[1] != 300 {
		t.Errorf("flat discount must clamp at due 300, got %d", res.Discounts[1])
	}
}

func TestEvaluateSkipsAlreadyConceded(t *testing.T) {
	tpl := &Template{
		IsPercentage: true,
		Rules:        []Rule{{FeeTypeID: 1, Value: 10}},
	}
	items := []studentfee.StudentFeeItem{
		{ID: 1, FeeTypeID: 1, GrossPayable: 1000, ConcessionAmount: 50, DueAmount: 950},
	}

	res := Evaluate(tpl, items, time.Now())
	if _, ok := res.Discounts[1]; ok {
		t.Error("item with an existing concession must be skipped")
	}
	if len(res.SkippedLate) != 0 {
		t.Error("silent skip must not appear in SkippedLate")
	}
}

func TestEvaluateSkipsLatePayment(t *testing.T) {
	tpl := &Template{
		IsPercentage: true,
		Rules:        []Rule{{FeeTypeID: 1, Value: 10}},
	}
	items := []studentfee.StudentFeeItem{
		{ID: 1, FeeTypeID: 1, Title: "April", GrossPayable: 1000, DueAmount: 1000, DueDate: date(2026, time.April, 10)},
		{ID: 2, FeeTypeID: 1, Title: "May", GrossPayable: 1000, DueAmount: 1000, DueDate: date(2026, time.May, 10)},
	}

	paymentDate := time.Date(2026, time.April, 20, 0, 0, 0, 0, time.UTC)
	res := Evaluate(tpl, items, paymentDate)

	if _, ok := res.Discounts[1]; ok {
		t.Error("April is overdue at the payment date and must not be discounted")
	}
	if res.Discounts[2] != 100 {
		t.Errorf("May is still within its due date, expected 100, got %d", res.Discounts[2])
	}
	if len(res.SkippedLate) != 1 || res.SkippedLate[0].ItemID != 1 {
		t.Fatalf("expected April in SkippedLate, got %+v", res.SkippedLate)
	}
}

func TestEvaluateDoesNotMutateItems(t *testing.T) {
	tpl := &Template{
		IsPercentage: true,
		Rules:        []Rule{{FeeTypeID: 1, Value: 50}},
	}
	items := []studentfee.StudentFeeItem{
		{ID: 1, FeeTypeID: 1, GrossPayable: 1000, DueAmount: 1000},
	}

	Evaluate(tpl, items, time.Now())
	if items[0].ConcessionAmount != 0 || items[0].DueAmount != 1000 {
		t.Error("Evaluate must not mutate the ledger items")
	}
}
