package installment

import (
	"errors"
	"testing"
)

func TestGenerateScheduleSplitsWithRemainderOnFirst(t *testing.T) {
	amounts, err := GenerateSchedule(10000, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []int64{3340, 3330, 3330}
	if len(amounts) != len(want) {
		t.Fatalf("expected %d amounts, got %d", len(want), len(amounts))
	}
	for i, a := range amounts {
		if a != want[i] {
			t.Errorf("amount %d: expected %d, got %d", i, want[i], a)
		}
	}
}

func TestGenerateScheduleSumsToTotal(t *testing.T) {
	cases := []struct {
		total int64
		count int
	}{
		{10000, 3},
		{12000, 12},
		{9999, 7},
		{100, 3},
		{1, 1},
	}

	for _, c := range cases {
		amounts, err := GenerateSchedule(c.total, c.count)
		if err != nil {
			t.Fatalf("GenerateSchedule(%d, %d): %v", c.total, c.count, err)
		}
		var sum int64
		for _, a := range amounts {
			sum += a
		}
		if sum != c.total {
			t.Errorf("GenerateSchedule(%d, %d): amounts sum to %d", c.total, c.count, sum)
		}
	}
}

func TestGenerateScheduleBaseIsMultipleOfTen(t *testing.T) {
	amounts, err := GenerateSchedule(9999, 7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i, a := range amounts[1:] {
		if a%10 != 0 {
			t.Errorf("installment %d: expected multiple of 10, got %d", i+2, a)
		}
	}
}

func TestGenerateScheduleSmallTotal(t *testing.T) {
	// Total below count*10: the base floors to zero and the whole amount
	// lands on the first installment.
	amounts, err := GenerateSchedule(5, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if amounts[0] != 5 || amounts[1] != 0 || amounts[2] != 0 {
		t.Errorf("expected [5 0 0], got %v", amounts)
	}
}

func TestGenerateScheduleRejectsNonPositiveCount(t *testing.T) {
	for _, count := range []int{0, -1} {
		if _, err := GenerateSchedule(1000, count); !errors.Is(err, ErrInvalidSchedule) {
			t.Errorf("count %d: expected ErrInvalidSchedule, got %v", count, err)
		}
	}
}

func TestGenerateScheduleIsDeterministic(t *testing.T) {
	first, _ := GenerateSchedule(48000, 11)
	second, _ := GenerateSchedule(48000, 11)
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("amount %d differs between runs: %d vs %d", i, first[i], second[i])
		}
	}
}
