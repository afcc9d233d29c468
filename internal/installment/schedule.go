package installment

import "errors"

// ErrInvalidSchedule rejects schedule generation with a non-positive
// installment count.
var ErrInvalidSchedule = errors.New("installment count must be positive")

// GenerateSchedule splits totalAmount across count installments.
//
// Every installment after the first gets a base rounded down to the nearest
// multiple of 10 currency units, so monthly fee slips read as round numbers;
// installment 1 absorbs the remainder. The generated amounts always sum to
// exactly totalAmount, and regenerating from the same inputs yields the same
// split. Totals below 10*count produce base 0 with everything on the first
// installment.
func GenerateSchedule(totalAmount int64, count int) ([]int64, error) {
	if count <= 0 {
		return nil, ErrInvalidSchedule
	}

	base := totalAmount / int64(count) / 10 * 10
	remainder := totalAmount - base*int64(count)

	amounts := make([]int64, count)
	amounts[0] = base + remainder
	for i := 1; i < count; i++ {
		amounts[i] = base
	}
	return amounts, nil
}
