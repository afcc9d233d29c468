package receipt

import (
	"fmt"
	"sort"
	"strings"
)

// LineItem is one paid ledger row as recorded on a receipt, either taken
// from a fresh allocation batch or reconstructed from stored allocations
// for reprinting.
type LineItem struct {
	FeeTypeID    uint   `json:"feeTypeId"`
	FeeTypeName  string `json:"feeTypeName"`
	SerialNumber int    `json:"serialNumber"`
	Title        string `json:"title"`

	Gross      int64 `json:"gross"`
	Concession int64 `json:"concession"`
	Paid       int64 `json:"paid"`
}

// Line is one human-readable receipt row aggregating a run of contiguous
// installments, or a single one-off fee.
type Line struct {
	Title      string     `json:"title"`
	Gross      int64      `json:"gross"`
	Concession int64      `json:"concession"`
	Paid       int64      `json:"paid"`
	Items      []LineItem `json:"items"`
}

// oneTime reports items that take no part in serial grouping.
func oneTime(it LineItem) bool {
	return it.SerialNumber < 1
}

// Group condenses a flat list of paid items into receipt lines. Within
// each fee type (first-seen order preserved) installments are sorted by
// serial and maximal runs of consecutive serials collapse into one line;
// one-off fees pass through unchanged, after the grouped lines. Pure and
// order-preserving: summing the output reproduces the input totals.
func Group(items []LineItem) []Line {
	var typeOrder []uint
	byType := map[uint][]LineItem{}
	var others []LineItem

	for _, it := range items {
		if oneTime(it) {
			others = append(others, it)
			continue
		}
		if _, seen := byType[it.FeeTypeID]; !seen {
			typeOrder = append(typeOrder, it.FeeTypeID)
		}
		byType[it.FeeTypeID] = append(byType[it.FeeTypeID], it)
	}

	var lines []Line
	for _, feeTypeID := range typeOrder {
		run := byType[feeTypeID]
		sort.SliceStable(run, func(i, j int) bool {
			return run[i].SerialNumber < run[j].SerialNumber
		})

		current := []LineItem{run[0]}
		for _, it := range run[1:] {
			if it.SerialNumber == current[len(current)-1].SerialNumber+1 {
				current = append(current, it)
				continue
			}
			lines = append(lines, makeLine(current))
			current = []LineItem{it}
		}
		lines = append(lines, makeLine(current))
	}

	for _, it := range others {
		title := it.FeeTypeName
		if title == "" {
			title = it.Title
		}
		lines = append(lines, Line{
			Title:      title,
			Gross:      it.Gross,
			Concession: it.Concession,
			Paid:       it.Paid,
			Items:      []LineItem{it},
		})
	}
	return lines
}

// makeLine titles a run of contiguous installments. A single installment
// reads "<FeeType> - <Title>"; a run reads "Payment for <first> Fee to
// <last> Fee", with any existing " Fee" suffix on the titles folded in.
func makeLine(items []LineItem) Line {
	first := strings.TrimSuffix(items[0].Title, " Fee")
	last := strings.TrimSuffix(items[len(items)-1].Title, " Fee")

	title := fmt.Sprintf("%s - %s Fee", items[0].FeeTypeName, first)
	if len(items) > 1 {
		title = fmt.Sprintf("Payment for %s Fee to %s Fee", first, last)
	}

	line := Line{Title: title, Items: items}
	for _, it := range items {
		line.Gross += it.Gross
		line.Concession += it.Concession
		line.Paid += it.Paid
	}
	return line
}
