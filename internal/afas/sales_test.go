package afas

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// Reference instant mid-March 2025: the last complete month is February 2025
// and the window runs March 2024 .. February 2025, oldest first.
var salesNow = time.Date(2025, time.March, 15, 10, 0, 0, 0, time.UTC)

func TestRollingSalesWindowEndsAtLastCompleteMonth(t *testing.T) {
	records := []CumulativeSales{
		{ItemCode: "A1", Year: 2025, Period: 2, Quantity: 40}, // Feb 2025, last slot
		{ItemCode: "A1", Year: 2025, Period: 3, Quantity: 99}, // current month, outside window
		{ItemCode: "A1", Year: 2024, Period: 3, Quantity: 10}, // Mar 2024, first slot
		{ItemCode: "A1", Year: 2024, Period: 2, Quantity: 77}, // Feb 2024, before window
		{ItemCode: "B2", Year: 2025, Period: 2, Quantity: 55}, // other product
	}

	slots := RollingSalesWindow("A1", records, salesNow)

	assert.Equal(t, 10, slots[0], "oldest slot is March 2024")
	assert.Equal(t, 40, slots[11], "most recent slot is February 2025")
	for i := 1; i < 11; i++ {
		assert.Zero(t, slots[i], "months without records stay zero")
	}
}

func TestRollingSalesWindowJanuaryReference(t *testing.T) {
	// Reference in January: the window must wrap into the previous year.
	now := time.Date(2025, time.January, 5, 0, 0, 0, 0, time.UTC)
	records := []CumulativeSales{
		{ItemCode: "A1", Year: 2024, Period: 12, Quantity: 7}, // Dec 2024, last slot
		{ItemCode: "A1", Year: 2024, Period: 1, Quantity: 3},  // Jan 2024, first slot
	}

	slots := RollingSalesWindow("A1", records, now)
	assert.Equal(t, 3, slots[0])
	assert.Equal(t, 7, slots[11])
}

func TestRollingSalesWindowNoRecords(t *testing.T) {
	slots := RollingSalesWindow("A1", nil, salesNow)
	assert.Equal(t, [WindowMonths]int{}, slots)
}

func TestMonthlyAverageTrimsTrailingZeros(t *testing.T) {
	// Sales stop two months before the window end; the average must divide
	// by the ten active months only.
	slots := [WindowMonths]int{10, 10, 10, 10, 10, 10, 10, 10, 10, 10, 0, 0}
	assert.Equal(t, 10, MonthlyAverage(slots))
}

func TestMonthlyAverageTrimsLeadingZeros(t *testing.T) {
	// Product started selling three months ago; nine empty months must not
	// dilute the average.
	slots := [WindowMonths]int{0, 0, 0, 0, 0, 0, 0, 0, 0, 30, 60, 90}
	assert.Equal(t, 60, MonthlyAverage(slots))
}

func TestMonthlyAverageInteriorZerosCount(t *testing.T) {
	// Gaps inside the active span stay part of the divisor.
	slots := [WindowMonths]int{0, 0, 12, 0, 0, 12, 0, 0, 0, 0, 0, 0}
	assert.Equal(t, 6, MonthlyAverage(slots))
}

func TestMonthlyAverageAllZero(t *testing.T) {
	assert.Zero(t, MonthlyAverage([WindowMonths]int{}))
}

func TestMonthlyAverageRounds(t *testing.T) {
	slots := [WindowMonths]int{0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 10, 15}
	assert.Equal(t, 13, MonthlyAverage(slots), "12.5 rounds up")
}
