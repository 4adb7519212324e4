package afas

import (
	"math"
	"time"
)

// WindowMonths is the length of the rolling sales window.
const WindowMonths = 12

// RollingSalesWindow builds the 12 calendar months ending at the last
// complete month before now and fills each slot with the product's sales
// quantity for that (year, month), zero when no record matches. Slots are
// ordered oldest first.
func RollingSalesWindow(productCode string, records []CumulativeSales, now time.Time) [WindowMonths]int {
	var slots [WindowMonths]int

	// The reference month itself is still in progress; the window ends at the
	// month before it.
	lastComplete := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -1, 0)

	type yearMonth struct {
		year  int
		month int
	}
	byMonth := make(map[yearMonth]int)
	for i := range records {
		r := &records[i]
		if r.ItemCode == productCode {
			byMonth[yearMonth{r.Year, r.Period}] = r.Quantity
		}
	}

	for i := 0; i < WindowMonths; i++ {
		m := lastComplete.AddDate(0, i-(WindowMonths-1), 0)
		slots[i] = byMonth[yearMonth{m.Year(), int(m.Month())}]
	}
	return slots
}

// MonthlyAverage computes the representative monthly sales figure: the
// rounded mean over the active selling period only, from the first to the
// last non-zero slot. Leading and trailing zero months are excluded so a
// product that started selling recently is not diluted by empty months.
// Returns 0 when every slot is zero.
func MonthlyAverage(slots [WindowMonths]int) int {
	first, last := -1, -1
	for i, v := range slots {
		if v > 0 {
			if first == -1 {
				first = i
			}
			last = i
		}
	}
	if first == -1 {
		return 0
	}

	total := 0
	for i := first; i <= last; i++ {
		total += slots[i]
	}
	span := last - first + 1
	return int(math.Round(float64(total) / float64(span)))
}
