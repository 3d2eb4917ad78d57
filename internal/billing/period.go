package billing

import (
	"time"

	"genfin/internal/core"
)

// Period places one purchase on a card's billing calendar. The closing
// year/month identify the invoice that captures the purchase; the
// competence period, used for all aggregation and reporting, equals the
// closing period regardless of when payment is due.
type Period struct {
	ClosingYear     int
	ClosingMonth    int
	CompetenceYear  int
	CompetenceMonth int
	DueDate         time.Time
}

// InvoicePeriod computes the invoice period for a purchase made on
// purchaseDate against a cycle defined by closingDay and dueDay.
//
// A purchase after the closing day rolls into the next month's invoice.
// When the due day is on or before the closing day the bill is paid the
// month after the cycle closes. Out-of-range day values fall back to the
// schema defaults, and the due day is clamped to the length of the due
// month, so no input can produce an invalid date.
func InvoicePeriod(closingDay, dueDay int, purchaseDate time.Time) Period {
	if closingDay < 1 || closingDay > 31 {
		closingDay = core.DefaultClosingDay
	}
	if dueDay < 1 || dueDay > 31 {
		dueDay = core.DefaultDueDay
	}

	closingYear, closingMonth := purchaseDate.Year(), int(purchaseDate.Month())
	if purchaseDate.Day() > closingDay {
		closingYear, closingMonth = nextMonth(closingYear, closingMonth)
	}

	dueYear, dueMonth := closingYear, closingMonth
	if dueDay <= closingDay {
		dueYear, dueMonth = nextMonth(dueYear, dueMonth)
	}

	due := time.Date(dueYear, time.Month(dueMonth), clampDay(dueDay, dueYear, dueMonth),
		0, 0, 0, 0, time.UTC)

	return Period{
		ClosingYear:     closingYear,
		ClosingMonth:    closingMonth,
		CompetenceYear:  closingYear,
		CompetenceMonth: closingMonth,
		DueDate:         due,
	}
}

func nextMonth(year, month int) (int, int) {
	month++
	if month > 12 {
		return year + 1, 1
	}
	return year, month
}

// clampDay limits day to the last valid day of the given month, e.g.
// day 31 in April becomes 30.
func clampDay(day, year, month int) int {
	last := time.Date(year, time.Month(month)+1, 0, 0, 0, 0, 0, time.UTC).Day()
	if day > last {
		return last
	}
	return day
}
