package billing

import (
	"testing"
	"time"
)

func date(y, m, d int) time.Time {
	return time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
}

func TestInvoicePeriod(t *testing.T) {
	tests := []struct {
		name       string
		closingDay int
		dueDay     int
		purchase   time.Time
		wantYear   int
		wantMonth  int
		wantDue    time.Time
	}{
		{
			name:       "before closing stays in same month",
			closingDay: 14, dueDay: 20,
			purchase:  date(2024, 1, 10),
			wantYear:  2024, wantMonth: 1,
			wantDue: date(2024, 1, 20),
		},
		{
			name:       "after closing rolls to next month",
			closingDay: 14, dueDay: 20,
			purchase:  date(2024, 1, 20),
			wantYear:  2024, wantMonth: 2,
			wantDue: date(2024, 2, 20),
		},
		{
			name:       "on closing day stays in closing month",
			closingDay: 14, dueDay: 20,
			purchase:  date(2024, 1, 14),
			wantYear:  2024, wantMonth: 1,
			wantDue: date(2024, 1, 20),
		},
		{
			name:       "due day at or before closing shifts due month",
			closingDay: 30, dueDay: 5,
			purchase:  date(2024, 1, 31),
			wantYear:  2024, wantMonth: 2,
			wantDue: date(2024, 3, 5),
		},
		{
			name:       "december purchase after closing rolls into next year",
			closingDay: 14, dueDay: 20,
			purchase:  date(2023, 12, 20),
			wantYear:  2024, wantMonth: 1,
			wantDue: date(2024, 1, 20),
		},
		{
			name:       "due day clamped to month length",
			closingDay: 14, dueDay: 31,
			purchase:  date(2024, 4, 1),
			wantYear:  2024, wantMonth: 4,
			wantDue: date(2024, 4, 30),
		},
		{
			name:       "due day clamped in february",
			closingDay: 10, dueDay: 31,
			purchase:  date(2023, 2, 5),
			wantYear:  2023, wantMonth: 2,
			wantDue: date(2023, 2, 28),
		},
		{
			name:       "invalid closing day falls back to default 20",
			closingDay: 0, dueDay: 25,
			purchase:  date(2024, 3, 21),
			wantYear:  2024, wantMonth: 4,
			wantDue: date(2024, 4, 25),
		},
		{
			name:       "invalid due day falls back to default 10",
			closingDay: 5, dueDay: 99,
			purchase:  date(2024, 3, 3),
			wantYear:  2024, wantMonth: 3,
			wantDue: date(2024, 3, 10),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := InvoicePeriod(tt.closingDay, tt.dueDay, tt.purchase)
			if got.ClosingYear != tt.wantYear || got.ClosingMonth != tt.wantMonth {
				t.Errorf("closing period = %04d-%02d, want %04d-%02d",
					got.ClosingYear, got.ClosingMonth, tt.wantYear, tt.wantMonth)
			}
			if got.CompetenceYear != got.ClosingYear || got.CompetenceMonth != got.ClosingMonth {
				t.Errorf("competence period %04d-%02d must equal closing period %04d-%02d",
					got.CompetenceYear, got.CompetenceMonth, got.ClosingYear, got.ClosingMonth)
			}
			if !got.DueDate.Equal(tt.wantDue) {
				t.Errorf("due date = %s, want %s",
					got.DueDate.Format("2006-01-02"), tt.wantDue.Format("2006-01-02"))
			}
		})
	}
}

func TestInvoicePeriodNeverPanicsOnImpossibleDays(t *testing.T) {
	// Day 31 configured for a card while the due month is february.
	got := InvoicePeriod(15, 31, date(2024, 2, 10))
	if got.DueDate.Day() != 29 {
		t.Errorf("expected due day clamped to 29 in leap february, got %d", got.DueDate.Day())
	}
}
