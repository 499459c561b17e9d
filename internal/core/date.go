package core

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

var monthNames = [12]string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"}

// Date is a calendar day. The wrapped time is always midnight UTC.
type Date struct {
	time.Time
}

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// DateOf keeps only the calendar day of t as seen in t's own location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return NewDate(y, int(m), d)
}

// ParseCalendarDate accepts "YYYY-MM-DD" or any ISO date-time that starts
// with one. Only the date part is kept so no timezone can shift the day.
func ParseCalendarDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	if len(s) < len(dateLayout) {
		return Date{}, Validationf("invalid date %q: expected YYYY-MM-DD", s)
	}
	if len(s) > len(dateLayout) && s[len(dateLayout)] != 'T' && s[len(dateLayout)] != ' ' {
		return Date{}, Validationf("invalid date %q: expected YYYY-MM-DD", s)
	}
	t, err := time.Parse(dateLayout, s[:len(dateLayout)])
	if err != nil {
		return Date{}, Validationf("invalid date %q: expected YYYY-MM-DD", s)
	}
	return Date{Time: t}, nil
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(dateLayout)
}

func (d Date) YearMonth() YearMonth {
	return YearMonth{Year: d.Year(), Month: int(d.Month())}
}

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return Validationf("invalid date: expected a string")
	}
	if s == "" {
		*d = Date{}
		return nil
	}
	parsed, err := ParseCalendarDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// YearMonth identifies a calendar month.
type YearMonth struct {
	Year  int
	Month int // 1-12
}

// ParseYearMonth parses "YYYY-MM".
func ParseYearMonth(s string) (YearMonth, error) {
	parts := strings.Split(strings.TrimSpace(s), "-")
	if len(parts) != 2 || len(parts[0]) != 4 || len(parts[1]) < 1 || len(parts[1]) > 2 {
		return YearMonth{}, Validationf("invalid month %q: expected YYYY-MM", s)
	}
	year, err := strconv.Atoi(parts[0])
	if err != nil {
		return YearMonth{}, Validationf("invalid month %q: expected YYYY-MM", s)
	}
	month, err := strconv.Atoi(parts[1])
	if err != nil {
		return YearMonth{}, Validationf("invalid month %q: expected YYYY-MM", s)
	}
	if month < 1 || month > 12 {
		return YearMonth{}, Validationf("invalid month %q: month must be between 1 and 12", s)
	}
	if !allDigits(parts[0]) || !allDigits(parts[1]) {
		return YearMonth{}, Validationf("invalid month %q: expected YYYY-MM", s)
	}
	return YearMonth{Year: year, Month: month}, nil
}

// CurrentYearMonth returns the month containing now, in UTC.
func CurrentYearMonth(now time.Time) YearMonth {
	return DateOf(now.UTC()).YearMonth()
}

// Previous returns the month before, rolling January back to December.
func (ym YearMonth) Previous() YearMonth {
	if ym.Month == 1 {
		return YearMonth{Year: ym.Year - 1, Month: 12}
	}
	return YearMonth{Year: ym.Year, Month: ym.Month - 1}
}

// Key orders months on a single axis: year*12 + zero-based month.
func (ym YearMonth) Key() int {
	return ym.Year*12 + ym.Month - 1
}

// Range returns the first day of the month and the first day of the next one.
func (ym YearMonth) Range() (Date, Date) {
	start := NewDate(ym.Year, ym.Month, 1)
	return start, Date{Time: start.AddDate(0, 1, 0)}
}

func (ym YearMonth) String() string {
	return fmt.Sprintf("%04d-%02d", ym.Year, ym.Month)
}

// MonthName returns the three-letter English name for month 1-12.
func MonthName(month int) string {
	if month < 1 || month > 12 {
		return ""
	}
	return monthNames[month-1]
}

// ValidateSummaryYear bounds the years the savings summaries accept.
func ValidateSummaryYear(year int) error {
	if year < 2000 || year > 2100 {
		return Validationf("invalid year %d: must be between 2000 and 2100", year)
	}
	return nil
}

func allDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}
