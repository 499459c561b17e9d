package core

import (
	"sort"
	"strings"
)

// OtherSubCategory labels expense entries recorded without a sub-category name.
const OtherSubCategory = "Other"

// MonthlyTotal is one month of a twelve-month series.
type MonthlyTotal struct {
	Month    string `json:"month"`
	MonthNum int    `json:"month_number"`
	Total    Money  `json:"total"`
}

// MonthlySeries is always twelve entries, January first.
type MonthlySeries []MonthlyTotal

// NewMonthlySeries lays out per-month cents (keyed 1-12) as a full year.
// Missing months are zero.
func NewMonthlySeries(byMonth map[int]int64) MonthlySeries {
	series := make(MonthlySeries, 12)
	for m := 1; m <= 12; m++ {
		series[m-1] = MonthlyTotal{Month: MonthName(m), MonthNum: m, Total: Money{Cents: byMonth[m]}}
	}
	return series
}

// NetSeries computes revenue minus expense for each month. With floor set,
// months with a negative net report zero.
func NetSeries(revenue, expense map[int]int64, floor bool) MonthlySeries {
	net := make(map[int]int64, 12)
	for m := 1; m <= 12; m++ {
		v := revenue[m] - expense[m]
		if floor && v < 0 {
			v = 0
		}
		net[m] = v
	}
	return NewMonthlySeries(net)
}

// SavingsSummary compares monthly net savings for a year and the one before.
type SavingsSummary struct {
	Year     int           `json:"year"`
	ThisYear MonthlySeries `json:"this_year"`
	LastYear MonthlySeries `json:"last_year"`
}

// EmptySavingsSummary is the all-zero summary for a user without accounts.
func EmptySavingsSummary(year int) SavingsSummary {
	return SavingsSummary{
		Year:     year,
		ThisYear: NewMonthlySeries(nil),
		LastYear: NewMonthlySeries(nil),
	}
}

// ExpenseLine is one expense detail row joined with its posting and category.
type ExpenseLine struct {
	TransactionID   int64
	Date            Date
	CategoryID      int64
	CategoryName    string
	SubCategoryName string
	Amount          Money
}

// BreakdownEntry is one sub-category line within a category.
type BreakdownEntry struct {
	Name   string `json:"name"`
	Amount Money  `json:"amount"`
	Date   Date   `json:"date"`

	transactionID int64
}

// CategoryBreakdown totals a category for a month and compares it with the
// month before.
type CategoryBreakdown struct {
	CategoryID    int64            `json:"category_id"`
	Category      string           `json:"category"`
	Total         Money            `json:"total"`
	PreviousTotal Money            `json:"previous_total"`
	ChangePercent float64          `json:"change_percent"`
	Entries       []BreakdownEntry `json:"entries"`
}

// ExpenseBreakdown is the category view of one month's spending.
type ExpenseBreakdown struct {
	Month         string              `json:"month"`
	PreviousMonth string              `json:"previous_month"`
	Categories    []CategoryBreakdown `json:"categories"`
}

// BuildBreakdown groups current by category and compares each category with
// its total in previous. Only categories with activity in current appear.
// Categories are ordered by total descending and entries by date descending.
func BuildBreakdown(current, previous []ExpenseLine) []CategoryBreakdown {
	prevTotals := make(map[int64]int64)
	for _, line := range previous {
		prevTotals[line.CategoryID] += line.Amount.Cents
	}

	index := make(map[int64]int)
	var out []CategoryBreakdown
	for _, line := range current {
		if line.Amount.Cents == 0 {
			continue
		}
		i, ok := index[line.CategoryID]
		if !ok {
			i = len(out)
			index[line.CategoryID] = i
			out = append(out, CategoryBreakdown{
				CategoryID: line.CategoryID,
				Category:   line.CategoryName,
			})
		}
		name := strings.TrimSpace(line.SubCategoryName)
		if name == "" {
			name = OtherSubCategory
		}
		out[i].Total = out[i].Total.Add(line.Amount)
		out[i].Entries = append(out[i].Entries, BreakdownEntry{
			Name:          name,
			Amount:        line.Amount,
			Date:          line.Date,
			transactionID: line.TransactionID,
		})
	}

	for i := range out {
		c := &out[i]
		c.PreviousTotal = Money{Cents: prevTotals[c.CategoryID]}
		c.ChangePercent = ChangePercent(c.Total, c.PreviousTotal)
		sort.SliceStable(c.Entries, func(a, b int) bool {
			ea, eb := c.Entries[a], c.Entries[b]
			if !ea.Date.Equal(eb.Date.Time) {
				return ea.Date.After(eb.Date.Time)
			}
			return ea.transactionID > eb.transactionID
		})
	}

	sort.SliceStable(out, func(a, b int) bool {
		if out[a].Total.Cents != out[b].Total.Cents {
			return out[a].Total.Cents > out[b].Total.Cents
		}
		return out[a].Category < out[b].Category
	})
	return out
}
