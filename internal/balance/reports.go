package balance

import (
	"context"
	"sort"
	"time"

	"github.com/mmehra/splitledger/internal/storage"
)

// CategoryTotal is one category's spend within a report window.
type CategoryTotal struct {
	Category string
	Total    float64
	Count    int
}

// MonthTotal is one calendar month's spend within a report window.
type MonthTotal struct {
	Month string // "2026-01"
	Total float64
	Count int
}

// SpendingByCategory reduces a group's expenses in [from, to) into
// per-category totals using the keyword categorizer. Zero bounds are
// open-ended.
func (a *Aggregator) SpendingByCategory(ctx context.Context, groupID string, from, to int64) ([]CategoryTotal, error) {
	expenses, err := a.store.ListExpenses(ctx, storage.ExpenseFilter{
		GroupID: groupID,
		From:    from,
		To:      to,
	})
	if err != nil {
		return nil, err
	}

	totals := make(map[string]*CategoryTotal)
	for _, expense := range expenses {
		category := Categorize(expense.Description)
		entry, ok := totals[category]
		if !ok {
			entry = &CategoryTotal{Category: category}
			totals[category] = entry
		}
		entry.Total += expense.Amount
		entry.Count++
	}

	report := make([]CategoryTotal, 0, len(totals))
	for _, entry := range totals {
		entry.Total = RoundDisplay(entry.Total)
		report = append(report, *entry)
	}
	sort.Slice(report, func(i, j int) bool { return report[i].Total > report[j].Total })
	return report, nil
}

// SpendingByMonth reduces a group's expenses in [from, to) into calendar
// month totals keyed by the expense's spend date (UTC).
func (a *Aggregator) SpendingByMonth(ctx context.Context, groupID string, from, to int64) ([]MonthTotal, error) {
	expenses, err := a.store.ListExpenses(ctx, storage.ExpenseFilter{
		GroupID: groupID,
		From:    from,
		To:      to,
	})
	if err != nil {
		return nil, err
	}

	totals := make(map[string]*MonthTotal)
	for _, expense := range expenses {
		month := time.Unix(expense.SpentAt, 0).UTC().Format("2006-01")
		entry, ok := totals[month]
		if !ok {
			entry = &MonthTotal{Month: month}
			totals[month] = entry
		}
		entry.Total += expense.Amount
		entry.Count++
	}

	report := make([]MonthTotal, 0, len(totals))
	for _, entry := range totals {
		entry.Total = RoundDisplay(entry.Total)
		report = append(report, *entry)
	}
	sort.Slice(report, func(i, j int) bool { return report[i].Month < report[j].Month })
	return report, nil
}
