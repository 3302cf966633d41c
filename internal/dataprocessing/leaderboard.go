package dataprocessing

import (
	"sort"

	"github.com/shopspring/decimal"

	"weeklyreport/pkg/contracts/domain"
)

// LeaderboardEntry is one group and its summed value
type LeaderboardEntry struct {
	Label string          `json:"label"`
	Total decimal.Decimal `json:"total"`
}

// Leaderboard groups table by groupColumn, sums valueColumn and returns the
// top n groups in descending order. Equal totals keep the order in which the
// groups first appear. Rows without a group value are skipped. n <= 0
// returns every group. The result is empty when either column is absent or
// valueColumn is not numeric.
func Leaderboard(table *domain.CleanedTable, groupColumn, valueColumn string, n int) []LeaderboardEntry {
	if groupColumn == "" || valueColumn == "" {
		return nil
	}
	if !table.HasColumn(groupColumn) || !table.HasColumn(valueColumn) || !table.IsNumeric(valueColumn) {
		return nil
	}

	var entries []LeaderboardEntry
	index := make(map[string]int)

	for _, rec := range table.Records {
		group := rec.Get(groupColumn)
		if group.IsMissing() {
			continue
		}
		value := rec.Get(valueColumn)
		if value.Kind != domain.KindNumber {
			continue
		}

		i, ok := index[group.Raw]
		if !ok {
			i = len(entries)
			index[group.Raw] = i
			entries = append(entries, LeaderboardEntry{Label: group.Raw, Total: decimal.Zero})
		}
		entries[i].Total = entries[i].Total.Add(value.Number)
	}

	sort.SliceStable(entries, func(a, b int) bool {
		return entries[a].Total.GreaterThan(entries[b].Total)
	})

	if n > 0 && len(entries) > n {
		entries = entries[:n]
	}
	return entries
}
