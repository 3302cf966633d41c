package dataprocessing

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"weeklyreport/pkg/contracts/domain"
)

func cleaned(t *testing.T, rows ...[]string) *domain.CleanedTable {
	t.Helper()
	table, _, err := testCleaner().Clean(context.Background(), rawTable(testColumns, rows...), testNow)
	require.NoError(t, err)
	return table
}

func requireNumber(t *testing.T, report *domain.SummaryReport, name, expected string) {
	t.Helper()
	m, ok := report.Get(name)
	require.True(t, ok, "metric %s missing", name)
	require.False(t, m.IsNull(), "metric %s is null", name)
	assert.True(t, decimal.RequireFromString(expected).Equal(m.Number.Decimal),
		"%s: expected %s, got %s", name, expected, m.Number.Decimal)
}

func TestAggregatorEndToEndScenario(t *testing.T) {
	table := cleaned(t,
		[]string{"2024-01-14", "A", "1", "1", "100", "North"},
		[]string{"2024-01-13", "B", "2", "3", "300", "South"},
		[]string{"2024-01-01", "A", "5", "5", "50", "North"},
	)
	require.Equal(t, 2, table.Len())

	report := testAggregator().Summarize(context.Background(), table, testNow)

	requireNumber(t, report, "Total_Revenue", "400")
	requireNumber(t, report, "Avg_Revenue", "200")
	requireNumber(t, report, "Max_Revenue", "300")
	requireNumber(t, report, "Min_Revenue", "100")
	requireNumber(t, report, "Total_Units", "4")

	top, ok := report.Get(domain.MetricTopProduct)
	require.True(t, ok)
	assert.Equal(t, "B", top.Text)
	requireNumber(t, report, domain.MetricTopProductRevenue, "300")

	region, ok := report.Get(domain.MetricTopRegion)
	require.True(t, ok)
	assert.Equal(t, "South", region.Text)

	count, ok := report.Get(domain.MetricTotalRecords)
	require.True(t, ok)
	assert.Equal(t, 2, count.Count)

	date, ok := report.Get(domain.MetricReportDate)
	require.True(t, ok)
	assert.True(t, testNow.Equal(date.Time))
	assert.True(t, testNow.Equal(report.GeneratedAt()))
}

func TestAggregatorMetricOrder(t *testing.T) {
	table := cleaned(t, []string{"2024-01-14", "A", "1", "1", "100", "North"})
	report := testAggregator().Summarize(context.Background(), table, testNow)

	var names []string
	for _, m := range report.Metrics() {
		names = append(names, m.Name)
	}
	assert.Equal(t, []string{
		"Total_Sales", "Avg_Sales", "Max_Sales", "Min_Sales",
		"Total_Units", "Avg_Units", "Max_Units", "Min_Units",
		"Total_Revenue", "Avg_Revenue", "Max_Revenue", "Min_Revenue",
		"Total_Records", "Report_Date",
		"Top_Product", "Top_Product_Revenue",
		"Top_Region", "Top_Region_Revenue",
	}, names)
}

func TestAggregatorEmptyTable(t *testing.T) {
	table := cleaned(t)
	report := testAggregator().Summarize(context.Background(), table, testNow)

	requireNumber(t, report, "Total_Revenue", "0")
	for _, name := range []string{"Avg_Revenue", "Max_Revenue", "Min_Revenue"} {
		m, ok := report.Get(name)
		require.True(t, ok, name)
		assert.True(t, m.IsNull(), name)
	}

	count, _ := report.Get(domain.MetricTotalRecords)
	assert.Equal(t, 0, count.Count)
	assert.False(t, report.Has(domain.MetricTopProduct))
	assert.False(t, report.Has(domain.MetricTopRegion))
}

func TestAggregatorNilTable(t *testing.T) {
	report := testAggregator().Summarize(context.Background(), nil, testNow)

	assert.True(t, report.Has(domain.MetricTotalRecords))
	assert.True(t, report.Has(domain.MetricReportDate))
	assert.False(t, report.Has(domain.MetricTopProduct))
}

func TestAggregatorTopMetricsOmitted(t *testing.T) {
	table := cleaned(t, []string{"2024-01-14", "A", "1", "1", "100", "North"})

	tests := []struct {
		name          string
		config        AggregatorConfig
		expectProduct bool
		expectRegion  bool
	}{
		{
			name:          "no region column configured",
			config:        AggregatorConfig{ProductColumn: "Product", RevenueColumn: "Revenue"},
			expectProduct: true,
		},
		{
			name:   "revenue column unconfigured",
			config: AggregatorConfig{ProductColumn: "Product", RegionColumn: "Region"},
		},
		{
			name:   "revenue column not numeric",
			config: AggregatorConfig{ProductColumn: "Product", RegionColumn: "Region", RevenueColumn: "Region"},
		},
		{
			name:         "product column absent from table",
			config:       AggregatorConfig{ProductColumn: "Item", RegionColumn: "Region", RevenueColumn: "Revenue"},
			expectRegion: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			report := NewAggregator(nil, tt.config).Summarize(context.Background(), table, testNow)
			assert.Equal(t, tt.expectProduct, report.Has(domain.MetricTopProduct))
			assert.Equal(t, tt.expectProduct, report.Has(domain.MetricTopProductRevenue))
			assert.Equal(t, tt.expectRegion, report.Has(domain.MetricTopRegion))
			assert.Equal(t, tt.expectRegion, report.Has(domain.MetricTopRegionRevenue))
			assert.True(t, report.Has("Total_Revenue"))
		})
	}
}

func TestLeaderboardTiesKeepFirstSeen(t *testing.T) {
	forward := cleaned(t,
		[]string{"2024-01-14", "A", "1", "1", "100", "N"},
		[]string{"2024-01-14", "B", "1", "1", "100", "N"},
	)
	reverse := cleaned(t,
		[]string{"2024-01-14", "B", "1", "1", "100", "N"},
		[]string{"2024-01-14", "A", "1", "1", "100", "N"},
	)

	assert.Equal(t, "A", Leaderboard(forward, "Product", "Revenue", 1)[0].Label)
	assert.Equal(t, "B", Leaderboard(reverse, "Product", "Revenue", 1)[0].Label)
}

func TestLeaderboardRanking(t *testing.T) {
	table := cleaned(t,
		[]string{"2024-01-14", "A", "1", "1", "100", "N"},
		[]string{"2024-01-14", "B", "1", "1", "50", "N"},
		[]string{"2024-01-13", "C", "1", "1", "500", "N"},
		[]string{"2024-01-12", "A", "1", "1", "150", "N"},
		[]string{"2024-01-12", "", "1", "1", "999", "N"},
	)

	all := Leaderboard(table, "Product", "Revenue", 0)
	require.Len(t, all, 3, "rows without a product are skipped")
	assert.Equal(t, "C", all[0].Label)
	assert.Equal(t, "A", all[1].Label)
	assert.True(t, all[1].Total.Equal(decimal.NewFromInt(250)))
	assert.Equal(t, "B", all[2].Label)

	top2 := Leaderboard(table, "Product", "Revenue", 2)
	assert.Len(t, top2, 2)

	assert.Empty(t, Leaderboard(table, "Missing", "Revenue", 5))
	assert.Empty(t, Leaderboard(table, "Product", "Region", 5))
	assert.Empty(t, Leaderboard(table, "", "Revenue", 5))
}
