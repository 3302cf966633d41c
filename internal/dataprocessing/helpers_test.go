package dataprocessing

import (
	"time"

	"weeklyreport/pkg/contracts/domain"
)

var (
	testColumns = []string{"Date", "Product", "Sales", "Units", "Revenue", "Region"}
	testNumeric = []string{"Sales", "Units", "Revenue"}
	testNow     = time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC)
)

// rawTable builds a RawTable; rows shorter than columns leave the trailing
// fields absent.
func rawTable(columns []string, rows ...[]string) *domain.RawTable {
	t := &domain.RawTable{Columns: columns}
	for i, row := range rows {
		fields := make(map[string]string, len(columns))
		for j, col := range columns {
			if j >= len(row) {
				break
			}
			fields[col] = row[j]
		}
		t.Records = append(t.Records, domain.RawRecord{Line: i + 2, Fields: fields})
	}
	return t
}

func testCleaner() *Cleaner {
	return NewCleaner(nil, CleanerConfig{
		DateColumn:     "Date",
		NumericColumns: testNumeric,
		Window:         7 * 24 * time.Hour,
	})
}

func testAggregator() *Aggregator {
	return NewAggregator(nil, AggregatorConfig{
		ProductColumn: "Product",
		RegionColumn:  "Region",
		RevenueColumn: "Revenue",
	})
}
