package core

import "time"

// ResolveMonth picks the default month for a freshly loaded year: the
// latest non-aggregate column in which the key indicator has data.
// January is returned when the indicator is missing, no column
// qualifies, or the chosen header does not name a month.
func ResolveMonth(t FinancialTable, keyIndicator string) time.Month {
	row, ok := t.Indicator(keyIndicator)
	if !ok || len(row.Values) == 0 || len(t.ColumnHeaders) == 0 {
		return time.January
	}

	best := -1
	for i := len(t.ColumnHeaders) - 1; i >= 0; i-- {
		if IsAggregateHeader(t.ColumnHeaders[i]) {
			continue
		}
		if !row.Value(i).IsEmpty() {
			best = i
			break
		}
	}
	if best == -1 {
		return time.January
	}

	m, ok := MonthFromHeader(t.ColumnHeaders[best])
	if !ok {
		return time.January
	}
	return m
}

// DataColumn returns the index of the first non-aggregate column whose
// header names month m, or -1 when there is none.
func DataColumn(t FinancialTable, m time.Month) int {
	for i, h := range t.ColumnHeaders {
		if IsAggregateHeader(h) {
			continue
		}
		if hm, ok := MonthFromHeader(h); ok && hm == m {
			return i
		}
	}
	return -1
}
