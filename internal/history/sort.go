package history

import "sort"

// sortNewestFirst orders by CreatedAt descending and keeps the incoming order
// for equal timestamps.
func sortNewestFirst(records []Record) {
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].CreatedAt.After(records[j].CreatedAt)
	})
}
