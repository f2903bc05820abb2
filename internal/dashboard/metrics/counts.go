package metrics

// CountBy tallies items per key. Items with an empty key are counted under "unknown".
func CountBy[T any](items []T, key func(T) string) map[string]int {
	out := make(map[string]int)
	for _, it := range items {
		k := key(it)
		if k == "" {
			k = "unknown"
		}
		out[k]++
	}
	return out
}

// Sum adds a numeric field across items.
func Sum[T any](items []T, value func(T) int64) int64 {
	var total int64
	for _, it := range items {
		total += value(it)
	}
	return total
}
