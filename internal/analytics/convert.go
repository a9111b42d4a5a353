package analytics

// toInt64 safely converts various numeric types to int64.
// The Neo4j driver returns int64, but JSON unmarshaling or other sources may
// return float64.
func toInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int64:
		return n, true
	case float64:
		return int64(n), true
	case int:
		return int64(n), true
	case int32:
		return int64(n), true
	default:
		return 0, false
	}
}

// toFloat64 safely converts various numeric types to float64.
func toFloat64(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int64:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	default:
		return 0, false
	}
}

// toString extracts a string, returning "" for nil or non-string values.
func toString(v any) string {
	s, _ := v.(string)
	return s
}

// toLabels converts a driver-returned label list ([]any of strings) to a
// string slice.
func toLabels(v any) []string {
	items, ok := v.([]any)
	if !ok {
		if strs, ok := v.([]string); ok {
			return strs
		}
		return nil
	}
	labels := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok {
			labels = append(labels, s)
		}
	}
	return labels
}
