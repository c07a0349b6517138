package retrieval

import (
	"fmt"
	"strconv"

	"github.com/soundprediction/retrievo/pkg/types"
)

// ApplyFilters keeps the records whose metadata matches every filtered
// field. Within one field the allowed values are alternatives: a list-valued
// field passes on any intersection, a scalar field passes on membership. A
// record missing a filtered field is dropped.
func ApplyFilters(records []types.Record, filters map[string][]string) []types.Record {
	if len(filters) == 0 {
		return records
	}

	kept := make([]types.Record, 0, len(records))
	for _, record := range records {
		if matchesFilters(record.Metadata, filters) {
			kept = append(kept, record)
		}
	}
	return kept
}

func matchesFilters(metadata map[string]any, filters map[string][]string) bool {
	for field, allowed := range filters {
		value, ok := metadata[field]
		if !ok {
			return false
		}
		if !matchesField(value, allowed) {
			return false
		}
	}
	return true
}

// matchesField checks one metadata value against the allowed values.
// List-valued metadata passes on non-empty intersection; scalars pass on
// membership, compared by canonical string form.
func matchesField(value any, allowed []string) bool {
	switch v := value.(type) {
	case []string:
		for _, item := range v {
			if contains(allowed, item) {
				return true
			}
		}
		return false
	case []any:
		for _, item := range v {
			if contains(allowed, canonicalString(item)) {
				return true
			}
		}
		return false
	default:
		return contains(allowed, canonicalString(value))
	}
}

func contains(values []string, target string) bool {
	for _, v := range values {
		if v == target {
			return true
		}
	}
	return false
}

// canonicalString renders a scalar the way a filter value would be written:
// floats without a trailing .0 when integral, bools as true/false.
func canonicalString(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		if v == float64(int64(v)) {
			return strconv.FormatInt(int64(v), 10)
		}
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return fmt.Sprintf("%v", v)
	}
}
