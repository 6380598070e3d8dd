package datastore

import (
	"encoding/json"
	"fmt"
	"sort"
)

// decodeRecords parses a category data file. The scraper writes either a bare
// JSON array of records or an object wrapping the array under a key (the
// trekking corpus nests its records under "treks"). Wrapper keys are probed
// in sorted order so decoding stays deterministic; non-object array elements
// are skipped.
func decodeRecords(raw []byte) ([]Record, error) {
	var top any
	if err := json.Unmarshal(raw, &top); err != nil {
		return nil, err
	}

	switch v := top.(type) {
	case []any:
		return recordsFromArray(v), nil
	case map[string]any:
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		// Prefer the first array that actually contains objects.
		for _, k := range keys {
			if arr, ok := v[k].([]any); ok && hasObject(arr) {
				return recordsFromArray(arr), nil
			}
		}
		// Otherwise accept the first array value, which may be empty.
		for _, k := range keys {
			if arr, ok := v[k].([]any); ok {
				return recordsFromArray(arr), nil
			}
		}
		return nil, fmt.Errorf("no record array in document")
	default:
		return nil, fmt.Errorf("unsupported document shape %T", top)
	}
}

func recordsFromArray(arr []any) []Record {
	out := make([]Record, 0, len(arr))
	for _, v := range arr {
		if m, ok := v.(map[string]any); ok {
			out = append(out, Record(m))
		}
	}
	return out
}

func hasObject(arr []any) bool {
	for _, v := range arr {
		if _, ok := v.(map[string]any); ok {
			return true
		}
	}
	return false
}
