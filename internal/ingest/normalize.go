package ingest

import (
	"fmt"
	"maps"
	"slices"
	"strings"
)

// NormalizeRelationshipField turns the loose relationship shapes a
// generation step produces into a name → descriptor map:
//
//	"allied with Bren"         → {"general_book_N": "allied with Bren"}
//	{"Bren": "brother"}        → {"Bren": "brother"}
//	["ally", {"Bren": "kin"}]  → {"relationship_0_book_N": "ally", "Bren": "kin"}
//
// Anything else yields an empty map.
func NormalizeRelationshipField(raw any, bookNumber int) map[string]string {
	out := map[string]string{}
	switch v := raw.(type) {
	case string:
		if strings.TrimSpace(v) != "" {
			out[fmt.Sprintf("general_book_%d", bookNumber)] = v
		}
	case map[string]any:
		mergeDescriptors(out, v)
	case map[string]string:
		maps.Copy(out, v)
	case []any:
		for i, item := range v {
			switch entry := item.(type) {
			case string:
				out[fmt.Sprintf("relationship_%d_book_%d", i, bookNumber)] = entry
			case map[string]any:
				mergeDescriptors(out, entry)
			case map[string]string:
				maps.Copy(out, entry)
			}
		}
	case []string:
		for i, entry := range v {
			out[fmt.Sprintf("relationship_%d_book_%d", i, bookNumber)] = entry
		}
	}
	return out
}

// mergeDescriptors copies entries in key order; non-string values are
// formatted with %v and nil values dropped.
func mergeDescriptors(dst map[string]string, src map[string]any) {
	for _, k := range slices.Sorted(maps.Keys(src)) {
		switch val := src[k].(type) {
		case nil:
		case string:
			dst[k] = val
		default:
			dst[k] = fmt.Sprint(val)
		}
	}
}

// NormalizeAbilities accepts a single ability string or a list. Blank and
// non-string list elements and other shapes are dropped.
func NormalizeAbilities(raw any) []string {
	switch v := raw.(type) {
	case string:
		if strings.TrimSpace(v) == "" {
			return []string{}
		}
		return []string{v}
	default:
		return resolveFieldValue(v)
	}
}

func resolveFieldValue(value any) []string {
	if value == nil {
		return []string{}
	}
	switch v := value.(type) {
	case string:
		return []string{v}
	case []string:
		values := make([]string, 0, len(v))
		for _, s := range v {
			if strings.TrimSpace(s) != "" {
				values = append(values, s)
			}
		}
		return values
	case []any:
		values := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok && strings.TrimSpace(s) != "" {
				values = append(values, s)
			}
		}
		return values
	default:
		return []string{}
	}
}

func toString(value any) string {
	if s, ok := value.(string); ok {
		return strings.TrimSpace(s)
	}
	return ""
}

// firstString returns the first non-blank string among keys.
func firstString(record map[string]any, keys ...string) string {
	for _, key := range keys {
		if s := toString(record[key]); s != "" {
			return s
		}
	}
	return ""
}
