package record

import (
	"fmt"
	"strconv"
	"strings"
)

// Field-extraction helpers shared by the normalizers, the merge engine, and
// the CSV exporter. All of them degrade on wrong types instead of failing:
// a best-effort record must always be extractable from arbitrary JSON.

// Pick returns the value of the first key present in m. Presence is what
// distinguishes "field not sent" from "field explicitly cleared", so Pick
// reports ok even when the stored value is nil or empty.
func Pick(m map[string]any, keys ...string) (any, bool) {
	for _, k := range keys {
		if v, ok := m[k]; ok {
			return v, true
		}
	}
	return nil, false
}

// FirstString returns the first non-empty string found under any of the
// given keys.
func FirstString(m map[string]any, keys ...string) string {
	for _, k := range keys {
		if s := AsString(m[k]); s != "" {
			return s
		}
	}
	return ""
}

// SubMap returns the nested object under the first of the given keys, or
// nil when none is an object.
func SubMap(m map[string]any, keys ...string) map[string]any {
	for _, k := range keys {
		if sub, ok := m[k].(map[string]any); ok {
			return sub
		}
	}
	return nil
}

// AsString coerces a scalar to its string form. Numbers are formatted
// without an exponent so ids and years survive the JSON float64 round trip.
func AsString(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case float64:
		if s == float64(int64(s)) {
			return strconv.FormatInt(int64(s), 10)
		}
		return strconv.FormatFloat(s, 'f', -1, 64)
	case int:
		return strconv.Itoa(s)
	case bool:
		return strconv.FormatBool(s)
	default:
		return ""
	}
}

// AsStringSlice coerces a value to a string set: arrays keep their string
// elements, a bare string becomes a singleton, anything else is empty.
// The result is deduplicated, preserving first-seen order.
func AsStringSlice(v any) []string {
	switch vv := v.(type) {
	case []any:
		out := make([]string, 0, len(vv))
		for _, item := range vv {
			if s := AsString(item); s != "" {
				out = append(out, s)
			}
		}
		return Dedupe(out)
	case []string:
		return Dedupe(vv)
	case string:
		if vv == "" {
			return nil
		}
		return []string{vv}
	default:
		return nil
	}
}

// AsInt coerces a number (or numeric string) to *int, nil when absent or
// unparseable.
func AsInt(v any) *int {
	switch n := v.(type) {
	case float64:
		i := int(n)
		return &i
	case int:
		return &n
	case string:
		if i, err := strconv.Atoi(strings.TrimSpace(n)); err == nil {
			return &i
		}
	}
	return nil
}

// FirstInt returns the first parseable integer under any of the given keys.
func FirstInt(m map[string]any, keys ...string) *int {
	for _, k := range keys {
		if n := AsInt(m[k]); n != nil {
			return n
		}
	}
	return nil
}

// Dedupe removes duplicate entries, preserving first-seen order. Returns
// the input slice's elements in a fresh slice; nil stays nil.
func Dedupe(items []string) []string {
	if items == nil {
		return nil
	}
	seen := make(map[string]struct{}, len(items))
	out := make([]string, 0, len(items))
	for _, it := range items {
		if _, ok := seen[it]; ok {
			continue
		}
		seen[it] = struct{}{}
		out = append(out, it)
	}
	return out
}

// AsIntMap coerces a JSON object of numbers into map[string]int, skipping
// non-numeric values.
func AsIntMap(v any) map[string]int {
	m, ok := v.(map[string]any)
	if !ok || len(m) == 0 {
		return nil
	}
	out := make(map[string]int, len(m))
	for k, val := range m {
		if n := AsInt(val); n != nil {
			out[k] = *n
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// AsAnyMap returns v as a map, nil otherwise.
func AsAnyMap(v any) map[string]any {
	m, _ := v.(map[string]any)
	return m
}

// sourcesFromAny parses a provenance list from arbitrary JSON.
func sourcesFromAny(v any) []Source {
	items, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]Source, 0, len(items))
	for _, item := range items {
		m, ok := item.(map[string]any)
		if !ok {
			continue
		}
		out = append(out, Source{
			URL:          FirstString(m, "url"),
			Type:         FirstString(m, "type"),
			Tags:         AsStringSlice(m["tags"]),
			DateAccessed: FirstString(m, "date_accessed", "dateAccessed"),
			Verified:     m["verified"] == true,
		})
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// dedupeSources drops later provenance entries carrying an already-seen
// (url, type) pair.
func dedupeSources(sources []Source) []Source {
	if sources == nil {
		return nil
	}
	seen := make(map[string]struct{}, len(sources))
	out := make([]Source, 0, len(sources))
	for _, s := range sources {
		key := fmt.Sprintf("%s\x00%s", s.URL, s.Type)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, s)
	}
	return out
}

// trustScoreFromAny parses a trust_score block, tolerating missing factors.
func trustScoreFromAny(v any) *TrustScore {
	m, ok := v.(map[string]any)
	if !ok {
		return nil
	}
	ts := &TrustScore{Factors: AsAnyMap(m["factors"])}
	if n := AsInt(m["score"]); n != nil {
		ts.Score = *n
	}
	return ts
}
