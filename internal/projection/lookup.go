package projection

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"
)

// lookup follows a dotted path through nested JSON objects. nil values and
// blank strings count as absent.
func lookup(rec map[string]any, path string) (any, bool) {
	var cur any = rec
	for _, part := range strings.Split(path, ".") {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		cur, ok = m[part]
		if !ok || cur == nil {
			return nil, false
		}
	}
	if s, ok := cur.(string); ok && strings.TrimSpace(s) == "" {
		return nil, false
	}
	return cur, true
}

// firstString returns the first path whose value renders as a non-empty
// string, or placeholder.
func firstString(rec map[string]any, placeholder string, paths ...string) string {
	for _, p := range paths {
		v, ok := lookup(rec, p)
		if !ok {
			continue
		}
		if s, ok := asString(v); ok {
			return s
		}
	}
	return placeholder
}

func firstNumber(rec map[string]any, paths ...string) (float64, bool) {
	for _, p := range paths {
		v, ok := lookup(rec, p)
		if !ok {
			continue
		}
		if n, ok := asNumber(v); ok {
			return n, true
		}
	}
	return 0, false
}

func firstTime(rec map[string]any, paths ...string) *time.Time {
	for _, p := range paths {
		v, ok := lookup(rec, p)
		if !ok {
			continue
		}
		if t, ok := asTime(v); ok {
			return &t
		}
	}
	return nil
}

func firstValue(rec map[string]any, paths ...string) (any, bool) {
	for _, p := range paths {
		if v, ok := lookup(rec, p); ok {
			return v, true
		}
	}
	return nil, false
}

func asString(v any) (string, bool) {
	switch x := v.(type) {
	case string:
		s := strings.Join(strings.Fields(x), " ")
		return s, s != ""
	case json.Number:
		return x.String(), true
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64), true
	case int:
		return strconv.Itoa(x), true
	case int64:
		return strconv.FormatInt(x, 10), true
	case bool:
		return strconv.FormatBool(x), true
	default:
		return "", false
	}
}

func asNumber(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case int:
		return float64(x), true
	case int64:
		return float64(x), true
	case json.Number:
		f, err := x.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		return f, err == nil
	default:
		return 0, false
	}
}

func asTime(v any) (time.Time, bool) {
	switch x := v.(type) {
	case string:
		for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02 15:04:05", "2006-01-02"} {
			if t, err := time.Parse(layout, strings.TrimSpace(x)); err == nil {
				return t.UTC(), true
			}
		}
		return time.Time{}, false
	default:
		// Epoch milliseconds.
		n, ok := asNumber(v)
		if !ok || n <= 0 {
			return time.Time{}, false
		}
		return time.UnixMilli(int64(n)).UTC(), true
	}
}

func asInt64(v any) (int64, bool) {
	n, ok := asNumber(v)
	if !ok {
		return 0, false
	}
	return int64(math.Round(n)), true
}
