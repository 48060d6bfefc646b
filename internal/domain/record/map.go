package record

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Map adapts a loosely typed row (decoded JSON, a database row) to Attributes.
// Values that are not numeric where a number is expected are treated as absent.
// Lists, as encoding/json decodes them into []any, read as comma-joined text.
type Map map[string]any

// Text implements Attributes.
func (m Map) Text(f Field) string {
	switch v := m[string(f)].(type) {
	case string:
		return strings.TrimSpace(v)
	case []string:
		return joinText(v)
	case []any:
		parts := make([]string, 0, len(v))
		for _, e := range v {
			if e == nil {
				continue
			}
			if s, ok := e.(string); ok {
				parts = append(parts, s)
				continue
			}
			parts = append(parts, fmt.Sprint(e))
		}
		return joinText(parts)
	case nil:
		return ""
	default:
		return strings.TrimSpace(fmt.Sprint(v))
	}
}

func joinText(parts []string) string {
	kept := parts[:0:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, ", ")
}

// Number implements Attributes.
func (m Map) Number(f Field) (float64, bool) {
	switch v := m[string(f)].(type) {
	case float64:
		return finite(v)
	case float32:
		return finite(float64(v))
	case int:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case json.Number:
		n, err := v.Float64()
		if err != nil {
			return 0, false
		}
		return finite(n)
	case string:
		n, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, false
		}
		return finite(n)
	default:
		return 0, false
	}
}

// Flag implements Attributes.
func (m Map) Flag(f Field) (bool, bool) {
	switch v := m[string(f)].(type) {
	case bool:
		return v, true
	case string:
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return false, false
		}
		return b, true
	default:
		return false, false
	}
}
