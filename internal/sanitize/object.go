package sanitize

import (
	"encoding/json"
	"fmt"
)

var forbiddenKeys = map[string]bool{
	"__proto__":   true,
	"constructor": true,
	"prototype":   true,
}

// Object returns a copy of value with every string leaf passed through Input.
// Maps and slices are walked recursively; forbidden keys are dropped.
func Object(value any, maxFieldLen int) any {
	switch v := value.(type) {
	case string:
		return Input(v, maxFieldLen)
	case map[string]any:
		out := make(map[string]any, len(v))
		for key, item := range v {
			if forbiddenKeys[key] {
				continue
			}
			out[key] = Object(item, maxFieldLen)
		}
		return out
	case map[string]string:
		out := make(map[string]string, len(v))
		for key, item := range v {
			if forbiddenKeys[key] {
				continue
			}
			out[key] = Input(item, maxFieldLen)
		}
		return out
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = Object(item, maxFieldLen)
		}
		return out
	case []string:
		return Strings(v, maxFieldLen)
	default:
		return value
	}
}

// Strings cleans every element and drops the ones that end up empty.
func Strings(values []string, maxLen int) []string {
	out := make([]string, 0, len(values))
	for _, item := range values {
		if cleaned := Input(item, maxLen); cleaned != "" {
			out = append(out, cleaned)
		}
	}
	return out
}

// SafeParse decodes JSON text and removes __proto__, constructor and
// prototype keys at every level.
func SafeParse(text string) (any, error) {
	var value any
	if err := json.Unmarshal([]byte(text), &value); err != nil {
		return nil, fmt.Errorf("parse stored json: %w", err)
	}
	return dropForbidden(value), nil
}

func dropForbidden(value any) any {
	switch v := value.(type) {
	case map[string]any:
		for key := range forbiddenKeys {
			delete(v, key)
		}
		for key, item := range v {
			v[key] = dropForbidden(item)
		}
		return v
	case []any:
		for i, item := range v {
			v[i] = dropForbidden(item)
		}
		return v
	default:
		return value
	}
}
