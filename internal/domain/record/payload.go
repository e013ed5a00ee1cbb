package record

import (
	"fmt"
	"strconv"
	"strings"

	"clinadm/internal/shared/errors"
)

// BuildPayload assembles the outgoing JSON body for a create or update.
//
// Rules, per field kind:
//   - password: blank on an existing record means "keep current value" and
//     the key is stripped from the payload entirely
//   - number: empty-string input is coerced to null, never sent as "" or NaN
//   - checkbox: coerced to a bool
//
// Derived fields and the id never travel in the body; an invitation-style
// schema with CreateFields submits only those fields when creating.
func BuildPayload(s Schema, rec Record) (map[string]any, error) {
	isNew := rec.IsNew()

	payload := make(map[string]any)
	for _, f := range s.Fields {
		if f.Derived {
			continue
		}
		if isNew && !createAllows(s, f.Name) {
			continue
		}

		v, present := rec[f.Name]
		if !present {
			continue
		}

		switch f.Kind {
		case KindPassword:
			str := stringOf(v)
			if str == "" && !isNew {
				continue
			}
			payload[f.Name] = str
		case KindNumber:
			num, err := numberValue(v)
			if err != nil {
				return nil, errors.NewValidationError(fmt.Sprintf("%s must be a number", f.Name))
			}
			payload[f.Name] = num
		case KindCheckbox:
			payload[f.Name] = boolValue(v)
		default:
			payload[f.Name] = v
		}
	}
	return payload, nil
}

func createAllows(s Schema, name string) bool {
	if len(s.CreateFields) == 0 {
		return true
	}
	for _, allowed := range s.CreateFields {
		if allowed == name {
			return true
		}
	}
	return false
}

// numberValue coerces form input to a JSON number or null.
func numberValue(v any) (any, error) {
	switch n := v.(type) {
	case nil:
		return nil, nil
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case string:
		trimmed := strings.TrimSpace(n)
		if trimmed == "" {
			return nil, nil
		}
		parsed, err := strconv.ParseFloat(trimmed, 64)
		if err != nil {
			return nil, err
		}
		return parsed, nil
	default:
		return nil, fmt.Errorf("unsupported number value %T", v)
	}
}

func boolValue(v any) bool {
	switch b := v.(type) {
	case bool:
		return b
	case string:
		return b == "true" || b == "yes" || b == "y" || b == "1"
	default:
		return false
	}
}

func stringOf(v any) string {
	if v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}
