package record

import "fmt"

// DisplayValue renders a field value for table output. Percent fields hold
// a 0..1 score and render with two decimals; nil renders empty.
func DisplayValue(f FieldSpec, v any) string {
	if v == nil {
		return ""
	}
	if f.Percent {
		if score, ok := floatOf(v); ok {
			return fmt.Sprintf("%.2f%%", score*100)
		}
	}
	if f.Kind == KindCheckbox {
		if boolValue(v) {
			return "yes"
		}
		return "no"
	}
	return stringOf(v)
}

func floatOf(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}
