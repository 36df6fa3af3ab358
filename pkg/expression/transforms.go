package expression

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"unicode"
)

// TransformFunc is a pure value transformation. Implementations must not
// perform I/O or mutate their input.
type TransformFunc func(any) (any, error)

// registry is the closed transformation vocabulary. Membership here is what
// Validate checks, and Apply executes the same functions.
var registry = map[string]TransformFunc{
	"trim":       stringTransform(strings.TrimSpace),
	"toUpper":    stringTransform(strings.ToUpper),
	"toLower":    stringTransform(strings.ToLower),
	"capitalize": stringTransform(capitalize),
	"toString":   toString,
	"toNumber":   toNumber,
}

// Transformations returns the registry's names in sorted order.
func Transformations() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// IsTransformation reports whether name belongs to the registry.
func IsTransformation(name string) bool {
	_, ok := registry[name]
	return ok
}

// stringTransform lifts a string function into a TransformFunc. Non-string
// values pass through unchanged so that chains like "toString | trim" and
// "trim" alone behave consistently on raw payload values.
func stringTransform(fn func(string) string) TransformFunc {
	return func(v any) (any, error) {
		if s, ok := v.(string); ok {
			return fn(s), nil
		}
		return v, nil
	}
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	runes := []rune(s)
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}

func toString(v any) (any, error) {
	switch val := v.(type) {
	case nil:
		return "", nil
	case string:
		return val, nil
	case bool:
		return strconv.FormatBool(val), nil
	case float64:
		// JSON numbers decode as float64; keep integral values undecorated.
		if val == float64(int64(val)) {
			return strconv.FormatInt(int64(val), 10), nil
		}
		return strconv.FormatFloat(val, 'g', -1, 64), nil
	case int:
		return strconv.Itoa(val), nil
	default:
		return fmt.Sprintf("%v", val), nil
	}
}

func toNumber(v any) (any, error) {
	switch val := v.(type) {
	case float64:
		return val, nil
	case int:
		return float64(val), nil
	case string:
		n, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
		if err != nil {
			return nil, fmt.Errorf("cannot convert %q to a number", val)
		}
		return n, nil
	default:
		return nil, fmt.Errorf("cannot convert %T to a number", v)
	}
}
