// Package expression implements the field-mapping expression grammar used by
// datasource descriptors:
//
//	"{{" dotted-path "}}" ( " | " transformation )*
//
// The dotted path references nested object keys in a raw JSON payload (array
// indices are not supported). Transformations come from a fixed registry; the
// same table backs both validation and execution so the two cannot drift.
package expression

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/aifabrix/connector-engine/pkg/models"
)

// Expression is the parsed form of a field-mapping expression.
type Expression struct {
	// Path is the dotted path as written, e.g. "properties.country.value".
	Path string
	// Segments is Path split on dots.
	Segments []string
	// Transformations is the ordered pipe chain following the path.
	Transformations []string
}

// pathPattern matches the "{{path}}" prefix and captures the remainder of the
// expression (the pipe chain, possibly empty).
var pathPattern = regexp.MustCompile(`^\{\{\s*([A-Za-z_][A-Za-z0-9_]*(?:\.[A-Za-z_][A-Za-z0-9_]*)*)\s*\}\}(.*)$`)

// Parse parses a field-mapping expression. Unlike Validate it stops at the
// first problem and returns it as an error.
func Parse(expr string) (*Expression, error) {
	if strings.TrimSpace(expr) == "" {
		return nil, fmt.Errorf("expression must be a non-empty string")
	}

	m := pathPattern.FindStringSubmatch(strings.TrimSpace(expr))
	if m == nil {
		return nil, fmt.Errorf("Invalid expression format: %q", expr)
	}

	path := m[1]
	parsed := &Expression{
		Path:            path,
		Segments:        strings.Split(path, "."),
		Transformations: []string{},
	}

	rest := strings.TrimSpace(m[2])
	if rest == "" {
		return parsed, nil
	}
	if !strings.HasPrefix(rest, "|") {
		return nil, fmt.Errorf("Invalid expression format: %q", expr)
	}

	for _, seg := range strings.Split(rest, "|") {
		name := strings.TrimSpace(seg)
		if name == "" {
			continue
		}
		if _, ok := registry[name]; !ok {
			return nil, fmt.Errorf("Unknown transformation: %s", name)
		}
		parsed.Transformations = append(parsed.Transformations, name)
	}
	return parsed, nil
}

// Validate checks a field-mapping expression against the grammar and the
// transformation registry, collecting every problem it finds.
func Validate(expr string) *models.ValidationOutcome {
	outcome := models.NewValidationOutcome()

	if strings.TrimSpace(expr) == "" {
		outcome.AddError("expression must be a non-empty string")
		return outcome
	}

	m := pathPattern.FindStringSubmatch(strings.TrimSpace(expr))
	if m == nil {
		outcome.AddError(fmt.Sprintf("Invalid expression format: %q", expr))
		return outcome
	}

	rest := strings.TrimSpace(m[2])
	if rest == "" {
		return outcome
	}
	if !strings.HasPrefix(rest, "|") {
		outcome.AddError(fmt.Sprintf("Invalid expression format: %q", expr))
		return outcome
	}

	for _, seg := range strings.Split(rest, "|") {
		name := strings.TrimSpace(seg)
		if name == "" {
			continue
		}
		if _, ok := registry[name]; !ok {
			outcome.AddError(fmt.Sprintf("Unknown transformation: %s", name))
		}
	}
	return outcome
}

// ResolvePath walks a dotted path through nested objects, stopping at the
// first missing or non-object segment. The second return reports whether the
// full path resolved.
func ResolvePath(payload map[string]any, path string) (any, bool) {
	var current any = payload
	for _, seg := range strings.Split(path, ".") {
		obj, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}
		current, ok = obj[seg]
		if !ok {
			return nil, false
		}
	}
	return current, true
}

// Apply resolves the expression's path against a payload and runs its
// transformation chain over the resolved value.
func Apply(e *Expression, payload map[string]any) (any, error) {
	value, ok := ResolvePath(payload, e.Path)
	if !ok {
		return nil, fmt.Errorf("path %q not found in payload", e.Path)
	}
	for _, name := range e.Transformations {
		fn, ok := registry[name]
		if !ok {
			return nil, fmt.Errorf("Unknown transformation: %s", name)
		}
		var err error
		value, err = fn(value)
		if err != nil {
			return nil, fmt.Errorf("transformation %s: %w", name, err)
		}
	}
	return value, nil
}
