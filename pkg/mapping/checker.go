// Package mapping cross-checks a datasource's declared field mappings against
// a sample payload. Structurally broken mappings (bad grammar, unknown
// transformation) are errors; mappings that merely cannot be exercised against
// the provided sample are warnings, since they may still be correct for
// production payloads.
package mapping

import (
	"fmt"
	"sort"

	"github.com/aifabrix/connector-engine/pkg/expression"
	"github.com/aifabrix/connector-engine/pkg/models"
)

// Result is the outcome of checking every field mapping of one datasource.
// MappedFields holds the parsed expression for each field whose declaration
// was structurally valid, including fields whose path did not resolve in the
// sample payload.
type Result struct {
	Valid        bool
	Errors       []string
	Warnings     []string
	MappedFields map[string]*expression.Expression
}

// CheckFieldMappings validates every declared field mapping and resolves each
// valid mapping's path against the sample payload. Fields are processed in
// sorted name order so results are deterministic.
func CheckFieldMappings(ds *models.Datasource, sample map[string]any) *Result {
	result := &Result{
		Valid:        true,
		Errors:       []string{},
		Warnings:     []string{},
		MappedFields: map[string]*expression.Expression{},
	}

	names := make([]string, 0, len(ds.FieldMappings.Fields))
	for name := range ds.FieldMappings.Fields {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		fm := ds.FieldMappings.Fields[name]

		if fm.Expression == "" {
			result.Errors = append(result.Errors, fmt.Sprintf("field %q: missing expression", name))
			result.Valid = false
			continue
		}

		outcome := expression.Validate(fm.Expression)
		if !outcome.Valid {
			for _, msg := range outcome.Errors {
				result.Errors = append(result.Errors, fmt.Sprintf("field %q: %s", name, msg))
			}
			result.Valid = false
			continue
		}

		parsed, err := expression.Parse(fm.Expression)
		if err != nil {
			// Validate accepted the expression, so Parse cannot fail here;
			// surface it anyway rather than dropping the field silently.
			result.Errors = append(result.Errors, fmt.Sprintf("field %q: %s", name, err.Error()))
			result.Valid = false
			continue
		}

		if _, ok := expression.ResolvePath(sample, parsed.Path); !ok {
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("field %q: path %q not found in test payload", name, parsed.Path))
		}
		result.MappedFields[name] = parsed
	}

	return result
}

// Outcome converts the result to the shared ValidationOutcome shape.
func (r *Result) Outcome() *models.ValidationOutcome {
	return &models.ValidationOutcome{
		Valid:    r.Valid,
		Errors:   append([]string{}, r.Errors...),
		Warnings: append([]string{}, r.Warnings...),
	}
}
