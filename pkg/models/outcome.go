package models

// ValidationOutcome is the result shape shared by every checker. Domain-level
// invalidity lands in Errors/Warnings; checkers never fail the run for it.
type ValidationOutcome struct {
	Valid    bool     `json:"valid"`
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

// NewValidationOutcome returns an outcome that is valid until an error is added.
func NewValidationOutcome() *ValidationOutcome {
	return &ValidationOutcome{Valid: true, Errors: []string{}, Warnings: []string{}}
}

// AddError records a domain error and marks the outcome invalid.
func (o *ValidationOutcome) AddError(msg string) {
	o.Errors = append(o.Errors, msg)
	o.Valid = false
}

// AddWarning records a non-blocking finding.
func (o *ValidationOutcome) AddWarning(msg string) {
	o.Warnings = append(o.Warnings, msg)
}

// Merge folds another outcome into this one. The receiver becomes invalid if
// the other outcome is invalid.
func (o *ValidationOutcome) Merge(other *ValidationOutcome) {
	if other == nil {
		return
	}
	o.Errors = append(o.Errors, other.Errors...)
	o.Warnings = append(o.Warnings, other.Warnings...)
	if !other.Valid {
		o.Valid = false
	}
}
