package apperrors

import "errors"

// Orchestration-level preconditions. These abort a whole run before any
// datasource is processed; per-datasource findings never surface here.
var (
	ErrAuthenticationRequired = errors.New("Authentication required")
	ErrNoSystems              = errors.New("No systems found to test")
	ErrNoDatasources          = errors.New("No datasources found to test")
)
