package models

import (
	"encoding/json"

	"github.com/google/uuid"
)

// FileCheckResult records the structural validation of one descriptor file.
type FileCheckResult struct {
	File     string   `json:"file"`
	Key      string   `json:"key,omitempty"`
	Valid    bool     `json:"valid"`
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

// DatasourceUnitResult aggregates every offline check performed for one
// datasource. FieldMappingResults and MetadataSchemaResults are nil when the
// corresponding check was skipped (no test payload).
type DatasourceUnitResult struct {
	Key                   string             `json:"key"`
	File                  string             `json:"file"`
	Valid                 bool               `json:"valid"`
	Errors                []string           `json:"errors"`
	Warnings              []string           `json:"warnings"`
	FieldMappingResults   *ValidationOutcome `json:"fieldMappingResults"`
	MetadataSchemaResults *ValidationOutcome `json:"metadataSchemaResults"`

	// MappedFieldCount is populated only in verbose mode.
	MappedFieldCount int `json:"mappedFieldCount,omitempty"`
}

// UnitTestReport is the aggregate outcome of an offline validation run.
// Valid is the conjunction of every system and datasource result.
type UnitTestReport struct {
	RunID             uuid.UUID              `json:"runId"`
	Valid             bool                   `json:"valid"`
	SystemResults     []FileCheckResult      `json:"systemResults"`
	DatasourceResults []DatasourceUnitResult `json:"datasourceResults"`
	Errors            []string               `json:"errors"`
	Warnings          []string               `json:"warnings"`
}

// IntegrationDatasourceResult records the outcome of testing one datasource
// against the dataplane. A skipped datasource carries only Reason and is
// excluded from the overall success conjunction.
type IntegrationDatasourceResult struct {
	Key     string `json:"key"`
	Skipped bool   `json:"skipped"`
	Reason  string `json:"reason,omitempty"`

	Success             bool            `json:"success"`
	Error               string          `json:"error,omitempty"`
	ValidationResults   json.RawMessage `json:"validationResults,omitempty"`
	FieldMappingResults json.RawMessage `json:"fieldMappingResults,omitempty"`
	EndpointTestResults json.RawMessage `json:"endpointTestResults,omitempty"`
}

// IntegrationTestReport is the aggregate outcome of a remote test run.
// Results appear in input order; a single datasource failure never aborts
// the remaining datasources.
type IntegrationTestReport struct {
	RunID             uuid.UUID                     `json:"runId"`
	Success           bool                          `json:"success"`
	SystemKey         string                        `json:"systemKey"`
	DatasourceResults []IntegrationDatasourceResult `json:"datasourceResults"`
}
