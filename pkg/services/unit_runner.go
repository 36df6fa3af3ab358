package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/aifabrix/connector-engine/pkg/apperrors"
	"github.com/aifabrix/connector-engine/pkg/descriptor"
	"github.com/aifabrix/connector-engine/pkg/expression"
	"github.com/aifabrix/connector-engine/pkg/mapping"
	"github.com/aifabrix/connector-engine/pkg/models"
)

const noPayloadWarning = "No testPayload.payloadTemplate found - skipping field mapping and metadata schema tests"

// RunUnitTests validates every system and datasource descriptor offline:
// structural shape, systemKey cross-reference, field-mapping expressions
// against the sample payload, and the sample payload against the declared
// metadata schema. Aggregate validity is the conjunction of every result.
func (r *testRunner) RunUnitTests(ctx context.Context, systems []descriptor.SystemFile, datasources []descriptor.DatasourceFile, opts UnitTestOptions) (*models.UnitTestReport, error) {
	if len(systems) == 0 {
		return nil, apperrors.ErrNoSystems
	}

	selected := filterDatasources(datasources, opts.Datasource)
	if len(selected) == 0 {
		return nil, apperrors.ErrNoDatasources
	}

	report := &models.UnitTestReport{
		RunID:    newRunID(),
		Valid:    true,
		Errors:   []string{},
		Warnings: []string{},
	}

	r.logger.Info("Starting unit test run",
		zap.String("run_id", report.RunID.String()),
		zap.Int("systems", len(systems)),
		zap.Int("datasources", len(selected)))

	for _, sf := range systems {
		outcome := r.schema.CheckSystemDescriptor(sf.System)
		report.SystemResults = append(report.SystemResults, models.FileCheckResult{
			File:     sf.Path,
			Key:      sf.System.Key,
			Valid:    outcome.Valid,
			Errors:   outcome.Errors,
			Warnings: outcome.Warnings,
		})
		if !outcome.Valid {
			report.Valid = false
		}
	}

	// Datasources cross-reference the first loaded system's key.
	systemKey := systems[0].System.Key

	for _, df := range selected {
		result := r.runDatasourceUnitChecks(df, systemKey, opts.Verbose)
		report.DatasourceResults = append(report.DatasourceResults, result)
		if !result.Valid {
			report.Valid = false
		}
	}

	r.logger.Info("Unit test run finished",
		zap.String("run_id", report.RunID.String()),
		zap.Bool("valid", report.Valid))

	return report, nil
}

// runDatasourceUnitChecks performs every offline check for one datasource.
func (r *testRunner) runDatasourceUnitChecks(df descriptor.DatasourceFile, systemKey string, verbose bool) models.DatasourceUnitResult {
	ds := df.Datasource
	result := models.DatasourceUnitResult{
		Key:      ds.Key,
		File:     df.Path,
		Valid:    true,
		Errors:   []string{},
		Warnings: []string{},
	}

	crossRef := r.schema.CheckDatasourceDescriptor(ds, systemKey)
	result.Errors = append(result.Errors, crossRef.Errors...)
	result.Warnings = append(result.Warnings, crossRef.Warnings...)
	if !crossRef.Valid {
		result.Valid = false
	}

	if ds.TestPayload == nil || ds.TestPayload.PayloadTemplate == nil {
		// Absence of a sample is a documentation gap, not a failure.
		result.Warnings = append(result.Warnings, noPayloadWarning)
		return result
	}
	template := ds.TestPayload.PayloadTemplate

	fm := mapping.CheckFieldMappings(ds, template)
	result.FieldMappingResults = fm.Outcome()
	if !fm.Valid {
		result.Valid = false
	}
	if verbose {
		result.MappedFieldCount = len(fm.MappedFields)
	}

	if ds.MetadataSchema == nil {
		result.Warnings = append(result.Warnings, "No metadata schema defined")
	} else {
		result.MetadataSchemaResults = r.schema.CheckInstance(template, ds.MetadataSchema)
		if !result.MetadataSchemaResults.Valid {
			result.Valid = false
		}
	}

	if ds.TestPayload.ExpectedResult != nil {
		errs := compareExpectedResult(ds.TestPayload.ExpectedResult, fm.MappedFields, template)
		if len(errs) > 0 {
			result.Errors = append(result.Errors, errs...)
			result.Valid = false
		}
	}

	return result
}

// compareExpectedResult runs each expected field's transformation chain
// against the payload template and diffs the produced value against the
// declared expectation.
func compareExpectedResult(expected map[string]any, mapped map[string]*expression.Expression, template map[string]any) []string {
	names := make([]string, 0, len(expected))
	for name := range expected {
		names = append(names, name)
	}
	sort.Strings(names)

	var errs []string
	for _, name := range names {
		expr, ok := mapped[name]
		if !ok {
			errs = append(errs, fmt.Sprintf("expectedResult references unmapped field %q", name))
			continue
		}
		actual, err := expression.Apply(expr, template)
		if err != nil {
			errs = append(errs, fmt.Sprintf("expectedResult field %q: %s", name, err.Error()))
			continue
		}
		if !jsonEqual(expected[name], actual) {
			errs = append(errs, fmt.Sprintf("expectedResult mismatch for field %q: expected %v, got %v", name, expected[name], actual))
		}
	}
	return errs
}

// jsonEqual compares two values by their JSON encoding, so YAML-decoded ints
// and JSON float64s with the same value compare equal.
func jsonEqual(a, b any) bool {
	aj, errA := json.Marshal(a)
	bj, errB := json.Marshal(b)
	if errA != nil || errB != nil {
		return false
	}
	return string(aj) == string(bj)
}
