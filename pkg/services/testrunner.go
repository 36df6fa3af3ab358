package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/aifabrix/connector-engine/pkg/auth"
	"github.com/aifabrix/connector-engine/pkg/dataplane"
	"github.com/aifabrix/connector-engine/pkg/descriptor"
	"github.com/aifabrix/connector-engine/pkg/models"
	"github.com/aifabrix/connector-engine/pkg/retry"
	"github.com/aifabrix/connector-engine/pkg/schema"
)

// DataplaneClient is the slice of the dataplane API the runner depends on.
type DataplaneClient interface {
	TestDatasource(ctx context.Context, systemKey, datasourceKey string, payload any, token string, timeout time.Duration) (*dataplane.PipelineTestResult, error)
}

// UnitTestOptions tunes an offline validation run.
type UnitTestOptions struct {
	// Datasource filters the run to one datasource key. Empty runs all.
	Datasource string
	// Verbose adds mapped-field counts to datasource results.
	Verbose bool
}

// IntegrationTestOptions tunes a remote test run.
type IntegrationTestOptions struct {
	// Datasource filters the run to one datasource key. Empty runs all.
	Datasource string
	// Payload, when set, overrides every datasource's own payloadTemplate.
	Payload map[string]any
	// Timeout bounds each dataplane call. Zero uses dataplane.DefaultTimeout.
	Timeout time.Duration
}

// TestRunner validates integration descriptors offline and exercises them
// against the dataplane. Both entry points return pure data reports; a single
// datasource's failure never aborts the remaining datasources.
type TestRunner interface {
	// RunUnitTests validates descriptors and sample payloads entirely offline.
	RunUnitTests(ctx context.Context, systems []descriptor.SystemFile, datasources []descriptor.DatasourceFile, opts UnitTestOptions) (*models.UnitTestReport, error)

	// RunIntegrationTests runs each datasource's pipeline on the dataplane.
	RunIntegrationTests(ctx context.Context, systems []descriptor.SystemFile, datasources []descriptor.DatasourceFile, creds *auth.Credentials, opts IntegrationTestOptions) (*models.IntegrationTestReport, error)
}

type testRunner struct {
	logger   *zap.Logger
	schema   *schema.Checker
	client   DataplaneClient
	retryCfg *retry.Config
}

// NewTestRunner creates a test runner. client may be nil when only offline
// validation is needed; retryCfg nil falls back to retry.DefaultConfig.
func NewTestRunner(schemaChecker *schema.Checker, client DataplaneClient, retryCfg *retry.Config, logger *zap.Logger) TestRunner {
	if logger == nil {
		logger = zap.NewNop()
	}
	if retryCfg == nil {
		retryCfg = retry.DefaultConfig()
	}
	return &testRunner{
		logger:   logger.Named("testrunner"),
		schema:   schemaChecker,
		client:   client,
		retryCfg: retryCfg,
	}
}

// filterDatasources narrows the input list to the requested key. An empty key
// keeps everything. Input order is preserved.
func filterDatasources(files []descriptor.DatasourceFile, key string) []descriptor.DatasourceFile {
	if key == "" {
		return files
	}
	var filtered []descriptor.DatasourceFile
	for _, f := range files {
		if f.Datasource.Key == key {
			filtered = append(filtered, f)
		}
	}
	return filtered
}

// newRunID tags every report so log lines and rendered reports correlate.
func newRunID() uuid.UUID {
	return uuid.New()
}
