package services

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/aifabrix/connector-engine/pkg/apperrors"
	"github.com/aifabrix/connector-engine/pkg/auth"
	"github.com/aifabrix/connector-engine/pkg/dataplane"
	"github.com/aifabrix/connector-engine/pkg/descriptor"
	"github.com/aifabrix/connector-engine/pkg/models"
	"github.com/aifabrix/connector-engine/pkg/retry"
)

const noTestPayloadReason = "No test payload available"

// RunIntegrationTests runs each selected datasource's pipeline on the
// dataplane, strictly sequentially. Overall success is the conjunction over
// non-skipped datasources; a skipped datasource never flips it.
func (r *testRunner) RunIntegrationTests(ctx context.Context, systems []descriptor.SystemFile, datasources []descriptor.DatasourceFile, creds *auth.Credentials, opts IntegrationTestOptions) (*models.IntegrationTestReport, error) {
	token, err := creds.Bearer()
	if err != nil {
		return nil, apperrors.ErrAuthenticationRequired
	}

	if len(systems) == 0 {
		return nil, apperrors.ErrNoSystems
	}
	selected := filterDatasources(datasources, opts.Datasource)
	if len(selected) == 0 {
		return nil, apperrors.ErrNoDatasources
	}

	systemKey := systems[0].System.Key
	report := &models.IntegrationTestReport{
		RunID:     newRunID(),
		Success:   true,
		SystemKey: systemKey,
	}

	r.logger.Info("Starting integration test run",
		zap.String("run_id", report.RunID.String()),
		zap.String("system_key", systemKey),
		zap.Int("datasources", len(selected)))

	if creds.ExpiresBefore(time.Now()) {
		r.logger.Warn("Bearer credential is already expired; the dataplane will likely reject it",
			zap.String("run_id", report.RunID.String()))
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = dataplane.DefaultTimeout
	}

	// Datasources run one at a time: result order matches input order, and
	// one datasource's retries never interleave with another's calls.
	for _, df := range selected {
		ds := df.Datasource

		payload := opts.Payload
		if payload == nil && ds.TestPayload != nil {
			payload = ds.TestPayload.PayloadTemplate
		}
		if payload == nil {
			r.logger.Info("Skipping datasource without a test payload",
				zap.String("run_id", report.RunID.String()),
				zap.String("datasource_key", ds.Key))
			report.DatasourceResults = append(report.DatasourceResults, models.IntegrationDatasourceResult{
				Key:     ds.Key,
				Skipped: true,
				Reason:  noTestPayloadReason,
			})
			continue
		}

		res, err := retry.DoWithResult(ctx, r.retryCfg, func() (*dataplane.PipelineTestResult, error) {
			return r.client.TestDatasource(ctx, systemKey, ds.Key, payload, token, timeout)
		})
		if err != nil {
			r.logger.Warn("Datasource test failed after retries",
				zap.String("run_id", report.RunID.String()),
				zap.String("datasource_key", ds.Key),
				zap.Error(err))
			report.DatasourceResults = append(report.DatasourceResults, models.IntegrationDatasourceResult{
				Key:     ds.Key,
				Skipped: false,
				Success: false,
				Error:   err.Error(),
			})
			report.Success = false
			continue
		}

		report.DatasourceResults = append(report.DatasourceResults, models.IntegrationDatasourceResult{
			Key:                 ds.Key,
			Skipped:             false,
			Success:             res.Success,
			ValidationResults:   res.ValidationResults,
			FieldMappingResults: res.FieldMappingResults,
			EndpointTestResults: res.EndpointTestResults,
		})
		if !res.Success {
			report.Success = false
		}
	}

	r.logger.Info("Integration test run finished",
		zap.String("run_id", report.RunID.String()),
		zap.Bool("success", report.Success))

	return report, nil
}
