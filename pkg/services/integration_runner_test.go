package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/aifabrix/connector-engine/pkg/apperrors"
	"github.com/aifabrix/connector-engine/pkg/auth"
	"github.com/aifabrix/connector-engine/pkg/dataplane"
	"github.com/aifabrix/connector-engine/pkg/descriptor"
	"github.com/aifabrix/connector-engine/pkg/models"
	"github.com/aifabrix/connector-engine/pkg/retry"
	"github.com/aifabrix/connector-engine/pkg/schema"
)

// mockDataplaneClient records every call and answers from canned results.
type mockDataplaneClient struct {
	results   map[string]*dataplane.PipelineTestResult
	errs      map[string]error
	calls     []string
	callCount map[string]int
	payloads  map[string]any
	tokens    []string
}

func newMockDataplaneClient() *mockDataplaneClient {
	return &mockDataplaneClient{
		results:   map[string]*dataplane.PipelineTestResult{},
		errs:      map[string]error{},
		callCount: map[string]int{},
		payloads:  map[string]any{},
	}
}

func (m *mockDataplaneClient) TestDatasource(ctx context.Context, systemKey, datasourceKey string, payload any, token string, timeout time.Duration) (*dataplane.PipelineTestResult, error) {
	m.calls = append(m.calls, datasourceKey)
	m.callCount[datasourceKey]++
	m.payloads[datasourceKey] = payload
	m.tokens = append(m.tokens, token)

	if err, ok := m.errs[datasourceKey]; ok {
		return nil, err
	}
	if res, ok := m.results[datasourceKey]; ok {
		return res, nil
	}
	return &dataplane.PipelineTestResult{Success: true}, nil
}

// fastRetry keeps integration runner tests quick.
func fastRetry(maxRetries int) *retry.Config {
	return &retry.Config{
		MaxRetries:   maxRetries,
		InitialDelay: time.Millisecond,
		Multiplier:   2.0,
	}
}

func newIntegrationRunner(t *testing.T, client DataplaneClient, retryCfg *retry.Config) TestRunner {
	t.Helper()
	checker, err := schema.NewChecker(zap.NewNop())
	require.NoError(t, err)
	return NewTestRunner(checker, client, retryCfg, zap.NewNop())
}

func integrationDatasource(key string, withPayload bool) descriptor.DatasourceFile {
	ds := &models.Datasource{
		Key:       key,
		SystemKey: "hubspot",
		EntityKey: "company",
		FieldMappings: models.FieldMappings{
			Fields: map[string]models.FieldMapping{
				"name": {Expression: "{{properties.name}}"},
			},
		},
	}
	if withPayload {
		ds.TestPayload = &models.TestPayload{
			PayloadTemplate: map[string]any{"properties": map[string]any{"name": "Acme"}},
		}
	}
	return descriptor.DatasourceFile{Path: "datasources/" + key + ".yaml", Datasource: ds}
}

func testCreds() *auth.Credentials {
	return &auth.Credentials{AccessToken: "test-token"}
}

func TestRunIntegrationTests_AuthenticationRequired(t *testing.T) {
	runner := newIntegrationRunner(t, newMockDataplaneClient(), fastRetry(0))

	_, err := runner.RunIntegrationTests(context.Background(),
		[]descriptor.SystemFile{hubspotSystemFile()},
		[]descriptor.DatasourceFile{integrationDatasource("a", true)},
		nil, IntegrationTestOptions{})
	assert.ErrorIs(t, err, apperrors.ErrAuthenticationRequired)

	_, err = runner.RunIntegrationTests(context.Background(),
		[]descriptor.SystemFile{hubspotSystemFile()},
		[]descriptor.DatasourceFile{integrationDatasource("a", true)},
		&auth.Credentials{}, IntegrationTestOptions{})
	assert.ErrorIs(t, err, apperrors.ErrAuthenticationRequired)
}

func TestRunIntegrationTests_SequentialOrderingWithFailure(t *testing.T) {
	client := newMockDataplaneClient()
	client.errs["b"] = errors.New("connection refused")
	runner := newIntegrationRunner(t, client, fastRetry(2))

	report, err := runner.RunIntegrationTests(context.Background(),
		[]descriptor.SystemFile{hubspotSystemFile()},
		[]descriptor.DatasourceFile{
			integrationDatasource("a", true),
			integrationDatasource("b", true),
			integrationDatasource("c", true),
		},
		testCreds(), IntegrationTestOptions{})

	require.NoError(t, err)
	assert.False(t, report.Success)
	assert.Equal(t, "hubspot", report.SystemKey)

	require.Len(t, report.DatasourceResults, 3)
	assert.Equal(t, "a", report.DatasourceResults[0].Key)
	assert.Equal(t, "b", report.DatasourceResults[1].Key)
	assert.Equal(t, "c", report.DatasourceResults[2].Key)

	assert.True(t, report.DatasourceResults[0].Success)
	assert.False(t, report.DatasourceResults[1].Success)
	assert.Equal(t, "connection refused", report.DatasourceResults[1].Error)
	assert.True(t, report.DatasourceResults[2].Success)

	// b's failure exhausted 1 initial attempt + 2 retries before c ran.
	assert.Equal(t, 3, client.callCount["b"])
	assert.Equal(t, 1, client.callCount["a"])
	assert.Equal(t, 1, client.callCount["c"])
	assert.Equal(t, []string{"a", "b", "b", "b", "c"}, client.calls)
}

func TestRunIntegrationTests_SkipWithoutPayload(t *testing.T) {
	client := newMockDataplaneClient()
	runner := newIntegrationRunner(t, client, fastRetry(0))

	report, err := runner.RunIntegrationTests(context.Background(),
		[]descriptor.SystemFile{hubspotSystemFile()},
		[]descriptor.DatasourceFile{
			integrationDatasource("a", true),
			integrationDatasource("no-payload", false),
		},
		testCreds(), IntegrationTestOptions{})

	require.NoError(t, err)
	// The skip is excluded from the success conjunction.
	assert.True(t, report.Success)

	require.Len(t, report.DatasourceResults, 2)
	skipped := report.DatasourceResults[1]
	assert.True(t, skipped.Skipped)
	assert.Equal(t, noTestPayloadReason, skipped.Reason)
	assert.NotContains(t, client.calls, "no-payload")
}

func TestRunIntegrationTests_PayloadOverride(t *testing.T) {
	client := newMockDataplaneClient()
	runner := newIntegrationRunner(t, client, fastRetry(0))

	override := map[string]any{"properties": map[string]any{"name": "Override"}}
	report, err := runner.RunIntegrationTests(context.Background(),
		[]descriptor.SystemFile{hubspotSystemFile()},
		[]descriptor.DatasourceFile{
			integrationDatasource("a", true),
			integrationDatasource("no-payload", false),
		},
		testCreds(), IntegrationTestOptions{Payload: override})

	require.NoError(t, err)
	assert.True(t, report.Success)

	// The override beats a's own template and rescues the payload-less datasource.
	assert.Equal(t, override, client.payloads["a"])
	assert.Equal(t, override, client.payloads["no-payload"])
	require.Len(t, report.DatasourceResults, 2)
	assert.False(t, report.DatasourceResults[1].Skipped)
}

func TestRunIntegrationTests_PipelineReportedFailure(t *testing.T) {
	client := newMockDataplaneClient()
	client.results["a"] = &dataplane.PipelineTestResult{Success: false}
	runner := newIntegrationRunner(t, client, fastRetry(0))

	report, err := runner.RunIntegrationTests(context.Background(),
		[]descriptor.SystemFile{hubspotSystemFile()},
		[]descriptor.DatasourceFile{integrationDatasource("a", true)},
		testCreds(), IntegrationTestOptions{})

	require.NoError(t, err)
	assert.False(t, report.Success)
	assert.False(t, report.DatasourceResults[0].Skipped)
	assert.False(t, report.DatasourceResults[0].Success)
	assert.Empty(t, report.DatasourceResults[0].Error)
}

func TestRunIntegrationTests_DatasourceFilter(t *testing.T) {
	client := newMockDataplaneClient()
	runner := newIntegrationRunner(t, client, fastRetry(0))

	report, err := runner.RunIntegrationTests(context.Background(),
		[]descriptor.SystemFile{hubspotSystemFile()},
		[]descriptor.DatasourceFile{
			integrationDatasource("a", true),
			integrationDatasource("b", true),
		},
		testCreds(), IntegrationTestOptions{Datasource: "b"})

	require.NoError(t, err)
	require.Len(t, report.DatasourceResults, 1)
	assert.Equal(t, "b", report.DatasourceResults[0].Key)
	assert.Equal(t, []string{"b"}, client.calls)
}

func TestRunIntegrationTests_FilterMatchesNothing(t *testing.T) {
	runner := newIntegrationRunner(t, newMockDataplaneClient(), fastRetry(0))

	_, err := runner.RunIntegrationTests(context.Background(),
		[]descriptor.SystemFile{hubspotSystemFile()},
		[]descriptor.DatasourceFile{integrationDatasource("a", true)},
		testCreds(), IntegrationTestOptions{Datasource: "zzz"})

	assert.ErrorIs(t, err, apperrors.ErrNoDatasources)
}

func TestRunIntegrationTests_BearerTokenForwarded(t *testing.T) {
	client := newMockDataplaneClient()
	runner := newIntegrationRunner(t, client, fastRetry(0))

	_, err := runner.RunIntegrationTests(context.Background(),
		[]descriptor.SystemFile{hubspotSystemFile()},
		[]descriptor.DatasourceFile{integrationDatasource("a", true)},
		testCreds(), IntegrationTestOptions{})

	require.NoError(t, err)
	require.NotEmpty(t, client.tokens)
	assert.Equal(t, "test-token", client.tokens[0])
}
