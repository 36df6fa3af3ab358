// Package dataplane provides a client for the remote pipeline test endpoint.
// The dataplane executes a datasource's extraction pipeline against a sample
// payload and reports per-stage results.
package dataplane

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"time"

	"go.uber.org/zap"

	"github.com/aifabrix/connector-engine/pkg/jsonutil"
	"github.com/aifabrix/connector-engine/pkg/logging"
)

// DefaultTimeout is the maximum time to wait for a single pipeline test call.
const DefaultTimeout = 30 * time.Second

// PipelineTestResult is the dataplane's verdict for one datasource test.
type PipelineTestResult struct {
	Success             bool            `json:"success"`
	ValidationResults   json.RawMessage `json:"validationResults,omitempty"`
	FieldMappingResults json.RawMessage `json:"fieldMappingResults,omitempty"`
	EndpointTestResults json.RawMessage `json:"endpointTestResults,omitempty"`
}

// StatusError is returned when the dataplane answers with a non-2xx status.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("dataplane returned status %d: %s", e.StatusCode, e.Body)
}

// Client provides access to the dataplane pipeline test API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates a dataplane client for the given base URL. Per-call
// timeouts are enforced through the request context, not the http.Client.
func NewClient(baseURL string, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{},
		logger:     logger.Named("dataplane"),
	}
}

// TestDatasource asks the dataplane to run one datasource's pipeline against
// the given payload. token is sent as a bearer credential. A non-positive
// timeout falls back to DefaultTimeout.
func (c *Client) TestDatasource(ctx context.Context, systemKey, datasourceKey string, payload any, token string, timeout time.Duration) (*PipelineTestResult, error) {
	endpoint, err := buildURL(c.baseURL, "api", "v1", "systems", systemKey, "datasources", datasourceKey, "test")
	if err != nil {
		return nil, fmt.Errorf("failed to build URL: %w", err)
	}

	body, err := json.Marshal(map[string]any{"payload": payload})
	if err != nil {
		return nil, fmt.Errorf("failed to encode payload: %w", err)
	}

	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	c.logger.Debug("Testing datasource against dataplane",
		zap.String("url", endpoint),
		zap.String("system_key", systemKey),
		zap.String("datasource_key", datasourceKey))

	return c.doTestRequest(req, datasourceKey)
}

// doTestRequest executes the HTTP request and parses the test response.
func (c *Client) doTestRequest(req *http.Request, datasourceKey string) (*PipelineTestResult, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("Dataplane call failed",
			zap.String("datasource_key", datasourceKey),
			zap.String("error", logging.SanitizeError(err)))
		return nil, fmt.Errorf("failed to call dataplane: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.Error("Dataplane returned error",
			zap.Int("status", resp.StatusCode),
			zap.String("datasource_key", datasourceKey))
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	// Response format:
	// { "success": true, "data": { "success": ..., "validationResults": ..., ... } }
	var response struct {
		Success json.RawMessage `json:"success"`
		Data    struct {
			Success             json.RawMessage `json:"success"`
			ValidationResults   json.RawMessage `json:"validationResults"`
			FieldMappingResults json.RawMessage `json:"fieldMappingResults"`
			EndpointTestResults json.RawMessage `json:"endpointTestResults"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	result := &PipelineTestResult{
		// Absent or null success means the pipeline did not veto the test.
		Success:             jsonutil.FlexibleBoolValue(response.Data.Success, true),
		ValidationResults:   response.Data.ValidationResults,
		FieldMappingResults: response.Data.FieldMappingResults,
		EndpointTestResults: response.Data.EndpointTestResults,
	}

	c.logger.Debug("Got dataplane test result",
		zap.String("datasource_key", datasourceKey),
		zap.Bool("success", result.Success))

	return result, nil
}

// buildURL constructs a URL by parsing the base and joining path segments.
func buildURL(baseURL string, pathSegments ...string) (string, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return "", fmt.Errorf("invalid base URL: %w", err)
	}

	segments := append([]string{u.Path}, pathSegments...)
	u.Path = path.Join(segments...)

	return u.String(), nil
}
