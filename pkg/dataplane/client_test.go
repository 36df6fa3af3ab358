package dataplane

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestTestDatasource_Success(t *testing.T) {
	var gotPath, gotAuth string
	var gotBody map[string]any

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"success": true,
			"data": {
				"success": true,
				"validationResults": {"valid": true},
				"fieldMappingResults": {"mapped": 3},
				"endpointTestResults": {"status": 200}
			}
		}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, zap.NewNop())
	result, err := client.TestDatasource(context.Background(), "hubspot", "hubspot-company",
		map[string]any{"properties": map[string]any{}}, "test-token", 5*time.Second)

	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.JSONEq(t, `{"valid": true}`, string(result.ValidationResults))
	assert.JSONEq(t, `{"mapped": 3}`, string(result.FieldMappingResults))
	assert.JSONEq(t, `{"status": 200}`, string(result.EndpointTestResults))

	assert.Equal(t, "/api/v1/systems/hubspot/datasources/hubspot-company/test", gotPath)
	assert.Equal(t, "Bearer test-token", gotAuth)
	assert.Contains(t, gotBody, "payload")
}

func TestTestDatasource_AbsentSuccessFlagMeansSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success": true, "data": {}}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, zap.NewNop())
	result, err := client.TestDatasource(context.Background(), "sys", "ds", nil, "tok", 5*time.Second)

	require.NoError(t, err)
	assert.True(t, result.Success)
}

func TestTestDatasource_ExplicitFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success": true, "data": {"success": false}}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, zap.NewNop())
	result, err := client.TestDatasource(context.Background(), "sys", "ds", nil, "tok", 5*time.Second)

	require.NoError(t, err)
	assert.False(t, result.Success)
}

func TestTestDatasource_HTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "pipeline exploded", http.StatusBadGateway)
	}))
	defer server.Close()

	client := NewClient(server.URL, zap.NewNop())
	_, err := client.TestDatasource(context.Background(), "sys", "ds", nil, "tok", 5*time.Second)

	require.Error(t, err)
	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusBadGateway, statusErr.StatusCode)
	assert.Contains(t, statusErr.Body, "pipeline exploded")
}

func TestTestDatasource_TimeoutEnforced(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(500 * time.Millisecond)
	}))
	defer server.Close()

	client := NewClient(server.URL, zap.NewNop())
	start := time.Now()
	_, err := client.TestDatasource(context.Background(), "sys", "ds", nil, "tok", 50*time.Millisecond)

	require.Error(t, err)
	assert.Less(t, time.Since(start), 400*time.Millisecond)
}

func TestTestDatasource_InvalidBaseURL(t *testing.T) {
	client := NewClient("://not-a-url", zap.NewNop())
	_, err := client.TestDatasource(context.Background(), "sys", "ds", nil, "tok", 0)
	assert.ErrorContains(t, err, "failed to build URL")
}
