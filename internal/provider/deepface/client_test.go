package deepface

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(baseURL string) Config {
	cfg := DefaultConfig()
	cfg.BaseURL = baseURL
	cfg.Timeout = 2 * time.Second
	cfg.RetryCount = 0
	return cfg
}

func TestClient_Represent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/represent", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req RepresentRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "Facenet", req.Model)
		assert.Equal(t, "retinaface", req.Detector)
		assert.NotEmpty(t, req.Img)

		resp := RepresentResponse{
			Results: []RepresentResult{
				{
					Embedding:  []float64{0.1, 0.2, 0.3},
					FacialArea: FacialArea{X: 10, Y: 20, W: 100, H: 120},
				},
			},
		}
		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	}))
	defer server.Close()

	client := NewClient(testConfig(server.URL))
	resp, err := client.Represent(context.Background(), "aW1hZ2U=")

	require.NoError(t, err)
	require.Len(t, resp.Results, 1)
	assert.Equal(t, []float64{0.1, 0.2, 0.3}, resp.Results[0].Embedding)
	assert.Equal(t, 100, resp.Results[0].FacialArea.W)
}

func TestClient_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_ = json.NewEncoder(w).Encode(RepresentResponse{})
	}))
	defer server.Close()

	cfg := testConfig(server.URL)
	cfg.RetryCount = 2
	client := NewClient(cfg)

	_, err := client.Represent(context.Background(), "aW1hZ2U=")

	require.NoError(t, err)
	assert.Equal(t, int32(2), calls.Load())
}

func TestClient_DoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		http.Error(w, "bad image", http.StatusBadRequest)
	}))
	defer server.Close()

	cfg := testConfig(server.URL)
	cfg.RetryCount = 3
	client := NewClient(cfg)

	_, err := client.Represent(context.Background(), "not-an-image")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 400")
	assert.Equal(t, int32(1), calls.Load())
}

func TestClient_ExhaustedRetriesWrapUnavailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	cfg := testConfig(server.URL)
	client := NewClient(cfg)

	_, err := client.Represent(context.Background(), "aW1hZ2U=")

	assert.ErrorIs(t, err, ErrDeepFaceUnavailable)
}

func TestClient_ContextCancellationStopsRetries(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	cfg := testConfig(server.URL)
	cfg.RetryCount = 5

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	client := NewClient(cfg)
	_, err := client.Represent(ctx, "aW1hZ2U=")

	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestClient_InvalidJSONResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("not json"))
	}))
	defer server.Close()

	client := NewClient(testConfig(server.URL))
	_, err := client.Represent(context.Background(), "aW1hZ2U=")

	assert.ErrorIs(t, err, ErrInvalidResponse)
}

func TestCalculateBackoff(t *testing.T) {
	assert.Equal(t, time.Second, calculateBackoff(0))
	assert.Equal(t, time.Second, calculateBackoff(1))
	assert.Equal(t, 2*time.Second, calculateBackoff(2))
	assert.Equal(t, 4*time.Second, calculateBackoff(3))
	assert.Equal(t, 32*time.Second, calculateBackoff(10))
}
