package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/brojonat/soltracker/service/activity"
	solanago "github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testAddress = "DRpbCBMxVnDK7maPM5tGv6MvB3v1sRMC86PZ8okm21hy"

// mockActivityService implements ActivityService for testing.
type mockActivityService struct {
	records []activity.Record
	err     error
	called  bool
	wallet  solanago.PublicKey
}

func (m *mockActivityService) GetActivities(ctx context.Context, wallet solanago.PublicKey) ([]activity.Record, error) {
	m.called = true
	m.wallet = wallet
	if m.err != nil {
		return nil, m.err
	}
	return m.records, nil
}

func newTestMux(svc ActivityService) *http.ServeMux {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	mux := http.NewServeMux()
	mux.Handle("GET /api/wallet/{address}/activities", handleGetWalletActivities(svc, logger))
	return mux
}

func TestHandleGetWalletActivities_Success(t *testing.T) {
	timestamp := int64(1700000000)
	amount := -2.0
	fee := uint64(5000)
	blockTime := activity.FormatBlockTime(timestamp)
	confirmation := "finalized"

	svc := &mockActivityService{
		records: []activity.Record{
			{
				Signature:          "sig1",
				Slot:               12345,
				Timestamp:          &timestamp,
				ConfirmationStatus: &confirmation,
				SolAmount:          &amount,
				Fee:                &fee,
				Status:             activity.StatusSuccess,
				BlockTime:          &blockTime,
			},
			{
				Signature: "sig2",
				Slot:      12344,
				Status:    activity.StatusFailed,
			},
		},
	}
	mux := newTestMux(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/wallet/"+testAddress+"/activities", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.True(t, svc.called)
	assert.Equal(t, testAddress, svc.wallet.String())

	var body []map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body, 2)

	first := body[0]
	assert.Equal(t, "sig1", first["signature"])
	assert.Equal(t, float64(12345), first["slot"])
	assert.Equal(t, float64(1700000000), first["timestamp"])
	assert.Equal(t, "finalized", first["confirmation_status"])
	assert.Equal(t, -2.0, first["sol_amount"])
	assert.Equal(t, float64(5000), first["fee"])
	assert.Equal(t, "success", first["status"])
	assert.Equal(t, "2023-11-14 22:13:20 UTC", first["block_time"])

	// Degraded record: optional fields are omitted entirely, not null.
	second := body[1]
	assert.Equal(t, "sig2", second["signature"])
	assert.Equal(t, "failed", second["status"])
	assert.NotContains(t, second, "sol_amount")
	assert.NotContains(t, second, "fee")
	assert.NotContains(t, second, "timestamp")
	assert.NotContains(t, second, "block_time")
}

func TestHandleGetWalletActivities_EmptyResult(t *testing.T) {
	svc := &mockActivityService{records: []activity.Record{}}
	mux := newTestMux(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/wallet/"+testAddress+"/activities", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "[]\n", rec.Body.String())
}

func TestHandleGetWalletActivities_InvalidAddress(t *testing.T) {
	tests := []struct {
		name    string
		address string
	}{
		{"non-base58 characters", "not-a-valid-address!"},
		{"contains zero", "0000000000000000000000000000000000000000000"},
		{"too long", strings.Repeat("1", maxAddressLength+1)},
		{"wrong decoded length", "abc"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockActivityService{}
			mux := newTestMux(svc)

			req := httptest.NewRequest(http.MethodGet, "/api/wallet/"+tt.address+"/activities", nil)
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, req)

			require.Equal(t, http.StatusBadRequest, rec.Code)
			assert.False(t, svc.called, "service must not be called for invalid input")

			var body map[string]string
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.NotEmpty(t, body["error"])
		})
	}
}

func TestHandleGetWalletActivities_ServiceError(t *testing.T) {
	svc := &mockActivityService{err: errors.New("rpc endpoint unreachable")}
	mux := newTestMux(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/wallet/"+testAddress+"/activities", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	require.Equal(t, http.StatusInternalServerError, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Contains(t, body["error"], "failed to fetch activities")
	assert.Contains(t, body["error"], "rpc endpoint unreachable")
}

func TestParseAddress(t *testing.T) {
	wallet, err := parseAddress(testAddress)
	require.NoError(t, err)
	assert.Equal(t, testAddress, wallet.String())

	_, err = parseAddress("")
	assert.Error(t, err)

	_, err = parseAddress("addr\x00ess")
	assert.Error(t, err)

	// Valid base58 but decodes to fewer than 32 bytes.
	_, err = parseAddress("2xNzbF")
	assert.Error(t, err)
}

func TestCORSMiddleware(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	handler := corsMiddleware([]string{"http://localhost:3000"}, next)

	t.Run("allowed origin gets CORS headers", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		req.Header.Set("Origin", "http://localhost:3000")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t, "GET, POST, OPTIONS", rec.Header().Get("Access-Control-Allow-Methods"))
	})

	t.Run("unknown origin gets no CORS headers", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		req.Header.Set("Origin", "http://evil.example.com")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("preflight short-circuits", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodOptions, "/api/wallet/abc/activities", nil)
		req.Header.Set("Origin", "http://localhost:3000")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))
	})
}
