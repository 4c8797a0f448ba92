package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testAddress = "DRpbCBMxVnDK7maPM5tGv6MvB3v1sRMC86PZ8okm21hy"

func TestActivities(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/wallet/"+testAddress+"/activities", r.URL.Path)

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[
			{
				"signature": "sig1",
				"timestamp": 1700000000,
				"slot": 12345,
				"confirmation_status": "finalized",
				"sol_amount": -2.0,
				"fee": 5000,
				"status": "success",
				"block_time": "2023-11-14 22:13:20 UTC"
			},
			{
				"signature": "sig2",
				"slot": 12344,
				"status": "failed"
			}
		]`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, nil, nil)
	activities, err := c.Activities(context.Background(), testAddress)
	require.NoError(t, err)
	require.Len(t, activities, 2)

	first := activities[0]
	assert.Equal(t, "sig1", first.Signature)
	assert.Equal(t, uint64(12345), first.Slot)
	require.NotNil(t, first.Timestamp)
	assert.Equal(t, int64(1700000000), *first.Timestamp)
	require.NotNil(t, first.SolAmount)
	assert.Equal(t, -2.0, *first.SolAmount)
	require.NotNil(t, first.Fee)
	assert.Equal(t, uint64(5000), *first.Fee)
	assert.Equal(t, "success", first.Status)

	second := activities[1]
	assert.Equal(t, "sig2", second.Signature)
	assert.Equal(t, "failed", second.Status)
	assert.Nil(t, second.SolAmount)
	assert.Nil(t, second.Fee)
	assert.Nil(t, second.BlockTime)
}

func TestActivities_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error": "invalid address format: must contain only valid base58 characters"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, nil, nil)
	_, err := c.Activities(context.Background(), "bogus!")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid address format")
}

func TestActivities_NonJSONError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("upstream exploded"))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, nil, nil)
	_, err := c.Activities(context.Background(), testAddress)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 502")
	assert.Contains(t, err.Error(), "upstream exploded")
}

func TestHealth(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			w.WriteHeader(http.StatusOK)
			w.Write([]byte("OK"))
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, nil, nil)
	assert.NoError(t, c.Health(context.Background()))
}

func TestHealth_Unhealthy(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, nil, nil)
	err := c.Health(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 503")
}
