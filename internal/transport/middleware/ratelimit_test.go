package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func limitedHandler(t *testing.T, perMinute int) http.Handler {
	t.Helper()
	rl := NewRateLimiter(time.Minute)
	t.Cleanup(rl.Stop)
	return rl.Limit(perMinute)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
}

func hit(h http.Handler, remoteAddr string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/quotes", nil)
	req.RemoteAddr = remoteAddr
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestRateLimiter_BurstUpToLimitThenBlocks(t *testing.T) {
	h := limitedHandler(t, 5)

	for i := 0; i < 5; i++ {
		require.Equal(t, http.StatusOK, hit(h, "198.51.100.7:40100").Code, "request %d", i)
	}

	rec := hit(h, "198.51.100.7:40100")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))

	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "rate limit exceeded", resp["error"])
}

func TestRateLimiter_BucketIsPerIPNotPerConnection(t *testing.T) {
	h := limitedHandler(t, 2)

	// Same client from rotating source ports stays in one bucket.
	hit(h, "198.51.100.7:40100")
	hit(h, "198.51.100.7:40101")
	assert.Equal(t, http.StatusTooManyRequests, hit(h, "198.51.100.7:40102").Code)

	// A different address is unaffected.
	assert.Equal(t, http.StatusOK, hit(h, "203.0.113.9:40100").Code)
}

func TestRateLimiter_RefillsOverTime(t *testing.T) {
	h := limitedHandler(t, 60) // one token per second

	for i := 0; i < 60; i++ {
		hit(h, "198.51.100.7:40100")
	}
	require.Equal(t, http.StatusTooManyRequests, hit(h, "198.51.100.7:40100").Code)

	time.Sleep(1100 * time.Millisecond)
	assert.Equal(t, http.StatusOK, hit(h, "198.51.100.7:40100").Code)
}
