package ga

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/apexlens/backoffice/internal/domain"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type staticTokens struct{ token string }

func (s staticTokens) Token(context.Context, string) (string, error) { return s.token, nil }

func TestClient_RunReport_MapsRows(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/properties/123:runReport" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer tok" {
			t.Errorf("Authorization = %q", got)
		}

		w.Write([]byte(`{
			"rows": [
				{
					"dimensionValues": [{"value": "20260901"}],
					"metricValues": [{"value": "42"}, {"value": "31"}, {"value": "97"}]
				},
				{
					"dimensionValues": [{"value": "20260902"}],
					"metricValues": [{"value": "17"}, {"value": "12"}, {"value": "40"}]
				}
			]
		}`))
	}))
	defer srv.Close()

	c := NewClientWithURL("properties/123", srv.URL, staticTokens{"tok"}, newTestLogger())
	start := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)

	rows, err := c.RunReport(context.Background(), start, start.AddDate(0, 0, 1))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(rows) != 2 {
		t.Fatalf("len(rows) = %d, want 2", len(rows))
	}
	if rows[0].Date != "20260901" || rows[0].Sessions != 42 || rows[0].ActiveUsers != 31 || rows[0].PageViews != 97 {
		t.Errorf("rows[0] = %+v", rows[0])
	}
	if rows[1].Sessions != 17 {
		t.Errorf("rows[1].Sessions = %d, want 17", rows[1].Sessions)
	}
}

func TestClient_RunReport_EmptyReport(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c := NewClientWithURL("properties/123", srv.URL, staticTokens{"tok"}, newTestLogger())
	rows, err := c.RunReport(context.Background(), time.Now().AddDate(0, 0, -7), time.Now())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rows) != 0 {
		t.Errorf("len(rows) = %d, want 0", len(rows))
	}
}

func TestClient_RunReport_UpstreamError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error": "quota exceeded"}`))
	}))
	defer srv.Close()

	c := NewClientWithURL("properties/123", srv.URL, staticTokens{"tok"}, newTestLogger())
	_, err := c.RunReport(context.Background(), time.Now().AddDate(0, 0, -7), time.Now())

	if !errors.Is(err, domain.ErrUpstream) {
		t.Fatalf("err = %v, want ErrUpstream", err)
	}
	var ue *domain.UpstreamError
	if errors.As(err, &ue) && ue.Status != http.StatusTooManyRequests {
		t.Errorf("status = %d, want 429", ue.Status)
	}
}
