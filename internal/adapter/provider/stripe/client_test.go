package stripe

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/apexlens/backoffice/internal/domain"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestClient_CreateCustomer_Success(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/customers" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if r.Method != http.MethodPost {
			t.Errorf("unexpected method: %s", r.Method)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer sk_test" {
			t.Errorf("Authorization = %q", got)
		}
		if got := r.Header.Get("Content-Type"); got != "application/x-www-form-urlencoded" {
			t.Errorf("Content-Type = %q", got)
		}
		if err := r.ParseForm(); err != nil {
			t.Fatalf("parse form: %v", err)
		}
		if got := r.PostForm.Get("email"); got != "dana@example.com" {
			t.Errorf("email = %q", got)
		}

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id": "cus_abc"}`))
	}))
	defer srv.Close()

	c := NewClientWithURL("sk_test", srv.URL, newTestLogger())
	id, err := c.CreateCustomer(context.Background(), "dana@example.com", "Dana Whitfield")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id != "cus_abc" {
		t.Errorf("customer id = %q, want cus_abc", id)
	}
}

func TestClient_AddLineItem_MinorUnits(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/invoiceitems" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if err := r.ParseForm(); err != nil {
			t.Fatalf("parse form: %v", err)
		}
		if got := r.PostForm.Get("amount"); got != "25000" {
			t.Errorf("amount = %q, want 25000 (minor units)", got)
		}
		if got := r.PostForm.Get("currency"); got != "usd" {
			t.Errorf("currency = %q", got)
		}
		w.Write([]byte(`{"id": "ii_1"}`))
	}))
	defer srv.Close()

	c := NewClientWithURL("sk_test", srv.URL, newTestLogger())
	err := c.AddLineItem(context.Background(), "cus_abc", "in_1", 25000, "Photography, 1420 Maple Row")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestClient_FinalizeAndSend(t *testing.T) {
	t.Parallel()

	var calls []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls = append(calls, r.URL.Path)
		switch r.URL.Path {
		case "/invoices/in_1/finalize":
			w.Write([]byte(`{"id": "in_1", "customer": "cus_abc", "status": "open", "amount_due": 25000}`))
		case "/invoices/in_1/send":
			w.Write([]byte(`{"id": "in_1", "customer": "cus_abc", "status": "open", "amount_due": 25000, "hosted_invoice_url": "https://pay.example/in_1"}`))
		default:
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
	}))
	defer srv.Close()

	c := NewClientWithURL("sk_test", srv.URL, newTestLogger())
	ctx := context.Background()

	if _, err := c.FinalizeInvoice(ctx, "in_1"); err != nil {
		t.Fatalf("finalize: %v", err)
	}
	inv, err := c.SendInvoice(ctx, "in_1")
	if err != nil {
		t.Fatalf("send: %v", err)
	}

	if inv.HostedURL != "https://pay.example/in_1" {
		t.Errorf("hosted url = %q", inv.HostedURL)
	}
	if len(calls) != 2 || calls[0] != "/invoices/in_1/finalize" || calls[1] != "/invoices/in_1/send" {
		t.Errorf("call order = %v, want finalize then send", calls)
	}
}

func TestClient_GetInvoice_Paid(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("unexpected method: %s", r.Method)
		}
		w.Write([]byte(`{
			"id": "in_1", "customer": "cus_abc", "status": "paid", "amount_due": 25000,
			"status_transitions": {"paid_at": 1735689600}
		}`))
	}))
	defer srv.Close()

	c := NewClientWithURL("sk_test", srv.URL, newTestLogger())
	inv, err := c.GetInvoice(context.Background(), "in_1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !inv.Paid() {
		t.Error("invoice should report paid")
	}
	if inv.PaidAt == nil || inv.PaidAt.Unix() != 1735689600 {
		t.Errorf("paid_at = %v", inv.PaidAt)
	}
}

func TestClient_UpstreamError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusPaymentRequired)
		w.Write([]byte(`{"error": {"message": "your card was declined"}}`))
	}))
	defer srv.Close()

	c := NewClientWithURL("sk_test", srv.URL, newTestLogger())
	_, err := c.CreateCustomer(context.Background(), "x@example.com", "X")

	if !errors.Is(err, domain.ErrUpstream) {
		t.Fatalf("err = %v, want ErrUpstream", err)
	}
	var ue *domain.UpstreamError
	if !errors.As(err, &ue) {
		t.Fatal("err should be *domain.UpstreamError")
	}
	if ue.Status != http.StatusPaymentRequired {
		t.Errorf("status = %d, want 402", ue.Status)
	}
	if ue.Message != "your card was declined" {
		t.Errorf("message = %q", ue.Message)
	}
}
