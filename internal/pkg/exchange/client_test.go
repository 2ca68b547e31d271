package exchange

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func newTestQuoteService(url string) *HTTPQuoteService {
	return &HTTPQuoteService{
		URL:        url,
		HTTPClient: &http.Client{Timeout: 2 * time.Second},
	}
}

func TestUSDToBRL_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"base":"USD","rates":{"BRL":5.43,"EUR":0.92}}`)
	}))
	defer srv.Close()

	rate, err := newTestQuoteService(srv.URL).USDToBRL(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rate != 5.43 {
		t.Fatalf("rate = %v, want 5.43", rate)
	}
}

func TestUSDToBRL_MissingRate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"base":"USD","rates":{"EUR":0.92}}`)
	}))
	defer srv.Close()

	if _, err := newTestQuoteService(srv.URL).USDToBRL(context.Background()); err == nil {
		t.Fatalf("expected error for missing BRL rate")
	}
}

func TestUSDToBRL_UpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	if _, err := newTestQuoteService(srv.URL).USDToBRL(context.Background()); err == nil {
		t.Fatalf("expected error for upstream failure")
	}
}

func TestUSDToBRL_InvalidBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "not json")
	}))
	defer srv.Close()

	if _, err := newTestQuoteService(srv.URL).USDToBRL(context.Background()); err == nil {
		t.Fatalf("expected error for invalid body")
	}
}
