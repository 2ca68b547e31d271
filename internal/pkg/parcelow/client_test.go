package parcelow

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"
)

func newTestClient(baseURL string) *Client {
	c := NewClient(EnvSandbox, "1129", "secret")
	c.BaseURL = baseURL
	c.RedirectURL = "https://323network.com/services"
	c.WebhookURL = "https://323network.com/api/v1/webhooks/parcelow"
	c.now = func() time.Time { return time.UnixMilli(1700000000000) }
	return c
}

func TestNumericClientIDPolicy(t *testing.T) {
	tests := []struct {
		in   string
		want any
	}{
		{in: "1129", want: int64(1129)},
		{in: "007", want: int64(7)},
		{in: "abc12", want: "abc12"},
		{in: "12-34", want: "12-34"},
		{in: "", want: ""},
	}
	for _, tt := range tests {
		if got := NumericClientIDPolicy(tt.in); got != tt.want {
			t.Fatalf("NumericClientIDPolicy(%q) = %v (%T), want %v (%T)", tt.in, got, got, tt.want, tt.want)
		}
	}
}

func TestAuthenticate_SendsNumericClientID(t *testing.T) {
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/oauth/token" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Fatalf("decode token request: %v", err)
		}
		fmt.Fprint(w, `{"access_token":"tok-1","token_type":"Bearer","expires_in":3600}`)
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	token, err := c.Authenticate(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if token != "tok-1" {
		t.Fatalf("token = %q, want tok-1", token)
	}
	// JSON numbers decode as float64; an all-digit id must arrive numeric.
	if _, ok := gotBody["client_id"].(float64); !ok {
		t.Fatalf("client_id arrived as %T, want JSON number", gotBody["client_id"])
	}
	if gotBody["grant_type"] != "client_credentials" {
		t.Fatalf("grant_type = %v", gotBody["grant_type"])
	}
}

func TestAuthenticate_ErrorShapes(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		check   func(t *testing.T, err error)
	}{
		{
			name:   "html page is an outage",
			status: 502,
			body:   "<!DOCTYPE html><html><body>Bad Gateway</body></html>",
			check: func(t *testing.T, err error) {
				var outage *UpstreamOutageError
				if !errors.As(err, &outage) {
					t.Fatalf("expected UpstreamOutageError, got %T: %v", err, err)
				}
				if outage.StatusCode != 502 {
					t.Fatalf("status = %d, want 502", outage.StatusCode)
				}
			},
		},
		{
			name:   "json message is surfaced",
			status: 401,
			body:   `{"message":"Invalid credentials"}`,
			check: func(t *testing.T, err error) {
				var apiErr *UpstreamAPIError
				if !errors.As(err, &apiErr) {
					t.Fatalf("expected UpstreamAPIError, got %T: %v", err, err)
				}
				if apiErr.Message != "Invalid credentials" {
					t.Fatalf("message = %q", apiErr.Message)
				}
			},
		},
		{
			name:   "json error field is surfaced",
			status: 400,
			body:   `{"error":"invalid_client"}`,
			check: func(t *testing.T, err error) {
				var apiErr *UpstreamAPIError
				if !errors.As(err, &apiErr) {
					t.Fatalf("expected UpstreamAPIError, got %T: %v", err, err)
				}
				if apiErr.Message != "invalid_client" {
					t.Fatalf("message = %q", apiErr.Message)
				}
			},
		},
		{
			name:   "garbage body is truncated",
			status: 500,
			body:   string(make([]byte, 300)),
			check: func(t *testing.T, err error) {
				var apiErr *UpstreamAPIError
				if !errors.As(err, &apiErr) {
					t.Fatalf("expected UpstreamAPIError, got %T: %v", err, err)
				}
				if len(apiErr.Message) > errorBodyPreviewLen {
					t.Fatalf("message not truncated, len=%d", len(apiErr.Message))
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				fmt.Fprint(w, tt.body)
			}))
			defer srv.Close()

			c := newTestClient(srv.URL)
			_, err := c.Authenticate(context.Background())
			if err == nil {
				t.Fatalf("expected error")
			}
			tt.check(t, err)
		})
	}
}

func TestAuthenticate_InvalidSuccessBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "not json at all")
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	_, err := c.Authenticate(context.Background())
	var protoErr *UpstreamProtocolError
	if !errors.As(err, &protoErr) {
		t.Fatalf("expected UpstreamProtocolError, got %T: %v", err, err)
	}
}

func TestCreateOrder_Success(t *testing.T) {
	var orderPayload map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/oauth/token":
			fmt.Fprint(w, `{"access_token":"tok-1"}`)
		case "/api/orders":
			if got := r.Header.Get("Authorization"); got != "Bearer tok-1" {
				t.Fatalf("authorization header = %q", got)
			}
			if err := json.NewDecoder(r.Body).Decode(&orderPayload); err != nil {
				t.Fatalf("decode order request: %v", err)
			}
			fmt.Fprint(w, `{"data":{"order_id":98765,"url_checkout":"https://app.parcelow.com/checkout/98765","status":"Open","status_code":0}}`)
		default:
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	order, err := c.CreateOrder(context.Background(), OrderRequest{
		AmountUSDCents: 10000,
		ClientName:     "Maria Silva",
		ClientEmail:    "maria@example.com",
		ClientCPF:      "12345678909",
		Reference:      "pay-1",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if order.OrderID != 98765 {
		t.Fatalf("order id = %d", order.OrderID)
	}
	if order.CheckoutURL != "https://app.parcelow.com/checkout/98765" {
		t.Fatalf("checkout url = %q", order.CheckoutURL)
	}
	if orderPayload["reference"] != "pay-1" {
		t.Fatalf("reference = %v", orderPayload["reference"])
	}
	client := orderPayload["client"].(map[string]any)
	if client["cpf"] != "12345678909" {
		t.Fatalf("cpf = %v", client["cpf"])
	}
}

func TestCreateOrder_DuplicateEmailRetriesOnce(t *testing.T) {
	var mu sync.Mutex
	var emails []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/oauth/token":
			fmt.Fprint(w, `{"access_token":"tok-1"}`)
		case "/api/orders":
			var payload struct {
				Client struct {
					Email string `json:"email"`
				} `json:"client"`
			}
			_ = json.NewDecoder(r.Body).Decode(&payload)
			mu.Lock()
			emails = append(emails, payload.Client.Email)
			attempt := len(emails)
			mu.Unlock()

			if attempt == 1 {
				w.WriteHeader(422)
				fmt.Fprint(w, `{"message":"Email do cliente existente"}`)
				return
			}
			fmt.Fprint(w, `{"data":{"order_id":42,"url_checkout":"https://sandbox-2.parcelow.com.br/checkout/42","status":"Open"}}`)
		}
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	order, err := c.CreateOrder(context.Background(), OrderRequest{
		AmountUSDCents: 5000,
		ClientName:     "Maria Silva",
		ClientEmail:    "maria@example.com",
		ClientCPF:      "12345678909",
		Reference:      "pay-2",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if order.OrderID != 42 {
		t.Fatalf("order id = %d", order.OrderID)
	}
	if len(emails) != 2 {
		t.Fatalf("expected exactly 2 order attempts, got %d", len(emails))
	}
	if emails[0] != "maria@example.com" {
		t.Fatalf("first attempt email = %q", emails[0])
	}
	if emails[1] != "maria+1700000000000@example.com" {
		t.Fatalf("retry email = %q, want maria+1700000000000@example.com", emails[1])
	}
}

func TestCreateOrder_SecondDuplicatePropagates(t *testing.T) {
	attempts := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/oauth/token":
			fmt.Fprint(w, `{"access_token":"tok-1"}`)
		case "/api/orders":
			attempts++
			w.WriteHeader(422)
			fmt.Fprint(w, `{"message":"Email do cliente existente"}`)
		}
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	_, err := c.CreateOrder(context.Background(), OrderRequest{
		ClientEmail: "maria@example.com",
		Reference:   "pay-3",
	})
	if err == nil {
		t.Fatalf("expected error")
	}
	if !IsDuplicateEmail(err) {
		t.Fatalf("expected duplicate-email error, got %v", err)
	}
	if attempts != 2 {
		t.Fatalf("expected exactly 2 attempts, got %d", attempts)
	}
}

func TestCreateOrder_OtherErrorsNotRetried(t *testing.T) {
	attempts := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/oauth/token":
			fmt.Fprint(w, `{"access_token":"tok-1"}`)
		case "/api/orders":
			attempts++
			w.WriteHeader(400)
			fmt.Fprint(w, `{"message":"CPF invalido"}`)
		}
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	_, err := c.CreateOrder(context.Background(), OrderRequest{ClientEmail: "a@b.c", Reference: "pay-4"})
	if err == nil {
		t.Fatalf("expected error")
	}
	if attempts != 1 {
		t.Fatalf("expected single attempt, got %d", attempts)
	}
}

func TestIsDuplicateEmail(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "structured code", err: &UpstreamAPIError{Code: duplicateEmailCode, Message: "conflict"}, want: true},
		{name: "other code wins over message", err: &UpstreamAPIError{Code: "other", Message: duplicateEmailMarker}, want: false},
		{name: "message fallback", err: &UpstreamAPIError{Message: "Erro: " + duplicateEmailMarker}, want: true},
		{name: "unrelated api error", err: &UpstreamAPIError{Message: "CPF invalido"}, want: false},
		{name: "outage error", err: &UpstreamOutageError{Op: "order", StatusCode: 502}, want: false},
		{name: "plain error", err: errors.New(duplicateEmailMarker), want: false},
	}
	for _, tt := range tests {
		if got := IsDuplicateEmail(tt.err); got != tt.want {
			t.Fatalf("%s: IsDuplicateEmail = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestAliasEmail(t *testing.T) {
	at := time.UnixMilli(1234)
	if got := aliasEmail("user@example.com", at); got != "user+1234@example.com" {
		t.Fatalf("aliasEmail = %q", got)
	}
	// Malformed addresses pass through unchanged.
	if got := aliasEmail("no-at-sign", at); got != "no-at-sign" {
		t.Fatalf("aliasEmail = %q", got)
	}
}
