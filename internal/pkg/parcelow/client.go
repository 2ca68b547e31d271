package parcelow

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/323network/platform/internal/pkg/env"
	"github.com/gofiber/fiber/v2/log"
)

const (
	EnvProduction = "production"
	EnvSandbox    = "sandbox"

	productionBaseURL = "https://app.parcelow.com"
	sandboxBaseURL    = "https://sandbox-2.parcelow.com.br"
)

// ClientIDNormalizer decides how the configured client id is serialized
// in the token request. The gateway expects an all-digit id as a JSON
// number and anything else as a string.
type ClientIDNormalizer func(clientID string) any

// NumericClientIDPolicy is the default normalization policy.
func NumericClientIDPolicy(clientID string) any {
	if clientID == "" {
		return clientID
	}
	for _, r := range clientID {
		if r < '0' || r > '9' {
			return clientID
		}
	}
	var n int64
	if _, err := fmt.Sscan(clientID, &n); err != nil {
		return clientID
	}
	return n
}

// Client talks to the Parcelow payment gateway. It keeps no state
// between calls beyond its configuration.
type Client struct {
	Environment  string
	ClientID     string
	ClientSecret string
	BaseURL      string
	RedirectURL  string
	WebhookURL   string

	NormalizeClientID ClientIDNormalizer
	HTTPClient        *http.Client

	// now is injectable so the duplicate-email alias is testable.
	now func() time.Time
}

// NewClient creates a gateway client for the given environment.
func NewClient(environment, clientID, clientSecret string) *Client {
	baseURL := sandboxBaseURL
	if environment == EnvProduction {
		baseURL = productionBaseURL
	}
	return &Client{
		Environment:       environment,
		ClientID:          clientID,
		ClientSecret:      clientSecret,
		BaseURL:           baseURL,
		NormalizeClientID: NumericClientIDPolicy,
		HTTPClient: &http.Client{
			Timeout: 15 * time.Second,
		},
		now: time.Now,
	}
}

// NewClientFromEnv builds the client from environment configuration.
func NewClientFromEnv() *Client {
	environment := strings.TrimSpace(env.GetEnv("PARCELOW_ENVIRONMENT", EnvSandbox))
	c := NewClient(
		environment,
		strings.TrimSpace(env.GetEnv("PARCELOW_CLIENT_ID", "")),
		strings.TrimSpace(env.GetEnv("PARCELOW_CLIENT_SECRET", "")),
	)
	if base := strings.TrimSpace(env.GetEnv("PARCELOW_BASE_URL", "")); base != "" {
		c.BaseURL = strings.TrimRight(base, "/")
	}
	site := strings.TrimRight(env.GetEnv("SITE_URL", "https://323network.com"), "/")
	c.RedirectURL = site + "/services"
	apiBase := strings.TrimRight(env.GetEnv("PUBLIC_DOMAIN", site), "/")
	c.WebhookURL = apiBase + "/api/v1/webhooks/parcelow"
	return c
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

// Authenticate exchanges the configured credentials for a bearer token
// via a client-credentials grant.
func (c *Client) Authenticate(ctx context.Context) (string, error) {
	if strings.TrimSpace(c.ClientID) == "" || strings.TrimSpace(c.ClientSecret) == "" {
		return "", errors.New("PARCELOW_CLIENT_ID/PARCELOW_CLIENT_SECRET are not configured")
	}

	normalize := c.NormalizeClientID
	if normalize == nil {
		normalize = NumericClientIDPolicy
	}
	payload := map[string]any{
		"client_id":     normalize(c.ClientID),
		"client_secret": c.ClientSecret,
		"grant_type":    "client_credentials",
	}

	status, body, err := c.postJSON(ctx, c.BaseURL+"/oauth/token", "", payload)
	if err != nil {
		return "", err
	}
	if status < 200 || status >= 300 {
		log.Errorf("[Parcelow] auth failed (status %d): %s", status, truncate(string(body), 500))
		return "", normalizeUpstreamError("auth", status, body)
	}

	var out tokenResponse
	if err := json.Unmarshal(body, &out); err != nil || strings.TrimSpace(out.AccessToken) == "" {
		return "", &UpstreamProtocolError{Op: "auth", Reason: "invalid token response", Body: truncate(string(body), errorBodyPreviewLen)}
	}
	return out.AccessToken, nil
}

// OrderRequest carries the normalized customer data for order creation.
// Reference is the payment record id, used as idempotency reference.
type OrderRequest struct {
	AmountUSDCents int64
	ClientName     string
	ClientEmail    string
	ClientCPF      string
	Reference      string
}

// Order is the local representation of the externally owned order.
type Order struct {
	OrderID     int64
	CheckoutURL string
	Status      string
	StatusCode  int
}

type orderResponse struct {
	Data struct {
		OrderID     json.Number `json:"order_id"`
		CheckoutURL string      `json:"url_checkout"`
		Status      string      `json:"status"`
		StatusCode  int         `json:"status_code"`
	} `json:"data"`
}

// CreateOrder authenticates and submits the order. When the gateway
// rejects the customer email as a duplicate, the order is retried exactly
// once with a timestamp alias inserted before the @; a second duplicate
// failure propagates unchanged, as does any other error.
func (c *Client) CreateOrder(ctx context.Context, req OrderRequest) (*Order, error) {
	token, err := c.Authenticate(ctx)
	if err != nil {
		return nil, err
	}

	order, err := c.attemptCreateOrder(ctx, token, req)
	if err != nil && IsDuplicateEmail(err) {
		log.Infof("[Parcelow] duplicate customer email for order %s, retrying with alias", req.Reference)
		aliased := req
		aliased.ClientEmail = aliasEmail(req.ClientEmail, c.now())
		return c.attemptCreateOrder(ctx, token, aliased)
	}
	return order, err
}

func (c *Client) attemptCreateOrder(ctx context.Context, token string, req OrderRequest) (*Order, error) {
	payload := map[string]any{
		"reference": req.Reference,
		"items": []map[string]any{
			{
				"reference":   req.Reference,
				"description": "Service Payment",
				"quantity":    1,
				"amount":      req.AmountUSDCents,
			},
		},
		"client": map[string]any{
			"name":  req.ClientName,
			"email": req.ClientEmail,
			"cpf":   req.ClientCPF,
		},
		"redirect_url": c.RedirectURL,
		"webhook_url":  c.WebhookURL,
	}

	status, body, err := c.postJSON(ctx, c.BaseURL+"/api/orders", token, payload)
	if err != nil {
		return nil, err
	}
	if status < 200 || status >= 300 {
		log.Errorf("[Parcelow] order creation failed (status %d): %s", status, truncate(string(body), 500))
		return nil, normalizeUpstreamError("order", status, body)
	}

	var out orderResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, &UpstreamProtocolError{Op: "order", Reason: "invalid order response", Body: truncate(string(body), errorBodyPreviewLen)}
	}
	orderID, err := out.Data.OrderID.Int64()
	if err != nil || out.Data.CheckoutURL == "" {
		return nil, &UpstreamProtocolError{Op: "order", Reason: "invalid order response", Body: truncate(string(body), errorBodyPreviewLen)}
	}
	return &Order{
		OrderID:     orderID,
		CheckoutURL: out.Data.CheckoutURL,
		Status:      out.Data.Status,
		StatusCode:  out.Data.StatusCode,
	}, nil
}

func (c *Client) postJSON(ctx context.Context, url, bearer string, payload any) (int, []byte, error) {
	buf, err := json.Marshal(payload)
	if err != nil {
		return 0, nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(buf))
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	return resp.StatusCode, body, nil
}

// aliasEmail rewrites local@domain into local+<unix-millis>@domain. The
// alias keeps delivery working while making the address unique for the
// gateway's customer registry.
func aliasEmail(email string, at time.Time) string {
	idx := strings.Index(email, "@")
	if idx < 0 {
		return email
	}
	return fmt.Sprintf("%s+%d@%s", email[:idx], at.UnixMilli(), email[idx+1:])
}
