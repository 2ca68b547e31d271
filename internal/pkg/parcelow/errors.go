package parcelow

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// duplicateEmailCode is the structured error code some gateway responses
// carry. duplicateEmailMarker is the message-level fallback; the gateway
// reports duplicate customer emails in Portuguese.
const (
	duplicateEmailCode   = "client_email_exists"
	duplicateEmailMarker = "Email do cliente existente"
)

const errorBodyPreviewLen = 100

// UpstreamOutageError means the gateway answered with an HTML error page
// instead of its API, typically a wrong base URL or the service being down.
type UpstreamOutageError struct {
	Op         string
	StatusCode int
}

func (e *UpstreamOutageError) Error() string {
	return fmt.Sprintf("parcelow %s: upstream returned HTML error page (status %d)", e.Op, e.StatusCode)
}

// UpstreamAPIError is a structured error answer from the gateway API.
// Code is empty when the gateway only supplied a message, or when the
// body was not parseable and Message holds a truncated raw preview.
type UpstreamAPIError struct {
	Op         string
	StatusCode int
	Code       string
	Message    string
}

func (e *UpstreamAPIError) Error() string {
	return fmt.Sprintf("parcelow %s: %s (status %d)", e.Op, e.Message, e.StatusCode)
}

// UpstreamProtocolError means the gateway reported success but the body
// could not be interpreted.
type UpstreamProtocolError struct {
	Op     string
	Reason string
	Body   string
}

func (e *UpstreamProtocolError) Error() string {
	return fmt.Sprintf("parcelow %s: %s: %s", e.Op, e.Reason, e.Body)
}

// IsDuplicateEmail reports whether an order-creation failure was caused
// by the customer email already existing at the gateway. The structured
// code is checked first; message matching is the fallback because older
// gateway responses only carry the Portuguese message text.
func IsDuplicateEmail(err error) bool {
	var apiErr *UpstreamAPIError
	if !errors.As(err, &apiErr) {
		return false
	}
	if apiErr.Code != "" {
		return apiErr.Code == duplicateEmailCode
	}
	return strings.Contains(apiErr.Message, duplicateEmailMarker)
}

// errorBody is the JSON shape of gateway error answers.
type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Err     string `json:"error"`
}

// normalizeUpstreamError maps a non-2xx gateway answer onto the error
// taxonomy: HTML pages become outage errors, JSON bodies become API
// errors, and anything else becomes an API error with a truncated
// preview of the raw body.
func normalizeUpstreamError(op string, statusCode int, body []byte) error {
	if strings.Contains(string(body), "<!DOCTYPE") {
		return &UpstreamOutageError{Op: op, StatusCode: statusCode}
	}

	var parsed errorBody
	if err := json.Unmarshal(body, &parsed); err == nil {
		msg := parsed.Message
		if msg == "" {
			msg = parsed.Err
		}
		if msg != "" {
			return &UpstreamAPIError{Op: op, StatusCode: statusCode, Code: parsed.Code, Message: msg}
		}
	}

	return &UpstreamAPIError{Op: op, StatusCode: statusCode, Message: truncate(string(body), errorBodyPreviewLen)}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
