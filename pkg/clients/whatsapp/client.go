package whatsapp

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/mamadbah2/shroomtrack/internal/config"
)

// ErrDisabled is returned when no Cloud API credentials are configured.
var ErrDisabled = errors.New("whatsapp messaging is not configured")

// Sender delivers plain text WhatsApp messages.
type Sender interface {
	SendText(ctx context.Context, to, body string) (string, error)
}

// APIClient talks to the WhatsApp Cloud API through resty.
type APIClient struct {
	http          *resty.Client
	phoneNumberID string
}

// NewClient builds a Cloud API client from configuration.
func NewClient(cfg config.WhatsAppConfig) *APIClient {
	base := strings.TrimSuffix(cfg.BaseURL, "/")
	if !strings.HasPrefix(base, "http") {
		base = "https://" + base
	}

	client := resty.New().
		SetBaseURL(fmt.Sprintf("%s/%s", base, cfg.APIVersion)).
		SetAuthToken(cfg.AccessToken).
		SetHeader("Content-Type", "application/json").
		SetTimeout(15 * time.Second)

	return &APIClient{http: client, phoneNumberID: cfg.PhoneNumberID}
}

type sendResponse struct {
	Messages []struct {
		ID string `json:"id"`
	} `json:"messages"`
}

type apiError struct {
	Error struct {
		Message   string `json:"message"`
		Type      string `json:"type"`
		Code      int    `json:"code"`
		FBTraceID string `json:"fbtrace_id"`
	} `json:"error"`
}

// SendText sends body to the E.164 digits in to and returns the message id.
func (c *APIClient) SendText(ctx context.Context, to, body string) (string, error) {
	payload := map[string]any{
		"messaging_product": "whatsapp",
		"to":                to,
		"type":              "text",
		"text": map[string]any{
			"body":        body,
			"preview_url": false,
		},
	}

	result := new(sendResponse)
	failure := new(apiError)

	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(payload).
		SetResult(result).
		SetError(failure).
		Post(c.phoneNumberID + "/messages")
	if err != nil {
		return "", fmt.Errorf("send whatsapp message: %w", err)
	}

	if resp.StatusCode() >= http.StatusBadRequest {
		code := resp.StatusCode()
		if failure.Error.Code != 0 {
			code = failure.Error.Code
		}
		return "", fmt.Errorf("whatsapp api error: code=%d, message=%s", code, failure.Error.Message)
	}

	if len(result.Messages) == 0 {
		return "", nil
	}
	return result.Messages[0].ID, nil
}

// Disabled is the Sender used when the Cloud API is not configured.
type Disabled struct{}

// SendText always fails with ErrDisabled.
func (Disabled) SendText(context.Context, string, string) (string, error) {
	return "", ErrDisabled
}
