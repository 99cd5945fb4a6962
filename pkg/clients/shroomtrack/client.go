// Package shroomtrack is a small HTTP client for the shroomtrack API.
package shroomtrack

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/mamadbah2/shroomtrack/internal/domain/models"
	"github.com/mamadbah2/shroomtrack/internal/service/legacysync"
)

// ErrRejected is returned when the server answers with success=false.
var ErrRejected = errors.New("request rejected")

type envelope[T any] struct {
	Success bool   `json:"success"`
	Data    T      `json:"data"`
	Message string `json:"message"`
	Error   string `json:"error"`
}

func (e envelope[T]) err(status int) error {
	if e.Success && status < http.StatusBadRequest {
		return nil
	}
	reason := e.Error
	if reason == "" {
		reason = e.Message
	}
	if reason == "" {
		reason = http.StatusText(status)
	}
	return fmt.Errorf("%w: %s", ErrRejected, reason)
}

// Client calls the REST and legacy sync endpoints.
type Client struct {
	http *resty.Client
}

// New builds a client for the server at baseURL.
func New(baseURL string, timeout time.Duration) *Client {
	base := strings.TrimSuffix(baseURL, "/")
	if !strings.HasPrefix(base, "http") {
		base = "http://" + base
	}
	return &Client{
		http: resty.New().
			SetBaseURL(base).
			SetHeader("Content-Type", "application/json").
			SetTimeout(timeout),
	}
}

func do[T any](ctx context.Context, c *Client, method, path string, body interface{}, query map[string]string) (T, error) {
	out := new(envelope[T])
	req := c.http.R().
		SetContext(ctx).
		SetResult(out).
		SetError(out).
		ForceContentType("application/json").
		SetQueryParams(query)
	if body != nil {
		req.SetBody(body)
	}
	resp, err := req.Execute(method, path)
	if err != nil {
		var zero T
		return zero, fmt.Errorf("%s %s: %w", method, path, err)
	}
	if err := out.err(resp.StatusCode()); err != nil {
		var zero T
		return zero, fmt.Errorf("%s %s: %w", method, path, err)
	}
	return out.Data, nil
}

// Pull downloads the full legacy dataset.
func (c *Client) Pull(ctx context.Context) (models.SyncPayload, error) {
	return do[models.SyncPayload](ctx, c, http.MethodGet, "/api/sync", nil,
		map[string]string{"action": models.ActionGetFullDB})
}

// Push uploads a full dataset and returns the per-sheet write counts.
func (c *Client) Push(ctx context.Context, payload models.SyncPayload) (legacysync.Summary, error) {
	return do[legacysync.Summary](ctx, c, http.MethodPost, "/api/sync",
		models.SyncRequest{Action: models.ActionSyncFullDB, Payload: payload}, nil)
}

// Rates returns the current costing rates.
func (c *Client) Rates(ctx context.Context) (models.Rates, error) {
	return do[models.Rates](ctx, c, http.MethodGet, "/api/finance/rates", nil, nil)
}

// SetRates replaces the costing rates.
func (c *Client) SetRates(ctx context.Context, rates models.Rates) (models.Rates, error) {
	return do[models.Rates](ctx, c, http.MethodPut, "/api/finance/rates", rates, nil)
}

// Stage returns the live processing stage of a batch.
func (c *Client) Stage(ctx context.Context, batchID string) (models.StageView, error) {
	return do[models.StageView](ctx, c, http.MethodGet, "/api/batches/"+batchID+"/stage", nil, nil)
}
