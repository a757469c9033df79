package adapter

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/sekolahku/offline-sync/internal/config"
	"github.com/sekolahku/offline-sync/internal/logger"
	"github.com/sekolahku/offline-sync/models"
)

type upsertRequest struct {
	Records []models.Record `json:"records"`
	Force   bool            `json:"force,omitempty"`
}

type deleteRequest struct {
	Keys []models.Record `json:"keys"`
}

// conflictResponse is the body the remote store sends with a 409.
type conflictResponse struct {
	Error     string    `json:"error"`
	UpdatedAt time.Time `json:"updated_at"`
}

type httpRemoteStore struct {
	client *resty.Client
	logger *logger.Logger

	mu    sync.RWMutex
	token string
}

// NewHTTPRemoteStore builds a RemoteStore speaking the table-store HTTP API:
// POST /api/tables/{table}/upsert and DELETE /api/tables/{table}/rows. Every
// request is bounded by cfg.RequestTimeout; a timed-out dispatch surfaces as
// an ordinary transport error.
func NewHTTPRemoteStore(cfg config.Remote, log *logger.Logger) (RemoteStore, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("remote store base URL is required")
	}
	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = config.DefaultRequestTimeout
	}

	cli := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetTimeout(timeout)

	return &httpRemoteStore{client: cli, logger: log, token: cfg.AuthToken}, nil
}

// SetToken replaces the bearer token attached to subsequent requests. The
// session layer calls this after login or refresh.
func (h *httpRemoteStore) SetToken(token string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.token = strings.TrimSpace(token)
}

func (h *httpRemoteStore) Token() string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.token
}

func (h *httpRemoteStore) Upsert(ctx context.Context, table string, records []models.Record, opts UpsertOptions) error {
	body := upsertRequest{Records: records, Force: opts.Force}

	resp, err := h.authedRequest(ctx, opts.ItemID).
		SetHeader("Content-Type", "application/json").
		SetBody(body).
		Post(fmt.Sprintf("/api/tables/%s/upsert", table))
	if err != nil {
		return fmt.Errorf("upsert request for table %s: %w", table, err)
	}

	return mapHTTPError(resp, table)
}

func (h *httpRemoteStore) Delete(ctx context.Context, table string, keys []models.Record, opts UpsertOptions) error {
	body := deleteRequest{Keys: keys}

	resp, err := h.authedRequest(ctx, opts.ItemID).
		SetHeader("Content-Type", "application/json").
		SetBody(body).
		Delete(fmt.Sprintf("/api/tables/%s/rows", table))
	if err != nil {
		return fmt.Errorf("delete request for table %s: %w", table, err)
	}

	return mapHTTPError(resp, table)
}

func (h *httpRemoteStore) authedRequest(ctx context.Context, itemID string) *resty.Request {
	req := h.client.R().SetContext(ctx)
	if token := h.Token(); token != "" {
		req.SetHeader("Authorization", "Bearer "+token)
	}
	if itemID != "" {
		req.SetHeader("Idempotency-Key", itemID)
	}
	return req
}

func mapHTTPError(resp *resty.Response, table string) error {
	if resp.StatusCode() >= http.StatusOK && resp.StatusCode() < http.StatusMultipleChoices {
		return nil
	}

	if resp.StatusCode() == http.StatusUnauthorized {
		return ErrUnauthorized
	}

	if resp.StatusCode() == http.StatusConflict {
		var conflict conflictResponse
		if err := json.Unmarshal(resp.Body(), &conflict); err == nil && !conflict.UpdatedAt.IsZero() {
			return &ConflictError{Table: table, ServerUpdatedAt: conflict.UpdatedAt}
		}
		// A 409 without a parseable timestamp still signals a stale write;
		// the zero timestamp lets the local mutation win the comparison.
		return &ConflictError{Table: table}
	}

	body := strings.TrimSpace(string(resp.Body()))
	if body == "" {
		body = http.StatusText(resp.StatusCode())
	}
	return fmt.Errorf("http %d: %s", resp.StatusCode(), body)
}
