// Package client resolves cross-service references over HTTP: the ticket
// service looks up users and the user service lists a user's tickets.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk/internal/observability"
	errorutil "github.com/spec-kit/helpdesk/pkg/errorutil"
)

// Config holds what every peer client needs.
type Config struct {
	// BaseURL of the peer, e.g. "http://localhost:8081".
	BaseURL string
	// Timeout bounds a call; zero leaves only the context deadline.
	Timeout time.Duration
	Metrics *observability.Metrics
	Logger  *zap.Logger
}

// peer performs GET requests against one service and decodes JSON replies.
type peer struct {
	name    string
	baseURL string
	timeout time.Duration
	client  *fiber.Client
	metrics *observability.Metrics
	logger  *zap.Logger
}

func newPeer(name string, cfg Config) (*peer, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("client: base url for %s is required", name)
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &peer{
		name:    name,
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		timeout: cfg.Timeout,
		client:  &fiber.Client{},
		metrics: cfg.Metrics,
		logger:  logger,
	}, nil
}

// getJSON fetches path and decodes a 200 reply into out. Every failure is
// reported as an upstream-unavailable error.
func (p *peer) getJSON(ctx context.Context, path string, out any) error {
	timeout, err := p.effectiveTimeout(ctx)
	if err != nil {
		return p.fail(path, 0, err)
	}

	agent := p.client.Get(p.baseURL + path)
	agent.Set(fiber.HeaderAccept, fiber.MIMEApplicationJSON)
	if requestID := observability.RequestIDFromContext(ctx); requestID != "" {
		agent.Set(fiber.HeaderXRequestID, requestID)
	}
	if timeout > 0 {
		agent.Timeout(timeout)
	}

	status, body, errs := agent.Bytes()
	if len(errs) > 0 {
		return p.fail(path, 0, errors.Join(errs...))
	}
	if status != http.StatusOK {
		return p.fail(path, status, fmt.Errorf("unexpected status %d", status))
	}
	if len(bytes.TrimSpace(body)) == 0 {
		body = []byte("null")
	}
	if err := json.Unmarshal(body, out); err != nil {
		return p.fail(path, status, fmt.Errorf("decode response: %w", err))
	}
	p.metrics.RecordPeerCall(p.name, "ok")
	return nil
}

// effectiveTimeout merges the configured timeout with the context deadline.
func (p *peer) effectiveTimeout(ctx context.Context) (time.Duration, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	timeout := p.timeout
	if deadline, ok := ctx.Deadline(); ok {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return 0, context.DeadlineExceeded
		}
		if timeout == 0 || remaining < timeout {
			timeout = remaining
		}
	}
	return timeout, nil
}

func (p *peer) fail(path string, status int, err error) error {
	p.metrics.RecordPeerCall(p.name, "error")
	p.logger.Warn("peer call failed",
		zap.String("peer", p.name),
		zap.String("path", path),
		zap.Int("status", status),
		zap.Error(err))
	details := map[string]any{"path": path}
	if status != 0 {
		details["status"] = status
	}
	return errorutil.NewUpstreamUnavailable(p.name, err, details)
}
