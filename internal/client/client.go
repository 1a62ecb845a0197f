package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/chupakbra/pbadm/internal/config"
	"github.com/chupakbra/pbadm/internal/locale"
)

const (
	usersPath              = "/users/get-all-users"
	subscriptionPath       = "/subscription"
	updateSubscriptionPath = "/subscription/update-subscription"

	maxErrorBody = 512
)

// ErrEndpointNotConfigured is returned for operations whose endpoint path is
// not set on the server profile.
var ErrEndpointNotConfigured = errors.New("endpoint not configured")

// StatusError is returned when the server answers with a non-2xx status.
type StatusError struct {
	Method     string
	Path       string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s %s: unexpected status %d", e.Method, e.Path, e.StatusCode)
	}
	return fmt.Sprintf("%s %s: unexpected status %d: %s", e.Method, e.Path, e.StatusCode, e.Body)
}

// IsNotFound reports whether err is a 404 from the server.
func IsNotFound(err error) bool { return hasStatus(err, http.StatusNotFound) }

// IsNotAuthorized reports whether err is a 401 or 403 from the server.
func IsNotAuthorized(err error) bool {
	return hasStatus(err, http.StatusUnauthorized) || hasStatus(err, http.StatusForbidden)
}

func hasStatus(err error, code int) bool {
	var se *StatusError
	return errors.As(err, &se) && se.StatusCode == code
}

// Client talks to the subscription backend.
type Client struct {
	baseURL        string
	http           *http.Client
	logger         *zap.Logger
	userUpdatePath string
	userDeletePath string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithLogger sets the logger used for request failures.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// New builds a Client from a ServerConfig.
func New(cfg *config.ServerConfig, opts ...Option) (*Client, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("server URL is not set")
	}
	u, err := url.Parse(cfg.URL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid server URL %q", cfg.URL)
	}

	c := &Client{
		baseURL:        strings.TrimRight(cfg.URL, "/"),
		http:           &http.Client{},
		logger:         zap.NewNop(),
		userUpdatePath: cfg.UserUpdatePath,
		userDeletePath: cfg.UserDeletePath,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BaseURL returns the server root the client was built with.
func (c *Client) BaseURL() string { return c.baseURL }

// CanMutateUsers reports which user mutation endpoints are configured.
func (c *Client) CanMutateUsers() (update, del bool) {
	return c.userUpdatePath != "", c.userDeletePath != ""
}

// ListUsers fetches one page of users and the server-reported page count.
func (c *Client) ListUsers(ctx context.Context, page, limit int) ([]UserRecord, int, error) {
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("limit", strconv.Itoa(limit))

	var resp usersResponse
	if err := c.do(ctx, http.MethodGet, usersPath, q, "", nil, &resp); err != nil {
		return nil, 0, err
	}
	return resp.Data.Users, resp.Data.Pagination.TotalPages, nil
}

// ListSubscriptions fetches every subscription plan in the given locale.
func (c *Client) ListSubscriptions(ctx context.Context, loc locale.Locale) ([]PlanRecord, error) {
	var resp plansResponse
	if err := c.do(ctx, http.MethodGet, subscriptionPath, nil, loc.Header(), nil, &resp); err != nil {
		return nil, err
	}
	return resp.Data, nil
}

// UpdateSubscription sends a partial update for a plan. Any 2xx is success;
// the response body is not inspected.
func (c *Client) UpdateSubscription(ctx context.Context, id string, patch map[string]any, loc locale.Locale) error {
	q := url.Values{}
	q.Set("id", id)
	return c.do(ctx, http.MethodPatch, updateSubscriptionPath, q, loc.Header(), patch, nil)
}

// PatchUser sends a partial update for a user.
func (c *Client) PatchUser(ctx context.Context, id string, patch map[string]any) error {
	if c.userUpdatePath == "" {
		return fmt.Errorf("updating user %s: %w", id, ErrEndpointNotConfigured)
	}
	q := url.Values{}
	q.Set("id", id)
	return c.do(ctx, http.MethodPatch, c.userUpdatePath, q, "", patch, nil)
}

// DeleteUser removes a user.
func (c *Client) DeleteUser(ctx context.Context, id string) error {
	if c.userDeletePath == "" {
		return fmt.Errorf("deleting user %s: %w", id, ErrEndpointNotConfigured)
	}
	q := url.Values{}
	q.Set("id", id)
	return c.do(ctx, http.MethodDelete, c.userDeletePath, q, "", nil, nil)
}

// Ping checks that the server is reachable and answering.
func (c *Client) Ping(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, subscriptionPath, nil, locale.Default.Header(), nil, nil)
}

func (c *Client) do(ctx context.Context, method, path string, q url.Values, lang string, body, out any) error {
	target := c.baseURL + path
	if len(q) > 0 {
		target += "?" + q.Encode()
	}

	var rdr io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding request body: %w", err)
		}
		rdr = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, rdr)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	reqID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", reqID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if lang != "" {
		req.Header.Set("Accept-Language", lang)
	}

	log := c.logger.With(
		zap.String("method", method),
		zap.String("path", path),
		zap.String("request_id", reqID),
	)

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		log.Error("request failed", zap.Error(err))
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()
	log.Debug("request done", zap.Int("status", resp.StatusCode), zap.Duration("took", time.Since(start)))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		se := &StatusError{
			Method:     method,
			Path:       path,
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(snippet)),
		}
		log.Warn("unexpected status", zap.Int("status", resp.StatusCode))
		return se
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		log.Error("decoding response failed", zap.Error(err))
		return fmt.Errorf("decoding %s response: %w", path, err)
	}
	return nil
}
