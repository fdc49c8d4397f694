// Package backend is the HTTP client of the pond operations backend.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/sirupsen/logrus"

	"github.com/aquaops/pond-miniapp/pkg/constants"
)

const (
	maxRetries = 3
	baseDelay  = 300 * time.Millisecond

	maxBodyBytes = 1 << 20
)

var (
	ErrMalformedResponse = errors.New("backend: malformed response")
	ErrCatalogRejected   = errors.New("backend: catalog request rejected")
)

// NetworkError is a transport level failure: the request never produced an
// HTTP response.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("backend %s: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// StatusError is a non-2xx response whose body could not be interpreted.
type StatusError struct {
	Op         string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("backend %s: unexpected status %d", e.Op, e.StatusCode)
}

type Option func(*Client)

func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) {
		if c != nil {
			cl.http = c
		}
	}
}

func WithTimeout(d time.Duration) Option {
	return func(cl *Client) {
		if d > 0 {
			cl.http.Timeout = d
		}
	}
}

func WithLogger(l *logrus.Entry) Option {
	return func(cl *Client) {
		if l != nil {
			cl.logger = l
		}
	}
}

// WithRetryDelay overrides the linear backoff step between read retries.
func WithRetryDelay(d time.Duration) Option {
	return func(cl *Client) {
		cl.retryDelay = d
	}
}

type Client struct {
	baseURL    string
	http       *http.Client
	logger     *logrus.Entry
	retryDelay time.Duration
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		http:       &http.Client{Timeout: 15 * time.Second},
		logger:     logrus.NewEntry(logrus.StandardLogger()),
		retryDelay: baseDelay,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// CurrentUser returns the caller's user record; nil when the backend answers
// null (unknown caller).
func (c *Client) CurrentUser(ctx context.Context, initData string) (*User, error) {
	var user *User
	if err := c.get(ctx, "/users/getUser", initData, &user); err != nil {
		return nil, err
	}
	return user, nil
}

func (c *Client) Users(ctx context.Context, initData string) ([]User, error) {
	var users []User
	if err := c.get(ctx, "/users/getUsers", initData, &users); err != nil {
		return nil, err
	}
	return users, nil
}

func (c *Client) UpdateUser(ctx context.Context, initData string, req UpdateUserRequest) (Result, error) {
	return c.post(ctx, "/users/update", initData, req)
}

func (c *Client) DeleteUser(ctx context.Context, initData string, req DeleteUserRequest) (Result, error) {
	return c.post(ctx, "/users/delete", initData, req)
}

// Locations may be called without init data.
func (c *Client) Locations(ctx context.Context, initData string) ([]string, error) {
	var resp locationsResponse
	if err := c.get(ctx, "/miniapp/locations", initData, &resp); err != nil {
		return nil, err
	}
	if !resp.Success {
		return nil, ErrCatalogRejected
	}
	return resp.Locations, nil
}

// FishTypes may be called without init data.
func (c *Client) FishTypes(ctx context.Context, initData string) ([]string, error) {
	var resp fishTypesResponse
	if err := c.get(ctx, "/miniapp/fishTypes", initData, &resp); err != nil {
		return nil, err
	}
	if !resp.Success {
		return nil, ErrCatalogRejected
	}
	return resp.FishTypes, nil
}

// Submit posts a record once. A decoded Result is returned for any response
// carrying a JSON acknowledgement, including non-2xx ones.
func (c *Client) Submit(ctx context.Context, initData string, s Submission) (Result, error) {
	return c.post(ctx, s.Endpoint(), initData, s)
}

func (c *Client) newRequest(ctx context.Context, method, path, initData string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, errors.Wrap(err, "build request")
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if initData != "" {
		req.Header.Set(constants.InitDataHeader, initData)
	}
	return req, nil
}

func (c *Client) get(ctx context.Context, path, initData string, out any) error {
	if ctx == nil {
		return errors.New("context cannot be nil")
	}

	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		if attempt > 0 {
			delay := time.Duration(attempt) * c.retryDelay
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		err := c.getOnce(ctx, path, initData, out)
		if err == nil {
			return nil
		}
		lastErr = err
		if !retryable(err) {
			return err
		}
		c.logger.WithError(err).WithFields(logrus.Fields{
			"path":    path,
			"attempt": attempt + 1,
		}).Warn("backend read failed, retrying")
	}
	return lastErr
}

func (c *Client) getOnce(ctx context.Context, path, initData string, out any) error {
	req, err := c.newRequest(ctx, http.MethodGet, path, initData, nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return &NetworkError{Op: "GET " + path, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return &NetworkError{Op: "GET " + path, Err: err}
	}
	if resp.StatusCode/100 != 2 {
		return &StatusError{Op: "GET " + path, StatusCode: resp.StatusCode, Body: string(body)}
	}
	if err := json.Unmarshal(body, out); err != nil {
		return errors.Wrapf(ErrMalformedResponse, "GET %s: %v", path, err)
	}
	return nil
}

func (c *Client) post(ctx context.Context, path, initData string, payload any) (Result, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Result{}, errors.Wrap(err, "encode payload")
	}
	req, err := c.newRequest(ctx, http.MethodPost, path, initData, bytes.NewReader(raw))
	if err != nil {
		return Result{}, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return Result{}, &NetworkError{Op: "POST " + path, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return Result{}, &NetworkError{Op: "POST " + path, Err: err}
	}

	var result Result
	if err := json.Unmarshal(body, &result); err != nil {
		if resp.StatusCode/100 != 2 {
			return Result{}, &StatusError{Op: "POST " + path, StatusCode: resp.StatusCode, Body: string(body)}
		}
		return Result{}, errors.Wrapf(ErrMalformedResponse, "POST %s: %v", path, err)
	}
	if resp.StatusCode/100 != 2 {
		result.Success = false
	}
	return result, nil
}

func retryable(err error) bool {
	var netErr *NetworkError
	if errors.As(err, &netErr) {
		return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
	}
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.StatusCode >= 500
	}
	return false
}
