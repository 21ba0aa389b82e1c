// Package gateway is the REST client for the finance tracker persistence service.
package gateway

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

	"github.com/rogerio-castellano/finance-tracker/internal/apperrors"
	"github.com/rogerio-castellano/finance-tracker/internal/models"
	"golang.org/x/time/rate"
)

// TokenSource supplies the bearer token of the active session.
type TokenSource interface {
	Token() (string, bool)
}

type Client struct {
	baseURL    string
	httpClient *http.Client
	tokens     TokenSource
	limiter    *rate.Limiter
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.httpClient = &http.Client{Timeout: d}
	}
}

// WithRateLimit paces outgoing requests. A non-positive rps disables pacing.
func WithRateLimit(rps float64, burst int) Option {
	return func(c *Client) {
		if rps <= 0 {
			c.limiter = nil
			return
		}
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

func New(baseURL string, tokens TokenSource, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 10 * time.Second},
		tokens:     tokens,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type request struct {
	op     string
	method string
	path   string
	body   any
	// raw is sent as is with contentType instead of a JSON encoded body.
	raw         io.Reader
	contentType string
	auth        bool
	wantStatus  int
	out         any
	// badRequest is the kind reported for a 400 answer.
	badRequest apperrors.Kind
}

type errorBody struct {
	Message string              `json:"message"`
	Errors  []models.FieldError `json:"errors"`
}

const maxErrorBody = 64 << 10

func (c *Client) do(ctx context.Context, r request) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return apperrors.Wrap(apperrors.KindNetwork, r.op, err)
		}
	}

	var body io.Reader
	if r.body != nil {
		data, err := json.Marshal(r.body)
		if err != nil {
			return fmt.Errorf("%s: encode request: %w", r.op, err)
		}
		body = bytes.NewReader(data)
	}
	if r.raw != nil {
		body = r.raw
	}

	req, err := http.NewRequestWithContext(ctx, r.method, c.baseURL+r.path, body)
	if err != nil {
		return fmt.Errorf("%s: build request: %w", r.op, err)
	}
	req.Header.Set("Accept", "application/json")
	switch {
	case r.raw != nil:
		req.Header.Set("Content-Type", r.contentType)
	case r.body != nil:
		req.Header.Set("Content-Type", "application/json")
	}
	if r.auth {
		token, ok := c.tokens.Token()
		if !ok {
			return apperrors.New(apperrors.KindUnauthorized, r.op, "no active session")
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return apperrors.Wrap(apperrors.KindNetwork, r.op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != r.wantStatus {
		return decodeError(r, resp)
	}

	if r.out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(r.out); err != nil {
		return &apperrors.Error{
			Kind:    apperrors.KindServer,
			Op:      r.op,
			Message: "malformed response",
			Status:  resp.StatusCode,
			Err:     err,
		}
	}
	return nil
}

func decodeError(r request, resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))

	e := &apperrors.Error{
		Kind:   kindForStatus(resp.StatusCode, r.badRequest),
		Op:     r.op,
		Status: resp.StatusCode,
	}

	var eb errorBody
	if err := json.Unmarshal(raw, &eb); err == nil && eb.Message != "" {
		e.Message = eb.Message
		if len(eb.Errors) > 0 {
			e.Fields = models.ValidationErrors(eb.Errors).Fields()
			// Field errors always mean the body was rejected, whatever the route.
			if e.Status == http.StatusBadRequest || e.Status == http.StatusUnprocessableEntity {
				e.Kind = apperrors.KindValidation
			}
		}
	} else {
		e.Message = strings.TrimSpace(string(raw))
	}
	if e.Message == "" {
		e.Message = http.StatusText(resp.StatusCode)
	}
	return e
}

func kindForStatus(status int, badRequest apperrors.Kind) apperrors.Kind {
	switch {
	case status == http.StatusUnauthorized, status == http.StatusForbidden:
		return apperrors.KindUnauthorized
	case status == http.StatusNotFound:
		return apperrors.KindNotFound
	case status == http.StatusConflict:
		return apperrors.KindConflict
	case status == http.StatusBadRequest, status == http.StatusUnprocessableEntity:
		if badRequest == apperrors.KindUnknown {
			return apperrors.KindValidation
		}
		return badRequest
	case status == http.StatusTooManyRequests:
		return apperrors.KindNetwork
	default:
		return apperrors.KindServer
	}
}

type healthResponse struct {
	Status string `json:"status"`
}

// Health checks that the service answers.
func (c *Client) Health(ctx context.Context) error {
	var out healthResponse
	err := c.do(ctx, request{
		op:         "gateway.Health",
		method:     http.MethodGet,
		path:       "/api/health",
		wantStatus: http.StatusOK,
		out:        &out,
	})
	if err != nil {
		return err
	}
	if out.Status != "ok" {
		return apperrors.Wrap(apperrors.KindServer, "gateway.Health", errors.New("service reported status "+out.Status))
	}
	return nil
}
