// Package client is the HTTP client for the merchant backend: merchant profile,
// product list and rating submission.
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

	"github.com/go-playground/validator/v10"

	"github.com/okian/lojista/internal/domain/model"
	"github.com/okian/lojista/internal/domain/rating"
	"github.com/okian/lojista/pkg/logger"
	"github.com/okian/lojista/pkg/metrics"
)

// Endpoint names, used for paths, errors and metric labels.
const (
	EndpointMerchant = "lojistas"
	EndpointProducts = "produtos"
	EndpointRatings  = "avaliacoes"
	EndpointHealth   = "healthz"
)

const (
	defaultTimeout  = 10 * time.Second
	maxResponseSize = 4 << 20
)

// Client talks to the merchant backend.
type Client struct {
	baseURL    string
	httpClient *http.Client
	timeout    time.Duration
	validate   *validator.Validate
	logger     logger.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout bounds each request, including reading the body.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithHTTPClient replaces the underlying http.Client. Its Transport is wrapped
// with request metrics.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// New creates a client rooted at baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{},
		timeout:    defaultTimeout,
		validate:   validator.New(),
		logger:     logger.Discard(),
	}
	for _, opt := range opts {
		opt(c)
	}
	hc := *c.httpClient
	hc.Transport = newInstrumentedTransport(hc.Transport)
	c.httpClient = &hc
	return c
}

// Merchant fetches the merchant profile relative to the viewer's fix.
func (c *Client) Merchant(ctx context.Context, id string, at model.Coordinates) (model.MerchantProfile, error) {
	params := url.Values{}
	params.Set("id", id)
	params.Set("latitude", strconv.FormatFloat(at.Latitude, 'f', -1, 64))
	params.Set("longitude", strconv.FormatFloat(at.Longitude, 'f', -1, 64))

	var p model.MerchantProfile
	if err := c.getJSON(ctx, EndpointMerchant, params, &p); err != nil {
		return model.MerchantProfile{}, err
	}
	if err := c.validate.Struct(p); err != nil {
		return model.MerchantProfile{}, &FetchError{Op: EndpointMerchant, Kind: KindInvalid, Err: err}
	}
	return p, nil
}

// Products fetches the merchant's products in server order.
func (c *Client) Products(ctx context.Context, merchantID string) ([]model.Product, error) {
	params := url.Values{}
	params.Set("idLojista", merchantID)

	var ps []model.Product
	if err := c.getJSON(ctx, EndpointProducts, params, &ps); err != nil {
		return nil, err
	}
	if ps == nil {
		ps = []model.Product{}
	}
	for i := range ps {
		if err := c.validate.Struct(ps[i]); err != nil {
			return nil, &FetchError{Op: EndpointProducts, Kind: KindInvalid, Err: fmt.Errorf("item %d: %w", i, err)}
		}
	}
	return ps, nil
}

// SubmitRating posts a rating. It implements rating.Submitter.
func (c *Client) SubmitRating(ctx context.Context, s rating.Submission) (rating.Ack, error) {
	if err := c.validate.Struct(s); err != nil {
		metrics.RecordRatingSubmission("http", metrics.OutcomeError)
		return rating.Ack{}, &FetchError{Op: EndpointRatings, Kind: KindInvalid, Err: err}
	}
	body, err := json.Marshal(s)
	if err != nil {
		metrics.RecordRatingSubmission("http", metrics.OutcomeError)
		return rating.Ack{}, &FetchError{Op: EndpointRatings, Kind: KindInvalid, Err: err}
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/"+EndpointRatings, bytes.NewReader(body))
	if err != nil {
		return rating.Ack{}, &FetchError{Op: EndpointRatings, Kind: KindNetwork, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Idempotency-Key", s.IdempotencyKey)

	var ack rating.Ack
	if err := c.do(ctx, EndpointRatings, req, &ack); err != nil {
		metrics.RecordRatingSubmission("http", metrics.OutcomeError)
		return rating.Ack{}, err
	}
	if ack.Key == "" {
		ack.Key = s.IdempotencyKey
	}
	metrics.RecordRatingSubmission("http", metrics.OutcomeSuccess)
	return ack, nil
}

// Health is the backend's liveness report.
type Health struct {
	Status    string `json:"status"`
	Merchants int    `json:"lojistas"`
}

// Health checks that the backend is up.
func (c *Client) Health(ctx context.Context) (Health, error) {
	var h Health
	if err := c.getJSON(ctx, EndpointHealth, url.Values{}, &h); err != nil {
		return Health{}, err
	}
	return h, nil
}

func (c *Client) getJSON(ctx context.Context, endpoint string, params url.Values, out any) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	reqURL := fmt.Sprintf("%s/%s?%s", c.baseURL, endpoint, params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return &FetchError{Op: endpoint, Kind: KindNetwork, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	return c.do(ctx, endpoint, req, out)
}

func (c *Client) do(ctx context.Context, endpoint string, req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		kind := KindNetwork
		if errors.Is(err, context.DeadlineExceeded) || ctx.Err() != nil {
			kind = KindTimeout
		}
		c.logger.Error(ctx, "request failed", logger.String("endpoint", endpoint), logger.Error(err))
		return &FetchError{Op: endpoint, Kind: kind, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseSize))
		c.logger.Warn(ctx, "unexpected status", logger.String("endpoint", endpoint), logger.Int("status", resp.StatusCode))
		return &FetchError{Op: endpoint, Kind: KindStatus, Status: resp.StatusCode}
	}

	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseSize)).Decode(out); err != nil {
		kind := KindDecode
		if ctx.Err() != nil {
			kind = KindTimeout
		}
		c.logger.Error(ctx, "decode failed", logger.String("endpoint", endpoint), logger.Error(err))
		return &FetchError{Op: endpoint, Kind: kind, Err: err}
	}
	return nil
}
