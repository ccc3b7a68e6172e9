// Package scraper fetches town pages from ville-ideale.fr and extracts the
// livability score and postal code.
package scraper

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"ville-ideale-api/internal/models"
	"ville-ideale-api/internal/normalize"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	DefaultBaseURL        = "https://www.ville-ideale.fr"
	DefaultUserAgent      = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"
	DefaultRateLimit      = time.Second
	DefaultRequestTimeout = 10 * time.Second
)

const tracerName = "ville-ideale-api/internal/scraper"

// Options configures a Client. Zero values fall back to the defaults above.
type Options struct {
	BaseURL        string
	UserAgent      string
	RateLimit      time.Duration
	RequestTimeout time.Duration
	// Transport overrides the HTTP transport, mainly for tests.
	Transport http.RoundTripper
	// TracerProvider defaults to the global provider.
	TracerProvider trace.TracerProvider
}

// Client fetches town pages. All requests made through one Client share a
// single rate gate, so consecutive requests are issued at least RateLimit apart.
type Client struct {
	http    *resty.Client
	gate    *gate
	tracer  trace.Tracer
	baseURL string
}

// NewClient creates a new scraper client
func NewClient(opts Options) *Client {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.UserAgent == "" {
		opts.UserAgent = DefaultUserAgent
	}
	if opts.RateLimit <= 0 {
		opts.RateLimit = DefaultRateLimit
	}
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = DefaultRequestTimeout
	}

	client := resty.New().
		SetTimeout(opts.RequestTimeout).
		SetHeader("User-Agent", opts.UserAgent)
	if opts.Transport != nil {
		client.SetTransport(opts.Transport)
	}
	if opts.TracerProvider == nil {
		opts.TracerProvider = otel.GetTracerProvider()
	}

	return &Client{
		http:    client,
		gate:    newGate(opts.RateLimit),
		tracer:  opts.TracerProvider.Tracer(tracerName),
		baseURL: opts.BaseURL,
	}
}

// TownURL builds the page URL for a town: {base}/{slug}_{code}.
func (c *Client) TownURL(name, code string) string {
	return fmt.Sprintf("%s/%s_%s", c.baseURL, url.PathEscape(normalize.TownName(name)), url.PathEscape(code))
}

// FetchTown waits for the rate gate, downloads the town page and parses it.
// Every failure is returned as a *FetchError.
func (c *Client) FetchTown(ctx context.Context, name, code string) (*models.TownRecord, error) {
	pageURL := c.TownURL(name, code)

	ctx, span := c.tracer.Start(ctx, "FetchTown", trace.WithAttributes(
		attribute.String("url", pageURL),
		attribute.String("town.code", code),
	))
	defer span.End()

	fail := func(err error, msg string) (*models.TownRecord, error) {
		span.RecordError(err)
		span.SetStatus(codes.Error, msg)
		span.SetAttributes(attribute.String("fetch.kind", KindOf(err).String()))
		return nil, err
	}

	issued, err := c.gate.Wait(ctx)
	if err != nil {
		return fail(&FetchError{Kind: KindNetwork, URL: pageURL, Err: fmt.Errorf("waiting for rate limit: %w", err)}, "rate gate wait aborted")
	}
	span.AddEvent("rate gate passed", trace.WithTimestamp(issued))

	log.Info().Str("url", pageURL).Msg("fetching town page")

	res, err := c.http.R().SetContext(ctx).Get(pageURL)
	if err != nil {
		return fail(&FetchError{Kind: KindNetwork, URL: pageURL, Err: err}, "request failed")
	}
	span.SetAttributes(attribute.Int("http.status_code", res.StatusCode()))
	if !res.IsSuccess() {
		return fail(&FetchError{Kind: KindNetwork, URL: pageURL, Err: fmt.Errorf("status code error: %d", res.StatusCode())}, "unexpected status")
	}

	page, err := ParseTownPage(bytes.NewReader(res.Body()), pageURL)
	if err != nil {
		return fail(err, "parse failed")
	}

	return &models.TownRecord{
		Name:       name,
		Code:       code,
		PostalCode: page.PostalCode,
		Score:      page.Score,
	}, nil
}
