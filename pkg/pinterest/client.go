package pinterest

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"

	"pinitdown/pkg/config"
	errs "pinitdown/pkg/errors"
	"pinitdown/pkg/logger"
	"pinitdown/pkg/ratelimit"
)

const (
	pageAccept     = "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8"
	assetAccept    = "*/*"
	acceptLanguage = "en-US,en;q=0.9"
	maxRedirects   = 10
)

// Page is a fetched pin page
type Page struct {
	// URL is the address the page was finally served from, after redirects
	URL  string
	Body string
}

// Asset is a downloaded media file
type Asset struct {
	Data        []byte
	ContentType string
}

// Options configures a Client
type Options struct {
	UserAgent          string
	Referer            string
	PageTimeout        time.Duration
	AssetTimeout       time.Duration
	InsecureSkipVerify bool
	MaxAssetBytes      int64
	Limiter            ratelimit.Limiter
	Logger             logger.Logger
	// Transport replaces the default HTTP transport when set
	Transport http.RoundTripper
}

// OptionsFromConfig builds client options from the http config section
func OptionsFromConfig(cfg config.HTTPConfig) Options {
	return Options{
		UserAgent:          cfg.UserAgent,
		Referer:            cfg.Referer,
		PageTimeout:        cfg.PageTimeout,
		AssetTimeout:       cfg.AssetTimeout,
		InsecureSkipVerify: cfg.InsecureSkipVerify,
		MaxAssetBytes:      cfg.MaxAssetBytes,
		Limiter:            ratelimit.PerMinute(cfg.RequestsPerMinute),
	}
}

// Client fetches pin pages and CDN assets with browser-like headers
type Client struct {
	http          *resty.Client
	pageTimeout   time.Duration
	assetTimeout  time.Duration
	maxAssetBytes int64
	limiter       ratelimit.Limiter
	logger        logger.Logger
}

// NewClient creates a Client. Zero timeouts fall back to the defaults.
func NewClient(opts Options) *Client {
	defaults := config.DefaultConfig().HTTP
	if opts.UserAgent == "" {
		opts.UserAgent = defaults.UserAgent
	}
	if opts.PageTimeout <= 0 {
		opts.PageTimeout = defaults.PageTimeout
	}
	if opts.AssetTimeout <= 0 {
		opts.AssetTimeout = defaults.AssetTimeout
	}
	if opts.Limiter == nil {
		opts.Limiter = ratelimit.Unlimited{}
	}
	if opts.Logger == nil {
		opts.Logger = logger.GetLogger()
	}

	client := resty.New()
	if opts.Transport != nil {
		client.SetTransport(opts.Transport)
	}
	client.SetHeader("User-Agent", opts.UserAgent)
	client.SetHeader("Accept-Language", acceptLanguage)
	if opts.Referer != "" {
		client.SetHeader("Referer", opts.Referer)
	}
	client.SetRedirectPolicy(resty.FlexibleRedirectPolicy(maxRedirects))
	if opts.InsecureSkipVerify {
		client.SetTLSClientConfig(&tls.Config{InsecureSkipVerify: true}) //nolint:gosec // opt-in only
	}

	c := &Client{
		http:          client,
		pageTimeout:   opts.PageTimeout,
		assetTimeout:  opts.AssetTimeout,
		maxAssetBytes: opts.MaxAssetBytes,
		limiter:       opts.Limiter,
		logger:        opts.Logger,
	}
	client.OnAfterResponse(c.logResponse)
	client.OnError(c.logError)

	if opts.InsecureSkipVerify {
		c.logger.Warn("TLS certificate verification is disabled")
	}
	return c
}

func (c *Client) logResponse(_ *resty.Client, resp *resty.Response) error {
	logger.LogRequest(resp.Request.Method, resp.Request.URL, resp.StatusCode(), resp.Time())
	return nil
}

func (c *Client) logError(req *resty.Request, err error) {
	c.logger.WithError(err).DebugWithFields("HTTP request failed", map[string]interface{}{
		"method": req.Method,
		"url":    req.URL,
	})
}

// FetchPage downloads the HTML of a pin page. Redirects, such as those of
// pin.it short links, are followed; Page.URL is the final address.
func (c *Client) FetchPage(ctx context.Context, pageURL string) (Page, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return Page{}, fetchError(err, pageURL)
	}

	ctx, cancel := context.WithTimeout(ctx, c.pageTimeout)
	defer cancel()

	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Accept", pageAccept).
		Get(pageURL)
	if err != nil {
		return Page{}, fetchError(err, pageURL)
	}
	if resp.IsError() {
		return Page{}, statusError(resp.StatusCode(), pageURL)
	}

	final := pageURL
	if raw := resp.RawResponse; raw != nil && raw.Request != nil && raw.Request.URL != nil {
		final = raw.Request.URL.String()
	}
	return Page{URL: final, Body: resp.String()}, nil
}

// FetchAsset downloads one media file into memory
func (c *Client) FetchAsset(ctx context.Context, assetURL string) (Asset, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return Asset{}, fetchError(err, assetURL)
	}

	ctx, cancel := context.WithTimeout(ctx, c.assetTimeout)
	defer cancel()

	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Accept", assetAccept).
		SetDoNotParseResponse(true).
		Get(assetURL)
	if err != nil {
		return Asset{}, fetchError(err, assetURL)
	}
	body := resp.RawBody()
	defer body.Close()
	// response middleware is skipped for unparsed responses
	logger.LogRequest(http.MethodGet, assetURL, resp.StatusCode(), resp.Time())

	if resp.IsError() {
		return Asset{}, statusError(resp.StatusCode(), assetURL)
	}

	var reader io.Reader = body
	if c.maxAssetBytes > 0 {
		reader = io.LimitReader(body, c.maxAssetBytes+1)
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return Asset{}, fetchError(err, assetURL)
	}
	if c.maxAssetBytes > 0 && int64(len(data)) > c.maxAssetBytes {
		return Asset{}, errs.FetchFailed(errs.CauseNetwork, 0,
			fmt.Sprintf("%s exceeds %d bytes", assetURL, c.maxAssetBytes), nil)
	}

	return Asset{Data: data, ContentType: resp.Header().Get("Content-Type")}, nil
}

func statusError(code int, target string) error {
	return errs.FetchFailed(errs.CauseHTTPStatus, code,
		fmt.Sprintf("%s returned %d %s", target, code, http.StatusText(code)), nil)
}

// fetchError classifies a transport failure as a timeout or a network error
func fetchError(err error, target string) error {
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return errs.FetchFailed(errs.CauseTimeout, 0, target, err)
	}
	return errs.FetchFailed(errs.CauseNetwork, 0, target, err)
}
