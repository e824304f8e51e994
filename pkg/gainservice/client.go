// Package gainservice provides a client for the GLIMS ASTER gain web service.
//
// The service computes the continuous ASTER gain for a day of year, latitude, band and
// equatorial crossing time:
//
//	GET https://www.glims.org/cgi-bin/aster_gain.pl?doy=180&lat=39&band=3&eq_time=21
//
// and answers with free text containing "Gain = <number>".
package gainservice

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/bruceraup/glims-aster-gains/pkg/aster"
	"github.com/bruceraup/glims-aster-gains/pkg/gain"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// DefaultURL is the address of the GLIMS gain service.
const DefaultURL = "https://www.glims.org/cgi-bin/aster_gain.pl"

// maxBodySize limits the response bytes read from the service.
const maxBodySize = 1 << 20

// Options provides additional information for connecting to the gain service.
type Options struct {
	// UserAgent is the http User Agent, defaults to "glims-aster-gains".
	UserAgent string

	// Timeout for a single request. Zero means no timeout.
	Timeout time.Duration

	// UnsafeSSL gets passed to the http client, if true, it will skip https certificate verification.
	// Defaults to false.
	UnsafeSSL bool

	// TLSConfig allows the user to set their own TLS config for the HTTP
	// Client. If set, this option overrides UnsafeSSL.
	TLSConfig *tls.Config

	// RateLimit is the maximum number of requests per second. Zero means unlimited.
	RateLimit float64

	// Burst is the number of requests that may exceed the RateLimit at once, defaults to 1.
	Burst int

	// Logger receives a debug entry per request. Defaults to a no-op logger.
	Logger *zap.SugaredLogger
}

// Client is a gain service client.
// The http.Client's Transport typically has internal state (cached TCP connections), so Clients should be reused
// instead of created as needed.
type Client struct {
	*http.Client
	URL       *url.URL // service address, query parameters are appended
	Useragent string

	limiter *rate.Limiter
	log     *zap.SugaredLogger
}

// NewClient returns a new gain service client for the given address and additional options.
// The address should have the form "https://host/path". It uses HTTP proxies
// as directed by the $HTTP_PROXY and $NO_PROXY (or $http_proxy and
// $no_proxy) environment variables.
func NewClient(addr string, opts Options) (*Client, error) {
	svcURL, err := url.Parse(addr)
	if err != nil {
		return nil, err
	}
	if svcURL.Scheme != "http" && svcURL.Scheme != "https" {
		return nil, fmt.Errorf("unsupported protocol scheme %q: the gain service address must start with http:// or https://", svcURL.Scheme)
	}
	if svcURL.Host == "" {
		return nil, fmt.Errorf("gain service address %q has no host", addr)
	}

	if opts.UserAgent == "" {
		opts.UserAgent = "glims-aster-gains"
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop().Sugar()
	}

	tr := http.DefaultTransport.(*http.Transport).Clone()
	if opts.TLSConfig != nil {
		tr.TLSClientConfig = opts.TLSConfig
	} else if opts.UnsafeSSL {
		tr.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
	}

	c := &Client{
		Client: &http.Client{
			Timeout:   opts.Timeout,
			Transport: tr,
		},
		URL:       svcURL,
		Useragent: opts.UserAgent,
		log:       opts.Logger,
	}

	if opts.RateLimit > 0 {
		burst := opts.Burst
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), burst)
	}

	return c, nil
}

// QueryURL returns the request URL for q.
func (c *Client) QueryURL(q gain.Query) string {
	u := *c.URL

	var qs strings.Builder
	if u.RawQuery != "" {
		qs.WriteString(u.RawQuery)
		qs.WriteByte('&')
	}
	qs.WriteString("doy=" + strconv.Itoa(q.DOY))
	qs.WriteString("&lat=" + url.QueryEscape(gain.FormatFloat(q.Lat)))
	qs.WriteString("&band=" + strconv.Itoa(int(q.Band)))
	qs.WriteString("&eq_time=" + url.QueryEscape(gain.FormatFloat(q.EqTime)))
	u.RawQuery = qs.String()

	return u.String()
}

// Gain requests the continuous gain for q. It implements gain.Source.
//
// If the service can not be reached or does not answer with 200 OK, the returned error is a
// *LookupError. A response without a gain value returns an error wrapping aster.ErrParse.
func (c *Client) Gain(ctx context.Context, q gain.Query) (float64, error) {
	target := c.QueryURL(q)

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return 0, &LookupError{URL: target, Err: err}
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return 0, &LookupError{URL: target, Err: err}
	}
	req.Header.Set("User-Agent", c.Useragent)

	start := time.Now()
	resp, err := c.Do(req)
	if err != nil {
		return 0, &LookupError{URL: target, Err: err}
	}
	defer resp.Body.Close()

	c.log.Debugw("gain lookup", "url", target, "status", resp.StatusCode, "duration", time.Since(start))

	if resp.StatusCode != http.StatusOK {
		return 0, &LookupError{URL: target, StatusCode: resp.StatusCode, Err: fmt.Errorf("GET failed: %d (%s)", resp.StatusCode, resp.Status)}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return 0, &LookupError{URL: target, Err: err}
	}

	g, err := gain.ParseResponse(body)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", target, err)
	}
	return g, nil
}

// LookupError records a failed request to the gain service.
// It matches aster.ErrTransport with errors.Is.
type LookupError struct {
	URL        string
	StatusCode int // 0 if no response was received
	Err        error
}

func (e *LookupError) Error() string {
	return fmt.Sprintf("gain lookup %s: %v", e.URL, e.Err)
}

func (e *LookupError) Unwrap() error { return e.Err }

// Is reports whether target is aster.ErrTransport.
func (e *LookupError) Is(target error) bool {
	return target == aster.ErrTransport
}
