// Package httpclient is a thin resty wrapper shared by the NewsAPI fetcher,
// the article crawler and the HTTP publisher.
package httpclient

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	neturl "net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

const defaultUserAgent = "cine-khobor/1.0 (+https://github.com/Adda-Baaj/cine-khobor)"

// Response is the subset of *resty.Response callers read.
type Response interface {
	StatusCode() int
	Body() []byte
}

// Client issues HTTP requests bound to a context.
type Client interface {
	Get(ctx context.Context, url string, query, headers map[string]string) (Response, error)
	Do(ctx context.Context, method, url string, body []byte, headers map[string]string) (Response, error)
}

type restyClient struct {
	client *resty.Client
}

// NewRestyClient returns a Client with the given overall request timeout.
func NewRestyClient(timeout time.Duration) Client {
	c := resty.New().
		SetTimeout(timeout).
		SetHeader("User-Agent", defaultUserAgent).
		SetRedirectPolicy(resty.FlexibleRedirectPolicy(5))
	return &restyClient{client: c}
}

// Get performs a GET with optional query parameters and headers.
func (c *restyClient) Get(ctx context.Context, url string, query, headers map[string]string) (Response, error) {
	req := c.client.R().SetContext(ctx)
	if len(query) > 0 {
		req.SetQueryParams(query)
	}
	if len(headers) > 0 {
		req.SetHeaders(headers)
	}

	resp, err := req.Get(url)
	if err != nil {
		return nil, fmt.Errorf("GET %s: %w", redactQuery(url), stripURL(err))
	}
	return resp, nil
}

// Do performs an arbitrary method with a raw body.
func (c *restyClient) Do(ctx context.Context, method, url string, body []byte, headers map[string]string) (Response, error) {
	method = strings.ToUpper(strings.TrimSpace(method))
	if method == "" {
		method = http.MethodPost
	}

	req := c.client.R().SetContext(ctx)
	if len(headers) > 0 {
		req.SetHeaders(headers)
	}
	if body != nil {
		req.SetBody(body)
	}

	resp, err := req.Execute(method, url)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, redactQuery(url), stripURL(err))
	}
	return resp, nil
}

// redactQuery drops the query string so credentials passed as parameters never reach logs.
func redactQuery(url string) string {
	if i := strings.IndexByte(url, '?'); i >= 0 {
		return url[:i]
	}
	return url
}

// stripURL unwraps *url.Error, whose message repeats the full request URL
// including query parameters.
func stripURL(err error) error {
	var uerr *neturl.Error
	if errors.As(err, &uerr) && uerr.Err != nil {
		return uerr.Err
	}
	return err
}
