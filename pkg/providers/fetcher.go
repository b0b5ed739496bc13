package providers

import (
	"context"
	"fmt"
	"time"

	"github.com/Adda-Baaj/cine-khobor/internal/domain"
	"github.com/Adda-Baaj/cine-khobor/pkg/httpclient"
)

// DefaultTimeout bounds a single upstream search.
const DefaultTimeout = 15 * time.Second

// HTTPClient is the transport used by fetchers.
type HTTPClient = httpclient.Client

// Search is a single upstream request.
type Search struct {
	Query    string
	PageSize int
}

// Fetcher retrieves raw articles for a search.
type Fetcher interface {
	ID() string
	Fetch(ctx context.Context, s Search) ([]domain.Article, error)
}

// APIError is a non-"ok" status reported by the search API.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = "no message"
	}
	if e.Code != "" {
		return fmt.Sprintf("api error %s (http %d): %s", e.Code, e.StatusCode, msg)
	}
	return fmt.Sprintf("api error (http %d): %s", e.StatusCode, msg)
}

// DefaultHTTPClient returns a resty client tuned for provider fetchers.
func DefaultHTTPClient() HTTPClient { return httpclient.NewRestyClient(DefaultTimeout) }
