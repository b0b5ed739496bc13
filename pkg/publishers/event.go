// Package publishers fans fresh search results out to external sinks:
// HTTP webhooks, AWS SQS/SNS and GCP Pub/Sub.
package publishers

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Adda-Baaj/cine-khobor/internal/domain"
)

// Event describes one freshly fetched, filtered result set.
type Event struct {
	Query        string         `json:"query"`
	BoostedQuery string         `json:"boosted_query"`
	FetchedAt    time.Time      `json:"fetched_at"`
	Articles     []EventArticle `json:"articles"`
}

// EventArticle is the slice of an article that leaves the process.
type EventArticle struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	URL         string `json:"url"`
	SourceName  string `json:"source_name"`
	PublishedAt string `json:"published_at"`
}

// NewEvent builds an Event from a filtered result.
func NewEvent(query, boosted string, fetchedAt time.Time, articles []domain.Article) Event {
	out := make([]EventArticle, 0, len(articles))
	for _, a := range articles {
		out = append(out, EventArticle{
			ID:          a.ID,
			Title:       a.Title,
			URL:         a.URL,
			SourceName:  a.SourceName,
			PublishedAt: a.PublishedAt,
		})
	}
	return Event{Query: query, BoostedQuery: boosted, FetchedAt: fetchedAt, Articles: out}
}

// Publisher delivers events to one sink.
type Publisher interface {
	ID() string
	Type() string
	Publish(ctx context.Context, evt Event) error
}

// Logger is the logging surface publishers need.
type Logger interface {
	DebugObj(msg, event string, fields map[string]any)
	ErrorObj(msg, event string, fields map[string]any)
}

type nopLogger struct{}

func (nopLogger) DebugObj(string, string, map[string]any) {}
func (nopLogger) ErrorObj(string, string, map[string]any) {}

func ensureLogger(log Logger) Logger {
	if log == nil {
		return nopLogger{}
	}
	return log
}

// Dispatcher sends each event to every configured publisher.
type Dispatcher struct {
	pubs []Publisher
	log  Logger
}

// NewDispatcher wraps pubs. A dispatcher with no publishers is a no-op.
func NewDispatcher(pubs []Publisher, log Logger) *Dispatcher {
	return &Dispatcher{pubs: pubs, log: ensureLogger(log)}
}

// Len returns the number of publishers.
func (d *Dispatcher) Len() int {
	if d == nil {
		return 0
	}
	return len(d.pubs)
}

// Dispatch publishes evt to every publisher, continuing past failures.
// The returned error joins every individual failure.
func (d *Dispatcher) Dispatch(ctx context.Context, evt Event) error {
	if d == nil || len(d.pubs) == 0 {
		return nil
	}

	var errs []error
	for _, p := range d.pubs {
		if err := p.Publish(ctx, evt); err != nil {
			d.log.ErrorObj("publisher failed", "publisher_error", map[string]any{
				"publisher_id": p.ID(),
				"type":         p.Type(),
				"query":        evt.Query,
				"error":        err.Error(),
			})
			errs = append(errs, fmt.Errorf("publisher %s: %w", p.ID(), err))
			continue
		}
		d.log.DebugObj("publisher delivered event", "publisher_delivered", map[string]any{
			"publisher_id": p.ID(),
			"articles":     len(evt.Articles),
		})
	}
	return errors.Join(errs...)
}
