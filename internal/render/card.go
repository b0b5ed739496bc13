// Package render turns filtered articles into display-ready cards.
package render

import (
	"errors"
	"fmt"
	"html"
	"regexp"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"

	"github.com/Adda-Baaj/cine-khobor/internal/domain"
	"github.com/Adda-Baaj/cine-khobor/pkg/providers"
)

const (
	timestampLayout = "2006-01-02T15:04:05"
	displayLayout   = "Jan 02, 2006 • 03:04 PM"
	timestampLen    = len(timestampLayout)

	FallbackTitle       = "No title"
	FallbackDescription = "No description."
	FallbackSource      = "Unknown"
	FallbackURL         = "#"
	FallbackDate        = "Recently"

	placeholderMarker = "placeholder"
)

// Card is one article as shown to the user.
type Card struct {
	Title       string `json:"title"`
	SourceName  string `json:"source_name"`
	Date        string `json:"date"`
	Description string `json:"description"`
	ImageURL    string `json:"image_url,omitempty"`
	URL         string `json:"url"`
}

var (
	stripPolicy = bluemonday.StrictPolicy()
	spaceRe     = regexp.MustCompile(`\s+`)
)

// NewCard builds the card for a, filling display fallbacks for missing fields.
// Title and description are reduced to plain text.
func NewCard(a domain.Article) Card {
	return Card{
		Title:       orDefault(plainText(a.Title), FallbackTitle),
		SourceName:  orDefault(a.SourceName, FallbackSource),
		Date:        FormatPublished(a.PublishedAt),
		Description: orDefault(plainText(a.Description), FallbackDescription),
		ImageURL:    displayImage(a.ImageURL),
		URL:         orDefault(a.URL, FallbackURL),
	}
}

// CardsFor renders articles in order.
func CardsFor(articles []domain.Article) []Card {
	cards := make([]Card, 0, len(articles))
	for _, a := range articles {
		cards = append(cards, NewCard(a))
	}
	return cards
}

// FormatPublished renders an ISO-8601-like timestamp as "Mar 01, 2024 • 06:30 PM".
// Only the first 19 characters are read and anything from a 'Z' on is ignored.
// Unparseable input falls back to the part before 'T'; empty input to "Recently".
func FormatPublished(raw string) string {
	pub := raw
	if len(pub) > timestampLen {
		pub = pub[:timestampLen]
	}
	if pub == "" {
		return FallbackDate
	}

	head, _, _ := strings.Cut(pub, "Z")
	if t, err := time.Parse(timestampLayout, head); err == nil {
		return t.Format(displayLayout)
	}

	date, _, _ := strings.Cut(pub, "T")
	return date
}

// displayImage suppresses stock placeholder images.
func displayImage(u string) string {
	if u == "" || strings.Contains(u, placeholderMarker) {
		return ""
	}
	return u
}

// plainText strips markup that NewsAPI passes through from publisher feeds
// ("<ul><li>..."), leaving unescaped text for the template to escape once.
func plainText(s string) string {
	if s == "" {
		return ""
	}
	text := html.UnescapeString(stripPolicy.Sanitize(s))
	return strings.TrimSpace(spaceRe.ReplaceAllString(text, " "))
}

func orDefault(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}

// Level classifies a Notice.
type Level string

const (
	LevelSuccess Level = "success"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

// Notice is the banner shown above the cards.
type Notice struct {
	Level Level  `json:"level"`
	Text  string `json:"text"`
}

// Summary is the banner for a completed search.
func Summary(count int, query string) Notice {
	if count == 0 {
		return Notice{
			Level: LevelWarning,
			Text:  "No movie news found. Try searching for a specific title, actor, or 'Trailers'!",
		}
	}
	return Notice{
		Level: LevelSuccess,
		Text:  fmt.Sprintf("Found %d genuine movie/entertainment articles for %s", count, query),
	}
}

// Failure is the banner for a failed fetch. API rejections show the API's own message.
func Failure(err error) Notice {
	var apiErr *providers.APIError
	if errors.As(err, &apiErr) {
		return Notice{Level: LevelError, Text: "API Error: " + apiErr.Message}
	}
	return Notice{Level: LevelError, Text: "Request failed: " + err.Error()}
}
