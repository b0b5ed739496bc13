package render

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Adda-Baaj/cine-khobor/internal/domain"
	"github.com/Adda-Baaj/cine-khobor/pkg/providers"
)

func TestFormatPublished(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"2024-03-01T18:30:00Z", "Mar 01, 2024 • 06:30 PM"},
		{"2024-03-01T08:05:09.123Z", "Mar 01, 2024 • 08:05 AM"},
		{"2024-12-25T00:00:00+05:30", "Dec 25, 2024 • 12:00 AM"},
		{"2024-03-01", "2024-03-01"},
		{"2024-03-01Tnonsense", "2024-03-01"},
		{"yesterday", "yesterday"},
		{"", "Recently"},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatPublished(tt.raw))
		})
	}
}

func TestNewCard(t *testing.T) {
	t.Run("full article", func(t *testing.T) {
		c := NewCard(domain.Article{
			Title:       "Dune trailer",
			Description: "First look",
			URL:         "https://variety.com/dune",
			SourceName:  "Variety",
			PublishedAt: "2024-03-01T18:30:00Z",
			ImageURL:    "https://variety.com/dune.jpg",
		})
		assert.Equal(t, Card{
			Title:       "Dune trailer",
			SourceName:  "Variety",
			Date:        "Mar 01, 2024 • 06:30 PM",
			Description: "First look",
			ImageURL:    "https://variety.com/dune.jpg",
			URL:         "https://variety.com/dune",
		}, c)
	})

	t.Run("fallbacks", func(t *testing.T) {
		c := NewCard(domain.Article{})
		assert.Equal(t, FallbackTitle, c.Title)
		assert.Equal(t, FallbackSource, c.SourceName)
		assert.Equal(t, FallbackDate, c.Date)
		assert.Equal(t, FallbackDescription, c.Description)
		assert.Equal(t, FallbackURL, c.URL)
		assert.Empty(t, c.ImageURL)
	})

	t.Run("markup stripped", func(t *testing.T) {
		c := NewCard(domain.Article{
			Title:       "Tom &amp; Jerry <b>reboot</b>",
			Description: "<ul><li>Cast announced</li>\n<li>Release in May</li></ul>",
		})
		assert.Equal(t, "Tom & Jerry reboot", c.Title)
		assert.Equal(t, "Cast announced Release in May", c.Description)
	})

	t.Run("markup only falls back", func(t *testing.T) {
		c := NewCard(domain.Article{Description: "<img src=x>"})
		assert.Equal(t, FallbackDescription, c.Description)
	})

	t.Run("placeholder image suppressed", func(t *testing.T) {
		c := NewCard(domain.Article{ImageURL: "https://cdn.example.com/placeholder-16x9.png"})
		assert.Empty(t, c.ImageURL)
	})
}

func TestCardsForKeepsOrder(t *testing.T) {
	cards := CardsFor([]domain.Article{{Title: "a"}, {Title: "b"}})
	assert.Equal(t, "a", cards[0].Title)
	assert.Equal(t, "b", cards[1].Title)
}

func TestSummary(t *testing.T) {
	n := Summary(3, "dune")
	assert.Equal(t, LevelSuccess, n.Level)
	assert.Equal(t, "Found 3 genuine movie/entertainment articles for dune", n.Text)

	n = Summary(0, "dune")
	assert.Equal(t, LevelWarning, n.Level)
	assert.Contains(t, n.Text, "No movie news found")
}

func TestFailure(t *testing.T) {
	n := Failure(fmt.Errorf("fetch: %w", &providers.APIError{StatusCode: 429, Message: "You have made too many requests."}))
	assert.Equal(t, LevelError, n.Level)
	assert.Equal(t, "API Error: You have made too many requests.", n.Text)

	n = Failure(errors.New("dial tcp: timeout"))
	assert.Equal(t, "Request failed: dial tcp: timeout", n.Text)
}
