package domain

// Domain contains core models shared across packages.

// Article is a single news record as delivered by the search API.
// PublishedAt keeps the raw timestamp text; formatting happens at render time.
type Article struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	URL         string `json:"url"`
	SourceName  string `json:"source_name"`
	PublishedAt string `json:"published_at"`
	ImageURL    string `json:"image_url,omitempty"`
}
