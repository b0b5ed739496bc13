// Package relevance decides which fetched articles are about movies and
// entertainment, and builds the boosted query sent upstream.
//
// Matching is plain case-insensitive substring search. A blocked term inside
// an unrelated word ("war" in "award") still excludes the article; callers
// rely on that behavior, so it must not become whole-word matching.
package relevance

import (
	"strings"

	"github.com/Adda-Baaj/cine-khobor/internal/domain"
)

const (
	// MaxResults caps the number of articles FilterArticles returns.
	MaxResults = 20
	// MinSignals is the signal word count needed without a trusted domain.
	MinSignals = 2
)

var blockedKeywords = [...]string{
	"trump", "biden", "election", "politics", "covid", "vaccine", "war", "israel",
	"palestine", "football", "cricket", "nfl", "nba", "stock market", "bitcoin",
}

var trustedDomains = [...]string{
	"variety.com", "hollywoodreporter.com", "deadline.com", "indiewire.com",
	"screenrant.com", "collider.com", "empireonline.com", "rottentomatoes.com",
	"thewrap.com", "comingsoon.net", "joblo.com", "fandango.com",
	"ign.com", "cinemablend.com", "digitalspy.com", "ew.com", "thr.com",
	"bbc.co.uk/entertainment", "theguardian.com/film", "nytimes.com/movies",
	"latimes.com/entertainment", "boxofficemojo.com", "imdb.com",
}

// signalWords overlap with boostTerms but are not the same list.
var signalWords = [...]string{
	"movie", "film", "actor", "actress", "director", "trailer",
	"review", "premiere", "oscar", "box office", "cinema",
	"hollywood", "bollywood",
}

// BlockedKeywords returns a copy of the terms that always exclude an article.
func BlockedKeywords() []string { return append([]string(nil), blockedKeywords[:]...) }

// TrustedDomains returns a copy of the URL substrings that bypass signal counting.
func TrustedDomains() []string { return append([]string(nil), trustedDomains[:]...) }

// SignalWords returns a copy of the terms counted toward MinSignals.
func SignalWords() []string { return append([]string(nil), signalWords[:]...) }

// Reason explains a Verdict.
type Reason string

const (
	ReasonBlocked Reason = "blocked"
	ReasonTrusted Reason = "trusted_domain"
	ReasonSignals Reason = "signals"
	ReasonWeak    Reason = "weak_signals"
)

// Verdict is the keep/drop decision for a single article.
type Verdict struct {
	Keep    bool
	Reason  Reason
	Matched string // blocked term or trusted domain that decided the verdict
	Signals int    // only counted when neither blocked nor trusted
}

// Classify applies the three rules in priority order: blocklist, trusted
// domain, signal word threshold.
func Classify(a domain.Article) Verdict {
	title := strings.ToLower(a.Title)
	desc := strings.ToLower(a.Description)

	for _, bad := range blockedKeywords {
		if strings.Contains(title, bad) || strings.Contains(desc, bad) {
			return Verdict{Reason: ReasonBlocked, Matched: bad}
		}
	}

	u := strings.ToLower(a.URL)
	for _, d := range trustedDomains {
		if strings.Contains(u, d) {
			return Verdict{Keep: true, Reason: ReasonTrusted, Matched: d}
		}
	}

	signals := 0
	for _, w := range signalWords {
		if strings.Contains(title, w) || strings.Contains(desc, w) {
			signals++
		}
	}
	if signals >= MinSignals {
		return Verdict{Keep: true, Reason: ReasonSignals, Signals: signals}
	}
	return Verdict{Reason: ReasonWeak, Signals: signals}
}

// FilterArticles keeps the relevant articles in input order, at most MaxResults.
// It does not modify records.
func FilterArticles(records []domain.Article) []domain.Article {
	kept := make([]domain.Article, 0, min(len(records), MaxResults))
	for _, a := range records {
		if len(kept) == MaxResults {
			break
		}
		if Classify(a).Keep {
			kept = append(kept, a)
		}
	}
	return kept
}
