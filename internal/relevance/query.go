package relevance

import "strings"

// exactPhraseMaxTokens is the largest query, in whitespace separated tokens,
// that is still sent as a quoted exact phrase.
const exactPhraseMaxTokens = 4

// boostTerms are OR-ed onto every outgoing query. "box office" stays unquoted.
var boostTerms = [...]string{
	"film", "movie", "cinema", "hollywood", "bollywood", "actor", "actress",
	"director", "trailer", "review", "box office", "oscar", "netflix",
	"disney", "marvel", "dc", "premiere",
}

// BoostTerms returns a copy of the movie domain terms appended to every query.
func BoostTerms() []string {
	out := make([]string, len(boostTerms))
	copy(out, boostTerms[:])
	return out
}

// BoostClause renders the parenthesized OR disjunction of the boost terms.
func BoostClause() string {
	return "(" + strings.Join(boostTerms[:], " OR ") + ")"
}

// BuildQuery turns free user text into the boosted query sent to the search API.
// Short queries are quoted for an exact phrase match; longer ones are treated
// as already descriptive. Empty input yields the boost clause alone.
func BuildQuery(userQuery string) string {
	q := strings.TrimSpace(userQuery)
	tokens := len(strings.Fields(q))

	switch {
	case tokens == 0:
		return BoostClause()
	case tokens <= exactPhraseMaxTokens:
		return `"` + q + `" ` + BoostClause()
	default:
		return q + " " + BoostClause()
	}
}
