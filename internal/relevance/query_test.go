package relevance

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

const wantClause = "(film OR movie OR cinema OR hollywood OR bollywood OR actor OR actress OR director OR trailer OR review OR box office OR oscar OR netflix OR disney OR marvel OR dc OR premiere)"

func TestBoostClause(t *testing.T) {
	assert.Equal(t, wantClause, BoostClause())
}

func TestBuildQuery(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"single word is quoted", "Dune", `"Dune" ` + wantClause},
		{"surrounding space trimmed", "  Dune  ", `"Dune" ` + wantClause},
		{"four tokens still quoted", "tom cruise mission impossible", `"tom cruise mission impossible" ` + wantClause},
		{"five tokens unquoted", "tom cruise mission impossible dead", "tom cruise mission impossible dead " + wantClause},
		{"seven tokens unquoted", "the rise and fall of a blockbuster franchise", "the rise and fall of a blockbuster franchise " + wantClause},
		{"empty degrades to clause", "", wantClause},
		{"whitespace only degrades to clause", " \t ", wantClause},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, BuildQuery(tt.input))
		})
	}
}

func TestBuildQueryInnerWhitespaceKept(t *testing.T) {
	got := BuildQuery("star   wars")
	assert.True(t, strings.HasPrefix(got, `"star   wars" `), got)
}

func TestBoostTermsIsCopy(t *testing.T) {
	terms := BoostTerms()
	terms[0] = "mutated"
	assert.Equal(t, "film", BoostTerms()[0])
}
