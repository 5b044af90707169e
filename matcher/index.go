// backend/matcher/index.go
package matcher

import "strings"

// Combined score weights. They sum to 1.0.
const (
	weightJaccard   = 0.20
	weightSubstring = 0.25
	weightDice      = 0.15
	weightToken     = 0.25
	weightStation   = 0.15
)

// Candidate is one concern offered to the matcher. The concern text, station
// code and designation together form the candidate text the similarity
// signals run over; the station additionally earns its own location bonus.
type Candidate struct {
	SNo         int
	Concern     string
	Station     string
	Designation string
}

// Match is the winning candidate with its combined score.
type Match struct {
	SNo     int
	Concern string
	Score   float64
}

// Index precomputes the token sets of a fixed candidate list so that a whole
// report can be matched without re-tokenizing concerns per row.
type Index struct {
	candidates []Candidate
	tokens     [][]string
	expanded   []map[string]struct{}
	joined     []string
	grams      []map[string]struct{}
}

// NewIndex tokenizes and synonym-expands every candidate once.
func NewIndex(candidates []Candidate) *Index {
	ix := &Index{
		candidates: candidates,
		tokens:     make([][]string, len(candidates)),
		expanded:   make([]map[string]struct{}, len(candidates)),
		joined:     make([]string, len(candidates)),
		grams:      make([]map[string]struct{}, len(candidates)),
	}
	for i, c := range candidates {
		text := strings.TrimSpace(c.Concern + " " + c.Station + " " + c.Designation)
		toks := tokenize(text)
		ix.tokens[i] = toks
		ix.expanded[i] = expandSynonyms(toks)
		ix.joined[i] = strings.Join(toks, " ")
		ix.grams[i] = bigrams(text)
	}
	return ix
}

// Score computes the combined similarity between one defect row and one
// indexed candidate.
func (ix *Index) Score(text, location string, i int) float64 {
	queryTokens := tokenize(text)
	queryExpanded := expandSynonyms(queryTokens)
	queryGrams := bigrams(text)
	return ix.score(queryTokens, queryExpanded, queryGrams, location, i)
}

func (ix *Index) score(queryTokens []string, queryExpanded, queryGrams map[string]struct{}, location string, i int) float64 {
	return weightJaccard*jaccardSimilarity(queryExpanded, ix.expanded[i]) +
		weightSubstring*substringOverlap(queryTokens, ix.joined[i]) +
		weightDice*diceCoefficient(queryGrams, ix.grams[i]) +
		weightToken*weightedTokenOverlap(queryTokens, ix.tokens[i]) +
		weightStation*stationBonus(location, ix.candidates[i].Station)
}

// BestMatch scans every candidate and returns the highest scorer, provided
// its score reaches the threshold (inclusive). Ties keep the earliest
// candidate, so the result is deterministic for a fixed candidate order.
func (ix *Index) BestMatch(text, location string, threshold float64) (Match, bool) {
	queryTokens := tokenize(text)
	queryExpanded := expandSynonyms(queryTokens)
	queryGrams := bigrams(text)

	bestIdx := -1
	bestScore := 0.0
	for i := range ix.candidates {
		s := ix.score(queryTokens, queryExpanded, queryGrams, location, i)
		if s > bestScore {
			bestScore = s
			bestIdx = i
		}
	}
	if bestIdx < 0 || bestScore < threshold {
		return Match{}, false
	}
	return Match{SNo: ix.candidates[bestIdx].SNo, Concern: ix.candidates[bestIdx].Concern, Score: bestScore}, true
}
