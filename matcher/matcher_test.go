// backend/matcher/matcher_test.go
package matcher

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenizeDropsShortAndSpecialTokens(t *testing.T) {
	tokens := tokenize("Bolt missing @ LH/door-panel! A")
	assert.Equal(t, []string{"bolt", "missing", "lh", "door", "panel"}, tokens)
}

func TestBestMatchRealisticRow(t *testing.T) {
	ix := NewIndex([]Candidate{
		{SNo: 7, Concern: "Bolt missing door panel", Station: "C80"},
	})

	m, ok := ix.BestMatch("Missing bolt LH door", "C80", DefaultThreshold)
	require.True(t, ok)
	assert.Equal(t, 7, m.SNo)
	assert.Greater(t, m.Score, DefaultThreshold)
}

func TestBestMatchDesignationDrivesMatch(t *testing.T) {
	// The candidate text is concern + station + designation: a defect row
	// that only names the fitted part must still reach its concern.
	ix := NewIndex([]Candidate{
		{SNo: 4, Concern: "Squeak", Station: "T10", Designation: "door trim garnish"},
	})

	m, ok := ix.BestMatch("door trim garnish", "", DefaultThreshold)
	require.True(t, ok)
	assert.Equal(t, 4, m.SNo)
	assert.Greater(t, m.Score, 0.4)
}

func TestBestMatchStationTextFeedsSimilarity(t *testing.T) {
	ix := NewIndex([]Candidate{
		{SNo: 1, Concern: "Rattle", Station: "C45", Designation: "Chassis"},
		{SNo: 2, Concern: "Rattle", Station: "F90", Designation: "Final"},
	})

	// "c45" appears only as a token of the first candidate's station.
	m, ok := ix.BestMatch("rattle near c45 chassis", "", DefaultThreshold)
	require.True(t, ok)
	assert.Equal(t, 1, m.SNo)
}

func TestBestMatchAcceptsExactThresholdScore(t *testing.T) {
	ix := NewIndex([]Candidate{
		{SNo: 1, Concern: "Bolt missing door panel", Station: "C80"},
	})

	exact := ix.Score("Missing bolt LH door", "C80", 0)
	require.Greater(t, exact, 0.0)

	// A score exactly at the threshold is accepted; nudging the threshold
	// above it rejects.
	m, ok := ix.BestMatch("Missing bolt LH door", "C80", exact)
	require.True(t, ok)
	assert.Equal(t, exact, m.Score)

	_, ok = ix.BestMatch("Missing bolt LH door", "C80", exact+1e-9)
	assert.False(t, ok)
}

func TestBestMatchRejectsBelowThreshold(t *testing.T) {
	ix := NewIndex([]Candidate{
		{SNo: 1, Concern: "Bolt missing door panel", Station: "C80"},
	})

	_, ok := ix.BestMatch("xylophone quartz", "", DefaultThreshold)
	assert.False(t, ok)
}

func TestBestMatchSynonymExpansion(t *testing.T) {
	ix := NewIndex([]Candidate{
		{SNo: 3, Concern: "Bolt missing", Station: ""},
	})

	// Neither token appears literally, but both are known synonyms.
	m, ok := ix.BestMatch("screw absent", "", DefaultThreshold)
	require.True(t, ok)
	assert.Equal(t, 3, m.SNo)
}

func TestBestMatchStationBonusBreaksConcernTie(t *testing.T) {
	ix := NewIndex([]Candidate{
		{SNo: 1, Concern: "Wiper noise", Station: "T10"},
		{SNo: 2, Concern: "Wiper noise", Station: "C80"},
	})

	m, ok := ix.BestMatch("wiper noise", "C80", DefaultThreshold)
	require.True(t, ok)
	assert.Equal(t, 2, m.SNo)
}

func TestBestMatchTieKeepsFirstCandidate(t *testing.T) {
	ix := NewIndex([]Candidate{
		{SNo: 10, Concern: "Seat belt damage", Station: "F30"},
		{SNo: 20, Concern: "Seat belt damage", Station: "F30"},
	})

	m, ok := ix.BestMatch("seat belt damaged", "F30", DefaultThreshold)
	require.True(t, ok)
	assert.Equal(t, 10, m.SNo)
}

func TestBestMatchIsDeterministic(t *testing.T) {
	ix := NewIndex([]Candidate{
		{SNo: 1, Concern: "Fuel leak under body", Station: "F60"},
		{SNo: 2, Concern: "Water leak windshield", Station: "T40"},
		{SNo: 3, Concern: "Brake noise front", Station: "C45"},
	})

	first, ok := ix.BestMatch("leakage petrol underbody", "F60", DefaultThreshold)
	require.True(t, ok)
	for i := 0; i < 10; i++ {
		again, ok := ix.BestMatch("leakage petrol underbody", "F60", DefaultThreshold)
		require.True(t, ok)
		assert.Equal(t, first, again)
	}
}

func TestStationBonus(t *testing.T) {
	assert.Equal(t, 0.3, stationBonus("C80", "c80"))
	assert.Equal(t, 0.25, stationBonus("C-80", "C80"))
	assert.Equal(t, 0.1, stationBonus("C45", "C80"))
	assert.Equal(t, 0.0, stationBonus("C80", "T10"))
	assert.Equal(t, 0.0, stationBonus("", "T10"))
	assert.Equal(t, 0.0, stationBonus("X99", "X10"))
}

func TestKeywordWeight(t *testing.T) {
	assert.Equal(t, 0.5, keywordWeight("lh"))
	assert.Equal(t, 0.8, keywordWeight("bolt"))
	assert.Equal(t, 1.0, keywordWeight("missing"))
}
