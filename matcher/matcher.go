// backend/matcher/matcher.go
//
// Fuzzy matching of repeat-issue defect rows against QA Matrix concerns.
// Combines several independent similarity signals: token overlap (Jaccard
// over synonym-expanded sets), substring matching, character-bigram Dice
// similarity, length-weighted token overlap and a station code bonus.
// Fully deterministic; same inputs always produce the same best match.
package matcher

import (
	"strings"

	"github.com/qavision/qamatrix/backend/utils"
)

// DefaultThreshold is the inclusive minimum combined score for an automatic
// pairing.
const DefaultThreshold = 0.15

// Manufacturing-specific synonyms and abbreviations. Lookups are
// bidirectional: a token matching either a key or one of its synonyms pulls
// in the whole family.
var synonyms = map[string][]string{
	"brake":       {"braking", "brk"},
	"seat":        {"seating", "st"},
	"belt":        {"seatbelt", "seat belt"},
	"window":      {"windshield", "glass", "pane"},
	"wiper":       {"wipers"},
	"lock":        {"locked", "locking", "unlocked"},
	"bolt":        {"bolts", "screw", "fastener"},
	"missing":     {"absent", "not present", "shortage"},
	"damage":      {"damaged", "broken", "crack", "cracked", "torn"},
	"noise":       {"noisy", "vibration", "rattle", "squeak"},
	"leak":        {"leaking", "leakage"},
	"error":       {"wrong", "incorrect", "mismatch"},
	"spec":        {"specification", "specifications"},
	"assy":        {"assembly", "asy"},
	"insecure":    {"loose", "not secure", "unsecure"},
	"malfunction": {"not working", "failure", "defective", "faulty"},
	"torque":      {"tightening", "tq"},
	"fuel":        {"petrol", "diesel", "gasoline"},
	"battery":     {"batt"},
	"lamp":        {"light", "bulb", "headlamp", "headlight"},
	"paint":       {"painting", "painted", "colour", "color"},
	"wheel":       {"tyre", "tire", "rim"},
	"connector":   {"connect", "connection", "plug"},
	"harness":     {"wiring", "wire", "cable"},
	"spring":      {"coil"},
	"cap":         {"cover"},
	"front":       {"fr", "frt"},
	"rear":        {"rr"},
	"left":        {"lh", "lhf", "lhr"},
	"right":       {"rh", "rhf", "rhr"},
}

// Station code area families: first letter of a station code maps to an
// assembly area.
var stationAreas = map[byte]string{
	't': "trim", 'c': "chassis", 'f': "final", 'p': "paint",
}

func isSeparator(r rune) bool {
	return r == ' ' || r == '/' || r == '-'
}

func tokenize(text string) []string {
	mapped := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			return r
		case isSeparator(r):
			return r
		default:
			return ' '
		}
	}, strings.ToLower(text))

	var tokens []string
	for _, t := range strings.FieldsFunc(mapped, isSeparator) {
		if len(t) > 1 {
			tokens = append(tokens, t)
		}
	}
	return tokens
}

func expandSynonyms(tokens []string) map[string]struct{} {
	expanded := make(map[string]struct{}, len(tokens)*2)
	for _, t := range tokens {
		expanded[t] = struct{}{}
	}
	for _, token := range tokens {
		if syns, ok := synonyms[token]; ok {
			for _, s := range syns {
				expanded[s] = struct{}{}
			}
		}
		// Reverse lookup: token may itself be a synonym of a key.
		for key, syns := range synonyms {
			for _, s := range syns {
				if s == token {
					expanded[key] = struct{}{}
					for _, s2 := range syns {
						expanded[s2] = struct{}{}
					}
					break
				}
			}
		}
	}
	return expanded
}

func bigrams(text string) map[string]struct{} {
	var b strings.Builder
	for _, r := range strings.ToLower(text) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	s := b.String()
	set := make(map[string]struct{}, len(s))
	for i := 0; i+1 < len(s); i++ {
		set[s[i:i+2]] = struct{}{}
	}
	return set
}

// diceCoefficient compares two strings by character bigram overlap.
func diceCoefficient(biA, biB map[string]struct{}) float64 {
	if len(biA) == 0 && len(biB) == 0 {
		return 0
	}
	intersection := 0
	for bi := range biA {
		if _, ok := biB[bi]; ok {
			intersection++
		}
	}
	return float64(2*intersection) / float64(len(biA)+len(biB))
}

func jaccardSimilarity(setA, setB map[string]struct{}) float64 {
	if len(setA) == 0 && len(setB) == 0 {
		return 0
	}
	intersection := 0
	for t := range setA {
		if _, ok := setB[t]; ok {
			intersection++
		}
	}
	union := len(setA) + len(setB) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}

// substringOverlap is the fraction of query tokens that appear as substrings
// anywhere in the joined candidate token text.
func substringOverlap(queryTokens []string, targetJoined string) float64 {
	if len(queryTokens) == 0 {
		return 0
	}
	matches := 0
	for _, qt := range queryTokens {
		if strings.Contains(targetJoined, qt) {
			matches++
		}
	}
	return float64(matches) / float64(len(queryTokens))
}

// keywordWeight favours longer, more specific tokens.
func keywordWeight(token string) float64 {
	switch {
	case len(token) <= 2:
		return 0.5
	case len(token) <= 4:
		return 0.8
	}
	return 1.0
}

// weightedTokenOverlap scores query tokens against the candidate token set:
// exact presence earns full weight, mutual containment earns 0.6 of it.
func weightedTokenOverlap(queryTokens, targetTokens []string) float64 {
	targetSet := make(map[string]struct{}, len(targetTokens))
	for _, t := range targetTokens {
		targetSet[t] = struct{}{}
	}

	var totalWeight, matchedWeight float64
	for _, qt := range queryTokens {
		w := keywordWeight(qt)
		totalWeight += w
		if _, ok := targetSet[qt]; ok {
			matchedWeight += w
			continue
		}
		for _, tt := range targetTokens {
			if strings.Contains(tt, qt) || strings.Contains(qt, tt) {
				matchedWeight += w * 0.6
				break
			}
		}
	}
	if totalWeight == 0 {
		return 0
	}
	return matchedWeight / totalWeight
}

// stationBonus rewards agreement between the defect's location and the
// concern's station code.
func stationBonus(location, station string) float64 {
	locLower := strings.ToLower(strings.TrimSpace(location))
	staLower := strings.ToLower(strings.TrimSpace(station))
	if locLower == "" || staLower == "" {
		return 0
	}
	if locLower == staLower {
		return 0.3
	}
	if len(locLower) >= 2 && len(staLower) >= 2 &&
		utils.NormalizeStationCode(location) == utils.NormalizeStationCode(station) {
		return 0.25
	}
	// Same area family, e.g. C45 vs C80 are both chassis.
	if _, ok := stationAreas[locLower[0]]; ok && locLower[0] == staLower[0] {
		return 0.1
	}
	return 0
}
