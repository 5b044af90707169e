// backend/utils/stations.go
package utils

import "strings"

// NormalizeStationCode uppercases a station code and strips everything that
// is not a letter or digit, so "c-80 " and "C80" compare equal.
func NormalizeStationCode(code string) string {
	var b strings.Builder
	for _, r := range strings.ToUpper(strings.TrimSpace(code)) {
		if (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}
