// backend/utils/stations_test.go
package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeStationCode(t *testing.T) {
	assert.Equal(t, "C80", NormalizeStationCode(" c-80 "))
	assert.Equal(t, "T10", NormalizeStationCode("T10"))
	assert.Equal(t, "RSUB", NormalizeStationCode("R.Sub"))
	assert.Equal(t, "", NormalizeStationCode(" -- "))
}
