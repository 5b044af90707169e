// backend/report/report_test.go
package report

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/qavision/qamatrix/backend/models"
)

func score(v float64) *float64 { return &v }

func buildReportWorkbook(t *testing.T, rows [][]interface{}) *bytes.Reader {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return bytes.NewReader(buf.Bytes())
}

func TestNormalizeHeader(t *testing.T) {
	assert.Equal(t, "defect description", normalizeHeader("  Défect_Description "))
	assert.Equal(t, "location details", normalizeHeader("Location   Details"))
	assert.Equal(t, "pof code", normalizeHeader("POF_CODE"))
}

func TestFindColPrefersExactOverContains(t *testing.T) {
	headers := []string{"defect description details", "defect description", "gravity"}
	assert.Equal(t, 1, findCol(headers, "defect description"))
	assert.Equal(t, 0, findCol(headers, "defect description details"))
	assert.Equal(t, -1, findCol(headers, "quantity"))
}

func TestParseDefectReport(t *testing.T) {
	r := buildReportWorkbook(t, [][]interface{}{
		{"Weekly repeat defects"}, // banner row above the real header
		{},
		{"Date", "Location Details", "Defect Code", "Défect Description", "Defect Description Details", "Gravity", "Quantity", "Source", "Responsible", "POF Family", "POF CODE"},
		{"2026-08-24", "C80", "D-102", "Bolt missing", "door panel", "B", 3, "Line audit", "MFG", "Fasteners", "CH"},
		{"2026-08-24", "T10", "D-205", "Paint scratch", "", "C", "", "Line audit", "MFG", "Surface", "TR"},
		{"", "", "", "", "", "", "", "", "", "", ""},
	})

	entries, err := ParseDefectReport(r)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	assert.Equal(t, "Bolt missing", entries[0].DefectDescription)
	assert.Equal(t, "door panel", entries[0].DefectDescriptionDetails)
	assert.Equal(t, "C80", entries[0].LocationDetails)
	assert.Equal(t, "B", entries[0].Gravity)
	assert.Equal(t, 3, entries[0].Quantity)
	assert.Equal(t, "CH", entries[0].PofCode)

	// Blank quantity falls back to 1.
	assert.Equal(t, 1, entries[1].Quantity)
}

func TestParseDefectReportNoDescriptionColumn(t *testing.T) {
	r := buildReportWorkbook(t, [][]interface{}{
		{"just", "some", "cells"},
		{"nothing", "useful", "here"},
	})

	_, err := ParseDefectReport(r)
	assert.Error(t, err)
}

func TestParseDefectReportFallsBackToFirstRowHeader(t *testing.T) {
	// Only one known column name, so header discovery fails and row 0 is
	// used as the header directly.
	r := buildReportWorkbook(t, [][]interface{}{
		{"Defect Description", "Station", "Count"},
		{"Bolt missing", "C80", "ignored"},
	})

	entries, err := ParseDefectReport(r)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "Bolt missing", entries[0].DefectDescription)
	assert.Equal(t, 1, entries[0].Quantity)
}

func TestParseDefectCSV(t *testing.T) {
	csv := strings.Join([]string{
		"Date,Location Details,Defect Code,Defect Description,Defect Description Details,Gravity,Quantity,Source,Responsible,POF Family,POF CODE",
		"2026-08-24,C80,D-102,Bolt missing,door panel,B,3,Line audit,MFG,Fasteners,CH",
		"2026-08-24,T10,D-205,Wiper noisy,,C,,Line audit,MFG,Electrical,TR",
		",,,,,,,,,,",
	}, "\n")

	entries, err := ParseDefectCSV(strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, 3, entries[0].Quantity)
	assert.Equal(t, 1, entries[1].Quantity)
	assert.Equal(t, "Wiper noisy", entries[1].DefectDescription)
}

func matrixConcern() models.Concern {
	c := models.Concern{
		SNo:              7,
		Source:           "Plant audit",
		OperationStation: "C80",
		Designation:      "Chassis",
		Concern:          "Bolt missing door panel",
		DefectRating:     3,
		WeeklyRecurrence: []int{1, 0, 0, 2, 0, 4},
		Trim:             models.TrimScores{T10: score(1), TPQG: score(0.5)},
		Chassis:          models.ChassisScores{C80: score(2), RSub: score(1)},
		Final:            models.FinalScores{F100: score(1), ResidualTorque: score(3)},
		QControl:         models.QControlScores{FreqControl11: score(1), SaeProhibition53: score(2)},
		QControlDetail:   models.QControlDetail{Shower: score(1)},
		MfgAction:        "Retighten",
		Resp:             "MFG",
		Target:           "W36",
	}
	c.Recalculate()
	return c
}

func TestMatrixWorkbookRoundTrip(t *testing.T) {
	original := matrixConcern()

	data, err := ExportXLSX([]models.Concern{original})
	require.NoError(t, err)

	loaded, err := LoadMatrixWorkbook(bytes.NewReader(data))
	require.NoError(t, err)
	require.Len(t, loaded, 1)

	assert.Equal(t, original, loaded[0])
}

func TestLoadMatrixWorkbookSkipsNonDataRows(t *testing.T) {
	data, err := ExportXLSX([]models.Concern{matrixConcern()})
	require.NoError(t, err)

	loaded, err := LoadMatrixWorkbook(bytes.NewReader(data))
	require.NoError(t, err)
	// The header row carries no numeric serial number and is ignored.
	assert.Len(t, loaded, 1)
}

func TestLoadMatrixWorkbookEmptyFails(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	_, err = LoadMatrixWorkbook(bytes.NewReader(buf.Bytes()))
	assert.Error(t, err)
}

func TestExportCSVHeadersAndValues(t *testing.T) {
	data, err := ExportCSV([]models.Concern{matrixConcern()})
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 2)

	header := lines[0]
	for _, col := range []string{"S.No", "Defect Rating", "W-6", "W-1", "RC+DR", "Residual Torque", "1.1", "5.3", "Dynamic/UB", "CTRL MFG", "WS Status", "Plant Status", "Target"} {
		assert.Contains(t, header, col)
	}
	assert.Contains(t, lines[1], "Bolt missing door panel")
	assert.Contains(t, lines[1], "NG")
}
