// backend/report/matrix.go
//
// Import of the QA Matrix workbook itself. Unlike the defect reports, the
// matrix layout is fixed: we own the export that produced it, so columns are
// addressed by position. Derived columns (recurrence sums, control ratings,
// statuses) are ignored on import and recomputed.
package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/qavision/qamatrix/backend/models"
)

// Fixed column layout of the matrix workbook. Keep in sync with export.go.
const (
	colSNo          = 0
	colSource       = 1
	colStation      = 2
	colDesignation  = 3
	colConcern      = 4
	colDefectRating = 5
	colWeeklyStart  = 7 // 6 slots, W-6 first
	colTrimStart    = 14
	colChassisStart = 25
	colFinalStart   = 40
	colQCtrlStart   = 52
	colQDetailStart = 63
	colMfgAction    = 73
	colResp         = 74
	colTarget       = 75
)

// Section keys in workbook column order. These mirror the score cell keys
// accepted by the concern model.
var (
	trimKeys    = []string{"T10", "T20", "T30", "T40", "T50", "T60", "T70", "T80", "T90", "T100", "TPQG"}
	chassisKeys = []string{"C10", "C20", "C30", "C40", "C45", "P10", "P20", "P30", "C50", "C60", "C70", "RSub", "TS", "C80", "CPQG"}
	finalKeys   = []string{"F10", "F20", "F30", "F40", "F50", "F60", "F70", "F80", "F90", "F100", "FPQG", "ResidualTorque"}
	qCtrlKeys   = []string{
		"freqControl_1_1", "visualControl_1_2", "periodicAudit_1_3", "humanControl_1_4",
		"saeAlert_3_1", "freqMeasure_3_2", "manualTool_3_3", "humanTracking_3_4",
		"autoControl_5_1", "impossibility_5_2", "saeProhibition_5_3",
	}
	qDetailKeys = []string{"CVT", "SHOWER", "DynamicUB", "CC4"}
)

func parseScore(s string) *float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &v
}

func readSection(c *models.Concern, section models.ScoreSection, keys []string, row []string, start int) {
	for i, key := range keys {
		c.SetScore(section, key, parseScore(cellAt(row, start+i)))
	}
}

// LoadMatrixWorkbook reads a QA Matrix workbook into concerns. Data rows are
// recognized by a numeric serial number in the first cell, so header and
// banner rows skip themselves.
func LoadMatrixWorkbook(r io.Reader) ([]models.Concern, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("opening matrix workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("matrix workbook has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("reading sheet %q: %w", sheets[0], err)
	}

	var concerns []models.Concern
	for _, row := range rows {
		sNo, err := strconv.Atoi(cellAt(row, colSNo))
		if err != nil || sNo <= 0 {
			continue
		}

		rating, err := strconv.Atoi(cellAt(row, colDefectRating))
		if err != nil || (rating != 1 && rating != 3 && rating != 5) {
			rating = 1
		}

		weekly := make([]int, models.WeeklyRecurrenceSlots)
		for i := range weekly {
			if w, err := strconv.Atoi(cellAt(row, colWeeklyStart+i)); err == nil && w > 0 {
				weekly[i] = w
			}
		}

		c := models.Concern{
			SNo:              sNo,
			Source:           cellAt(row, colSource),
			OperationStation: cellAt(row, colStation),
			Designation:      cellAt(row, colDesignation),
			Concern:          cellAt(row, colConcern),
			DefectRating:     rating,
			WeeklyRecurrence: weekly,
			MfgAction:        cellAt(row, colMfgAction),
			Resp:             cellAt(row, colResp),
			Target:           cellAt(row, colTarget),
		}
		readSection(&c, models.SectionTrim, trimKeys, row, colTrimStart)
		readSection(&c, models.SectionChassis, chassisKeys, row, colChassisStart)
		readSection(&c, models.SectionFinal, finalKeys, row, colFinalStart)
		readSection(&c, models.SectionQControl, qCtrlKeys, row, colQCtrlStart)
		readSection(&c, models.SectionQControlDetail, qDetailKeys, row, colQDetailStart)
		c.Recalculate()
		concerns = append(concerns, c)
	}

	if len(concerns) == 0 {
		return nil, fmt.Errorf("no concern rows found in matrix workbook")
	}
	return concerns, nil
}
