// backend/report/dvx.go
//
// Parser for externally produced repeat-issues defect reports (xlsx). The
// reports come from a plant system we do not control: header spelling,
// accents and column order drift between exports, so columns are resolved by
// normalized header text rather than by position.
package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/unicode/norm"

	"github.com/qavision/qamatrix/backend/models"
)

// headerScanRows is how deep we look for the header row; real exports carry
// a few banner rows above it.
const headerScanRows = 10

var knownHeaders = []string{
	"defect description",
	"defect code",
	"gravity",
	"location details",
	"quantity",
}

// normalizeHeader lowercases, strips diacritics and collapses underscore and
// whitespace runs, so "Défect_Description " and "defect description" compare
// equal.
func normalizeHeader(h string) string {
	h = strings.ToLower(strings.TrimSpace(h))
	var b strings.Builder
	for _, r := range norm.NFD.String(h) {
		if unicode.Is(unicode.Mn, r) {
			continue
		}
		b.WriteRune(r)
	}
	fields := strings.FieldsFunc(b.String(), func(r rune) bool {
		return r == '_' || unicode.IsSpace(r)
	})
	return strings.Join(fields, " ")
}

// findCol resolves a column by trying every candidate as an exact header
// match first, then as a prefix, then as a substring. Returns -1 when no
// candidate matches.
func findCol(headers []string, candidates ...string) int {
	for _, cand := range candidates {
		for i, h := range headers {
			if h == cand {
				return i
			}
		}
	}
	for _, cand := range candidates {
		for i, h := range headers {
			if strings.HasPrefix(h, cand) {
				return i
			}
		}
	}
	for _, cand := range candidates {
		for i, h := range headers {
			if strings.Contains(h, cand) {
				return i
			}
		}
	}
	return -1
}

// findHeaderRow scans the top of the sheet for a row carrying at least three
// of the known report headers.
func findHeaderRow(rows [][]string) int {
	limit := len(rows)
	if limit > headerScanRows {
		limit = headerScanRows
	}
	for r := 0; r < limit; r++ {
		hits := 0
		for _, cell := range rows[r] {
			n := normalizeHeader(cell)
			for _, known := range knownHeaders {
				if strings.Contains(n, known) {
					hits++
					break
				}
			}
		}
		if hits >= 3 {
			return r
		}
	}
	return -1
}

func cellAt(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func parseQuantity(s string) int {
	q, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || q <= 0 {
		return 1
	}
	return q
}

// ParseDefectReport reads a defect report workbook and returns its rows.
func ParseDefectReport(r io.Reader) ([]models.DefectEntry, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("opening report workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("report workbook has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("reading sheet %q: %w", sheets[0], err)
	}

	if len(rows) == 0 {
		return nil, fmt.Errorf("report sheet %q is empty", sheets[0])
	}
	// Headerless single-table exports exist; treat the first row as the
	// header when no row carries enough known column names.
	headerRow := findHeaderRow(rows)
	if headerRow < 0 {
		headerRow = 0
	}
	headers := make([]string, len(rows[headerRow]))
	for i, h := range rows[headerRow] {
		headers[i] = normalizeHeader(h)
	}

	dateCol := findCol(headers, "date")
	locCol := findCol(headers, "location details", "location")
	codeCol := findCol(headers, "defect code", "code")
	// Exact name first so "defect description details" cannot steal it.
	descCol := findCol(headers, "defect description")
	detailsCol := findCol(headers, "defect description details", "description details", "details")
	gravityCol := findCol(headers, "gravity", "severity")
	qtyCol := findCol(headers, "quantity", "qty")
	sourceCol := findCol(headers, "source")
	respCol := findCol(headers, "responsible", "resp")
	pofFamilyCol := findCol(headers, "pof family")
	pofCodeCol := findCol(headers, "pof code")

	if descCol < 0 {
		return nil, fmt.Errorf("report is missing a defect description column")
	}

	var entries []models.DefectEntry
	for _, row := range rows[headerRow+1:] {
		e := models.DefectEntry{
			Date:                     cellAt(row, dateCol),
			LocationDetails:          cellAt(row, locCol),
			DefectCode:               cellAt(row, codeCol),
			DefectDescription:        cellAt(row, descCol),
			DefectDescriptionDetails: cellAt(row, detailsCol),
			Gravity:                  cellAt(row, gravityCol),
			Quantity:                 parseQuantity(cellAt(row, qtyCol)),
			Source:                   cellAt(row, sourceCol),
			Responsible:              cellAt(row, respCol),
			PofFamily:                cellAt(row, pofFamilyCol),
			PofCode:                  cellAt(row, pofCodeCol),
		}
		if e.DefectDescription == "" && e.DefectDescriptionDetails == "" && e.LocationDetails == "" {
			continue
		}
		entries = append(entries, e)
	}
	return entries, nil
}
