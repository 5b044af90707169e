// backend/report/csv.go
package report

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/jszwec/csvutil"

	"github.com/qavision/qamatrix/backend/models"
)

// csvDefectRow keeps every cell as text so that a blank or malformed
// quantity degrades to the default instead of failing the whole file.
type csvDefectRow struct {
	Date                     string `csv:"Date"`
	LocationDetails          string `csv:"Location Details"`
	DefectCode               string `csv:"Defect Code"`
	DefectDescription        string `csv:"Defect Description"`
	DefectDescriptionDetails string `csv:"Defect Description Details"`
	Gravity                  string `csv:"Gravity"`
	Quantity                 string `csv:"Quantity"`
	Source                   string `csv:"Source"`
	Responsible              string `csv:"Responsible"`
	PofFamily                string `csv:"POF Family"`
	PofCode                  string `csv:"POF CODE"`
}

// ParseDefectCSV reads a defect report exported as CSV. Unknown columns are
// ignored; rows with no description, details or location are skipped.
func ParseDefectCSV(r io.Reader) ([]models.DefectEntry, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	dec, err := csvutil.NewDecoder(cr)
	if err != nil {
		return nil, fmt.Errorf("reading csv header: %w", err)
	}

	var entries []models.DefectEntry
	for {
		var row csvDefectRow
		if err := dec.Decode(&row); err == io.EOF {
			break
		} else if err != nil {
			return nil, fmt.Errorf("decoding csv row: %w", err)
		}
		if row.DefectDescription == "" && row.DefectDescriptionDetails == "" && row.LocationDetails == "" {
			continue
		}
		entries = append(entries, models.DefectEntry{
			Date:                     row.Date,
			LocationDetails:          row.LocationDetails,
			DefectCode:               row.DefectCode,
			DefectDescription:        row.DefectDescription,
			DefectDescriptionDetails: row.DefectDescriptionDetails,
			Gravity:                  row.Gravity,
			Quantity:                 parseQuantity(row.Quantity),
			Source:                   row.Source,
			Responsible:              row.Responsible,
			PofFamily:                row.PofFamily,
			PofCode:                  row.PofCode,
		})
	}
	return entries, nil
}
