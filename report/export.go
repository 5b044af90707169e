// backend/report/export.go
package report

import (
	"fmt"

	"github.com/jszwec/csvutil"
	"github.com/xuri/excelize/v2"

	"github.com/qavision/qamatrix/backend/models"
)

var xlsxHeaders = []string{
	"S.No", "Source", "Operation/Station", "Designation", "Concern", "Defect Rating",
	"Recurrence", "W-6", "W-5", "W-4", "W-3", "W-2", "W-1",
	"Recurrence Count + Defect Rating",
	"T10", "T20", "T30", "T40", "T50", "T60", "T70", "T80", "T90", "T100", "TPQG",
	"C10", "C20", "C30", "C40", "C45", "P10", "P20", "P30", "C50", "C60", "C70", "R.Sub", "TS", "C80", "CPQG",
	"F10", "F20", "F30", "F40", "F50", "F60", "F70", "F80", "F90", "F100", "FPQG", "Residual Torque",
	"1.1", "1.2", "1.3", "1.4", "3.1", "3.2", "3.3", "3.4", "5.1", "5.2", "5.3",
	"CVT", "SHOWER", "Dynamic/UB", "CC4",
	"CTRL MFG", "CTRL Quality", "CTRL Plant",
	"WS Status", "MFG Status", "Plant Status",
	"MFG Action", "Resp", "Target",
}

func scoreCell(v *float64) interface{} {
	if v == nil {
		return ""
	}
	return *v
}

func sectionCells(c models.Concern) []interface{} {
	cells := []interface{}{
		scoreCell(c.Trim.T10), scoreCell(c.Trim.T20), scoreCell(c.Trim.T30), scoreCell(c.Trim.T40),
		scoreCell(c.Trim.T50), scoreCell(c.Trim.T60), scoreCell(c.Trim.T70), scoreCell(c.Trim.T80),
		scoreCell(c.Trim.T90), scoreCell(c.Trim.T100), scoreCell(c.Trim.TPQG),
	}
	cells = append(cells,
		scoreCell(c.Chassis.C10), scoreCell(c.Chassis.C20), scoreCell(c.Chassis.C30), scoreCell(c.Chassis.C40),
		scoreCell(c.Chassis.C45), scoreCell(c.Chassis.P10), scoreCell(c.Chassis.P20), scoreCell(c.Chassis.P30),
		scoreCell(c.Chassis.C50), scoreCell(c.Chassis.C60), scoreCell(c.Chassis.C70), scoreCell(c.Chassis.RSub),
		scoreCell(c.Chassis.TS), scoreCell(c.Chassis.C80), scoreCell(c.Chassis.CPQG),
	)
	cells = append(cells,
		scoreCell(c.Final.F10), scoreCell(c.Final.F20), scoreCell(c.Final.F30), scoreCell(c.Final.F40),
		scoreCell(c.Final.F50), scoreCell(c.Final.F60), scoreCell(c.Final.F70), scoreCell(c.Final.F80),
		scoreCell(c.Final.F90), scoreCell(c.Final.F100), scoreCell(c.Final.FPQG), scoreCell(c.Final.ResidualTorque),
	)
	cells = append(cells,
		scoreCell(c.QControl.FreqControl11), scoreCell(c.QControl.VisualControl12),
		scoreCell(c.QControl.PeriodicAudit13), scoreCell(c.QControl.HumanControl14),
		scoreCell(c.QControl.SaeAlert31), scoreCell(c.QControl.FreqMeasure32),
		scoreCell(c.QControl.ManualTool33), scoreCell(c.QControl.HumanTracking34),
		scoreCell(c.QControl.AutoControl51), scoreCell(c.QControl.Impossibility52),
		scoreCell(c.QControl.SaeProhibition53),
	)
	cells = append(cells,
		scoreCell(c.QControlDetail.CVT), scoreCell(c.QControlDetail.Shower),
		scoreCell(c.QControlDetail.DynamicUB), scoreCell(c.QControlDetail.CC4),
	)
	return cells
}

// ExportXLSX renders the ledger as a QA Matrix workbook in the same fixed
// column layout that LoadMatrixWorkbook reads, so exports re-import cleanly.
func ExportXLSX(concerns []models.Concern) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)

	if err := f.SetSheetRow(sheet, "A1", &xlsxHeaders); err != nil {
		return nil, fmt.Errorf("writing header row: %w", err)
	}

	for i, c := range concerns {
		row := []interface{}{
			c.SNo, c.Source, c.OperationStation, c.Designation, c.Concern, c.DefectRating, c.Recurrence,
		}
		for _, w := range c.WeeklyRecurrence {
			row = append(row, w)
		}
		row = append(row, c.RecurrenceCountPlusDefect)
		row = append(row, sectionCells(c)...)
		row = append(row,
			c.ControlRating.MFG, c.ControlRating.Quality, c.ControlRating.Plant,
			string(c.WorkstationStatus), string(c.MfgStatus), string(c.PlantStatus),
			c.MfgAction, c.Resp, c.Target,
		)

		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, fmt.Errorf("addressing row %d: %w", i+2, err)
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return nil, fmt.Errorf("writing concern %d: %w", c.SNo, err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("serializing workbook: %w", err)
	}
	return buf.Bytes(), nil
}

// csvConcernRow is the flat CSV shape of one concern.
type csvConcernRow struct {
	SNo          int    `csv:"S.No"`
	Source       string `csv:"Source"`
	Station      string `csv:"Station"`
	Area         string `csv:"Area"`
	Concern      string `csv:"Concern"`
	DefectRating int    `csv:"Defect Rating"`
	W6           int    `csv:"W-6"`
	W5           int    `csv:"W-5"`
	W4           int    `csv:"W-4"`
	W3           int    `csv:"W-3"`
	W2           int    `csv:"W-2"`
	W1           int    `csv:"W-1"`
	RCPlusDR     int    `csv:"RC+DR"`

	T10  string `csv:"T10"`
	T20  string `csv:"T20"`
	T30  string `csv:"T30"`
	T40  string `csv:"T40"`
	T50  string `csv:"T50"`
	T60  string `csv:"T60"`
	T70  string `csv:"T70"`
	T80  string `csv:"T80"`
	T90  string `csv:"T90"`
	T100 string `csv:"T100"`
	TPQG string `csv:"TPQG"`

	C10  string `csv:"C10"`
	C20  string `csv:"C20"`
	C30  string `csv:"C30"`
	C40  string `csv:"C40"`
	C45  string `csv:"C45"`
	P10  string `csv:"P10"`
	P20  string `csv:"P20"`
	P30  string `csv:"P30"`
	C50  string `csv:"C50"`
	C60  string `csv:"C60"`
	C70  string `csv:"C70"`
	RSub string `csv:"R.Sub"`
	TS   string `csv:"TS"`
	C80  string `csv:"C80"`
	CPQG string `csv:"CPQG"`

	F10            string `csv:"F10"`
	F20            string `csv:"F20"`
	F30            string `csv:"F30"`
	F40            string `csv:"F40"`
	F50            string `csv:"F50"`
	F60            string `csv:"F60"`
	F70            string `csv:"F70"`
	F80            string `csv:"F80"`
	F90            string `csv:"F90"`
	F100           string `csv:"F100"`
	FPQG           string `csv:"FPQG"`
	ResidualTorque string `csv:"Residual Torque"`

	Q11 string `csv:"1.1"`
	Q12 string `csv:"1.2"`
	Q13 string `csv:"1.3"`
	Q14 string `csv:"1.4"`
	Q31 string `csv:"3.1"`
	Q32 string `csv:"3.2"`
	Q33 string `csv:"3.3"`
	Q34 string `csv:"3.4"`
	Q51 string `csv:"5.1"`
	Q52 string `csv:"5.2"`
	Q53 string `csv:"5.3"`

	CVT       string `csv:"CVT"`
	Shower    string `csv:"SHOWER"`
	DynamicUB string `csv:"Dynamic/UB"`
	CC4       string `csv:"CC4"`

	CtrlMFG   float64 `csv:"CTRL MFG"`
	CtrlQty   float64 `csv:"CTRL Qty"`
	CtrlPlant float64 `csv:"CTRL Plant"`

	WSStatus    string `csv:"WS Status"`
	MfgStatus   string `csv:"MFG Status"`
	PlantStatus string `csv:"Plant Status"`

	MfgAction string `csv:"MFG Action"`
	Resp      string `csv:"Resp"`
	Target    string `csv:"Target"`
}

func scoreText(v *float64) string {
	if v == nil {
		return ""
	}
	return fmt.Sprintf("%g", *v)
}

// ExportCSV renders the ledger as a single flat CSV table.
func ExportCSV(concerns []models.Concern) ([]byte, error) {
	rows := make([]csvConcernRow, len(concerns))
	for i, c := range concerns {
		w := c.WeeklyRecurrence
		for len(w) < models.WeeklyRecurrenceSlots {
			w = append(w, 0)
		}
		rows[i] = csvConcernRow{
			SNo: c.SNo, Source: c.Source, Station: c.OperationStation, Area: c.Designation,
			Concern: c.Concern, DefectRating: c.DefectRating,
			W6: w[0], W5: w[1], W4: w[2], W3: w[3], W2: w[4], W1: w[5],
			RCPlusDR: c.RecurrenceCountPlusDefect,

			T10: scoreText(c.Trim.T10), T20: scoreText(c.Trim.T20), T30: scoreText(c.Trim.T30),
			T40: scoreText(c.Trim.T40), T50: scoreText(c.Trim.T50), T60: scoreText(c.Trim.T60),
			T70: scoreText(c.Trim.T70), T80: scoreText(c.Trim.T80), T90: scoreText(c.Trim.T90),
			T100: scoreText(c.Trim.T100), TPQG: scoreText(c.Trim.TPQG),

			C10: scoreText(c.Chassis.C10), C20: scoreText(c.Chassis.C20), C30: scoreText(c.Chassis.C30),
			C40: scoreText(c.Chassis.C40), C45: scoreText(c.Chassis.C45), P10: scoreText(c.Chassis.P10),
			P20: scoreText(c.Chassis.P20), P30: scoreText(c.Chassis.P30), C50: scoreText(c.Chassis.C50),
			C60: scoreText(c.Chassis.C60), C70: scoreText(c.Chassis.C70), RSub: scoreText(c.Chassis.RSub),
			TS: scoreText(c.Chassis.TS), C80: scoreText(c.Chassis.C80), CPQG: scoreText(c.Chassis.CPQG),

			F10: scoreText(c.Final.F10), F20: scoreText(c.Final.F20), F30: scoreText(c.Final.F30),
			F40: scoreText(c.Final.F40), F50: scoreText(c.Final.F50), F60: scoreText(c.Final.F60),
			F70: scoreText(c.Final.F70), F80: scoreText(c.Final.F80), F90: scoreText(c.Final.F90),
			F100: scoreText(c.Final.F100), FPQG: scoreText(c.Final.FPQG),
			ResidualTorque: scoreText(c.Final.ResidualTorque),

			Q11: scoreText(c.QControl.FreqControl11), Q12: scoreText(c.QControl.VisualControl12),
			Q13: scoreText(c.QControl.PeriodicAudit13), Q14: scoreText(c.QControl.HumanControl14),
			Q31: scoreText(c.QControl.SaeAlert31), Q32: scoreText(c.QControl.FreqMeasure32),
			Q33: scoreText(c.QControl.ManualTool33), Q34: scoreText(c.QControl.HumanTracking34),
			Q51: scoreText(c.QControl.AutoControl51), Q52: scoreText(c.QControl.Impossibility52),
			Q53: scoreText(c.QControl.SaeProhibition53),

			CVT: scoreText(c.QControlDetail.CVT), Shower: scoreText(c.QControlDetail.Shower),
			DynamicUB: scoreText(c.QControlDetail.DynamicUB), CC4: scoreText(c.QControlDetail.CC4),

			CtrlMFG: c.ControlRating.MFG, CtrlQty: c.ControlRating.Quality, CtrlPlant: c.ControlRating.Plant,
			WSStatus: string(c.WorkstationStatus), MfgStatus: string(c.MfgStatus), PlantStatus: string(c.PlantStatus),
			MfgAction: c.MfgAction, Resp: c.Resp, Target: c.Target,
		}
	}

	out, err := csvutil.Marshal(rows)
	if err != nil {
		return nil, fmt.Errorf("marshaling csv: %w", err)
	}
	return out, nil
}
