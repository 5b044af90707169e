// backend/models/concern.go
package models

// Status is the OK/NG outcome of a guarantee level check.
type Status string

const (
	StatusOK Status = "OK"
	StatusNG Status = "NG"
)

// WeeklyRecurrenceSlots is the fixed number of tracked weeks, oldest first.
// The last slot is the most recent week and is the one repeat-report applies
// write into.
const WeeklyRecurrenceSlots = 6

// TrimScores holds the per-station control scores for the Trim line.
// nil means the station has not been evaluated for this concern yet.
type TrimScores struct {
	T10  *float64 `json:"T10"`
	T20  *float64 `json:"T20"`
	T30  *float64 `json:"T30"`
	T40  *float64 `json:"T40"`
	T50  *float64 `json:"T50"`
	T60  *float64 `json:"T60"`
	T70  *float64 `json:"T70"`
	T80  *float64 `json:"T80"`
	T90  *float64 `json:"T90"`
	T100 *float64 `json:"T100"`
	TPQG *float64 `json:"TPQG"`
}

// ChassisScores holds the per-station control scores for the Chassis line
// (including the P10-P30 paint stations that feed it).
type ChassisScores struct {
	C10  *float64 `json:"C10"`
	C20  *float64 `json:"C20"`
	C30  *float64 `json:"C30"`
	C40  *float64 `json:"C40"`
	C45  *float64 `json:"C45"`
	P10  *float64 `json:"P10"`
	P20  *float64 `json:"P20"`
	P30  *float64 `json:"P30"`
	C50  *float64 `json:"C50"`
	C60  *float64 `json:"C60"`
	C70  *float64 `json:"C70"`
	RSub *float64 `json:"RSub"`
	TS   *float64 `json:"TS"`
	C80  *float64 `json:"C80"`
	CPQG *float64 `json:"CPQG"`
}

// FinalScores holds the per-station control scores for the Final line.
// ResidualTorque is special: it is excluded from the station rating sum and
// counted in the plant rating instead (see Recalculate).
type FinalScores struct {
	F10            *float64 `json:"F10"`
	F20            *float64 `json:"F20"`
	F30            *float64 `json:"F30"`
	F40            *float64 `json:"F40"`
	F50            *float64 `json:"F50"`
	F60            *float64 `json:"F60"`
	F70            *float64 `json:"F70"`
	F80            *float64 `json:"F80"`
	F90            *float64 `json:"F90"`
	F100           *float64 `json:"F100"`
	FPQG           *float64 `json:"FPQG"`
	ResidualTorque *float64 `json:"ResidualTorque"`
}

// QControlScores holds the process-level quality control scores (the 1.x,
// 3.x and 5.x control families).
type QControlScores struct {
	FreqControl11    *float64 `json:"freqControl_1_1"`
	VisualControl12  *float64 `json:"visualControl_1_2"`
	PeriodicAudit13  *float64 `json:"periodicAudit_1_3"`
	HumanControl14   *float64 `json:"humanControl_1_4"`
	SaeAlert31       *float64 `json:"saeAlert_3_1"`
	FreqMeasure32    *float64 `json:"freqMeasure_3_2"`
	ManualTool33     *float64 `json:"manualTool_3_3"`
	HumanTracking34  *float64 `json:"humanTracking_3_4"`
	AutoControl51    *float64 `json:"autoControl_5_1"`
	Impossibility52  *float64 `json:"impossibility_5_2"`
	SaeProhibition53 *float64 `json:"saeProhibition_5_3"`
}

// QControlDetail holds the four plant-level detail control scores.
type QControlDetail struct {
	CVT       *float64 `json:"CVT"`
	Shower    *float64 `json:"SHOWER"`
	DynamicUB *float64 `json:"DynamicUB"`
	CC4       *float64 `json:"CC4"`
}

// ControlRating holds the derived rating sums per guarantee level.
type ControlRating struct {
	MFG     float64 `json:"MFG"`
	Quality float64 `json:"Quality"`
	Plant   float64 `json:"Plant"`
}

// Concern is one ledger entry: a tracked quality issue at a station with its
// severity, recurrence history and control evidence. The score sections,
// rating and weekly recurrence are the raw source of truth; Recurrence,
// RecurrenceCountPlusDefect, ControlRating and the three statuses are derived
// and must be refreshed through Recalculate after every mutation.
type Concern struct {
	SNo              int    `json:"sNo"`
	Source           string `json:"source"`
	OperationStation string `json:"operationStation"`
	Designation      string `json:"designation"`
	Concern          string `json:"concern"`
	DefectRating     int    `json:"defectRating"` // 1, 3 or 5
	Recurrence       int    `json:"recurrence"`
	WeeklyRecurrence []int  `json:"weeklyRecurrence"` // exactly 6 slots, oldest first

	RecurrenceCountPlusDefect int `json:"recurrenceCountPlusDefect"`

	Trim           TrimScores     `json:"trim"`
	Chassis        ChassisScores  `json:"chassis"`
	Final          FinalScores    `json:"final"`
	QControl       QControlScores `json:"qControl"`
	QControlDetail QControlDetail `json:"qControlDetail"`

	ControlRating ControlRating `json:"controlRating"`

	WorkstationStatus Status `json:"workstationStatus"`
	MfgStatus         Status `json:"mfgStatus"`
	PlantStatus       Status `json:"plantStatus"`

	MfgAction string `json:"mfgAction"`
	Resp      string `json:"resp"`
	Target    string `json:"target"`
}

// Clone returns a deep copy of the concern, independent of later mutation of
// the original. Used for the pre-apply undo snapshot.
func (c Concern) Clone() Concern {
	out := c
	out.WeeklyRecurrence = append([]int(nil), c.WeeklyRecurrence...)
	out.Trim = c.Trim.clone()
	out.Chassis = c.Chassis.clone()
	out.Final = c.Final.clone()
	out.QControl = c.QControl.clone()
	out.QControlDetail = c.QControlDetail.clone()
	return out
}

// CloneLedger deep-copies a whole ledger slice.
func CloneLedger(concerns []Concern) []Concern {
	out := make([]Concern, len(concerns))
	for i, c := range concerns {
		out[i] = c.Clone()
	}
	return out
}

func clonePtr(v *float64) *float64 {
	if v == nil {
		return nil
	}
	cp := *v
	return &cp
}

func (s TrimScores) clone() TrimScores {
	s.T10, s.T20, s.T30 = clonePtr(s.T10), clonePtr(s.T20), clonePtr(s.T30)
	s.T40, s.T50, s.T60 = clonePtr(s.T40), clonePtr(s.T50), clonePtr(s.T60)
	s.T70, s.T80, s.T90 = clonePtr(s.T70), clonePtr(s.T80), clonePtr(s.T90)
	s.T100, s.TPQG = clonePtr(s.T100), clonePtr(s.TPQG)
	return s
}

func (s ChassisScores) clone() ChassisScores {
	s.C10, s.C20, s.C30 = clonePtr(s.C10), clonePtr(s.C20), clonePtr(s.C30)
	s.C40, s.C45, s.P10 = clonePtr(s.C40), clonePtr(s.C45), clonePtr(s.P10)
	s.P20, s.P30, s.C50 = clonePtr(s.P20), clonePtr(s.P30), clonePtr(s.C50)
	s.C60, s.C70, s.RSub = clonePtr(s.C60), clonePtr(s.C70), clonePtr(s.RSub)
	s.TS, s.C80, s.CPQG = clonePtr(s.TS), clonePtr(s.C80), clonePtr(s.CPQG)
	return s
}

func (s FinalScores) clone() FinalScores {
	s.F10, s.F20, s.F30 = clonePtr(s.F10), clonePtr(s.F20), clonePtr(s.F30)
	s.F40, s.F50, s.F60 = clonePtr(s.F40), clonePtr(s.F50), clonePtr(s.F60)
	s.F70, s.F80, s.F90 = clonePtr(s.F70), clonePtr(s.F80), clonePtr(s.F90)
	s.F100, s.FPQG, s.ResidualTorque = clonePtr(s.F100), clonePtr(s.FPQG), clonePtr(s.ResidualTorque)
	return s
}

func (s QControlScores) clone() QControlScores {
	s.FreqControl11, s.VisualControl12 = clonePtr(s.FreqControl11), clonePtr(s.VisualControl12)
	s.PeriodicAudit13, s.HumanControl14 = clonePtr(s.PeriodicAudit13), clonePtr(s.HumanControl14)
	s.SaeAlert31, s.FreqMeasure32 = clonePtr(s.SaeAlert31), clonePtr(s.FreqMeasure32)
	s.ManualTool33, s.HumanTracking34 = clonePtr(s.ManualTool33), clonePtr(s.HumanTracking34)
	s.AutoControl51, s.Impossibility52 = clonePtr(s.AutoControl51), clonePtr(s.Impossibility52)
	s.SaeProhibition53 = clonePtr(s.SaeProhibition53)
	return s
}

func (s QControlDetail) clone() QControlDetail {
	s.CVT, s.Shower = clonePtr(s.CVT), clonePtr(s.Shower)
	s.DynamicUB, s.CC4 = clonePtr(s.DynamicUB), clonePtr(s.CC4)
	return s
}
