// backend/models/scores.go
package models

// ScoreSection names one of the five score blocks on a concern. Score
// updates are dispatched on this typed value plus an enumerated key, never
// on free-form struct field lookups.
type ScoreSection string

const (
	SectionTrim           ScoreSection = "trim"
	SectionChassis        ScoreSection = "chassis"
	SectionFinal          ScoreSection = "final"
	SectionQControl       ScoreSection = "qControl"
	SectionQControlDetail ScoreSection = "qControlDetail"
)

// ParseScoreSection validates a section name coming off the wire.
func ParseScoreSection(s string) (ScoreSection, bool) {
	switch ScoreSection(s) {
	case SectionTrim, SectionChassis, SectionFinal, SectionQControl, SectionQControlDetail:
		return ScoreSection(s), true
	}
	return "", false
}

// SetScore sets a single score cell. Returns false when the section/key pair
// does not exist; the concern is untouched in that case. Callers must run
// Recalculate afterwards.
func (c *Concern) SetScore(section ScoreSection, key string, value *float64) bool {
	switch section {
	case SectionTrim:
		return c.Trim.set(key, value)
	case SectionChassis:
		return c.Chassis.set(key, value)
	case SectionFinal:
		return c.Final.set(key, value)
	case SectionQControl:
		return c.QControl.set(key, value)
	case SectionQControlDetail:
		return c.QControlDetail.set(key, value)
	}
	return false
}

func (s *TrimScores) set(key string, v *float64) bool {
	switch key {
	case "T10":
		s.T10 = v
	case "T20":
		s.T20 = v
	case "T30":
		s.T30 = v
	case "T40":
		s.T40 = v
	case "T50":
		s.T50 = v
	case "T60":
		s.T60 = v
	case "T70":
		s.T70 = v
	case "T80":
		s.T80 = v
	case "T90":
		s.T90 = v
	case "T100":
		s.T100 = v
	case "TPQG":
		s.TPQG = v
	default:
		return false
	}
	return true
}

func (s *ChassisScores) set(key string, v *float64) bool {
	switch key {
	case "C10":
		s.C10 = v
	case "C20":
		s.C20 = v
	case "C30":
		s.C30 = v
	case "C40":
		s.C40 = v
	case "C45":
		s.C45 = v
	case "P10":
		s.P10 = v
	case "P20":
		s.P20 = v
	case "P30":
		s.P30 = v
	case "C50":
		s.C50 = v
	case "C60":
		s.C60 = v
	case "C70":
		s.C70 = v
	case "RSub":
		s.RSub = v
	case "TS":
		s.TS = v
	case "C80":
		s.C80 = v
	case "CPQG":
		s.CPQG = v
	default:
		return false
	}
	return true
}

func (s *FinalScores) set(key string, v *float64) bool {
	switch key {
	case "F10":
		s.F10 = v
	case "F20":
		s.F20 = v
	case "F30":
		s.F30 = v
	case "F40":
		s.F40 = v
	case "F50":
		s.F50 = v
	case "F60":
		s.F60 = v
	case "F70":
		s.F70 = v
	case "F80":
		s.F80 = v
	case "F90":
		s.F90 = v
	case "F100":
		s.F100 = v
	case "FPQG":
		s.FPQG = v
	case "ResidualTorque":
		s.ResidualTorque = v
	default:
		return false
	}
	return true
}

func (s *QControlScores) set(key string, v *float64) bool {
	switch key {
	case "freqControl_1_1":
		s.FreqControl11 = v
	case "visualControl_1_2":
		s.VisualControl12 = v
	case "periodicAudit_1_3":
		s.PeriodicAudit13 = v
	case "humanControl_1_4":
		s.HumanControl14 = v
	case "saeAlert_3_1":
		s.SaeAlert31 = v
	case "freqMeasure_3_2":
		s.FreqMeasure32 = v
	case "manualTool_3_3":
		s.ManualTool33 = v
	case "humanTracking_3_4":
		s.HumanTracking34 = v
	case "autoControl_5_1":
		s.AutoControl51 = v
	case "impossibility_5_2":
		s.Impossibility52 = v
	case "saeProhibition_5_3":
		s.SaeProhibition53 = v
	default:
		return false
	}
	return true
}

func (s *QControlDetail) set(key string, v *float64) bool {
	switch key {
	case "CVT":
		s.CVT = v
	case "SHOWER":
		s.Shower = v
	case "DynamicUB":
		s.DynamicUB = v
	case "CC4":
		s.CC4 = v
	default:
		return false
	}
	return true
}

// values returns every cell of a section in its fixed key order.

func (s TrimScores) values() []*float64 {
	return []*float64{s.T10, s.T20, s.T30, s.T40, s.T50, s.T60, s.T70, s.T80, s.T90, s.T100, s.TPQG}
}

func (s ChassisScores) values() []*float64 {
	return []*float64{s.C10, s.C20, s.C30, s.C40, s.C45, s.P10, s.P20, s.P30, s.C50, s.C60, s.C70, s.RSub, s.TS, s.C80, s.CPQG}
}

// values excludes ResidualTorque; it belongs to the plant sum, not the
// station sum.
func (s FinalScores) values() []*float64 {
	return []*float64{s.F10, s.F20, s.F30, s.F40, s.F50, s.F60, s.F70, s.F80, s.F90, s.F100, s.FPQG}
}

func (s QControlScores) values() []*float64 {
	return []*float64{s.FreqControl11, s.VisualControl12, s.PeriodicAudit13, s.HumanControl14,
		s.SaeAlert31, s.FreqMeasure32, s.ManualTool33, s.HumanTracking34,
		s.AutoControl51, s.Impossibility52, s.SaeProhibition53}
}

func (s QControlDetail) values() []*float64 {
	return []*float64{s.CVT, s.Shower, s.DynamicUB, s.CC4}
}
