// backend/models/calculations.go
package models

func sumNonNil(groups ...[]*float64) float64 {
	var total float64
	for _, vals := range groups {
		for _, v := range vals {
			if v != nil {
				total += *v
			}
		}
	}
	return total
}

// Recalculate refreshes every derived field of a concern from its raw fields:
// recurrence totals, the three rating sums and the three OK/NG statuses.
// It is pure (touches nothing but derived fields), idempotent, and must be
// called after every mutation to the rating, weekly recurrence or any score
// cell before the concern is observable again.
//
// Workstation and MFG deliberately share the same rating-sum threshold test;
// Workstation additionally goes NG whenever any tracked week still shows live
// recurrence.
func (c *Concern) Recalculate() {
	dr := float64(c.DefectRating)

	recurrence := 0
	hasRecurrence := false
	for _, w := range c.WeeklyRecurrence {
		recurrence += w
		if w > 0 {
			hasRecurrence = true
		}
	}
	c.Recurrence = recurrence
	c.RecurrenceCountPlusDefect = c.DefectRating + recurrence

	// Station rating: all Trim + Chassis + Final scores except ResidualTorque.
	mfgRating := sumNonNil(c.Trim.values(), c.Chassis.values(), c.Final.values())

	qualityRating := sumNonNil(c.QControl.values())

	// Plant rating: ResidualTorque + process controls + detail controls.
	plantRating := sumNonNil([]*float64{c.Final.ResidualTorque}, c.QControl.values(), c.QControlDetail.values())

	c.ControlRating = ControlRating{MFG: mfgRating, Quality: qualityRating, Plant: plantRating}

	if hasRecurrence {
		c.WorkstationStatus = StatusNG
	} else {
		c.WorkstationStatus = statusFor(mfgRating >= dr)
	}
	c.MfgStatus = statusFor(mfgRating >= dr)
	c.PlantStatus = statusFor(plantRating >= dr)
}

func statusFor(ok bool) Status {
	if ok {
		return StatusOK
	}
	return StatusNG
}
