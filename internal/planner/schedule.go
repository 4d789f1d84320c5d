package planner

import (
	"github.com/noah-isme/sma-blockplan-api/internal/models"
)

// CreateSchedule runs a single pass of constructive enrollment over the
// block: generate sessions, fill the unordered band, assert the mandatory
// band, then derive overflow enrollments from the composed schedule.
func CreateSchedule(block models.Block, attendance models.AttendanceRecord, enroller Enroller) (models.BlockSchedule, error) {
	bands, err := GenerateSessions(block)
	if err != nil {
		return models.BlockSchedule{}, err
	}
	return fillBands(block, attendance, enroller, bands)
}

// FillSchedule repairs a partial schedule: empty slots in the unordered band
// are topped up, the mandatory band is reasserted, and every overflow session
// is regenerated from scratch.
func FillSchedule(attendance models.AttendanceRecord, enroller Enroller, bs models.BlockSchedule) (models.BlockSchedule, error) {
	var bands SessionBands
	for _, as := range bs.Schedule {
		switch {
		case as.Activity.IsMandatory():
			bands.Mandatory = append(bands.Mandatory, as)
		case as.Activity.IsOverflow():
			// overflow is always rebuilt from the repaired schedule
			sessions := make([]models.Session, len(as.Sessions))
			for i, s := range as.Sessions {
				sessions[i] = s.WithEnrollment(models.EmptyEnrollment())
			}
			bands.Overflow = append(bands.Overflow, models.ActivitySessions{Activity: as.Activity, Sessions: sessions})
		default:
			bands.Unordered = append(bands.Unordered, as)
		}
	}
	return fillBands(bs.Block, attendance, enroller, bands)
}

func fillBands(block models.Block, attendance models.AttendanceRecord, enroller Enroller, bands SessionBands) (models.BlockSchedule, error) {
	unordered, err := enroller.Enroll(block.House, attendance, bands.Unordered)
	if err != nil {
		return models.BlockSchedule{}, err
	}
	mandatory := EnrollMandatory(block.House, bands.Mandatory)

	core := composeSchedule(block, mandatory, unordered, nil)
	overflow := EnrollOverflow(bands.Overflow, core)

	return models.BlockSchedule{
		Block:    block,
		Schedule: composeSchedule(block, mandatory, unordered, overflow),
	}, nil
}

// composeSchedule reassembles the bands into the block's activity order.
func composeSchedule(block models.Block, groups ...[]models.ActivitySessions) models.ActivitySchedule {
	byName := make(map[string]models.ActivitySessions)
	for _, group := range groups {
		for _, as := range group {
			byName[as.Activity.Name] = as
		}
	}
	var schedule models.ActivitySchedule
	for _, activity := range block.Activities {
		if as, ok := byName[activity.Name]; ok {
			schedule = append(schedule, as)
		}
	}
	return schedule
}
