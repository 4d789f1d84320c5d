package planner

import (
	"fmt"
	"sort"

	"github.com/noah-isme/sma-blockplan-api/internal/models"
	appErrors "github.com/noah-isme/sma-blockplan-api/pkg/errors"
)

// SessionBands is the output of the session generator: every block activity
// lands in exactly one band, determined by its criteria shape.
type SessionBands struct {
	Mandatory []models.ActivitySessions
	Unordered []models.ActivitySessions
	Overflow  []models.ActivitySessions
}

// GenerateSessions materializes the time grid of sessions implied by the
// block definition. Sessions of non-mandatory activities that overlap a
// mandatory session on the same date are dropped before enrollment begins.
func GenerateSessions(block models.Block) (SessionBands, error) {
	var bands SessionBands

	built := make([]models.ActivitySessions, 0, len(block.Activities))
	for _, activity := range block.Activities {
		sessions, err := buildSessions(block, activity)
		if err != nil {
			return SessionBands{}, err
		}
		sortSessions(sessions)
		built = append(built, models.ActivitySessions{Activity: activity, Sessions: sessions})
	}

	var mandatorySlots []models.Timeslot
	for _, as := range built {
		if as.Activity.IsMandatory() {
			for _, s := range as.Sessions {
				mandatorySlots = append(mandatorySlots, s.Slot)
			}
		}
	}

	for _, as := range built {
		if !as.Activity.IsMandatory() {
			as.Sessions = dropMandatoryConflicts(as.Sessions, mandatorySlots)
		}
		switch {
		case as.Activity.IsMandatory():
			bands.Mandatory = append(bands.Mandatory, as)
		case as.Activity.IsOverflow():
			bands.Overflow = append(bands.Overflow, as)
		default:
			bands.Unordered = append(bands.Unordered, as)
		}
	}

	return bands, nil
}

func buildSessions(block models.Block, activity models.Activity) ([]models.Session, error) {
	switch activity.Criteria.Kind {
	case models.CriteriaSelectTwoPeers:
		// one session per group per frequency instance, enrollable limited to
		// that group
		var sessions []models.Session
		for _, slot := range activity.Frequency.Materialize(block.Start, block.End) {
			for _, group := range block.House.Groups {
				sessions = append(sessions, models.NewSession(slot, group.Students))
			}
		}
		return sessions, nil

	case models.CriteriaSelectMaxStudents, models.CriteriaSelectAllStudents:
		all := block.House.Students()
		var sessions []models.Session
		for _, slot := range activity.Frequency.Materialize(block.Start, block.End) {
			sessions = append(sessions, models.NewSession(slot, all))
		}
		return sessions, nil

	case models.CriteriaOverflow:
		master, ok := block.ActivityByName(activity.Criteria.Master)
		if !ok {
			return nil, appErrors.Clone(appErrors.ErrMasterNotFound,
				fmt.Sprintf("overflow activity %q references unknown master %q", activity.Name, activity.Criteria.Master))
		}
		if !activity.Frequency.Equal(master.Frequency) {
			return nil, appErrors.Clone(appErrors.ErrFrequencyMismatch,
				fmt.Sprintf("overflow activity %q must share the frequency of master %q", activity.Name, master.Name))
		}
		masterSessions, err := buildSessions(block, master)
		if err != nil {
			return nil, err
		}
		// mirror the master's grid: same times, same enrollable set
		sessions := make([]models.Session, len(masterSessions))
		for i, ms := range masterSessions {
			sessions[i] = models.NewSession(ms.Slot, ms.Enrollable)
		}
		return sessions, nil
	}

	return nil, appErrors.Clone(appErrors.ErrValidation,
		fmt.Sprintf("activity %q has unknown criteria kind %q", activity.Name, activity.Criteria.Kind))
}

func sortSessions(sessions []models.Session) {
	sort.SliceStable(sessions, func(i, j int) bool {
		a, b := sessions[i].Slot, sessions[j].Slot
		if !a.Date.Equal(b.Date) {
			return a.Date.Before(b.Date)
		}
		if a.Start != b.Start {
			return a.Start < b.Start
		}
		return a.End < b.End
	})
}

func dropMandatoryConflicts(sessions []models.Session, mandatorySlots []models.Timeslot) []models.Session {
	if len(mandatorySlots) == 0 {
		return sessions
	}
	kept := sessions[:0]
	for _, s := range sessions {
		conflicted := false
		for _, slot := range mandatorySlots {
			if s.Slot.Overlaps(slot) {
				conflicted = true
				break
			}
		}
		if !conflicted {
			kept = append(kept, s)
		}
	}
	return kept
}
