package planner

import "github.com/noah-isme/sma-blockplan-api/internal/models"

// StudentsNeeding returns the enrollable students who still require the
// activity, given prior-block attendance and the sessions already scheduled
// for it this block. Peer roles have their own predicates below; overflow and
// no-requirement activities need nobody.
func StudentsNeeding(activity models.Activity, enrollable []models.Student, attendance models.AttendanceRecord, scheduled []models.Session) []models.Student {
	switch activity.Criteria.Kind {
	case models.CriteriaSelectMaxStudents, models.CriteriaSelectAllStudents:
		switch activity.Criteria.Requirement {
		case models.AttendEverySession:
			out := make([]models.Student, len(enrollable))
			copy(out, enrollable)
			return out
		case models.AttendOnceThisYear:
			var out []models.Student
			for _, s := range enrollable {
				if attendance.HasAttended(s, activity.Name) {
					continue
				}
				if enrolledInAny(s, scheduled) {
					continue
				}
				out = append(out, s)
			}
			return out
		}
	}
	return nil
}

// NeedsBedside returns students whose bedside count across the scheduled
// sessions is still below the per-block target.
func NeedsBedside(activity models.Activity, enrollable []models.Student, scheduled []models.Session) []models.Student {
	var out []models.Student
	for _, s := range enrollable {
		if BedsideCount(s, scheduled) < activity.Criteria.TimesPerBlock {
			out = append(out, s)
		}
	}
	return out
}

// NeedsPeer returns students whose peer count across the scheduled sessions
// is still below the per-block target.
func NeedsPeer(activity models.Activity, enrollable []models.Student, scheduled []models.Session) []models.Student {
	var out []models.Student
	for _, s := range enrollable {
		if PeerCount(s, scheduled) < activity.Criteria.TimesPerBlock {
			out = append(out, s)
		}
	}
	return out
}

// BedsideCount counts sessions where the student plays the bedside role.
func BedsideCount(s models.Student, sessions []models.Session) int {
	count := 0
	for _, session := range sessions {
		if session.Enrollment.Kind == models.EnrollmentPeer && session.Enrollment.Peer.Bedside == s {
			count++
		}
	}
	return count
}

// PeerCount counts sessions where the student plays the peer role.
func PeerCount(s models.Student, sessions []models.Session) int {
	count := 0
	for _, session := range sessions {
		if session.Enrollment.Kind == models.EnrollmentPeer && session.Enrollment.Peer.Peer == s {
			count++
		}
	}
	return count
}

func enrolledInAny(s models.Student, sessions []models.Session) bool {
	for _, session := range sessions {
		if session.Enrollment.Contains(s) {
			return true
		}
	}
	return false
}
