package planner

import (
	"fmt"
	"sort"

	"github.com/noah-isme/sma-blockplan-api/internal/models"
	appErrors "github.com/noah-isme/sma-blockplan-api/pkg/errors"
	"github.com/noah-isme/sma-blockplan-api/pkg/random"
)

// Enroller fills the empty slots of unordered sessions. Implementations are
// correct irrespective of starting state: partially populated sessions are
// preserved and only empty slots are filled.
type Enroller interface {
	Name() string
	Enroll(house models.House, attendance models.AttendanceRecord, unordered []models.ActivitySessions) ([]models.ActivitySessions, error)
}

// EnrollerKind selects one of the constructive enrollers.
type EnrollerKind string

const (
	EnrollerRandom            EnrollerKind = "random"
	EnrollerOrderedSessions   EnrollerKind = "ordered-sessions"
	EnrollerOrderedActivities EnrollerKind = "ordered-activities"
)

// NewEnroller builds the enroller for the given kind.
func NewEnroller(kind EnrollerKind, src *random.Source) (Enroller, error) {
	switch kind {
	case EnrollerRandom, "":
		return &RandomEnroller{src: src}, nil
	case EnrollerOrderedSessions:
		return &OrderedSessionEnroller{src: src}, nil
	case EnrollerOrderedActivities:
		return &OrderedEnroller{src: src}, nil
	}
	return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown enroller kind %q", kind))
}

type activitySession struct {
	activity models.Activity
	session  models.Session
	tiebreak int64
}

func checkSchedulable(unordered []models.ActivitySessions) error {
	for _, as := range unordered {
		if as.Activity.IsMandatory() || as.Activity.IsOverflow() {
			return appErrors.Clone(appErrors.ErrActivityNotSchedulable,
				fmt.Sprintf("activity %q cannot be scheduled by a constructive enroller", as.Activity.Name))
		}
	}
	return nil
}

// fillSession populates a single session. allScheduled is every session of the
// block filled so far, across all activities; thisActivity is the subset for
// the session's own activity.
func fillSession(session models.Session, activity models.Activity, allScheduled, thisActivity []models.Session, attendance models.AttendanceRecord, src *random.Source) models.Session {
	var overlapping []models.Session
	for _, other := range allScheduled {
		if other.ID != session.ID && other.Slot.Overlaps(session.Slot) {
			overlapping = append(overlapping, other)
		}
	}
	canEnroll := func(s models.Student) bool {
		for _, other := range overlapping {
			if other.Enrollment.Contains(s) {
				return false
			}
		}
		return true
	}

	switch activity.Criteria.Kind {
	case models.CriteriaSelectTwoPeers:
		if !session.Enrollment.IsEmpty() {
			return session
		}
		needBedside := filterStudents(NeedsBedside(activity, session.Enrollable, thisActivity), canEnroll)
		needPeer := filterStudents(NeedsPeer(activity, session.Enrollable, thisActivity), canEnroll)
		random.Shuffle(src, needBedside)
		random.Shuffle(src, needPeer)
		if len(needBedside) == 0 || len(needPeer) == 0 {
			return session
		}
		bedside := needBedside[0]
		for _, peer := range needPeer {
			if peer != bedside {
				return session.WithEnrollment(models.PeerEnrollment(bedside, peer))
			}
		}
		// never partially fill a peer session
		return session

	case models.CriteriaSelectMaxStudents:
		enrolled := session.Enrollment.EnrolledStudents()
		free := activity.Criteria.MaxStudents - len(enrolled)
		if free <= 0 {
			return session
		}
		needing := StudentsNeeding(activity, session.Enrollable, attendance, thisActivity)
		var candidates []models.Student
		for _, s := range needing {
			if session.Enrollment.Contains(s) || !canEnroll(s) {
				continue
			}
			candidates = append(candidates, s)
		}
		random.Shuffle(src, candidates)
		if len(candidates) > free {
			candidates = candidates[:free]
		}
		if len(candidates) == 0 {
			return session
		}
		return session.WithEnrollment(models.StudentsEnrollment(append(enrolled, candidates...)))
	}

	return session
}

func filterStudents(students []models.Student, keep func(models.Student) bool) []models.Student {
	var out []models.Student
	for _, s := range students {
		if keep(s) {
			out = append(out, s)
		}
	}
	return out
}

// foldFill fills the flattened pairs in order. The accumulated filled
// sessions are the "already scheduled" context for every subsequent fill.
func foldFill(pairs []activitySession, attendance models.AttendanceRecord, src *random.Source) []activitySession {
	filled := make([]activitySession, 0, len(pairs))
	for _, pair := range pairs {
		var all []models.Session
		var thisActivity []models.Session
		for _, done := range filled {
			all = append(all, done.session)
			if done.activity.Equal(pair.activity) {
				thisActivity = append(thisActivity, done.session)
			}
		}
		session := fillSession(pair.session, pair.activity, all, thisActivity, attendance, src)
		filled = append(filled, activitySession{activity: pair.activity, session: session})
	}
	return filled
}

// regroup reassembles flattened pairs per activity, preserving the activity
// order of the input band, with each activity's sessions sorted by
// (date, start) descending.
func regroup(unordered []models.ActivitySessions, filled []activitySession) []models.ActivitySessions {
	out := make([]models.ActivitySessions, 0, len(unordered))
	for _, as := range unordered {
		var sessions []models.Session
		for _, pair := range filled {
			if pair.activity.Equal(as.Activity) {
				sessions = append(sessions, pair.session)
			}
		}
		sort.SliceStable(sessions, func(i, j int) bool {
			a, b := sessions[i].Slot, sessions[j].Slot
			if !a.Date.Equal(b.Date) {
				return a.Date.After(b.Date)
			}
			return a.Start > b.Start
		})
		out = append(out, models.ActivitySessions{Activity: as.Activity, Sessions: sessions})
	}
	return out
}

func flatten(unordered []models.ActivitySessions) []activitySession {
	var pairs []activitySession
	for _, as := range unordered {
		for _, s := range as.Sessions {
			pairs = append(pairs, activitySession{activity: as.Activity, session: s})
		}
	}
	return pairs
}

// RandomEnroller interleaves sessions across activities ordered by
// (priority, random tiebreaker).
type RandomEnroller struct {
	src *random.Source
}

// Name identifies the enroller in logs and metrics.
func (e *RandomEnroller) Name() string { return string(EnrollerRandom) }

// Enroll fills the unordered band.
func (e *RandomEnroller) Enroll(house models.House, attendance models.AttendanceRecord, unordered []models.ActivitySessions) ([]models.ActivitySessions, error) {
	if err := checkSchedulable(unordered); err != nil {
		return nil, err
	}
	pairs := flatten(unordered)
	for i := range pairs {
		pairs[i].tiebreak = e.src.Int63()
	}
	sort.SliceStable(pairs, func(i, j int) bool {
		if pairs[i].activity.Priority != pairs[j].activity.Priority {
			return pairs[i].activity.Priority < pairs[j].activity.Priority
		}
		return pairs[i].tiebreak < pairs[j].tiebreak
	})
	return regroup(unordered, foldFill(pairs, attendance, e.src)), nil
}

// OrderedSessionEnroller interleaves sessions ordered by
// (priority, date, start) for a deterministic fill order.
type OrderedSessionEnroller struct {
	src *random.Source
}

// Name identifies the enroller in logs and metrics.
func (e *OrderedSessionEnroller) Name() string { return string(EnrollerOrderedSessions) }

// Enroll fills the unordered band.
func (e *OrderedSessionEnroller) Enroll(house models.House, attendance models.AttendanceRecord, unordered []models.ActivitySessions) ([]models.ActivitySessions, error) {
	if err := checkSchedulable(unordered); err != nil {
		return nil, err
	}
	pairs := flatten(unordered)
	sort.SliceStable(pairs, func(i, j int) bool {
		if pairs[i].activity.Priority != pairs[j].activity.Priority {
			return pairs[i].activity.Priority < pairs[j].activity.Priority
		}
		a, b := pairs[i].session.Slot, pairs[j].session.Slot
		if !a.Date.Equal(b.Date) {
			return a.Date.Before(b.Date)
		}
		return a.Start < b.Start
	})
	return regroup(unordered, foldFill(pairs, attendance, e.src)), nil
}

// OrderedEnroller fills all sessions of one activity before moving to the
// next; activities are ordered by (priority, random).
type OrderedEnroller struct {
	src *random.Source
}

// Name identifies the enroller in logs and metrics.
func (e *OrderedEnroller) Name() string { return string(EnrollerOrderedActivities) }

// Enroll fills the unordered band.
func (e *OrderedEnroller) Enroll(house models.House, attendance models.AttendanceRecord, unordered []models.ActivitySessions) ([]models.ActivitySessions, error) {
	if err := checkSchedulable(unordered); err != nil {
		return nil, err
	}
	order := make([]models.ActivitySessions, len(unordered))
	copy(order, unordered)
	keys := make(map[string]int64, len(order))
	for _, as := range order {
		keys[as.Activity.Name] = e.src.Int63()
	}
	sort.SliceStable(order, func(i, j int) bool {
		if order[i].Activity.Priority != order[j].Activity.Priority {
			return order[i].Activity.Priority < order[j].Activity.Priority
		}
		return keys[order[i].Activity.Name] < keys[order[j].Activity.Name]
	})

	var pairs []activitySession
	for _, as := range order {
		for _, s := range as.Sessions {
			pairs = append(pairs, activitySession{activity: as.Activity, session: s})
		}
	}
	filled := foldFill(pairs, attendance, e.src)

	// within an activity, sessions keep their existing order
	out := make([]models.ActivitySessions, 0, len(order))
	for _, as := range order {
		var sessions []models.Session
		for _, pair := range filled {
			if pair.activity.Equal(as.Activity) {
				sessions = append(sessions, pair.session)
			}
		}
		out = append(out, models.ActivitySessions{Activity: as.Activity, Sessions: sessions})
	}
	return out, nil
}

// EnrollMandatory assigns the whole house to every empty mandatory session.
func EnrollMandatory(house models.House, mandatory []models.ActivitySessions) []models.ActivitySessions {
	out := make([]models.ActivitySessions, 0, len(mandatory))
	for _, as := range mandatory {
		sessions := make([]models.Session, len(as.Sessions))
		for i, s := range as.Sessions {
			if s.Enrollment.IsEmpty() {
				s = s.WithEnrollment(models.GroupsEnrollment(house.Groups))
			}
			sessions[i] = s
		}
		out = append(out, models.ActivitySessions{Activity: as.Activity, Sessions: sessions})
	}
	return out
}

// EnrollOverflow runs after unordered enrollment. Each overflow session gets
// the enrollable students who are neither enrolled in the matching master
// session nor in any other overlapping session of the block.
func EnrollOverflow(overflow []models.ActivitySessions, schedule models.ActivitySchedule) []models.ActivitySessions {
	scheduled := schedule.AllSessions()

	out := make([]models.ActivitySessions, 0, len(overflow))
	for _, as := range overflow {
		masterSessions, _ := schedule.ForActivity(as.Activity.Criteria.Master)
		sessions := make([]models.Session, len(as.Sessions))
		for i, s := range as.Sessions {
			var master *models.Session
			for j := range masterSessions {
				if masterSessions[j].Slot.SameSlot(s.Slot) {
					master = &masterSessions[j]
					break
				}
			}
			var complement []models.Student
			for _, student := range s.Enrollable {
				if master != nil && master.Enrollment.Contains(student) {
					continue
				}
				if enrolledInOverlap(student, s, scheduled, master) {
					continue
				}
				complement = append(complement, student)
			}
			if len(complement) > 0 {
				s = s.WithEnrollment(models.StudentsEnrollment(complement))
			}
			sessions[i] = s
		}
		out = append(out, models.ActivitySessions{Activity: as.Activity, Sessions: sessions})
	}
	return out
}

func enrolledInOverlap(student models.Student, session models.Session, scheduled []models.Session, master *models.Session) bool {
	for _, other := range scheduled {
		if master != nil && other.ID == master.ID {
			continue
		}
		if other.Slot.Overlaps(session.Slot) && other.Enrollment.Contains(student) {
			return true
		}
	}
	return false
}
