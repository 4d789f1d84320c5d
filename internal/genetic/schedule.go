package genetic

import (
	"fmt"

	"github.com/noah-isme/sma-blockplan-api/internal/models"
	"github.com/noah-isme/sma-blockplan-api/internal/planner"
	appErrors "github.com/noah-isme/sma-blockplan-api/pkg/errors"
	"github.com/noah-isme/sma-blockplan-api/pkg/random"
)

// scheduleMutationRate is the per-evolution chance a child schedule mutates.
const scheduleMutationRate = 0.01

// EvolveSchedule runs the genetic search over block schedules and returns the
// best individual seen.
func EvolveSchedule(cfg Config, block models.Block, attendance models.AttendanceRecord) (models.BlockSchedule, Stats, error) {
	ops := Operators[models.BlockSchedule]{
		Random: func(src *random.Source) (models.BlockSchedule, error) {
			enroller, err := planner.NewEnroller(planner.EnrollerRandom, src)
			if err != nil {
				return models.BlockSchedule{}, err
			}
			return planner.CreateSchedule(block, attendance, enroller)
		},
		Fitness: func(bs models.BlockSchedule) float64 {
			return planner.ScheduleFitness(bs, attendance)
		},
		Crossover: func(src *random.Source, mum, dad models.BlockSchedule) (models.BlockSchedule, models.BlockSchedule, error) {
			first, err := crossoverSchedules(src, mum, dad, attendance)
			if err != nil {
				return models.BlockSchedule{}, models.BlockSchedule{}, err
			}
			second, err := crossoverSchedules(src, dad, mum, attendance)
			if err != nil {
				return models.BlockSchedule{}, models.BlockSchedule{}, err
			}
			return first, second, nil
		},
		Mutate: func(src *random.Source, bs models.BlockSchedule) (models.BlockSchedule, error) {
			return mutateSchedule(src, bs, attendance)
		},
		MutationRate: scheduleMutationRate,
	}
	best, stats, err := NewEngine(cfg, ops).Run()
	if err != nil {
		return models.BlockSchedule{}, Stats{}, err
	}
	return best.Value, stats, nil
}

type flatSession struct {
	activity models.Activity
	session  models.Session
}

// crossoverSchedules borrows a random subset of mum's sessions, merges in the
// non-duplicate sessions of dad with conflicting or over-enrolled students
// removed, and repairs the result back into a legal schedule.
func crossoverSchedules(src *random.Source, mum, dad models.BlockSchedule, attendance models.AttendanceRecord) (models.BlockSchedule, error) {
	mumFlat := flattenSchedule(mum.Schedule)
	if len(mumFlat) == 0 {
		return mum, nil
	}

	k := src.IntBetween(1, len(mumFlat))
	subset := random.Shuffled(src, mumFlat)[:k]

	inSubset := make(map[string]bool, len(subset))
	for _, fs := range subset {
		inSubset[pairKey(fs)] = true
	}

	merged := make([]flatSession, 0, len(mumFlat))
	merged = append(merged, subset...)
	for _, fs := range flattenSchedule(dad.Schedule) {
		if inSubset[pairKey(fs)] {
			continue
		}
		fixed, err := fixUpBorrowed(fs, subset, merged)
		if err != nil {
			return models.BlockSchedule{}, err
		}
		merged = append(merged, fixed)
	}

	child := models.BlockSchedule{Block: mum.Block, Schedule: regroupFlat(mum.Block, merged)}
	enroller, err := planner.NewEnroller(planner.EnrollerRandom, src)
	if err != nil {
		return models.BlockSchedule{}, err
	}
	return planner.FillSchedule(attendance, enroller, child)
}

// fixUpBorrowed strips students from a dad-borrowed session when they now
// conflict with the kept subset, or when keeping them would exceed the
// activity's per-student requirement across the merged sessions.
func fixUpBorrowed(fs flatSession, subset, merged []flatSession) (flatSession, error) {
	drop := func(student models.Student) bool {
		for _, kept := range subset {
			if kept.session.ID != fs.session.ID &&
				kept.session.Slot.Overlaps(fs.session.Slot) &&
				kept.session.Enrollment.Contains(student) {
				return true
			}
		}
		allowed := allowedEnrollments(fs.activity, merged)
		if allowed >= 0 && timesEnrolled(student, fs.activity, merged) >= allowed {
			return true
		}
		return false
	}

	enrollment := fs.session.Enrollment
	switch enrollment.Kind {
	case models.EnrollmentEmpty, "":
		return fs, nil
	case models.EnrollmentStudent:
		if drop(*enrollment.Student) {
			fs.session = fs.session.WithEnrollment(models.EmptyEnrollment())
		}
		return fs, nil
	case models.EnrollmentStudents:
		var kept []models.Student
		for _, s := range enrollment.Students {
			if !drop(s) {
				kept = append(kept, s)
			}
		}
		if len(kept) == 0 {
			fs.session = fs.session.WithEnrollment(models.EmptyEnrollment())
		} else {
			fs.session = fs.session.WithEnrollment(models.StudentsEnrollment(kept))
		}
		return fs, nil
	case models.EnrollmentPeer:
		// peer sessions are never partially filled
		if drop(enrollment.Peer.Bedside) || drop(enrollment.Peer.Peer) {
			fs.session = fs.session.WithEnrollment(models.EmptyEnrollment())
		}
		return fs, nil
	case models.EnrollmentGroups:
		for _, group := range enrollment.Groups {
			for _, s := range group.Students {
				if drop(s) {
					return flatSession{}, appErrors.Clone(appErrors.ErrGroupRepair,
						fmt.Sprintf("cannot remove %s from group enrollment of activity %q", s.FullName(), fs.activity.Name))
				}
			}
		}
		return fs, nil
	}
	return fs, nil
}

// allowedEnrollments is the per-student session budget for an activity in the
// merged set; -1 means unbounded.
func allowedEnrollments(activity models.Activity, merged []flatSession) int {
	switch activity.Criteria.Kind {
	case models.CriteriaSelectTwoPeers:
		return 2 * activity.Criteria.TimesPerBlock
	case models.CriteriaSelectMaxStudents:
		if activity.Criteria.Requirement == models.AttendOnceThisYear {
			return 1
		}
	}
	return -1
}

func timesEnrolled(student models.Student, activity models.Activity, merged []flatSession) int {
	count := 0
	for _, fs := range merged {
		if fs.activity.Equal(activity) && fs.session.Enrollment.Contains(student) {
			count++
		}
	}
	return count
}

// mutateSchedule empties one random mutable session plus every overflow
// session, then repairs.
func mutateSchedule(src *random.Source, bs models.BlockSchedule, attendance models.AttendanceRecord) (models.BlockSchedule, error) {
	var mutable []flatSession
	for _, as := range bs.Schedule {
		if as.Activity.IsMandatory() || as.Activity.IsOverflow() {
			continue
		}
		for _, s := range as.Sessions {
			mutable = append(mutable, flatSession{activity: as.Activity, session: s})
		}
	}
	if len(mutable) == 0 {
		return bs, nil
	}
	target := mutable[src.Intn(len(mutable))]

	schedule := make(models.ActivitySchedule, 0, len(bs.Schedule))
	for _, as := range bs.Schedule {
		sessions := make([]models.Session, len(as.Sessions))
		for i, s := range as.Sessions {
			if as.Activity.IsOverflow() || (as.Activity.Equal(target.activity) && s.ID == target.session.ID) {
				s = s.WithEnrollment(models.EmptyEnrollment())
			}
			sessions[i] = s
		}
		schedule = append(schedule, models.ActivitySessions{Activity: as.Activity, Sessions: sessions})
	}

	enroller, err := planner.NewEnroller(planner.EnrollerRandom, src)
	if err != nil {
		return models.BlockSchedule{}, err
	}
	return planner.FillSchedule(attendance, enroller, models.BlockSchedule{Block: bs.Block, Schedule: schedule})
}

func flattenSchedule(schedule models.ActivitySchedule) []flatSession {
	var out []flatSession
	for _, as := range schedule {
		for _, s := range as.Sessions {
			out = append(out, flatSession{activity: as.Activity, session: s})
		}
	}
	return out
}

func pairKey(fs flatSession) string {
	return fs.activity.Name + "|" + fs.session.ID
}

func regroupFlat(block models.Block, merged []flatSession) models.ActivitySchedule {
	byName := make(map[string][]models.Session)
	for _, fs := range merged {
		byName[fs.activity.Name] = append(byName[fs.activity.Name], fs.session)
	}
	var schedule models.ActivitySchedule
	for _, activity := range block.Activities {
		if sessions, ok := byName[activity.Name]; ok {
			schedule = append(schedule, models.ActivitySessions{Activity: activity, Sessions: sessions})
		}
	}
	return schedule
}
