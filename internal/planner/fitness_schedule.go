package planner

import (
	"github.com/noah-isme/sma-blockplan-api/internal/models"
	"github.com/noah-isme/sma-blockplan-api/pkg/stats"
)

// ScheduleScores breaks the schedule fitness into its dimensions, each on a
// 0-100 scale.
type ScheduleScores struct {
	Student      float64 `json:"student"`
	Fullness     float64 `json:"fullness"`
	Distribution float64 `json:"distribution"`
	Diversity    float64 `json:"diversity"`
	Activities   float64 `json:"activities"`
	Overall      float64 `json:"overall"`
}

// ScoreSchedule evaluates a filled schedule against the attendance record.
func ScoreSchedule(bs models.BlockSchedule, attendance models.AttendanceRecord) ScheduleScores {
	scores := ScheduleScores{
		Student:      studentScore(bs, attendance),
		Fullness:     fullnessScore(bs),
		Distribution: distributionScore(bs),
		Diversity:    diversityScore(bs),
	}
	scores.Activities = (scores.Fullness + scores.Distribution + scores.Diversity) / 3
	scores.Overall = (scores.Student + scores.Activities) / 2
	return scores
}

// ScheduleFitness is the scalar score the genetic search maximizes.
func ScheduleFitness(bs models.BlockSchedule, attendance models.AttendanceRecord) float64 {
	return ScoreSchedule(bs, attendance).Overall
}

// studentScore asks: is every student on track to meet their requirements?
// Per-student completion percentages are averaged across activities, then the
// population is scored mean minus standard deviation to penalize spread.
func studentScore(bs models.BlockSchedule, attendance models.AttendanceRecord) float64 {
	students := bs.Block.House.Students()
	if len(students) == 0 || len(bs.Schedule) == 0 {
		return 100
	}

	var completions []float64
	for _, student := range students {
		var perActivity []float64
		for _, as := range bs.Schedule {
			required := as.Activity.Criteria.RequiredCredits(len(as.Sessions))
			if required == 0 {
				perActivity = append(perActivity, 100)
				continue
			}
			satisfied := satisfiedCredits(student, as, attendance)
			perActivity = append(perActivity, 100*float64(satisfied)/float64(required))
		}
		completions = append(completions, stats.Mean(perActivity))
	}
	return stats.MeanMinusStdDev(completions)
}

func satisfiedCredits(student models.Student, as models.ActivitySessions, attendance models.AttendanceRecord) int {
	switch as.Activity.Criteria.Kind {
	case models.CriteriaSelectTwoPeers:
		n := as.Activity.Criteria.TimesPerBlock
		bedside := BedsideCount(student, as.Sessions)
		peer := PeerCount(student, as.Sessions)
		return min(bedside, n) + min(peer, n)
	case models.CriteriaSelectMaxStudents, models.CriteriaSelectAllStudents:
		switch as.Activity.Criteria.Requirement {
		case models.AttendEverySession:
			count := 0
			for _, s := range as.Sessions {
				if s.Enrollment.Contains(student) {
					count++
				}
			}
			return count
		case models.AttendOnceThisYear:
			if attendance.HasAttended(student, as.Activity.Name) {
				return 1
			}
			for _, s := range as.Sessions {
				if s.Enrollment.Contains(student) {
					return 1
				}
			}
			return 0
		}
	}
	return 0
}

// fullnessScore measures how full non-overflow sessions are. An empty session
// scores 100: an activity correctly skipped this block (everyone already
// attended) must not tank the schedule.
func fullnessScore(bs models.BlockSchedule) float64 {
	houseSize := len(bs.Block.House.Students())
	var percentages []float64
	for _, as := range bs.Schedule {
		if as.Activity.IsOverflow() {
			continue
		}
		capacity := as.Activity.Criteria.Capacity(houseSize)
		for _, s := range as.Sessions {
			enrolled := s.Enrollment.Size()
			if enrolled == 0 || capacity == 0 {
				percentages = append(percentages, 100)
				continue
			}
			percentages = append(percentages, 100*float64(enrolled)/float64(capacity))
		}
	}
	if len(percentages) == 0 {
		return 100
	}
	return stats.MeanMinusStdDev(percentages)
}

// distributionScore measures the share of the house each activity reaches.
func distributionScore(bs models.BlockSchedule) float64 {
	houseSize := len(bs.Block.House.Students())
	if houseSize == 0 || len(bs.Schedule) == 0 {
		return 100
	}
	var ratios []float64
	for _, as := range bs.Schedule {
		distinct := make(map[models.Student]bool)
		for _, s := range as.Sessions {
			for _, student := range s.Enrollment.EnrolledStudents() {
				distinct[student] = true
			}
		}
		ratios = append(ratios, 100*float64(len(distinct))/float64(houseSize))
	}
	return stats.MeanMinusStdDev(ratios)
}

// diversityScore rewards spreading an activity's sessions across different
// students rather than re-enrolling the same ones.
func diversityScore(bs models.BlockSchedule) float64 {
	students := bs.Block.House.Students()
	if len(students) == 0 || len(bs.Schedule) == 0 {
		return 100
	}
	var perActivity []float64
	for _, as := range bs.Schedule {
		counts := make([]float64, len(students))
		for i, student := range students {
			for _, s := range as.Sessions {
				if s.Enrollment.Contains(student) {
					counts[i]++
				}
			}
		}
		lo, hi := counts[0], counts[0]
		for _, c := range counts {
			if c < lo {
				lo = c
			}
			if c > hi {
				hi = c
			}
		}
		var scaled []float64
		for _, c := range counts {
			if hi == lo {
				scaled = append(scaled, 1)
				continue
			}
			scaled = append(scaled, (c-lo)/(hi-lo))
		}
		perActivity = append(perActivity, stats.Mean(scaled))
	}
	return 100 * stats.Mean(perActivity)
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
