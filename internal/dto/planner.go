package dto

import (
	"fmt"
	"strings"
	"time"

	"github.com/noah-isme/sma-blockplan-api/internal/models"
	appErrors "github.com/noah-isme/sma-blockplan-api/pkg/errors"
)

const (
	dateLayout = "2006-01-02"
	timeLayout = "15:04"
)

// StudentPayload carries one student record.
type StudentPayload struct {
	FirstName string `json:"firstName" validate:"required"`
	LastName  string `json:"lastName" validate:"required"`
	Gender    string `json:"gender" validate:"omitempty,oneof=MALE FEMALE NOT_SPECIFIED"`
	Age       int    `json:"age" validate:"required,min=16,max=99"`
	Major     string `json:"major" validate:"required"`
}

// ToModel converts the payload into a domain student.
func (p StudentPayload) ToModel() models.Student {
	gender := models.Gender(p.Gender)
	if gender == "" {
		gender = models.GenderNotSpecified
	}
	return models.Student{
		FirstName: p.FirstName,
		LastName:  p.LastName,
		Gender:    gender,
		Age:       p.Age,
		Major:     p.Major,
	}
}

// GroupPayload is a mentor plus their students.
type GroupPayload struct {
	Mentor   string           `json:"mentor" validate:"required"`
	Students []StudentPayload `json:"students" validate:"required,min=1,dive"`
}

// TimeslotPayload is a dated time window.
type TimeslotPayload struct {
	Date  string `json:"date" validate:"required"`
	Start string `json:"start" validate:"required"`
	End   string `json:"end" validate:"required"`
}

// TimeWindowPayload is an undated time window for weekly frequencies.
type TimeWindowPayload struct {
	Start string `json:"start" validate:"required"`
	End   string `json:"end" validate:"required"`
}

// FrequencyPayload describes when an activity runs.
type FrequencyPayload struct {
	Kind    string              `json:"kind" validate:"required,oneof=ONCE SPECIFIC_TIMES WEEKLY"`
	Slots   []TimeslotPayload   `json:"slots" validate:"omitempty,dive"`
	Windows []TimeWindowPayload `json:"windows" validate:"omitempty,dive"`
}

// CriteriaPayload describes who attends an activity.
type CriteriaPayload struct {
	Kind          string `json:"kind" validate:"required,oneof=SELECT_TWO_PEERS SELECT_MAX_STUDENTS SELECT_ALL_STUDENTS OVERFLOW"`
	TimesPerBlock int    `json:"timesPerBlock" validate:"omitempty,min=1"`
	MaxStudents   int    `json:"maxStudents" validate:"omitempty,min=1"`
	Requirement   string `json:"requirement" validate:"omitempty,oneof=ATTEND_EVERY_SESSION ATTEND_ONCE_THIS_YEAR NO_REQUIREMENT"`
	Master        string `json:"master"`
}

// ActivityPayload is one activity definition.
type ActivityPayload struct {
	Name      string           `json:"name" validate:"required"`
	Frequency FrequencyPayload `json:"frequency" validate:"required"`
	Priority  string           `json:"priority" validate:"omitempty,oneof=HIGHEST HIGH NEUTRAL LOW LOWEST"`
	Criteria  CriteriaPayload  `json:"criteria" validate:"required"`
}

// BlockPayload is a full block definition.
type BlockPayload struct {
	Course     string            `json:"course" validate:"required"`
	Name       string            `json:"name" validate:"required"`
	Start      string            `json:"start" validate:"required"`
	End        string            `json:"end" validate:"required"`
	Groups     []GroupPayload    `json:"groups" validate:"required,min=1,dive"`
	Activities []ActivityPayload `json:"activities" validate:"required,min=1,dive"`
}

// AttendanceEntryPayload is one prior-block attendance of a student.
type AttendanceEntryPayload struct {
	Student  StudentPayload `json:"student" validate:"required"`
	Activity string         `json:"activity" validate:"required"`
	Session  string         `json:"session"`
}

// GeneticConfigPayload overrides the configured search defaults.
type GeneticConfigPayload struct {
	PopulationSize  int     `json:"populationSize" validate:"omitempty,min=2"`
	MaxEvolutions   int     `json:"maxEvolutions" validate:"omitempty,min=1"`
	AcceptableScore float64 `json:"acceptableScore" validate:"omitempty,min=0,max=100"`
	Seed            int64   `json:"seed"`
}

// CreateGroupingRequest asks for a mentor-led partition of the students.
type CreateGroupingRequest struct {
	Mentors  []string              `json:"mentors" validate:"required,min=1"`
	Students []StudentPayload      `json:"students" validate:"required,min=1,dive"`
	Evolve   bool                  `json:"evolve"`
	Config   *GeneticConfigPayload `json:"config" validate:"omitempty"`
}

// CreateScheduleRequest asks for a filled block schedule.
type CreateScheduleRequest struct {
	Block      BlockPayload             `json:"block" validate:"required"`
	Attendance []AttendanceEntryPayload `json:"attendance" validate:"omitempty,dive"`
	Enroller   string                   `json:"enroller" validate:"omitempty,oneof=random ordered-sessions ordered-activities"`
	Evolve     bool                     `json:"evolve"`
	Seed       int64                    `json:"seed"`
	Config     *GeneticConfigPayload    `json:"config" validate:"omitempty"`
}

// GroupingResponse returns the partition with its diversity scores.
type GroupingResponse struct {
	PlanID string       `json:"planId"`
	House  models.House `json:"house"`
	Scores any          `json:"scores"`
	Stats  any          `json:"stats,omitempty"`
}

// ScheduleResponse returns the filled schedule with its fitness breakdown.
type ScheduleResponse struct {
	PlanID   string               `json:"planId"`
	Schedule models.BlockSchedule `json:"schedule"`
	Scores   any                  `json:"scores"`
	Stats    any                  `json:"stats,omitempty"`
}

// ToModel converts the block payload, resolving dates, clock times,
// priorities and criteria.
func (p BlockPayload) ToModel() (models.Block, error) {
	start, err := parseDate(p.Start)
	if err != nil {
		return models.Block{}, err
	}
	end, err := parseDate(p.End)
	if err != nil {
		return models.Block{}, err
	}

	groups := make([]models.Group, len(p.Groups))
	for i, g := range p.Groups {
		students := make([]models.Student, len(g.Students))
		for j, s := range g.Students {
			students[j] = s.ToModel()
		}
		groups[i] = models.Group{Mentor: g.Mentor, Students: students}
	}

	activities := make([]models.Activity, len(p.Activities))
	for i, a := range p.Activities {
		activity, err := a.ToModel()
		if err != nil {
			return models.Block{}, err
		}
		activities[i] = activity
	}

	return models.Block{
		Course:     p.Course,
		Name:       p.Name,
		Start:      start,
		End:        end,
		House:      models.House{Groups: groups},
		Activities: activities,
	}, nil
}

// ToModel converts the activity payload.
func (p ActivityPayload) ToModel() (models.Activity, error) {
	frequency, err := p.Frequency.ToModel()
	if err != nil {
		return models.Activity{}, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status,
			fmt.Sprintf("activity %q has an invalid frequency", p.Name))
	}
	return models.Activity{
		Name:      p.Name,
		Frequency: frequency,
		Priority:  parsePriority(p.Priority),
		Criteria: models.Criteria{
			Kind:          models.CriteriaKind(p.Criteria.Kind),
			TimesPerBlock: p.Criteria.TimesPerBlock,
			MaxStudents:   p.Criteria.MaxStudents,
			Requirement:   models.HouseRequirement(p.Criteria.Requirement),
			Master:        p.Criteria.Master,
		},
	}, nil
}

// ToModel converts the frequency payload.
func (p FrequencyPayload) ToModel() (models.Frequency, error) {
	slots := make([]models.Timeslot, len(p.Slots))
	for i, s := range p.Slots {
		date, err := parseDate(s.Date)
		if err != nil {
			return models.Frequency{}, err
		}
		start, err := parseClock(s.Start)
		if err != nil {
			return models.Frequency{}, err
		}
		end, err := parseClock(s.End)
		if err != nil {
			return models.Frequency{}, err
		}
		slots[i] = models.Timeslot{Date: date, Start: start, End: end}
	}

	windows := make([]models.TimeWindow, len(p.Windows))
	for i, w := range p.Windows {
		start, err := parseClock(w.Start)
		if err != nil {
			return models.Frequency{}, err
		}
		end, err := parseClock(w.End)
		if err != nil {
			return models.Frequency{}, err
		}
		windows[i] = models.TimeWindow{Start: start, End: end}
	}

	return models.Frequency{
		Kind:    models.FrequencyKind(p.Kind),
		Slots:   slots,
		Windows: windows,
	}, nil
}

// ToAttendanceRecord collates attendance entries into the per-student record.
func ToAttendanceRecord(entries []AttendanceEntryPayload) models.AttendanceRecord {
	if len(entries) == 0 {
		return nil
	}
	record := make(models.AttendanceRecord)
	for _, e := range entries {
		student := e.Student.ToModel()
		record[student] = append(record[student], models.Attendance{Activity: e.Activity, SessionID: e.Session})
	}
	return record
}

func parseDate(raw string) (time.Time, error) {
	date, err := time.Parse(dateLayout, strings.TrimSpace(raw))
	if err != nil {
		return time.Time{}, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("invalid date %q, expected YYYY-MM-DD", raw))
	}
	return date, nil
}

func parseClock(raw string) (models.TimeOfDay, error) {
	parsed, err := time.Parse(timeLayout, strings.TrimSpace(raw))
	if err != nil {
		return 0, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("invalid time %q, expected HH:MM", raw))
	}
	return models.Clock(parsed.Hour(), parsed.Minute()), nil
}

func parsePriority(raw string) models.Priority {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "HIGHEST":
		return models.PriorityHighest
	case "HIGH":
		return models.PriorityHigh
	case "LOW":
		return models.PriorityLow
	case "LOWEST":
		return models.PriorityLowest
	default:
		return models.PriorityNeutral
	}
}
