package planner

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-blockplan-api/internal/models"
	appErrors "github.com/noah-isme/sma-blockplan-api/pkg/errors"
	"github.com/noah-isme/sma-blockplan-api/pkg/random"
)

func newTestEnroller(t *testing.T, kind EnrollerKind) Enroller {
	t.Helper()
	enroller, err := NewEnroller(kind, random.New(42))
	require.NoError(t, err)
	return enroller
}

func TestEnrollerRejectsMandatoryBand(t *testing.T) {
	lecture := models.Activity{
		Name:      "Opening Lecture",
		Frequency: models.Once(date(2015, time.October, 27), models.Clock(12, 0), models.Clock(18, 0)),
		Criteria:  models.SelectAllStudents(models.AttendEverySession),
	}
	bands, err := GenerateSessions(testBlock(lecture))
	require.NoError(t, err)

	for _, kind := range []EnrollerKind{EnrollerRandom, EnrollerOrderedSessions, EnrollerOrderedActivities} {
		_, err := newTestEnroller(t, kind).Enroll(testHouse(), nil, bands.Mandatory)
		require.Error(t, err)
		assert.Equal(t, appErrors.ErrActivityNotSchedulable.Code, appErrors.FromError(err).Code)
	}
}

func TestFillRespectsMaxStudentsCap(t *testing.T) {
	consult := models.Activity{
		Name:      "Consultation",
		Frequency: models.Once(date(2015, time.October, 27), models.Clock(13, 0), models.Clock(15, 0)),
		Criteria:  models.SelectMaxStudents(2, models.AttendEverySession),
	}
	bands, err := GenerateSessions(testBlock(consult))
	require.NoError(t, err)

	filled, err := newTestEnroller(t, EnrollerRandom).Enroll(testHouse(), nil, bands.Unordered)
	require.NoError(t, err)
	require.Len(t, filled, 1)
	require.Len(t, filled[0].Sessions, 1)
	assert.Equal(t, 2, filled[0].Sessions[0].Enrollment.Size())
}

func TestFillPreservesPartialEnrollment(t *testing.T) {
	consult := models.Activity{
		Name:      "Consultation",
		Frequency: models.Once(date(2015, time.October, 27), models.Clock(13, 0), models.Clock(15, 0)),
		Criteria:  models.SelectMaxStudents(3, models.AttendEverySession),
	}
	bands, err := GenerateSessions(testBlock(consult))
	require.NoError(t, err)

	already := testHouse().Groups[0].Students[0]
	bands.Unordered[0].Sessions[0] = bands.Unordered[0].Sessions[0].
		WithEnrollment(models.StudentsEnrollment([]models.Student{already}))

	filled, err := newTestEnroller(t, EnrollerOrderedSessions).Enroll(testHouse(), nil, bands.Unordered)
	require.NoError(t, err)
	enrollment := filled[0].Sessions[0].Enrollment
	assert.True(t, enrollment.Contains(already))
	assert.Equal(t, 3, enrollment.Size())
}

func TestFillPeerSessionPicksDistinctPairFromGroup(t *testing.T) {
	peers := models.Activity{
		Name:      "Bedside Teaching",
		Frequency: models.Once(date(2015, time.October, 27), models.Clock(13, 0), models.Clock(15, 0)),
		Criteria:  models.SelectTwoPeers(1),
	}
	bands, err := GenerateSessions(testBlock(peers))
	require.NoError(t, err)
	require.Len(t, bands.Unordered[0].Sessions, 2)

	house := testHouse()
	filled, err := newTestEnroller(t, EnrollerRandom).Enroll(house, nil, bands.Unordered)
	require.NoError(t, err)

	for _, session := range filled[0].Sessions {
		require.Equal(t, models.EnrollmentPeer, session.Enrollment.Kind)
		pair := session.Enrollment.Peer
		assert.NotEqual(t, pair.Bedside, pair.Peer)
		assert.True(t, session.CanEnroll(pair.Bedside))
		assert.True(t, session.CanEnroll(pair.Peer))

		group, ok := house.GroupOf(pair.Bedside)
		require.True(t, ok)
		assert.True(t, group.Contains(pair.Peer))
	}
}

func TestFillPeerSessionStarvationLeavesEmpty(t *testing.T) {
	// a single-student group can never form a pair
	house := models.House{Groups: []models.Group{
		{Mentor: "mentor-a", Students: []models.Student{
			testStudent("Anna", "Prins", models.GenderFemale, 21, "Medicine"),
		}},
	}}
	peers := models.Activity{
		Name:      "Bedside Teaching",
		Frequency: models.Once(date(2015, time.October, 27), models.Clock(13, 0), models.Clock(15, 0)),
		Criteria:  models.SelectTwoPeers(1),
	}
	block := testBlock(peers)
	block.House = house
	bands, err := GenerateSessions(block)
	require.NoError(t, err)

	filled, err := newTestEnroller(t, EnrollerRandom).Enroll(house, nil, bands.Unordered)
	require.NoError(t, err)
	assert.True(t, filled[0].Sessions[0].Enrollment.IsEmpty())
}

func TestFillAvoidsOverlapConflicts(t *testing.T) {
	slotA := models.Once(date(2015, time.October, 27), models.Clock(13, 0), models.Clock(15, 0))
	slotB := models.Once(date(2015, time.October, 27), models.Clock(14, 0), models.Clock(16, 0))
	first := models.Activity{
		Name:      "Consultation",
		Frequency: slotA,
		Priority:  models.PriorityHighest,
		Criteria:  models.SelectMaxStudents(6, models.AttendEverySession),
	}
	second := models.Activity{
		Name:      "Skills Lab",
		Frequency: slotB,
		Priority:  models.PriorityLowest,
		Criteria:  models.SelectMaxStudents(6, models.AttendEverySession),
	}
	bands, err := GenerateSessions(testBlock(first, second))
	require.NoError(t, err)

	filled, err := newTestEnroller(t, EnrollerOrderedSessions).Enroll(testHouse(), nil, bands.Unordered)
	require.NoError(t, err)

	sessions := make(map[string]models.Session)
	for _, as := range filled {
		for _, s := range as.Sessions {
			sessions[as.Activity.Name] = s
		}
	}
	for _, s := range sessions["Consultation"].Enrollment.EnrolledStudents() {
		assert.False(t, sessions["Skills Lab"].Enrollment.Contains(s),
			"student %s enrolled in two overlapping sessions", s.FullName())
	}
}

func TestAttendOnceThisYearSkipsPriorAttendees(t *testing.T) {
	consult := models.Activity{
		Name:      "Consultation",
		Frequency: models.Once(date(2015, time.October, 27), models.Clock(13, 0), models.Clock(15, 0)),
		Criteria:  models.SelectMaxStudents(6, models.AttendOnceThisYear),
	}
	bands, err := GenerateSessions(testBlock(consult))
	require.NoError(t, err)

	house := testHouse()
	veteran := house.Groups[0].Students[0]
	attendance := models.AttendanceRecord{
		veteran: {{Activity: "Consultation", SessionID: "prior"}},
	}

	filled, err := newTestEnroller(t, EnrollerRandom).Enroll(house, attendance, bands.Unordered)
	require.NoError(t, err)
	enrollment := filled[0].Sessions[0].Enrollment
	assert.False(t, enrollment.Contains(veteran))
	assert.Equal(t, 5, enrollment.Size())
}

func TestEnrollMandatoryAssignsWholeHouse(t *testing.T) {
	lecture := models.Activity{
		Name:      "Opening Lecture",
		Frequency: models.Once(date(2015, time.October, 27), models.Clock(12, 0), models.Clock(18, 0)),
		Criteria:  models.SelectAllStudents(models.AttendEverySession),
	}
	bands, err := GenerateSessions(testBlock(lecture))
	require.NoError(t, err)

	house := testHouse()
	mandatory := EnrollMandatory(house, bands.Mandatory)
	require.Len(t, mandatory, 1)
	session := mandatory[0].Sessions[0]
	assert.Equal(t, models.EnrollmentGroups, session.Enrollment.Kind)
	assert.Equal(t, len(house.Students()), session.Enrollment.Size())
}

func TestEnrollOverflowIsComplementOfMaster(t *testing.T) {
	master := models.Activity{
		Name:      "Ward Round",
		Frequency: models.Once(date(2015, time.October, 27), models.Clock(13, 0), models.Clock(15, 0)),
		Criteria:  models.SelectMaxStudents(2, models.AttendEverySession),
	}
	overflow := models.Activity{
		Name:      "Self Study",
		Frequency: master.Frequency,
		Criteria:  models.OverflowFrom("Ward Round"),
	}
	block := testBlock(master, overflow)
	schedule, err := CreateSchedule(block, nil, newTestEnroller(t, EnrollerRandom))
	require.NoError(t, err)

	masterSessions, ok := schedule.Schedule.ForActivity("Ward Round")
	require.True(t, ok)
	overflowSessions, ok := schedule.Schedule.ForActivity("Self Study")
	require.True(t, ok)
	require.Len(t, overflowSessions, 1)

	masterEnrolled := masterSessions[0].Enrollment.EnrolledStudents()
	for _, s := range overflowSessions[0].Enrollment.EnrolledStudents() {
		for _, m := range masterEnrolled {
			assert.NotEqual(t, m, s)
		}
	}
	assert.Equal(t, len(testHouse().Students()),
		masterSessions[0].Enrollment.Size()+overflowSessions[0].Enrollment.Size())
}

func TestCreateScheduleCoversEveryBand(t *testing.T) {
	master := models.Activity{
		Name:      "Ward Round",
		Frequency: models.Once(date(2015, time.October, 28), models.Clock(9, 0), models.Clock(11, 0)),
		Criteria:  models.SelectMaxStudents(2, models.AttendEverySession),
	}
	block := testBlock(
		models.Activity{
			Name:      "Opening Lecture",
			Frequency: models.Once(date(2015, time.October, 27), models.Clock(12, 0), models.Clock(18, 0)),
			Criteria:  models.SelectAllStudents(models.AttendEverySession),
		},
		master,
		models.Activity{
			Name:      "Self Study",
			Frequency: master.Frequency,
			Criteria:  models.OverflowFrom("Ward Round"),
		},
	)
	schedule, err := CreateSchedule(block, nil, newTestEnroller(t, EnrollerRandom))
	require.NoError(t, err)
	assert.Len(t, schedule.Schedule, 3)

	// schedule follows the block's activity order
	assert.Equal(t, "Opening Lecture", schedule.Schedule[0].Activity.Name)
	assert.Equal(t, "Ward Round", schedule.Schedule[1].Activity.Name)
	assert.Equal(t, "Self Study", schedule.Schedule[2].Activity.Name)
}

func TestFillScheduleTopsUpEmptiedSession(t *testing.T) {
	consult := models.Activity{
		Name:      "Consultation",
		Frequency: models.Once(date(2015, time.October, 27), models.Clock(13, 0), models.Clock(15, 0)),
		Criteria:  models.SelectMaxStudents(2, models.AttendEverySession),
	}
	block := testBlock(consult)
	schedule, err := CreateSchedule(block, nil, newTestEnroller(t, EnrollerRandom))
	require.NoError(t, err)

	schedule.Schedule[0].Sessions[0] = schedule.Schedule[0].Sessions[0].
		WithEnrollment(models.EmptyEnrollment())

	repaired, err := FillSchedule(nil, newTestEnroller(t, EnrollerOrderedActivities), schedule)
	require.NoError(t, err)
	assert.Equal(t, 2, repaired.Schedule[0].Sessions[0].Enrollment.Size())
}
