package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestTimeslotOverlap(t *testing.T) {
	base := Timeslot{Date: day(2015, time.October, 27), Start: Clock(12, 0), End: Clock(15, 0)}

	assert.True(t, base.Overlaps(Timeslot{Date: base.Date, Start: Clock(13, 0), End: Clock(14, 0)}))
	assert.True(t, base.Overlaps(Timeslot{Date: base.Date, Start: Clock(14, 59), End: Clock(18, 0)}))
	// sharing only an endpoint is not overlap
	assert.False(t, base.Overlaps(Timeslot{Date: base.Date, Start: Clock(15, 0), End: Clock(18, 0)}))
	assert.False(t, base.Overlaps(Timeslot{Date: base.Date, Start: Clock(10, 0), End: Clock(12, 0)}))
	// different date never overlaps
	assert.False(t, base.Overlaps(Timeslot{Date: day(2015, time.October, 28), Start: Clock(13, 0), End: Clock(14, 0)}))
}

func TestWeeklyMaterializeInclusiveBounds(t *testing.T) {
	freq := Weekly(TimeWindow{Start: Clock(13, 0), End: Clock(15, 0)})
	slots := freq.Materialize(day(2015, time.September, 29), day(2015, time.December, 1))
	require.Len(t, slots, 10)
	assert.Equal(t, day(2015, time.September, 29), slots[0].Date)
	assert.Equal(t, day(2015, time.December, 1), slots[9].Date)
}

func TestWeeklyMaterializeMultipleWindows(t *testing.T) {
	freq := Weekly(
		TimeWindow{Start: Clock(9, 0), End: Clock(11, 0)},
		TimeWindow{Start: Clock(13, 0), End: Clock(15, 0)},
	)
	slots := freq.Materialize(day(2015, time.September, 29), day(2015, time.October, 6))
	assert.Len(t, slots, 4)
}

func TestSessionIDDeterministic(t *testing.T) {
	students := []Student{
		{FirstName: "Anna", LastName: "Prins", Gender: GenderFemale, Age: 21, Major: "Medicine"},
		{FirstName: "Bram", LastName: "Visser", Gender: GenderMale, Age: 23, Major: "Biology"},
	}
	slot := Timeslot{Date: day(2015, time.October, 27), Start: Clock(13, 0), End: Clock(15, 0)}

	a := NewSession(slot, students)
	b := NewSession(slot, []Student{students[1], students[0]})
	assert.True(t, a.Equal(b), "enrollable order must not change the id")

	c := NewSession(slot, students[:1])
	assert.False(t, a.Equal(c))

	// enrollment does not participate in identity
	d := a.WithEnrollment(StudentEnrollment(students[0]))
	assert.True(t, a.Equal(d))
}

func TestEnrollmentFlattening(t *testing.T) {
	anna := Student{FirstName: "Anna", LastName: "Prins"}
	bram := Student{FirstName: "Bram", LastName: "Visser"}

	assert.Empty(t, EmptyEnrollment().EnrolledStudents())
	assert.True(t, EmptyEnrollment().IsEmpty())

	peer := PeerEnrollment(anna, bram)
	assert.ElementsMatch(t, []Student{anna, bram}, peer.EnrolledStudents())
	assert.True(t, peer.Contains(anna))
	assert.Equal(t, 2, peer.Size())

	groups := GroupsEnrollment([]Group{{Mentor: "m", Students: []Student{anna, bram}}})
	assert.Equal(t, 2, groups.Size())
}

func TestActivityEqualityByName(t *testing.T) {
	a := Activity{Name: "Tutorial", Priority: PriorityHigh}
	b := Activity{Name: "Tutorial", Priority: PriorityLowest}
	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(Activity{Name: "Lecture"}))
}

func TestCriteriaRequiredCredits(t *testing.T) {
	assert.Equal(t, 4, SelectTwoPeers(2).RequiredCredits(10))
	assert.Equal(t, 10, SelectAllStudents(AttendEverySession).RequiredCredits(10))
	assert.Equal(t, 1, SelectMaxStudents(4, AttendOnceThisYear).RequiredCredits(10))
	assert.Equal(t, 0, SelectMaxStudents(4, NoRequirement).RequiredCredits(10))
	assert.Equal(t, 0, OverflowFrom("x").RequiredCredits(10))
}

func TestCriteriaCapacity(t *testing.T) {
	assert.Equal(t, 2, SelectTwoPeers(1).Capacity(30))
	assert.Equal(t, 4, SelectMaxStudents(4, AttendEverySession).Capacity(30))
	assert.Equal(t, 30, SelectAllStudents(AttendEverySession).Capacity(30))
}

func TestAttendanceRecord(t *testing.T) {
	anna := Student{FirstName: "Anna", LastName: "Prins"}
	record := AttendanceRecord{anna: {{Activity: "Consultation", SessionID: "s1"}}}
	assert.True(t, record.HasAttended(anna, "Consultation"))
	assert.False(t, record.HasAttended(anna, "Tutorial"))
	assert.False(t, record.HasAttended(Student{FirstName: "Bram"}, "Consultation"))
}
