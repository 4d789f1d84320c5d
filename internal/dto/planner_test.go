package dto

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-blockplan-api/internal/models"
)

func TestStudentPayloadDefaultsGender(t *testing.T) {
	student := StudentPayload{FirstName: "Anna", LastName: "Prins", Age: 21, Major: "Medicine"}.ToModel()
	assert.Equal(t, models.GenderNotSpecified, student.Gender)
}

func TestBlockPayloadToModel(t *testing.T) {
	payload := BlockPayload{
		Course: "Clinical Skills",
		Name:   "Block 1",
		Start:  "2015-09-29",
		End:    "2015-12-01",
		Groups: []GroupPayload{{
			Mentor: "mentor-a",
			Students: []StudentPayload{
				{FirstName: "Anna", LastName: "Prins", Gender: "FEMALE", Age: 21, Major: "Medicine"},
			},
		}},
		Activities: []ActivityPayload{{
			Name:      "Tutorial",
			Frequency: FrequencyPayload{Kind: "WEEKLY", Windows: []TimeWindowPayload{{Start: "13:00", End: "15:00"}}},
			Priority:  "HIGH",
			Criteria:  CriteriaPayload{Kind: "SELECT_MAX_STUDENTS", MaxStudents: 4, Requirement: "ATTEND_EVERY_SESSION"},
		}},
	}

	block, err := payload.ToModel()
	require.NoError(t, err)
	assert.Equal(t, time.Date(2015, time.September, 29, 0, 0, 0, 0, time.UTC), block.Start)
	assert.Len(t, block.House.Groups, 1)
	require.Len(t, block.Activities, 1)
	assert.Equal(t, models.PriorityHigh, block.Activities[0].Priority)
	assert.Equal(t, models.Clock(13, 0), block.Activities[0].Frequency.Windows[0].Start)
}

func TestBlockPayloadRejectsBadDate(t *testing.T) {
	payload := BlockPayload{Start: "29-09-2015", End: "2015-12-01"}
	_, err := payload.ToModel()
	assert.Error(t, err)
}

func TestFrequencyPayloadRejectsBadClock(t *testing.T) {
	_, err := FrequencyPayload{
		Kind:  "ONCE",
		Slots: []TimeslotPayload{{Date: "2015-10-27", Start: "1pm", End: "15:00"}},
	}.ToModel()
	assert.Error(t, err)
}

func TestToAttendanceRecordGroupsByStudent(t *testing.T) {
	anna := StudentPayload{FirstName: "Anna", LastName: "Prins", Gender: "FEMALE", Age: 21, Major: "Medicine"}
	record := ToAttendanceRecord([]AttendanceEntryPayload{
		{Student: anna, Activity: "Consultation", Session: "s1"},
		{Student: anna, Activity: "Ward Round", Session: "s2"},
	})
	require.Len(t, record, 1)
	assert.True(t, record.HasAttended(anna.ToModel(), "Consultation"))
	assert.True(t, record.HasAttended(anna.ToModel(), "Ward Round"))
	assert.False(t, record.HasAttended(anna.ToModel(), "Tutorial"))
}

func TestParsePriorityFallsBackToNeutral(t *testing.T) {
	assert.Equal(t, models.PriorityNeutral, parsePriority(""))
	assert.Equal(t, models.PriorityNeutral, parsePriority("bogus"))
	assert.Equal(t, models.PriorityLowest, parsePriority("lowest"))
}
