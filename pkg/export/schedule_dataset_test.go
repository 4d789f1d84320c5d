package export

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-blockplan-api/internal/models"
)

func exportHouse() models.House {
	return models.House{Groups: []models.Group{
		{Mentor: "mentor-a", Students: []models.Student{
			{FirstName: "Anna", LastName: "Prins", Gender: models.GenderFemale, Age: 21, Major: "Medicine"},
			{FirstName: "Bram", LastName: "Visser", Gender: models.GenderMale, Age: 23, Major: "Biology"},
		}},
	}}
}

func exportSchedule() models.BlockSchedule {
	house := exportHouse()
	anna, bram := house.Groups[0].Students[0], house.Groups[0].Students[1]

	slot := models.Timeslot{
		Date:  time.Date(2015, time.October, 27, 0, 0, 0, 0, time.UTC),
		Start: models.Clock(13, 0),
		End:   models.Clock(15, 0),
	}
	peerSession := models.NewSession(slot, house.Groups[0].Students).
		WithEnrollment(models.PeerEnrollment(anna, bram))

	activity := models.Activity{
		Name:      "Bedside Teaching",
		Frequency: models.Once(slot.Date, slot.Start, slot.End),
		Criteria:  models.SelectTwoPeers(1),
	}

	return models.BlockSchedule{
		Block: models.Block{
			Course:     "Clinical Skills",
			Name:       "Block 1",
			Start:      slot.Date,
			End:        slot.Date,
			House:      house,
			Activities: []models.Activity{activity},
		},
		Schedule: models.ActivitySchedule{{Activity: activity, Sessions: []models.Session{peerSession}}},
	}
}

func TestScheduleDatasetPeerPrefixes(t *testing.T) {
	dataset := ScheduleDataset(exportSchedule())
	require.Equal(t, []string{"Student", "Mentor", "Bedside Teaching"}, dataset.Headers)
	require.Len(t, dataset.Rows, 2)

	byStudent := map[string]map[string]string{}
	for _, row := range dataset.Rows {
		byStudent[row["Student"]] = row
	}
	assert.Equal(t, "bs 2015-10-27", byStudent["Anna Prins"]["Bedside Teaching"])
	assert.Equal(t, "pr 2015-10-27", byStudent["Bram Visser"]["Bedside Teaching"])
	assert.Equal(t, "mentor-a", byStudent["Anna Prins"]["Mentor"])
}

func TestScheduleDatasetCSVRender(t *testing.T) {
	content, err := NewCSVExporter().Render(ScheduleDataset(exportSchedule()))
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(content)), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "Student,Mentor,Bedside Teaching", lines[0])
}

func TestCSVRenderRequiresHeaders(t *testing.T) {
	_, err := NewCSVExporter().Render(Dataset{})
	assert.Error(t, err)
}

func TestGroupingDataset(t *testing.T) {
	dataset := GroupingDataset(exportHouse())
	require.Len(t, dataset.Rows, 2)
	assert.Equal(t, "MALE", dataset.Rows[1]["Gender"])
	assert.Equal(t, "23", dataset.Rows[1]["Age"])
}

func TestPDFRender(t *testing.T) {
	content, err := NewPDFExporter().Render(ScheduleDataset(exportSchedule()), "Block 1")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(content), "%PDF"))
}
