package export

import (
	"fmt"
	"sort"

	"github.com/noah-isme/sma-blockplan-api/internal/models"
)

const dateLayout = "2006-01-02"

// ScheduleDataset lays a block schedule out as a student grid: one row per
// student with their mentor, then one column per distinct session date of
// every activity. A student's attended sessions of the activity fill its
// columns from the left in chronological order, so a column does not map to
// a fixed date. Cells hold the attended date, a date prefixed with "bs " or
// "pr " for peered sessions, or stay blank.
func ScheduleDataset(bs models.BlockSchedule) Dataset {
	headers := []string{"Student", "Mentor"}
	type column struct {
		activity string
		index    int
	}
	var columns []column
	for _, as := range bs.Schedule {
		occurrences := activityOccurrences(as)
		for i := 0; i < occurrences; i++ {
			name := as.Activity.Name
			if occurrences > 1 {
				name = fmt.Sprintf("%s %d", as.Activity.Name, i+1)
			}
			headers = append(headers, name)
			columns = append(columns, column{activity: as.Activity.Name, index: i})
		}
	}

	var rows []map[string]string
	for _, group := range bs.Block.House.Groups {
		for _, student := range group.Students {
			row := map[string]string{
				"Student": student.FullName(),
				"Mentor":  group.Mentor,
			}
			for h, col := range columns {
				cells := studentCells(bs, col.activity, student)
				if col.index < len(cells) {
					row[headers[2+h]] = cells[col.index]
				}
			}
			rows = append(rows, row)
		}
	}
	return Dataset{Headers: headers, Rows: rows}
}

// activityOccurrences is the number of grid columns an activity needs: its
// distinct session dates.
func activityOccurrences(as models.ActivitySessions) int {
	dates := make(map[string]bool)
	for _, s := range as.Sessions {
		dates[s.Slot.Date.Format(dateLayout)] = true
	}
	return len(dates)
}

// studentCells lists the student's attended dates for the activity in
// chronological order, tagging peer roles.
func studentCells(bs models.BlockSchedule, activityName string, student models.Student) []string {
	sessions, _ := bs.Schedule.ForActivity(activityName)
	type attended struct {
		date string
		cell string
	}
	var hits []attended
	for _, s := range sessions {
		if !s.Enrollment.Contains(student) {
			continue
		}
		date := s.Slot.Date.Format(dateLayout)
		cell := date
		if s.Enrollment.Kind == models.EnrollmentPeer {
			if s.Enrollment.Peer.Bedside == student {
				cell = "bs " + date
			} else {
				cell = "pr " + date
			}
		}
		hits = append(hits, attended{date: date, cell: cell})
	}
	sort.Slice(hits, func(i, j int) bool { return hits[i].date < hits[j].date })
	out := make([]string, len(hits))
	for i, h := range hits {
		out[i] = h.cell
	}
	return out
}

// GroupingDataset lays a house out one row per student with their mentor and
// the demographic attributes the grouping fitness balances.
func GroupingDataset(house models.House) Dataset {
	headers := []string{"Student", "Mentor", "Gender", "Age", "Major"}
	var rows []map[string]string
	for _, group := range house.Groups {
		for _, student := range group.Students {
			rows = append(rows, map[string]string{
				"Student": student.FullName(),
				"Mentor":  group.Mentor,
				"Gender":  string(student.Gender),
				"Age":     fmt.Sprintf("%d", student.Age),
				"Major":   student.Major,
			})
		}
	}
	return Dataset{Headers: headers, Rows: rows}
}
