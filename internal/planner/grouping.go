package planner

import (
	"sort"

	"github.com/noah-isme/sma-blockplan-api/internal/models"
	"github.com/noah-isme/sma-blockplan-api/pkg/random"
)

// CreateGrouping partitions students into one group per mentor using the
// sort-based heuristic: order by (gender, age, major), then deal round-robin
// so adjacent (similar) students land in different groups.
func CreateGrouping(mentors []string, students []models.Student) models.House {
	sorted := make([]models.Student, len(students))
	copy(sorted, students)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if a.Gender != b.Gender {
			return a.Gender < b.Gender
		}
		if a.Age != b.Age {
			return a.Age < b.Age
		}
		return a.Major < b.Major
	})
	return dealRoundRobin(mentors, sorted)
}

// RandomGrouping shuffles the students before dealing them out, producing one
// random individual for the genetic population.
func RandomGrouping(mentors []string, students []models.Student, src *random.Source) models.House {
	return dealRoundRobin(mentors, random.Shuffled(src, students))
}

func dealRoundRobin(mentors []string, students []models.Student) models.House {
	groups := make([]models.Group, len(mentors))
	for i, mentor := range mentors {
		groups[i] = models.Group{Mentor: mentor}
	}
	if len(groups) == 0 {
		return models.House{}
	}
	for i, student := range students {
		idx := i % len(groups)
		groups[idx].Students = append(groups[idx].Students, student)
	}
	return models.House{Groups: groups}
}
