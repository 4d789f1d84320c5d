package planner

import (
	"strconv"

	"github.com/noah-isme/sma-blockplan-api/internal/models"
	"github.com/noah-isme/sma-blockplan-api/pkg/stats"
)

// GroupScores are the per-group diversity sub-scores, each on a 0-100 scale
// where 100 is perfectly balanced.
type GroupScores struct {
	Gender float64 `json:"gender"`
	Age    float64 `json:"age"`
	Major  float64 `json:"major"`
}

// GroupingScores aggregates a house: the per-group mean of every dimension
// plus their average, which is the scalar fitness of the grouping problem.
type GroupingScores struct {
	Gender  float64 `json:"gender"`
	Age     float64 `json:"age"`
	Major   float64 `json:"major"`
	Overall float64 `json:"overall"`
}

// ScoreGroup scores a single group. A group holding two students with the
// same last name is invalid and scores zero on every dimension.
func ScoreGroup(g models.Group) GroupScores {
	n := len(g.Students)
	if n == 0 {
		return GroupScores{Gender: 100, Age: 100, Major: 100}
	}
	if hasDuplicateLastName(g) {
		return GroupScores{}
	}
	return GroupScores{
		Gender: genderScore(g.Students),
		Age:    attributeScore(g.Students, func(s models.Student) string { return ageKey(s) }),
		Major:  attributeScore(g.Students, func(s models.Student) string { return s.Major }),
	}
}

// ScoreHouse averages each dimension across the house's groups.
func ScoreHouse(h models.House) GroupingScores {
	var gender, age, major []float64
	for _, g := range h.Groups {
		scores := ScoreGroup(g)
		gender = append(gender, scores.Gender)
		age = append(age, scores.Age)
		major = append(major, scores.Major)
	}
	out := GroupingScores{
		Gender: stats.Mean(gender),
		Age:    stats.Mean(age),
		Major:  stats.Mean(major),
	}
	out.Overall = (out.Gender + out.Age + out.Major) / 3
	return out
}

// GroupingFitness is the scalar score the genetic search maximizes.
func GroupingFitness(h models.House) float64 {
	return ScoreHouse(h).Overall
}

func hasDuplicateLastName(g models.Group) bool {
	seen := make(map[string]bool, len(g.Students))
	for _, s := range g.Students {
		if seen[s.LastName] {
			return true
		}
		seen[s.LastName] = true
	}
	return false
}

// genderScore sums +1 per male, -1 per female, 0 per unspecified, then
// inverts the absolute imbalance against the group size.
func genderScore(students []models.Student) float64 {
	sum := 0
	for _, s := range students {
		switch s.Gender {
		case models.GenderMale:
			sum++
		case models.GenderFemale:
			sum--
		}
	}
	if sum < 0 {
		sum = -sum
	}
	n := len(students)
	return float64(n-sum) / float64(n) * 100
}

// attributeScore measures concentration of an attribute: sum of squared
// bucket counts minus n, inverted against n squared. All-distinct scores 100.
func attributeScore(students []models.Student, key func(models.Student) string) float64 {
	n := len(students)
	counts := make(map[string]int, n)
	for _, s := range students {
		counts[key(s)]++
	}
	raw := 0
	for _, k := range counts {
		raw += k * k
	}
	raw -= n
	return float64(n*n-raw) / float64(n*n) * 100
}

func ageKey(s models.Student) string {
	return strconv.Itoa(s.Age)
}
