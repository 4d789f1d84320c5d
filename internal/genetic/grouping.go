package genetic

import (
	"github.com/noah-isme/sma-blockplan-api/internal/models"
	"github.com/noah-isme/sma-blockplan-api/internal/planner"
	"github.com/noah-isme/sma-blockplan-api/pkg/lists"
	"github.com/noah-isme/sma-blockplan-api/pkg/random"
)

// groupingMutationRate is the per-evolution chance a child grouping mutates.
const groupingMutationRate = 0.05

// EvolveGrouping runs the genetic search over houses. Individual zero is
// seeded with the sort-based heuristic; the rest of the population is random.
func EvolveGrouping(cfg Config, mentors []string, students []models.Student) (models.House, Stats, error) {
	ops := Operators[models.House]{
		Initial: []models.House{planner.CreateGrouping(mentors, students)},
		Random: func(src *random.Source) (models.House, error) {
			return planner.RandomGrouping(mentors, students, src), nil
		},
		Fitness: planner.GroupingFitness,
		Crossover: func(src *random.Source, mum, dad models.House) (models.House, models.House, error) {
			return crossoverHouses(src, mum, dad), crossoverHouses(src, dad, mum), nil
		},
		Mutate: func(src *random.Source, h models.House) (models.House, error) {
			return mutateHouse(src, h), nil
		},
		MutationRate: groupingMutationRate,
	}
	best, stats, err := NewEngine(cfg, ops).Run()
	if err != nil {
		return models.House{}, Stats{}, err
	}
	return best.Value, stats, nil
}

// crossoverHouses keeps k random groups from mum, takes the remaining
// mentors' groups from dad with mum's students removed, then spreads the
// still-unassigned students evenly across the dad groups and rebalances.
func crossoverHouses(src *random.Source, mum, dad models.House) models.House {
	total := len(mum.Groups)
	if total == 0 {
		return mum
	}
	k := src.IntBetween(1, total)

	order := make([]int, total)
	for i := range order {
		order[i] = i
	}
	random.Shuffle(src, order)

	fromMum := make([]models.Group, 0, k)
	mumMentors := make(map[string]bool, k)
	assigned := make(map[models.Student]bool)
	for _, idx := range order[:k] {
		group := copyGroup(mum.Groups[idx])
		fromMum = append(fromMum, group)
		mumMentors[group.Mentor] = true
		for _, s := range group.Students {
			assigned[s] = true
		}
	}

	var fromDad []models.Group
	for _, group := range dad.Groups {
		if mumMentors[group.Mentor] {
			continue
		}
		kept := models.Group{Mentor: group.Mentor}
		for _, s := range group.Students {
			if !assigned[s] {
				kept.Students = append(kept.Students, s)
				assigned[s] = true
			}
		}
		fromDad = append(fromDad, kept)
	}

	var unassigned []models.Student
	for _, s := range mum.Students() {
		if !assigned[s] {
			unassigned = append(unassigned, s)
		}
	}

	if len(fromDad) > 0 {
		buckets := make([][]models.Student, len(fromDad))
		for i, g := range fromDad {
			buckets[i] = g.Students
		}
		buckets = lists.Rebalance(lists.DistributeEvenly(unassigned, buckets))
		for i := range fromDad {
			fromDad[i].Students = buckets[i]
		}
	}

	return models.House{Groups: append(fromMum, fromDad...)}
}

// mutateHouse swaps one random student between two different groups.
func mutateHouse(src *random.Source, h models.House) models.House {
	eligible := make([]int, 0, len(h.Groups))
	for i, g := range h.Groups {
		if len(g.Students) > 0 {
			eligible = append(eligible, i)
		}
	}
	if len(eligible) < 2 {
		return h
	}
	a := eligible[src.Intn(len(eligible))]
	b := eligible[src.Intn(len(eligible))]
	for b == a {
		b = eligible[src.Intn(len(eligible))]
	}

	groups := make([]models.Group, len(h.Groups))
	for i, g := range h.Groups {
		groups[i] = copyGroup(g)
	}
	i := src.Intn(len(groups[a].Students))
	j := src.Intn(len(groups[b].Students))
	groups[a].Students[i], groups[b].Students[j] = groups[b].Students[j], groups[a].Students[i]
	return models.House{Groups: groups}
}

func copyGroup(g models.Group) models.Group {
	students := make([]models.Student, len(g.Students))
	copy(students, g.Students)
	return models.Group{Mentor: g.Mentor, Students: students}
}
