package genetic

import (
	"math"
	"runtime"
	"sort"
	"sync"

	"github.com/noah-isme/sma-blockplan-api/pkg/random"
)

// Config parameterizes a genetic run.
type Config struct {
	PopulationSize  int     `json:"population_size" validate:"required,min=2"`
	MaxEvolutions   int     `json:"max_evolutions" validate:"required,min=1"`
	AcceptableScore float64 `json:"acceptable_score" validate:"min=0,max=100"`
	Seed            int64   `json:"seed"`
}

// elitePercent is the fraction of each generation passed through unchanged.
const elitePercent = 0.10

// Individual pairs a chromosome with its cached fitness.
type Individual[T any] struct {
	Value   T
	Fitness float64
}

// Stats summarizes a finished run.
type Stats struct {
	Generations int     `json:"generations"`
	BestFitness float64 `json:"best_fitness"`
}

// Operators supplies the problem-specific pieces of the search. Every
// callback receives its own random source; sources are never shared across
// workers.
type Operators[T any] struct {
	// Initial seeds the head of the population; the remainder is random.
	Initial []T
	// Random constructs one random individual.
	Random func(src *random.Source) (T, error)
	// Fitness scores an individual; higher is better.
	Fitness func(T) float64
	// Crossover breeds two children from two parents.
	Crossover func(src *random.Source, mum, dad T) (T, T, error)
	// Mutate perturbs an individual.
	Mutate func(src *random.Source, v T) (T, error)
	// MutationRate is the per-child chance of mutation each evolution.
	MutationRate float64
}

// Engine evolves a population toward high fitness.
type Engine[T any] struct {
	cfg     Config
	ops     Operators[T]
	master  *random.Source
	workers int
}

// NewEngine builds an engine. The master source is seeded from cfg.Seed and
// forked per worker task.
func NewEngine[T any](cfg Config, ops Operators[T]) *Engine[T] {
	workers := runtime.NumCPU()
	if workers < 1 {
		workers = 1
	}
	return &Engine[T]{cfg: cfg, ops: ops, master: random.New(cfg.Seed), workers: workers}
}

// Run evolves until the generation budget is spent or the acceptable score is
// reached, and returns the best individual seen. Hitting the budget without
// reaching the score is normal output, not an error.
func (e *Engine[T]) Run() (Individual[T], Stats, error) {
	pop, err := e.initPopulation()
	if err != nil {
		return Individual[T]{}, Stats{}, err
	}
	sortByFitness(pop)

	best := pop[0]
	generations := 0
	for generations < e.cfg.MaxEvolutions && best.Fitness < e.cfg.AcceptableScore {
		pop, err = e.nextGeneration(pop)
		if err != nil {
			return Individual[T]{}, Stats{}, err
		}
		generations++
		// elites carry the previous top unchanged, so this never regresses
		if pop[0].Fitness > best.Fitness {
			best = pop[0]
		}
	}
	return best, Stats{Generations: generations, BestFitness: best.Fitness}, nil
}

func (e *Engine[T]) initPopulation() ([]Individual[T], error) {
	pop := make([]Individual[T], e.cfg.PopulationSize)

	seeded := 0
	for ; seeded < len(e.ops.Initial) && seeded < len(pop); seeded++ {
		value := e.ops.Initial[seeded]
		pop[seeded] = Individual[T]{Value: value, Fitness: e.ops.Fitness(value)}
	}

	err := e.runParallel(len(pop)-seeded, func(i int, src *random.Source) error {
		value, buildErr := e.ops.Random(src)
		if buildErr != nil {
			return buildErr
		}
		pop[seeded+i] = Individual[T]{Value: value, Fitness: e.ops.Fitness(value)}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return pop, nil
}

func (e *Engine[T]) nextGeneration(pop []Individual[T]) ([]Individual[T], error) {
	eliteCount := int(math.Ceil(float64(e.cfg.PopulationSize) * elitePercent))
	if eliteCount < 1 {
		eliteCount = 1
	}
	if eliteCount > len(pop) {
		eliteCount = len(pop)
	}

	childCount := e.cfg.PopulationSize - eliteCount
	pairCount := (childCount + 1) / 2
	children := make([]Individual[T], 2*pairCount)

	err := e.runParallel(pairCount, func(i int, src *random.Source) error {
		mum, dad := e.pickParents(src, pop)
		first, second, crossErr := e.ops.Crossover(src, mum.Value, dad.Value)
		if crossErr != nil {
			return crossErr
		}
		for j, value := range []T{first, second} {
			if src.Float64() < e.ops.MutationRate {
				mutated, mutErr := e.ops.Mutate(src, value)
				if mutErr != nil {
					return mutErr
				}
				value = mutated
			}
			children[2*i+j] = Individual[T]{Value: value, Fitness: e.ops.Fitness(value)}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	next := make([]Individual[T], 0, e.cfg.PopulationSize)
	next = append(next, pop[:eliteCount]...)
	next = append(next, children[:childCount]...)
	sortByFitness(next)
	return next, nil
}

// pickParents draws two distinct individuals uniformly from the top half of
// the already-sorted population.
func (e *Engine[T]) pickParents(src *random.Source, pop []Individual[T]) (Individual[T], Individual[T]) {
	half := len(pop) / 2
	if half < 2 {
		half = len(pop)
	}
	i := src.Intn(half)
	j := src.Intn(half)
	for j == i && half > 1 {
		j = src.Intn(half)
	}
	return pop[i], pop[j]
}

// runParallel executes count tasks across the worker budget. Each task gets a
// source forked from the master in the spawning goroutine, keeping draws
// race-free and reproducible for a fixed seed and worker order.
func (e *Engine[T]) runParallel(count int, task func(i int, src *random.Source) error) error {
	if count <= 0 {
		return nil
	}
	sem := make(chan struct{}, e.workers)
	var wg sync.WaitGroup
	var mu sync.Mutex
	var firstErr error

	for i := 0; i < count; i++ {
		src := e.master.Fork()
		wg.Add(1)
		sem <- struct{}{}
		go func(i int, src *random.Source) {
			defer wg.Done()
			defer func() { <-sem }()
			if err := task(i, src); err != nil {
				mu.Lock()
				if firstErr == nil {
					firstErr = err
				}
				mu.Unlock()
			}
		}(i, src)
	}
	wg.Wait()
	return firstErr
}

func sortByFitness[T any](pop []Individual[T]) {
	sort.SliceStable(pop, func(i, j int) bool {
		return pop[i].Fitness > pop[j].Fitness
	})
}
