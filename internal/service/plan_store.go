package service

import (
	"sync"
	"time"

	"github.com/noah-isme/sma-blockplan-api/internal/models"
)

// plan kinds stored for later export.
const (
	planKindSchedule = "schedule"
	planKindGrouping = "grouping"
)

type storedPlan struct {
	ID        string
	Kind      string
	Schedule  *models.BlockSchedule
	House     *models.House
	CreatedAt time.Time
}

// planStore keeps generated plans in memory until they expire, so the export
// endpoint can render them without regenerating. Process-local by design.
type planStore struct {
	mu    sync.Mutex
	ttl   time.Duration
	now   func() time.Time
	plans map[string]storedPlan
}

func newPlanStore(ttl time.Duration) *planStore {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &planStore{ttl: ttl, now: time.Now, plans: make(map[string]storedPlan)}
}

func (s *planStore) Save(plan storedPlan) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.purgeLocked()
	plan.CreatedAt = s.now()
	s.plans[plan.ID] = plan
}

func (s *planStore) Get(id string) (storedPlan, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.purgeLocked()
	plan, ok := s.plans[id]
	return plan, ok
}

func (s *planStore) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.plans, id)
}

func (s *planStore) purgeLocked() {
	deadline := s.now().Add(-s.ttl)
	for id, plan := range s.plans {
		if plan.CreatedAt.Before(deadline) {
			delete(s.plans, id)
		}
	}
}
