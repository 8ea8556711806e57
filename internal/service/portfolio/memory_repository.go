package portfolio

import (
	"context"
	"sync"

	"github.com/nkjh2020/investment-manager/internal/domain/portfolio"
)

// MemoryTargetRepository keeps target weights in process memory (DB 미사용 모드)
type MemoryTargetRepository struct {
	mu      sync.RWMutex
	targets map[string][]portfolio.TargetWeight
}

// NewMemoryTargetRepository creates an empty repository
func NewMemoryTargetRepository() *MemoryTargetRepository {
	return &MemoryTargetRepository{targets: make(map[string][]portfolio.TargetWeight)}
}

var _ portfolio.TargetRepository = (*MemoryTargetRepository)(nil)

func (r *MemoryTargetRepository) GetTargets(_ context.Context, userID string) ([]portfolio.TargetWeight, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stored := r.targets[userID]
	out := make([]portfolio.TargetWeight, len(stored))
	copy(out, stored)
	return out, nil
}

func (r *MemoryTargetRepository) SaveTargets(_ context.Context, userID string, targets []portfolio.TargetWeight) error {
	stored := make([]portfolio.TargetWeight, len(targets))
	copy(stored, targets)

	r.mu.Lock()
	r.targets[userID] = stored
	r.mu.Unlock()
	return nil
}
