package memory

import (
	"context"
	"sync"

	"card_arbitrage/internal/domain/entity"
)

type VaultStore struct {
	mu        sync.RWMutex
	positions map[string]entity.VaultPosition
	order     []string
}

func NewVaultStore() *VaultStore {
	return &VaultStore{
		positions: make(map[string]entity.VaultPosition),
	}
}

func (s *VaultStore) Save(_ context.Context, position entity.VaultPosition) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.positions[position.DealID]; !ok {
		s.order = append(s.order, position.DealID)
	}

	s.positions[position.DealID] = position

	return nil
}

// Delete удаляет позицию; отсутствие позиции не считается ошибкой.
func (s *VaultStore) Delete(_ context.Context, dealID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.positions[dealID]; !ok {
		return nil
	}

	delete(s.positions, dealID)

	for i, id := range s.order {
		if id == dealID {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}

	return nil
}

func (s *VaultStore) List(_ context.Context) ([]entity.VaultPosition, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]entity.VaultPosition, 0, len(s.order))
	for _, id := range s.order {
		result = append(result, s.positions[id])
	}

	return result, nil
}
