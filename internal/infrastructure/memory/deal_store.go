package memory

import (
	"context"
	"fmt"
	"sync"

	"card_arbitrage/internal/domain"
	"card_arbitrage/internal/domain/entity"
	"card_arbitrage/internal/domain/value"
	"card_arbitrage/pkg/errcodes"
)

// DealStore: хранилище сделок в памяти. Возвращает копии, чтобы вызывающий
// код не мог изменить сохранённое состояние.
type DealStore struct {
	mu    sync.RWMutex
	deals map[string]entity.Deal
	order []string
}

func NewDealStore() *DealStore {
	return &DealStore{
		deals: make(map[string]entity.Deal),
	}
}

func (s *DealStore) Create(_ context.Context, deal entity.Deal) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.deals[deal.ID]; ok {
		return domain.NewError(errcodes.DealAlreadyTracked, fmt.Sprintf("deal %s already tracked", deal.ID))
	}

	s.deals[deal.ID] = deal.Clone()
	s.order = append(s.order, deal.ID)

	return nil
}

func (s *DealStore) Get(_ context.Context, id string) (entity.Deal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	deal, ok := s.deals[id]
	if !ok {
		return entity.Deal{}, domain.NewError(errcodes.DealNotFound, fmt.Sprintf("deal %s not found", id))
	}

	return deal.Clone(), nil
}

func (s *DealStore) Update(_ context.Context, deal entity.Deal) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.deals[deal.ID]; !ok {
		return domain.NewError(errcodes.DealNotFound, fmt.Sprintf("deal %s not found", deal.ID))
	}

	s.deals[deal.ID] = deal.Clone()

	return nil
}

func (s *DealStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.deals[id]; !ok {
		return domain.NewError(errcodes.DealNotFound, fmt.Sprintf("deal %s not found", id))
	}

	delete(s.deals, id)

	for i, existing := range s.order {
		if existing == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}

	return nil
}

// List возвращает сделки в порядке создания; пустой status означает все сделки.
func (s *DealStore) List(_ context.Context, status value.DealStatus) ([]entity.Deal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]entity.Deal, 0, len(s.order))

	for _, id := range s.order {
		deal := s.deals[id]
		if status != "" && deal.Status != status {
			continue
		}

		result = append(result, deal.Clone())
	}

	return result, nil
}

// ListOpen: сделки в статусах PENDING и APPROVED.
func (s *DealStore) ListOpen(_ context.Context) ([]entity.Deal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []entity.Deal

	for _, id := range s.order {
		if deal := s.deals[id]; deal.Status.IsOpen() {
			result = append(result, deal.Clone())
		}
	}

	return result, nil
}
