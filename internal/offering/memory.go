package offering

import (
	"context"
	"sync"

	id "registrar/pkg/domain"
	"registrar/pkg/platform/sentinel"
)

// InMemory is a process-local catalog.
type InMemory struct {
	mu        sync.RWMutex
	offerings map[id.OfferingID]Offering
}

func NewInMemory() *InMemory {
	return &InMemory{offerings: make(map[id.OfferingID]Offering)}
}

// Put inserts or replaces an offering.
func (s *InMemory) Put(_ context.Context, o *Offering) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.offerings[o.ID] = *o
	return nil
}

func (s *InMemory) GetOffering(_ context.Context, offeringID id.OfferingID) (*Offering, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	o, ok := s.offerings[offeringID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return &o, nil
}
