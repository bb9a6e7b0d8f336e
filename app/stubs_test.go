package app

import (
	"context"
	"sync"

	"ainews/domain"
)

type stubSource struct {
	name   string
	items  []domain.Candidate
	err    error
	panics bool
	enrich func(*domain.Candidate)

	mu          sync.Mutex
	fetchCalls  int
	enrichCalls int
}

func (s *stubSource) Name() string { return s.name }

func (s *stubSource) FetchCandidates(context.Context) ([]domain.Candidate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fetchCalls++
	if s.panics {
		panic("listing exploded")
	}
	if s.err != nil {
		return nil, s.err
	}
	return append([]domain.Candidate(nil), s.items...), nil
}

func (s *stubSource) Enrich(_ context.Context, c *domain.Candidate) {
	s.mu.Lock()
	s.enrichCalls++
	s.mu.Unlock()
	if s.enrich != nil {
		s.enrich(c)
	}
}

func (s *stubSource) enrichCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.enrichCalls
}
