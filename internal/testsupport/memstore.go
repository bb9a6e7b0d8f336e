// Package testsupport holds fakes and shared assertions for tests.
package testsupport

import (
	"context"
	"sort"
	"strconv"
	"sync"
	"time"

	"ainews/domain"
)

// MemoryRepository is an in-memory domain.NewsRepository with the same
// conflict and conditional-update semantics as the SQL stores.
type MemoryRepository struct {
	mu     sync.Mutex
	items  map[string]domain.NewsItem
	nextID int

	// Calls counts every repository method invocation by name.
	Calls map[string]int

	// Optional failure injection, keyed by URL.
	FindErr   map[string]error
	CreateErr map[string]error
	UpdateErr map[string]error
}

// NewMemoryRepository returns an empty repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		items:     map[string]domain.NewsItem{},
		Calls:     map[string]int{},
		FindErr:   map[string]error{},
		CreateErr: map[string]error{},
		UpdateErr: map[string]error{},
	}
}

func (m *MemoryRepository) Ensure(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls["Ensure"]++
	return nil
}

func (m *MemoryRepository) FindByURL(_ context.Context, url string) (*domain.NewsItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls["FindByURL"]++
	if err := m.FindErr[url]; err != nil {
		return nil, err
	}
	item, ok := m.items[url]
	if !ok {
		return nil, nil
	}
	return clone(item), nil
}

func (m *MemoryRepository) Create(_ context.Context, n domain.NewsItem) (*domain.NewsItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls["Create"]++
	if err := m.CreateErr[n.URL]; err != nil {
		return nil, err
	}
	if _, ok := m.items[n.URL]; ok {
		return nil, domain.ErrConflict
	}
	m.nextID++
	now := time.Now().UTC()
	n.ID = strconv.Itoa(m.nextID)
	n.CreatedAt, n.UpdatedAt = now, now
	if n.Tags == nil {
		n.Tags = []string{}
	}
	m.items[n.URL] = *clone(n)
	return clone(n), nil
}

func (m *MemoryRepository) UpdateMetadata(_ context.Context, url string, p domain.MetadataPatch) (*domain.NewsItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls["UpdateMetadata"]++
	if err := m.UpdateErr[url]; err != nil {
		return nil, err
	}
	item, ok := m.items[url]
	if !ok || item.HasImage() {
		return nil, domain.ErrNotUpdated
	}
	if p.ImageURL != "" {
		item.ImageURL = p.ImageURL
	}
	if p.Summary != "" {
		item.Summary = p.Summary
	}
	item.UpdatedAt = time.Now().UTC()
	m.items[url] = item
	return clone(item), nil
}

func (m *MemoryRepository) List(_ context.Context, f domain.ListFilter) ([]domain.NewsItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls["List"]++
	var out []domain.NewsItem
	for _, it := range m.items {
		if f.Source != "" && it.Source != f.Source {
			continue
		}
		out = append(out, *clone(it))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PublishedAt.After(out[j].PublishedAt) })
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

// Put stores an item directly, bypassing conflict checks.
func (m *MemoryRepository) Put(n domain.NewsItem) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	if n.ID == "" {
		n.ID = strconv.Itoa(m.nextID)
	}
	m.items[n.URL] = *clone(n)
}

// Get returns the stored item for url.
func (m *MemoryRepository) Get(url string) (domain.NewsItem, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	it, ok := m.items[url]
	return it, ok
}

// Len returns the number of stored items.
func (m *MemoryRepository) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.items)
}

// TotalCalls sums all recorded method calls.
func (m *MemoryRepository) TotalCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	total := 0
	for _, n := range m.Calls {
		total += n
	}
	return total
}

func clone(n domain.NewsItem) *domain.NewsItem {
	n.Tags = append([]string(nil), n.Tags...)
	return &n
}
