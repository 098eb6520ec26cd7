package inventory

import (
	"context"
	"sort"
	"sync"
)

type MemStore struct {
	mu       sync.RWMutex
	products map[int]Product
	stock    map[int]int
}

// NewMemStore returns a store seeded with the demo catalog.
func NewMemStore() *MemStore {
	s := &MemStore{products: map[int]Product{}, stock: map[int]int{}}
	for _, p := range seedProducts() {
		s.products[p.ID] = p
	}
	for _, st := range seedStock() {
		s.stock[st.ID] = st.Amount
	}
	return s
}

func (s *MemStore) Ping(ctx context.Context) error { return nil }

func (s *MemStore) ListProducts(ctx context.Context) ([]Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Product, 0, len(s.products))
	for _, p := range s.products {
		out = append(out, p)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *MemStore) GetProduct(ctx context.Context, id int) (Product, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.products[id]
	return p, ok, nil
}

func (s *MemStore) ListStock(ctx context.Context) ([]Stock, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Stock, 0, len(s.stock))
	for id, amount := range s.stock {
		out = append(out, Stock{ID: id, Amount: amount})
	}

	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *MemStore) GetStock(ctx context.Context, id int) (Stock, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	amount, ok := s.stock[id]
	return Stock{ID: id, Amount: amount}, ok, nil
}

func (s *MemStore) SetStock(id, amount int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stock[id] = amount
}
