// Package memory is a non-durable storage.Store used by tests and local
// experiments.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"expensetracker/internal/core"
	"expensetracker/internal/storage"
)

type Store struct {
	mu     sync.Mutex
	nextID int64
	items  map[int64]core.Expense
	now    func() time.Time
	fail   error
}

var _ storage.Store = (*Store)(nil)

func New() *Store {
	return &Store{nextID: 1, items: make(map[int64]core.Expense), now: time.Now}
}

// WithClock overrides the clock used to stamp creation dates.
func (s *Store) WithClock(now func() time.Time) *Store {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
	return s
}

// SetUnavailable makes every subsequent call fail with err wrapped in
// core.ErrStorage. Passing nil restores normal behaviour.
func (s *Store) SetUnavailable(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fail = err
}

func (s *Store) check(op string) error {
	if s.fail != nil {
		return fmt.Errorf("%s: %w: %w", op, core.ErrStorage, s.fail)
	}
	return nil
}

func (s *Store) ListAll(_ context.Context) ([]core.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check("list expenses"); err != nil {
		return nil, err
	}
	out := make([]core.Expense, 0, len(s.items))
	for _, e := range s.items {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Store) Get(_ context.Context, id int64) (core.Expense, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check("get expense"); err != nil {
		return core.Expense{}, false, err
	}
	e, ok := s.items[id]
	return e, ok, nil
}

func (s *Store) Create(_ context.Context, in core.ExpenseInput) (core.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check("create expense"); err != nil {
		return core.Expense{}, err
	}
	e, err := core.NewExpense(in, s.now())
	if err != nil {
		return core.Expense{}, err
	}
	e.ID = s.nextID
	s.nextID++
	s.items[e.ID] = e
	return e, nil
}

func (s *Store) Update(_ context.Context, id int64, in core.ExpenseInput) (core.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check("update expense"); err != nil {
		return core.Expense{}, err
	}
	e, ok := s.items[id]
	if !ok {
		return core.Expense{}, fmt.Errorf("expense %d: %w", id, core.ErrNotFound)
	}
	if err := e.Apply(in); err != nil {
		return core.Expense{}, err
	}
	s.items[id] = e
	return e, nil
}

func (s *Store) Delete(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check("delete expense"); err != nil {
		return err
	}
	if _, ok := s.items[id]; !ok {
		return fmt.Errorf("expense %d: %w", id, core.ErrNotFound)
	}
	delete(s.items, id)
	return nil
}

func (s *Store) Ping(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.check("ping")
}

func (s *Store) Close() error { return nil }

// Len returns the number of stored records.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}
