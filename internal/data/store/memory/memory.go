package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/yungbote/employee-registry/internal/data/store"
	"github.com/yungbote/employee-registry/internal/domain/employee"
	"github.com/yungbote/employee-registry/internal/platform/logger"
)

type memoryStore struct {
	log  *logger.Logger
	mu   sync.RWMutex
	rows map[int64]*employee.Employee
}

func New(baseLog *logger.Logger) store.Store {
	return &memoryStore{
		log:  baseLog.With("store", "memory"),
		rows: map[int64]*employee.Employee{},
	}
}

func (s *memoryStore) List(ctx context.Context) ([]*employee.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*employee.Employee, 0, len(s.rows))
	for _, e := range s.rows {
		out = append(out, e.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *memoryStore) Get(ctx context.Context, id int64) (*employee.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.rows[id]
	if !ok {
		return nil, fmt.Errorf("get id=%d: %w", id, store.ErrNotFound)
	}
	return e.Clone(), nil
}

func (s *memoryStore) Insert(ctx context.Context, e *employee.Employee) error {
	if e == nil {
		return fmt.Errorf("insert: nil employee")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rows[e.ID]; ok {
		return fmt.Errorf("insert id=%d: %w", e.ID, store.ErrAlreadyExists)
	}
	s.rows[e.ID] = e.Clone()
	return nil
}

func (s *memoryStore) Update(ctx context.Context, e *employee.Employee) error {
	if e == nil {
		return fmt.Errorf("update: nil employee")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rows[e.ID]; !ok {
		return fmt.Errorf("update id=%d: %w", e.ID, store.ErrNotFound)
	}
	s.rows[e.ID] = e.Clone()
	return nil
}

func (s *memoryStore) UpdateMany(ctx context.Context, list []*employee.Employee) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range list {
		if e == nil {
			return fmt.Errorf("update many: nil employee")
		}
		if _, ok := s.rows[e.ID]; !ok {
			return fmt.Errorf("update many id=%d: %w", e.ID, store.ErrNotFound)
		}
	}
	for _, e := range list {
		s.rows[e.ID] = e.Clone()
	}
	return nil
}

func (s *memoryStore) Delete(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rows[id]; !ok {
		return fmt.Errorf("delete id=%d: %w", id, store.ErrNotFound)
	}
	delete(s.rows, id)
	return nil
}

func (s *memoryStore) DeleteAll(ctx context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := int64(len(s.rows))
	s.rows = map[int64]*employee.Employee{}
	if n > 0 {
		s.log.Debug("registry cleared", "removed", n)
	}
	return n, nil
}

func (s *memoryStore) Close() error { return nil }
