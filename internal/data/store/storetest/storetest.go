// Package storetest holds the behaviour every store.Store backend must share.
package storetest

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/yungbote/employee-registry/internal/data/store"
	"github.com/yungbote/employee-registry/internal/domain/employee"
	"github.com/yungbote/employee-registry/internal/pkg/pointers"
)

// Factory returns an empty store. Cleanup is the factory's job.
type Factory func(tb testing.TB) store.Store

// Run exercises stores built by newStore against the store.Store contract.
func Run(t *testing.T, newStore Factory) {
	t.Helper()

	t.Run("InsertGet", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		want := &employee.Employee{ID: 1, Name: "Ivan", CompanyName: pointers.String("Acme"), Salary: 100, IsConfidential: true}
		if err := s.Insert(ctx, want); err != nil {
			t.Fatalf("insert: %v", err)
		}
		got, err := s.Get(ctx, 1)
		if err != nil {
			t.Fatalf("get: %v", err)
		}
		assertEqual(t, got, want)
	})

	t.Run("NilCompanySurvives", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		if err := s.Insert(ctx, &employee.Employee{ID: 2, Name: "solo", Salary: 5}); err != nil {
			t.Fatalf("insert: %v", err)
		}
		got, err := s.Get(ctx, 2)
		if err != nil {
			t.Fatalf("get: %v", err)
		}
		if got.CompanyName != nil {
			t.Fatalf("unexpected company: got=%q want=nil", *got.CompanyName)
		}
	})

	t.Run("InsertDuplicate", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		if err := s.Insert(ctx, &employee.Employee{ID: 3, Name: "a"}); err != nil {
			t.Fatalf("insert: %v", err)
		}
		err := s.Insert(ctx, &employee.Employee{ID: 3, Name: "b"})
		if !errors.Is(err, store.ErrAlreadyExists) {
			t.Fatalf("unexpected error: got=%v want=%v", err, store.ErrAlreadyExists)
		}
		got, _ := s.Get(ctx, 3)
		if got == nil || got.Name != "a" {
			t.Fatalf("duplicate insert mutated record: %+v", got)
		}
	})

	t.Run("GetMissing", func(t *testing.T) {
		s := newStore(t)
		if _, err := s.Get(context.Background(), 404); !errors.Is(err, store.ErrNotFound) {
			t.Fatalf("unexpected error: got=%v want=%v", err, store.ErrNotFound)
		}
	})

	t.Run("ListOrdered", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		for _, id := range []int64{5, 1, 3} {
			if err := s.Insert(ctx, &employee.Employee{ID: id, Name: "x"}); err != nil {
				t.Fatalf("insert %d: %v", id, err)
			}
		}
		list, err := s.List(ctx)
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		if len(list) != 3 || list[0].ID != 1 || list[1].ID != 3 || list[2].ID != 5 {
			t.Fatalf("unexpected order: %v", ids(list))
		}
	})

	t.Run("UpdateReplacesAllFields", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		if err := s.Insert(ctx, &employee.Employee{ID: 7, Name: "old", CompanyName: pointers.String("Acme"), Salary: 1, IsConfidential: true}); err != nil {
			t.Fatalf("insert: %v", err)
		}
		want := &employee.Employee{ID: 7, Name: "new", Salary: 0, IsConfidential: false}
		if err := s.Update(ctx, want); err != nil {
			t.Fatalf("update: %v", err)
		}
		got, err := s.Get(ctx, 7)
		if err != nil {
			t.Fatalf("get: %v", err)
		}
		assertEqual(t, got, want)
	})

	t.Run("UpdateMissing", func(t *testing.T) {
		s := newStore(t)
		err := s.Update(context.Background(), &employee.Employee{ID: 8, Name: "ghost"})
		if !errors.Is(err, store.ErrNotFound) {
			t.Fatalf("unexpected error: got=%v want=%v", err, store.ErrNotFound)
		}
		if _, err := s.Get(context.Background(), 8); !errors.Is(err, store.ErrNotFound) {
			t.Fatalf("update created a record: %v", err)
		}
	})

	t.Run("UpdateManyAllOrNothing", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		for _, id := range []int64{1, 2} {
			if err := s.Insert(ctx, &employee.Employee{ID: id, Name: "orig"}); err != nil {
				t.Fatalf("insert %d: %v", id, err)
			}
		}
		err := s.UpdateMany(ctx, []*employee.Employee{{ID: 1, Name: "new"}, {ID: 99, Name: "new"}})
		if !errors.Is(err, store.ErrNotFound) {
			t.Fatalf("unexpected error: got=%v want=%v", err, store.ErrNotFound)
		}
		got, _ := s.Get(ctx, 1)
		if got == nil || got.Name != "orig" {
			t.Fatalf("partial update leaked: %+v", got)
		}
		if err := s.UpdateMany(ctx, []*employee.Employee{{ID: 1, Name: "n1"}, {ID: 2, Name: "n2"}}); err != nil {
			t.Fatalf("update many: %v", err)
		}
		list, _ := s.List(ctx)
		if len(list) != 2 || list[0].Name != "n1" || list[1].Name != "n2" {
			t.Fatalf("unexpected records: %+v", list)
		}
	})

	t.Run("DeleteAndDeleteAll", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		if err := s.Delete(ctx, 1); !errors.Is(err, store.ErrNotFound) {
			t.Fatalf("unexpected error: got=%v want=%v", err, store.ErrNotFound)
		}
		n, err := s.DeleteAll(ctx)
		if err != nil || n != 0 {
			t.Fatalf("delete all on empty: n=%d err=%v", n, err)
		}
		for _, id := range []int64{1, 2, 3} {
			if err := s.Insert(ctx, &employee.Employee{ID: id, Name: "x"}); err != nil {
				t.Fatalf("insert %d: %v", id, err)
			}
		}
		if err := s.Delete(ctx, 2); err != nil {
			t.Fatalf("delete: %v", err)
		}
		if _, err := s.Get(ctx, 2); !errors.Is(err, store.ErrNotFound) {
			t.Fatalf("deleted record still present: %v", err)
		}
		n, err = s.DeleteAll(ctx)
		if err != nil || n != 2 {
			t.Fatalf("delete all: n=%d err=%v want n=2", n, err)
		}
		list, _ := s.List(ctx)
		if len(list) != 0 {
			t.Fatalf("records left after delete all: %v", ids(list))
		}
	})

	t.Run("ReturnedRecordsAreCopies", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		if err := s.Insert(ctx, &employee.Employee{ID: 1, Name: "a", CompanyName: pointers.String("Acme")}); err != nil {
			t.Fatalf("insert: %v", err)
		}
		got, _ := s.Get(ctx, 1)
		got.Name = "mutated"
		*got.CompanyName = "mutated"
		again, _ := s.Get(ctx, 1)
		if again.Name != "a" || *again.CompanyName != "Acme" {
			t.Fatalf("store returned shared state: %+v", again)
		}
	})

	t.Run("ConcurrentInsertsUniqueIDs", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		const workers = 8
		var wg sync.WaitGroup
		var mu sync.Mutex
		succeeded := 0
		for i := 0; i < workers; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if err := s.Insert(ctx, &employee.Employee{ID: 42, Name: "race"}); err == nil {
					mu.Lock()
					succeeded++
					mu.Unlock()
				}
			}()
		}
		wg.Wait()
		if succeeded != 1 {
			t.Fatalf("unexpected successful inserts: got=%d want=1", succeeded)
		}
	})
}

func assertEqual(t *testing.T, got, want *employee.Employee) {
	t.Helper()
	if got.ID != want.ID || got.Name != want.Name || got.Salary != want.Salary || got.IsConfidential != want.IsConfidential {
		t.Fatalf("unexpected record: got=%+v want=%+v", got, want)
	}
	if !employee.SameCompany(got.CompanyName, want.CompanyName) {
		t.Fatalf("unexpected company: got=%v want=%v", got.CompanyName, want.CompanyName)
	}
}

func ids(list []*employee.Employee) []int64 {
	out := make([]int64, 0, len(list))
	for _, e := range list {
		out = append(out, e.ID)
	}
	return out
}
