package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/yungbote/employee-registry/internal/data/store"
	"github.com/yungbote/employee-registry/internal/data/store/memory"
	"github.com/yungbote/employee-registry/internal/domain/employee"
	"github.com/yungbote/employee-registry/internal/pkg/namegen"
	"github.com/yungbote/employee-registry/internal/pkg/pointers"
	"github.com/yungbote/employee-registry/internal/platform/apierr"
	"github.com/yungbote/employee-registry/internal/platform/logger"
)

func newTestService(t *testing.T) (EmployeeService, store.Store) {
	t.Helper()
	log, err := logger.New("test")
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	st := memory.New(log)
	return NewEmployeeService(log, st, namegen.NewSeeded(7), nil), st
}

func assertAPIError(t *testing.T, err error, status int, code string) *apierr.Error {
	t.Helper()
	ae, ok := apierr.As(err)
	if !ok {
		t.Fatalf("expected *apierr.Error, got=%T (%v)", err, err)
	}
	if ae.Status != status || ae.Code != code {
		t.Fatalf("unexpected api error: got=%d/%s want=%d/%s", ae.Status, ae.Code, status, code)
	}
	return ae
}

func TestCreateThenGet(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	in := &employee.Employee{ID: 1, Name: "Ivan", CompanyName: pointers.String("Acme"), Salary: 100, IsConfidential: true}
	created, err := svc.Create(ctx, in)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	got, err := svc.Get(ctx, created.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Name != "Ivan" || got.Salary != 100 || !got.IsConfidential || *got.CompanyName != "Acme" {
		t.Fatalf("unexpected record: %+v", got)
	}
}

func TestCreateRejections(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	if _, err := svc.Create(ctx, &employee.Employee{ID: 1, Name: "a"}); err != nil {
		t.Fatalf("create: %v", err)
	}

	_, err := svc.Create(ctx, &employee.Employee{ID: 1, Name: "b"})
	ae := assertAPIError(t, err, http.StatusBadRequest, CodeEmployeeExists)
	if ae.Error() != "Запись с id-1 существует в БД!" {
		t.Fatalf("unexpected message: %q", ae.Error())
	}

	_, err = svc.Create(ctx, &employee.Employee{ID: -1, Name: "c"})
	ae = assertAPIError(t, err, http.StatusBadRequest, CodeInvalidEmployeeID)
	if ae.Error() != MsgInvalidID {
		t.Fatalf("unexpected message: %q", ae.Error())
	}
}

func TestCreateNormalizesSelfEmployedLabel(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	if _, err := svc.Create(ctx, &employee.Employee{ID: 4, Name: "a", CompanyName: pointers.String(employee.SelfEmployedLabel)}); err != nil {
		t.Fatalf("create: %v", err)
	}
	got, _ := svc.Get(ctx, 4)
	if got.CompanyName != nil {
		t.Fatalf("label stored as company: %q", *got.CompanyName)
	}
}

func TestDelete(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	assertAPIError(t, svc.Delete(ctx, 5), http.StatusNotFound, CodeEmployeeNotFound)

	if _, err := svc.Create(ctx, &employee.Employee{ID: 5, Name: "a"}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := svc.Delete(ctx, 5); err != nil {
		t.Fatalf("delete: %v", err)
	}
	_, err := svc.Get(ctx, 5)
	assertAPIError(t, err, http.StatusNotFound, CodeEmployeeNotFound)
}

func TestSumSalaryByCompany(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	for _, e := range []*employee.Employee{
		{ID: 1, Name: "a", CompanyName: pointers.String("A"), Salary: 100},
		{ID: 2, Name: "b", CompanyName: pointers.String("A"), Salary: 50},
		{ID: 3, Name: "c", CompanyName: pointers.String("B"), Salary: 10},
		{ID: 4, Name: "d", Salary: 7},
		{ID: 5, Name: "e", Salary: 3},
	} {
		if _, err := svc.Create(ctx, e); err != nil {
			t.Fatalf("create %d: %v", e.ID, err)
		}
	}

	cases := []struct {
		company string
		want    int64
	}{
		{"A", 150},
		{"B", 10},
		{employee.SelfEmployedLabel, 10},
	}
	for _, tc := range cases {
		got, err := svc.SumSalaryByCompany(ctx, tc.company)
		if err != nil {
			t.Fatalf("sum %q: %v", tc.company, err)
		}
		if got != tc.want {
			t.Fatalf("sum %q: got=%d want=%d", tc.company, got, tc.want)
		}
	}

	_, err := svc.SumSalaryByCompany(ctx, "Unknown")
	ae := assertAPIError(t, err, http.StatusBadRequest, CodeCompanyNotFound)
	if ae.Error() != "Нету сотрудников из компании Unknown!" {
		t.Fatalf("unexpected message: %q", ae.Error())
	}
}

func TestRenameAll(t *testing.T) {
	svc, st := newTestService(t)
	ctx := context.Background()

	res, err := svc.RenameAll(ctx)
	if err != nil {
		t.Fatalf("rename empty: %v", err)
	}
	if res.Message != MsgNothingToRename || len(res.Employees) != 0 {
		t.Fatalf("unexpected result on empty registry: %+v", res)
	}

	before := map[int64]string{}
	for i := int64(1); i <= 20; i++ {
		name := fmt.Sprintf("employee-%d", i)
		before[i] = name
		if _, err := svc.Create(ctx, &employee.Employee{ID: i, Name: name}); err != nil {
			t.Fatalf("create %d: %v", i, err)
		}
	}

	res, err = svc.RenameAll(ctx)
	if err != nil {
		t.Fatalf("rename: %v", err)
	}
	if len(res.Employees) != 20 {
		t.Fatalf("unexpected renamed count: got=%d want=20", len(res.Employees))
	}
	stored, _ := st.List(ctx)
	if len(stored) != 20 {
		t.Fatalf("registry size changed: got=%d want=20", len(stored))
	}
	length := len(stored[0].Name)
	if length < namegen.MinLength || length >= namegen.MaxLength {
		t.Fatalf("name length out of range: %d", length)
	}
	for _, e := range stored {
		if e.Name == before[e.ID] {
			t.Fatalf("name unchanged for id=%d", e.ID)
		}
		if len(e.Name) != length {
			t.Fatalf("names do not share a length: %d vs %d", len(e.Name), length)
		}
		if strings.Trim(e.Name, namegen.Alphabet) != "" {
			t.Fatalf("name outside alphabet: %q", e.Name)
		}
	}
}

func TestUpdate(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	if _, err := svc.Create(ctx, &employee.Employee{ID: 1, Name: "orig", Salary: 1}); err != nil {
		t.Fatalf("create: %v", err)
	}

	err := svc.Update(ctx, 2, &employee.Employee{ID: 1, Name: "changed"})
	assertAPIError(t, err, http.StatusBadRequest, CodeIDMismatch)
	got, _ := svc.Get(ctx, 1)
	if got.Name != "orig" {
		t.Fatalf("mismatched update mutated record: %+v", got)
	}

	if err := svc.Update(ctx, 1, &employee.Employee{ID: 1, Name: "changed", CompanyName: pointers.String("Acme"), Salary: 9}); err != nil {
		t.Fatalf("update: %v", err)
	}
	got, _ = svc.Get(ctx, 1)
	if got.Name != "changed" || got.Salary != 9 || *got.CompanyName != "Acme" {
		t.Fatalf("unexpected record after update: %+v", got)
	}

	err = svc.Update(ctx, 77, &employee.Employee{ID: 77})
	assertAPIError(t, err, http.StatusNotFound, CodeEmployeeNotFound)
}

func TestDeleteAllMessages(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	msg, err := svc.DeleteAll(ctx)
	if err != nil || msg != MsgNothingToDelete {
		t.Fatalf("unexpected result on empty registry: msg=%q err=%v", msg, err)
	}
	if _, err := svc.Create(ctx, &employee.Employee{ID: 1, Name: "a"}); err != nil {
		t.Fatalf("create: %v", err)
	}
	msg, err = svc.DeleteAll(ctx)
	if err != nil || msg != MsgAllDeleted {
		t.Fatalf("unexpected result: msg=%q err=%v", msg, err)
	}
	list, _ := svc.List(ctx)
	if len(list) != 0 {
		t.Fatalf("records left: %d", len(list))
	}
}

type failingStore struct {
	store.Store
	updateErr    error
	deleteAllErr error
	listErr      error
}

func (f *failingStore) Update(ctx context.Context, e *employee.Employee) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	return f.Store.Update(ctx, e)
}

func (f *failingStore) DeleteAll(ctx context.Context) (int64, error) {
	if f.deleteAllErr != nil {
		return 0, f.deleteAllErr
	}
	return f.Store.DeleteAll(ctx)
}

func (f *failingStore) List(ctx context.Context) ([]*employee.Employee, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.Store.List(ctx)
}

func TestStoreFailuresMapToAPIErrors(t *testing.T) {
	log, _ := logger.New("test")
	fs := &failingStore{
		Store:        memory.New(log),
		updateErr:    fmt.Errorf("update id=1: %w", store.ErrConflict),
		deleteAllErr: errors.New("disk on fire"),
		listErr:      errors.New("connection reset"),
	}
	svc := NewEmployeeService(log, fs, namegen.NewSeeded(1), nil)
	ctx := context.Background()

	err := svc.Update(ctx, 1, &employee.Employee{ID: 1})
	assertAPIError(t, err, http.StatusInternalServerError, CodeConcurrencyConflict)

	_, err = svc.DeleteAll(ctx)
	ae := assertAPIError(t, err, http.StatusBadRequest, CodeDeleteAllFailed)
	if ae.Error() != MsgDeleteAllFailed {
		t.Fatalf("unexpected message: %q", ae.Error())
	}

	_, err = svc.RenameAll(ctx)
	assertAPIError(t, err, http.StatusInternalServerError, CodeInternal)
}
