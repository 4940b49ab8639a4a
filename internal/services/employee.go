package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/yungbote/employee-registry/internal/data/store"
	"github.com/yungbote/employee-registry/internal/domain/employee"
	"github.com/yungbote/employee-registry/internal/observability"
	"github.com/yungbote/employee-registry/internal/pkg/namegen"
	"github.com/yungbote/employee-registry/internal/platform/apierr"
	"github.com/yungbote/employee-registry/internal/platform/ctxutil"
	"github.com/yungbote/employee-registry/internal/platform/logger"
)

// Machine codes carried by *apierr.Error.
const (
	CodeEmployeeNotFound    = "employee_not_found"
	CodeEmployeeExists      = "employee_exists"
	CodeInvalidEmployeeID   = "invalid_employee_id"
	CodeIDMismatch          = "id_mismatch"
	CodeCompanyNotFound     = "company_not_found"
	CodeConcurrencyConflict = "concurrency_conflict"
	CodeDeleteAllFailed     = "delete_all_failed"
	CodeInternal            = "internal"
)

const (
	MsgNothingToRename  = "Нету сотрудника для изменения!"
	MsgNothingToDelete  = "Не было сотрудников для удаления из БД!"
	MsgAllDeleted       = "Все сотрудники были удалены из БД!"
	MsgDeleteAllFailed  = "Возникли проблемы при удалении всех сотрудников из БД"
	MsgInvalidID        = "Невозможно создать сотрудника с невалидным идентификатором"
	MsgIDMismatch       = "Идентификатор в пути не совпадает с идентификатором сотрудника"
	MsgConcurrencyFault = "Запись была изменена другим запросом, повторите попытку"
	MsgInternalFault    = "Внутренняя ошибка сервера"
)

func msgExists(id int64) string   { return fmt.Sprintf("Запись с id-%d существует в БД!", id) }
func msgNotFound(id int64) string { return fmt.Sprintf("Сущности по id-%d не существует в БД!", id) }
func msgNoCompany(c string) string {
	return fmt.Sprintf("Нету сотрудников из компании %s!", c)
}

// RenameResult is either the renamed records or, for an empty registry, a message.
type RenameResult struct {
	Employees []*employee.Employee
	Message   string
}

type EmployeeService interface {
	List(ctx context.Context) ([]*employee.Employee, error)
	Get(ctx context.Context, id int64) (*employee.Employee, error)
	// SumSalaryByCompany accepts the display label; the self-employed label
	// and blank input select records without a company.
	SumSalaryByCompany(ctx context.Context, company string) (int64, error)
	Create(ctx context.Context, e *employee.Employee) (*employee.Employee, error)
	Update(ctx context.Context, pathID int64, e *employee.Employee) error
	RenameAll(ctx context.Context) (*RenameResult, error)
	Delete(ctx context.Context, id int64) error
	DeleteAll(ctx context.Context) (string, error)
}

type employeeService struct {
	store   store.Store
	names   namegen.Generator
	metrics *observability.Metrics
	log     *logger.Logger
}

func NewEmployeeService(baseLog *logger.Logger, st store.Store, names namegen.Generator, metrics *observability.Metrics) EmployeeService {
	if names == nil {
		names = namegen.New(nil)
	}
	return &employeeService{
		store:   st,
		names:   names,
		metrics: metrics,
		log:     baseLog.With("service", "EmployeeService"),
	}
}

func (s *employeeService) logger(ctx context.Context) *logger.Logger {
	if fields := ctxutil.LogFields(ctx); len(fields) > 0 {
		return s.log.With(fields...)
	}
	return s.log
}

// internal maps an unexpected store error to a 500 and logs it.
func (s *employeeService) internal(ctx context.Context, op string, err error) error {
	if errors.Is(err, store.ErrConflict) {
		s.logger(ctx).Warn(op+": concurrent modification", "error", err)
		return apierr.New(http.StatusInternalServerError, CodeConcurrencyConflict, errors.New(MsgConcurrencyFault))
	}
	s.logger(ctx).Error(op+": store failure", "error", err)
	return apierr.New(http.StatusInternalServerError, CodeInternal, errors.New(MsgInternalFault))
}

func (s *employeeService) List(ctx context.Context) ([]*employee.Employee, error) {
	list, err := s.store.List(ctx)
	if err != nil {
		return nil, s.internal(ctx, "List", err)
	}
	s.metrics.SetRegistrySize(len(list))
	return list, nil
}

func (s *employeeService) Get(ctx context.Context, id int64) (*employee.Employee, error) {
	e, err := s.store.Get(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, apierr.NotFound(CodeEmployeeNotFound, msgNotFound(id))
	}
	if err != nil {
		return nil, s.internal(ctx, "Get", err)
	}
	return e, nil
}

func (s *employeeService) SumSalaryByCompany(ctx context.Context, company string) (int64, error) {
	want := employee.CompanyFromLabel(company)
	list, err := s.store.List(ctx)
	if err != nil {
		return 0, s.internal(ctx, "SumSalaryByCompany", err)
	}
	var (
		sum     int64
		matches int
	)
	for _, e := range list {
		if employee.SameCompany(e.CompanyName, want) {
			sum += int64(e.Salary)
			matches++
		}
	}
	if matches == 0 {
		return 0, apierr.BadRequest(CodeCompanyNotFound, msgNoCompany(company))
	}
	s.logger(ctx).Debug("Salary summed", "company", employee.DisplayCompany(want), "matches", matches)
	return sum, nil
}

func (s *employeeService) Create(ctx context.Context, e *employee.Employee) (*employee.Employee, error) {
	if e == nil {
		return nil, apierr.BadRequest(CodeInvalidEmployeeID, MsgInvalidID)
	}
	_, err := s.store.Get(ctx, e.ID)
	switch {
	case err == nil:
		return nil, apierr.BadRequest(CodeEmployeeExists, msgExists(e.ID))
	case !errors.Is(err, store.ErrNotFound):
		return nil, s.internal(ctx, "Create", err)
	}
	if e.ID < 0 {
		return nil, apierr.BadRequest(CodeInvalidEmployeeID, MsgInvalidID)
	}

	rec := e.Clone()
	rec.CompanyName = employee.NormalizeCompany(rec.CompanyName)
	if err := s.store.Insert(ctx, rec); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return nil, apierr.BadRequest(CodeEmployeeExists, msgExists(e.ID))
		}
		return nil, s.internal(ctx, "Create", err)
	}
	s.logger(ctx).Info("Employee created", "employee_id", rec.ID, "salary", rec.Salary)
	return rec, nil
}

func (s *employeeService) Update(ctx context.Context, pathID int64, e *employee.Employee) error {
	if e == nil || pathID != e.ID {
		return apierr.BadRequest(CodeIDMismatch, MsgIDMismatch)
	}
	rec := e.Clone()
	rec.CompanyName = employee.NormalizeCompany(rec.CompanyName)
	err := s.store.Update(ctx, rec)
	if errors.Is(err, store.ErrNotFound) {
		return apierr.NotFound(CodeEmployeeNotFound, msgNotFound(pathID))
	}
	if err != nil {
		return s.internal(ctx, "Update", err)
	}
	s.logger(ctx).Info("Employee updated", "employee_id", rec.ID)
	return nil
}

// RenameAll gives every record a fresh random name. One length is drawn per
// call and shared by all names; characters are drawn independently.
func (s *employeeService) RenameAll(ctx context.Context) (*RenameResult, error) {
	list, err := s.store.List(ctx)
	if err != nil {
		return nil, s.internal(ctx, "RenameAll", err)
	}
	if len(list) == 0 {
		return &RenameResult{Message: MsgNothingToRename}, nil
	}
	n := s.names.Length()
	for _, e := range list {
		e.Name = s.names.Name(n)
	}
	if err := s.store.UpdateMany(ctx, list); err != nil {
		return nil, s.internal(ctx, "RenameAll", err)
	}
	s.metrics.ObserveBulkRename(len(list))
	s.logger(ctx).Info("Employees renamed", "count", len(list), "length", n)
	return &RenameResult{Employees: list}, nil
}

func (s *employeeService) Delete(ctx context.Context, id int64) error {
	err := s.store.Delete(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return apierr.NotFound(CodeEmployeeNotFound, msgNotFound(id))
	}
	if err != nil {
		return s.internal(ctx, "Delete", err)
	}
	s.logger(ctx).Info("Employee deleted", "employee_id", id)
	return nil
}

// DeleteAll reports any store failure as a client error with a fixed message.
func (s *employeeService) DeleteAll(ctx context.Context) (string, error) {
	n, err := s.store.DeleteAll(ctx)
	if err != nil {
		s.logger(ctx).Error("DeleteAll: store failure", "error", err)
		return "", apierr.BadRequest(CodeDeleteAllFailed, MsgDeleteAllFailed)
	}
	s.metrics.SetRegistrySize(0)
	if n == 0 {
		return MsgNothingToDelete, nil
	}
	s.logger(ctx).Info("Employees deleted", "count", n)
	return MsgAllDeleted, nil
}
