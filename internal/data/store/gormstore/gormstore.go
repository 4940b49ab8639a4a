package gormstore

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/yungbote/employee-registry/internal/data/store"
	"github.com/yungbote/employee-registry/internal/domain/employee"
	"github.com/yungbote/employee-registry/internal/pkg/dbctx"
	"github.com/yungbote/employee-registry/internal/platform/logger"
)

type gormStore struct {
	db  *gorm.DB
	log *logger.Logger
}

// New wraps an open, migrated connection.
func New(db *gorm.DB, baseLog *logger.Logger) store.Store {
	return &gormStore{db: db, log: baseLog.With("store", "gorm", "dialect", db.Dialector.Name())}
}

func (s *gormStore) tx(dbc dbctx.Context) *gorm.DB {
	txx := dbc.Tx
	if txx == nil {
		txx = s.db
	}
	return txx.WithContext(dbc.Ctx)
}

func (s *gormStore) List(ctx context.Context) ([]*employee.Employee, error) {
	var out []*employee.Employee
	if err := s.tx(dbctx.Context{Ctx: ctx}).Order("id ASC").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("list: %w", err)
	}
	return out, nil
}

func (s *gormStore) Get(ctx context.Context, id int64) (*employee.Employee, error) {
	return s.get(dbctx.Context{Ctx: ctx}, id)
}

func (s *gormStore) get(dbc dbctx.Context, id int64) (*employee.Employee, error) {
	var e employee.Employee
	err := s.tx(dbc).Where("id = ?", id).Take(&e).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("get id=%d: %w", id, store.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get id=%d: %w", id, err)
	}
	return &e, nil
}

func (s *gormStore) exists(dbc dbctx.Context, id int64) (bool, error) {
	var n int64
	if err := s.tx(dbc).Model(&employee.Employee{}).Where("id = ?", id).Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *gormStore) Insert(ctx context.Context, e *employee.Employee) error {
	if e == nil {
		return fmt.Errorf("insert: nil employee")
	}
	row := e.Clone()
	return s.db.WithContext(ctx).Transaction(func(txx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: txx}
		found, err := s.exists(dbc, row.ID)
		if err != nil {
			return fmt.Errorf("insert id=%d: %w", row.ID, err)
		}
		if found {
			return fmt.Errorf("insert id=%d: %w", row.ID, store.ErrAlreadyExists)
		}
		if err := s.tx(dbc).Create(row).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return fmt.Errorf("insert id=%d: %w", row.ID, store.ErrAlreadyExists)
			}
			return fmt.Errorf("insert id=%d: %w", row.ID, err)
		}
		return nil
	})
}

// update writes every mutable column, including a nil company, so a
// replacement never keeps stale values the way a struct-based Updates would.
func (s *gormStore) update(dbc dbctx.Context, e *employee.Employee) error {
	res := s.tx(dbc).
		Model(&employee.Employee{}).
		Where("id = ?", e.ID).
		Updates(map[string]interface{}{
			"name":            e.Name,
			"company_name":    e.CompanyName,
			"salary":          e.Salary,
			"is_confidential": e.IsConfidential,
		})
	if res.Error != nil {
		return fmt.Errorf("update id=%d: %w", e.ID, res.Error)
	}
	if res.RowsAffected > 0 {
		return nil
	}
	found, err := s.exists(dbc, e.ID)
	if err != nil {
		return fmt.Errorf("update id=%d: %w", e.ID, err)
	}
	if !found {
		return fmt.Errorf("update id=%d: %w", e.ID, store.ErrNotFound)
	}
	return fmt.Errorf("update id=%d: %w", e.ID, store.ErrConflict)
}

func (s *gormStore) Update(ctx context.Context, e *employee.Employee) error {
	if e == nil {
		return fmt.Errorf("update: nil employee")
	}
	return s.update(dbctx.Context{Ctx: ctx}, e)
}

func (s *gormStore) UpdateMany(ctx context.Context, list []*employee.Employee) error {
	if len(list) == 0 {
		return nil
	}
	return s.db.WithContext(ctx).Transaction(func(txx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: txx}
		for _, e := range list {
			if e == nil {
				return fmt.Errorf("update many: nil employee")
			}
			if err := s.update(dbc, e); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *gormStore) Delete(ctx context.Context, id int64) error {
	res := s.tx(dbctx.Context{Ctx: ctx}).Where("id = ?", id).Delete(&employee.Employee{})
	if res.Error != nil {
		return fmt.Errorf("delete id=%d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("delete id=%d: %w", id, store.ErrNotFound)
	}
	return nil
}

func (s *gormStore) DeleteAll(ctx context.Context) (int64, error) {
	res := s.tx(dbctx.Context{Ctx: ctx}).
		Session(&gorm.Session{AllowGlobalUpdate: true}).
		Delete(&employee.Employee{})
	if res.Error != nil {
		return 0, fmt.Errorf("delete all: %w", res.Error)
	}
	if res.RowsAffected > 0 {
		s.log.Debug("registry cleared", "removed", res.RowsAffected)
	}
	return res.RowsAffected, nil
}

// Close is a no-op; the connection is owned by whoever opened it.
func (s *gormStore) Close() error { return nil }
