package redisstore

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/employee-registry/internal/data/store"
	"github.com/yungbote/employee-registry/internal/domain/employee"
	"github.com/yungbote/employee-registry/internal/platform/logger"
)

// Each employee is a hash at "<prefix>:<id>"; "<prefix>:ids" is the set of
// stored ids. Writes run under WATCH so a concurrent writer aborts the
// transaction instead of interleaving with it.

const (
	fieldName         = "name"
	fieldCompany      = "company_name"
	fieldSalary       = "salary"
	fieldConfidential = "is_confidential"

	maxTxRetries = 5
)

type existsChecker interface {
	Exists(ctx context.Context, keys ...string) *goredis.IntCmd
}

type redisStore struct {
	rdb    goredis.UniversalClient
	log    *logger.Logger
	prefix string
}

func New(rdb goredis.UniversalClient, baseLog *logger.Logger, prefix string) store.Store {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		prefix = "employee"
	}
	return &redisStore{rdb: rdb, log: baseLog.With("store", "redis", "prefix", prefix), prefix: prefix}
}

func (s *redisStore) key(id int64) string { return s.prefix + ":" + strconv.FormatInt(id, 10) }
func (s *redisStore) idsKey() string      { return s.prefix + ":ids" }

func encode(e *employee.Employee) map[string]interface{} {
	fields := map[string]interface{}{
		fieldName:         e.Name,
		fieldSalary:       e.Salary,
		fieldConfidential: strconv.FormatBool(e.IsConfidential),
	}
	if e.CompanyName != nil {
		fields[fieldCompany] = *e.CompanyName
	}
	return fields
}

func decode(id int64, fields map[string]string) (*employee.Employee, error) {
	salary, err := strconv.Atoi(fields[fieldSalary])
	if err != nil {
		return nil, fmt.Errorf("decode id=%d salary: %w", id, err)
	}
	confidential, err := strconv.ParseBool(fields[fieldConfidential])
	if err != nil {
		return nil, fmt.Errorf("decode id=%d is_confidential: %w", id, err)
	}
	e := &employee.Employee{
		ID:             id,
		Name:           fields[fieldName],
		Salary:         salary,
		IsConfidential: confidential,
	}
	if c, ok := fields[fieldCompany]; ok {
		e.CompanyName = &c
	}
	return e, nil
}

// write replaces the hash wholesale so a dropped company does not linger.
func (s *redisStore) write(ctx context.Context, pipe goredis.Pipeliner, e *employee.Employee) {
	k := s.key(e.ID)
	pipe.Del(ctx, k)
	pipe.HSet(ctx, k, encode(e))
	pipe.SAdd(ctx, s.idsKey(), e.ID)
}

// watch runs fn under WATCH, retrying when another client touched the keys.
// onLost decides the error once retries are exhausted.
func (s *redisStore) watch(ctx context.Context, fn func(tx *goredis.Tx) error, onLost func() error, keys ...string) error {
	for attempt := 0; attempt < maxTxRetries; attempt++ {
		err := s.rdb.Watch(ctx, fn, keys...)
		if !errors.Is(err, goredis.TxFailedErr) {
			return err
		}
		s.log.Debug("redis transaction lost race, retrying", "attempt", attempt+1, "keys", keys)
	}
	return onLost()
}

func (s *redisStore) List(ctx context.Context) ([]*employee.Employee, error) {
	raw, err := s.rdb.SMembers(ctx, s.idsKey()).Result()
	if err != nil {
		return nil, fmt.Errorf("list ids: %w", err)
	}
	ids := make([]int64, 0, len(raw))
	for _, r := range raw {
		id, err := strconv.ParseInt(r, 10, 64)
		if err != nil {
			s.log.Warn("skipping malformed id in index", "raw", r)
			continue
		}
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	cmds := make([]*goredis.MapStringStringCmd, len(ids))
	if _, err := s.rdb.Pipelined(ctx, func(pipe goredis.Pipeliner) error {
		for i, id := range ids {
			cmds[i] = pipe.HGetAll(ctx, s.key(id))
		}
		return nil
	}); err != nil {
		return nil, fmt.Errorf("list: %w", err)
	}

	out := make([]*employee.Employee, 0, len(ids))
	for i, id := range ids {
		fields := cmds[i].Val()
		if len(fields) == 0 {
			// deleted between SMEMBERS and HGETALL
			continue
		}
		e, err := decode(id, fields)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

func (s *redisStore) Get(ctx context.Context, id int64) (*employee.Employee, error) {
	fields, err := s.rdb.HGetAll(ctx, s.key(id)).Result()
	if err != nil {
		return nil, fmt.Errorf("get id=%d: %w", id, err)
	}
	if len(fields) == 0 {
		return nil, fmt.Errorf("get id=%d: %w", id, store.ErrNotFound)
	}
	return decode(id, fields)
}

func (s *redisStore) Insert(ctx context.Context, e *employee.Employee) error {
	if e == nil {
		return fmt.Errorf("insert: nil employee")
	}
	k := s.key(e.ID)
	fn := func(tx *goredis.Tx) error {
		n, err := tx.Exists(ctx, k).Result()
		if err != nil {
			return err
		}
		if n > 0 {
			return fmt.Errorf("insert id=%d: %w", e.ID, store.ErrAlreadyExists)
		}
		_, err = tx.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
			s.write(ctx, pipe, e)
			return nil
		})
		return err
	}
	return s.watch(ctx, fn, func() error {
		return fmt.Errorf("insert id=%d: %w", e.ID, store.ErrConflict)
	}, k)
}

func (s *redisStore) Update(ctx context.Context, e *employee.Employee) error {
	if e == nil {
		return fmt.Errorf("update: nil employee")
	}
	return s.UpdateMany(ctx, []*employee.Employee{e})
}

func (s *redisStore) UpdateMany(ctx context.Context, list []*employee.Employee) error {
	if len(list) == 0 {
		return nil
	}
	keys := make([]string, 0, len(list))
	for _, e := range list {
		if e == nil {
			return fmt.Errorf("update many: nil employee")
		}
		keys = append(keys, s.key(e.ID))
	}
	missing := func(tx existsChecker) (int64, error) {
		for _, e := range list {
			n, err := tx.Exists(ctx, s.key(e.ID)).Result()
			if err != nil {
				return 0, err
			}
			if n == 0 {
				return e.ID, nil
			}
		}
		return -1, nil
	}
	fn := func(tx *goredis.Tx) error {
		id, err := missing(tx)
		if err != nil {
			return err
		}
		if id >= 0 {
			return fmt.Errorf("update id=%d: %w", id, store.ErrNotFound)
		}
		_, err = tx.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
			for _, e := range list {
				s.write(ctx, pipe, e)
			}
			return nil
		})
		return err
	}
	return s.watch(ctx, fn, func() error {
		id, err := missing(s.rdb)
		if err != nil {
			return err
		}
		if id >= 0 {
			return fmt.Errorf("update id=%d: %w", id, store.ErrNotFound)
		}
		return fmt.Errorf("update: %w", store.ErrConflict)
	}, keys...)
}

func (s *redisStore) Delete(ctx context.Context, id int64) error {
	k := s.key(id)
	fn := func(tx *goredis.Tx) error {
		n, err := tx.Exists(ctx, k).Result()
		if err != nil {
			return err
		}
		if n == 0 {
			return fmt.Errorf("delete id=%d: %w", id, store.ErrNotFound)
		}
		_, err = tx.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
			pipe.Del(ctx, k)
			pipe.SRem(ctx, s.idsKey(), id)
			return nil
		})
		return err
	}
	return s.watch(ctx, fn, func() error {
		return fmt.Errorf("delete id=%d: %w", id, store.ErrConflict)
	}, k)
}

func (s *redisStore) DeleteAll(ctx context.Context) (int64, error) {
	var removed int64
	fn := func(tx *goredis.Tx) error {
		ids, err := tx.SMembers(ctx, s.idsKey()).Result()
		if err != nil {
			return err
		}
		removed = int64(len(ids))
		if removed == 0 {
			return nil
		}
		_, err = tx.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
			for _, raw := range ids {
				pipe.Del(ctx, s.prefix+":"+raw)
			}
			pipe.Del(ctx, s.idsKey())
			return nil
		})
		return err
	}
	err := s.watch(ctx, fn, func() error {
		return fmt.Errorf("delete all: %w", store.ErrConflict)
	}, s.idsKey())
	if err != nil {
		return 0, err
	}
	return removed, nil
}

func (s *redisStore) Close() error {
	return s.rdb.Close()
}
