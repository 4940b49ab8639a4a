package gormstore

import (
	"os"
	"testing"

	"github.com/google/uuid"

	"github.com/yungbote/employee-registry/internal/data/db"
	"github.com/yungbote/employee-registry/internal/data/store"
	"github.com/yungbote/employee-registry/internal/data/store/storetest"
	"github.com/yungbote/employee-registry/internal/platform/logger"
)

func TestSQLiteStoreContract(t *testing.T) {
	log, _ := logger.New("test")
	storetest.Run(t, func(tb testing.TB) store.Store {
		tb.Helper()
		conn, err := db.Open(db.Config{
			Driver: db.DriverSQLite,
			DSN:    "file:" + uuid.NewString() + "?mode=memory&cache=shared",
		}, log)
		if err != nil {
			tb.Fatalf("open sqlite: %v", err)
		}
		tb.Cleanup(func() { _ = db.Close(conn) })
		return New(conn, log)
	})
}

func TestPostgresStoreContract(t *testing.T) {
	dsn := os.Getenv("TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("set TEST_POSTGRES_DSN to run postgres store tests")
	}
	log, _ := logger.New("test")
	conn, err := db.Open(db.Config{Driver: db.DriverPostgres, DSN: dsn}, log)
	if err != nil {
		t.Fatalf("open postgres: %v", err)
	}
	t.Cleanup(func() { _ = db.Close(conn) })
	storetest.Run(t, func(tb testing.TB) store.Store {
		s := New(conn, log)
		if _, err := s.DeleteAll(t.Context()); err != nil {
			tb.Fatalf("reset: %v", err)
		}
		return s
	})
}
