package store

import (
	"context"
	"errors"

	"github.com/yungbote/employee-registry/internal/domain/employee"
)

var (
	// ErrNotFound means no record carries the requested id.
	ErrNotFound = errors.New("employee not found")
	// ErrAlreadyExists means an insert collided with a stored id.
	ErrAlreadyExists = errors.New("employee already exists")
	// ErrConflict means a write lost a race against a concurrent writer
	// while the record still exists.
	ErrConflict = errors.New("concurrent modification")
)

// Store is the persistence capability behind the registry. Implementations
// must be safe for concurrent use and return copies, never shared state.
type Store interface {
	// List returns every record ordered by ascending id.
	List(ctx context.Context) ([]*employee.Employee, error)
	Get(ctx context.Context, id int64) (*employee.Employee, error)
	Insert(ctx context.Context, e *employee.Employee) error
	// Update replaces every field of the record with e.ID.
	Update(ctx context.Context, e *employee.Employee) error
	// UpdateMany replaces all given records atomically: either every record
	// is written or none is.
	UpdateMany(ctx context.Context, list []*employee.Employee) error
	Delete(ctx context.Context, id int64) error
	// DeleteAll removes every record and reports how many were removed.
	DeleteAll(ctx context.Context) (int64, error)
	Close() error
}
