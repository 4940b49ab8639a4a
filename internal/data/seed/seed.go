package seed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/yungbote/employee-registry/internal/data/store"
	"github.com/yungbote/employee-registry/internal/domain/employee"
	"github.com/yungbote/employee-registry/internal/platform/logger"
)

// File is the fixture layout:
//
//	employees:
//	  - id: 1
//	    name: Ivan
//	    companyName: Acme
//	    salary: 100
type File struct {
	Employees []employee.Employee `json:"employees" yaml:"employees"`
}

// Parse decodes raw as JSON when ext is ".json", YAML otherwise.
func Parse(raw []byte, ext string) (*File, error) {
	var f File
	switch strings.ToLower(ext) {
	case ".json":
		if err := json.Unmarshal(raw, &f); err != nil {
			return nil, fmt.Errorf("parse json fixture: %w", err)
		}
	default:
		if err := yaml.Unmarshal(raw, &f); err != nil {
			return nil, fmt.Errorf("parse yaml fixture: %w", err)
		}
	}
	return &f, nil
}

// Load inserts the fixture at path into s. Records with a negative id or an
// id already present are skipped with a warning. It returns how many
// records were inserted.
func Load(ctx context.Context, log *logger.Logger, s store.Store, path string) (int, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return 0, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("read fixture %s: %w", path, err)
	}
	f, err := Parse(raw, filepath.Ext(path))
	if err != nil {
		return 0, err
	}

	seedLog := log.With("component", "seed", "path", path)
	inserted := 0
	for i := range f.Employees {
		e := f.Employees[i]
		e.CompanyName = employee.NormalizeCompany(e.CompanyName)
		if e.ID < 0 {
			seedLog.Warn("skipping fixture record with negative id", "employee_id", e.ID)
			continue
		}
		err := s.Insert(ctx, &e)
		if errors.Is(err, store.ErrAlreadyExists) {
			seedLog.Warn("skipping duplicate fixture record", "employee_id", e.ID)
			continue
		}
		if err != nil {
			return inserted, fmt.Errorf("seed id=%d: %w", e.ID, err)
		}
		inserted++
	}
	seedLog.Info("Fixture loaded", "inserted", inserted, "total", len(f.Employees))
	return inserted, nil
}
