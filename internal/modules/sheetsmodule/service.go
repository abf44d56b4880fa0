package sheetsmodule

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/hashicorp/go-hclog"
	"github.com/mantonx/titleseeker/internal/logger"
	"gorm.io/gorm"
)

// ErrDisabled is returned by operations that need the spreadsheet when no
// client is configured
var ErrDisabled = errors.New("google sheets sync is disabled")

// Service moves catalog data between the spreadsheet, JSON dumps in the
// data directory and the database
type Service struct {
	db     *gorm.DB
	client Client
	dumps  dumpDir
	log    hclog.Logger
}

// NewService creates the sync service. A nil client leaves only the
// JSON dump operations available.
func NewService(db *gorm.DB, client Client, dataDir string) *Service {
	return &Service{
		db:     db,
		client: client,
		dumps:  dumpDir(dataDir),
		log:    logger.Named("sheets"),
	}
}

// Enabled reports whether a spreadsheet client is configured
func (s *Service) Enabled() bool {
	return s.client != nil
}

// Entities returns every supported entity name in export order
func Entities() []string {
	out := make([]string, len(ExportOrder))
	copy(out, ExportOrder)
	return out
}

func lookup(name string) (handler, error) {
	h, ok := registry[name]
	if !ok {
		known := make([]string, 0, len(registry))
		for k := range registry {
			known = append(known, k)
		}
		sort.Strings(known)
		return nil, fmt.Errorf("unknown entity %q, expected one of %v", name, known)
	}
	return h, nil
}

// Export reads the entity's sheet, dumps it to <data dir>/<entity>.json
// and writes new rows to the database
func (s *Service) Export(ctx context.Context, name string) (Result, error) {
	h, err := lookup(name)
	if err != nil {
		return Result{Entity: name}, err
	}
	if !s.Enabled() {
		return Result{Entity: name}, ErrDisabled
	}
	res, err := h.export(ctx, s)
	if err != nil {
		return res, err
	}
	s.log.Info("Export finished", "entity", name, "read", res.Read, "written", res.Written)
	return res, nil
}

// ExportFromJSON writes the entity's dump to the database. A positive
// limit keeps only the first limit records.
func (s *Service) ExportFromJSON(ctx context.Context, name string, limit int) (Result, error) {
	h, err := lookup(name)
	if err != nil {
		return Result{Entity: name}, err
	}
	res, err := h.fromJSON(ctx, s, limit)
	if err != nil {
		return res, err
	}
	s.log.Info("Export from dump finished", "entity", name, "read", res.Read, "written", res.Written)
	return res, nil
}

// AppendLatest appends the newest database row of the entity to its sheet
func (s *Service) AppendLatest(ctx context.Context, name string) error {
	h, err := lookup(name)
	if err != nil {
		return err
	}
	if !s.Enabled() {
		return ErrDisabled
	}
	if err := h.appendLatest(ctx, s); err != nil {
		s.log.Error("Failed to append row to spreadsheet", "entity", name, "error", err)
		return err
	}
	s.log.Info("Row appended to spreadsheet", "entity", name)
	return nil
}

// writeAll runs write in one transaction
func writeAll[T any](ctx context.Context, s *Service, write func(*gorm.DB, []T) (int, error), items []T) (int, error) {
	var n int
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		n, err = write(tx, items)
		return err
	})
	return n, err
}

// dumpDir stores one JSON file per entity: {"<entity>": [...]}
type dumpDir string

func (d dumpDir) path(name string) string {
	return filepath.Join(string(d), name+".json")
}

func (d dumpDir) save(name string, items interface{}) (string, error) {
	if err := os.MkdirAll(string(d), 0755); err != nil {
		return "", fmt.Errorf("create data dir: %w", err)
	}
	b, err := json.MarshalIndent(map[string]interface{}{name: items}, "", "    ")
	if err != nil {
		return "", err
	}
	path := d.path(name)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, b, 0644); err != nil {
		return "", err
	}
	return path, os.Rename(tmp, path)
}

func (d dumpDir) load(name string, items interface{}) error {
	b, err := os.ReadFile(d.path(name))
	if err != nil {
		return fmt.Errorf("read dump: %w", err)
	}
	var file map[string]json.RawMessage
	if err := json.Unmarshal(b, &file); err != nil {
		return fmt.Errorf("parse %s: %w", d.path(name), err)
	}
	raw, ok := file[name]
	if !ok {
		return fmt.Errorf("%s has no %q list", d.path(name), name)
	}
	return json.Unmarshal(raw, items)
}
