package catalog

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/goccy/go-yaml"
	"github.com/google/uuid"
)

// YAMLBackend stores one YAML file per table under dir/<schema>/<table>.yaml.
// Tables without a schema live at dir/<table>.yaml, a path no schema-qualified
// table can reach.
type YAMLBackend struct {
	dir string
	mu  sync.RWMutex
}

var _ Backend = (*YAMLBackend)(nil)

// NewYAMLBackend creates dir if needed.
func NewYAMLBackend(dir string) (*YAMLBackend, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create catalog directory %s: %w", dir, err)
	}

	return &YAMLBackend{dir: dir}, nil
}

type yamlTableFile struct {
	Table   TableIdent   `yaml:"table"`
	Columns []yamlColumn `yaml:"columns"`
}

type yamlColumn struct {
	ID            string       `yaml:"id"`
	Position      int          `yaml:"position"`
	Name          string       `yaml:"name"`
	DataType      string       `yaml:"data_type"`
	Comment       string       `yaml:"comment,omitempty"`
	Nullable      bool         `yaml:"nullable"`
	AutoIncrement bool         `yaml:"auto_increment,omitempty"`
	Default       *yamlDefault `yaml:"default,omitempty"`
	Audit         yamlAudit    `yaml:"audit"`
}

type yamlDefault struct {
	Kind string `yaml:"kind"`
	Type string `yaml:"type,omitempty"`
	Text string `yaml:"text"`
}

type yamlAudit struct {
	Creator        string  `yaml:"creator"`
	CreatedAt      string  `yaml:"created_at"`
	LastModifier   *string `yaml:"last_modifier,omitempty"`
	LastModifiedAt *string `yaml:"last_modified_at,omitempty"`
}

func toYAMLColumn(rec Record) yamlColumn {
	col := yamlColumn{
		ID:            rec.ID.String(),
		Position:      rec.Position,
		Name:          rec.Name,
		DataType:      rec.DataType,
		Comment:       rec.Comment,
		Nullable:      rec.Nullable,
		AutoIncrement: rec.AutoIncrement,
		Audit: yamlAudit{
			Creator:      rec.Creator,
			CreatedAt:    formatTime(rec.CreatedAt),
			LastModifier: rec.LastModifier,
		},
	}

	if rec.DefaultKind != "" {
		col.Default = &yamlDefault{Kind: rec.DefaultKind, Type: rec.DefaultType, Text: rec.DefaultText}
	}

	if rec.LastModifiedAt != nil {
		at := formatTime(*rec.LastModifiedAt)
		col.Audit.LastModifiedAt = &at
	}

	return col
}

func (c yamlColumn) record(table TableIdent) (Record, error) {
	rec := Record{
		Table:         table,
		Position:      c.Position,
		Name:          c.Name,
		DataType:      c.DataType,
		Comment:       c.Comment,
		Nullable:      c.Nullable,
		AutoIncrement: c.AutoIncrement,
		Creator:       c.Audit.Creator,
		LastModifier:  c.Audit.LastModifier,
	}

	var err error

	if rec.ID, err = uuid.Parse(c.ID); err != nil {
		return Record{}, rec.corrupt(err)
	}

	if rec.CreatedAt, err = time.Parse(time.RFC3339Nano, c.Audit.CreatedAt); err != nil {
		return Record{}, rec.corrupt(err)
	}

	if c.Audit.LastModifiedAt != nil {
		at, err := time.Parse(time.RFC3339Nano, *c.Audit.LastModifiedAt)
		if err != nil {
			return Record{}, rec.corrupt(err)
		}

		rec.LastModifiedAt = &at
	}

	if c.Default != nil {
		rec.DefaultKind = c.Default.Kind
		rec.DefaultType = c.Default.Type
		rec.DefaultText = c.Default.Text
	}

	return rec, nil
}

func (y *YAMLBackend) path(table TableIdent) string {
	name := strings.ToLower(table.Name) + ".yaml"
	if table.Schema == "" {
		return filepath.Join(y.dir, name)
	}

	return filepath.Join(y.dir, strings.ToLower(table.Schema), name)
}

// load returns the records of table; a missing file is an empty table.
func (y *YAMLBackend) load(table TableIdent) ([]Record, error) {
	data, err := os.ReadFile(y.path(table))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}

	if err != nil {
		return nil, err
	}

	file, err := decodeTableFile(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrCorruptRecord, y.path(table), err)
	}

	if file.Table.key() != table.key() {
		return nil, fmt.Errorf("%w: %s holds table %s, not %s", ErrCorruptRecord, y.path(table), file.Table, table)
	}

	records := make([]Record, 0, len(file.Columns))

	for _, c := range file.Columns {
		rec, err := c.record(file.Table)
		if err != nil {
			return nil, err
		}

		records = append(records, rec)
	}

	return records, nil
}

func decodeTableFile(data []byte) (yamlTableFile, error) {
	var file yamlTableFile
	if err := yaml.UnmarshalWithOptions(data, &file, yaml.Strict()); err != nil {
		return yamlTableFile{}, err
	}

	return file, nil
}

// save writes records atomically, removing the file when the table becomes empty.
func (y *YAMLBackend) save(table TableIdent, records []Record) error {
	path := y.path(table)

	if len(records) == 0 {
		if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}

		return nil
	}

	sortRecords(records)

	file := yamlTableFile{Table: records[0].Table}
	for _, rec := range records {
		file.Columns = append(file.Columns, toYAMLColumn(rec))
	}

	data, err := yaml.Marshal(file)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", table, err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".snapcatalog-*.yaml")
	if err != nil {
		return err
	}

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())

		return err
	}

	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}

	return os.Rename(tmp.Name(), path)
}

func indexByName(records []Record, name string) int {
	key := nameKey(name)
	for i, rec := range records {
		if rec.NameKey() == key {
			return i
		}
	}

	return -1
}

func (y *YAMLBackend) Insert(_ context.Context, rec Record) error {
	y.mu.Lock()
	defer y.mu.Unlock()

	records, err := y.load(rec.Table)
	if err != nil {
		return err
	}

	if indexByName(records, rec.Name) >= 0 {
		return fmt.Errorf("%w: %s.%s", ErrColumnAlreadyExists, rec.Table, rec.Name)
	}

	return y.save(rec.Table, append(records, rec))
}

func (y *YAMLBackend) Update(_ context.Context, rec Record) error {
	y.mu.Lock()
	defer y.mu.Unlock()

	records, err := y.load(rec.Table)
	if err != nil {
		return err
	}

	target := -1

	for i, existing := range records {
		if existing.ID == rec.ID {
			target = i
		} else if existing.NameKey() == rec.NameKey() {
			return fmt.Errorf("%w: %s.%s", ErrColumnAlreadyExists, rec.Table, rec.Name)
		}
	}

	if target < 0 {
		return fmt.Errorf("%w: %s.%s", ErrColumnNotFound, rec.Table, rec.Name)
	}

	records[target] = rec

	return y.save(rec.Table, records)
}

func (y *YAMLBackend) Get(_ context.Context, table TableIdent, name string) (Record, error) {
	y.mu.RLock()
	defer y.mu.RUnlock()

	records, err := y.load(table)
	if err != nil {
		return Record{}, err
	}

	i := indexByName(records, name)
	if i < 0 {
		return Record{}, fmt.Errorf("%w: %s.%s", ErrColumnNotFound, table, name)
	}

	return records[i], nil
}

func (y *YAMLBackend) List(_ context.Context, table TableIdent) ([]Record, error) {
	y.mu.RLock()
	defer y.mu.RUnlock()

	records, err := y.load(table)
	if err != nil {
		return nil, err
	}

	sortRecords(records)

	return records, nil
}

func (y *YAMLBackend) Tables(_ context.Context) ([]TableIdent, error) {
	y.mu.RLock()
	defer y.mu.RUnlock()

	seen := make(map[string]TableIdent)

	err := filepath.WalkDir(y.dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if d.IsDir() || filepath.Ext(path) != ".yaml" || strings.HasPrefix(d.Name(), ".") {
			return nil
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}

		file, err := decodeTableFile(data)
		if err != nil {
			return fmt.Errorf("%w: %s: %w", ErrCorruptRecord, path, err)
		}

		seen[file.Table.key()] = file.Table

		return nil
	})
	if err != nil {
		return nil, err
	}

	return sortedTables(seen), nil
}

func (y *YAMLBackend) Delete(_ context.Context, table TableIdent, name string) error {
	y.mu.Lock()
	defer y.mu.Unlock()

	records, err := y.load(table)
	if err != nil {
		return err
	}

	i := indexByName(records, name)
	if i < 0 {
		return fmt.Errorf("%w: %s.%s", ErrColumnNotFound, table, name)
	}

	return y.save(table, append(records[:i], records[i+1:]...))
}

func (y *YAMLBackend) Close() error {
	return nil
}
