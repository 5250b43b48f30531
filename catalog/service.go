package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/google/uuid"

	"github.com/shibukawa/snapcatalog/audit"
	"github.com/shibukawa/snapcatalog/rel"
	"github.com/shibukawa/snapcatalog/types"
)

// Service is the catalog's column API. It validates columns, attaches audit
// info and persists them through a Backend.
//
// A Service is safe for concurrent use. Column positions are allocated under
// a lock held by the Service, so writers in other processes sharing the same
// backend may still pick colliding positions; names stay unique either way.
type Service struct {
	Backend Backend
	Stamper *audit.Stamper
	Logger  *slog.Logger

	// ColumnOptions are passed to rel.Of whenever a column is (re)validated.
	ColumnOptions []rel.Option

	// mu serializes position allocation and insertion in CreateColumn.
	mu sync.Mutex
}

// NewService creates a service. A nil logger discards log output.
func NewService(backend Backend, stamper *audit.Stamper, logger *slog.Logger, opts ...rel.Option) *Service {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	return &Service{Backend: backend, Stamper: stamper, Logger: logger, ColumnOptions: opts}
}

func (s *Service) logger() *slog.Logger {
	if s.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}

	return s.Logger
}

// CreateColumn validates col, stamps creation audit info and appends it to table.
func (s *Service) CreateColumn(ctx context.Context, table TableIdent, col rel.Column) (rel.Column, error) {
	if err := table.Validate(); err != nil {
		return nil, err
	}

	c, err := rel.Copy(col, s.ColumnOptions...)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	existing, err := s.Backend.List(ctx, table)
	if err != nil {
		return nil, err
	}

	position := 1

	for _, rec := range existing {
		if rec.NameKey() == nameKey(c.Name()) {
			return nil, fmt.Errorf("%w: %s.%s", ErrColumnAlreadyExists, table, c.Name())
		}

		position = max(position, rec.Position+1)
	}

	info, err := s.Stamper.Created(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to stamp audit info: %w", err)
	}

	stamped := rel.WithAuditInfo(c, info)

	rec, err := ToRecord(uuid.New(), table, position, stamped)
	if err != nil {
		return nil, err
	}

	if err := s.Backend.Insert(ctx, rec); err != nil {
		return nil, err
	}

	s.logger().InfoContext(ctx, "column created",
		slog.String("table", table.String()),
		slog.String("column", c.Name()),
		slog.String("type", c.DataType().String()),
		slog.String("creator", info.Creator()))

	return stamped, nil
}

// ColumnDraft is the mutable working copy AlterColumn applies changes to.
type ColumnDraft struct {
	Name          string
	DataType      types.Type
	Comment       string
	Nullable      bool
	AutoIncrement bool
	Default       rel.Default
}

// Change modifies a ColumnDraft.
type Change func(*ColumnDraft)

func UpdateComment(comment string) Change {
	return func(d *ColumnDraft) { d.Comment = comment }
}

func UpdateNullability(nullable bool) Change {
	return func(d *ColumnDraft) { d.Nullable = nullable }
}

func UpdateDefault(def rel.Default) Change {
	return func(d *ColumnDraft) { d.Default = def }
}

func UpdateType(t types.Type) Change {
	return func(d *ColumnDraft) { d.DataType = t }
}

func RenameColumn(name string) Change {
	return func(d *ColumnDraft) { d.Name = name }
}

func UpdateAutoIncrement(autoIncrement bool) Change {
	return func(d *ColumnDraft) { d.AutoIncrement = autoIncrement }
}

// AlterColumn applies changes to the named column, re-validates it and
// refreshes its last-modified audit fields. Creation fields are preserved.
func (s *Service) AlterColumn(ctx context.Context, table TableIdent, name string, changes ...Change) (rel.Column, error) {
	rec, err := s.Backend.Get(ctx, table, name)
	if err != nil {
		return nil, err
	}

	current, err := rec.Column(s.ColumnOptions...)
	if err != nil {
		return nil, err
	}

	draft := ColumnDraft{
		Name:          current.Name(),
		DataType:      current.DataType(),
		Comment:       current.Comment(),
		Nullable:      current.Nullable(),
		AutoIncrement: current.AutoIncrement(),
		Default:       current.DefaultValue(),
	}

	for _, change := range changes {
		change(&draft)
	}

	next, err := rel.Of(draft.Name, draft.DataType, draft.Comment, draft.Nullable, draft.AutoIncrement, draft.Default, s.ColumnOptions...)
	if err != nil {
		return nil, err
	}

	info, err := s.Stamper.Modified(ctx, current.AuditInfo().MustGet())
	if err != nil {
		return nil, fmt.Errorf("failed to stamp audit info: %w", err)
	}

	stamped := rel.WithAuditInfo(next, info)

	updated, err := ToRecord(rec.ID, rec.Table, rec.Position, stamped)
	if err != nil {
		return nil, err
	}

	if err := s.Backend.Update(ctx, updated); err != nil {
		return nil, err
	}

	s.logger().InfoContext(ctx, "column altered",
		slog.String("table", table.String()),
		slog.String("column", name),
		slog.String("new_name", next.Name()),
		slog.String("modifier", info.LastModifier().OrElse("")))

	return stamped, nil
}

func (s *Service) GetColumn(ctx context.Context, table TableIdent, name string) (rel.Column, error) {
	rec, err := s.Backend.Get(ctx, table, name)
	if err != nil {
		return nil, err
	}

	return rec.Column(s.ColumnOptions...)
}

// ListColumns returns the table's columns in position order.
func (s *Service) ListColumns(ctx context.Context, table TableIdent) ([]rel.Column, error) {
	records, err := s.Backend.List(ctx, table)
	if err != nil {
		return nil, err
	}

	columns := make([]rel.Column, 0, len(records))

	for _, rec := range records {
		c, err := rec.Column(s.ColumnOptions...)
		if err != nil {
			return nil, err
		}

		columns = append(columns, c)
	}

	return columns, nil
}

func (s *Service) DropColumn(ctx context.Context, table TableIdent, name string) error {
	if err := s.Backend.Delete(ctx, table, name); err != nil {
		return err
	}

	s.logger().InfoContext(ctx, "column dropped", slog.String("table", table.String()), slog.String("column", name))

	return nil
}

func (s *Service) ListTables(ctx context.Context) ([]TableIdent, error) {
	return s.Backend.Tables(ctx)
}

// ImportResult reports which columns ImportColumns created and which it skipped.
type ImportResult struct {
	Table   TableIdent
	Created []string
	Skipped []string
}

// ImportColumns creates every column of cols that does not exist yet.
func (s *Service) ImportColumns(ctx context.Context, table TableIdent, cols []rel.Column) (ImportResult, error) {
	result := ImportResult{Table: table}

	records, err := s.Backend.List(ctx, table)
	if err != nil {
		return result, err
	}

	existing := make([]string, 0, len(records))
	for _, rec := range records {
		existing = append(existing, rec.NameKey())
	}

	for _, col := range cols {
		if slices.Contains(existing, nameKey(col.Name())) {
			result.Skipped = append(result.Skipped, col.Name())
			s.logger().DebugContext(ctx, "column already in catalog", slog.String("table", table.String()), slog.String("column", col.Name()))

			continue
		}

		if _, err := s.CreateColumn(ctx, table, col); err != nil {
			return result, fmt.Errorf("failed to import %s.%s: %w", table, col.Name(), err)
		}

		existing = append(existing, nameKey(col.Name()))
		result.Created = append(result.Created, col.Name())
	}

	return result, nil
}
