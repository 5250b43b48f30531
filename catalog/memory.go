package catalog

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// MemoryBackend keeps records in process memory.
type MemoryBackend struct {
	mu      sync.RWMutex
	records map[uuid.UUID]Record
}

var _ Backend = (*MemoryBackend)(nil)

func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{records: make(map[uuid.UUID]Record)}
}

func (m *MemoryBackend) Insert(_ context.Context, rec Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.records[rec.ID]; ok {
		return fmt.Errorf("%w: duplicate id %s", ErrColumnAlreadyExists, rec.ID)
	}

	if m.conflict(rec) {
		return fmt.Errorf("%w: %s.%s", ErrColumnAlreadyExists, rec.Table, rec.Name)
	}

	m.records[rec.ID] = rec

	return nil
}

func (m *MemoryBackend) Update(_ context.Context, rec Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.records[rec.ID]; !ok {
		return fmt.Errorf("%w: %s.%s", ErrColumnNotFound, rec.Table, rec.Name)
	}

	if m.conflict(rec) {
		return fmt.Errorf("%w: %s.%s", ErrColumnAlreadyExists, rec.Table, rec.Name)
	}

	m.records[rec.ID] = rec

	return nil
}

// conflict reports whether another record in rec's table has the same name key.
func (m *MemoryBackend) conflict(rec Record) bool {
	for id, existing := range m.records {
		if id != rec.ID && existing.Table.key() == rec.Table.key() && existing.NameKey() == rec.NameKey() {
			return true
		}
	}

	return false
}

func (m *MemoryBackend) Get(_ context.Context, table TableIdent, name string) (Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	key := nameKey(name)
	for _, rec := range m.records {
		if rec.Table.key() == table.key() && rec.NameKey() == key {
			return rec, nil
		}
	}

	return Record{}, fmt.Errorf("%w: %s.%s", ErrColumnNotFound, table, name)
}

func (m *MemoryBackend) List(_ context.Context, table TableIdent) ([]Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []Record

	for _, rec := range m.records {
		if rec.Table.key() == table.key() {
			result = append(result, rec)
		}
	}

	sortRecords(result)

	return result, nil
}

func (m *MemoryBackend) Tables(_ context.Context) ([]TableIdent, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	seen := make(map[string]TableIdent)
	for _, rec := range m.records {
		seen[rec.Table.key()] = rec.Table
	}

	return sortedTables(seen), nil
}

func (m *MemoryBackend) Delete(_ context.Context, table TableIdent, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := nameKey(name)
	for id, rec := range m.records {
		if rec.Table.key() == table.key() && rec.NameKey() == key {
			delete(m.records, id)
			return nil
		}
	}

	return fmt.Errorf("%w: %s.%s", ErrColumnNotFound, table, name)
}

func (m *MemoryBackend) Close() error {
	return nil
}
