package i18n

import (
	"context"
	"maps"
	"sync"

	"github.com/jackc/pgx/v5/pgtype"
)

type rowKey struct {
	table   string
	id      int64
	culture string
}

// Memory is a Backend held in process memory. Every Upsert is journaled
// so a caller can Rollback to an earlier Mark.
type Memory struct {
	mu      sync.RWMutex
	rows    map[rowKey]map[string]string
	journal []func()
}

// NewMemory returns an empty Memory backend.
func NewMemory() *Memory {
	return &Memory{rows: make(map[rowKey]map[string]string)}
}

func (m *Memory) Lookup(ctx context.Context, table string, id int64, culture, column string) (pgtype.Text, bool, error) {
	if err := ctx.Err(); err != nil {
		return pgtype.Text{}, false, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	row, ok := m.rows[rowKey{table, id, culture}]
	if !ok {
		return pgtype.Text{}, false, nil
	}
	v, set := row[column]
	return pgtype.Text{String: v, Valid: set}, true, nil
}

func (m *Memory) Upsert(ctx context.Context, table string, id int64, culture string, values map[string]string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	k := rowKey{table, id, culture}
	row, ok := m.rows[k]
	if ok {
		prev := maps.Clone(row)
		m.journal = append(m.journal, func() { m.rows[k] = prev })
		row = maps.Clone(row)
	} else {
		m.journal = append(m.journal, func() { delete(m.rows, k) })
		row = make(map[string]string, len(values))
	}
	maps.Copy(row, values)
	m.rows[k] = row
	return nil
}

// Mark returns the current journal position.
func (m *Memory) Mark() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.journal)
}

// Rollback undoes every Upsert made after mark.
func (m *Memory) Rollback(mark int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := len(m.journal) - 1; i >= mark; i-- {
		m.journal[i]()
	}
	m.journal = m.journal[:mark]
}

// Forget drops the journal entries after mark, keeping their writes.
func (m *Memory) Forget(mark int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.journal = m.journal[:mark]
}
