// Package i18n stores translated text for Qubit entities.
//
// Every translatable entity has a companion <table>_i18n table keyed by
// (id, culture). A Translator reads one field in one culture and falls back
// to a configured culture when the requested one has no row.
package i18n

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgtype"

	"github.com/JonMunkholm/qubit/internal/database"
	"github.com/JonMunkholm/qubit/internal/nestedset"
)

// ErrUnknownField is returned for a field name the table does not define.
var ErrUnknownField = errors.New("unknown translation field")

// Backend reads and writes rows of the i18n tables.
type Backend interface {
	// Lookup returns the column value of the (id, culture) row. found is
	// false when no such row exists; a NULL column is found with an
	// invalid Text.
	Lookup(ctx context.Context, table string, id int64, culture, column string) (pgtype.Text, bool, error)

	// Upsert updates the given columns of the (id, culture) row, inserting
	// the row first if needed.
	Upsert(ctx context.Context, table string, id int64, culture string, values map[string]string) error
}

// Translator gives typed access to one i18n table.
type Translator[F ~string] struct {
	table    Table[F]
	backend  Backend
	fallback string
}

// New returns a Translator for table over backend. Reads of a culture with
// no row fall back to the fallback culture.
func New[F ~string](table Table[F], backend Backend, fallback string) *Translator[F] {
	return &Translator[F]{table: table, backend: backend, fallback: fallback}
}

// TableName is the i18n table the translator reads, e.g. "actor_i18n".
func (t *Translator[F]) TableName() string { return t.table.Name }

// FieldNames lists the translatable columns in declaration order.
func (t *Translator[F]) FieldNames() []string { return t.table.FieldNames() }

// Text returns field of entity id in culture. If culture has no row the
// fallback culture is tried. NULL reads as "".
func (t *Translator[F]) Text(ctx context.Context, id int64, culture string, field F) (string, error) {
	if id <= 0 {
		return "", fmt.Errorf("%s: %w", t.table.Name, nestedset.ErrUnsavedEntity)
	}
	if _, ok := t.table.Parse(string(field)); !ok {
		return "", fmt.Errorf("%s.%s: %w", t.table.Name, field, ErrUnknownField)
	}
	if culture == "" {
		culture = t.fallback
	}

	v, found, err := t.backend.Lookup(ctx, t.table.Name, id, culture, string(field))
	if err != nil {
		return "", fmt.Errorf("read %s.%s: %w", t.table.Name, field, err)
	}
	if !found && culture != t.fallback {
		slog.Debug("translation fallback",
			"table", t.table.Name,
			"id", id,
			"culture", culture,
			"fallback", t.fallback,
		)
		v, found, err = t.backend.Lookup(ctx, t.table.Name, id, t.fallback, string(field))
		if err != nil {
			return "", fmt.Errorf("read %s.%s: %w", t.table.Name, field, err)
		}
	}
	if !found {
		return "", fmt.Errorf("%s row for id %d in %q: %w", t.table.Name, id, culture, nestedset.ErrNotFound)
	}
	return database.FromPgText(v), nil
}

// SetText writes values for entity id in culture.
func (t *Translator[F]) SetText(ctx context.Context, id int64, culture string, values map[F]string) error {
	if id <= 0 {
		return fmt.Errorf("%s: %w", t.table.Name, nestedset.ErrUnsavedEntity)
	}
	if culture == "" {
		culture = t.fallback
	}
	cols := make(map[string]string, len(values))
	for f, v := range values {
		if _, ok := t.table.Parse(string(f)); !ok {
			return fmt.Errorf("%s.%s: %w", t.table.Name, f, ErrUnknownField)
		}
		cols[string(f)] = v
	}
	if err := t.backend.Upsert(ctx, t.table.Name, id, culture, cols); err != nil {
		return fmt.Errorf("write %s: %w", t.table.Name, err)
	}
	return nil
}

// Texts is the string-keyed view of a Translator used where the entity
// kind is only known at run time.
type Texts interface {
	TableName() string
	FieldNames() []string
	TextByName(ctx context.Context, id int64, culture, field string) (string, error)
	SetTextByName(ctx context.Context, id int64, culture string, values map[string]string) error
}

func (t *Translator[F]) TextByName(ctx context.Context, id int64, culture, field string) (string, error) {
	f, ok := t.table.Parse(field)
	if !ok {
		return "", fmt.Errorf("%s.%s: %w", t.table.Name, field, ErrUnknownField)
	}
	return t.Text(ctx, id, culture, f)
}

func (t *Translator[F]) SetTextByName(ctx context.Context, id int64, culture string, values map[string]string) error {
	typed := make(map[F]string, len(values))
	for name, v := range values {
		f, ok := t.table.Parse(name)
		if !ok {
			return fmt.Errorf("%s.%s: %w", t.table.Name, name, ErrUnknownField)
		}
		typed[f] = v
	}
	return t.SetText(ctx, id, culture, typed)
}

var _ Texts = (*Translator[ActorField])(nil)
