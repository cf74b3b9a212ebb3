package i18n

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/JonMunkholm/qubit/internal/database"
)

// Postgres is a Backend over the <table>_i18n tables of a Qubit database.
type Postgres struct {
	db database.DBTX
}

// NewPostgres returns a Backend over the i18n tables reachable via db.
func NewPostgres(db database.DBTX) *Postgres {
	return &Postgres{db: db}
}

func (p *Postgres) Lookup(ctx context.Context, table string, id int64, culture, column string) (pgtype.Text, bool, error) {
	sql := fmt.Sprintf(`SELECT %s FROM %s WHERE id = $1 AND culture = $2`,
		pgx.Identifier{column}.Sanitize(), pgx.Identifier{table}.Sanitize())

	var v pgtype.Text
	err := p.db.QueryRow(ctx, sql, id, culture).Scan(&v)
	if errors.Is(err, pgx.ErrNoRows) {
		return pgtype.Text{}, false, nil
	}
	if err != nil {
		return pgtype.Text{}, false, err
	}
	return v, true, nil
}

func (p *Postgres) Upsert(ctx context.Context, table string, id int64, culture string, values map[string]string) error {
	sql, args := upsertSQL(table, id, culture, values)
	_, err := p.db.Exec(ctx, sql, args...)
	return database.Classify(err)
}

// upsertSQL builds the statement for Upsert. Columns are sorted so the
// statement text is stable for a given set of fields.
func upsertSQL(table string, id int64, culture string, values map[string]string) (string, []any) {
	cols := slices.Sorted(maps.Keys(values))

	names := []string{"id", "culture"}
	params := []string{"$1", "$2"}
	sets := make([]string, 0, len(cols))
	args := []any{id, culture}
	for i, c := range cols {
		ident := pgx.Identifier{c}.Sanitize()
		names = append(names, ident)
		params = append(params, fmt.Sprintf("$%d", i+3))
		sets = append(sets, fmt.Sprintf("%s = EXCLUDED.%s", ident, ident))
		args = append(args, values[c])
	}

	conflict := "DO NOTHING"
	if len(sets) > 0 {
		conflict = "DO UPDATE SET " + strings.Join(sets, ", ")
	}
	sql := fmt.Sprintf(`INSERT INTO %s (%s) VALUES (%s) ON CONFLICT (id, culture) %s`,
		pgx.Identifier{table}.Sanitize(),
		strings.Join(names, ", "),
		strings.Join(params, ", "),
		conflict,
	)
	return sql, args
}
