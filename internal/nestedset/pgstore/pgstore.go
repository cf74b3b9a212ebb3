// Package pgstore stores a nested-set forest in a PostgreSQL table through
// pgx.
//
// The table needs id, parent_id, lft and rgt columns. In the Qubit schema
// every entity row also owns a row in the shared object table which holds
// the class name and timestamps; the store creates and deletes those
// alongside the tree rows.
//
// Each Update runs in its own transaction (or savepoint when the Beginner is
// itself a pgx.Tx) and takes
//
//	LOCK TABLE <table> IN SHARE ROW EXCLUSIVE MODE
//
// before reading any bounds. That mode conflicts with itself, so tree
// mutations of one entity type are serialized, while plain readers keep
// their MVCC snapshot and never see a half-shifted forest.
package pgstore

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/JonMunkholm/qubit/internal/database"
	"github.com/JonMunkholm/qubit/internal/nestedset"
)

// Beginner starts a transaction. *pgxpool.Pool, *pgx.Conn and pgx.Tx all
// satisfy it; on a pgx.Tx, Begin opens a savepoint.
type Beginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// txBeginner is implemented by pools and connections, not by pgx.Tx.
type txBeginner interface {
	BeginTx(ctx context.Context, opts pgx.TxOptions) (pgx.Tx, error)
}

// Options configures a Store.
type Options struct {
	// Table is the entity table holding the tree columns, e.g. "actor".
	Table string

	// ObjectTable is the shared base table that allocates ids. Empty means
	// the entity table allocates ids itself (serial id column).
	ObjectTable string

	// ClassName is written to the object row, e.g. "QubitActor".
	ClassName string

	// LockTimeout bounds the wait for the table lock. Zero waits forever.
	LockTimeout time.Duration

	// Now is the clock for object timestamps. Defaults to time.Now.
	Now func() time.Time
}

// Store is a nestedset.Store backed by PostgreSQL.
type Store struct {
	db          Beginner
	table       string
	objectTable string
	className   string
	lockTimeout time.Duration
	now         func() time.Time
}

// New returns a Store over db. opts.Table is required.
func New(db Beginner, opts Options) (*Store, error) {
	if db == nil {
		return nil, errors.New("pgstore: nil database")
	}
	if strings.TrimSpace(opts.Table) == "" {
		return nil, errors.New("pgstore: table name is required")
	}
	s := &Store{
		db:          db,
		table:       pgx.Identifier{opts.Table}.Sanitize(),
		className:   opts.ClassName,
		lockTimeout: opts.LockTimeout,
		now:         opts.Now,
	}
	if opts.ObjectTable != "" {
		s.objectTable = pgx.Identifier{opts.ObjectTable}.Sanitize()
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s, nil
}

// Update implements nestedset.Store.
func (s *Store) Update(ctx context.Context, fn func(tx nestedset.Tx) error) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback(context.Background()) }()

	if s.lockTimeout > 0 {
		stmt := fmt.Sprintf("SET LOCAL lock_timeout = '%dms'", s.lockTimeout.Milliseconds())
		if _, err := tx.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("set lock timeout: %w", err)
		}
	}
	if _, err := tx.Exec(ctx, "LOCK TABLE "+s.table+" IN SHARE ROW EXCLUSIVE MODE"); err != nil {
		return fmt.Errorf("lock %s: %w", s.table, err)
	}

	if err := fn(&pgTx{tx: tx, s: s}); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", database.Classify(err))
	}
	return nil
}

// View implements nestedset.Store. On a pool the reads share one
// repeatable-read snapshot.
func (s *Store) View(ctx context.Context, fn func(tx nestedset.Tx) error) error {
	var (
		tx  pgx.Tx
		err error
	)
	if b, ok := s.db.(txBeginner); ok {
		tx, err = b.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.RepeatableRead, AccessMode: pgx.ReadOnly})
	} else {
		tx, err = s.db.Begin(ctx)
	}
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback(context.Background()) }()

	if err := fn(&pgTx{tx: tx, s: s, readOnly: true}); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

type pgTx struct {
	tx       pgx.Tx
	s        *Store
	readOnly bool
}

const nodeColumns = "id, parent_id, lft, rgt"

func (t *pgTx) ReadNode(ctx context.Context, id int64) (nestedset.Node, error) {
	q := "SELECT " + nodeColumns + " FROM " + t.s.table + " WHERE id = $1"
	n, err := scanNode(t.tx.QueryRow(ctx, q, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nestedset.Node{}, nestedset.NotFound(id)
	}
	if err != nil {
		return nestedset.Node{}, fmt.Errorf("read node %d: %w", id, err)
	}
	return n, nil
}

func (t *pgTx) MaxRgt(ctx context.Context) (int64, error) {
	var maxRgt int64
	err := t.tx.QueryRow(ctx, "SELECT COALESCE(MAX(rgt), 0) FROM "+t.s.table).Scan(&maxRgt)
	if err != nil {
		return 0, fmt.Errorf("max rgt: %w", err)
	}
	return maxRgt, nil
}

func (t *pgTx) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := t.tx.QueryRow(ctx, "SELECT COUNT(*) FROM "+t.s.table).Scan(&n); err != nil {
		return 0, fmt.Errorf("count: %w", err)
	}
	return n, nil
}

func (t *pgTx) ShiftFrom(ctx context.Context, point, delta int64) error {
	if t.readOnly {
		return errReadOnly
	}
	if delta == 0 {
		return nil
	}
	if _, err := t.tx.Exec(ctx,
		"UPDATE "+t.s.table+" SET lft = lft + $2 WHERE lft >= $1", point, delta); err != nil {
		return database.Classify(err)
	}
	if _, err := t.tx.Exec(ctx,
		"UPDATE "+t.s.table+" SET rgt = rgt + $2 WHERE rgt >= $1", point, delta); err != nil {
		return database.Classify(err)
	}
	return nil
}

func (t *pgTx) ShiftRange(ctx context.Context, lft, rgt, delta int64) error {
	if t.readOnly {
		return errReadOnly
	}
	if delta == 0 {
		return nil
	}
	_, err := t.tx.Exec(ctx,
		"UPDATE "+t.s.table+" SET lft = lft + $3, rgt = rgt + $3 WHERE lft >= $1 AND rgt <= $2",
		lft, rgt, delta)
	return database.Classify(err)
}

func (t *pgTx) DeleteRange(ctx context.Context, lft, rgt int64) (int64, error) {
	if t.readOnly {
		return 0, errReadOnly
	}
	q := "DELETE FROM " + t.s.table + " WHERE lft >= $1 AND rgt <= $2"
	if t.s.objectTable != "" {
		q = "WITH doomed AS (" + q + " RETURNING id) " +
			"DELETE FROM " + t.s.objectTable + " WHERE id IN (SELECT id FROM doomed)"
	}
	tag, err := t.tx.Exec(ctx, q, lft, rgt)
	if err != nil {
		return 0, database.Classify(err)
	}
	return tag.RowsAffected(), nil
}

func (t *pgTx) CreateNode(ctx context.Context, n *nestedset.Node) error {
	if t.readOnly {
		return errReadOnly
	}

	cols := []string{"parent_id", "lft", "rgt"}
	args := []any{parentArg(n.ParentID), n.Lft, n.Rgt}

	if t.s.objectTable != "" {
		now := t.s.now()
		var id int64
		err := t.tx.QueryRow(ctx,
			"INSERT INTO "+t.s.objectTable+" (class_name, created_at, updated_at, serial_number) "+
				"VALUES ($1, $2, $2, 0) RETURNING id",
			t.s.className, now).Scan(&id)
		if err != nil {
			return fmt.Errorf("insert object: %w", database.Classify(err))
		}
		cols = append([]string{"id"}, cols...)
		args = append([]any{id}, args...)
		n.ID = id
	}

	keys := make([]string, 0, len(n.Columns))
	for k := range n.Columns {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		cols = append(cols, k)
		args = append(args, n.Columns[k])
	}

	quoted := make([]string, len(cols))
	placeholders := make([]string, len(cols))
	for i, c := range cols {
		quoted[i] = pgx.Identifier{c}.Sanitize()
		placeholders[i] = fmt.Sprintf("$%d", i+1)
	}
	q := "INSERT INTO " + t.s.table + " (" + strings.Join(quoted, ", ") + ") VALUES (" +
		strings.Join(placeholders, ", ") + ")"

	if t.s.objectTable != "" {
		if _, err := t.tx.Exec(ctx, q, args...); err != nil {
			n.ID = 0
			return fmt.Errorf("insert node: %w", database.Classify(err))
		}
		return nil
	}

	var id int64
	if err := t.tx.QueryRow(ctx, q+" RETURNING id", args...).Scan(&id); err != nil {
		return fmt.Errorf("insert node: %w", database.Classify(err))
	}
	n.ID = id
	return nil
}

func (t *pgTx) SetParent(ctx context.Context, id, parentID int64) error {
	if t.readOnly {
		return errReadOnly
	}
	tag, err := t.tx.Exec(ctx,
		"UPDATE "+t.s.table+" SET parent_id = $2 WHERE id = $1", id, parentArg(parentID))
	if err != nil {
		return database.Classify(err)
	}
	if tag.RowsAffected() == 0 {
		return nestedset.NotFound(id)
	}
	return t.touch(ctx, id)
}

func (t *pgTx) SetInterval(ctx context.Context, id, lft, rgt int64) error {
	if t.readOnly {
		return errReadOnly
	}
	tag, err := t.tx.Exec(ctx,
		"UPDATE "+t.s.table+" SET lft = $2, rgt = $3 WHERE id = $1", id, lft, rgt)
	if err != nil {
		return database.Classify(err)
	}
	if tag.RowsAffected() == 0 {
		return nestedset.NotFound(id)
	}
	return nil
}

func (t *pgTx) Range(ctx context.Context, lft, rgt int64) ([]nestedset.Node, error) {
	return t.query(ctx, "SELECT "+nodeColumns+" FROM "+t.s.table+
		" WHERE lft >= $1 AND rgt <= $2 ORDER BY lft", lft, rgt)
}

func (t *pgTx) Enclosing(ctx context.Context, lft, rgt int64) ([]nestedset.Node, error) {
	return t.query(ctx, "SELECT "+nodeColumns+" FROM "+t.s.table+
		" WHERE lft < $1 AND rgt > $2 ORDER BY lft", lft, rgt)
}

func (t *pgTx) ChildrenOf(ctx context.Context, parentID int64) ([]nestedset.Node, error) {
	if parentID == 0 {
		return t.query(ctx, "SELECT "+nodeColumns+" FROM "+t.s.table+
			" WHERE parent_id IS NULL ORDER BY lft")
	}
	return t.query(ctx, "SELECT "+nodeColumns+" FROM "+t.s.table+
		" WHERE parent_id = $1 ORDER BY lft", parentID)
}

func (t *pgTx) All(ctx context.Context) ([]nestedset.Node, error) {
	return t.query(ctx, "SELECT "+nodeColumns+" FROM "+t.s.table+" ORDER BY lft, id")
}

// touch bumps updated_at on the object row after a parent change.
func (t *pgTx) touch(ctx context.Context, id int64) error {
	if t.s.objectTable == "" {
		return nil
	}
	_, err := t.tx.Exec(ctx,
		"UPDATE "+t.s.objectTable+" SET updated_at = $2 WHERE id = $1", id, t.s.now())
	return database.Classify(err)
}

func (t *pgTx) query(ctx context.Context, q string, args ...any) ([]nestedset.Node, error) {
	rows, err := t.tx.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []nestedset.Node
	for rows.Next() {
		n, err := scanNode(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

var errReadOnly = errors.New("pgstore: write in read-only transaction")

func scanNode(row pgx.Row) (nestedset.Node, error) {
	var (
		n      nestedset.Node
		parent pgtype.Int8
	)
	if err := row.Scan(&n.ID, &parent, &n.Lft, &n.Rgt); err != nil {
		return nestedset.Node{}, err
	}
	if parent.Valid {
		n.ParentID = parent.Int64
	}
	return n, nil
}

func parentArg(id int64) pgtype.Int8 {
	return pgtype.Int8{Int64: id, Valid: id != 0}
}
