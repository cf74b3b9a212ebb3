package importer

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/JonMunkholm/qubit/internal/database"
	"github.com/JonMunkholm/qubit/internal/i18n"
	"github.com/JonMunkholm/qubit/internal/model"
	"github.com/JonMunkholm/qubit/internal/nestedset"
	"github.com/JonMunkholm/qubit/internal/nestedset/pgstore"
)

// Postgres opens import sessions on a Qubit database. The whole import is
// one transaction; Session.Row uses savepoints.
type Postgres struct {
	db          pgstore.Beginner
	lockTimeout time.Duration
}

func NewPostgres(db pgstore.Beginner, lockTimeout time.Duration) *Postgres {
	return &Postgres{db: db, lockTimeout: lockTimeout}
}

func (p *Postgres) Open(ctx context.Context, fn func(Session) error) error {
	tx, err := p.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin import: %w", err)
	}
	defer func() { _ = tx.Rollback(context.Background()) }()

	s, err := p.session(tx)
	if err != nil {
		return err
	}
	if err := fn(s); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit import: %w", err)
	}
	return nil
}

func (p *Postgres) session(tx pgx.Tx) (*pgSession, error) {
	store, err := pgstore.New(tx, pgstore.Options{
		Table:       "actor",
		ObjectTable: "object",
		ClassName:   model.ClassName("Repository"),
		LockTimeout: p.lockTimeout,
	})
	if err != nil {
		return nil, err
	}
	return &pgSession{
		p:       p,
		tx:      tx,
		actors:  nestedset.NewManager("actor", store),
		records: database.New(tx),
		texts:   i18n.NewPostgres(tx),
	}, nil
}

type pgSession struct {
	p       *Postgres
	tx      pgx.Tx
	actors  *nestedset.Manager
	records *database.Queries
	texts   *i18n.Postgres
}

func (s *pgSession) Actors() *nestedset.Manager { return s.actors }
func (s *pgSession) Records() Writer             { return s.records }
func (s *pgSession) Texts() i18n.Backend         { return s.texts }

func (s *pgSession) Row(ctx context.Context, fn func(Session) error) error {
	sp, err := s.tx.Begin(ctx)
	if err != nil {
		return fmt.Errorf("savepoint: %w", err)
	}
	defer func() { _ = sp.Rollback(context.Background()) }()

	nested, err := s.p.session(sp)
	if err != nil {
		return err
	}
	if err := fn(nested); err != nil {
		return err
	}
	return sp.Commit(ctx)
}
