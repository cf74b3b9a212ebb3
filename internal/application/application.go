// Package application wires configuration, the database pool and the
// service together for the two binaries.
package application

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/JonMunkholm/qubit/internal/config"
	"github.com/JonMunkholm/qubit/internal/core"
	_ "github.com/JonMunkholm/qubit/internal/core/kinds" // register entity kinds
	"github.com/JonMunkholm/qubit/internal/i18n"
	"github.com/JonMunkholm/qubit/internal/importer"
	"github.com/JonMunkholm/qubit/internal/nestedset"
)

// App is a wired service. Close releases the pool.
type App struct {
	Config  *config.Config
	Pool    *pgxpool.Pool
	Service *core.Service
	Limiter *core.ImportLimiter
}

// Open connects to the database and builds a service over it.
func Open(ctx context.Context, cfg *config.Config) (*App, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.Database.URL)
	if err != nil {
		return nil, fmt.Errorf("parse database URL: %w", err)
	}
	poolConfig.MaxConns = int32(cfg.Database.MaxConns)
	poolConfig.MinConns = int32(cfg.Database.MinConns)
	poolConfig.MaxConnLifetime = cfg.Database.MaxConnLifetime
	poolConfig.MaxConnIdleTime = cfg.Database.MaxConnIdleTime

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	slog.Info("connected to database", "name", databaseName(cfg.Database.URL))

	defaults, err := ImportDefaults(cfg)
	if err != nil {
		pool.Close()
		return nil, err
	}

	limiter := core.NewImportLimiter(cfg.Import.MaxConcurrent, cfg.Import.MaxWait)
	svc, err := core.NewService(core.PostgresStores(pool, cfg.Tree.LockTimeout), core.Options{
		FallbackCulture: cfg.I18n.FallbackCulture,
		Texts:           i18n.NewPostgres(pool),
		Importer:        importer.NewPostgres(pool, cfg.Tree.LockTimeout),
		ImportDefaults:  defaults,
		Limiter:         limiter,
	})
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("create service: %w", err)
	}

	logKinds(svc)
	return &App{Config: cfg, Pool: pool, Service: svc, Limiter: limiter}, nil
}

// ActorKind is the kind whose forest receives imported repositories.
const ActorKind = "actor"

// OpenMemory builds a service whose forests, translations and import
// writes live in memory. It backs dry-run imports; nothing is persisted.
func OpenMemory(cfg *config.Config) (*App, *importer.Memory, error) {
	defaults, err := ImportDefaults(cfg)
	if err != nil {
		return nil, nil, err
	}
	mem, err := importer.NewMemory(defaults.ParentID, defaults.User)
	if err != nil {
		return nil, nil, err
	}
	stores := core.MemoryStores()
	shared := func(def core.KindDefinition) (nestedset.Store, error) {
		if def.Info.Key == ActorKind {
			return mem.Tree, nil
		}
		return stores(def)
	}
	svc, err := core.NewService(shared, core.Options{
		FallbackCulture: cfg.I18n.FallbackCulture,
		Texts:           mem.Texts,
		Importer:        mem,
		ImportDefaults:  defaults,
	})
	if err != nil {
		return nil, nil, err
	}
	return &App{Config: cfg, Service: svc}, mem, nil
}

// ImportDefaults turns the import settings into importer options. The
// country alias file is read here so a bad file fails at startup.
func ImportDefaults(cfg *config.Config) (importer.Options, error) {
	countries, err := importer.LoadCountries(cfg.Import.CountriesFile)
	if err != nil {
		return importer.Options{}, fmt.Errorf("load country aliases: %w", err)
	}
	opts := importer.DefaultOptions()
	opts.User = cfg.Import.DefaultUser
	opts.Lang = cfg.Import.DefaultLang
	opts.ParentID = cfg.Import.ParentID
	opts.Countries = countries
	return opts, nil
}

// Close releases the database pool, if any.
func (a *App) Close() {
	if a.Pool != nil {
		a.Pool.Close()
	}
}

func logKinds(svc *core.Service) {
	kinds := svc.Kinds()
	slog.Info("kinds registered", "count", len(kinds))
	for _, k := range kinds {
		slog.Debug("kind", "key", k.Key, "table", k.Table, "i18n_table", k.I18nTable)
	}
}

func databaseName(dsn string) string {
	u, err := url.Parse(dsn)
	if err != nil || u.Path == "" {
		return ""
	}
	return strings.TrimPrefix(u.Path, "/")
}
