package core

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/JonMunkholm/qubit/internal/i18n"
	"github.com/JonMunkholm/qubit/internal/importer"
	"github.com/JonMunkholm/qubit/internal/logging"
	"github.com/JonMunkholm/qubit/internal/model"
	"github.com/JonMunkholm/qubit/internal/nestedset"
	"github.com/JonMunkholm/qubit/internal/nestedset/memstore"
	"github.com/JonMunkholm/qubit/internal/nestedset/pgstore"
)

var (
	// ErrUnknownKind is returned for a kind key that is not registered.
	ErrUnknownKind = errors.New("unknown kind")

	// ErrNoTranslations is returned for translation calls on a kind without
	// an i18n table.
	ErrNoTranslations = errors.New("kind has no translations")

	// ErrImportDisabled is returned when the service has no import opener.
	ErrImportDisabled = errors.New("import is not configured")
)

// StoreFactory opens the nested-set store of one kind.
type StoreFactory func(def KindDefinition) (nestedset.Store, error)

// PostgresStores returns a StoreFactory over a pool or connection. Every
// kind gets a pgstore on its own table with the shared object table.
func PostgresStores(db pgstore.Beginner, lockTimeout time.Duration) StoreFactory {
	return func(def KindDefinition) (nestedset.Store, error) {
		return pgstore.New(db, pgstore.Options{
			Table:       def.Info.Table,
			ObjectTable: "object",
			ClassName:   def.Info.ClassName,
			LockTimeout: lockTimeout,
		})
	}
}

// MemoryStores returns a StoreFactory that keeps every kind in memory.
// Kinds with a fixed root id start with that root in place.
func MemoryStores() StoreFactory {
	return func(def KindDefinition) (nestedset.Store, error) {
		s := memstore.New()
		if def.Info.RootID > 0 {
			if err := s.Load([]nestedset.Node{{ID: def.Info.RootID, Lft: 1, Rgt: 2}}); err != nil {
				return nil, err
			}
		}
		return s, nil
	}
}

// Options configures a Service.
type Options struct {
	// FallbackCulture is used when a translation is missing in the
	// requested culture. Defaults to model.DefaultCulture.
	FallbackCulture string

	// Texts stores translations. Nil disables translation calls.
	Texts i18n.Backend

	// Importer opens import sessions. Nil disables Import.
	Importer importer.Opener

	// ImportDefaults fill the zero fields of per-call import options.
	ImportDefaults importer.Options

	// Limiter bounds concurrent imports. Nil allows any number.
	Limiter *ImportLimiter
}

type kindRuntime struct {
	def   KindDefinition
	tree  *nestedset.Manager
	texts i18n.Texts
}

// Service serves the registered kinds.
type Service struct {
	kinds    map[string]*kindRuntime
	order    []string
	opener   importer.Opener
	defaults importer.Options
	limiter  *ImportLimiter
}

// NewService builds a Service for every registered kind.
func NewService(stores StoreFactory, opts Options) (*Service, error) {
	if opts.FallbackCulture == "" {
		opts.FallbackCulture = model.DefaultCulture
	}
	s := &Service{
		kinds:    make(map[string]*kindRuntime),
		opener:   opts.Importer,
		defaults: opts.ImportDefaults,
		limiter:  opts.Limiter,
	}
	for _, def := range All() {
		store, err := stores(def)
		if err != nil {
			return nil, fmt.Errorf("open %s store: %w", def.Info.Key, err)
		}
		rt := &kindRuntime{def: def, tree: nestedset.NewManager(def.Info.Key, store)}
		if def.Texts != nil && opts.Texts != nil {
			rt.texts = def.Texts(opts.Texts, opts.FallbackCulture)
			rt.def.Info.I18nTable = rt.texts.TableName()
			rt.def.Info.Fields = rt.texts.FieldNames()
		}
		s.kinds[def.Info.Key] = rt
		s.order = append(s.order, def.Info.Key)
	}
	return s, nil
}

func (s *Service) kind(key string) (*kindRuntime, error) {
	rt, ok := s.kinds[key]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownKind, key)
	}
	return rt, nil
}

// Kinds lists the served kinds sorted by key.
func (s *Service) Kinds() []KindInfo {
	out := make([]KindInfo, len(s.order))
	for i, key := range s.order {
		out[i] = s.kinds[key].def.Info
	}
	return out
}

// Tree returns the tree manager of a kind.
func (s *Service) Tree(kind string) (*nestedset.Manager, error) {
	rt, err := s.kind(kind)
	if err != nil {
		return nil, err
	}
	return rt.tree, nil
}

// =============================================================================
// Tree operations
// =============================================================================

// Insert creates a node under parentID (0 for a new root) with the given
// entity columns and returns it positioned.
func (s *Service) Insert(ctx context.Context, kind string, parentID int64, columns map[string]any) (NodeView, error) {
	rt, err := s.kind(kind)
	if err != nil {
		return NodeView{}, err
	}
	n := &nestedset.Node{Columns: columns}
	if err := rt.tree.Insert(ctx, n, parentID); err != nil {
		return NodeView{}, err
	}
	logging.FromContext(ctx).Info("node inserted", "kind", kind, "node_id", n.ID, "parent_id", parentID)
	return ViewOf(*n), nil
}

// Move re-parents a node and its subtree.
func (s *Service) Move(ctx context.Context, kind string, id, newParentID int64) (NodeView, error) {
	rt, err := s.kind(kind)
	if err != nil {
		return NodeView{}, err
	}
	n, err := rt.tree.Move(ctx, id, newParentID)
	if err != nil {
		return NodeView{}, err
	}
	logging.FromContext(ctx).Info("node moved", "kind", kind, "node_id", id, "parent_id", newParentID)
	return ViewOf(n), nil
}

// Delete removes a node and its subtree, returning the number of nodes
// removed.
func (s *Service) Delete(ctx context.Context, kind string, id int64) (int64, error) {
	rt, err := s.kind(kind)
	if err != nil {
		return 0, err
	}
	removed, err := rt.tree.Delete(ctx, id)
	if err != nil {
		return 0, err
	}
	logging.FromContext(ctx).Info("subtree deleted", "kind", kind, "node_id", id, "removed", removed)
	return removed, nil
}

func (s *Service) Get(ctx context.Context, kind string, id int64) (NodeView, error) {
	rt, err := s.kind(kind)
	if err != nil {
		return NodeView{}, err
	}
	n, err := rt.tree.Get(ctx, id)
	if err != nil {
		return NodeView{}, err
	}
	return ViewOf(n), nil
}

func (s *Service) Roots(ctx context.Context, kind string) ([]NodeView, error) {
	return s.list(ctx, kind, func(m *nestedset.Manager) ([]nestedset.Node, error) {
		return m.Roots(ctx)
	})
}

func (s *Service) Children(ctx context.Context, kind string, id int64) ([]NodeView, error) {
	return s.list(ctx, kind, func(m *nestedset.Manager) ([]nestedset.Node, error) {
		return m.Children(ctx, id)
	})
}

func (s *Service) Subtree(ctx context.Context, kind string, id int64) ([]NodeView, error) {
	return s.list(ctx, kind, func(m *nestedset.Manager) ([]nestedset.Node, error) {
		return m.Subtree(ctx, id)
	})
}

func (s *Service) Ancestors(ctx context.Context, kind string, id int64) ([]NodeView, error) {
	return s.list(ctx, kind, func(m *nestedset.Manager) ([]nestedset.Node, error) {
		return m.Ancestors(ctx, id)
	})
}

func (s *Service) list(_ context.Context, kind string, fn func(*nestedset.Manager) ([]nestedset.Node, error)) ([]NodeView, error) {
	rt, err := s.kind(kind)
	if err != nil {
		return nil, err
	}
	nodes, err := fn(rt.tree)
	if err != nil {
		return nil, err
	}
	return ViewsOf(nodes), nil
}

// =============================================================================
// Integrity
// =============================================================================

// Verify checks the interval invariants of one kind.
func (s *Service) Verify(ctx context.Context, kind string) (VerifyReport, error) {
	rt, err := s.kind(kind)
	if err != nil {
		return VerifyReport{}, err
	}
	violations, err := rt.tree.Verify(ctx)
	if err != nil {
		return VerifyReport{}, fmt.Errorf("verify %s: %w", kind, err)
	}
	return VerifyReport{Kind: kind, Valid: len(violations) == 0, Violations: violations}, nil
}

// VerifyAll checks every kind concurrently. Reports are in kind order.
func (s *Service) VerifyAll(ctx context.Context) ([]VerifyReport, error) {
	reports := make([]VerifyReport, len(s.order))
	g, ctx := errgroup.WithContext(ctx)
	for i, kind := range s.order {
		g.Go(func() error {
			r, err := s.Verify(ctx, kind)
			if err != nil {
				return err
			}
			reports[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return reports, nil
}

// Rebuild recomputes the intervals of one kind from its parent references.
func (s *Service) Rebuild(ctx context.Context, kind string) error {
	rt, err := s.kind(kind)
	if err != nil {
		return err
	}
	return rt.tree.Rebuild(ctx)
}

// =============================================================================
// Translations
// =============================================================================

func (s *Service) texts(kind string) (*kindRuntime, error) {
	rt, err := s.kind(kind)
	if err != nil {
		return nil, err
	}
	if rt.texts == nil {
		return nil, fmt.Errorf("%w: %s", ErrNoTranslations, kind)
	}
	return rt, nil
}

// Text reads one translated field of a node.
func (s *Service) Text(ctx context.Context, kind string, id int64, culture, field string) (string, error) {
	rt, err := s.texts(kind)
	if err != nil {
		return "", err
	}
	return rt.texts.TextByName(ctx, id, culture, field)
}

// SetText writes translated fields of an existing node.
func (s *Service) SetText(ctx context.Context, kind string, id int64, culture string, values map[string]string) error {
	rt, err := s.texts(kind)
	if err != nil {
		return err
	}
	if id <= 0 {
		return fmt.Errorf("%s: %w", kind, nestedset.ErrUnsavedEntity)
	}
	if _, err := rt.tree.Get(ctx, id); err != nil {
		return err
	}
	if err := rt.texts.SetTextByName(ctx, id, culture, values); err != nil {
		return err
	}
	logging.FromContext(ctx).Debug("translation saved", "kind", kind, "node_id", id, "culture", culture, "fields", len(values))
	return nil
}

// =============================================================================
// Import
// =============================================================================

// Import runs a spreadsheet import. Zero fields of opts are taken from the
// service defaults. Waits for a limiter slot first.
func (s *Service) Import(ctx context.Context, r io.Reader, size int64, opts importer.Options) (importer.Result, error) {
	if s.opener == nil {
		return importer.Result{}, ErrImportDisabled
	}
	if s.limiter != nil {
		if err := s.limiter.Acquire(ctx); err != nil {
			return importer.Result{}, err
		}
		defer s.limiter.Release()
	}

	log := logging.WithFields(ctx, "client_ip", ClientIPFromContext(ctx), "client_id", ClientIDFromContext(ctx))
	res, err := importer.New(s.opener, s.mergeImportOptions(opts)).Import(ctx, r, size)
	if err != nil {
		log.Error("import failed", "run_id", res.RunID, "error", err)
		return res, err
	}
	log.Info("import finished", "run_id", res.RunID, "imported", res.Imported, "failed", res.Failed)
	return res, nil
}

func (s *Service) mergeImportOptions(opts importer.Options) importer.Options {
	d := s.defaults
	if opts.From == 0 {
		opts.From = d.From
	}
	if opts.To == 0 {
		opts.To = d.To
	}
	if opts.User == "" {
		opts.User = d.User
	}
	if opts.Lang == "" {
		opts.Lang = d.Lang
	}
	if opts.ParentID == 0 {
		opts.ParentID = d.ParentID
	}
	if opts.Countries == nil {
		opts.Countries = d.Countries
	}
	if opts.Now == nil {
		opts.Now = d.Now
	}
	opts.ContinueOnError = opts.ContinueOnError || d.ContinueOnError
	return opts
}

// ImportStatus reports the limiter state, or a zero status without a
// limiter.
func (s *Service) ImportStatus() ImportLimiterStatus {
	if s.limiter == nil {
		return ImportLimiterStatus{}
	}
	return s.limiter.Status()
}
