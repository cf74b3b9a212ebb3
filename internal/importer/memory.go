package importer

import (
	"context"
	"fmt"
	"maps"
	"sync"

	"github.com/JonMunkholm/qubit/internal/i18n"
	"github.com/JonMunkholm/qubit/internal/model"
	"github.com/JonMunkholm/qubit/internal/nestedset"
	"github.com/JonMunkholm/qubit/internal/nestedset/memstore"
)

type termKey struct {
	taxonomyID int64
	name       string
}

// MemoryRecords is a Writer that keeps everything in process memory.
// Inserts are journaled so a caller can Rollback to an earlier Mark.
type MemoryRecords struct {
	mu       sync.Mutex
	journal  []func()
	nextID   int64
	users    map[string]int64
	terms    map[termKey]int64
	slugs    map[string]int64
	repos    map[int64]model.Repository
	notes    []model.Note
	others   []model.OtherName
	contacts []model.ContactInformation
	props    []model.Property
}

// NewMemoryRecords returns an empty store. Users and terms the import
// looks up must be added with AddUser and AddTerm.
func NewMemoryRecords() *MemoryRecords {
	return &MemoryRecords{
		nextID: 1,
		users:  make(map[string]int64),
		terms:  make(map[termKey]int64),
		slugs:  make(map[string]int64),
		repos:  make(map[int64]model.Repository),
	}
}

func (m *MemoryRecords) id() int64 {
	id := m.nextID
	m.nextID++
	return id
}

// AddUser makes username resolvable to id.
func (m *MemoryRecords) AddUser(username string, id int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[username] = id
}

// AddTerm makes the term name in taxonomyID resolvable to id.
func (m *MemoryRecords) AddTerm(taxonomyID int64, name string, id int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.terms[termKey{taxonomyID, name}] = id
}

func (m *MemoryRecords) UserIDByUsername(_ context.Context, username string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id, ok := m.users[username]
	if !ok {
		return 0, fmt.Errorf("user %q: %w", username, nestedset.ErrNotFound)
	}
	return id, nil
}

func (m *MemoryRecords) TermIDByName(_ context.Context, taxonomyID int64, name string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id, ok := m.terms[termKey{taxonomyID, name}]
	if !ok {
		return 0, fmt.Errorf("term %q in taxonomy %d: %w", name, taxonomyID, nestedset.ErrNotFound)
	}
	return id, nil
}

func (m *MemoryRecords) InsertRepository(_ context.Context, r model.Repository) error {
	if !r.Saved() {
		return fmt.Errorf("repository: %w", nestedset.ErrUnsavedEntity)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, dup := m.repos[r.ID]; dup {
		return nestedset.Integrity(fmt.Errorf("repository %d exists", r.ID))
	}
	m.repos[r.ID] = r
	m.journal = append(m.journal, func() { delete(m.repos, r.ID) })
	return nil
}

func (m *MemoryRecords) SlugExists(_ context.Context, slug string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.slugs[slug]
	return ok, nil
}

func (m *MemoryRecords) InsertSlug(_ context.Context, s model.Slug) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, dup := m.slugs[s.Slug]; dup {
		return nestedset.Integrity(fmt.Errorf("slug %q exists", s.Slug))
	}
	m.slugs[s.Slug] = s.ObjectID
	m.journal = append(m.journal, func() { delete(m.slugs, s.Slug) })
	return nil
}

func (m *MemoryRecords) InsertNote(_ context.Context, n model.Note) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n.ID = m.id()
	m.notes = append(m.notes, n)
	m.journal = append(m.journal, func() { m.notes = m.notes[:len(m.notes)-1] })
	return n.ID, nil
}

func (m *MemoryRecords) InsertOtherName(_ context.Context, o model.OtherName) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o.ID = m.id()
	m.others = append(m.others, o)
	m.journal = append(m.journal, func() { m.others = m.others[:len(m.others)-1] })
	return o.ID, nil
}

func (m *MemoryRecords) InsertContactInformation(_ context.Context, c model.ContactInformation) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c.ID = m.id()
	m.contacts = append(m.contacts, c)
	m.journal = append(m.journal, func() { m.contacts = m.contacts[:len(m.contacts)-1] })
	return c.ID, nil
}

func (m *MemoryRecords) InsertProperty(_ context.Context, p model.Property) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p.ID = m.id()
	m.props = append(m.props, p)
	m.journal = append(m.journal, func() { m.props = m.props[:len(m.props)-1] })
	return p.ID, nil
}

// Mark returns the current journal position.
func (m *MemoryRecords) Mark() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.journal)
}

// Rollback undoes every insert made after mark. Ids are not handed out
// again.
func (m *MemoryRecords) Rollback(mark int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := len(m.journal) - 1; i >= mark; i-- {
		m.journal[i]()
	}
	m.journal = m.journal[:mark]
}

// Forget drops the journal entries after mark, keeping their writes.
func (m *MemoryRecords) Forget(mark int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.journal = m.journal[:mark]
}

// Repositories returns the stored repositories keyed by id.
func (m *MemoryRecords) Repositories() map[int64]model.Repository {
	m.mu.Lock()
	defer m.mu.Unlock()
	return maps.Clone(m.repos)
}

// Notes returns the stored notes in insertion order.
func (m *MemoryRecords) Notes() []model.Note {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]model.Note(nil), m.notes...)
}

func (m *MemoryRecords) OtherNames() []model.OtherName {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]model.OtherName(nil), m.others...)
}

func (m *MemoryRecords) Contacts() []model.ContactInformation {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]model.ContactInformation(nil), m.contacts...)
}

func (m *MemoryRecords) Properties() []model.Property {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]model.Property(nil), m.props...)
}

// Memory opens sessions on in-process stores. It backs dry runs, which
// check a spreadsheet without touching the database, and tests.
//
// A failed Open or Session.Row puts the tree, records and texts back to
// where they were when it started. Memory serves one import at a time.
type Memory struct {
	Tree    *memstore.Store
	Records *MemoryRecords
	Texts   *i18n.Memory
}

// NewMemory returns a Memory whose actor forest holds a single root with
// id rootID, an import user and the Draft/Partial description terms.
func NewMemory(rootID int64, user string) (*Memory, error) {
	tree := memstore.New()
	if err := tree.Load([]nestedset.Node{{ID: rootID, Lft: 1, Rgt: 2}}); err != nil {
		return nil, err
	}
	recs := NewMemoryRecords()
	recs.AddUser(user, 1)
	recs.AddTerm(model.TaxonomyDescriptionStatusID, statusDraft, 1)
	recs.AddTerm(model.TaxonomyDescriptionDetailLevelID, detailPartial, 2)
	return &Memory{Tree: tree, Records: recs, Texts: i18n.NewMemory()}, nil
}

// Open runs fn and rolls every write back if it fails.
func (m *Memory) Open(_ context.Context, fn func(Session) error) error {
	mk := m.mark()
	err := fn(&memSession{
		mem:     m,
		actors:  nestedset.NewManager("actor", m.Tree),
		records: m.Records,
		texts:   m.Texts,
	})
	if err != nil {
		m.rollback(mk)
		return err
	}
	m.Records.Forget(mk.records)
	m.Texts.Forget(mk.texts)
	return nil
}

type memMark struct {
	tree    memstore.Snapshot
	records int
	texts   int
}

func (m *Memory) mark() memMark {
	return memMark{tree: m.Tree.Snapshot(), records: m.Records.Mark(), texts: m.Texts.Mark()}
}

func (m *Memory) rollback(mk memMark) {
	m.Tree.Restore(mk.tree)
	m.Records.Rollback(mk.records)
	m.Texts.Rollback(mk.texts)
}

type memSession struct {
	mem     *Memory
	actors  *nestedset.Manager
	records *MemoryRecords
	texts   *i18n.Memory
}

func (s *memSession) Actors() *nestedset.Manager { return s.actors }
func (s *memSession) Records() Writer             { return s.records }
func (s *memSession) Texts() i18n.Backend         { return s.texts }

func (s *memSession) Row(_ context.Context, fn func(Session) error) error {
	mk := s.mem.mark()
	if err := fn(s); err != nil {
		s.mem.rollback(mk)
		return err
	}
	return nil
}
