// Package memstore is an in-memory nestedset.Store.
//
// Rows live in a google/btree keyed by id. Two more btrees order the ids by
// lft and by rgt so that interval scans and max(rgt) avoid full sorts.
// All three trees are cloned lazily, so a snapshot costs O(1) and later
// writes copy only the btree nodes they touch. Update holds the write lock
// for the whole callback and restores its snapshot when the callback fails.
package memstore

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"math"
	"sync"

	"github.com/google/btree"

	"github.com/JonMunkholm/qubit/internal/nestedset"
)

const degree = 32

var errReadOnly = errors.New("memstore: write in read-only transaction")

type row struct {
	id     int64
	parent int64
	lft    int64
	rgt    int64
	cols   map[string]any
}

func (r row) node() nestedset.Node {
	return nestedset.Node{
		ID:       r.id,
		ParentID: r.parent,
		Lft:      r.lft,
		Rgt:      r.rgt,
		Columns:  maps.Clone(r.cols),
	}
}

func lessRow(a, b row) bool {
	return a.id < b.id
}

// key orders rows by one boundary; id breaks ties.
type key struct {
	v  int64
	id int64
}

func lessKey(a, b key) bool {
	if a.v != b.v {
		return a.v < b.v
	}
	return a.id < b.id
}

// Store is a goroutine-safe in-memory forest.
type Store struct {
	mu     sync.RWMutex
	rows   *btree.BTreeG[row]
	byLft  *btree.BTreeG[key]
	byRgt  *btree.BTreeG[key]
	nextID int64
}

// New returns an empty store. Ids start at 1.
func New() *Store {
	return &Store{
		rows:   btree.NewG[row](degree, lessRow),
		byLft:  btree.NewG[key](degree, lessKey),
		byRgt:  btree.NewG[key](degree, lessKey),
		nextID: 1,
	}
}

// Len returns the number of stored rows.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.rows.Len()
}

// Load replaces the contents of the store with nodes, keeping their ids and
// intervals. Later ids continue after the largest loaded one. The loaded
// forest is not checked; run nestedset.Check on it first if in doubt.
func (s *Store) Load(nodes []nestedset.Node) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows := btree.NewG[row](degree, lessRow)
	byLft := btree.NewG[key](degree, lessKey)
	byRgt := btree.NewG[key](degree, lessKey)
	next := s.nextID
	for _, n := range nodes {
		if n.ID <= 0 {
			return fmt.Errorf("load: %w", nestedset.ErrUnsavedEntity)
		}
		if rows.Has(row{id: n.ID}) {
			return nestedset.Integrity(fmt.Errorf("duplicate id %d", n.ID))
		}
		r := row{id: n.ID, parent: n.ParentID, lft: n.Lft, rgt: n.Rgt, cols: maps.Clone(n.Columns)}
		rows.ReplaceOrInsert(r)
		byLft.ReplaceOrInsert(key{v: r.lft, id: r.id})
		byRgt.ReplaceOrInsert(key{v: r.rgt, id: r.id})
		next = max(next, n.ID+1)
	}
	s.rows, s.byLft, s.byRgt, s.nextID = rows, byLft, byRgt, next
	return nil
}

// Snapshot is a frozen copy of the forest taken by Store.Snapshot.
type Snapshot struct {
	rows  *btree.BTreeG[row]
	byLft *btree.BTreeG[key]
	byRgt *btree.BTreeG[key]
}

// Snapshot captures the current forest. It waits for a running Update.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot()
}

// Restore puts the forest back to snap, discarding every Update made since.
// Ids handed out in between are not reused.
func (s *Store) Restore(snap Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.restore(snap)
}

func (s *Store) snapshot() Snapshot {
	return Snapshot{
		rows:  s.rows.Clone(),
		byLft: s.byLft.Clone(),
		byRgt: s.byRgt.Clone(),
	}
}

// restore leaves nextID alone so ids handed out by a failed transaction
// are never reused.
func (s *Store) restore(snap Snapshot) {
	s.rows = snap.rows
	s.byLft = snap.byLft
	s.byRgt = snap.byRgt
}

// Update implements nestedset.Store.
func (s *Store) Update(ctx context.Context, fn func(tx nestedset.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := s.snapshot()
	if err := fn(&tx{s: s, writable: true}); err != nil {
		s.restore(snap)
		return err
	}
	return nil
}

// View implements nestedset.Store.
func (s *Store) View(ctx context.Context, fn func(tx nestedset.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return fn(&tx{s: s})
}

type tx struct {
	s        *Store
	writable bool
}

func (t *tx) row(id int64) (row, bool) {
	return t.s.rows.Get(row{id: id})
}

func (t *tx) put(r row) {
	t.s.rows.ReplaceOrInsert(r)
}

func (t *tx) ReadNode(_ context.Context, id int64) (nestedset.Node, error) {
	r, ok := t.row(id)
	if !ok {
		return nestedset.Node{}, nestedset.NotFound(id)
	}
	return r.node(), nil
}

func (t *tx) MaxRgt(context.Context) (int64, error) {
	k, ok := t.s.byRgt.Max()
	if !ok {
		return 0, nil
	}
	return k.v, nil
}

func (t *tx) Count(context.Context) (int64, error) {
	return int64(t.s.rows.Len()), nil
}

func (t *tx) ShiftFrom(_ context.Context, point, delta int64) error {
	if !t.writable {
		return errReadOnly
	}
	if delta == 0 {
		return nil
	}

	var lftIDs, rgtIDs []int64
	t.s.byLft.AscendGreaterOrEqual(key{v: point, id: math.MinInt64}, func(k key) bool {
		lftIDs = append(lftIDs, k.id)
		return true
	})
	t.s.byRgt.AscendGreaterOrEqual(key{v: point, id: math.MinInt64}, func(k key) bool {
		rgtIDs = append(rgtIDs, k.id)
		return true
	})

	for _, id := range lftIDs {
		r, _ := t.row(id)
		t.s.byLft.Delete(key{v: r.lft, id: id})
		r.lft += delta
		t.put(r)
	}
	for _, id := range rgtIDs {
		r, _ := t.row(id)
		t.s.byRgt.Delete(key{v: r.rgt, id: id})
		r.rgt += delta
		t.put(r)
	}
	for _, id := range lftIDs {
		r, _ := t.row(id)
		t.s.byLft.ReplaceOrInsert(key{v: r.lft, id: id})
	}
	for _, id := range rgtIDs {
		r, _ := t.row(id)
		t.s.byRgt.ReplaceOrInsert(key{v: r.rgt, id: id})
	}
	return nil
}

func (t *tx) ShiftRange(_ context.Context, lft, rgt, delta int64) error {
	if !t.writable {
		return errReadOnly
	}
	if delta == 0 {
		return nil
	}

	ids := t.rangeIDs(lft, rgt)
	for _, id := range ids {
		r, _ := t.row(id)
		t.unindex(r)
		r.lft += delta
		r.rgt += delta
		t.put(r)
	}
	for _, id := range ids {
		r, _ := t.row(id)
		t.index(r)
	}
	return nil
}

func (t *tx) DeleteRange(_ context.Context, lft, rgt int64) (int64, error) {
	if !t.writable {
		return 0, errReadOnly
	}
	ids := t.rangeIDs(lft, rgt)
	for _, id := range ids {
		if r, ok := t.s.rows.Delete(row{id: id}); ok {
			t.unindex(r)
		}
	}
	return int64(len(ids)), nil
}

func (t *tx) CreateNode(_ context.Context, n *nestedset.Node) error {
	if !t.writable {
		return errReadOnly
	}
	if n.ParentID != 0 {
		if !t.s.rows.Has(row{id: n.ParentID}) {
			return nestedset.Integrity(fmt.Errorf("parent %d does not exist", n.ParentID))
		}
	}
	if t.boundaryTaken(n.Lft) || t.boundaryTaken(n.Rgt) {
		return nestedset.Integrity(fmt.Errorf("interval [%d,%d] collides with an existing row", n.Lft, n.Rgt))
	}

	id := t.s.nextID
	t.s.nextID++
	r := row{id: id, parent: n.ParentID, lft: n.Lft, rgt: n.Rgt, cols: maps.Clone(n.Columns)}
	t.put(r)
	t.index(r)
	n.ID = id
	return nil
}

func (t *tx) SetParent(_ context.Context, id, parentID int64) error {
	if !t.writable {
		return errReadOnly
	}
	r, ok := t.row(id)
	if !ok {
		return nestedset.NotFound(id)
	}
	if parentID != 0 {
		if !t.s.rows.Has(row{id: parentID}) {
			return nestedset.Integrity(fmt.Errorf("parent %d does not exist", parentID))
		}
	}
	r.parent = parentID
	t.put(r)
	return nil
}

func (t *tx) SetInterval(_ context.Context, id, lft, rgt int64) error {
	if !t.writable {
		return errReadOnly
	}
	r, ok := t.row(id)
	if !ok {
		return nestedset.NotFound(id)
	}
	t.unindex(r)
	r.lft, r.rgt = lft, rgt
	t.put(r)
	t.index(r)
	return nil
}

func (t *tx) Range(_ context.Context, lft, rgt int64) ([]nestedset.Node, error) {
	ids := t.rangeIDs(lft, rgt)
	out := make([]nestedset.Node, 0, len(ids))
	for _, id := range ids {
		r, _ := t.row(id)
		out = append(out, r.node())
	}
	return out, nil
}

func (t *tx) Enclosing(_ context.Context, lft, rgt int64) ([]nestedset.Node, error) {
	var out []nestedset.Node
	t.s.byLft.AscendLessThan(key{v: lft, id: math.MinInt64}, func(k key) bool {
		if r, _ := t.row(k.id); r.rgt > rgt {
			out = append(out, r.node())
		}
		return true
	})
	return out, nil
}

func (t *tx) ChildrenOf(_ context.Context, parentID int64) ([]nestedset.Node, error) {
	var out []nestedset.Node
	t.s.byLft.Ascend(func(k key) bool {
		if r, _ := t.row(k.id); r.parent == parentID {
			out = append(out, r.node())
		}
		return true
	})
	return out, nil
}

func (t *tx) All(context.Context) ([]nestedset.Node, error) {
	out := make([]nestedset.Node, 0, t.s.rows.Len())
	t.s.byLft.Ascend(func(k key) bool {
		r, _ := t.row(k.id)
		out = append(out, r.node())
		return true
	})
	return out, nil
}

// rangeIDs returns ids of rows with lft >= lft and rgt <= rgt, by lft.
func (t *tx) rangeIDs(lft, rgt int64) []int64 {
	var ids []int64
	t.s.byLft.AscendRange(key{v: lft, id: math.MinInt64}, key{v: rgt + 1, id: math.MinInt64}, func(k key) bool {
		if r, _ := t.row(k.id); r.rgt <= rgt {
			ids = append(ids, k.id)
		}
		return true
	})
	return ids
}

func (t *tx) boundaryTaken(v int64) bool {
	taken := false
	match := func(k key) bool {
		taken = k.v == v
		return false
	}
	t.s.byLft.AscendGreaterOrEqual(key{v: v, id: math.MinInt64}, match)
	if taken {
		return true
	}
	t.s.byRgt.AscendGreaterOrEqual(key{v: v, id: math.MinInt64}, match)
	return taken
}

func (t *tx) index(r row) {
	t.s.byLft.ReplaceOrInsert(key{v: r.lft, id: r.id})
	t.s.byRgt.ReplaceOrInsert(key{v: r.rgt, id: r.id})
}

func (t *tx) unindex(r row) {
	t.s.byLft.Delete(key{v: r.lft, id: r.id})
	t.s.byRgt.Delete(key{v: r.rgt, id: r.id})
}
