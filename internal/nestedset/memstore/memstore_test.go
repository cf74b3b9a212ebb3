package memstore

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/qubit/internal/nestedset"
)

func create(t *testing.T, s *Store, parent, lft, rgt int64) int64 {
	t.Helper()
	n := &nestedset.Node{ParentID: parent, Lft: lft, Rgt: rgt}
	require.NoError(t, s.Update(context.Background(), func(tx nestedset.Tx) error {
		return tx.CreateNode(context.Background(), n)
	}))
	return n.ID
}

func TestShiftFromMovesBoundariesIndependently(t *testing.T) {
	ctx := context.Background()
	s := New()
	root := create(t, s, 0, 1, 4)
	child := create(t, s, root, 2, 3)

	require.NoError(t, s.Update(ctx, func(tx nestedset.Tx) error {
		return tx.ShiftFrom(ctx, 3, 10)
	}))

	require.NoError(t, s.View(ctx, func(tx nestedset.Tx) error {
		r, err := tx.ReadNode(ctx, root)
		require.NoError(t, err)
		assert.Equal(t, int64(1), r.Lft)
		assert.Equal(t, int64(14), r.Rgt)

		c, err := tx.ReadNode(ctx, child)
		require.NoError(t, err)
		assert.Equal(t, int64(2), c.Lft)
		assert.Equal(t, int64(13), c.Rgt)

		maxRgt, err := tx.MaxRgt(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(14), maxRgt)
		return nil
	}))
}

func TestRangeAndEnclosing(t *testing.T) {
	ctx := context.Background()
	s := New()
	root := create(t, s, 0, 1, 6)
	a := create(t, s, root, 2, 3)
	b := create(t, s, root, 4, 5)
	other := create(t, s, 0, 7, 8)

	require.NoError(t, s.View(ctx, func(tx nestedset.Tx) error {
		sub, err := tx.Range(ctx, 1, 6)
		require.NoError(t, err)
		ids := make([]int64, 0, len(sub))
		for _, n := range sub {
			ids = append(ids, n.ID)
		}
		assert.Equal(t, []int64{root, a, b}, ids)

		enc, err := tx.Enclosing(ctx, 4, 5)
		require.NoError(t, err)
		require.Len(t, enc, 1)
		assert.Equal(t, root, enc[0].ID)

		roots, err := tx.ChildrenOf(ctx, 0)
		require.NoError(t, err)
		require.Len(t, roots, 2)
		assert.Equal(t, other, roots[1].ID)
		return nil
	}))
}

func TestUpdateRollsBackOnError(t *testing.T) {
	ctx := context.Background()
	s := New()
	root := create(t, s, 0, 1, 2)
	boom := errors.New("boom")

	var created int64
	err := s.Update(ctx, func(tx nestedset.Tx) error {
		if err := tx.ShiftFrom(ctx, 2, 2); err != nil {
			return err
		}
		n := &nestedset.Node{ParentID: root, Lft: 2, Rgt: 3}
		if err := tx.CreateNode(ctx, n); err != nil {
			return err
		}
		created = n.ID
		return boom
	})
	require.ErrorIs(t, err, boom)
	assert.Equal(t, 1, s.Len())

	require.NoError(t, s.View(ctx, func(tx nestedset.Tx) error {
		r, err := tx.ReadNode(ctx, root)
		require.NoError(t, err)
		assert.Equal(t, int64(2), r.Rgt)
		_, err = tx.ReadNode(ctx, created)
		assert.ErrorIs(t, err, nestedset.ErrNotFound)
		return nil
	}))

	// ids handed out inside the failed transaction are not reused
	next := create(t, s, 0, 3, 4)
	assert.Greater(t, next, created)
}

func TestViewIsReadOnly(t *testing.T) {
	ctx := context.Background()
	s := New()
	err := s.View(ctx, func(tx nestedset.Tx) error {
		return tx.ShiftFrom(ctx, 1, 2)
	})
	assert.ErrorIs(t, err, errReadOnly)
}

func TestCreateNodeIntegrity(t *testing.T) {
	ctx := context.Background()
	s := New()
	create(t, s, 0, 1, 2)

	tests := []struct {
		name string
		node nestedset.Node
	}{
		{name: "missing parent", node: nestedset.Node{ParentID: 99, Lft: 3, Rgt: 4}},
		{name: "duplicate boundary", node: nestedset.Node{Lft: 2, Rgt: 5}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := tt.node
			err := s.Update(ctx, func(tx nestedset.Tx) error {
				return tx.CreateNode(ctx, &n)
			})
			assert.ErrorIs(t, err, nestedset.ErrIntegrity)
		})
	}
}

func TestCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s := New()
	called := false
	err := s.Update(ctx, func(nestedset.Tx) error {
		called = true
		return nil
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, called)
}

func TestLoadKeepsIDs(t *testing.T) {
	ctx := context.Background()
	s := New()
	require.NoError(t, s.Load([]nestedset.Node{
		{ID: 3, Lft: 1, Rgt: 4},
		{ID: 8, ParentID: 3, Lft: 2, Rgt: 3},
	}))
	assert.Equal(t, 2, s.Len())

	m := nestedset.NewManager("actor", s)
	n := &nestedset.Node{}
	require.NoError(t, m.Insert(ctx, n, 3))
	assert.Equal(t, int64(9), n.ID)
	assert.Equal(t, int64(4), n.Lft)

	root, err := m.Get(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, int64(6), root.Rgt)
}

func TestLoadRejectsBadInput(t *testing.T) {
	s := New()
	assert.ErrorIs(t, s.Load([]nestedset.Node{{Lft: 1, Rgt: 2}}), nestedset.ErrUnsavedEntity)
	assert.ErrorIs(t, s.Load([]nestedset.Node{{ID: 1, Lft: 1, Rgt: 2}, {ID: 1, Lft: 3, Rgt: 4}}), nestedset.ErrIntegrity)
}

func TestRestoreUndoesCommittedUpdates(t *testing.T) {
	ctx := context.Background()
	s := New()
	root := create(t, s, 0, 1, 2)
	snap := s.Snapshot()

	m := nestedset.NewManager("test", s)
	for range 3 {
		require.NoError(t, m.Insert(ctx, &nestedset.Node{}, root))
	}
	require.Equal(t, 4, s.Len())

	s.Restore(snap)
	assert.Equal(t, 1, s.Len())
	got, err := m.Get(ctx, root)
	require.NoError(t, err)
	assert.Equal(t, int64(2), got.Rgt)

	// the restored forest is writable and ids keep counting up
	n := &nestedset.Node{}
	require.NoError(t, m.Insert(ctx, n, root))
	assert.Equal(t, int64(5), n.ID)
	violations, err := m.Verify(ctx)
	require.NoError(t, err)
	assert.Empty(t, violations)
}

func TestSnapshotIsUnaffectedByLaterWrites(t *testing.T) {
	ctx := context.Background()
	s := New()
	root := create(t, s, 0, 1, 2)
	m := nestedset.NewManager("test", s)

	snap := s.Snapshot()
	for range 50 {
		require.NoError(t, m.Insert(ctx, &nestedset.Node{}, root))
	}
	s.Restore(snap)

	require.NoError(t, s.View(ctx, func(tx nestedset.Tx) error {
		all, err := tx.All(ctx)
		require.NoError(t, err)
		require.Len(t, all, 1)
		assert.Equal(t, nestedset.Node{ID: root, Lft: 1, Rgt: 2}, all[0])
		return nil
	}))
}
