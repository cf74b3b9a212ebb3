package nestedset

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// Manager keeps the lft/rgt numbering of one forest consistent. It is safe
// for concurrent use; serialization is delegated to the Store.
type Manager struct {
	kind  string
	store Store
}

// NewManager returns a Manager for the forest of the given entity kind.
// kind is only used for logging and metric labels.
func NewManager(kind string, store Store) *Manager {
	return &Manager{kind: kind, store: store}
}

// Kind returns the entity kind this manager maintains.
func (m *Manager) Kind() string {
	return m.kind
}

// Insert places n as the last child of parentID, or as the last root when
// parentID is 0. A node without an id is created and receives its id and
// interval. A node that already has an id is relocated, which is the same
// as Move.
//
// Any Lft/Rgt values set on an unsaved node are ignored.
func (m *Manager) Insert(ctx context.Context, n *Node, parentID int64) error {
	if n == nil {
		return errors.New("nestedset: insert of nil node")
	}
	if parentID < 0 {
		return fmt.Errorf("nestedset: invalid parent id %d", parentID)
	}
	if n.ID != 0 {
		moved, err := m.Move(ctx, n.ID, parentID)
		if err != nil {
			return err
		}
		n.ParentID, n.Lft, n.Rgt = moved.ParentID, moved.Lft, moved.Rgt
		return nil
	}

	before := *n
	err := m.mutate(ctx, "insert", func(tx Tx) error {
		point, err := insertionPoint(ctx, tx, parentID)
		if err != nil {
			return err
		}
		if parentID != 0 {
			if err := tx.ShiftFrom(ctx, point, 2); err != nil {
				return fmt.Errorf("open gap at %d: %w", point, err)
			}
		}
		n.ParentID = parentID
		n.Lft = point
		n.Rgt = point + 1
		return tx.CreateNode(ctx, n)
	})
	if err != nil {
		*n = before
		return err
	}

	slog.Debug("nestedset: node inserted",
		"kind", m.kind,
		"node_id", n.ID,
		"parent_id", parentID,
		"lft", n.Lft,
		"rgt", n.Rgt,
	)
	return nil
}

// Move re-parents the subtree rooted at id under newParentID (0 makes it a
// root after all existing roots). The subtree keeps its shape and width.
// Moving a node under itself or one of its descendants fails with
// ErrInvalidHierarchy. Moving to the current parent changes nothing.
func (m *Manager) Move(ctx context.Context, id, newParentID int64) (Node, error) {
	if id <= 0 {
		return Node{}, fmt.Errorf("move: %w", ErrUnsavedEntity)
	}
	if newParentID < 0 {
		return Node{}, fmt.Errorf("nestedset: invalid parent id %d", newParentID)
	}

	var out Node
	err := m.mutate(ctx, "move", func(tx Tx) error {
		n, err := tx.ReadNode(ctx, id)
		if err != nil {
			return err
		}
		if n.ParentID == newParentID {
			out = n
			return nil
		}

		var target int64
		if newParentID == 0 {
			maxRgt, err := tx.MaxRgt(ctx)
			if err != nil {
				return err
			}
			target = maxRgt + 1
		} else {
			p, err := tx.ReadNode(ctx, newParentID)
			if err != nil {
				return fmt.Errorf("new parent: %w", err)
			}
			if n.Encloses(p) {
				return fmt.Errorf("%w: node %d cannot be moved under %d, which is inside its own subtree",
					ErrInvalidHierarchy, id, newParentID)
			}
			target = p.Rgt
		}

		width := n.Width()
		lft, rgt := n.Lft, n.Rgt

		if err := tx.ShiftFrom(ctx, target, width); err != nil {
			return fmt.Errorf("open gap at %d: %w", target, err)
		}
		// The subtree sits entirely on one side of the target.
		if lft >= target {
			lft += width
			rgt += width
		}
		if err := tx.ShiftRange(ctx, lft, rgt, target-lft); err != nil {
			return fmt.Errorf("relocate subtree: %w", err)
		}
		if err := tx.ShiftFrom(ctx, rgt+1, -width); err != nil {
			return fmt.Errorf("close gap at %d: %w", rgt+1, err)
		}
		if err := tx.SetParent(ctx, id, newParentID); err != nil {
			return err
		}

		out, err = tx.ReadNode(ctx, id)
		return err
	})
	if err != nil {
		return Node{}, err
	}

	slog.Debug("nestedset: node moved",
		"kind", m.kind,
		"node_id", id,
		"parent_id", newParentID,
		"lft", out.Lft,
		"rgt", out.Rgt,
	)
	return out, nil
}

// Save persists the hierarchy position of n. An unsaved node is inserted
// under n.ParentID; a saved node whose ParentID differs from the stored one
// is moved there. On return n carries the stored interval.
func (m *Manager) Save(ctx context.Context, n *Node) error {
	if n == nil {
		return errors.New("nestedset: save of nil node")
	}
	if n.ID == 0 {
		return m.Insert(ctx, n, n.ParentID)
	}
	moved, err := m.Move(ctx, n.ID, n.ParentID)
	if err != nil {
		return err
	}
	n.Lft, n.Rgt = moved.Lft, moved.Rgt
	return nil
}

// Delete removes id and its whole subtree, then compacts the interval space
// left behind. It returns the number of rows removed.
func (m *Manager) Delete(ctx context.Context, id int64) (int64, error) {
	if id <= 0 {
		return 0, fmt.Errorf("delete: %w", ErrUnsavedEntity)
	}

	var removed int64
	err := m.mutate(ctx, "delete", func(tx Tx) error {
		n, err := tx.ReadNode(ctx, id)
		if err != nil {
			return err
		}
		removed, err = tx.DeleteRange(ctx, n.Lft, n.Rgt)
		if err != nil {
			return fmt.Errorf("delete subtree: %w", err)
		}
		if err := tx.ShiftFrom(ctx, n.Rgt+1, -n.Width()); err != nil {
			return fmt.Errorf("close gap at %d: %w", n.Rgt+1, err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	slog.Debug("nestedset: subtree deleted",
		"kind", m.kind,
		"node_id", id,
		"removed", removed,
	)
	return removed, nil
}

// Get returns the stored row for id.
func (m *Manager) Get(ctx context.Context, id int64) (Node, error) {
	var n Node
	err := m.store.View(ctx, func(tx Tx) error {
		var err error
		n, err = tx.ReadNode(ctx, id)
		return err
	})
	return n, err
}

// Children returns the direct children of id ordered by lft.
func (m *Manager) Children(ctx context.Context, id int64) ([]Node, error) {
	var out []Node
	err := m.store.View(ctx, func(tx Tx) error {
		if _, err := tx.ReadNode(ctx, id); err != nil {
			return err
		}
		var err error
		out, err = tx.ChildrenOf(ctx, id)
		return err
	})
	return out, err
}

// Roots returns the roots of the forest ordered by lft.
func (m *Manager) Roots(ctx context.Context) ([]Node, error) {
	var out []Node
	err := m.store.View(ctx, func(tx Tx) error {
		var err error
		out, err = tx.ChildrenOf(ctx, 0)
		return err
	})
	return out, err
}

// Subtree returns id followed by all of its descendants in preorder.
func (m *Manager) Subtree(ctx context.Context, id int64) ([]Node, error) {
	var out []Node
	err := m.store.View(ctx, func(tx Tx) error {
		n, err := tx.ReadNode(ctx, id)
		if err != nil {
			return err
		}
		out, err = tx.Range(ctx, n.Lft, n.Rgt)
		return err
	})
	return out, err
}

// Ancestors returns the ancestors of id from the root down to its parent.
func (m *Manager) Ancestors(ctx context.Context, id int64) ([]Node, error) {
	var out []Node
	err := m.store.View(ctx, func(tx Tx) error {
		n, err := tx.ReadNode(ctx, id)
		if err != nil {
			return err
		}
		out, err = tx.Enclosing(ctx, n.Lft, n.Rgt)
		return err
	})
	return out, err
}

func (m *Manager) mutate(ctx context.Context, op string, fn func(tx Tx) error) error {
	start := time.Now()
	err := m.store.Update(ctx, fn)
	observeMutation(m.kind, op, time.Since(start), err)
	if err != nil {
		slog.Debug("nestedset: mutation rolled back",
			"kind", m.kind,
			"op", op,
			"error", err,
		)
	}
	return err
}

// insertionPoint is parent.rgt for a child, or one past the forest's
// current maximum for a new root.
func insertionPoint(ctx context.Context, tx Tx, parentID int64) (int64, error) {
	if parentID == 0 {
		maxRgt, err := tx.MaxRgt(ctx)
		if err != nil {
			return 0, err
		}
		return maxRgt + 1, nil
	}
	p, err := tx.ReadNode(ctx, parentID)
	if err != nil {
		return 0, fmt.Errorf("parent: %w", err)
	}
	return p.Rgt, nil
}
