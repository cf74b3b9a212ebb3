package nestedset

import "context"

// Store gives a Manager transactional access to the rows of one forest.
//
// Update runs fn while holding an exclusive lock over every row of the
// forest. If fn returns an error, all of its writes are discarded. View runs
// fn against a consistent snapshot and must not write.
type Store interface {
	Update(ctx context.Context, fn func(tx Tx) error) error
	View(ctx context.Context, fn func(tx Tx) error) error
}

// Tx is the record-store surface used by the tree algorithms. All calls made
// for one structural mutation go through the same Tx.
type Tx interface {
	// ReadNode returns the current row for id, or an error wrapping
	// ErrNotFound.
	ReadNode(ctx context.Context, id int64) (Node, error)

	// MaxRgt returns the largest rgt in the forest, 0 when empty.
	MaxRgt(ctx context.Context) (int64, error)

	// Count returns the number of rows in the forest.
	Count(ctx context.Context) (int64, error)

	// ShiftFrom adds delta to every lft >= point and, independently, to
	// every rgt >= point.
	ShiftFrom(ctx context.Context, point, delta int64) error

	// ShiftRange adds delta to both lft and rgt of every row with
	// lft >= lft and rgt <= rgt.
	ShiftRange(ctx context.Context, lft, rgt, delta int64) error

	// DeleteRange removes every row with lft >= lft and rgt <= rgt and
	// reports how many were removed.
	DeleteRange(ctx context.Context, lft, rgt int64) (int64, error)

	// CreateNode stores a new row and assigns n.ID.
	CreateNode(ctx context.Context, n *Node) error

	// SetParent rewrites the parent reference of id. 0 clears it.
	SetParent(ctx context.Context, id, parentID int64) error

	// SetInterval overwrites lft and rgt of one row. Only Rebuild uses it.
	SetInterval(ctx context.Context, id, lft, rgt int64) error

	// Range returns rows with lft >= lft and rgt <= rgt ordered by lft.
	Range(ctx context.Context, lft, rgt int64) ([]Node, error)

	// Enclosing returns rows with lft < lft and rgt > rgt ordered by lft.
	Enclosing(ctx context.Context, lft, rgt int64) ([]Node, error)

	// ChildrenOf returns the direct children of parentID ordered by lft.
	// parentID 0 returns the roots.
	ChildrenOf(ctx context.Context, parentID int64) ([]Node, error)

	// All returns every row ordered by lft.
	All(ctx context.Context) ([]Node, error)
}
