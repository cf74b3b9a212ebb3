package nestedset

// Node is one row of a nested-set forest.
type Node struct {
	ID       int64 // Assigned by the store on first insert, never reused
	ParentID int64 // 0 marks a root
	Lft      int64
	Rgt      int64

	// Columns holds entity column values written alongside the interval on
	// first insert. The tree algorithms never read it.
	Columns map[string]any
}

// Positioned reports whether the node has been given an interval.
func (n Node) Positioned() bool {
	return n.Lft > 0 && n.Rgt > 0
}

// IsRoot reports whether the node has no parent.
func (n Node) IsRoot() bool {
	return n.ParentID == 0
}

// Width is the interval space consumed by the node and its descendants.
func (n Node) Width() int64 {
	return n.Rgt - n.Lft + 1
}

// Contains reports whether other lies strictly inside n's interval.
func (n Node) Contains(other Node) bool {
	return n.Lft < other.Lft && other.Rgt < n.Rgt
}

// Encloses reports whether other is n itself or one of its descendants,
// judged by interval only.
func (n Node) Encloses(other Node) bool {
	return n.Lft <= other.Lft && other.Rgt <= n.Rgt
}
