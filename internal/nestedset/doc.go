// Package nestedset maintains nested-set (modified preorder tree traversal)
// hierarchies stored as flat rows with lft/rgt interval columns.
//
// Each hierarchical entity type (information objects, actors, taxonomies,
// terms, functions) owns one forest: any number of trees whose nodes are
// numbered so that B is a descendant of A exactly when
// A.Lft < B.Lft and B.Rgt < A.Rgt. Subtree and ancestry queries then reduce
// to interval comparisons.
//
// # Invariants
//
// After every mutation, for one forest:
//
//   - every node has Lft < Rgt
//   - any two intervals are disjoint or strictly nested
//   - a node's children partition (Lft, Rgt) with no gaps
//   - max(Rgt) == 2 * count(nodes)
//
// # Storage
//
// A [Manager] runs the interval arithmetic against a [Store]. Every
// structural mutation happens inside one [Store.Update] call, which holds an
// exclusive lock over the whole forest and rolls back on error, so readers
// observe either the forest before the mutation or after it.
//
// Two stores ship with the module:
//
//   - memstore: an in-memory arena indexed by google/btree
//   - pgstore: PostgreSQL through pgx, one transaction per mutation
//
// # Usage
//
//	mgr := nestedset.NewManager("actor", store)
//	root := &nestedset.Node{}
//	if err := mgr.Insert(ctx, root, 0); err != nil { ... }
//	child := &nestedset.Node{}
//	if err := mgr.Insert(ctx, child, root.ID); err != nil { ... }
//	if _, err := mgr.Delete(ctx, child.ID); err != nil { ... }
package nestedset
