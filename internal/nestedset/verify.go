package nestedset

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"
)

// Rule names reported in a Violation.
const (
	RuleInterval = "lft_lt_rgt"
	RuleOverlap  = "containment"
	RuleParent   = "parent"
	RuleGap      = "contiguous"
	RuleMaxRgt   = "max_rgt"
)

// Violation describes one broken invariant.
type Violation struct {
	NodeID int64  `json:"node_id,omitempty"`
	Rule   string `json:"rule"`
	Detail string `json:"detail"`
}

func (v Violation) String() string {
	if v.NodeID == 0 {
		return fmt.Sprintf("%s: %s", v.Rule, v.Detail)
	}
	return fmt.Sprintf("%s (node %d): %s", v.Rule, v.NodeID, v.Detail)
}

// Check inspects a complete forest and returns every invariant it breaks.
// An empty result means the forest is valid.
func Check(nodes []Node) []Violation {
	var out []Violation

	sorted := make([]Node, len(nodes))
	copy(sorted, nodes)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Lft != sorted[j].Lft {
			return sorted[i].Lft < sorted[j].Lft
		}
		return sorted[i].ID < sorted[j].ID
	})

	var maxRgt int64
	seen := make(map[int64]int64, 2*len(sorted))
	for _, n := range sorted {
		if n.Lft >= n.Rgt {
			out = append(out, Violation{NodeID: n.ID, Rule: RuleInterval,
				Detail: fmt.Sprintf("lft %d is not below rgt %d", n.Lft, n.Rgt)})
		}
		if n.Rgt > maxRgt {
			maxRgt = n.Rgt
		}
		for _, v := range [2]int64{n.Lft, n.Rgt} {
			if other, dup := seen[v]; dup {
				out = append(out, Violation{NodeID: n.ID, Rule: RuleGap,
					Detail: fmt.Sprintf("boundary %d also used by node %d", v, other)})
				continue
			}
			seen[v] = n.ID
		}
	}

	total := int64(2 * len(sorted))
	if maxRgt != total {
		out = append(out, Violation{Rule: RuleMaxRgt,
			Detail: fmt.Sprintf("max rgt is %d, want %d for %d nodes", maxRgt, total, len(sorted))})
	}
	for v := int64(1); v <= total; v++ {
		if _, ok := seen[v]; !ok {
			out = append(out, Violation{Rule: RuleGap,
				Detail: fmt.Sprintf("boundary %d is unused", v)})
		}
	}

	// Walk in preorder keeping the chain of open intervals.
	var stack []Node
	for _, n := range sorted {
		for len(stack) > 0 && stack[len(stack)-1].Rgt < n.Lft {
			stack = stack[:len(stack)-1]
		}
		if len(stack) == 0 {
			if n.ParentID != 0 {
				out = append(out, Violation{NodeID: n.ID, Rule: RuleParent,
					Detail: fmt.Sprintf("interval is top level but parent is %d", n.ParentID)})
			}
		} else {
			top := stack[len(stack)-1]
			if !top.Contains(n) {
				out = append(out, Violation{NodeID: n.ID, Rule: RuleOverlap,
					Detail: fmt.Sprintf("[%d,%d] partially overlaps node %d [%d,%d]",
						n.Lft, n.Rgt, top.ID, top.Lft, top.Rgt)})
			}
			if n.ParentID != top.ID {
				out = append(out, Violation{NodeID: n.ID, Rule: RuleParent,
					Detail: fmt.Sprintf("enclosed by node %d but parent is %d", top.ID, n.ParentID)})
			}
		}
		stack = append(stack, n)
	}

	return out
}

// Verify checks the stored forest against the nested-set invariants.
func (m *Manager) Verify(ctx context.Context) ([]Violation, error) {
	var nodes []Node
	err := m.store.View(ctx, func(tx Tx) error {
		var err error
		nodes, err = tx.All(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}

	violations := Check(nodes)
	forestNodes.WithLabelValues(m.kind).Set(float64(len(nodes)))
	forestViolations.WithLabelValues(m.kind).Set(float64(len(violations)))
	return violations, nil
}

// Rebuild renumbers every interval from the parent references. Roots and
// siblings keep their current relative order (by lft, then id). It fails
// with ErrInvalidHierarchy if a parent reference is dangling or the
// references contain a cycle; the forest is left untouched in that case.
func (m *Manager) Rebuild(ctx context.Context) error {
	start := time.Now()
	var changed int
	err := m.mutate(ctx, "rebuild", func(tx Tx) error {
		nodes, err := tx.All(ctx)
		if err != nil {
			return err
		}
		intervals, err := renumber(nodes)
		if err != nil {
			return err
		}
		for _, n := range nodes {
			iv := intervals[n.ID]
			if iv[0] == n.Lft && iv[1] == n.Rgt {
				continue
			}
			if err := tx.SetInterval(ctx, n.ID, iv[0], iv[1]); err != nil {
				return err
			}
			changed++
		}
		return nil
	})
	if err != nil {
		return err
	}

	slog.Info("nestedset: forest rebuilt",
		"kind", m.kind,
		"changed", changed,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return nil
}

// renumber assigns fresh intervals by depth-first traversal of the parent
// references.
func renumber(nodes []Node) (map[int64][2]int64, error) {
	byID := make(map[int64]Node, len(nodes))
	for _, n := range nodes {
		byID[n.ID] = n
	}

	children := make(map[int64][]Node)
	for _, n := range nodes {
		if n.ParentID != 0 {
			if _, ok := byID[n.ParentID]; !ok {
				return nil, fmt.Errorf("%w: node %d references missing parent %d",
					ErrInvalidHierarchy, n.ID, n.ParentID)
			}
		}
		children[n.ParentID] = append(children[n.ParentID], n)
	}
	for _, list := range children {
		sort.Slice(list, func(i, j int) bool {
			if list[i].Lft != list[j].Lft {
				return list[i].Lft < list[j].Lft
			}
			return list[i].ID < list[j].ID
		})
	}

	out := make(map[int64][2]int64, len(nodes))
	var counter int64

	type frame struct {
		id   int64
		next int
	}
	for _, root := range children[0] {
		counter++
		out[root.ID] = [2]int64{counter, 0}
		stack := []frame{{id: root.ID}}
		for len(stack) > 0 {
			top := &stack[len(stack)-1]
			kids := children[top.id]
			if top.next < len(kids) {
				child := kids[top.next]
				top.next++
				counter++
				out[child.ID] = [2]int64{counter, 0}
				stack = append(stack, frame{id: child.ID})
				continue
			}
			counter++
			iv := out[top.id]
			iv[1] = counter
			out[top.id] = iv
			stack = stack[:len(stack)-1]
		}
	}

	if len(out) != len(nodes) {
		return nil, fmt.Errorf("%w: %d nodes are unreachable from any root (parent cycle)",
			ErrInvalidHierarchy, len(nodes)-len(out))
	}
	return out, nil
}
