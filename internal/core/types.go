// Package core is the service layer over the hierarchical entity kinds of
// a Qubit database. It has no transport dependencies and is used by both
// the HTTP server and the CLI.
package core

import (
	"github.com/JonMunkholm/qubit/internal/i18n"
	"github.com/JonMunkholm/qubit/internal/nestedset"
)

// KindInfo contains display information about an entity kind.
type KindInfo struct {
	Key       string   `json:"key"`        // Unique identifier: "actor"
	Label     string   `json:"label"`      // Display name: "Actors"
	Table     string   `json:"table"`      // Entity table holding lft/rgt: "actor"
	ClassName string   `json:"class_name"` // Object class: "QubitActor"
	RootID    int64    `json:"root_id,omitempty"`
	I18nTable string   `json:"i18n_table,omitempty"`
	Fields    []string `json:"fields,omitempty"` // Translatable fields
}

// TextsFunc binds a kind's typed translation table to a backend.
type TextsFunc func(backend i18n.Backend, fallback string) i18n.Texts

// KindDefinition contains everything needed to serve one entity kind.
type KindDefinition struct {
	Info KindInfo

	// Texts is nil for kinds without translated columns.
	Texts TextsFunc
}

// NodeView is the JSON shape of a tree node.
type NodeView struct {
	ID       int64 `json:"id"`
	ParentID int64 `json:"parent_id,omitempty"`
	Lft      int64 `json:"lft"`
	Rgt      int64 `json:"rgt"`
}

// ViewOf converts a node for output.
func ViewOf(n nestedset.Node) NodeView {
	return NodeView{ID: n.ID, ParentID: n.ParentID, Lft: n.Lft, Rgt: n.Rgt}
}

// ViewsOf converts a list of nodes for output. Never returns nil.
func ViewsOf(nodes []nestedset.Node) []NodeView {
	out := make([]NodeView, len(nodes))
	for i, n := range nodes {
		out[i] = ViewOf(n)
	}
	return out
}

// VerifyReport is the outcome of checking one kind.
type VerifyReport struct {
	Kind       string                `json:"kind"`
	Valid      bool                  `json:"valid"`
	Violations []nestedset.Violation `json:"violations,omitempty"`
}
