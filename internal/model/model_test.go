package model

import (
	"testing"
	"time"
)

func TestObjectTouch(t *testing.T) {
	first := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	later := first.Add(time.Hour)

	var repo Repository
	repo.Touch(first, "Repository")
	if repo.ClassName != "QubitRepository" {
		t.Errorf("ClassName = %q, want %q", repo.ClassName, "QubitRepository")
	}
	if !repo.CreatedAt.Equal(first) || !repo.UpdatedAt.Equal(first) {
		t.Errorf("timestamps = %v/%v, want both %v", repo.CreatedAt, repo.UpdatedAt, first)
	}

	repo.ID = 42
	repo.Touch(later, "Repository")
	if !repo.CreatedAt.Equal(first) {
		t.Errorf("CreatedAt changed on update: %v", repo.CreatedAt)
	}
	if !repo.UpdatedAt.Equal(later) {
		t.Errorf("UpdatedAt = %v, want %v", repo.UpdatedAt, later)
	}
}

func TestObjectTouchKeepsExplicitClassName(t *testing.T) {
	o := Object{ClassName: "QubitCustom"}
	o.Touch(time.Now(), "Actor")
	if o.ClassName != "QubitCustom" {
		t.Errorf("ClassName = %q, want QubitCustom", o.ClassName)
	}
}

func TestEmbeddedFieldsPromote(t *testing.T) {
	u := User{Username: "qubit"}
	u.ID = 7
	u.ParentID = ActorRootID
	u.SourceCulture = DefaultCulture

	if !u.Saved() {
		t.Error("Saved() = false, want true")
	}
	if u.Actor.Object.ID != 7 {
		t.Errorf("Actor.Object.ID = %d, want 7", u.Actor.Object.ID)
	}
	if u.Actor.Tree.ParentID != ActorRootID {
		t.Errorf("ParentID = %d, want %d", u.Actor.Tree.ParentID, ActorRootID)
	}
}
