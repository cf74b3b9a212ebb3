package importer

import (
	"context"

	"github.com/JonMunkholm/qubit/internal/i18n"
	"github.com/JonMunkholm/qubit/internal/model"
	"github.com/JonMunkholm/qubit/internal/nestedset"
)

// Writer stores the rows an import creates besides the actor tree nodes.
// *database.Queries implements it.
type Writer interface {
	UserIDByUsername(ctx context.Context, username string) (int64, error)
	TermIDByName(ctx context.Context, taxonomyID int64, name string) (int64, error)
	InsertRepository(ctx context.Context, r model.Repository) error
	SlugExists(ctx context.Context, slug string) (bool, error)
	InsertSlug(ctx context.Context, s model.Slug) error
	InsertNote(ctx context.Context, n model.Note) (int64, error)
	InsertOtherName(ctx context.Context, o model.OtherName) (int64, error)
	InsertContactInformation(ctx context.Context, c model.ContactInformation) (int64, error)
	InsertProperty(ctx context.Context, p model.Property) (int64, error)
}

// Session is the set of stores one import writes through. Everything
// written through a Session commits or rolls back together.
type Session interface {
	Actors() *nestedset.Manager
	Records() Writer
	Texts() i18n.Backend

	// Row runs fn in a nested unit of work: if fn fails, only fn's writes
	// are undone and the Session stays usable.
	Row(ctx context.Context, fn func(Session) error) error
}

// Opener starts the transaction an import runs in. The transaction
// commits when fn returns nil and rolls back otherwise.
type Opener interface {
	Open(ctx context.Context, fn func(Session) error) error
}
