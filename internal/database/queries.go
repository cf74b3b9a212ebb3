package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/JonMunkholm/qubit/internal/model"
	"github.com/JonMunkholm/qubit/internal/nestedset"
)

const userIDByUsername = `SELECT id FROM "user" WHERE username = $1`

// UserIDByUsername returns the id of the user with the given login name.
func (q *Queries) UserIDByUsername(ctx context.Context, username string) (int64, error) {
	var id int64
	err := q.db.QueryRow(ctx, userIDByUsername, username).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, fmt.Errorf("user %q: %w", username, nestedset.ErrNotFound)
	}
	return id, err
}

const termIDByName = `SELECT t.id FROM term t
JOIN term_i18n i ON i.id = t.id
WHERE t.taxonomy_id = $1 AND i.name = $2
ORDER BY t.id
LIMIT 1`

// TermIDByName finds a term of a taxonomy by its name in any culture.
func (q *Queries) TermIDByName(ctx context.Context, taxonomyID int64, name string) (int64, error) {
	var id int64
	err := q.db.QueryRow(ctx, termIDByName, taxonomyID, name).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, fmt.Errorf("term %q in taxonomy %d: %w", name, taxonomyID, nestedset.ErrNotFound)
	}
	return id, err
}

const insertRepository = `INSERT INTO repository (id, identifier, desc_status_id, desc_detail_id, desc_identifier, source_culture)
VALUES ($1, $2, $3, $4, $5, $6)`

// InsertRepository writes the repository extension row of an existing actor.
func (q *Queries) InsertRepository(ctx context.Context, r model.Repository) error {
	if !r.Saved() {
		return fmt.Errorf("repository: %w", nestedset.ErrUnsavedEntity)
	}
	_, err := q.db.Exec(ctx, insertRepository,
		r.ID,
		ToPgText(r.Identifier),
		ToPgInt8(r.DescStatusID),
		ToPgInt8(r.DescDetailID),
		ToPgText(r.RepositoryDescriptionIdentifier),
		r.RepositorySourceCulture,
	)
	return Classify(err)
}

const slugExists = `SELECT EXISTS (SELECT 1 FROM slug WHERE slug = $1)`

func (q *Queries) SlugExists(ctx context.Context, slug string) (bool, error) {
	var exists bool
	err := q.db.QueryRow(ctx, slugExists, slug).Scan(&exists)
	return exists, err
}

const insertSlug = `INSERT INTO slug (object_id, slug, serial_number) VALUES ($1, $2, 0)`

func (q *Queries) InsertSlug(ctx context.Context, s model.Slug) error {
	_, err := q.db.Exec(ctx, insertSlug, s.ObjectID, s.Slug)
	return Classify(err)
}

const insertNote = `INSERT INTO note (object_id, type_id, scope, user_id, source_culture, lft, rgt, created_at, updated_at, serial_number)
VALUES ($1, $2, $3, $4, $5, 0, 0, $6, $7, 0)
RETURNING id`

// InsertNote stores n and returns its new id. The legacy lft/rgt columns
// are written as 0.
func (q *Queries) InsertNote(ctx context.Context, n model.Note) (int64, error) {
	var id int64
	err := q.db.QueryRow(ctx, insertNote,
		n.ObjectID,
		ToPgInt8(n.TypeID),
		ToPgText(n.Scope),
		ToPgInt8(n.UserID),
		n.SourceCulture,
		ToPgTimestamp(n.CreatedAt),
		ToPgTimestamp(n.UpdatedAt),
	).Scan(&id)
	return id, Classify(err)
}

const insertProperty = `INSERT INTO property (object_id, scope, name, source_culture, created_at, updated_at, serial_number)
VALUES ($1, $2, $3, $4, $5, $6, 0)
RETURNING id`

func (q *Queries) InsertProperty(ctx context.Context, p model.Property) (int64, error) {
	var id int64
	err := q.db.QueryRow(ctx, insertProperty,
		p.ObjectID,
		ToPgText(p.Scope),
		ToPgText(p.Name),
		p.SourceCulture,
		ToPgTimestamp(p.CreatedAt),
		ToPgTimestamp(p.UpdatedAt),
	).Scan(&id)
	return id, Classify(err)
}

const insertOtherName = `INSERT INTO other_name (object_id, type_id, source_culture, created_at, updated_at, serial_number)
VALUES ($1, $2, $3, $4, $5, 0)
RETURNING id`

func (q *Queries) InsertOtherName(ctx context.Context, o model.OtherName) (int64, error) {
	var id int64
	err := q.db.QueryRow(ctx, insertOtherName,
		o.ObjectID,
		ToPgInt8(o.TypeID),
		o.SourceCulture,
		ToPgTimestamp(o.CreatedAt),
		ToPgTimestamp(o.UpdatedAt),
	).Scan(&id)
	return id, Classify(err)
}

const insertContactInformation = `INSERT INTO contact_information (
    actor_id, primary_contact, contact_person, street_address, website, email,
    telephone, fax, postal_code, country_code, source_culture,
    created_at, updated_at, serial_number
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, 0)
RETURNING id`

func (q *Queries) InsertContactInformation(ctx context.Context, c model.ContactInformation) (int64, error) {
	var id int64
	err := q.db.QueryRow(ctx, insertContactInformation,
		c.ActorID,
		c.PrimaryContact,
		ToPgText(c.ContactPerson),
		ToPgText(c.StreetAddress),
		ToPgText(c.Website),
		ToPgText(c.Email),
		ToPgText(c.Telephone),
		ToPgText(c.Fax),
		ToPgText(c.PostalCode),
		ToPgText(c.CountryCode),
		c.SourceCulture,
		ToPgTimestamp(c.CreatedAt),
		ToPgTimestamp(c.UpdatedAt),
	).Scan(&id)
	return id, Classify(err)
}
