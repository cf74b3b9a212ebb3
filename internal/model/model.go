// Package model holds the archival-description entities as plain structs.
//
// Shared columns live in small base structs embedded by value: every entity
// with its own object row embeds Object, hierarchical ones additionally
// embed Tree, and Repository and User embed Actor.
package model

import (
	"time"

	"github.com/jackc/pgx/v5/pgtype"
)

// DefaultCulture is the fallback culture for translated text.
const DefaultCulture = "en"

// Object is the row every entity owns in the shared object table.
type Object struct {
	ID           int64
	ClassName    string
	SerialNumber int32
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Saved reports whether the object has been assigned an id.
func (o Object) Saved() bool {
	return o.ID > 0
}

// Touch stamps the object for a save at now. CreatedAt is only set on
// the first save. An empty ClassName becomes "Qubit" + typeName.
func (o *Object) Touch(now time.Time, typeName string) {
	if o.ID == 0 {
		o.CreatedAt = now
	}
	o.UpdatedAt = now
	if o.ClassName == "" {
		o.ClassName = ClassName(typeName)
	}
}

// ClassName returns the Qubit class name for an entity type name.
func ClassName(typeName string) string {
	return "Qubit" + typeName
}

// Tree holds the hierarchy columns. Lft and Rgt are maintained by the
// nestedset package and never written by callers.
type Tree struct {
	ParentID int64
	Lft      int64
	Rgt      int64
}

// Described holds the description metadata shared by actors, information
// objects and functions.
type Described struct {
	DescriptionStatusID   int64
	DescriptionDetailID   int64
	DescriptionIdentifier string
	SourceStandard        string
	SourceCulture         string
}

type Taxonomy struct {
	Object
	Tree
	Usage         string
	SourceCulture string
}

type Term struct {
	Object
	Tree
	TaxonomyID    int64
	Code          string
	SourceCulture string
}

type Actor struct {
	Object
	Tree
	Described
	CorporateBodyIdentifiers string
	EntityTypeID             int64
}

// Repository is an actor with institutional description fields.
type Repository struct {
	Actor
	Identifier                      string
	DescStatusID                    int64
	DescDetailID                    int64
	RepositoryDescriptionIdentifier string
	RepositorySourceCulture         string
}

// User is an actor that can log in.
type User struct {
	Actor
	Username     string
	Email        string
	SHA1Password string
	Salt         string
}

type InformationObject struct {
	Object
	Tree
	Described
	Identifier         string
	OAILocalIdentifier int64
	LevelOfDescription int64
	CollectionTypeID   int64
	RepositoryID       int64
}

type Function struct {
	Object
	Tree
	Described
	TypeID int64
}

type DigitalObject struct {
	Object
	Tree
	InformationObjectID int64
	UsageID             int64
	MimeType            string
	MediaTypeID         int64
	Name                string
	Path                string
	Checksum            string
	ChecksumTypeID      int64
}

type Event struct {
	Object
	StartDate           pgtype.Date
	EndDate             pgtype.Date
	TypeID              int64
	InformationObjectID int64
	ActorID             int64
	SourceCulture       string
}

// Note, Property, OtherName and ContactInformation have their own id
// sequence and no object row.

type Note struct {
	ID            int64
	ObjectID      int64
	TypeID        int64
	Scope         string
	UserID        int64
	SourceCulture string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

type Property struct {
	ID            int64
	ObjectID      int64
	Scope         string
	Name          string
	SourceCulture string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

type OtherName struct {
	ID            int64
	ObjectID      int64
	TypeID        int64
	SourceCulture string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

type ContactInformation struct {
	ID             int64
	ActorID        int64
	PrimaryContact bool
	ContactPerson  string
	StreetAddress  string
	Website        string
	Email          string
	Telephone      string
	Fax            string
	PostalCode     string
	CountryCode    string
	SourceCulture  string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

type Slug struct {
	ObjectID int64
	Slug     string
}
