// Package importer loads the EHRI contact spreadsheet into a Qubit
// database.
//
// Every spreadsheet row becomes a repository (an actor of type corporate
// body) placed under a parent actor, together with its slug, maintenance
// notes, an English other name, primary contact information and the
// language/script properties Qubit expects on an institution.
package importer

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/JonMunkholm/qubit/internal/i18n"
	"github.com/JonMunkholm/qubit/internal/model"
	"github.com/JonMunkholm/qubit/internal/nestedset"
)

const (
	statusDraft   = "Draft"
	detailPartial = "Partial"

	repositoryScope = "QubitRepository"
	contactTypeMain = "Main"
	contactNote     = "Import from EHRI contact spreadsheet"
	defaultScript   = "Latn"

	maxNameLen = 255
)

// ErrBadHeader is returned when the header row lacks required columns.
var ErrBadHeader = errors.New("spreadsheet header is incomplete")

// Options controls an import run.
type Options struct {
	// From skips rows whose line number is below it. Lines count from 1,
	// the header being line 1.
	From int
	// To stops after the record that reaches this line. Values <= 0 import
	// to the end.
	To int
	// User owns the imported notes.
	User string
	// Lang is the culture of all imported text.
	Lang string
	// ParentID is the actor every repository is placed under.
	ParentID int64
	// ContinueOnError skips failing rows instead of aborting the run.
	ContinueOnError bool
	// Countries resolves the Country column. Nil uses the built-in names.
	Countries *Countries
	// Now is the clock for timestamps. Defaults to time.Now.
	Now func() time.Time
}

// DefaultOptions returns the options of a plain import.
func DefaultOptions() Options {
	return Options{
		From:     1,
		To:       -1,
		User:     "qubit",
		Lang:     model.DefaultCulture,
		ParentID: model.ActorRootID,
	}
}

// RowError describes a row that could not be imported.
type RowError struct {
	Line int    `json:"line"`
	Name string `json:"name"`
	Err  error  `json:"-"`
}

func (e RowError) Error() string {
	return fmt.Sprintf("line %d (%s): %v", e.Line, e.Name, e.Err)
}

func (e RowError) Unwrap() error { return e.Err }

// Result summarizes an import run.
type Result struct {
	RunID    string        `json:"run_id"`
	Imported int           `json:"imported"`
	Failed   int           `json:"failed"`
	Failures []RowError    `json:"failures,omitempty"`
	Duration time.Duration `json:"duration_ns"`
}

// Importer runs spreadsheet imports through an Opener.
type Importer struct {
	opener Opener
	opts   Options
}

// New returns an Importer writing through opener. Zero options fall back to
// the import defaults.
func New(opener Opener, opts Options) *Importer {
	if opts.From == 0 {
		opts.From = 1
	}
	if opts.User == "" {
		opts.User = "qubit"
	}
	if opts.Lang == "" {
		opts.Lang = model.DefaultCulture
	}
	if opts.ParentID == 0 {
		opts.ParentID = model.ActorRootID
	}
	if opts.Countries == nil {
		opts.Countries = NewCountries(nil)
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Importer{opener: opener, opts: opts}
}

// lookups are the ids every row refers to, resolved once per run.
type lookups struct {
	userID   int64
	statusID int64
	detailID int64
}

// Import reads the spreadsheet from r and writes it through one session.
// size is the byte length of r if known, for progress logging. Without
// ContinueOnError the first failing row rolls back the whole run.
func (im *Importer) Import(ctx context.Context, r io.Reader, size int64) (Result, error) {
	start := time.Now()
	res := Result{RunID: uuid.NewString()}
	logger := slog.With("run_id", res.RunID)

	src := Wrap(r, size)
	cr := csv.NewReader(src)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if err != nil {
		return res, fmt.Errorf("read header: %w", err)
	}
	idx := MakeHeaderIndex(header)
	if missing := idx.Missing(); len(missing) > 0 {
		return res, fmt.Errorf("%w: missing %s", ErrBadHeader, strings.Join(missing, ", "))
	}

	logger.Info("import started",
		"parent_id", im.opts.ParentID,
		"user", im.opts.User,
		"lang", im.opts.Lang,
		"from", im.opts.From,
		"to", im.opts.To,
	)

	err = im.opener.Open(ctx, func(s Session) error {
		ids, err := im.resolve(ctx, s.Records())
		if err != nil {
			return err
		}

		for {
			if err := ctx.Err(); err != nil {
				return err
			}
			cells, err := cr.Read()
			if errors.Is(err, io.EOF) {
				return nil
			}
			if err != nil {
				return fmt.Errorf("read spreadsheet: %w", err)
			}
			line, _ := cr.FieldPos(0)
			if im.opts.From > 0 && line < im.opts.From {
				continue
			}
			// To may fall inside a quoted multi-line record
			if im.opts.To > 0 && line > im.opts.To {
				return nil
			}

			rec := Record{Line: line, header: idx, cells: cells}
			logger.Debug("adding repository", "line", line, "name", rec.Get(ColOriginalName))

			if im.opts.ContinueOnError {
				err = s.Row(ctx, func(rs Session) error { return im.row(ctx, rs, rec, ids) })
			} else {
				err = im.row(ctx, s, rec, ids)
			}
			if err != nil {
				rowErr := RowError{Line: line, Name: rec.Get(ColOriginalName), Err: err}
				if !im.opts.ContinueOnError {
					return rowErr
				}
				logger.Warn("row skipped", "line", line, "error", err)
				res.Failures = append(res.Failures, rowErr)
				res.Failed++
			} else {
				res.Imported++
			}

			if res.Imported%100 == 0 && res.Imported > 0 {
				logger.Info("import progress", "imported", res.Imported, "percent", src.Counter.Progress())
			}
			if im.opts.To > 0 && line >= im.opts.To {
				return nil
			}
		}
	})
	res.Duration = time.Since(start)
	if err != nil {
		logger.Error("import rolled back", "error", err, "duration_ms", res.Duration.Milliseconds())
		res.Imported = 0
		return res, err
	}

	logger.Info("import finished",
		"imported", res.Imported,
		"failed", res.Failed,
		"bytes", src.Counter.BytesRead(),
		"duration_ms", res.Duration.Milliseconds(),
	)
	return res, nil
}

func (im *Importer) resolve(ctx context.Context, w Writer) (lookups, error) {
	var ids lookups
	var err error
	if ids.userID, err = w.UserIDByUsername(ctx, im.opts.User); err != nil {
		return ids, err
	}
	if ids.statusID, err = w.TermIDByName(ctx, model.TaxonomyDescriptionStatusID, statusDraft); err != nil {
		return ids, err
	}
	if ids.detailID, err = w.TermIDByName(ctx, model.TaxonomyDescriptionDetailLevelID, detailPartial); err != nil {
		return ids, err
	}
	return ids, nil
}

// row writes one spreadsheet row.
func (im *Importer) row(ctx context.Context, s Session, rec Record, ids lookups) error {
	lang := im.opts.Lang
	now := im.opts.Now()
	records := s.Records()

	countryCode := im.opts.Countries.Code(rec.Get(ColCountry))
	name := truncate(rec.Get(ColOriginalName), maxNameLen)

	var repo model.Repository
	repo.Touch(now, "Repository")
	repo.ParentID = im.opts.ParentID
	repo.EntityTypeID = model.TermCorporateBodyID
	repo.DescriptionStatusID = ids.statusID
	repo.DescriptionDetailID = ids.detailID
	repo.SourceCulture = lang
	repo.Identifier = fmt.Sprintf("ehri%d%s", rec.Line, countryCode)
	repo.DescStatusID = ids.statusID
	repo.DescDetailID = ids.detailID
	repo.RepositorySourceCulture = lang

	node := &nestedset.Node{Columns: map[string]any{
		"entity_type_id":        repo.EntityTypeID,
		"description_status_id": repo.DescriptionStatusID,
		"description_detail_id": repo.DescriptionDetailID,
		"source_culture":        repo.SourceCulture,
	}}
	if err := s.Actors().Insert(ctx, node, repo.ParentID); err != nil {
		return fmt.Errorf("insert actor: %w", err)
	}
	repo.ID, repo.Lft, repo.Rgt = node.ID, node.Lft, node.Rgt

	if err := records.InsertRepository(ctx, repo); err != nil {
		return fmt.Errorf("insert repository: %w", err)
	}

	actorText := i18n.New(i18n.ActorTable, s.Texts(), lang)
	if err := actorText.SetText(ctx, repo.ID, lang, map[i18n.ActorField]string{
		i18n.ActorAuthorizedFormOfName: name,
	}); err != nil {
		return err
	}
	repoText := i18n.New(i18n.RepositoryTable, s.Texts(), lang)
	if err := repoText.SetText(ctx, repo.ID, lang, map[i18n.RepositoryField]string{
		i18n.RepositoryDescSources: rec.Get(ColOrigin),
	}); err != nil {
		return err
	}

	slugSource := name
	if Slugify(slugSource) == "" {
		slugSource = repo.Identifier
	}
	slug, err := UniqueSlug(ctx, records, slugSource)
	if err != nil {
		return fmt.Errorf("slug: %w", err)
	}
	if err := records.InsertSlug(ctx, model.Slug{ObjectID: repo.ID, Slug: slug}); err != nil {
		return fmt.Errorf("insert slug: %w", err)
	}

	notes := i18n.New(i18n.NoteTable, s.Texts(), lang)
	for _, col := range []string{ColComments, ColExtra} {
		content := rec.Get(col)
		if strings.TrimSpace(content) == "" {
			continue
		}
		id, err := records.InsertNote(ctx, model.Note{
			ObjectID:      repo.ID,
			TypeID:        model.TermMaintenanceNoteID,
			Scope:         repositoryScope,
			UserID:        ids.userID,
			SourceCulture: lang,
			CreatedAt:     now,
			UpdatedAt:     now,
		})
		if err != nil {
			return fmt.Errorf("insert %s note: %w", strings.ToLower(col), err)
		}
		if err := notes.SetText(ctx, id, lang, map[i18n.NoteField]string{i18n.NoteContent: content}); err != nil {
			return err
		}
	}

	if english := strings.TrimSpace(rec.Get(ColEnglishName)); english != "" {
		id, err := records.InsertOtherName(ctx, model.OtherName{
			ObjectID:      repo.ID,
			TypeID:        model.TermOtherFormOfNameID,
			SourceCulture: lang,
			CreatedAt:     now,
			UpdatedAt:     now,
		})
		if err != nil {
			return fmt.Errorf("insert other name: %w", err)
		}
		otherText := i18n.New(i18n.OtherNameTable, s.Texts(), lang)
		if err := otherText.SetText(ctx, id, lang, map[i18n.OtherNameField]string{
			i18n.OtherNameName: truncate(english, maxNameLen),
		}); err != nil {
			return err
		}
	}

	contactID, err := records.InsertContactInformation(ctx, model.ContactInformation{
		ActorID:        repo.ID,
		PrimaryContact: true,
		ContactPerson:  rec.Get(ColContact),
		CountryCode:    countryCode,
		Email:          rec.Get(ColEmail),
		Website:        rec.Get(ColURL),
		StreetAddress:  streetAddress(rec),
		Fax:            rec.Get(ColFax),
		Telephone:      rec.Get(ColPhone),
		SourceCulture:  lang,
		CreatedAt:      now,
		UpdatedAt:      now,
	})
	if err != nil {
		return fmt.Errorf("insert contact information: %w", err)
	}
	contactText := i18n.New(i18n.ContactTable, s.Texts(), lang)
	if err := contactText.SetText(ctx, contactID, lang, map[i18n.ContactField]string{
		i18n.ContactType:   contactTypeMain,
		i18n.ContactCity:   rec.Get(ColCity),
		i18n.ContactRegion: rec.Get(ColState),
		i18n.ContactNote:   contactNote,
	}); err != nil {
		return err
	}

	propText := i18n.New(i18n.PropertyTable, s.Texts(), lang)
	for _, p := range []struct{ name, value string }{
		{"language", lang},
		{"script", defaultScript},
	} {
		value, err := phpList(p.value)
		if err != nil {
			return fmt.Errorf("serialize %s property: %w", p.name, err)
		}
		id, err := records.InsertProperty(ctx, model.Property{
			ObjectID:      repo.ID,
			Name:          p.name,
			SourceCulture: lang,
			CreatedAt:     now,
			UpdatedAt:     now,
		})
		if err != nil {
			return fmt.Errorf("insert %s property: %w", p.name, err)
		}
		if err := propText.SetText(ctx, id, lang, map[i18n.PropertyField]string{i18n.PropertyValue: value}); err != nil {
			return err
		}
	}
	return nil
}

func streetAddress(rec Record) string {
	address := rec.Get(ColAddress)
	if state := rec.Get(ColState); strings.TrimSpace(state) != "" {
		address += "\n" + state
	}
	return address
}

// truncate cuts s to at most n runes.
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
