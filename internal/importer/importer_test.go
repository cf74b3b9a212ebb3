package importer

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/qubit/internal/i18n"
	"github.com/JonMunkholm/qubit/internal/model"
	"github.com/JonMunkholm/qubit/internal/nestedset"
)

const header = "Address,City,Comments,Contact,Country,E-mail,English Name,Extra,Fax,Origin,Original Name,Phone,Source,State,Survey 1,URL\n"

func sheet(rows ...string) string {
	return header + strings.Join(rows, "\n") + "\n"
}

var fixedNow = time.Date(2011, 5, 4, 10, 0, 0, 0, time.UTC)

func newMemory(t *testing.T) *Memory {
	t.Helper()
	m, err := NewMemory(model.ActorRootID, "qubit")
	require.NoError(t, err)
	return m
}

func run(t *testing.T, m *Memory, opts Options, csv string) (Result, error) {
	t.Helper()
	opts.Now = func() time.Time { return fixedNow }
	return New(m, opts).Import(context.Background(), strings.NewReader(csv), int64(len(csv)))
}

func TestImportRow(t *testing.T) {
	m := newMemory(t)
	csv := sheet(`Tiergarten 1,Berlin,call first,Dr. Weber,Germany,info@example.de,Federal Archive,,+49 2,EHRI survey,Bundesarchiv,+49 1,web,Brandenburg,yes,http://example.de`)

	res, err := run(t, m, DefaultOptions(), csv)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Imported)
	assert.Zero(t, res.Failed)
	assert.NotEmpty(t, res.RunID)

	repos := m.Records.Repositories()
	require.Len(t, repos, 1)
	var repo model.Repository
	for _, r := range repos {
		repo = r
	}
	assert.Equal(t, "ehri2DE", repo.Identifier)
	assert.Equal(t, model.TermCorporateBodyID, repo.EntityTypeID)
	assert.Equal(t, model.ActorRootID, repo.ParentID)
	assert.Equal(t, "QubitRepository", repo.ClassName)
	assert.Equal(t, int64(1), repo.DescriptionStatusID)
	assert.Equal(t, int64(2), repo.DescDetailID)
	assert.Equal(t, fixedNow, repo.CreatedAt)

	ctx := context.Background()
	name, err := i18n.New(i18n.ActorTable, m.Texts, "en").Text(ctx, repo.ID, "en", i18n.ActorAuthorizedFormOfName)
	require.NoError(t, err)
	assert.Equal(t, "Bundesarchiv", name)
	origin, err := i18n.New(i18n.RepositoryTable, m.Texts, "en").Text(ctx, repo.ID, "en", i18n.RepositoryDescSources)
	require.NoError(t, err)
	assert.Equal(t, "EHRI survey", origin)

	taken, _ := m.Records.SlugExists(ctx, "bundesarchiv")
	assert.True(t, taken)

	notes := m.Records.Notes()
	require.Len(t, notes, 1, "blank Extra must not produce a note")
	assert.Equal(t, model.TermMaintenanceNoteID, notes[0].TypeID)
	assert.Equal(t, "QubitRepository", notes[0].Scope)
	assert.Equal(t, int64(1), notes[0].UserID)
	content, err := i18n.New(i18n.NoteTable, m.Texts, "en").Text(ctx, notes[0].ID, "en", i18n.NoteContent)
	require.NoError(t, err)
	assert.Equal(t, "call first", content)

	others := m.Records.OtherNames()
	require.Len(t, others, 1)
	assert.Equal(t, model.TermOtherFormOfNameID, others[0].TypeID)

	contacts := m.Records.Contacts()
	require.Len(t, contacts, 1)
	c := contacts[0]
	assert.True(t, c.PrimaryContact)
	assert.Equal(t, "Tiergarten 1\nBrandenburg", c.StreetAddress)
	assert.Equal(t, "DE", c.CountryCode)
	assert.Equal(t, "Dr. Weber", c.ContactPerson)
	assert.Equal(t, "http://example.de", c.Website)
	contactText := i18n.New(i18n.ContactTable, m.Texts, "en")
	for field, want := range map[i18n.ContactField]string{
		i18n.ContactType:   "Main",
		i18n.ContactCity:   "Berlin",
		i18n.ContactRegion: "Brandenburg",
		i18n.ContactNote:   "Import from EHRI contact spreadsheet",
	} {
		got, err := contactText.Text(ctx, c.ID, "en", field)
		require.NoError(t, err)
		assert.Equal(t, want, got, "contact %s", field)
	}

	props := m.Records.Properties()
	require.Len(t, props, 2)
	propText := i18n.New(i18n.PropertyTable, m.Texts, "en")
	values := map[string]string{}
	for _, p := range props {
		v, err := propText.Text(ctx, p.ID, "en", i18n.PropertyValue)
		require.NoError(t, err)
		values[p.Name] = v
	}
	assert.Equal(t, `a:1:{i:0;s:2:"en";}`, values["language"])
	assert.Equal(t, `a:1:{i:0;s:4:"Latn";}`, values["script"])
}

func TestImportKeepsTreeValid(t *testing.T) {
	m := newMemory(t)
	csv := sheet(
		`,,,,France,,,,,,Mémorial de la Shoah,,,,,`,
		`,,,,Atlantis,,,,,,Mémorial de la Shoah,,,,,`,
		`,,,,,,,,,,Музей,,,,,`,
	)
	res, err := run(t, m, DefaultOptions(), csv)
	require.NoError(t, err)
	assert.Equal(t, 3, res.Imported)

	actors := nestedset.NewManager("actor", m.Tree)
	violations, err := actors.Verify(context.Background())
	require.NoError(t, err)
	assert.Empty(t, violations)

	children, err := actors.Children(context.Background(), model.ActorRootID)
	require.NoError(t, err)
	require.Len(t, children, 3)

	ids := map[string]bool{}
	for _, r := range m.Records.Repositories() {
		ids[r.Identifier] = true
	}
	assert.True(t, ids["ehri2FR"])
	assert.True(t, ids["ehri3"], "unknown country leaves the suffix empty")
	assert.True(t, ids["ehri4"])

	ctx := context.Background()
	for _, slug := range []string{"memorial-de-la-shoah", "memorial-de-la-shoah-1", "ehri4"} {
		taken, _ := m.Records.SlugExists(ctx, slug)
		assert.True(t, taken, "slug %s", slug)
	}
}

func TestImportFromTo(t *testing.T) {
	rows := []string{
		`,,,,,,,,,,One,,,,,`,
		`,,,,,,,,,,Two,,,,,`,
		`,,,,,,,,,,Three,,,,,`,
		`,,,,,,,,,,Four,,,,,`,
	}
	m := newMemory(t)
	opts := DefaultOptions()
	opts.From = 3
	opts.To = 4
	res, err := run(t, m, opts, sheet(rows...))
	require.NoError(t, err)
	assert.Equal(t, 2, res.Imported)

	idents := map[string]bool{}
	for _, r := range m.Records.Repositories() {
		idents[r.Identifier] = true
	}
	assert.Equal(t, map[string]bool{"ehri3": true, "ehri4": true}, idents)
}

func TestImportToInsideMultilineRecord(t *testing.T) {
	m := newMemory(t)
	opts := DefaultOptions()
	opts.To = 3
	res, err := run(t, m, opts, sheet(
		`,,,,,,,,,,"Two`,
		`lines",,,,,`,
		`,,,,,,,,,,Four,,,,,`,
	))
	require.NoError(t, err)
	assert.Equal(t, 1, res.Imported)

	repos := m.Records.Repositories()
	require.Len(t, repos, 1)
	assert.Equal(t, "ehri2", repos[0].Identifier)
}

func TestImportTruncatesName(t *testing.T) {
	m := newMemory(t)
	long := strings.Repeat("ä", 300)
	_, err := run(t, m, DefaultOptions(), sheet(`,,,,,,,,,,`+long+`,,,,,`))
	require.NoError(t, err)

	var id int64
	for rid := range m.Records.Repositories() {
		id = rid
	}
	name, err := i18n.New(i18n.ActorTable, m.Texts, "en").Text(context.Background(), id, "en", i18n.ActorAuthorizedFormOfName)
	require.NoError(t, err)
	assert.Equal(t, 255, len([]rune(name)))
}

func TestImportRejectsIncompleteHeader(t *testing.T) {
	m := newMemory(t)
	_, err := run(t, m, DefaultOptions(), "Address,City\n1,2\n")
	assert.ErrorIs(t, err, ErrBadHeader)
	assert.Equal(t, 1, m.Tree.Len())
}

func TestImportUnknownUser(t *testing.T) {
	m := newMemory(t)
	opts := DefaultOptions()
	opts.User = "nobody"
	_, err := run(t, m, opts, sheet(`,,,,,,,,,,One,,,,,`))
	assert.ErrorIs(t, err, nestedset.ErrNotFound)
	assert.ErrorContains(t, err, `user "nobody": not found`)
	assert.NotContains(t, err.Error(), "node")
}

func TestImportMissingParentAborts(t *testing.T) {
	m := newMemory(t)
	opts := DefaultOptions()
	opts.ParentID = 999
	res, err := run(t, m, opts, sheet(`,,,,,,,,,,One,,,,,`, `,,,,,,,,,,Two,,,,,`))
	require.Error(t, err)

	var rowErr RowError
	require.True(t, errors.As(err, &rowErr))
	assert.Equal(t, 2, rowErr.Line)
	assert.Equal(t, "One", rowErr.Name)
	assert.ErrorIs(t, err, nestedset.ErrNotFound)
	assert.Zero(t, res.Imported)
}

func TestImportContinueOnError(t *testing.T) {
	m := newMemory(t)
	opts := DefaultOptions()
	opts.ContinueOnError = true
	opts.ParentID = 999
	res, err := run(t, m, opts, sheet(`,,,,,,,,,,One,,,,,`, `,,,,,,,,,,Two,,,,,`))
	require.NoError(t, err)
	assert.Equal(t, 0, res.Imported)
	assert.Equal(t, 2, res.Failed)
	require.Len(t, res.Failures, 2)
	assert.Equal(t, 3, res.Failures[1].Line)
}

func TestImportCancelled(t *testing.T) {
	m := newMemory(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	csv := sheet(`,,,,,,,,,,One,,,,,`)
	_, err := New(m, DefaultOptions()).Import(ctx, strings.NewReader(csv), 0)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFailedRunLeavesMemoryUntouched(t *testing.T) {
	m := newMemory(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// the clock is read once per row; stop the run while the second row
	// is being written
	calls := 0
	opts := DefaultOptions()
	opts.Now = func() time.Time {
		calls++
		if calls == 2 {
			cancel()
		}
		return fixedNow
	}
	csv := sheet(`,,Comments,,,,,,,,One,,,,,`, `,,,,,,,,,,Two,,,,,`)
	_, err := New(m, opts).Import(ctx, strings.NewReader(csv), int64(len(csv)))
	require.ErrorIs(t, err, context.Canceled)

	assert.Equal(t, 1, m.Tree.Len())
	assert.Empty(t, m.Records.Repositories())
	assert.Empty(t, m.Records.Notes())
	assert.Zero(t, m.Records.Mark())
	assert.Zero(t, m.Texts.Mark())

	// the forest is usable afterwards
	res, err := run(t, m, DefaultOptions(), csv)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Imported)
}

func TestMemoryRowRollsBackItsOwnWrites(t *testing.T) {
	m := newMemory(t)
	ctx := context.Background()
	boom := errors.New("boom")

	err := m.Open(ctx, func(s Session) error {
		kept := &nestedset.Node{}
		if err := s.Actors().Insert(ctx, kept, model.ActorRootID); err != nil {
			return err
		}
		rowErr := s.Row(ctx, func(rs Session) error {
			if err := rs.Actors().Insert(ctx, &nestedset.Node{}, kept.ID); err != nil {
				return err
			}
			if _, err := rs.Records().InsertNote(ctx, model.Note{}); err != nil {
				return err
			}
			if err := rs.Texts().Upsert(ctx, "actor_i18n", kept.ID, "en", map[string]string{"authorized_form_of_name": "x"}); err != nil {
				return err
			}
			return boom
		})
		assert.ErrorIs(t, rowErr, boom)
		return nil
	})
	require.NoError(t, err)

	assert.Equal(t, 2, m.Tree.Len())
	assert.Empty(t, m.Records.Notes())
	assert.Zero(t, m.Texts.Mark())

	violations, err := nestedset.NewManager("actor", m.Tree).Verify(ctx)
	require.NoError(t, err)
	assert.Empty(t, violations)
}
