package importer

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestWrapStripsBOM(t *testing.T) {
	tests := []struct {
		name     string
		input    []byte
		expected string
	}{
		{
			name:     "file with BOM",
			input:    append([]byte{0xEF, 0xBB, 0xBF}, []byte("Address,City")...),
			expected: "Address,City",
		},
		{
			name:     "file without BOM",
			input:    []byte("Address,City"),
			expected: "Address,City",
		},
		{
			name:     "empty file",
			input:    []byte{},
			expected: "",
		},
		{
			name:     "only BOM",
			input:    []byte{0xEF, 0xBB, 0xBF},
			expected: "",
		},
		{
			name:     "invalid byte replaced",
			input:    []byte{'h', 'e', 0x80, 'l', 'o'},
			expected: "he�lo",
		},
		{
			name:     "multibyte kept",
			input:    []byte("Zürich"),
			expected: "Zürich",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := Wrap(bytes.NewReader(tt.input), int64(len(tt.input)))
			result, err := io.ReadAll(src)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if string(result) != tt.expected {
				t.Errorf("got %q, want %q", string(result), tt.expected)
			}
			if src.Counter.BytesRead() != int64(len(tt.input)) {
				t.Errorf("BytesRead = %d, want %d", src.Counter.BytesRead(), len(tt.input))
			}
		})
	}
}

func TestCountingReaderProgress(t *testing.T) {
	input := strings.Repeat("x", 1000)
	reader := NewCountingReader(strings.NewReader(input), int64(len(input)))

	buf := make([]byte, 100)
	if _, err := reader.Read(buf); err != nil {
		t.Fatal(err)
	}
	if got := reader.Progress(); got != 10 {
		t.Errorf("Progress = %d, want 10", got)
	}
	if _, err := io.Copy(io.Discard, reader); err != nil {
		t.Fatal(err)
	}
	if got := reader.Progress(); got != 100 {
		t.Errorf("Progress = %d, want 100", got)
	}

	unknown := NewCountingReader(strings.NewReader(input), 0)
	_, _ = io.Copy(io.Discard, unknown)
	if unknown.Progress() != 0 {
		t.Error("Progress with unknown total should be 0")
	}
}

func TestCleanCell(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"  Country ", "Country"},
		{`="E-mail"`, "E-mail"},
		{"=URL", "URL"},
		{`"Original Name"`, "Original Name"},
		{"'State'", "State"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := CleanCell(tt.in); got != tt.want {
			t.Errorf("CleanCell(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestHeaderIndex(t *testing.T) {
	idx := MakeHeaderIndex([]string{"ORIGINAL NAME", " Country", "e-mail"})
	rec := Record{Line: 2, header: idx, cells: []string{"Wiener Library", "UK"}}

	if got := rec.Get(ColOriginalName); got != "Wiener Library" {
		t.Errorf("Get(Original Name) = %q", got)
	}
	if got := rec.Get(ColEmail); got != "" {
		t.Errorf("short row should read missing cell as empty, got %q", got)
	}
	if got := rec.Get(ColFax); got != "" {
		t.Errorf("absent column should read empty, got %q", got)
	}

	missing := idx.Missing()
	if len(missing) != len(RequiredColumns)-3 {
		t.Errorf("Missing() = %v", missing)
	}
	for _, m := range missing {
		if m == ColCountry {
			t.Error("Country reported missing")
		}
	}
}

func TestSlugify(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Wiener Library", "wiener-library"},
		{"Archiv für Zeitgeschichte", "archiv-fur-zeitgeschichte"},
		{"  Yad -- Vashem! ", "yad-vashem"},
		{"Institut d'Histoire", "institut-dhistoire"},
		{"snake_case name", "snake_case-name"},
		{"Музей", ""},
	}
	for _, tt := range tests {
		if got := Slugify(tt.in); got != tt.want {
			t.Errorf("Slugify(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

type takenSlugs map[string]bool

func (s takenSlugs) SlugExists(_ context.Context, slug string) (bool, error) {
	return s[slug], nil
}

func TestUniqueSlug(t *testing.T) {
	taken := takenSlugs{"wiener-library": true, "wiener-library-1": true}
	got, err := UniqueSlug(context.Background(), taken, "Wiener Library")
	if err != nil {
		t.Fatal(err)
	}
	if got != "wiener-library-2" {
		t.Errorf("got %q, want wiener-library-2", got)
	}

	got, _ = UniqueSlug(context.Background(), taken, "Yad Vashem")
	if got != "yad-vashem" {
		t.Errorf("got %q, want yad-vashem", got)
	}
}

func TestCountries(t *testing.T) {
	c := NewCountries(map[string]string{"Czech Rep.": "cz", "Great  Britain": "GB"})

	tests := []struct {
		in, want string
	}{
		{"Germany", "DE"},
		{" France ", "FR"},
		{"czech rep.", "CZ"},
		{"Great Britain", "GB"},
		{"Atlantis", ""},
		{"", ""},
	}
	for _, tt := range tests {
		if got := c.Code(tt.in); got != tt.want {
			t.Errorf("Code(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestLoadCountries(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "countries.yaml")
	if err := os.WriteFile(good, []byte("aliases:\n  USA: US\n  Holland: NL\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	c, err := LoadCountries(good)
	if err != nil {
		t.Fatal(err)
	}
	if got := c.Code("Holland"); got != "NL" {
		t.Errorf("Code(Holland) = %q, want NL", got)
	}

	bad := filepath.Join(dir, "bad.yaml")
	if err := os.WriteFile(bad, []byte("aliases:\n  USA: United States\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadCountries(bad); err == nil {
		t.Error("expected error for non alpha-2 code")
	}

	if _, err := LoadCountries(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}

	empty, err := LoadCountries("")
	if err != nil || empty == nil {
		t.Fatalf("LoadCountries(\"\") = %v, %v", empty, err)
	}
}

func TestPHPList(t *testing.T) {
	got, err := phpList("en")
	if err != nil {
		t.Fatal(err)
	}
	if want := `a:1:{i:0;s:2:"en";}`; got != want {
		t.Errorf("phpList(en) = %q, want %q", got, want)
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("Zürich", 3); got != "Zür" {
		t.Errorf("truncate = %q, want Zür", got)
	}
	if got := truncate("abc", 5); got != "abc" {
		t.Errorf("truncate = %q, want abc", got)
	}
}
