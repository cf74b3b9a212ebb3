package importer

import (
	"fmt"
	"strings"
)

// Spreadsheet columns.
const (
	ColAddress      = "Address"
	ColCity         = "City"
	ColComments     = "Comments"
	ColContact      = "Contact"
	ColCountry      = "Country"
	ColEmail        = "E-mail"
	ColEnglishName  = "English Name"
	ColExtra        = "Extra"
	ColFax          = "Fax"
	ColOrigin       = "Origin"
	ColOriginalName = "Original Name"
	ColPhone        = "Phone"
	ColSource       = "Source"
	ColState        = "State"
	ColSurvey       = "Survey 1"
	ColURL          = "URL"
)

// RequiredColumns must all appear in the header. Comments is optional.
var RequiredColumns = []string{
	ColAddress, ColCity, ColContact, ColCountry, ColEmail, ColEnglishName,
	ColExtra, ColFax, ColOrigin, ColOriginalName, ColPhone, ColSource,
	ColState, ColSurvey, ColURL,
}

// HeaderIndex maps lowercased column names to their position.
type HeaderIndex map[string]int

// MakeHeaderIndex builds a HeaderIndex from a header row.
func MakeHeaderIndex(header []string) HeaderIndex {
	idx := make(HeaderIndex, len(header))
	for i, h := range header {
		idx[strings.ToLower(CleanCell(h))] = i
	}
	return idx
}

// Missing returns the required columns absent from the header.
func (h HeaderIndex) Missing() []string {
	var missing []string
	for _, c := range RequiredColumns {
		if _, ok := h[strings.ToLower(c)]; !ok {
			missing = append(missing, c)
		}
	}
	return missing
}

// Record is one spreadsheet row addressed by column name.
type Record struct {
	Line   int
	header HeaderIndex
	cells  []string
}

// Get returns the cell under column, or "" when the column or the cell is
// missing. The value is not trimmed.
func (r Record) Get(column string) string {
	i, ok := r.header[strings.ToLower(column)]
	if !ok || i >= len(r.cells) {
		return ""
	}
	return r.cells[i]
}

func (r Record) String() string {
	return fmt.Sprintf("line %d (%s)", r.Line, r.Get(ColOriginalName))
}

// CleanCell removes spreadsheet export artifacts from a header cell:
// surrounding whitespace, an Excel formula wrapper (="...") and quotes.
func CleanCell(s string) string {
	s = strings.TrimSpace(s)

	if strings.HasPrefix(s, `="`) && strings.HasSuffix(s, `"`) && len(s) >= 3 {
		s = s[2 : len(s)-1]
	} else if strings.HasPrefix(s, "=") {
		s = s[1:]
	}

	return strings.Trim(s, `"'`)
}
