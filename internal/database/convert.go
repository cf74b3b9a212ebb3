package database

// convert.go maps Go zero values to SQL NULL. Qubit leaves optional
// foreign keys and free-text columns NULL rather than 0 or "".

import (
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
)

// ToPgText converts a string to pgtype.Text.
// Returns invalid if the string is empty or only whitespace.
func ToPgText(s string) pgtype.Text {
	if strings.TrimSpace(s) == "" {
		return pgtype.Text{Valid: false}
	}
	return pgtype.Text{String: s, Valid: true}
}

// ToPgInt8 converts an id to pgtype.Int8.
// Returns invalid for zero, which never names a row.
func ToPgInt8(id int64) pgtype.Int8 {
	if id == 0 {
		return pgtype.Int8{Valid: false}
	}
	return pgtype.Int8{Int64: id, Valid: true}
}

// ToPgTimestamp converts a time to pgtype.Timestamp.
// Returns invalid for the zero time.
func ToPgTimestamp(t time.Time) pgtype.Timestamp {
	if t.IsZero() {
		return pgtype.Timestamp{Valid: false}
	}
	return pgtype.Timestamp{Time: t, Valid: true}
}

// FromPgText returns the string value, "" for NULL.
func FromPgText(t pgtype.Text) string {
	if !t.Valid {
		return ""
	}
	return t.String
}
