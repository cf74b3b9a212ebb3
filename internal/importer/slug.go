package importer

import (
	"context"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Slugify lowercases s, folds accents to ASCII, drops everything except
// letters, digits and underscores, and joins the remaining words with
// single hyphens.
func Slugify(s string) string {
	t := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)))
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}

	var b strings.Builder
	for _, r := range strings.ToLower(folded) {
		switch {
		case r < 0x80 && (unicode.IsLetter(r) || unicode.IsDigit(r)):
			b.WriteRune(r)
		case r == '_':
			b.WriteRune(r)
		case r == '-' || unicode.IsSpace(r):
			b.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), "-")
}

type slugChecker interface {
	SlugExists(ctx context.Context, slug string) (bool, error)
}

// UniqueSlug returns the slug of value, suffixed with -1, -2, ... until it
// is unused.
func UniqueSlug(ctx context.Context, c slugChecker, value string) (string, error) {
	base := Slugify(value)
	candidate := base
	for suffix := 1; ; suffix++ {
		taken, err := c.SlugExists(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
		candidate = base + "-" + strconv.Itoa(suffix)
	}
}
