package importer

import (
	"fmt"
	"os"
	"strings"

	"github.com/biter777/countries"
	"gopkg.in/yaml.v3"
)

// Countries turns the free-text Country column into an ISO 3166-1 alpha-2
// code. Aliases are consulted before the built-in country names, so a
// spreadsheet's own spellings ("Czech Rep.", "USA") can be mapped.
type Countries struct {
	aliases map[string]string
}

// aliasFile is the YAML layout of a country alias file:
//
//	aliases:
//	  Czech Rep.: CZ
//	  Great Britain: GB
type aliasFile struct {
	Aliases map[string]string `yaml:"aliases"`
}

// NewCountries returns a resolver with the given aliases (name to alpha-2).
func NewCountries(aliases map[string]string) *Countries {
	c := &Countries{aliases: make(map[string]string, len(aliases))}
	for name, code := range aliases {
		c.aliases[normalizeCountry(name)] = strings.ToUpper(strings.TrimSpace(code))
	}
	return c
}

// LoadCountries reads an alias file. An empty path yields a resolver
// without aliases.
func LoadCountries(path string) (*Countries, error) {
	if path == "" {
		return NewCountries(nil), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read country aliases: %w", err)
	}
	var f aliasFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse country aliases %s: %w", path, err)
	}
	for name, code := range f.Aliases {
		if len(strings.TrimSpace(code)) != 2 {
			return nil, fmt.Errorf("country alias %q: %q is not an alpha-2 code", name, code)
		}
	}
	return NewCountries(f.Aliases), nil
}

// Code returns the alpha-2 code for name, or "" if the name is unknown.
func (c *Countries) Code(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return ""
	}
	if code, ok := c.aliases[normalizeCountry(name)]; ok {
		return code
	}
	cc := countries.ByName(name)
	if cc == countries.Unknown {
		return ""
	}
	return cc.Alpha2()
}

func normalizeCountry(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(name), " "))
}
