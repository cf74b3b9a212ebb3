package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/qubit/internal/core"
	"github.com/JonMunkholm/qubit/internal/importer"
	"github.com/JonMunkholm/qubit/internal/nestedset"
)

const header = "Address,City,Comments,Contact,Country,E-mail,English Name,Extra,Fax,Origin,Original Name,Phone,Source,State,Survey 1,URL\n"

func resetImportFlags() {
	importFrom, importTo = 1, -1
	importParent = 0
	importUser, importLang = "", ""
	importDryRun, importContinueOnError = false, false
}

func runRoot(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(resetImportFlags)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestImportDryRun(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("IMPORT_COUNTRIES_FILE", "")

	path := filepath.Join(t.TempDir(), "contacts.csv")
	csv := header +
		",Warsaw,,,Poland,,Jewish Historical Institute,,,,Żydowski Instytut Historyczny,,,,,\n" +
		",Paris,,,France,,,,,,Mémorial de la Shoah,,,,,\n"
	require.NoError(t, os.WriteFile(path, []byte(csv), 0o600))

	t.Run("line range", func(t *testing.T) {
		out, err := runRoot(t, "import", path, "--dry-run", "--to", "2")
		require.NoError(t, err)
		assert.Contains(t, out, "(dry run): imported 1, failed 0")
	})

	t.Run("user flag", func(t *testing.T) {
		out, err := runRoot(t, "import", path, "--dry-run", "--user", "alice")
		require.NoError(t, err)
		assert.Contains(t, out, "(dry run): imported 2, failed 0")
	})

	t.Run("parent flag", func(t *testing.T) {
		out, err := runRoot(t, "import", path, "--dry-run", "--parent", "42", "--user", "alice", "--to", "2")
		require.NoError(t, err)
		assert.Contains(t, out, "imported 1, failed 0")
	})

	t.Run("bad header", func(t *testing.T) {
		bad := filepath.Join(t.TempDir(), "bad.csv")
		require.NoError(t, os.WriteFile(bad, []byte("Name,City\nOne,Paris\n"), 0o600))
		_, err := runRoot(t, "import", bad, "--dry-run")
		assert.ErrorIs(t, err, importer.ErrBadHeader)
	})
}

func TestPrintReports(t *testing.T) {
	var out bytes.Buffer
	invalid := printReports(&out, []core.VerifyReport{
		{Kind: "actor", Valid: true},
		{Kind: "term", Violations: []nestedset.Violation{{NodeID: 7, Rule: "bounds", Detail: "lft >= rgt"}}},
	})
	assert.Equal(t, 1, invalid)

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasSuffix(lines[0], "ok"))
	assert.Contains(t, lines[1], "1 violation(s)")
}
