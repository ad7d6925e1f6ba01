package utils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	log.SetLevel(log.ErrorLevel)
}

func TestHasPrefixIgnoreCase(t *testing.T) {
	assert.True(t, HasPrefixIgnoreCase("Annie", "an"))
	assert.True(t, HasPrefixIgnoreCase("annie", "ANN"))
	assert.False(t, HasPrefixIgnoreCase("Joanne", "an"))
	assert.True(t, HasPrefixIgnoreCase("x", ""))
}

func TestIsPrintable(t *testing.T) {
	assert.True(t, IsPrintable("Annie Lindqvist"))
	assert.True(t, IsPrintable("Lundström"))
	assert.False(t, IsPrintable("ann\x00"))
	assert.False(t, IsPrintable("ann\n"))
	assert.False(t, IsPrintable(string([]byte{0xff, 0xfe})))
}

func TestTOMLHelpers(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "conf.toml")
	require.NoError(t, EnsureDir(filepath.Dir(path)))

	type section struct {
		Count int    `toml:"count"`
		Label string `toml:"label"`
		On    bool   `toml:"on"`
	}
	type doc struct {
		Main section `toml:"main"`
	}
	require.NoError(t, SaveTOMLFile(doc{Main: section{Count: 3, Label: "x", On: true}}, path))
	assert.True(t, FileExists(path))
	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp file must be renamed away")

	var loaded doc
	require.NoError(t, LoadTOMLFile(path, &loaded))
	assert.Equal(t, 3, loaded.Main.Count)

	raw, err := ParseTOMLWithRecovery(path)
	require.NoError(t, err)
	sec, ok := ExtractSection(raw, "main")
	require.True(t, ok)

	count, ok := ExtractInt64(sec, "count")
	assert.True(t, ok)
	assert.Equal(t, 3, count)
	label, ok := ExtractString(sec, "label")
	assert.True(t, ok)
	assert.Equal(t, "x", label)

	_, ok = ExtractString(sec, "count")
	assert.False(t, ok)
	_, ok = ExtractSection(raw, "missing")
	assert.False(t, ok)
}

func TestCheckDirStatus(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "created")
	result := CheckDirStatus(dir)
	assert.True(t, result.Exists)
	assert.True(t, result.Writable)
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries, "write probe must be cleaned up")
}

func TestGetAbsolutePath(t *testing.T) {
	assert.Equal(t, "unknown", GetAbsolutePath(""))
	assert.True(t, filepath.IsAbs(GetAbsolutePath("config.toml")))
	assert.Equal(t, "/etc/x.toml", GetAbsolutePath("/etc/x.toml"))
}
