package cli

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/bastiangx/pickserve/pkg/config"

	"github.com/bastiangx/pickserve/pkg/selection"
	"github.com/bastiangx/pickserve/pkg/suggest"
	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	log.SetLevel(log.ErrorLevel)
}

func runSession(t *testing.T, limit int, lines ...string) (string, *selection.SelectedList, *suggest.Resolver) {
	t.Helper()
	return runSessionWithConfig(t, limit, nil, "", lines...)
}

func runSessionWithConfig(t *testing.T, limit int, cfg *config.Config, path string, lines ...string) (string, *selection.SelectedList, *suggest.Resolver) {
	t.Helper()
	resolver := suggest.NewResolver([]*suggest.Candidate{
		{Text: "Alice", SecondaryText: "Designer"},
		{Text: "Alan"},
		{Text: "Albert"},
		{Name: "Bob"},
	}, suggest.WithDelay(0))
	selected := selection.NewSelectedList()

	var out bytes.Buffer
	in := strings.NewReader(strings.Join(lines, "\n") + "\n")
	h := NewInputHandlerWithIO(resolver, selected, limit, in, &out)
	h.UseConfig(cfg, path)
	require.NoError(t, h.Start())
	return out.String(), selected, resolver
}

func TestQueryAndSelect(t *testing.T) {
	out, selected, _ := runSession(t, 10,
		"al",
		"+alan",
		"al",
		":copy",
	)

	assert.Contains(t, out, "Found 3 suggestions for 'al'")
	assert.Contains(t, out, "selected Alan")
	assert.Contains(t, out, "Found 2 suggestions for 'al'")
	assert.Contains(t, out, `copy text: "Alan"`)
	require.Equal(t, 1, selected.Len())
	assert.Equal(t, "Alan", selected.Items()[0].Text)
}

func TestSelectFallsBackToPool(t *testing.T) {
	out, selected, _ := runSession(t, 10, "+Bob", "+nobody", ":list")

	assert.Contains(t, out, "selected Bob")
	assert.Contains(t, out, "Nobody matching 'nobody'")
	assert.Contains(t, out, "1. Bob")
	assert.Equal(t, 1, selected.Len())
}

func TestUnselectAndDrop(t *testing.T) {
	out, selected, resolver := runSession(t, 10,
		"al",
		"+ali",
		"-Alice",
		"-Alice",
		"!Albert",
		"!Albert",
		"al",
		":list",
	)

	assert.Contains(t, out, "unselected Alice")
	assert.Contains(t, out, "'Alice' is not selected")
	assert.Contains(t, out, "removed Albert from the pool")
	assert.Contains(t, out, "'Albert' is not in the pool")
	assert.Contains(t, out, "Found 2 suggestions for 'al'")
	assert.Contains(t, out, "nothing selected")
	assert.Equal(t, 0, selected.Len())
	assert.Equal(t, 3, resolver.Len())
}

func TestQueryLimitAndEmpty(t *testing.T) {
	out, _, _ := runSession(t, 1, "al", "zz", ":stats")

	assert.Contains(t, out, "... 2 more")
	assert.Contains(t, out, "No suggestions for 'zz'")
	assert.Contains(t, out, "candidates")
}

func TestStatsSorted(t *testing.T) {
	out, _, _ := runSession(t, 10, ":stats")

	candidates := strings.Index(out, "stats candidates=4")
	delay := strings.Index(out, "stats delayMs=0")
	indexed := strings.Index(out, "stats indexed=4")
	require.NotEqual(t, -1, candidates, out)
	require.NotEqual(t, -1, delay, out)
	require.NotEqual(t, -1, indexed, out)
	assert.Less(t, candidates, delay)
	assert.Less(t, delay, indexed)
	assert.NotContains(t, out, "value=")
}

func TestSetDelay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	cfg := config.DefaultConfig()

	out, _, resolver := runSessionWithConfig(t, 10, cfg, path, ":delay 40", ":delay soon", ":delay -5")

	assert.Contains(t, out, "resolve delay set to 40ms")
	assert.Contains(t, out, "saved delay_ms to "+path)
	assert.Contains(t, out, "Usage: :delay <milliseconds>, got 'soon'")
	assert.Contains(t, out, "got '-5'")
	assert.Equal(t, 40*time.Millisecond, resolver.Delay())

	saved, err := config.LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 40, saved.Resolver.DelayMs)
}

func TestSetDelayWithoutConfig(t *testing.T) {
	out, _, resolver := runSession(t, 10, ":delay 5")

	assert.Contains(t, out, "resolve delay set to 5ms")
	assert.NotContains(t, out, "saved delay_ms")
	assert.Equal(t, 5*time.Millisecond, resolver.Delay())
}
