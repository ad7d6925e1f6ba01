package server

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/bastiangx/pickserve/pkg/config"
	"github.com/bastiangx/pickserve/pkg/suggest"
	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"
	testingclock "k8s.io/utils/clock/testing"
)

func init() {
	log.SetLevel(log.ErrorLevel)
}

// wireResponse decodes any response kind. C is Count or Code.
type wireResponse struct {
	ID          string         `msgpack:"id"`
	Status      string         `msgpack:"status"`
	Removed     bool           `msgpack:"removed"`
	Query       string         `msgpack:"q"`
	Suggestions []Suggestion   `msgpack:"s"`
	C           int            `msgpack:"c"`
	Error       string         `msgpack:"e"`
	Stats       map[string]int `msgpack:"stats"`
}

func encodeRequests(t *testing.T, reqs ...Request) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	for _, req := range reqs {
		require.NoError(t, enc.Encode(req))
	}
	return &buf
}

func decodeResponses(t *testing.T, r io.Reader) map[string]wireResponse {
	t.Helper()
	dec := msgpack.NewDecoder(r)
	byID := make(map[string]wireResponse)
	for {
		var resp wireResponse
		err := dec.Decode(&resp)
		if errors.Is(err, io.EOF) {
			return byID
		}
		require.NoError(t, err)
		byID[resp.ID] = resp
	}
}

func testPool() []*suggest.Candidate {
	return []*suggest.Candidate{
		{Text: "Alice", SecondaryText: "Designer", ImageInitials: "AL"},
		{Text: "Alan"},
		{Name: "Bob"},
	}
}

func suggestionTexts(s []Suggestion) []string {
	out := make([]string, len(s))
	for i := range s {
		out[i] = s[i].Text + s[i].Name
	}
	return out
}

func TestServeRequests(t *testing.T) {
	resolver := suggest.NewResolver(testPool(), suggest.WithDelay(time.Millisecond))
	in := encodeRequests(t,
		Request{ID: "r1", Query: "al"},
		Request{ID: "r2", Action: ActionResolve, Query: "al", Selected: []*suggest.Candidate{{Text: "Alan"}}},
		Request{ID: "r3", Query: ""},
		Request{ID: "bob", Query: "B"},
		Request{ID: "hc", Action: ActionHealth},
		Request{ID: "rm", Action: ActionRemove, Text: "Alice"},
		Request{ID: "r4", Query: "al"},
		Request{ID: "rm2", Action: ActionRemove, Text: "Nobody"},
		Request{ID: "rm3", Action: ActionRemove},
		Request{ID: "long", Query: strings.Repeat("a", 61)},
		Request{ID: "ctl", Query: "a\x01"},
		Request{ID: "bad", Action: "explode"},
		Request{ID: "st", Action: ActionStats},
	)
	var out bytes.Buffer

	srv := NewServerWithIO(resolver, config.DefaultConfig(), "", in, &out)
	require.NoError(t, srv.Serve(context.Background()))

	got := decodeResponses(t, &out)

	assert.Equal(t, "ready", got[""].Status)

	r1 := got["r1"]
	assert.Equal(t, "al", r1.Query)
	assert.Equal(t, []string{"Alice", "Alan"}, suggestionTexts(r1.Suggestions))
	assert.Equal(t, 2, r1.C)
	assert.Equal(t, uint16(1), r1.Suggestions[0].Rank)
	assert.Equal(t, uint16(2), r1.Suggestions[1].Rank)
	assert.Equal(t, "Designer", r1.Suggestions[0].SecondaryText)
	assert.Equal(t, "AL", r1.Suggestions[0].ImageInitials)

	assert.Equal(t, []string{"Alice"}, suggestionTexts(got["r2"].Suggestions))
	assert.Empty(t, got["r3"].Suggestions)
	assert.Equal(t, []string{"Bob"}, suggestionTexts(got["bob"].Suggestions))
	assert.Equal(t, "ok", got["hc"].Status)

	assert.True(t, got["rm"].Removed)
	assert.Equal(t, []string{"Alan"}, suggestionTexts(got["r4"].Suggestions))
	assert.False(t, got["rm2"].Removed)
	assert.Equal(t, "ok", got["rm2"].Status)

	for _, id := range []string{"rm3", "long", "ctl", "bad"} {
		assert.NotEmpty(t, got[id].Error, id)
		assert.Equal(t, 400, got[id].C, id)
	}

	assert.Equal(t, 2, got["st"].Stats["candidates"])
}

func TestServeMalformedInput(t *testing.T) {
	resolver := suggest.NewResolver(testPool())
	in := bytes.NewReader([]byte{0xc1})
	var out bytes.Buffer

	srv := NewServerWithIO(resolver, nil, "", in, &out)
	err := srv.Serve(context.Background())
	require.Error(t, err)

	got := decodeResponses(t, &out)
	assert.Equal(t, 400, got[""].C)
	assert.Contains(t, got[""].Error, "invalid")
}

func TestServeCancelledAbandonsPending(t *testing.T) {
	fc := testingclock.NewFakeClock(time.Now())
	resolver := suggest.NewResolver(testPool(), suggest.WithClock(fc))
	in := encodeRequests(t, Request{ID: "r1", Query: "al"}, Request{ID: "hc", Action: ActionHealth})
	var out bytes.Buffer

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	srv := NewServerWithIO(resolver, nil, "", in, &out)
	require.NoError(t, srv.Serve(ctx))

	got := decodeResponses(t, &out)
	assert.Contains(t, got, "hc")
	assert.NotContains(t, got, "r1")
}

func TestReloadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[server]\nmax_query = 2\n"), 0644))

	srv := NewServerWithIO(suggest.NewResolver(nil), nil, path, &bytes.Buffer{}, io.Discard)
	assert.Equal(t, 60, srv.config.Server.MaxQuery)

	srv.reloadConfig()
	assert.Equal(t, 2, srv.config.Server.MaxQuery)

	srv.configPath = ""
	srv.config = config.DefaultConfig()
	srv.reloadConfig()
	assert.Equal(t, 60, srv.config.Server.MaxQuery)
}
