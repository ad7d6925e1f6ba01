// Package cli handles cmd line input and suggestions for DBG and testing the resolver by hand
package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/bastiangx/pickserve/internal/utils"
	"github.com/bastiangx/pickserve/pkg/config"
	"github.com/bastiangx/pickserve/pkg/selection"
	"github.com/bastiangx/pickserve/pkg/suggest"
	"github.com/charmbracelet/log"
)

const help = `type a query and press Enter to see suggestions (Ctrl+C to exit)
  +text   select the first suggestion starting with text
  -text   unselect the person with that exact text
  !text   remove the person with that exact text from the pool
  :list   show the selection
  :copy   show the selection as copy text
  :stats  show pool statistics
  :delay n  set the resolve delay to n ms and save it to the config`

// InputHandler reads commands from stdin and drives a resolver and a
// selection the way a people picker would.
type InputHandler struct {
	resolver     suggest.IResolver
	selected     *selection.SelectedList
	suggestLimit int
	lastResults  []*suggest.Candidate

	config     *config.Config
	configPath string

	in  io.Reader
	out *log.Logger
}

// NewInputHandler handles initialization of the InputHandler with basic parameters
func NewInputHandler(resolver suggest.IResolver, selected *selection.SelectedList, limit int) *InputHandler {
	return NewInputHandlerWithIO(resolver, selected, limit, os.Stdin, os.Stderr)
}

// NewInputHandlerWithIO is NewInputHandler over explicit streams.
func NewInputHandlerWithIO(resolver suggest.IResolver, selected *selection.SelectedList, limit int, in io.Reader, out io.Writer) *InputHandler {
	if selected == nil {
		selected = selection.NewSelectedList()
	}
	return &InputHandler{
		resolver:     resolver,
		selected:     selected,
		suggestLimit: limit,
		in:           in,
		out: log.NewWithOptions(out, log.Options{
			ReportTimestamp: false,
			Level:           log.InfoLevel,
		}),
	}
}

// UseConfig makes :delay persist changes to the config file at path.
func (h *InputHandler) UseConfig(cfg *config.Config, path string) {
	h.config = cfg
	h.configPath = path
}

// Start runs the prompt loop until input ends.
func (h *InputHandler) Start() error {
	h.out.Print("PickServe CLI [BETA]")
	h.out.Print(help)

	scanner := bufio.NewScanner(h.in)
	for {
		h.out.Print("> ")
		if !scanner.Scan() {
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		h.handleInput(line)
	}
}

func (h *InputHandler) handleInput(line string) {
	switch {
	case line == ":list":
		h.printList()
	case line == ":copy":
		h.out.Printf("copy text: %q", h.selected.CopyText())
	case line == ":stats":
		h.printStats()
	case strings.HasPrefix(line, ":delay"):
		h.setDelay(strings.TrimSpace(strings.TrimPrefix(line, ":delay")))
	case strings.HasPrefix(line, "+"):
		h.selectPerson(strings.TrimSpace(line[1:]))
	case strings.HasPrefix(line, "-"):
		h.unselectPerson(strings.TrimSpace(line[1:]))
	case strings.HasPrefix(line, "!"):
		h.dropPerson(strings.TrimSpace(line[1:]))
	default:
		h.query(line)
	}
}

func (h *InputHandler) query(q string) {
	if !utils.IsPrintable(q) {
		log.Errorf("Query contains control characters: %q", q)
		return
	}

	start := time.Now()
	pending := h.resolver.Resolve(q, h.selected.Items())
	log.Debug("Resolving", "query", q)

	results, err := pending.Wait(context.Background())
	if err != nil {
		log.Errorf("Resolve failed: %v", err)
		return
	}
	log.Debugf("Took [ %v ] for query '%s'", time.Since(start), q)

	h.lastResults = results
	if len(results) == 0 {
		h.out.Warnf("No suggestions for '%s'", q)
		return
	}

	h.out.Printf("Found %d suggestions for '%s':", len(results), q)
	for i, c := range results {
		if h.suggestLimit > 0 && i >= h.suggestLimit {
			h.out.Printf("    ... %d more", len(results)-i)
			break
		}
		h.out.Printf("%2d. %-30s %s", i+1, c, c.SecondaryText)
	}
}

func (h *InputHandler) selectPerson(text string) {
	var pick *suggest.Candidate
	for _, c := range h.lastResults {
		if utils.HasPrefixIgnoreCase(c.MatchText(), text) {
			pick = c
			break
		}
	}
	if pick == nil {
		pick = h.resolver.Find(text)
	}
	if pick == nil {
		h.out.Warnf("Nobody matching '%s' in the last suggestions", text)
		return
	}
	h.selected.Add(pick)
	h.out.Printf("selected %s", pick)
}

func (h *InputHandler) unselectPerson(text string) {
	for _, c := range h.selected.Items() {
		if c.MatchText() == text {
			h.selected.Remove(c)
			h.out.Printf("unselected %s", c)
			return
		}
	}
	h.out.Warnf("'%s' is not selected", text)
}

func (h *InputHandler) dropPerson(text string) {
	item := h.resolver.Find(text)
	if item == nil {
		h.out.Warnf("'%s' is not in the pool", text)
		return
	}
	h.resolver.RemoveCandidate(item)
	h.out.Printf("removed %s from the pool", item)
}

func (h *InputHandler) printStats() {
	stats := h.resolver.Stats()
	keys := make([]string, 0, len(stats))
	for k := range stats {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		h.out.Print("stats", k, stats[k])
	}
}

func (h *InputHandler) setDelay(arg string) {
	ms, err := strconv.Atoi(arg)
	if err != nil || ms < 0 {
		h.out.Warnf("Usage: :delay <milliseconds>, got '%s'", arg)
		return
	}
	h.resolver.SetDelay(time.Duration(ms) * time.Millisecond)
	h.out.Printf("resolve delay set to %dms", ms)

	if h.config == nil || h.configPath == "" {
		return
	}
	if err := h.config.Update(h.configPath, &ms, nil, nil); err != nil {
		log.Errorf("Saving config: %v", err)
		return
	}
	h.out.Printf("saved delay_ms to %s", h.configPath)
}

func (h *InputHandler) printList() {
	items := h.selected.Items()
	if len(items) == 0 {
		h.out.Print("nothing selected")
		return
	}
	for i, c := range items {
		h.out.Print(fmt.Sprintf("%2d. %s", i+1, c))
	}
}
