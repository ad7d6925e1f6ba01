package server

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/bastiangx/pickserve/internal/logger"
	"github.com/bastiangx/pickserve/internal/utils"
	"github.com/bastiangx/pickserve/pkg/config"
	"github.com/bastiangx/pickserve/pkg/suggest"
	"github.com/charmbracelet/log"
	"github.com/vmihailenco/msgpack/v5"
)

// reloadEvery is how many requests pass between config reloads.
const reloadEvery = 100

// Server handles the IPC for people suggestions
type Server struct {
	resolver   suggest.IResolver
	config     *config.Config
	configPath string

	reader  io.Reader
	writer  io.Writer
	encoder *msgpack.Encoder
	writeMu sync.Mutex

	inflight     sync.WaitGroup
	requestCount int
	log          *log.Logger
}

// NewServer creates a server using stdin/stdout for IPC
func NewServer(resolver suggest.IResolver, cfg *config.Config, configPath string) *Server {
	return NewServerWithIO(resolver, cfg, configPath, bufio.NewReader(os.Stdin), os.Stdout)
}

// NewServerWithIO creates a server over arbitrary streams
func NewServerWithIO(resolver suggest.IResolver, cfg *config.Config, configPath string, r io.Reader, w io.Writer) *Server {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	return &Server{
		resolver:   resolver,
		config:     cfg,
		configPath: configPath,
		reader:     r,
		writer:     w,
		encoder:    msgpack.NewEncoder(w),
		log:        logger.New("server"),
	}
}

// Start serves until stdin closes.
func (s *Server) Start() error {
	return s.Serve(context.Background())
}

// Serve reads requests until EOF, then waits for pending resolves to be
// answered. Cancelling ctx abandons pending resolves without replying.
func (s *Server) Serve(ctx context.Context) error {
	s.log.Debug("Starting server")
	s.send(StatusResponse{Status: "ready"})

	dec := msgpack.NewDecoder(s.reader)
	defer s.inflight.Wait()

	for {
		var req Request
		if err := dec.Decode(&req); err != nil {
			if errors.Is(err, io.EOF) {
				s.log.Debug("Input closed, draining pending resolves")
				return nil
			}
			s.log.Errorf("Decoding request: %v", err)
			s.sendError("", "invalid msgpack request", 400)
			return fmt.Errorf("decode request: %w", err)
		}
		s.handleRequest(ctx, req)
	}
}

func (s *Server) handleRequest(ctx context.Context, req Request) {
	s.requestCount++
	if s.requestCount%reloadEvery == 0 {
		s.reloadConfig()
	}

	switch req.Action {
	case "", ActionResolve:
		s.handleResolve(ctx, req)
	case ActionRemove:
		s.handleRemove(req)
	case ActionHealth:
		s.send(StatusResponse{ID: req.ID, Status: "ok"})
	case ActionStats:
		s.send(StatsResponse{ID: req.ID, Stats: s.resolver.Stats()})
	default:
		s.sendError(req.ID, fmt.Sprintf("unknown action: %s", req.Action), 400)
	}
}

func (s *Server) handleResolve(ctx context.Context, req Request) {
	limits := s.config.Server
	if len(req.Query) > limits.MaxQuery {
		s.sendError(req.ID, fmt.Sprintf("query exceeds maximum length of %d bytes", limits.MaxQuery), 400)
		return
	}
	if !utils.IsPrintable(req.Query) {
		s.sendError(req.ID, "query contains control characters or invalid UTF-8", 400)
		return
	}
	if limits.MaxSelected > 0 && len(req.Selected) > limits.MaxSelected {
		s.sendError(req.ID, fmt.Sprintf("selection exceeds maximum of %d items", limits.MaxSelected), 400)
		return
	}

	start := time.Now()
	pending := s.resolver.Resolve(req.Query, req.Selected)

	s.inflight.Add(1)
	go func() {
		defer s.inflight.Done()
		results, err := pending.Wait(ctx)
		if err != nil {
			s.log.Debug("Abandoned resolve", "id", req.ID, "err", err)
			return
		}
		suggestions := toSuggestions(results)
		s.send(ResolveResponse{
			ID:          req.ID,
			Query:       req.Query,
			Suggestions: suggestions,
			Count:       len(suggestions),
			TimeTaken:   time.Since(start).Microseconds(),
		})
	}()
}

func (s *Server) handleRemove(req Request) {
	if req.Text == "" {
		s.sendError(req.ID, "missing 'text' parameter", 400)
		return
	}
	item := s.resolver.Find(req.Text)
	if item != nil {
		s.resolver.RemoveCandidate(item)
	}
	s.send(StatusResponse{ID: req.ID, Status: "ok", Removed: item != nil})
}

// toSuggestions ranks results by position, 1 being first.
func toSuggestions(results []*suggest.Candidate) []Suggestion {
	out := make([]Suggestion, len(results))
	for i, c := range results {
		out[i] = Suggestion{
			Text:          c.Text,
			Name:          c.Name,
			SecondaryText: c.SecondaryText,
			ImageInitials: c.ImageInitials,
			Presence:      c.Presence,
			Rank:          uint16(min(i+1, 1<<16-1)),
		}
	}
	return out
}

func (s *Server) reloadConfig() {
	if s.configPath == "" {
		return
	}
	cfg, err := config.LoadConfig(s.configPath)
	if err != nil {
		s.log.Warnf("Config reload failed, keeping current settings: %v", err)
		return
	}
	s.config = cfg
	s.log.Debug("Reloaded config", "path", s.configPath)
}

// send encodes a response. Resolve goroutines call it concurrently.
func (s *Server) send(response any) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	if err := s.encoder.Encode(response); err != nil {
		s.log.Errorf("Encoding response: %v", err)
		return
	}
	if f, ok := s.writer.(interface{ Flush() error }); ok {
		if err := f.Flush(); err != nil {
			s.log.Errorf("Flushing response: %v", err)
		}
	}
}

func (s *Server) sendError(id, message string, code int) {
	s.log.Debug("Request failed", "id", id, "err", message)
	s.send(ErrorResponse{ID: id, Error: message, Code: code})
}
