// Package client talks to a pickserve process over its msgpack IPC streams.
//
// Replies arrive out of order, so the client runs a read loop that routes
// each reply to the call waiting on its ID.
package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/bastiangx/pickserve/pkg/server"
	"github.com/bastiangx/pickserve/pkg/suggest"
	"github.com/charmbracelet/log"
	"github.com/vmihailenco/msgpack/v5"
)

// ErrClosed is returned by calls made after the reply stream ended.
var ErrClosed = errors.New("client: reply stream closed")

// ServerError is an error reply from the server.
type ServerError struct {
	Code    int
	Message string
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("pickserve: %s (code %d)", e.Message, e.Code)
}

// Reply decodes every response kind the server sends. C holds the
// suggestion count for resolves and the status code for errors.
type Reply struct {
	ID          string              `msgpack:"id"`
	Status      string              `msgpack:"status"`
	Removed     bool                `msgpack:"removed"`
	Query       string              `msgpack:"q"`
	Suggestions []server.Suggestion `msgpack:"s"`
	C           int                 `msgpack:"c"`
	TimeTaken   int64               `msgpack:"t"`
	Error       string              `msgpack:"e"`
	Stats       map[string]int      `msgpack:"stats"`
}

// Client is safe for concurrent use.
type Client struct {
	enc     *msgpack.Encoder
	writeMu sync.Mutex

	mu      sync.Mutex
	waiting map[string]chan Reply
	nextID  atomic.Uint64

	ready     chan struct{}
	readyOnce sync.Once
	done      chan struct{}
	err       error
}

// New starts reading replies from r and writes requests to w.
func New(r io.Reader, w io.Writer) *Client {
	c := &Client{
		enc:     msgpack.NewEncoder(w),
		waiting: make(map[string]chan Reply),
		ready:   make(chan struct{}),
		done:    make(chan struct{}),
	}
	go c.readLoop(msgpack.NewDecoder(r))
	return c
}

// Spawn starts a pickserve binary and connects to it. The caller owns the
// returned command and should close its stdin and Wait on it when done.
func Spawn(ctx context.Context, binary string, args ...string) (*Client, *exec.Cmd, error) {
	cmd := exec.CommandContext(ctx, binary, args...)
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, nil, fmt.Errorf("stdin pipe: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, nil, fmt.Errorf("stdout pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, nil, fmt.Errorf("start %s: %w", binary, err)
	}
	return New(stdout, stdin), cmd, nil
}

func (c *Client) readLoop(dec *msgpack.Decoder) {
	for {
		var reply Reply
		if err := dec.Decode(&reply); err != nil {
			if !errors.Is(err, io.EOF) {
				log.Errorf("Decoding reply: %v", err)
				c.err = fmt.Errorf("decode reply: %w", err)
			}
			close(c.done)
			return
		}

		if reply.ID == "" {
			if reply.Status == "ready" {
				c.readyOnce.Do(func() { close(c.ready) })
			} else if reply.Error != "" {
				log.Warnf("Server error without request ID: %s", reply.Error)
			}
			continue
		}

		c.mu.Lock()
		ch, ok := c.waiting[reply.ID]
		delete(c.waiting, reply.ID)
		c.mu.Unlock()
		if !ok {
			log.Debug("Dropping reply nobody waits for", "id", reply.ID)
			continue
		}
		ch <- reply
	}
}

// Ready blocks until the server has announced itself.
func (c *Client) Ready(ctx context.Context) error {
	select {
	case <-c.ready:
		return nil
	case <-c.done:
		return c.closedErr()
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *Client) closedErr() error {
	if c.err != nil {
		return c.err
	}
	return ErrClosed
}

func (c *Client) call(ctx context.Context, req server.Request) (Reply, error) {
	req.ID = req.Action + "_" + strconv.FormatUint(c.nextID.Add(1), 10)
	ch := make(chan Reply, 1)

	c.mu.Lock()
	c.waiting[req.ID] = ch
	c.mu.Unlock()
	forget := func() {
		c.mu.Lock()
		delete(c.waiting, req.ID)
		c.mu.Unlock()
	}

	c.writeMu.Lock()
	err := c.enc.Encode(req)
	c.writeMu.Unlock()
	if err != nil {
		forget()
		return Reply{}, fmt.Errorf("send %s: %w", req.Action, err)
	}

	select {
	case reply := <-ch:
		if reply.Error != "" {
			return reply, &ServerError{Code: reply.C, Message: reply.Error}
		}
		return reply, nil
	case <-c.done:
		forget()
		return Reply{}, c.closedErr()
	case <-ctx.Done():
		forget()
		return Reply{}, ctx.Err()
	}
}

// Resolve asks for suggestions. The reply's Query lets callers drop answers
// to queries the user has already typed past.
func (c *Client) Resolve(ctx context.Context, query string, selected []*suggest.Candidate) (Reply, error) {
	return c.call(ctx, server.Request{Action: server.ActionResolve, Query: query, Selected: selected})
}

// Remove drops the person with the given text from the server's pool and
// reports whether anyone was removed.
func (c *Client) Remove(ctx context.Context, text string) (bool, error) {
	reply, err := c.call(ctx, server.Request{Action: server.ActionRemove, Text: text})
	return reply.Removed, err
}

func (c *Client) Health(ctx context.Context) error {
	_, err := c.call(ctx, server.Request{Action: server.ActionHealth})
	return err
}

func (c *Client) Stats(ctx context.Context) (map[string]int, error) {
	reply, err := c.call(ctx, server.Request{Action: server.ActionStats})
	return reply.Stats, err
}
