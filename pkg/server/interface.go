/*
Package server implements msgpack IPC for people-picker suggestions.

Clients write a stream of msgpack-encoded requests to stdin and read a stream
of msgpack-encoded responses from stdout. Every request carries an ID that is
echoed back, because responses do not come back in request order: a resolve
answers only after the resolver's delay, while other actions answer at once.

# Resolve

A request without an action (or with action "resolve") asks for suggestions:

	{"id": "req_001", "q": "al", "sel": [{"text": "Alan"}]}

The reply lists matching people in pool order, minus those already selected:

	{"id": "req_001", "q": "al", "s": [{"text": "Alice", "r": 1}], "c": 1, "t": 150210}

t is the time from receipt to reply in microseconds, delay included.
Overlapping resolves are independent and may complete out of order; clients
drop replies whose q no longer matches their input.

# Other actions

	{"id": "rm_1", "action": "remove", "text": "Alice"}
	{"id": "hc_1", "action": "health"}
	{"id": "st_1", "action": "stats"}

remove takes the first candidate whose text (or name, when it has no text)
equals the given value exactly. Removing someone who is not there is not an
error; the reply just reports removed=false.

Validation failures come back as an error response with a 400 code.
*/
package server

import "github.com/bastiangx/pickserve/pkg/suggest"

// Actions understood by the server.
const (
	ActionResolve = "resolve"
	ActionRemove  = "remove"
	ActionHealth  = "health"
	ActionStats   = "stats"
)

// Request is the single envelope for every client message.
type Request struct {
	ID       string               `msgpack:"id"`
	Action   string               `msgpack:"action,omitempty"`
	Query    string               `msgpack:"q,omitempty"`
	Selected []*suggest.Candidate `msgpack:"sel,omitempty"`
	Text     string               `msgpack:"text,omitempty"`
}

// Suggestion is one suggested person
type Suggestion struct {
	Text          string `msgpack:"text,omitempty"`
	Name          string `msgpack:"name,omitempty"`
	SecondaryText string `msgpack:"secondary,omitempty"`
	ImageInitials string `msgpack:"initials,omitempty"`
	Presence      int    `msgpack:"presence,omitempty"`
	Rank          uint16 `msgpack:"r"`
}

// ResolveResponse answers a resolve request
type ResolveResponse struct {
	ID          string       `msgpack:"id"`
	Query       string       `msgpack:"q"`
	Suggestions []Suggestion `msgpack:"s"`
	Count       int          `msgpack:"c"`
	TimeTaken   int64        `msgpack:"t"`
}

// StatusResponse answers remove and health requests, and announces readiness
type StatusResponse struct {
	ID      string `msgpack:"id,omitempty"`
	Status  string `msgpack:"status"`
	Removed bool   `msgpack:"removed,omitempty"`
}

// StatsResponse carries resolver statistics
type StatsResponse struct {
	ID    string         `msgpack:"id"`
	Stats map[string]int `msgpack:"stats"`
}

// ErrorResponse holds basic error information for a failed request
type ErrorResponse struct {
	ID    string `msgpack:"id"`
	Error string `msgpack:"e"`
	Code  int    `msgpack:"c"`
}
