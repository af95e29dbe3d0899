/*
Package server implements msgpack IPC for term completion.

The server reads msgpack messages from stdin and writes responses to stdout.
Every message carries an ID that is echoed in its response, so a client may
pipeline requests and match answers as they arrive.

# IPC

Term completion requests carry the raw query field value and an optional
limit:

	{"id": "t1", "s": "#fvTenant@na", "l": 24}

The server answers with tagged matches, sorted, the total count before the
limit and the time taken in microseconds:

	{"id": "t1", "r": ["aname", "anameAlias"], "c": 2, "t": 87}

Each match starts with its field code: 'c' class, 'a' attribute, 'v' value.
An empty query yields an empty result, not an error.

Relation management requests inspect or reload the reference relation:

	{"id": "r1", "action": "get_info"}
	{"id": "r2", "action": "reload"}

Malformed requests are answered with a TermError and the server keeps
serving:

	{"id": "t2", "e": "search term exceeds maximum length of 256", "c": 400}
*/
package server

// Relation actions.
const (
	ActionGetInfo = "get_info"
	ActionReload  = "reload"
)

// TermRequest asks for completions of the cursor term of Search.
type TermRequest struct {
	ID     string `msgpack:"id"`
	Search string `msgpack:"s"`
	Limit  int    `msgpack:"l,omitempty"`
}

// TermResponse holds the sorted tagged matches.
type TermResponse struct {
	ID        string   `msgpack:"id"`
	Results   []string `msgpack:"r"`
	Count     int      `msgpack:"c"`
	TimeTaken int64    `msgpack:"t"`
}

// TermError holds basic error information for term requests
type TermError struct {
	ID    string `msgpack:"id"`
	Error string `msgpack:"e"`
	Code  int    `msgpack:"c"`
}

// RelationRequest - relation management request
type RelationRequest struct {
	ID     string `msgpack:"id"`
	Action string `msgpack:"action"`
}

// RelationResponse - relation operation response
type RelationResponse struct {
	ID      string `msgpack:"id"`
	Status  string `msgpack:"status"`
	Error   string `msgpack:"error,omitempty"`
	Triples int    `msgpack:"triples"`
	Classes int    `msgpack:"classes"`
	Source  string `msgpack:"source,omitempty"`
	Index   string `msgpack:"index,omitempty"`
}

// request is the union of every inbound message. Action tells relation
// requests from term requests.
type request struct {
	ID     string `msgpack:"id"`
	Search string `msgpack:"s"`
	Limit  int    `msgpack:"l"`
	Action string `msgpack:"action"`
}

// response is the union of every outbound message, as read by the Client.
type response struct {
	ID        string   `msgpack:"id"`
	Results   []string `msgpack:"r"`
	C         int      `msgpack:"c"` // count, or error code when E is set
	TimeTaken int64    `msgpack:"t"`
	E         string   `msgpack:"e"`

	Status  string `msgpack:"status"`
	Error   string `msgpack:"error"`
	Triples int    `msgpack:"triples"`
	Classes int    `msgpack:"classes"`
	Source  string `msgpack:"source"`
	Index   string `msgpack:"index"`
}
