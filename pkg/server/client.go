package server

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/charmbracelet/log"
	"github.com/vmihailenco/msgpack/v5"
)

// ErrClosed is returned once the client connection is gone.
var ErrClosed = errors.New("server connection closed")

// Client talks to a Server over a reader/writer pair, such as the pipes of a
// spawned process. Requests may overlap; responses are matched by ID.
type Client struct {
	r io.Reader
	w io.Writer

	wmu sync.Mutex
	bw  *bufio.Writer
	enc *msgpack.Encoder

	mu      sync.Mutex
	pending map[string]chan response
	err     error

	nextID atomic.Uint64
	done   chan struct{}
}

// NewClient starts reading responses from r. Requests are written to w.
func NewClient(r io.Reader, w io.Writer) *Client {
	bw := bufio.NewWriter(w)
	c := &Client{
		r:       r,
		w:       w,
		bw:      bw,
		enc:     msgpack.NewEncoder(bw),
		pending: make(map[string]chan response),
		done:    make(chan struct{}),
	}
	go c.readLoop()
	return c
}

// Complete asks the server for the tagged completions of raw.
func (c *Client) Complete(ctx context.Context, raw string) ([]string, error) {
	id := c.newID("t")
	resp, err := c.call(ctx, id, TermRequest{ID: id, Search: raw})
	if err != nil {
		return nil, err
	}
	if resp.E != "" {
		return nil, fmt.Errorf("server error %d: %s", resp.C, resp.E)
	}
	if resp.Results == nil {
		return []string{}, nil
	}
	return resp.Results, nil
}

// Relation runs a relation management action.
func (c *Client) Relation(ctx context.Context, action string) (RelationResponse, error) {
	id := c.newID("r")
	resp, err := c.call(ctx, id, RelationRequest{ID: id, Action: action})
	if err != nil {
		return RelationResponse{}, err
	}
	out := RelationResponse{
		ID:      resp.ID,
		Status:  resp.Status,
		Error:   resp.Error,
		Triples: resp.Triples,
		Classes: resp.Classes,
		Source:  resp.Source,
		Index:   resp.Index,
	}
	if out.Status != "ok" {
		return out, fmt.Errorf("relation %s failed: %s", action, out.Error)
	}
	return out, nil
}

// Close closes both ends when they are closable and waits for the read
// loop to exit. Pending calls fail with ErrClosed.
func (c *Client) Close() error {
	var err error
	if wc, ok := c.w.(io.Closer); ok {
		err = wc.Close()
	}
	if rc, ok := c.r.(io.Closer); ok {
		if rerr := rc.Close(); err == nil {
			err = rerr
		}
	}
	<-c.done
	return err
}

func (c *Client) newID(prefix string) string {
	return prefix + strconv.FormatUint(c.nextID.Add(1), 10)
}

func (c *Client) call(ctx context.Context, id string, req any) (response, error) {
	ch := make(chan response, 1)

	c.mu.Lock()
	if c.err != nil {
		err := c.err
		c.mu.Unlock()
		return response{}, err
	}
	c.pending[id] = ch
	c.mu.Unlock()

	if err := c.send(req); err != nil {
		c.forget(id)
		return response{}, fmt.Errorf("%w: failed to send request: %v", ErrClosed, err)
	}

	select {
	case resp, ok := <-ch:
		if !ok {
			c.mu.Lock()
			defer c.mu.Unlock()
			return response{}, c.err
		}
		return resp, nil
	case <-ctx.Done():
		c.forget(id)
		return response{}, ctx.Err()
	}
}

func (c *Client) send(req any) error {
	c.wmu.Lock()
	defer c.wmu.Unlock()
	if err := c.enc.Encode(req); err != nil {
		return err
	}
	return c.bw.Flush()
}

func (c *Client) forget(id string) {
	c.mu.Lock()
	delete(c.pending, id)
	c.mu.Unlock()
}

func (c *Client) readLoop() {
	defer close(c.done)
	dec := msgpack.NewDecoder(bufio.NewReader(c.r))
	for {
		var resp response
		if err := dec.Decode(&resp); err != nil {
			c.fail(err)
			return
		}

		c.mu.Lock()
		ch, ok := c.pending[resp.ID]
		delete(c.pending, resp.ID)
		c.mu.Unlock()

		if !ok {
			// late answer to a canceled call, or an error without an id
			log.Debugf("Dropping response for unknown request %q", resp.ID)
			continue
		}
		ch <- resp
	}
}

// fail closes every pending call.
func (c *Client) fail(cause error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err == nil {
		if errors.Is(cause, io.EOF) {
			c.err = ErrClosed
		} else {
			c.err = fmt.Errorf("%w: %v", ErrClosed, cause)
		}
	}
	for id, ch := range c.pending {
		close(ch)
		delete(c.pending, id)
	}
}
