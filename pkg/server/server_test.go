package server

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/bastiangx/termserve/pkg/config"
	"github.com/bastiangx/termserve/pkg/match"
	"github.com/bastiangx/termserve/pkg/relation"
	"github.com/bastiangx/termserve/pkg/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"
)

var _ session.Lookup = (*Client)(nil)

func tenants() *relation.Relation {
	return relation.New([]relation.Triple{
		relation.NewTriple("tenant1", "provider", "x"),
		relation.NewTriple("tenant1", "consumer", "y"),
		relation.NewTriple("tenant2", "provider", "mac 00:11"),
	})
}

// pipeServer runs a server on in-memory pipes and returns the client side.
func pipeServer(t *testing.T, rel *relation.Relation, cfg *config.Config, opts ...Option) (*Server, *Client) {
	t.Helper()
	reqR, reqW := io.Pipe()
	respR, respW := io.Pipe()

	srv, err := NewServer(rel, cfg, append(opts, WithIO(reqR, respW))...)
	require.NoError(t, err)

	errc := make(chan error, 1)
	go func() {
		err := srv.Start(context.Background())
		respW.Close()
		errc <- err
	}()

	client := NewClient(respR, reqW)
	t.Cleanup(func() {
		client.Close()
		assert.NoError(t, <-errc)
	})
	return srv, client
}

func TestClientComplete(t *testing.T) {
	_, client := pipeServer(t, tenants(), config.DefaultConfig())
	ctx := context.Background()

	testCases := []struct {
		raw         string
		expected    []string
		description string
	}{
		{"#tenant1@", []string{"aconsumer", "aprovider"}, "sorted attributes"},
		{"#ten", []string{"ctenant1", "ctenant2"}, "class prefix"},
		{"", []string{}, "empty search"},
		{"#nothing", []string{}, "no match"},
	}
	for _, tc := range testCases {
		t.Run(tc.description, func(t *testing.T) {
			got, err := client.Complete(ctx, tc.raw)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, got)
		})
	}
}

func TestClientCompleteTooLong(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Server.MaxPrefix = 4
	_, client := pipeServer(t, tenants(), cfg)

	ctx := context.Background()
	_, err := client.Complete(ctx, "#tenant")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "400")

	// earlier terms do not count against the limit
	got, err := client.Complete(ctx, `=mac00:11 @provider #te`)
	require.NoError(t, err)
	assert.Equal(t, []string{"ctenant1", "ctenant2"}, got)
}

func TestClientCompleteMinPrefix(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Server.MinPrefix = 3
	_, client := pipeServer(t, tenants(), cfg)
	ctx := context.Background()

	got, err := client.Complete(ctx, "#tenant1@provider #t")
	require.NoError(t, err)
	assert.Empty(t, got, "cursor term shorter than min_prefix")

	got, err = client.Complete(ctx, "x #te")
	require.NoError(t, err)
	assert.Equal(t, []string{"ctenant1", "ctenant2"}, got)
}

func TestClientConcurrentRequests(t *testing.T) {
	srv, client := pipeServer(t, tenants(), config.DefaultConfig())

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			raw, expected := "#tenant1@", []string{"aconsumer", "aprovider"}
			if i%2 == 0 {
				raw, expected = "@provider=", []string{"vmac 00:11", "vx"}
			}
			got, err := client.Complete(context.Background(), raw)
			assert.NoError(t, err)
			assert.Equal(t, expected, got)
			// read while the server goroutine keeps counting
			assert.GreaterOrEqual(t, srv.RequestCount(), int64(1))
		}(i)
	}
	wg.Wait()
	assert.Equal(t, int64(20), srv.RequestCount())
}

func TestRelationActions(t *testing.T) {
	loads := 0
	loader := func() (*relation.Relation, error) {
		loads++
		return relation.New([]relation.Triple{relation.NewTriple("fvAp", "name", "web")}), nil
	}
	_, client := pipeServer(t, tenants(), config.DefaultConfig(), WithLoader(loader))
	ctx := context.Background()

	info, err := client.Relation(ctx, ActionGetInfo)
	require.NoError(t, err)
	assert.Equal(t, 3, info.Triples)
	assert.Equal(t, 2, info.Classes)
	assert.Equal(t, "trie", info.Index)

	info, err = client.Relation(ctx, ActionReload)
	require.NoError(t, err)
	assert.Equal(t, 1, info.Triples)
	assert.Equal(t, 1, loads)

	got, err := client.Complete(ctx, "#fv")
	require.NoError(t, err)
	assert.Equal(t, []string{"cfvAp"}, got)

	_, err = client.Relation(ctx, "drop")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown action")
}

func TestReloadWithoutLoader(t *testing.T) {
	_, client := pipeServer(t, tenants(), config.DefaultConfig())
	resp, err := client.Relation(context.Background(), ActionReload)
	require.Error(t, err)
	assert.Equal(t, "error", resp.Status)
}

func TestApplyConfig(t *testing.T) {
	srv, client := pipeServer(t, tenants(), config.DefaultConfig())
	ctx := context.Background()

	got, err := client.Complete(ctx, "#tenant2@provider=mac 00:")
	require.NoError(t, err)
	assert.Equal(t, []string{"vmac 00:11"}, got)

	cfg := config.DefaultConfig()
	cfg.Query.ColonAttr = true
	cfg.Relation.Index = "scan"
	cfg.Server.MaxResults = 1
	require.NoError(t, srv.ApplyConfig(cfg))

	// every ':' is now an attribute sigil
	got, err = client.Complete(ctx, "#tenant2@provider=mac 00:")
	require.NoError(t, err)
	assert.Empty(t, got)

	got, err = client.Complete(ctx, "#tenant1@")
	require.NoError(t, err)
	assert.Equal(t, []string{"aconsumer"}, got)

	cfg.Relation.Index = "bloom"
	assert.True(t, errors.Is(srv.ApplyConfig(cfg), match.ErrUnknownMatcher))
}

func TestNewServerUnknownIndex(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Relation.Index = "bloom"
	_, err := NewServer(tenants(), cfg)
	assert.True(t, errors.Is(err, match.ErrUnknownMatcher))
}

func TestRawProtocol(t *testing.T) {
	reqR, reqW := io.Pipe()
	respR, respW := io.Pipe()
	cfg := config.DefaultConfig()
	srv, err := NewServer(tenants(), cfg, WithIO(reqR, respW))
	require.NoError(t, err)

	errc := make(chan error, 1)
	go func() {
		err := srv.Start(context.Background())
		respW.Close()
		errc <- err
	}()

	enc := msgpack.NewEncoder(reqW)
	dec := msgpack.NewDecoder(respR)

	// a bare integer is not a request
	require.NoError(t, enc.Encode(42))
	var termErr TermError
	require.NoError(t, dec.Decode(&termErr))
	assert.Equal(t, 400, termErr.Code)

	require.NoError(t, enc.Encode(TermRequest{ID: "t1", Search: "#tenant1@", Limit: 1}))
	var resp TermResponse
	require.NoError(t, dec.Decode(&resp))
	assert.Equal(t, "t1", resp.ID)
	assert.Equal(t, []string{"aconsumer"}, resp.Results)
	assert.Equal(t, 2, resp.Count)

	require.NoError(t, enc.Encode(TermRequest{ID: "t2", Search: "#ten\x00"}))
	require.NoError(t, dec.Decode(&termErr))
	assert.Equal(t, "t2", termErr.ID)
	assert.True(t, strings.Contains(termErr.Error, "invalid"))

	reqW.Close()
	require.NoError(t, <-errc)
	respR.Close()
	assert.Equal(t, int64(2), srv.RequestCount())
}

func TestClientClosed(t *testing.T) {
	reqR, reqW := io.Pipe()
	respR, respW := io.Pipe()
	client := NewClient(respR, reqW)

	// the server side goes away
	reqR.Close()
	respW.Close()

	_, err := client.Complete(context.Background(), "#a")
	assert.True(t, errors.Is(err, ErrClosed), "got %v", err)
	client.Close()
}

func TestClientCanceled(t *testing.T) {
	reqR, reqW := io.Pipe()
	respR, respW := io.Pipe()
	client := NewClient(respR, reqW)

	// drain requests without answering
	drained := make(chan struct{})
	go func() {
		io.Copy(io.Discard, reqR)
		close(drained)
	}()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := client.Complete(ctx, "#a")
	assert.True(t, errors.Is(err, context.Canceled))

	respW.Close()
	client.Close()
	<-drained
}

func TestSessionOverClient(t *testing.T) {
	_, client := pipeServer(t, tenants(), config.DefaultConfig())
	r := &recorder{}
	s := session.New(client, r, session.WithAsync(true))

	s.Update(context.Background(), "#tenant1@p")
	s.Close()

	require.Len(t, r.results, 1)
	require.Len(t, r.results[0].Items, 1)
	assert.Equal(t, "provider", r.results[0].Items[0].Text)
	assert.Equal(t, 1, r.results[0].Items[0].HighlightLen)
}
