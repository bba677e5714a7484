package httpclient

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/fossabot/wechat-1/config"
	"github.com/fossabot/wechat-1/logger"
	"github.com/stretchr/testify/require"
)

// fakeHolder is a TokenHolder that hands out tokens from a list, one per refresh.
type fakeHolder struct {
	mu        sync.Mutex
	tokens    []string
	refreshes int
	err       error
}

func newFakeHolder(tokens ...string) *fakeHolder {
	return &fakeHolder{tokens: tokens}
}

func (h *fakeHolder) Token() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.tokens[min(h.refreshes, len(h.tokens)-1)]
}

func (h *fakeHolder) Refresh(context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.err != nil {
		return h.err
	}
	h.refreshes++
	return nil
}

func (h *fakeHolder) Refreshes() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.refreshes
}

// statusReply overrides the server's status code for one reply.
type statusReply struct {
	status int
	body   any
}

// testServer counts hits and replies with the bodies in order, repeating the last one.
type testServer struct {
	*httptest.Server
	hits     atomic.Int32
	mu       sync.Mutex
	requests []*http.Request
	bodies   [][]byte
}

func newTestServer(t *testing.T, status int, replies ...any) *testServer {
	t.Helper()
	ts := &testServer{}
	ts.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := int(ts.hits.Add(1))

		body, _ := io.ReadAll(r.Body)
		ts.mu.Lock()
		ts.requests = append(ts.requests, r.Clone(context.Background()))
		ts.bodies = append(ts.bodies, body)
		ts.mu.Unlock()

		reply, code := replies[min(n, len(replies))-1], status
		if sr, ok := reply.(statusReply); ok {
			reply, code = sr.body, sr.status
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		_ = json.NewEncoder(w).Encode(reply)
	}))
	t.Cleanup(ts.Close)
	return ts
}

func (ts *testServer) Hits() int {
	return int(ts.hits.Load())
}

func (ts *testServer) Request(i int) (*http.Request, []byte) {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	return ts.requests[i], ts.bodies[i]
}

func newTestClient(t *testing.T, baseURI string, settings map[string]any, holder *fakeHolder, mutate ...func(*ClientConfig)) *Client {
	t.Helper()
	cfg := ClientConfig{
		BaseURI:     baseURI,
		Settings:    config.New(settings),
		TokenHolder: holder,
		Logger:      logger.NewNopLogger(),
	}
	for _, fn := range mutate {
		fn(&cfg)
	}
	client, err := BuildClient(cfg, true)
	require.NoError(t, err)
	return client
}

// fastRetry keeps retry delays short in tests.
func fastRetry() map[string]any {
	return map[string]any{"http": map[string]any{"retry_delay": 1}}
}
