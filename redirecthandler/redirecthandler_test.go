package redirecthandler

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/fossabot/wechat-1/logger"
	"github.com/fossabot/wechat-1/mocklogger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func permissiveMockLogger() *mocklogger.MockLogger {
	m := mocklogger.NewMockLogger()
	m.On("Debug", mock.Anything, mock.Anything).Maybe()
	m.On("Info", mock.Anything, mock.Anything).Maybe()
	m.On("Warn", mock.Anything, mock.Anything).Maybe()
	return m
}

func mustURL(t *testing.T, raw string) *url.URL {
	t.Helper()
	u, err := url.Parse(raw)
	require.NoError(t, err)
	return u
}

func TestCheckRedirectNonIdempotent(t *testing.T) {
	mockLogger := permissiveMockLogger()
	handler := NewRedirectHandler(mockLogger, 5, true)

	origin := &http.Request{Method: http.MethodPost, URL: mustURL(t, "https://api.example.com/cgi-bin/message/send")}
	next := &http.Request{Method: http.MethodGet, URL: mustURL(t, "https://api.example.com/other"), Header: http.Header{}}

	err := handler.checkRedirect(next, []*http.Request{origin})

	assert.Equal(t, http.ErrUseLastResponse, err)
	mockLogger.AssertCalled(t, "Warn", "Redirect attempted on non-idempotent method, not following", mock.Anything)
}

func TestMaxRedirectsReached(t *testing.T) {
	handler := NewRedirectHandler(permissiveMockLogger(), 1, true)
	via := []*http.Request{
		{Method: http.MethodGet, URL: mustURL(t, "https://a.example.com/1")},
		{Method: http.MethodGet, URL: mustURL(t, "https://a.example.com/2")},
	}
	req := &http.Request{Method: http.MethodGet, URL: mustURL(t, "https://a.example.com/3"), Header: http.Header{}}

	err := handler.checkRedirect(req, via)

	require.Error(t, err)
	var maxErr *MaxRedirectsError
	require.ErrorAs(t, err, &maxErr)
	assert.Equal(t, 1, maxErr.MaxRedirects)
}

func TestRedirectLoopDetection(t *testing.T) {
	handler := NewRedirectHandler(permissiveMockLogger(), 5, true)
	via := []*http.Request{
		{Method: http.MethodGet, URL: mustURL(t, "https://a.example.com/loop?token=T1")},
		{Method: http.MethodGet, URL: mustURL(t, "https://a.example.com/next")},
	}
	req := &http.Request{Method: http.MethodGet, URL: mustURL(t, "https://a.example.com/loop?token=T1"), Header: http.Header{}}

	err := handler.checkRedirect(req, via)

	var loopErr *RedirectLoopError
	require.ErrorAs(t, err, &loopErr)
	assert.Equal(t, "redirect loop detected at https://a.example.com/loop?token=REDACTED", loopErr.Error())
}

func TestSecureRequestOnCrossHostRedirect(t *testing.T) {
	mockLogger := permissiveMockLogger()
	handler := NewRedirectHandler(mockLogger, 5, true)
	via := []*http.Request{{Method: http.MethodGet, URL: mustURL(t, "https://api.example.com/cgi-bin/media/get")}}
	req := &http.Request{
		Method: http.MethodGet,
		URL:    mustURL(t, "https://cdn.example.net/file?token=T1&media_id=m"),
		Header: http.Header{"Authorization": {"token"}, "Cookie": {"session"}, "Accept": {"*/*"}},
	}

	require.NoError(t, handler.checkRedirect(req, via))

	assert.Empty(t, req.Header.Get("Authorization"))
	assert.Empty(t, req.Header.Get("Cookie"))
	assert.Equal(t, "*/*", req.Header.Get("Accept"))
	assert.Equal(t, "media_id=m", req.URL.RawQuery)
	mockLogger.AssertCalled(t, "Debug", "Removed sensitive header on cross-host redirect", mock.Anything)
}

func TestSameHostRedirectKeepsCredentials(t *testing.T) {
	handler := NewRedirectHandler(nil, 5, false)
	via := []*http.Request{{Method: http.MethodGet, URL: mustURL(t, "https://api.example.com/a")}}
	req := &http.Request{Method: http.MethodGet, URL: mustURL(t, "https://api.example.com/b?token=T1"), Header: http.Header{"Cookie": {"s"}}}

	require.NoError(t, handler.checkRedirect(req, via))

	assert.Equal(t, "s", req.Header.Get("Cookie"))
	assert.Equal(t, "token=T1", req.URL.RawQuery)
}

func TestSetupRedirectHandler(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/old" {
			http.Redirect(w, r, "/new", http.StatusFound)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	log := logger.NewNopLogger()

	following := &http.Client{}
	require.NoError(t, SetupRedirectHandler(following, true, 3, true, log))
	resp, err := following.Get(server.URL + "/old")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "/new", resp.Request.URL.Path)

	notFollowing := &http.Client{}
	require.NoError(t, SetupRedirectHandler(notFollowing, false, 0, true, log))
	resp, err = notFollowing.Get(server.URL + "/old")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusFound, resp.StatusCode)

	assert.Error(t, SetupRedirectHandler(&http.Client{}, true, 0, true, log))
}
