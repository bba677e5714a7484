package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fossabot/wechat-1/response"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(append(args, "--log-level", "none"))
	err := cmd.Execute()
	return out.String(), err
}

func TestGetCommandPrintsArray(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/user/info", r.URL.Path)
		assert.Equal(t, "T1", r.URL.Query().Get("token"))
		assert.Equal(t, "abc", r.URL.Query().Get("openid"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"openid":"abc","subscribe":1}`))
	}))
	defer server.Close()

	out, err := runCLI(t, "--base-uri", server.URL, "--token", "T1", "get", "/user/info", "openid=abc")
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
	assert.Equal(t, "abc", decoded["openid"])
}

func TestGetCommandWarnsOnErrCode(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"errcode":40013,"errmsg":"invalid appid"}`))
	}))
	defer server.Close()

	out, err := runCLI(t, "--base-uri", server.URL, "--token", "T1", "--response-type", "json", "get", "/x")
	require.NoError(t, err)
	assert.Contains(t, out, `{"errcode":40013,"errmsg":"invalid appid"}`)
	assert.Contains(t, out, "[WARNING] errcode 40013: invalid appid")
}

func TestInvalidResponseTypeFlag(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	}))
	defer server.Close()

	out, err := runCLI(t, "--base-uri", server.URL, "--token", "T1", "--response-type", "yaml", "get", "/x")
	require.Error(t, err)
	assert.Contains(t, out, "[ERROR]")
	assert.Equal(t, int32(0), hits.Load())
}

func TestPostJSONCommandRejectsInvalidBody(t *testing.T) {
	_, err := runCLI(t, "--token", "T1", "post-json", "/x", "{not json")
	require.Error(t, err)
}

func TestMissingCredentials(t *testing.T) {
	t.Setenv("WECHAT_TOKEN", "")
	_, err := runCLI(t, "get", "/x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--token")
}

func TestAppCredentialsFetchToken(t *testing.T) {
	var tokenCalls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/cgi-bin/token":
			tokenCalls.Add(1)
			assert.Equal(t, "wx1", r.URL.Query().Get("appid"))
			assert.Equal(t, "s3", r.URL.Query().Get("secret"))
			_, _ = w.Write([]byte(`{"access_token":"FETCHED","expires_in":7200}`))
		default:
			assert.Equal(t, "FETCHED", r.URL.Query().Get("token"))
			_, _ = w.Write([]byte(`{"errcode":0}`))
		}
	}))
	defer server.Close()

	_, err := runCLI(t, "--base-uri", server.URL+"/", "--appid", "wx1", "--secret", "s3", "get", "menu/get")
	require.NoError(t, err)
	assert.Equal(t, int32(1), tokenCalls.Load())
}

func TestUploadCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "voice.amr")
	require.NoError(t, os.WriteFile(path, []byte("amr"), 0o600))

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !assert.NoError(t, r.ParseMultipartForm(1<<20)) {
			return
		}
		assert.Equal(t, "voice", r.URL.Query().Get("type"))
		assert.Equal(t, "hello", r.FormValue("title"))
		if _, header, err := r.FormFile("media"); assert.NoError(t, err) {
			assert.Equal(t, "voice.amr", header.Filename)
		}
		_, _ = w.Write([]byte(`{"media_id":"M1"}`))
	}))
	defer server.Close()

	out, err := runCLI(t, "--base-uri", server.URL, "--token", "T1", "upload", "/media/upload",
		"--file", "media="+path, "--field", "title=hello", "--query", "type=voice")
	require.NoError(t, err)
	assert.Contains(t, out, `"media_id": "M1"`)
}

func TestRawCommandWithSettingsFile(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		w.Header().Set("Content-Type", "text/plain")
		_, _ = w.Write([]byte("gone"))
	}))
	defer server.Close()

	settingsPath := filepath.Join(t.TempDir(), "settings.json")
	settings := `{"base_uri": "` + server.URL + `", "token": "T1", "response_type": "yaml"}`
	require.NoError(t, os.WriteFile(settingsPath, []byte(settings), 0o600))

	out, err := runCLI(t, "--config", settingsPath, "raw", "delete", "/x", "--status")
	require.NoError(t, err)
	assert.Contains(t, out, "200 OK")
	assert.Contains(t, out, "gone\n")
}

func TestParseTokenResponse(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	cred, err := parseTokenResponse(&response.Response{Body: []byte(`{"access_token":"A","expires_in":7200}`)}, now)
	require.NoError(t, err)
	assert.Equal(t, "A", cred.Token)
	assert.Equal(t, now.Add(2*time.Hour), cred.ExpiresAt)

	_, err = parseTokenResponse(&response.Response{Body: []byte(`{"errcode":40125,"errmsg":"invalid appsecret"}`)}, now)
	assert.ErrorContains(t, err, "40125")
}

func TestParsePairs(t *testing.T) {
	pairs, err := parsePairs([]string{"a=1", "b=x=y", "c="})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"a": "1", "b": "x=y", "c": ""}, pairs)

	_, err = parsePairs([]string{"novalue"})
	assert.Error(t, err)
}

func TestTemporaryFailureHint(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"errcode":-1,"errmsg":"system busy"}`))
	}))
	defer server.Close()

	out, err := runCLI(t, "--base-uri", server.URL, "--token", "T1", "get", "/x")
	require.Error(t, err)
	assert.Contains(t, out, "[ERROR]")
	assert.Contains(t, out, "system busy")
	assert.Contains(t, out, "[WARNING] the platform reported a temporary failure (503)")
	assert.NotContains(t, out, "T1")
}

func TestIgnoreHTTPErrorsFlag(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"errcode":40013,"errmsg":"invalid appid"}`))
	}))
	defer server.Close()

	out, err := runCLI(t, "--base-uri", server.URL, "--token", "T1", "--ignore-http-errors", "get", "/x")
	require.NoError(t, err)
	assert.Contains(t, out, "[WARNING] errcode 40013: invalid appid")
}
