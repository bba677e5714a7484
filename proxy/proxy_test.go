// proxy_test.go
package proxy

import (
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/fossabot/wechat-1/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitializeProxyNoop(t *testing.T) {
	client := &http.Client{}

	require.NoError(t, InitializeProxy(client, Config{}, logger.NewNopLogger()))
	assert.Nil(t, client.Transport)
}

func TestInitializeProxyWithCredentials(t *testing.T) {
	client := &http.Client{Transport: &http.Transport{TLSHandshakeTimeout: 3 * time.Second}}

	err := InitializeProxy(client, Config{URL: "http://proxy.internal:3128", Username: "u", Password: "p"}, logger.NewNopLogger())
	require.NoError(t, err)

	transport, ok := client.Transport.(*http.Transport)
	require.True(t, ok)
	assert.Equal(t, 3*time.Second, transport.TLSHandshakeTimeout)
	assert.Equal(t, "Basic dTpw", transport.ProxyConnectHeader.Get("Proxy-Authorization"))

	target, _ := url.Parse("https://api.example.com/")
	proxyURL, err := transport.Proxy(&http.Request{URL: target})
	require.NoError(t, err)
	assert.Equal(t, "proxy.internal:3128", proxyURL.Host)
	assert.Equal(t, "u", proxyURL.User.Username())
}

func TestInitializeProxyInvalidURL(t *testing.T) {
	client := &http.Client{}

	assert.Error(t, InitializeProxy(client, Config{URL: "::not a url"}, logger.NewNopLogger()))
	assert.Error(t, InitializeProxy(client, Config{URL: "proxy-without-scheme"}, logger.NewNopLogger()))
	assert.Nil(t, client.Transport)
}
