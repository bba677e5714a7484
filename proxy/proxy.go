// proxy.go

// Package proxy configures an outbound HTTP proxy on the client's transport.
package proxy

import (
	"encoding/base64"
	"fmt"
	"net/http"
	"net/url"

	"github.com/fossabot/wechat-1/logger"
	"go.uber.org/zap"
)

// Config holds the proxy settings.
type Config struct {
	URL      string
	Username string
	Password string
}

// InitializeProxy installs the proxy described by cfg on httpClient's transport. An existing
// *http.Transport is cloned so other transport settings survive. An empty URL is a no-op.
func InitializeProxy(httpClient *http.Client, cfg Config, log logger.Logger) error {
	if cfg.URL == "" {
		return nil
	}

	parsedProxyURL, err := url.Parse(cfg.URL)
	if err != nil {
		log.Error("Failed to parse proxy URL", zap.Error(err))
		return fmt.Errorf("invalid proxy URL: %w", err)
	}
	if parsedProxyURL.Scheme == "" || parsedProxyURL.Host == "" {
		return log.Error("Proxy URL must be absolute", zap.String("ProxyURL", cfg.URL))
	}

	transport := baseTransport(httpClient)
	if cfg.Username != "" {
		parsedProxyURL.User = url.UserPassword(cfg.Username, cfg.Password)
		credentials := base64.StdEncoding.EncodeToString([]byte(cfg.Username + ":" + cfg.Password))
		transport.ProxyConnectHeader = http.Header{
			"Proxy-Authorization": []string{"Basic " + credentials},
		}
	}
	transport.Proxy = http.ProxyURL(parsedProxyURL)
	httpClient.Transport = transport

	log.Info("Proxy configured", zap.String("ProxyURL", parsedProxyURL.Redacted()))
	return nil
}

func baseTransport(httpClient *http.Client) *http.Transport {
	if t, ok := httpClient.Transport.(*http.Transport); ok && t != nil {
		return t.Clone()
	}
	return http.DefaultTransport.(*http.Transport).Clone()
}
