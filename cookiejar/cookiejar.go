// cookiejar/cookiejar.go

// Package cookiejar sets up cookie handling for the client's http.Client: an optional jar,
// cookies preloaded for the API host, and redaction of session cookies in logs.
package cookiejar

import (
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"

	"github.com/fossabot/wechat-1/headers/redact"
	"github.com/fossabot/wechat-1/logger"
	"go.uber.org/zap"
)

// sensitiveCookieNames are session cookies issued by the platform's web endpoints.
var sensitiveCookieNames = map[string]bool{
	"sessionid":    true,
	"slave_sid":    true,
	"data_ticket":  true,
	"access_token": true,
}

// SetupCookieJar initializes the HTTP client with a cookie jar if enabled in the configuration.
func SetupCookieJar(client *http.Client, enableCookieJar bool, log logger.Logger) error {
	if enableCookieJar {
		jar, err := cookiejar.New(nil)
		if err != nil {
			log.Error("Failed to create cookie jar", zap.Error(err))
			return fmt.Errorf("setupCookieJar failed: %w", err)
		}
		client.Jar = jar
	}
	return nil
}

// LoadCustomCookies stores cookies for baseURI in the client's jar, creating the jar if needed.
func LoadCustomCookies(client *http.Client, baseURI string, cookies []*http.Cookie, hideSensitiveData bool, log logger.Logger) error {
	if len(cookies) == 0 {
		return nil
	}

	cookieURL, err := url.Parse(baseURI)
	if err != nil {
		return fmt.Errorf("failed to parse cookie URL %q: %w", baseURI, err)
	}

	if client.Jar == nil {
		if err := SetupCookieJar(client, true, log); err != nil {
			return err
		}
	}
	client.Jar.SetCookies(cookieURL, cookies)

	if hideSensitiveData {
		log.Debug("Custom cookies set", zap.Int("count", len(cookies)), zap.String("url", cookieURL.Host))
	} else {
		log.Debug("Custom cookies set", zap.String("cookies", CookiesToString(client.Jar.Cookies(cookieURL))), zap.String("url", cookieURL.Host))
	}
	return nil
}

// RedactSensitiveCookies returns copies of cookies with sensitive values replaced.
func RedactSensitiveCookies(cookies []*http.Cookie) []*http.Cookie {
	redacted := make([]*http.Cookie, 0, len(cookies))
	for _, cookie := range cookies {
		c := *cookie
		if sensitiveCookieNames[strings.ToLower(c.Name)] {
			c.Value = redact.Redacted
		}
		redacted = append(redacted, &c)
	}
	return redacted
}

// CookiesToString renders cookies as a Cookie header value.
func CookiesToString(cookies []*http.Cookie) string {
	parts := make([]string, 0, len(cookies))
	for _, c := range cookies {
		parts = append(parts, c.Name+"="+c.Value)
	}
	return strings.Join(parts, "; ")
}

// CookiesFromHeader converts the Set-Cookie headers of a response into cookies.
func CookiesFromHeader(header http.Header) []*http.Cookie {
	return (&http.Response{Header: header}).Cookies()
}
