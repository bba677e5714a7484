// redirecthandler.go
// Package redirecthandler implements the redirect policy installed on the client's http.Client.
package redirecthandler

import (
	"fmt"
	"net/http"
	"net/url"

	"github.com/fossabot/wechat-1/headers/redact"
	"github.com/fossabot/wechat-1/logger"
	"github.com/fossabot/wechat-1/status"
	"go.uber.org/zap"
)

// RedirectHandler contains configurations for handling HTTP redirects.
type RedirectHandler struct {
	Logger            logger.Logger
	MaxRedirects      int      // Maximum allowed redirects to prevent infinite loops.
	SensitiveHeaders  []string // Headers removed on cross-host redirects.
	SensitiveQuery    []string // Query parameters removed on cross-host redirects.
	HideSensitiveData bool
}

// NewRedirectHandler creates a new instance of RedirectHandler.
func NewRedirectHandler(log logger.Logger, maxRedirects int, hideSensitiveData bool) *RedirectHandler {
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &RedirectHandler{
		Logger:            log,
		MaxRedirects:      maxRedirects,
		SensitiveHeaders:  []string{"Authorization", "Cookie", "Accesstoken"},
		SensitiveQuery:    []string{"token", "access_token"},
		HideSensitiveData: hideSensitiveData,
	}
}

// AddSensitiveHeader allows adding configurable sensitive headers.
func (r *RedirectHandler) AddSensitiveHeader(header string) {
	r.SensitiveHeaders = append(r.SensitiveHeaders, header)
}

// WithRedirectHandling applies the redirect handling policy to an http.Client.
func (r *RedirectHandler) WithRedirectHandling(client *http.Client) {
	client.CheckRedirect = r.checkRedirect
}

// checkRedirect is called by net/http before following a redirect. req is the upcoming request,
// via the requests already made, oldest first.
func (r *RedirectHandler) checkRedirect(req *http.Request, via []*http.Request) error {
	if len(via) == 0 {
		return nil
	}
	origin := via[0]

	// Bodies of non-idempotent calls are not replayed; the redirect response is returned as is.
	if origin.Method == http.MethodPost || origin.Method == http.MethodPatch {
		r.Logger.Warn("Redirect attempted on non-idempotent method, not following", zap.String("method", origin.Method))
		return http.ErrUseLastResponse
	}

	if len(via) > r.MaxRedirects {
		r.Logger.Warn("Maximum redirects reached", zap.Int("maxRedirects", r.MaxRedirects))
		return &MaxRedirectsError{MaxRedirects: r.MaxRedirects}
	}

	if hasLoop(req.URL, via) {
		target := redact.RedactURL(r.HideSensitiveData, req.URL)
		r.Logger.Warn("Redirect loop detected", zap.String("url", target))
		return &RedirectLoopError{URL: target}
	}

	previous := via[len(via)-1]
	if req.URL.Host != previous.URL.Host {
		r.secureRequest(req)
	}

	if previous.Response != nil && status.IsPermanentRedirect(previous.Response.StatusCode) {
		r.Logger.Info("Permanent redirect, consider updating the base URI",
			zap.String("originalURL", redact.RedactURL(r.HideSensitiveData, previous.URL)),
			zap.String("redirectURL", redact.RedactURL(r.HideSensitiveData, req.URL)),
		)
	}

	r.Logger.Debug("Redirecting request",
		zap.String("newURL", redact.RedactURL(r.HideSensitiveData, req.URL)),
		zap.Int("redirectCount", len(via)),
	)
	return nil
}

// secureRequest removes credentials from a request leaving the original host.
func (r *RedirectHandler) secureRequest(req *http.Request) {
	for _, header := range r.SensitiveHeaders {
		if req.Header.Get(header) != "" {
			req.Header.Del(header)
			r.Logger.Debug("Removed sensitive header on cross-host redirect", zap.String("header", header))
		}
	}

	query := req.URL.Query()
	removed := false
	for _, key := range r.SensitiveQuery {
		if query.Has(key) {
			query.Del(key)
			removed = true
		}
	}
	if removed {
		req.URL.RawQuery = query.Encode()
	}
}

// RedirectLoopError represents an error when a redirect loop is detected.
type RedirectLoopError struct {
	URL string
}

func (e *RedirectLoopError) Error() string {
	return fmt.Sprintf("redirect loop detected at %s", e.URL)
}

// MaxRedirectsError represents an error when the maximum number of redirects is reached.
type MaxRedirectsError struct {
	MaxRedirects int
}

func (e *MaxRedirectsError) Error() string {
	return fmt.Sprintf("maximum redirects reached: %d", e.MaxRedirects)
}

// hasLoop reports whether target was already requested in this chain.
func hasLoop(target *url.URL, via []*http.Request) bool {
	for _, prev := range via {
		if prev.URL != nil && prev.URL.String() == target.String() {
			return true
		}
	}
	return false
}

// SetupRedirectHandler configures the HTTP client for redirect handling based on the client configuration.
// When redirects are disabled the first redirect response is returned to the caller.
func SetupRedirectHandler(client *http.Client, followRedirects bool, maxRedirects int, hideSensitiveData bool, log logger.Logger) error {
	if !followRedirects {
		client.CheckRedirect = func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		}
		return nil
	}

	if maxRedirects < 1 {
		return log.Error("Invalid maxRedirects value", zap.Int("maxRedirects", maxRedirects))
	}

	NewRedirectHandler(log, maxRedirects, hideSensitiveData).WithRedirectHandling(client)
	log.Info("Redirect handling enabled", zap.Int("MaxRedirects", maxRedirects))
	return nil
}
