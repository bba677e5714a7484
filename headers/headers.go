// headers/headers.go
package headers

import (
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/fossabot/wechat-1/headers/redact"
	"github.com/fossabot/wechat-1/logger"
	"github.com/fossabot/wechat-1/version"
	"go.uber.org/zap"
)

// DefaultAccept is sent on every request; the platform answers in JSON or XML.
const DefaultAccept = "application/json, text/xml;q=0.9, */*;q=0.8"

// HeaderHandler is responsible for managing and setting headers on HTTP requests.
type HeaderHandler struct {
	req               *http.Request
	log               logger.Logger
	hideSensitiveData bool
}

// NewHeaderHandler creates a new instance of HeaderHandler for a given http.Request.
func NewHeaderHandler(req *http.Request, log logger.Logger, hideSensitiveData bool) *HeaderHandler {
	return &HeaderHandler{
		req:               req,
		log:               log,
		hideSensitiveData: hideSensitiveData,
	}
}

// SetContentType sets the Content-Type header for the request.
func (h *HeaderHandler) SetContentType(contentType string) {
	h.req.Header.Set("Content-Type", contentType)
}

// SetAccept sets the Accept header for the request.
func (h *HeaderHandler) SetAccept(acceptHeader string) {
	h.req.Header.Set("Accept", acceptHeader)
}

// SetUserAgent sets the User-Agent header for the request.
func (h *HeaderHandler) SetUserAgent(userAgent string) {
	h.req.Header.Set("User-Agent", userAgent)
}

// SetCustomHeaders sets caller supplied headers. They override the standard ones.
func (h *HeaderHandler) SetCustomHeaders(custom map[string]string) {
	for name, value := range custom {
		h.req.Header.Set(name, value)
	}
}

// SetRequestHeaders sets the standard headers for an outgoing call. contentType is left
// untouched when empty, e.g. for GET requests.
func (h *HeaderHandler) SetRequestHeaders(contentType string, custom map[string]string) {
	h.SetUserAgent(version.GetUserAgentHeader())
	h.SetAccept(DefaultAccept)
	if contentType != "" {
		h.SetContentType(contentType)
	}
	h.SetCustomHeaders(custom)
}

// LogHeaders logs all the current request headers at debug level, redacting sensitive values
// when hideSensitiveData is set.
func (h *HeaderHandler) LogHeaders() {
	if h.log.GetLogLevel() <= logger.LogLevelDebug {
		redacted := redact.RedactHeaders(h.hideSensitiveData, h.req.Header)
		h.log.Debug("HTTP Request Headers", zap.String("Headers", HeadersToString(redacted)))
	}
}

// HeadersToString converts a http.Header to a string for logging,
// with each header on a new line, sorted by name.
func HeadersToString(headers http.Header) string {
	names := make([]string, 0, len(headers))
	for name := range headers {
		names = append(names, name)
	}
	sort.Strings(names)

	headerStrings := make([]string, 0, len(names))
	for _, name := range names {
		headerStrings = append(headerStrings, fmt.Sprintf("%s: %s", name, strings.Join(headers[name], ", ")))
	}
	return strings.Join(headerStrings, "\n")
}
