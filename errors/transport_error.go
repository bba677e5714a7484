// transport_error.go
package errors

import (
	"bytes"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/antchfx/xmlquery"
	"github.com/fossabot/wechat-1/status"
	"golang.org/x/net/html"
)

// TransportError represents a failed HTTP exchange (status >= 400) with the platform API.
type TransportError struct {
	StatusCode  int    `json:"status_code"`
	Method      string `json:"method"`
	URL         string `json:"url"`
	ErrCode     int    `json:"errcode,omitempty"`
	Message     string `json:"message"`
	RawResponse string `json:"raw_response"`
}

// Error returns a string representation of the TransportError.
func (e *TransportError) Error() string {
	if e.ErrCode != 0 {
		return fmt.Sprintf("%s %s: status %d, errcode %d: %s", e.Method, e.URL, e.StatusCode, e.ErrCode, e.Message)
	}
	return fmt.Sprintf("%s %s: status %d: %s", e.Method, e.URL, e.StatusCode, e.Message)
}

// Temporary reports whether the failure is a transient upstream condition, e.g. 502 or 503.
func (e *TransportError) Temporary() bool {
	return status.IsTransientError(e.StatusCode)
}

// Kind classifies the failure as "client_error" (4xx), "server_error" (5xx) or "request_error".
func (e *TransportError) Kind() string {
	switch {
	case status.IsClientError(e.StatusCode):
		return "client_error"
	case status.IsServerError(e.StatusCode):
		return "server_error"
	default:
		return "request_error"
	}
}

// AsTransportError unwraps err into a *TransportError when possible.
func AsTransportError(err error) (*TransportError, bool) {
	var te *TransportError
	if stderrors.As(err, &te) {
		return te, true
	}
	return nil, false
}

// NewTransportError builds a TransportError from a completed exchange. body is the already buffered
// response body; its content type decides how the message is extracted. The URL must already be redacted.
func NewTransportError(resp *http.Response, method, url string, body []byte) *TransportError {
	te := &TransportError{
		Method:      method,
		URL:         url,
		RawResponse: string(body),
	}
	if resp == nil {
		te.Message = TranslateStatusCode(0)
		return te
	}
	te.StatusCode = resp.StatusCode

	mimeType, _ := ParseContentTypeHeader(resp.Header.Get("Content-Type"))
	switch {
	case strings.Contains(mimeType, "json"):
		parseJSONError(body, te)
	case strings.Contains(mimeType, "xml"):
		parseXMLError(body, te)
	case mimeType == "text/html":
		parseHTMLError(body, te)
	case mimeType == "text/plain":
		te.Message = strings.TrimSpace(string(body))
	}

	if te.Message == "" {
		te.Message = TranslateStatusCode(resp.StatusCode)
	}
	return te
}

// parseJSONError understands the platform's {"errcode":..,"errmsg":..} envelope and the
// common {"message":..} / {"error":..} shapes.
func parseJSONError(body []byte, te *TransportError) {
	var payload map[string]any
	decoder := json.NewDecoder(bytes.NewReader(body))
	decoder.UseNumber()
	if err := decoder.Decode(&payload); err != nil {
		return
	}

	if code, ok := payload["errcode"]; ok {
		te.ErrCode = toInt(code)
	}
	for _, key := range []string{"errmsg", "message", "error_description", "error"} {
		if msg, ok := payload[key].(string); ok && msg != "" {
			te.Message = msg
			return
		}
	}
}

// parseXMLError accumulates the text nodes of an XML error document.
func parseXMLError(body []byte, te *TransportError) {
	doc, err := xmlquery.Parse(bytes.NewReader(body))
	if err != nil {
		return
	}

	if node := xmlquery.FindOne(doc, "//errcode"); node != nil {
		te.ErrCode = toInt(strings.TrimSpace(node.InnerText()))
	}
	if node := xmlquery.FindOne(doc, "//errmsg"); node != nil {
		te.Message = strings.TrimSpace(node.InnerText())
		return
	}

	var messages []string
	var traverse func(*xmlquery.Node)
	traverse = func(n *xmlquery.Node) {
		if (n.Type == xmlquery.TextNode || n.Type == xmlquery.CharDataNode) && strings.TrimSpace(n.Data) != "" {
			messages = append(messages, strings.TrimSpace(n.Data))
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			traverse(c)
		}
	}
	traverse(doc)

	te.Message = strings.Join(messages, "; ")
}

// parseHTMLError concatenates the text within <title> and <p> tags, keeping link targets.
func parseHTMLError(body []byte, te *TransportError) {
	doc, err := html.Parse(bytes.NewReader(body))
	if err != nil {
		return
	}

	var messages []string
	var collect func(n *html.Node, b *strings.Builder)
	collect = func(n *html.Node, b *strings.Builder) {
		switch {
		case n.Type == html.TextNode:
			if text := strings.TrimSpace(n.Data); text != "" {
				b.WriteString(text + " ")
			}
		case n.Type == html.ElementNode && n.Data == "a":
			for _, attr := range n.Attr {
				if attr.Key == "href" {
					b.WriteString("[Link: " + attr.Val + "] ")
					break
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			collect(c, b)
		}
	}

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && (n.Data == "p" || n.Data == "title") {
			var b strings.Builder
			collect(n, &b)
			if content := strings.TrimSpace(b.String()); content != "" {
				messages = append(messages, content)
			}
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	te.Message = strings.Join(messages, "; ")
}

func toInt(v any) int {
	switch n := v.(type) {
	case json.Number:
		i, _ := n.Int64()
		return int(i)
	case float64:
		return int(n)
	case string:
		i, _ := strconv.Atoi(strings.TrimSpace(n))
		return i
	}
	return 0
}
