// message_formatter.go
package logger

import (
	"fmt"
	"net/http"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/fossabot/wechat-1/headers/redact"
)

// Common request/response log templates. Placeholders are written as {name}.
const (
	// TemplateCLF renders an Apache Common Log Format line.
	TemplateCLF = `{hostname} {req_header_User-Agent} - [{date_common_log}] "{method} {target} HTTP/{version}" {code} {res_header_Content-Length}`
	// TemplateDebug renders the full request and response.
	TemplateDebug = ">>>>>>>>\n{request}\n<<<<<<<<\n{response}\n--------\n{error}"
	// TemplateShort renders a one line summary.
	TemplateShort = `[{ts}] "{method} {target} HTTP/{version}" {code}`
)

var placeholderPattern = regexp.MustCompile(`\{\s*([A-Za-z_\-\.0-9]+)\s*\}`)

// Exchange is a single request/response pair handed to the formatter.
// Bodies are passed separately because the message bodies are streams.
type Exchange struct {
	Request      *http.Request
	RequestBody  []byte
	Response     *http.Response
	ResponseBody []byte
	Err          error
	Time         time.Time
}

// MessageFormatter renders an Exchange through a placeholder template.
//
// Supported placeholders: {request} {response} {ts} {date_iso_8601} {date_common_log}
// {host} {hostname} {method} {uri} {url} {target} {version} {req_version} {res_version}
// {code} {phrase} {error} {req_headers} {res_headers} {req_body} {res_body}
// {req_header_NAME} {res_header_NAME}. Unknown placeholders render as empty strings.
type MessageFormatter struct {
	template          string
	hideSensitiveData bool
}

// NewMessageFormatter builds a formatter; an empty template falls back to TemplateDebug.
func NewMessageFormatter(template string, hideSensitiveData bool) *MessageFormatter {
	if strings.TrimSpace(template) == "" {
		template = TemplateDebug
	}
	return &MessageFormatter{template: template, hideSensitiveData: hideSensitiveData}
}

// Format renders the exchange.
func (f *MessageFormatter) Format(ex Exchange) string {
	if ex.Time.IsZero() {
		ex.Time = time.Now()
	}
	return placeholderPattern.ReplaceAllStringFunc(f.template, func(match string) string {
		name := placeholderPattern.FindStringSubmatch(match)[1]
		return f.render(name, ex)
	})
}

func (f *MessageFormatter) render(name string, ex Exchange) string {
	req, resp := ex.Request, ex.Response

	switch name {
	case "request":
		return f.requestMessage(ex)
	case "response":
		return f.responseMessage(ex)
	case "ts", "date_iso_8601":
		return ex.Time.UTC().Format(time.RFC3339)
	case "date_common_log":
		return ex.Time.Format("02/Jan/2006:15:04:05 -0700")
	case "method":
		if req != nil {
			return req.Method
		}
	case "uri", "url":
		if req != nil {
			return redact.RedactURL(f.hideSensitiveData, req.URL)
		}
	case "target":
		if req != nil && req.URL != nil {
			target := *req.URL
			target.Scheme, target.Host = "", ""
			return redact.RedactURL(f.hideSensitiveData, &target)
		}
	case "host":
		if req != nil {
			return req.Host
		}
	case "hostname":
		if req != nil && req.URL != nil {
			return req.URL.Hostname()
		}
	case "version", "req_version":
		if req != nil {
			return protoVersion(req.ProtoMajor, req.ProtoMinor)
		}
	case "res_version":
		if resp != nil {
			return protoVersion(resp.ProtoMajor, resp.ProtoMinor)
		}
	case "code":
		if resp != nil {
			return fmt.Sprintf("%d", resp.StatusCode)
		}
		return "NULL"
	case "phrase":
		if resp != nil {
			return http.StatusText(resp.StatusCode)
		}
		return "NULL"
	case "error":
		if ex.Err != nil {
			return ex.Err.Error()
		}
		return "NULL"
	case "req_headers":
		if req != nil {
			return f.headerLines(req.Header)
		}
	case "res_headers":
		if resp != nil {
			return f.headerLines(resp.Header)
		}
		return "NULL"
	case "req_body":
		return string(ex.RequestBody)
	case "res_body":
		if resp == nil {
			return "NULL"
		}
		return string(ex.ResponseBody)
	default:
		if strings.HasPrefix(name, "req_header_") && req != nil {
			key := strings.TrimPrefix(name, "req_header_")
			return redact.RedactSensitiveHeaderData(f.hideSensitiveData, key, req.Header.Get(key))
		}
		if strings.HasPrefix(name, "res_header_") && resp != nil {
			key := strings.TrimPrefix(name, "res_header_")
			return redact.RedactSensitiveHeaderData(f.hideSensitiveData, key, resp.Header.Get(key))
		}
	}
	return ""
}

func (f *MessageFormatter) requestMessage(ex Exchange) string {
	req := ex.Request
	if req == nil {
		return ""
	}
	target := f.render("target", ex)
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s HTTP/%s\r\n", req.Method, target, protoVersion(req.ProtoMajor, req.ProtoMinor))
	if req.Host != "" {
		fmt.Fprintf(&b, "Host: %s\r\n", req.Host)
	} else if req.URL != nil {
		fmt.Fprintf(&b, "Host: %s\r\n", req.URL.Host)
	}
	b.WriteString(f.headerLines(req.Header))
	b.WriteString("\r\n")
	b.Write(ex.RequestBody)
	return b.String()
}

func (f *MessageFormatter) responseMessage(ex Exchange) string {
	resp := ex.Response
	if resp == nil {
		return "NULL"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "HTTP/%s %d %s\r\n", protoVersion(resp.ProtoMajor, resp.ProtoMinor), resp.StatusCode, http.StatusText(resp.StatusCode))
	b.WriteString(f.headerLines(resp.Header))
	b.WriteString("\r\n")
	b.Write(ex.ResponseBody)
	return b.String()
}

// headerLines renders headers one per line in sorted order.
func (f *MessageFormatter) headerLines(h http.Header) string {
	names := make([]string, 0, len(h))
	for name := range h {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	for _, name := range names {
		values := make([]string, 0, len(h[name]))
		for _, v := range h[name] {
			values = append(values, redact.RedactSensitiveHeaderData(f.hideSensitiveData, name, v))
		}
		fmt.Fprintf(&b, "%s: %s\r\n", name, strings.Join(values, ", "))
	}
	return b.String()
}

func protoVersion(major, minor int) string {
	if major == 0 {
		return "1.1"
	}
	return fmt.Sprintf("%d.%d", major, minor)
}
