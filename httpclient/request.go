// httpclient/request.go
package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/fossabot/wechat-1/auth"
	"github.com/fossabot/wechat-1/errors"
	"github.com/fossabot/wechat-1/headers"
	"github.com/fossabot/wechat-1/headers/redact"
	"github.com/fossabot/wechat-1/logger"
	"github.com/fossabot/wechat-1/response"
	"github.com/fossabot/wechat-1/status"
	"go.uber.org/zap"
)

// buildRequest constructs one attempt of a call. It is invoked again for every retry so the token
// and any streamed body are fresh.
func (c *Client) buildRequest(ctx context.Context, method, path string, opts RequestOptions, log logger.Logger) (*http.Request, error) {
	if opts.bodyKinds() > 1 {
		return nil, fmt.Errorf("only one of Form, JSON and Multipart may be set")
	}

	if v, ok := c.holder.(auth.Validator); ok {
		if err := v.EnsureValid(ctx); err != nil {
			return nil, err
		}
	}

	target, err := c.resolveURL(path)
	if err != nil {
		return nil, err
	}

	query := target.Query()
	for k, v := range opts.Query {
		query.Set(k, v)
	}
	if opts.withToken {
		query.Set("token", c.holder.Token())
	}
	target.RawQuery = query.Encode()

	var (
		body        io.Reader
		contentType string
	)
	switch {
	case opts.JSON != nil:
		var buf bytes.Buffer
		encoder := json.NewEncoder(&buf)
		encoder.SetEscapeHTML(false)
		if err := encoder.Encode(opts.JSON); err != nil {
			return nil, fmt.Errorf("failed to encode JSON body: %w", err)
		}
		body = bytes.NewReader(bytes.TrimRight(buf.Bytes(), "\n"))
		contentType = "application/json"
	case opts.Form != nil:
		form := url.Values{}
		for k, v := range opts.Form {
			form.Set(k, v)
		}
		body = strings.NewReader(form.Encode())
		contentType = "application/x-www-form-urlencoded"
	case opts.Multipart != nil:
		if err := checkMultipartFiles(opts.Multipart); err != nil {
			return nil, err
		}
	}

	if opts.Multipart != nil {
		// The pipe is created last so that no writer goroutine outlives a failed build.
		pr, ct := newMultipartBody(opts.Multipart, log)
		body, contentType = pr, ct
	}

	req, err := http.NewRequestWithContext(ctx, method, target.String(), body)
	if err != nil {
		if rc, ok := body.(io.Closer); ok {
			rc.Close()
		}
		return nil, fmt.Errorf("failed to create HTTP request: %w", err)
	}

	custom := make(map[string]string, len(c.config.CustomHeaders)+len(opts.Headers))
	for k, v := range c.config.CustomHeaders {
		custom[k] = v
	}
	for k, v := range opts.Headers {
		custom[k] = v
	}

	headerHandler := headers.NewHeaderHandler(req, log, c.config.HideSensitiveData)
	headerHandler.SetRequestHeaders(contentType, custom)
	headerHandler.LogHeaders()

	return req, nil
}

// resolveURL resolves path against the base URI. Absolute URLs are used as they are.
func (c *Client) resolveURL(path string) (*url.URL, error) {
	ref, err := url.Parse(path)
	if err != nil {
		return nil, fmt.Errorf("invalid request path %q: %w", path, err)
	}
	if c.baseURL != nil {
		ref = c.baseURL.ResolveReference(ref)
	}
	if !ref.IsAbs() {
		return nil, fmt.Errorf("request path %q is relative and no base URI is configured", path)
	}
	return ref, nil
}

// send is the innermost handler: it performs the exchange and buffers the response.
func (c *Client) send(req *http.Request) (*response.Response, error) {
	log := c.Logger
	redactedURL := redact.RedactURL(c.config.HideSensitiveData, req.URL)
	// Errors leave the client and may be logged or printed by the caller, so the token is always redacted there.
	errorURL := redact.RedactURL(true, req.URL)

	startTime := time.Now()
	httpResp, err := c.http.Do(req)
	duration := time.Since(startTime)
	if err != nil {
		c.metrics.ObserveRequest(req.Method, 0, duration)
		log.LogError("request_error", req.Method, redactedURL, 0, err, "")
		return nil, fmt.Errorf("%s %s failed: %w", req.Method, errorURL, redactErrorURL(err))
	}
	defer httpResp.Body.Close()

	body, err := io.ReadAll(httpResp.Body)
	if err != nil {
		c.metrics.ObserveRequest(req.Method, httpResp.StatusCode, time.Since(startTime))
		return nil, fmt.Errorf("failed to read response body of %s %s: %w", req.Method, errorURL, err)
	}

	c.metrics.ObserveRequest(req.Method, httpResp.StatusCode, duration)

	code := httpResp.StatusCode
	switch {
	case status.IsSuccessStatusCode(code):
		log.LogRequest("request_completed", req.Method, redactedURL, code, duration)
	case status.IsRedirectStatusCode(code):
		log.Warn("Redirect response returned without following it",
			zap.String("url", redactedURL),
			zap.Int("status_code", code),
			zap.String("location", httpResp.Header.Get("Location")),
		)
	case c.config.IgnoreHTTPErrors || !status.IsErrorStatusCode(code):
		log.LogRequest("request_completed", req.Method, redactedURL, code, duration)
	}

	resp := response.NewResponse(httpResp, body)

	if !c.config.IgnoreHTTPErrors && status.IsErrorStatusCode(code) {
		transportErr := errors.NewTransportError(httpResp, req.Method, errorURL, body)
		log.LogError(transportErr.Kind(), req.Method, redactedURL, code, transportErr, string(body))
		return resp, transportErr
	}

	return resp, nil
}

// redactErrorURL strips the token from the URL that net/http embeds in a *url.Error.
func redactErrorURL(err error) error {
	var urlErr *url.Error
	if stderrors.As(err, &urlErr) {
		if u, perr := url.Parse(urlErr.URL); perr == nil {
			redacted := *urlErr
			redacted.URL = redact.RedactURL(true, u)
			return &redacted
		}
	}
	return err
}
