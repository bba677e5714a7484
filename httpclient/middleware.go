// httpclient/middleware.go
package httpclient

import (
	"io"
	"net/http"
	"time"

	"github.com/fossabot/wechat-1/auth"
	"github.com/fossabot/wechat-1/errors"
	"github.com/fossabot/wechat-1/logger"
	"github.com/fossabot/wechat-1/response"
)

// Handler performs one HTTP exchange. On an HTTP error status it returns both the buffered
// response and a *errors.TransportError.
type Handler func(req *http.Request) (*response.Response, error)

// Middleware wraps a Handler. Middlewares run once per attempt, so a retried call passes through them again.
type Middleware func(next Handler) Handler

// Names of the built-in middleware stages.
const (
	MiddlewareAuth = "auth"
	MiddlewareLog  = "log"
)

type namedMiddleware struct {
	name string
	mw   Middleware
}

func isBuiltinMiddleware(name string) bool {
	return name == MiddlewareAuth || name == MiddlewareLog
}

func (c *Client) builtinMiddleware(name string) (Middleware, error) {
	switch name {
	case MiddlewareAuth:
		return c.authMiddleware(), nil
	case MiddlewareLog:
		return c.logMiddleware(), nil
	}
	return nil, errors.NewInvalidConfigError("Middlewares", name, "unknown middleware")
}

// PushMiddleware appends a stage to the chain; it runs inside the stages added before it.
func (c *Client) PushMiddleware(name string, mw Middleware) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.middlewares = append(c.middlewares, namedMiddleware{name: name, mw: mw})
}

// Middlewares returns the names of the enabled stages, outermost first.
func (c *Client) Middlewares() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	names := make([]string, 0, len(c.middlewares))
	for _, m := range c.middlewares {
		names = append(names, m.name)
	}
	return names
}

// handler composes the enabled stages around the transport.
func (c *Client) handler() Handler {
	c.mu.RLock()
	defer c.mu.RUnlock()

	h := Handler(c.send)
	for i := len(c.middlewares) - 1; i >= 0; i-- {
		h = c.middlewares[i].mw(h)
	}
	return h
}

// authMiddleware lets the token holder decorate each outgoing request, e.g. with session cookies.
func (c *Client) authMiddleware() Middleware {
	return func(next Handler) Handler {
		return func(req *http.Request) (*response.Response, error) {
			if applier, ok := c.holder.(auth.RequestApplier); ok {
				applier.ApplyToRequest(req)
			}
			return next(req)
		}
	}
}

// logMiddleware writes each exchange through the "http.log_template" formatter at debug level.
func (c *Client) logMiddleware() Middleware {
	return func(next Handler) Handler {
		return func(req *http.Request) (*response.Response, error) {
			var reqBody []byte
			if req.GetBody != nil {
				if rc, err := req.GetBody(); err == nil {
					reqBody, _ = io.ReadAll(rc)
					rc.Close()
				}
			}

			resp, err := next(req)

			ex := logger.Exchange{
				Request:     req,
				RequestBody: reqBody,
				Err:         err,
				Time:        time.Now(),
			}
			if resp != nil {
				major, minor, _ := http.ParseHTTPVersion(resp.Proto)
				ex.Response = &http.Response{
					StatusCode: resp.StatusCode,
					Status:     resp.Status,
					Header:     resp.Header,
					ProtoMajor: major,
					ProtoMinor: minor,
				}
				ex.ResponseBody = resp.Body
			}

			template := c.settings.GetString(keyLogTemplate, logger.TemplateDebug)
			c.Logger.Debug(logger.NewMessageFormatter(template, c.config.HideSensitiveData).Format(ex))
			return resp, err
		}
	}
}
