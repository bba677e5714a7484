// httpclient/methods.go
package httpclient

import (
	"context"
	"net/http"
	"strings"

	"github.com/fossabot/wechat-1/response"
)

// Get issues a GET request. The holder's current token is added as the "token" query parameter and
// takes precedence over a caller supplied "token" key; every other query key is kept.
func (c *Client) Get(ctx context.Context, path string, query map[string]string) (*response.Result, error) {
	return c.Request(ctx, path, http.MethodGet, RequestOptions{Query: query, withToken: true})
}

// Post issues a POST request with an application/x-www-form-urlencoded body.
func (c *Client) Post(ctx context.Context, path string, form map[string]string) (*response.Result, error) {
	if form == nil {
		form = map[string]string{}
	}
	return c.Request(ctx, path, http.MethodPost, RequestOptions{Form: form})
}

// PostJSON issues a POST request with query parameters and a JSON body.
func (c *Client) PostJSON(ctx context.Context, path string, body any, query map[string]string) (*response.Result, error) {
	if body == nil {
		body = map[string]any{}
	}
	return c.Request(ctx, path, http.MethodPost, RequestOptions{Query: query, JSON: body})
}

// Upload issues a multipart POST request. files maps field names to file paths streamed from disk;
// form maps field names to literal values. File parts are written first, then form parts, each group
// in ascending key order.
func (c *Client) Upload(ctx context.Context, path string, files, form, query map[string]string) (*response.Result, error) {
	return c.Request(ctx, path, http.MethodPost, RequestOptions{Query: query, Multipart: uploadParts(files, form)})
}

// Request issues a call and converts the response into the shape selected by the "response_type" setting.
// A missing or unknown response type fails before any network activity.
func (c *Client) Request(ctx context.Context, path, method string, opts RequestOptions) (*response.Result, error) {
	typ, err := c.responseType()
	if err != nil {
		return nil, err
	}

	resp, err := c.dispatch(ctx, requestMethod(strings.ToUpper(method)), path, opts)
	if err != nil {
		return nil, err
	}

	return response.Shape(resp, typ)
}

// RequestRaw issues a call and returns the unshaped response. The "response_type" setting is not consulted.
func (c *Client) RequestRaw(ctx context.Context, path, method string, opts RequestOptions) (*response.Response, error) {
	return c.dispatch(ctx, requestMethod(strings.ToUpper(method)), path, opts)
}

func (c *Client) responseType() (response.Type, error) {
	value, _ := c.settings.Get(keyResponseType)
	return response.ParseType(value)
}
