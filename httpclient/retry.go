// httpclient/retry.go
package httpclient

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/fossabot/wechat-1/headers/redact"
	"github.com/fossabot/wechat-1/response"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Error codes the platform returns for an invalid or expired access token.
const (
	ErrCodeInvalidCredential  = 40001
	ErrCodeAccessTokenExpired = 42001
)

// isExpiredTokenCode reports whether errcode signals a token that must be refreshed.
// The sign is ignored: some endpoints report the codes negated.
func isExpiredTokenCode(errcode int) bool {
	if errcode < 0 {
		errcode = -errcode
	}
	return errcode == ErrCodeInvalidCredential || errcode == ErrCodeAccessTokenExpired
}

// newRetryBackOff reads the retry budget and delay from the settings at call time.
// A negative delay is used by its absolute value; a budget of 0 disables retries.
func (c *Client) newRetryBackOff(ctx context.Context) backoff.BackOffContext {
	retries := c.settings.GetInt(keyRetries, DefaultRetries)
	if retries < 0 {
		retries = 0
	}

	delayMS := c.settings.GetInt(keyRetryDelay, int(DefaultRetryDelay/time.Millisecond))
	if delayMS < 0 {
		delayMS = -delayMS
	}

	b := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(time.Duration(delayMS)*time.Millisecond), uint64(retries)),
		ctx,
	)
	b.Reset()
	return b
}

// dispatch issues a call through the middleware chain and re-issues it after refreshing the token
// while the API reports an expired token and the retry budget allows.
func (c *Client) dispatch(ctx context.Context, method, path string, opts RequestOptions) (*response.Response, error) {
	requestID := uuid.NewString()
	log := c.Logger.With(zap.String("request_id", requestID))

	handler := c.handler()
	retryBackOff := c.newRetryBackOff(ctx)

	for attempt := 1; ; attempt++ {
		req, err := c.buildRequest(ctx, method, path, opts, log)
		if err != nil {
			return nil, err
		}

		log.Debug("Executing request",
			zap.String("method", method),
			zap.String("url", redact.RedactURL(c.config.HideSensitiveData, req.URL)),
			zap.Int("attempt", attempt),
		)

		resp, err := handler(req)
		// The transport closes the body; a stage that answers without calling it does not.
		if req.Body != nil {
			req.Body.Close()
		}
		if resp == nil {
			return nil, err
		}

		// HTTP error responses carry the same errcode envelope and are checked before the error is returned.
		errcode, ok := response.ErrCode(resp)
		if !ok || !isExpiredTokenCode(errcode) {
			if err != nil {
				return nil, err
			}
			return resp, nil
		}

		wait := retryBackOff.NextBackOff()
		if wait == backoff.Stop {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			log.Debug("Retry budget exhausted, returning last response", zap.Int("errcode", errcode), zap.Int("attempts", attempt))
			if err != nil {
				return nil, err
			}
			return resp, nil
		}

		if err := c.holder.Refresh(ctx); err != nil {
			return nil, fmt.Errorf("failed to refresh access token after errcode %d: %w", errcode, err)
		}

		log.LogRetryAttempt("retry", method, redact.RedactURL(c.config.HideSensitiveData, req.URL), attempt, "errcode "+strconv.Itoa(errcode), wait)
		c.metrics.IncRetry(errcode)

		if err := sleepContext(ctx, wait); err != nil {
			return nil, err
		}
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// requestMethod normalises an HTTP method name.
func requestMethod(method string) string {
	if method == "" {
		return http.MethodGet
	}
	return method
}
