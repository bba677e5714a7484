// auth/refreshing_token.go
package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/fossabot/wechat-1/logger"
	"github.com/fossabot/wechat-1/metrics"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// Credential is the result of a token fetch.
type Credential struct {
	Token     string
	Cookies   []*http.Cookie
	ExpiresAt time.Time // zero means no known expiry
}

// Fetcher obtains a fresh credential, typically by calling the platform's token endpoint.
type Fetcher func(ctx context.Context) (Credential, error)

// RefreshingToken holds a credential obtained from a Fetcher. Concurrent refreshes share a single fetch.
type RefreshingToken struct {
	fetch        Fetcher
	log          logger.Logger
	metrics      *metrics.Metrics
	bufferPeriod time.Duration
	now          func() time.Time

	mu    sync.RWMutex
	cred  Credential
	group singleflight.Group
}

// Option configures a RefreshingToken.
type Option func(*RefreshingToken)

// WithLogger sets the logger used for refresh events.
func WithLogger(log logger.Logger) Option {
	return func(t *RefreshingToken) { t.log = log }
}

// WithMetrics records refresh outcomes.
func WithMetrics(m *metrics.Metrics) Option {
	return func(t *RefreshingToken) { t.metrics = m }
}

// WithRefreshBuffer makes EnsureValid refresh tokens that expire within d.
func WithRefreshBuffer(d time.Duration) Option {
	return func(t *RefreshingToken) { t.bufferPeriod = d }
}

// WithCredential seeds the holder, e.g. with a token restored from a cache.
func WithCredential(c Credential) Option {
	return func(t *RefreshingToken) { t.cred = c }
}

// NewRefreshingToken creates a holder backed by fetch. No fetch happens until Refresh or EnsureValid.
func NewRefreshingToken(fetch Fetcher, opts ...Option) *RefreshingToken {
	t := &RefreshingToken{
		fetch: fetch,
		log:   logger.NewNopLogger(),
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Token returns the current token value.
func (t *RefreshingToken) Token() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.cred.Token
}

// Credential returns a copy of the current credential.
func (t *RefreshingToken) Credential() Credential {
	t.mu.RLock()
	defer t.mu.RUnlock()
	c := t.cred
	c.Cookies = append([]*http.Cookie(nil), t.cred.Cookies...)
	return c
}

// Refresh fetches a new credential. Callers arriving while a fetch is in flight wait for that fetch
// instead of starting another. The fetch itself is not cancelled when a waiting caller gives up.
func (t *RefreshingToken) Refresh(ctx context.Context) error {
	if t.fetch == nil {
		return ErrRefreshUnsupported
	}

	ch := t.group.DoChan("refresh", func() (any, error) {
		return nil, t.doRefresh(context.WithoutCancel(ctx))
	})

	select {
	case res := <-ch:
		return res.Err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (t *RefreshingToken) doRefresh(ctx context.Context) error {
	start := t.now()
	cred, err := t.fetch(ctx)
	if err == nil && cred.Token == "" {
		err = errors.New("token endpoint returned an empty token")
	}
	duration := t.now().Sub(start)

	t.log.LogTokenRefresh("token_refresh", duration, err)
	if t.metrics != nil {
		t.metrics.ObserveRefresh(err)
	}
	if err != nil {
		return fmt.Errorf("failed to refresh access token: %w", err)
	}

	t.mu.Lock()
	t.cred = cred
	t.mu.Unlock()

	if !cred.ExpiresAt.IsZero() {
		t.log.Debug("Access token expiry", zap.Time("expires_at", cred.ExpiresAt))
	}
	return nil
}

// EnsureValid refreshes the token when it is missing or expires within the refresh buffer.
func (t *RefreshingToken) EnsureValid(ctx context.Context) error {
	if t.isTokenValid() {
		return nil
	}
	return t.Refresh(ctx)
}

func (t *RefreshingToken) isTokenValid() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if t.cred.Token == "" {
		return false
	}
	if t.cred.ExpiresAt.IsZero() {
		return true
	}
	return t.cred.ExpiresAt.Sub(t.now()) > t.bufferPeriod
}

// ApplyToRequest adds the credential's cookies to req, leaving cookies the request already carries.
func (t *RefreshingToken) ApplyToRequest(req *http.Request) {
	t.mu.RLock()
	cookies := t.cred.Cookies
	t.mu.RUnlock()

	for _, c := range cookies {
		if _, err := req.Cookie(c.Name); err == nil {
			continue
		}
		req.AddCookie(&http.Cookie{Name: c.Name, Value: c.Value})
	}
}
