// auth/auth.go

// Package auth provides the access token holders the client authenticates with.
package auth

import (
	"context"
	"errors"
	"net/http"
)

// ErrRefreshUnsupported is returned by holders that cannot obtain a new token.
var ErrRefreshUnsupported = errors.New("auth: token holder does not support refresh")

// TokenHolder supplies the access token attached to outgoing requests. Refresh is called by the
// client when the API reports the token as expired; the next call to Token must return the new value.
type TokenHolder interface {
	Token() string
	Refresh(ctx context.Context) error
}

// RequestApplier is implemented by holders that attach more than the token query parameter,
// e.g. session cookies.
type RequestApplier interface {
	ApplyToRequest(req *http.Request)
}

// Validator is implemented by holders that can tell a stale token before it is used.
// The client calls EnsureValid before building each request.
type Validator interface {
	EnsureValid(ctx context.Context) error
}

// StaticToken is a fixed token. It cannot be refreshed.
type StaticToken struct {
	value string
}

// NewStaticToken wraps a fixed token value.
func NewStaticToken(value string) *StaticToken {
	return &StaticToken{value: value}
}

// Token returns the fixed value.
func (s *StaticToken) Token() string {
	return s.value
}

// Refresh always fails with ErrRefreshUnsupported.
func (s *StaticToken) Refresh(context.Context) error {
	return ErrRefreshUnsupported
}
