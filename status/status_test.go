// status_test.go
package status

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusClassification(t *testing.T) {
	tests := []struct {
		code                                            int
		success, errorCode, redirect, permanent, client bool
		server                                          bool
	}{
		{http.StatusOK, true, false, false, false, false, false},
		{http.StatusNoContent, true, false, false, false, false, false},
		{http.StatusMovedPermanently, false, false, true, true, false, false},
		{http.StatusFound, false, false, true, false, false, false},
		{http.StatusPermanentRedirect, false, false, true, true, false, false},
		{http.StatusNotFound, false, true, false, false, true, false},
		{http.StatusBadGateway, false, true, false, false, false, true},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.code), func(t *testing.T) {
			assert.Equal(t, tt.success, IsSuccessStatusCode(tt.code))
			assert.Equal(t, tt.errorCode, IsErrorStatusCode(tt.code))
			assert.Equal(t, tt.redirect, IsRedirectStatusCode(tt.code))
			assert.Equal(t, tt.permanent, IsPermanentRedirect(tt.code))
			assert.Equal(t, tt.client, IsClientError(tt.code))
			assert.Equal(t, tt.server, IsServerError(tt.code))
		})
	}
}

func TestIsTransientError(t *testing.T) {
	assert.True(t, IsTransientError(http.StatusServiceUnavailable))
	assert.True(t, IsTransientError(http.StatusGatewayTimeout))
	assert.False(t, IsTransientError(http.StatusBadRequest))
	assert.False(t, IsTransientError(0))
}
