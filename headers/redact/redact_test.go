// headers/redact/redact_test.go
package redact

import (
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestRedactSensitiveHeaderData tests the RedactSensitiveHeaderData function to ensure it correctly redacts sensitive data.
func TestRedactSensitiveHeaderData(t *testing.T) {
	cases := []struct {
		name              string
		hideSensitiveData bool
		key               string
		value             string
		expected          string
	}{
		{"Sensitive Key With Redaction", true, "AccessToken", "some-sensitive-token", "REDACTED"},
		{"Sensitive Key Without Redaction", false, "AccessToken", "some-sensitive-token", "some-sensitive-token"},
		{"Cookie Header With Redaction", true, "cookie", "slave_sid=abc", "REDACTED"},
		{"Non-Sensitive Key With Redaction", true, "User-Agent", "MyCustomAgent", "MyCustomAgent"},
		{"Non-Sensitive Key Without Redaction", false, "User-Agent", "MyCustomAgent", "MyCustomAgent"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			result := RedactSensitiveHeaderData(tc.hideSensitiveData, tc.key, tc.value)
			assert.Equal(t, tc.expected, result, "Redacted value should match the expected outcome")
		})
	}
}

func TestRedactHeaders(t *testing.T) {
	h := http.Header{}
	h.Set("Authorization", "Bearer abc")
	h.Set("Accept", "application/json")

	out := RedactHeaders(true, h)

	assert.Equal(t, Redacted, out.Get("Authorization"))
	assert.Equal(t, "application/json", out.Get("Accept"))
	assert.Equal(t, "Bearer abc", h.Get("Authorization"), "input header must not be modified")
}

func TestRedactURL(t *testing.T) {
	u, err := url.Parse("https://mp.example.com/cgi-bin/user/info?openid=abc&token=T1")
	require.NoError(t, err)

	assert.Equal(t, "https://mp.example.com/cgi-bin/user/info?openid=abc&token=REDACTED", RedactURL(true, u))
	assert.Equal(t, u.String(), RedactURL(false, u))
	assert.Equal(t, "", RedactURL(true, nil))
}
