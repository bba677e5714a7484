// result_test.go
package response

import (
	"encoding/json"
	"testing"

	"github.com/fossabot/wechat-1/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sendBody = `{"errcode":0,"errmsg":"ok","msgid":1}`

func TestShapeVariants(t *testing.T) {
	resp := newTestResponse("application/json", sendBody)

	tests := []struct {
		typ   Type
		check func(t *testing.T, r *Result)
	}{
		{TypeRaw, func(t *testing.T, r *Result) {
			assert.Same(t, resp, r.Value())
		}},
		{TypeCollection, func(t *testing.T, r *Result) {
			require.NotNil(t, r.Collection())
			assert.Equal(t, []string{"errcode", "errmsg", "msgid"}, r.Collection().Keys())
		}},
		{TypeArray, func(t *testing.T, r *Result) {
			assert.Equal(t, json.Number("1"), r.Array()["msgid"])
		}},
		{TypeObject, func(t *testing.T, r *Result) {
			obj, ok := r.Object().(map[string]any)
			require.True(t, ok)
			assert.Equal(t, "ok", obj["errmsg"])
		}},
		{TypeJSON, func(t *testing.T, r *Result) {
			assert.Equal(t, sendBody, r.JSON())
			assert.Equal(t, sendBody, r.Value())
		}},
	}

	for _, tt := range tests {
		t.Run(string(tt.typ), func(t *testing.T) {
			r, err := Shape(resp, tt.typ)
			require.NoError(t, err)
			assert.Equal(t, tt.typ, r.Type())
			assert.Same(t, resp, r.Raw())
			tt.check(t, r)
		})
	}
}

func TestShapeRejectsUnknownType(t *testing.T) {
	_, err := Shape(newTestResponse("application/json", sendBody), Type("yaml"))

	require.Error(t, err)
	assert.True(t, errors.IsInvalidConfig(err))
}

func TestErrCodeAndMsg(t *testing.T) {
	r, err := Shape(newTestResponse("application/json", `{"errcode":-42001,"errmsg":"access_token expired"}`), TypeJSON)
	require.NoError(t, err)

	assert.Equal(t, -42001, r.ErrCode())
	assert.Equal(t, "access_token expired", r.ErrMsg())
}

func TestErrCodeForms(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		wantCode int
		wantOK   bool
	}{
		{"number", `{"errcode":40001}`, 40001, true},
		{"string", `{"errcode":"42001"}`, 42001, true},
		{"xml", `<xml><errcode>40001</errcode></xml>`, 40001, true},
		{"absent", `{"msgid":1}`, 0, false},
		{"fraction", `{"errcode":1.5}`, 0, false},
		{"not json", `oops`, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, ok := ErrCode(newTestResponse("", tt.body))
			assert.Equal(t, tt.wantCode, code)
			assert.Equal(t, tt.wantOK, ok)
		})
	}

	_, ok := ErrCode(nil)
	assert.False(t, ok)
}
