package httpx

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "github.com/quillbooks/quillbooks/testing"
)

func TestDecodeJSON(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"memo":"rent"}`))
	var target struct {
		Memo string `json:"memo"`
	}
	require.NoError(t, DecodeJSON(r, &target))
	assert.Equal(t, "rent", target.Memo)
}

func TestDecodeJSONEmptyBody(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/", nil)
	var target struct {
		Memo string `json:"memo"`
	}
	err := DecodeJSON(r, &target)
	assert.ErrorIs(t, err, ErrEmptyBody)
}

func TestDecodeJSONMalformed(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"memo":`))
	var target struct {
		Memo string `json:"memo"`
	}
	err := DecodeJSON(r, &target)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrEmptyBody)
}
