package i18n

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNegotiate(t *testing.T) {
	require.NoError(t, Init("en"))

	assert.Equal(t, "en", Negotiate(""))
	assert.Equal(t, "en", Negotiate("fr-FR"))
	assert.Equal(t, "hi", Negotiate("hi-IN,hi;q=0.9,en;q=0.8"))
	assert.Equal(t, "en", Negotiate("en-GB"))
	assert.Equal(t, "en", Negotiate(";;;"))
}

func TestT(t *testing.T) {
	require.NoError(t, Init("en"))
	ctx := context.Background()

	assert.Equal(t, "Record not found", T(ctx, "record_not_found"))
	assert.Equal(t, "User Asha has been approved", T(ctx, "user_approved", map[string]any{"Name": "Asha"}))
	assert.Equal(t, "no_such_message", T(ctx, "no_such_message"))
	assert.Equal(t, "रिकॉर्ड नहीं मिला", T(WithLocale(ctx, "hi"), "record_not_found"))
}

func TestMiddleware(t *testing.T) {
	require.NoError(t, Init("en"))

	var got string
	h := Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = LocaleFromContext(r.Context())
	}))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Accept-Language", "hi")
	h.ServeHTTP(httptest.NewRecorder(), req)
	assert.Equal(t, "hi", got)
}
