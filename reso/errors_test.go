package reso

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorFromStatus(t *testing.T) {
	tests := []struct {
		name       string
		statusCode int
		wantKind   error
	}{
		{name: "401 unauthorized", statusCode: 401, wantKind: ErrUnauthorized},
		{name: "403 forbidden", statusCode: 403, wantKind: ErrForbidden},
		{name: "404 not found", statusCode: 404, wantKind: ErrNotFound},
		{name: "429 rate limited", statusCode: 429, wantKind: ErrRateLimited},
		{name: "500 server error", statusCode: 500, wantKind: ErrServer},
		{name: "503 server error", statusCode: 503, wantKind: ErrServer},
		{name: "599 server error", statusCode: 599, wantKind: ErrServer},
		{name: "400 falls back to odata", statusCode: 400, wantKind: ErrOData},
		{name: "418 falls back to odata", statusCode: 418, wantKind: ErrOData},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := errorFromStatus(tt.statusCode, []byte("boom"))
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantKind)

			var apiErr *APIError
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, tt.statusCode, apiErr.StatusCode)
			assert.Equal(t, "boom", apiErr.Message)
		})
	}
}

func TestAPIErrorClassificationHelpers(t *testing.T) {
	notFound := errorFromStatus(404, nil)
	unauthorized := errorFromStatus(401, nil)
	forbidden := errorFromStatus(403, nil)
	throttled := errorFromStatus(429, nil)

	var apiErr *APIError

	require.ErrorAs(t, notFound, &apiErr)
	assert.True(t, apiErr.IsNotFound())
	assert.False(t, apiErr.IsUnauthorized())

	require.ErrorAs(t, unauthorized, &apiErr)
	assert.True(t, apiErr.IsUnauthorized())

	require.ErrorAs(t, forbidden, &apiErr)
	assert.True(t, apiErr.IsUnauthorized())
	assert.False(t, apiErr.IsNotFound())

	require.ErrorAs(t, throttled, &apiErr)
	assert.True(t, apiErr.IsRateLimited())
}

func TestParseErrorBody(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{
			name: "odata envelope with code",
			body: `{"error":{"code":"Unauthorized","message":"Invalid authentication token"}}`,
			want: "Invalid authentication token (code: Unauthorized)",
		},
		{
			name: "odata envelope without code",
			body: `{"error":{"message":"Something went wrong"}}`,
			want: "Something went wrong",
		},
		{
			name: "unrelated json keeps raw body",
			body: `{"status":"down"}`,
			want: `{"status":"down"}`,
		},
		{
			name: "plain text keeps raw body",
			body: "Resource not found",
			want: "Resource not found",
		},
		{
			name: "empty body",
			body: "",
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, parseErrorBody([]byte(tt.body)))
		})
	}
}

func TestParseErrorBodyTruncation(t *testing.T) {
	body := strings.Repeat("x", 600)

	got := parseErrorBody([]byte(body))

	assert.Equal(t, strings.Repeat("x", 500)+"... (truncated)", got)
	assert.Len(t, got, 500+len("... (truncated)"))
}

func TestAPIErrorMessage(t *testing.T) {
	err := errorFromStatus(500, []byte(`{"error":{"code":"InternalError","message":"database offline"}}`))

	assert.Equal(t, "reso API error: status 500: database offline (code: InternalError)", err.Error())
	assert.ErrorIs(t, err, ErrServer)
}

func TestInvalidQueryErrorsUnwrap(t *testing.T) {
	_, err := ByKey("Property", "12345").Top(1).Build()
	require.Error(t, err)

	assert.True(t, errors.Is(err, ErrInvalidQuery))
	assert.False(t, errors.Is(err, ErrOData))
}
