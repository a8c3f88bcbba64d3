package apiclient_test

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/jrsteele09/go-car-rental/apiclient"
	"github.com/stretchr/testify/require"
)

func apiErr(body string) error {
	return &apiclient.APIError{Method: http.MethodPost, Path: "/x/", StatusCode: http.StatusBadRequest, Body: []byte(body)}
}

func TestErrorMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, "An error occurred"},
		{"plain text", apiErr("Bad Gateway"), "Bad Gateway"},
		{"json string", apiErr(`"slow down"`), "slow down"},
		{"detail", apiErr(`{"detail":"bad"}`), "bad"},
		{"detail before message", apiErr(`{"message":"m","detail":"d"}`), "d"},
		{"message", apiErr(`{"message":"Login successful"}`), "Login successful"},
		{"error", apiErr(`{"error":"Payment failed"}`), "Payment failed"},
		{"empty detail falls through", apiErr(`{"detail":"","error":"e"}`), "e"},
		{"field errors", apiErr(`{"field":["required"]}`), "field: required"},
		{"first field in document order", apiErr(`{"start":["Start date must be in the future."],"end":["x"]}`),
			"start: Start date must be in the future."},
		{"non_field_errors", apiErr(`{"non_field_errors":["Car is not available for selected dates"]}`),
			"non_field_errors: Car is not available for selected dates"},
		{"first field not a list", apiErr(`{"count": 3, "email": ["taken"]}`), `{"count":3,"email":["taken"]}`},
		{"empty field list", apiErr(`{"email": []}`), `{"email":[]}`},
		{"unknown object compacted", apiErr("{ \"a\" : 1 }"), `{"a":1}`},
		{"empty object", apiErr(`{}`), `{}`},
		{"array", apiErr(`["a","b"]`), `["a","b"]`},
		{"no body", &apiclient.APIError{StatusCode: 502}, "request failed with status code 502"},
		{"wrapped api error", fmt.Errorf("listing cars: %w", apiErr(`{"detail":"bad"}`)), "bad"},
		{"transport error", fmt.Errorf("dial tcp: connection refused"), "dial tcp: connection refused"},
		{"validation error", apiclient.NewValidationError("password", "passwords do not match"),
			"password: passwords do not match"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, apiclient.ErrorMessage(tc.err))
		})
	}
}

func TestParseErrorPayload(t *testing.T) {
	require.Nil(t, apiclient.ParseErrorPayload(nil))
	require.Nil(t, apiclient.ParseErrorPayload([]byte("  ")))

	require.Equal(t, apiclient.DetailPayload("bad"), apiclient.ParseErrorPayload([]byte(`{"detail":"bad"}`)))
	require.Equal(t, apiclient.MessagePayload("m"), apiclient.ParseErrorPayload([]byte(`{"message":"m"}`)))
	require.Equal(t, apiclient.ErrorFieldPayload("e"), apiclient.ParseErrorPayload([]byte(`{"error":"e"}`)))
	require.Equal(t, apiclient.TextPayload("oops"), apiclient.ParseErrorPayload([]byte("oops")))

	p := apiclient.ParseErrorPayload([]byte(`{"email":["Enter a valid email address.","Too long."],"phone":["bad"]}`))
	fe, ok := p.(apiclient.FieldErrorsPayload)
	require.True(t, ok)
	require.Equal(t, "email", fe.Field)
	require.Equal(t, []string{"Enter a valid email address.", "Too long."}, fe.Errors)

	p = apiclient.ParseErrorPayload([]byte(`{"rating":[{"code":"max"}]}`))
	require.Equal(t, `rating: {"code":"max"}`, p.Message())

	_, ok = apiclient.ParseErrorPayload([]byte(`{"a":{"b":1}}`)).(apiclient.UnknownPayload)
	require.True(t, ok)
}

func TestAPIError_Is(t *testing.T) {
	err := &apiclient.APIError{StatusCode: http.StatusUnauthorized}
	require.ErrorIs(t, err, apiclient.ErrUnauthorized)
	require.NotErrorIs(t, err, apiclient.ErrServer)
	require.Equal(t, "request failed with status code 401", err.Error())
}
