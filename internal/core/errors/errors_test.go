package errors

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewErrorResponse_DefaultMessages(t *testing.T) {
	tests := []struct {
		code int
		msg  string
		want string
	}{
		{BadRequest, "", "Bad Request"},
		{Forbidden, "", "Forbidden"},
		{NotFound, "", "Not Found"},
		{InvalidRequest, "", "Invalid Request"},
		{InternalError, "", "Internal Server Error"},
		{InvalidRequest, "Invalid arguments", "Invalid arguments"},
		{418, "", "Unknown Error"},
	}

	for _, tt := range tests {
		got := NewErrorResponse(tt.code, tt.msg)
		require.Equal(t, tt.want, got.Error)
		require.Equal(t, tt.code, got.Code)
	}
}

func TestBody_Envelopes(t *testing.T) {
	ok, err := json.Marshal(Body(OK, map[string]float64{"score": 3.5}, ""))
	require.NoError(t, err)
	require.JSONEq(t, `{"response":{"score":3.5},"code":200}`, string(ok))

	bad, err := json.Marshal(Body(Forbidden, nil, ""))
	require.NoError(t, err)
	require.JSONEq(t, `{"error":"Forbidden","code":403}`, string(bad))
}
