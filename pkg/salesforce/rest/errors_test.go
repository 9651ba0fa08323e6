package sfrest

import (
	"errors"
	"fmt"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorMessages(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{
			name: "transport",
			err:  &TransportError{Op: opAuthorize, Err: io.ErrUnexpectedEOF},
			want: "authorize: request error: unexpected EOF",
		},
		{
			name: "parse without cause",
			err:  &ParseError{Op: opInsert, Msg: "missing ID in response"},
			want: "insert record: parse error: missing ID in response",
		},
		{
			name: "parse with cause",
			err:  &ParseError{Op: opQuery, Msg: "invalid query response", Err: io.ErrUnexpectedEOF},
			want: "query records: parse error: invalid query response: unexpected EOF",
		},
		{
			name: "api",
			err:  &APIError{Op: opQuery, StatusCode: 400, Body: "[]"},
			want: "query records failed with status 400: []",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestErrorPredicates(t *testing.T) {
	transport := fmt.Errorf("wrapped: %w", &TransportError{Op: opQuery, Err: io.EOF})
	parse := fmt.Errorf("wrapped: %w", &ParseError{Op: opQuery, Msg: "x"})
	api := fmt.Errorf("wrapped: %w", &APIError{Op: opQuery, StatusCode: 404})

	assert.True(t, IsTransport(transport))
	assert.True(t, errors.Is(transport, io.EOF))
	assert.False(t, IsTransport(parse))

	assert.True(t, IsParse(parse))
	assert.False(t, IsParse(api))

	assert.True(t, IsAPI(api))
	assert.True(t, IsAPI(api, 500, 404))
	assert.False(t, IsAPI(api, 401))
	assert.False(t, IsAPI(transport))
	assert.False(t, IsAPI(ErrNoSession))
}

func TestCredentials_LoginPassword(t *testing.T) {
	assert.Equal(t, "pwTOKEN", Credentials{Password: "pw", SecurityToken: "TOKEN"}.LoginPassword())
	assert.Equal(t, "pw", Credentials{Password: "pw"}.LoginPassword())
}
