package sfrest

import (
	"context"
	"errors"
	"net/http"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSalesforce_Authorize(t *testing.T) {
	t.Run("stores token and instance url", func(t *testing.T) {
		server := newServer(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/services/oauth2/token", r.URL.Path)
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "application/x-www-form-urlencoded", r.Header.Get("Content-Type"))

			require.NoError(t, r.ParseForm())
			assert.Equal(t, "password", r.PostForm.Get("grant_type"))
			assert.Equal(t, "consumer-key", r.PostForm.Get("client_id"))
			assert.Equal(t, "consumer-secret", r.PostForm.Get("client_secret"))
			assert.Equal(t, "ops@example.com", r.PostForm.Get("username"))
			assert.Equal(t, "Pa$$wordSECTOKEN", r.PostForm.Get("password"))

			_, _ = w.Write([]byte(`{"access_token":"T1","instance_url":"https://example.my.salesforce.com"}`))
		})

		client := newTestSalesforce(server.URL)
		assert.Nil(t, client.Session())

		sess, err := client.Authorize(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "T1", sess.AccessToken)
		assert.Equal(t, "https://example.my.salesforce.com", sess.InstanceURL)
		assert.True(t, sess.Valid())
		assert.Same(t, sess, client.Session())
	})

	t.Run("endpoint with trailing slash", func(t *testing.T) {
		server := newServer(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/services/oauth2/token", r.URL.Path)
			_, _ = w.Write([]byte(`{"access_token":"T1","instance_url":"https://example.my.salesforce.com"}`))
		})

		_, err := newTestSalesforce(server.URL + "/").Authorize(context.Background())
		require.NoError(t, err)
	})

	t.Run("extra fields are ignored", func(t *testing.T) {
		server := newServer(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"access_token":"T2","instance_url":"https://na1.salesforce.com","id":"https://login.salesforce.com/id/00D/005","token_type":"Bearer","issued_at":"1700000000000","signature":"sig","scope":"api"}`))
		})

		sess, err := newTestSalesforce(server.URL).Authorize(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "T2", sess.AccessToken)
		assert.Equal(t, "Bearer", sess.TokenType)
		assert.Equal(t, "1700000000000", sess.IssuedAt)
	})

	t.Run("replaces the previous session", func(t *testing.T) {
		var n atomic.Int32
		server := newServer(t, func(w http.ResponseWriter, r *http.Request) {
			if n.Add(1) == 1 {
				_, _ = w.Write([]byte(`{"access_token":"first","instance_url":"https://a.example.com"}`))
				return
			}
			_, _ = w.Write([]byte(`{"access_token":"second","instance_url":"https://b.example.com"}`))
		})

		client := newTestSalesforce(server.URL)
		first, err := client.Authorize(context.Background())
		require.NoError(t, err)
		second, err := client.Authorize(context.Background())
		require.NoError(t, err)

		assert.Equal(t, "first", first.AccessToken, "returned sessions are not mutated")
		assert.Equal(t, "second", client.Session().AccessToken)
		assert.Equal(t, "https://b.example.com", second.InstanceURL)
	})
}

func TestSalesforce_Authorize_APIError(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"bad credentials", http.StatusBadRequest, `{"error":"invalid_grant","error_description":"authentication failure"}`},
		{"unauthorized", http.StatusUnauthorized, `{"error":"invalid_client"}`},
		{"server error", http.StatusInternalServerError, "upstream unavailable"},
		{"created is not ok", http.StatusCreated, `{"access_token":"T1","instance_url":"https://x"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := newServer(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})

			client := newTestSalesforce(server.URL)
			prior := NewSession("prior-token", "https://prior.example.com")
			client.setSession(prior)

			sess, err := client.Authorize(context.Background())
			require.Error(t, err)
			assert.Nil(t, sess)

			var apiErr *APIError
			require.True(t, errors.As(err, &apiErr))
			assert.Equal(t, tt.status, apiErr.StatusCode)
			assert.Equal(t, tt.body, apiErr.Body)
			assert.Same(t, prior, client.Session(), "session must be left unchanged")
		})
	}
}

func TestSalesforce_Authorize_ParseError(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantMsg string
	}{
		{"missing access_token", `{"instance_url":"https://example.my.salesforce.com"}`, "access_token"},
		{"missing instance_url", `{"access_token":"T1"}`, "instance_url"},
		{"not json", `<html>maintenance</html>`, "invalid token response"},
		{"wrong type", `{"access_token":42,"instance_url":"https://x"}`, "invalid token response"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := newServer(t, func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(tt.body))
			})

			client := newTestSalesforce(server.URL)
			prior := NewSession("prior-token", "https://prior.example.com")
			client.setSession(prior)

			_, err := client.Authorize(context.Background())
			require.Error(t, err)
			assert.True(t, IsParse(err))
			assert.Contains(t, err.Error(), tt.wantMsg)
			assert.Same(t, prior, client.Session())
		})
	}
}

func TestSalesforce_Authorize_TransportError(t *testing.T) {
	server := newServer(t, func(w http.ResponseWriter, r *http.Request) {})
	endpoint := server.URL
	server.Close()

	client := newTestSalesforce(endpoint)
	_, err := client.Authorize(context.Background())
	require.Error(t, err)
	assert.True(t, IsTransport(err))
	assert.False(t, IsAPI(err))
	assert.Nil(t, client.Session())
}

func TestSalesforce_Authorize_Canceled(t *testing.T) {
	server := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"access_token":"T1","instance_url":"https://x"}`))
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestSalesforce(server.URL).Authorize(ctx)
	require.Error(t, err)
	assert.True(t, IsTransport(err))
	assert.ErrorIs(t, err, context.Canceled)
}
