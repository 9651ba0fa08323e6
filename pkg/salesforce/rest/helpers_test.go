package sfrest

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"
)

func testCredentials(endpoint string) Credentials {
	return Credentials{
		ConsumerKey:    "consumer-key",
		ConsumerSecret: "consumer-secret",
		Username:       "ops@example.com",
		Password:       "Pa$$word",
		SecurityToken:  "SECTOKEN",
		Endpoint:       endpoint,
	}
}

func newTestSalesforce(endpoint string) *Salesforce {
	return NewSalesforceWithLogger(&Config{Credentials: testCredentials(endpoint)}, zap.NewNop())
}

func newServer(t *testing.T, h http.HandlerFunc) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(h)
	t.Cleanup(server.Close)
	return server
}
