// Package sfrest is a small client for the Salesforce REST API: it exchanges
// username/password credentials for a session and creates and queries records
// with that session.
package sfrest

import (
	"sync"
	"time"

	httpclient "github.com/natserract/sfrest/pkg/http"
	"go.uber.org/zap"
)

const DefaultAPIVersion = "60.0"

// Config is what a Salesforce client needs to authorize and call the API.
type Config struct {
	Credentials Credentials
	APIVersion  string
	Timeout     time.Duration
	MaxAttempts int
}

// Salesforce is the main client for the Salesforce REST API
type Salesforce struct {
	config     *Config
	httpClient *httpclient.Client
	logger     *zap.Logger

	mu      sync.RWMutex
	session *Session
}

// NewSalesforce creates a new Salesforce client with default production logger
func NewSalesforce(cfg *Config) *Salesforce {
	logger, _ := zap.NewProduction()
	return NewSalesforceWithLogger(cfg, logger)
}

// NewSalesforceWithLogger creates a new Salesforce client with a custom logger
func NewSalesforceWithLogger(cfg *Config, logger *zap.Logger) *Salesforce {
	httpClient := httpclient.NewClientWithOptions(httpclient.Options{
		Timeout:     cfg.Timeout,
		MaxAttempts: cfg.MaxAttempts,
	}, logger)
	return NewSalesforceWithClient(cfg, httpClient, logger)
}

// NewSalesforceWithClient creates a client that sends every request through httpClient.
func NewSalesforceWithClient(cfg *Config, httpClient *httpclient.Client, logger *zap.Logger) *Salesforce {
	if cfg.APIVersion == "" {
		cfg.APIVersion = DefaultAPIVersion
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Salesforce{
		config:     cfg,
		httpClient: httpClient,
		logger:     logger,
	}
}

// Session returns the session stored by the last successful Authorize, or nil.
func (s *Salesforce) Session() *Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.session
}

func (s *Salesforce) setSession(sess *Session) {
	s.mu.Lock()
	s.session = sess
	s.mu.Unlock()
}

func (s *Salesforce) dataPath(suffix string) string {
	return "/services/data/v" + s.config.APIVersion + "/" + suffix
}

func bearer(sess *Session) map[string]string {
	return map[string]string{
		"Authorization": "Bearer " + sess.AccessToken,
	}
}
