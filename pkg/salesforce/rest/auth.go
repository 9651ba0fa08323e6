package sfrest

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"

	"go.uber.org/zap"
)

const opAuthorize = "authorize"

// Authorize exchanges the configured credentials for a session using the
// OAuth2 password grant. On success the new session replaces the stored one
// and is returned. On failure the stored session is left untouched.
func (s *Salesforce) Authorize(ctx context.Context) (*Session, error) {
	creds := s.config.Credentials
	endpoint := strings.TrimRight(creds.Endpoint, "/") + "/services/oauth2/token"
	s.logger.Info("Authenticating with Salesforce", zap.String("url", endpoint))

	form := url.Values{}
	form.Set("grant_type", "password")
	form.Set("client_id", creds.ConsumerKey)
	form.Set("client_secret", creds.ConsumerSecret)
	form.Set("username", creds.Username)
	form.Set("password", creds.LoginPassword())

	resp, err := s.httpClient.PostForm(ctx, endpoint, form)
	if err != nil {
		s.logger.Error("Authentication request failed", zap.Error(err), zap.String("url", endpoint))
		return nil, &TransportError{Op: opAuthorize, Err: err}
	}

	if resp.StatusCode != http.StatusOK {
		s.logger.Error("Authentication failed",
			zap.Int("status_code", resp.StatusCode),
			zap.String("response", string(resp.Body)))
		return nil, &APIError{Op: opAuthorize, StatusCode: resp.StatusCode, Body: string(resp.Body)}
	}

	var authResp AuthResponse
	if err := json.Unmarshal(resp.Body, &authResp); err != nil {
		s.logger.Error("Failed to parse authentication response", zap.Error(err))
		return nil, &ParseError{Op: opAuthorize, Msg: "invalid token response", Err: err}
	}
	if authResp.AccessToken == "" {
		return nil, &ParseError{Op: opAuthorize, Msg: "missing access_token in response"}
	}
	if authResp.InstanceURL == "" {
		return nil, &ParseError{Op: opAuthorize, Msg: "missing instance_url in response"}
	}

	sess := &Session{
		AccessToken: authResp.AccessToken,
		InstanceURL: authResp.InstanceURL,
		TokenType:   authResp.TokenType,
		IssuedAt:    authResp.IssuedAt,
		ID:          authResp.ID,
	}
	s.setSession(sess)

	s.logger.Info("Successfully authenticated",
		zap.String("instance_url", sess.InstanceURL),
		zap.String("token_type", sess.TokenType))

	return sess, nil
}
