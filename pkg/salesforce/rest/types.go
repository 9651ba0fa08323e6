package sfrest

// Credentials are the values exchanged for a session. Password and
// SecurityToken are sent concatenated.
type Credentials struct {
	ConsumerKey    string
	ConsumerSecret string
	Username       string
	Password       string
	SecurityToken  string
	Endpoint       string
}

// LoginPassword is the password followed by the security token.
func (c Credentials) LoginPassword() string {
	return c.Password + c.SecurityToken
}

// Session is an authenticated session. It is never mutated after Authorize
// returns it, so it can be shared between goroutines.
type Session struct {
	AccessToken string
	InstanceURL string
	TokenType   string
	IssuedAt    string
	ID          string
}

// NewSession wraps an access token obtained elsewhere.
func NewSession(accessToken, instanceURL string) *Session {
	return &Session{AccessToken: accessToken, InstanceURL: instanceURL}
}

// Valid reports whether the session can be used for record operations.
func (s *Session) Valid() bool {
	return s != nil && s.AccessToken != "" && s.InstanceURL != ""
}

// AuthResponse represents the OAuth token response
type AuthResponse struct {
	AccessToken string `json:"access_token"`
	InstanceURL string `json:"instance_url"`
	ID          string `json:"id"`
	TokenType   string `json:"token_type"`
	IssuedAt    string `json:"issued_at"`
	Signature   string `json:"signature"`
}

// Record maps field API names to JSON-compatible values.
type Record map[string]interface{}

// QueryResult is the decoded query response, returned as the API sent it.
type QueryResult = interface{}

// QueryResponse is the standard query envelope with typed records.
type QueryResponse[E any] struct {
	TotalSize      int    `json:"totalSize"`
	Done           bool   `json:"done"`
	NextRecordsURL string `json:"nextRecordsUrl,omitempty"`
	Records        []E    `json:"records"`
}

// Attributes can be embedded in record types decoded through QueryInto.
type Attributes struct {
	Type string `json:"type"`
	URL  string `json:"url"`
}

// InsertResult is the outcome of one record in InsertRecords.
type InsertResult struct {
	Index int
	ID    string
	Err   error
}
