package sfrest

import "context"

// SalesforceClient defines the interface for Salesforce API operations
type SalesforceClient interface {
	// Authorize exchanges the configured credentials for a session
	Authorize(ctx context.Context) (*Session, error)

	// Session returns the current session, nil before the first successful Authorize
	Session() *Session

	// InsertRecord creates one record and returns its ID
	InsertRecord(ctx context.Context, sess *Session, objectType string, fields Record) (string, error)

	// InsertRecords creates several records of the same type
	InsertRecords(ctx context.Context, sess *Session, objectType string, records []Record, concurrency int) ([]InsertResult, error)

	// QueryRecords runs a SOQL query and returns the decoded response
	QueryRecords(ctx context.Context, sess *Session, soql string) (QueryResult, error)
}

var _ SalesforceClient = (*Salesforce)(nil)
