package sfrest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"regexp"

	httpclient "github.com/natserract/sfrest/pkg/http"
	"github.com/sourcegraph/conc/pool"
	"go.uber.org/zap"
)

const (
	opInsert = "insert record"
	opQuery  = "query records"

	DefaultConcurrency = 5
)

// sObject API names: letters, digits and underscores, starting with a letter.
var objectTypeRe = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_]*$`)

// InsertRecord creates one record of objectType from fields and returns the new record ID.
func (s *Salesforce) InsertRecord(ctx context.Context, sess *Session, objectType string, fields Record) (string, error) {
	if !sess.Valid() {
		return "", ErrNoSession
	}
	if !objectTypeRe.MatchString(objectType) {
		return "", fmt.Errorf("%s: invalid object type %q", opInsert, objectType)
	}
	if fields == nil {
		fields = Record{}
	}
	payload, err := json.Marshal(fields)
	if err != nil {
		return "", fmt.Errorf("%s: invalid fields: %w", opInsert, err)
	}

	s.logger.Info("Inserting record", zap.String("object_type", objectType), zap.Int("field_count", len(fields)))

	endpoint, err := httpclient.BuildURL(sess.InstanceURL, s.dataPath("sobjects/"+objectType), nil)
	if err != nil {
		s.logger.Error("Failed to build URL", zap.Error(err))
		return "", fmt.Errorf("%s: %w", opInsert, err)
	}

	s.logger.Debug("Making POST request", zap.String("endpoint", endpoint))
	resp, err := s.httpClient.Post(ctx, endpoint, bearer(sess), payload)
	if err != nil {
		s.logger.Error("Insert record request failed", zap.Error(err), zap.String("endpoint", endpoint))
		return "", &TransportError{Op: opInsert, Err: err}
	}

	if resp.StatusCode != http.StatusCreated {
		s.logger.Error("Insert record failed",
			zap.Int("status_code", resp.StatusCode),
			zap.String("response", string(resp.Body)))
		return "", &APIError{Op: opInsert, StatusCode: resp.StatusCode, Body: string(resp.Body)}
	}

	var body map[string]interface{}
	if err := json.Unmarshal(resp.Body, &body); err != nil {
		s.logger.Error("Failed to parse insert response", zap.Error(err))
		return "", &ParseError{Op: opInsert, Msg: "invalid create response", Err: err}
	}
	id, ok := body["id"].(string)
	if !ok || id == "" {
		return "", &ParseError{Op: opInsert, Msg: "missing ID in response"}
	}

	s.logger.Info("Successfully inserted record",
		zap.String("object_type", objectType),
		zap.String("record_id", id))

	return id, nil
}

// InsertRecords creates records concurrently, at most concurrency at a time.
// Results are in input order; the returned error joins every failure.
func (s *Salesforce) InsertRecords(ctx context.Context, sess *Session, objectType string, records []Record, concurrency int) ([]InsertResult, error) {
	if !sess.Valid() {
		return nil, ErrNoSession
	}
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}

	results := make([]InsertResult, len(records))
	p := pool.New().WithMaxGoroutines(concurrency).WithErrors()
	for idx, rec := range records {
		i, rec := idx, rec
		p.Go(func() error {
			id, err := s.InsertRecord(ctx, sess, objectType, rec)
			results[i] = InsertResult{Index: i, ID: id, Err: err}
			if err != nil {
				return fmt.Errorf("record %d: %w", i, err)
			}
			return nil
		})
	}
	err := p.Wait()

	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
		}
	}
	s.logger.Info("Completed batch insert",
		zap.String("object_type", objectType),
		zap.Int("succeeded", len(records)-failed),
		zap.Int("failed", failed))

	return results, err
}

// QueryRecords runs soql and returns the response body decoded as JSON.
// Numbers are kept as json.Number. Only the first batch is returned.
func (s *Salesforce) QueryRecords(ctx context.Context, sess *Session, soql string) (QueryResult, error) {
	body, err := s.query(ctx, sess, soql)
	if err != nil {
		return nil, err
	}

	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	var result interface{}
	if err := dec.Decode(&result); err != nil {
		s.logger.Error("Failed to parse query response", zap.Error(err))
		return nil, &ParseError{Op: opQuery, Msg: "invalid query response", Err: err}
	}
	if dec.More() {
		return nil, &ParseError{Op: opQuery, Msg: "trailing data after query response"}
	}

	return result, nil
}

// QueryInto runs soql and decodes the response envelope with typed records.
func QueryInto[E any](ctx context.Context, s *Salesforce, sess *Session, soql string) (*QueryResponse[E], error) {
	body, err := s.query(ctx, sess, soql)
	if err != nil {
		return nil, err
	}

	var out QueryResponse[E]
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, &ParseError{Op: opQuery, Msg: "invalid query response", Err: err}
	}
	return &out, nil
}

func (s *Salesforce) query(ctx context.Context, sess *Session, soql string) ([]byte, error) {
	if !sess.Valid() {
		return nil, ErrNoSession
	}
	if soql == "" {
		return nil, errors.New(opQuery + ": empty query")
	}

	s.logger.Info("Querying records", zap.String("query", soql))

	endpoint, err := httpclient.BuildURL(sess.InstanceURL, s.dataPath("query"), map[string]string{"q": soql})
	if err != nil {
		s.logger.Error("Failed to build URL", zap.Error(err))
		return nil, fmt.Errorf("%s: %w", opQuery, err)
	}

	s.logger.Debug("Making GET request", zap.String("endpoint", endpoint))
	resp, err := s.httpClient.Get(ctx, endpoint, bearer(sess))
	if err != nil {
		s.logger.Error("Query request failed", zap.Error(err), zap.String("endpoint", endpoint))
		return nil, &TransportError{Op: opQuery, Err: err}
	}

	if resp.StatusCode != http.StatusOK {
		s.logger.Error("Query failed",
			zap.Int("status_code", resp.StatusCode),
			zap.String("response", string(resp.Body)))
		return nil, &APIError{Op: opQuery, StatusCode: resp.StatusCode, Body: string(resp.Body)}
	}

	s.logger.Info("Successfully queried records", zap.Int("response_bytes", len(resp.Body)))
	return resp.Body, nil
}
