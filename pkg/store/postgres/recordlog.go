package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS created_records (
	id          UUID PRIMARY KEY,
	object_type TEXT NOT NULL,
	record_id   TEXT NOT NULL,
	fields      JSONB NOT NULL,
	created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS created_records_created_at_idx ON created_records (created_at DESC);
`

// CreatedRecord is one record created through the API.
type CreatedRecord struct {
	ID         uuid.UUID              `json:"id" yaml:"id"`
	ObjectType string                 `json:"object_type" yaml:"object_type"`
	RecordID   string                 `json:"record_id" yaml:"record_id"`
	Fields     map[string]interface{} `json:"fields" yaml:"fields"`
	CreatedAt  time.Time              `json:"created_at" yaml:"created_at"`
}

// RecordLog keeps an audit trail of created records.
type RecordLog struct {
	db     *DB
	logger *zap.Logger
}

// NewRecordLog creates a record log backed by db.
func NewRecordLog(db *DB, logger *zap.Logger) *RecordLog {
	return &RecordLog{db: db, logger: logger}
}

// Save stores rec and returns the row ID.
func (r *RecordLog) Save(ctx context.Context, rec CreatedRecord) (uuid.UUID, error) {
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	fields, err := json.Marshal(rec.Fields)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to marshal fields: %w", err)
	}

	_, err = r.db.Pool().Exec(ctx,
		`INSERT INTO created_records (id, object_type, record_id, fields) VALUES ($1, $2, $3, $4)`,
		rec.ID, rec.ObjectType, rec.RecordID, fields)
	if err != nil {
		r.logger.Error("Failed to save created record",
			zap.String("record_id", rec.RecordID),
			zap.Error(err))
		return uuid.Nil, fmt.Errorf("failed to save created record %s: %w", rec.RecordID, err)
	}

	r.logger.Debug("Saved created record",
		zap.String("id", rec.ID.String()),
		zap.String("record_id", rec.RecordID))
	return rec.ID, nil
}

// Recent returns up to limit records, newest first.
func (r *RecordLog) Recent(ctx context.Context, limit int) ([]CreatedRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := r.db.Pool().Query(ctx,
		`SELECT id, object_type, record_id, fields, created_at FROM created_records ORDER BY created_at DESC LIMIT $1`,
		limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list created records: %w", err)
	}
	defer rows.Close()

	var out []CreatedRecord
	for rows.Next() {
		var (
			rec    CreatedRecord
			fields []byte
		)
		if err := rows.Scan(&rec.ID, &rec.ObjectType, &rec.RecordID, &fields, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan created record: %w", err)
		}
		if err := json.Unmarshal(fields, &rec.Fields); err != nil {
			return nil, fmt.Errorf("failed to decode fields of %s: %w", rec.RecordID, err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate created records: %w", err)
	}
	return out, nil
}
