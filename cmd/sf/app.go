package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/natserract/sfrest/pkg/config"
	sfrest "github.com/natserract/sfrest/pkg/salesforce/rest"
	"github.com/natserract/sfrest/pkg/store/postgres"
	"go.uber.org/zap"
)

// app holds what every command needs once configuration is loaded.
type app struct {
	cfg       *config.Config
	logger    *zap.Logger
	client    *sfrest.Salesforce
	db        *postgres.DB
	recordLog *postgres.RecordLog
}

func newApp(ctx context.Context, flags *rootFlags, stderr io.Writer) (*app, error) {
	logger, err := newLogger(flags.verbose)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	var cfg *config.Config
	if flags.configPath != "" {
		cfg, err = config.LoadFile(flags.configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		if errors.Is(err, config.ErrConfigCreated) {
			fmt.Fprintf(stderr, "A configuration file with placeholder values has been created. Fill in your credentials and run again.\n")
		}
		logger.Error("Failed to load config", zap.Error(err))
		_ = logger.Sync()
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	a := &app{
		cfg:    cfg,
		logger: logger,
		client: sfrest.NewSalesforceWithLogger(cfg.Salesforce(), logger),
	}

	if flags.persist {
		if err := a.openRecordLog(ctx); err != nil {
			a.close()
			return nil, err
		}
	}

	return a, nil
}

// openRecordLog connects to Postgres using the DB_* environment.
func (a *app) openRecordLog(ctx context.Context) error {
	db, err := postgres.New(ctx, postgres.NewConfig(), a.logger)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := db.InitSchema(ctx); err != nil {
		db.Close()
		return err
	}
	a.db = db
	a.recordLog = postgres.NewRecordLog(db, a.logger)
	return nil
}

func newLogger(verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func (a *app) close() {
	if a.db != nil {
		a.db.Close()
	}
	_ = a.logger.Sync()
}

// insert creates one record and, when persistence is on, logs it.
func (a *app) insert(ctx context.Context, sess *sfrest.Session, objectType string, fields sfrest.Record) (string, error) {
	id, err := a.client.InsertRecord(ctx, sess, objectType, fields)
	if err != nil {
		return "", err
	}
	if a.recordLog != nil {
		if _, err := a.recordLog.Save(ctx, postgres.CreatedRecord{
			ObjectType: objectType,
			RecordID:   id,
			Fields:     fields,
		}); err != nil {
			a.logger.Warn("Record created but not logged", zap.String("record_id", id), zap.Error(err))
		}
	}
	return id, nil
}
