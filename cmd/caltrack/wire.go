package main

import (
	"context"
	"errors"
	"io"

	"caltrack/internal/adapter/gemini"
	"caltrack/internal/adapter/openai"
	"caltrack/internal/adapter/sheets"
	"caltrack/internal/adapter/sqlstore"
	"caltrack/internal/domain"

	"github.com/charmbracelet/log"
)

// openLedger picks the durable store. Missing or broken configuration falls
// back to memory-only operation: it returns a nil ledger and logs why.
func openLedger(ctx context.Context, cfg *Config, roster *domain.Roster, logger *log.Logger) (domain.Ledger, io.Closer) {
	kind := cfg.Ledger
	if kind == "auto" {
		kind = detectLedger(cfg)
	}

	switch kind {
	case "sheets":
		creds, err := cfg.GoogleCredentials()
		if err == nil && creds.IsZero() {
			err = errors.New("no service account credentials")
		}
		if err == nil && cfg.SpreadsheetID == "" {
			err = errors.New("SPREADSHEET_ID is not set")
		}
		if err != nil {
			logger.Warn("spreadsheet ledger disabled, running memory-only", "err", err)
			return nil, nil
		}
		l, err := sheets.New(ctx, sheets.Config{
			SpreadsheetID:  cfg.SpreadsheetID,
			LogSheet:       cfg.LogSheet,
			WeightSheet:    cfg.WeightSheet,
			Credentials:    creds,
			MatchTolerance: cfg.MatchTolerance,
		}, roster)
		if err != nil {
			logger.Warn("spreadsheet ledger disabled, running memory-only", "err", err)
			return nil, nil
		}
		logger.Info("using spreadsheet ledger", "log_sheet", cfg.LogSheet, "weight_sheet", cfg.WeightSheet)
		return l, nil

	case "postgres", "sqlite":
		driver, dsn := sqlstore.Postgres, cfg.DatabaseURL
		if kind == "sqlite" {
			driver, dsn = sqlstore.SQLite, cfg.SQLitePath
		}
		if dsn == "" {
			logger.Warn("sql ledger disabled, running memory-only", "driver", driver, "err", "no connection configured")
			return nil, nil
		}
		db, err := sqlstore.Open(ctx, driver, dsn)
		if err != nil {
			logger.Warn("sql ledger disabled, running memory-only", "driver", driver, "err", err)
			return nil, nil
		}
		logger.Info("using sql ledger", "driver", driver)
		return db, db

	default:
		logger.Info("no ledger configured, running memory-only")
		return nil, nil
	}
}

func detectLedger(cfg *Config) string {
	switch {
	case cfg.SpreadsheetID != "":
		return "sheets"
	case cfg.DatabaseURL != "":
		return "postgres"
	case cfg.SQLitePath != "":
		return "sqlite"
	default:
		return "none"
	}
}

// newVision returns the configured model client, or nil without an API key.
func newVision(cfg *Config, logger *log.Logger) domain.Vision {
	switch cfg.VisionProvider {
	case "openai":
		if cfg.OpenAIAPIKey == "" {
			logger.Warn("OPENAI_API_KEY is not set, photo logging disabled")
			return nil
		}
		return openai.New(cfg.OpenAIAPIKey, cfg.VisionModel, cfg.AITimeout)
	default:
		if cfg.GeminiAPIKey == "" {
			logger.Warn("GEMINI_API_KEY is not set, photo logging disabled")
			return nil
		}
		return gemini.New(cfg.GeminiAPIKey, cfg.VisionModel, cfg.AITimeout)
	}
}
