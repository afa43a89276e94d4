// Package app wires the merge pipeline together: configuration, logging,
// the embedding client with its per-run cache, ingest, and output writing.
package app

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/notefuse/notefuse/internal/core/embeddings"
	"github.com/notefuse/notefuse/internal/core/textnorm"
	"github.com/notefuse/notefuse/internal/ingest/notes"
	"github.com/notefuse/notefuse/internal/platform/config"
	"github.com/notefuse/notefuse/internal/platform/observability"
	"github.com/notefuse/notefuse/internal/process/merge"
)

// Metric status values for merge runs.
const (
	statusSuccess = "success"
	statusError   = "error"
)

// Log key constants.
const (
	logKeyRunID    = "run_id"
	logKeyNotesDir = "notes_dir"
	logKeyOut      = "out"
	logKeyReport   = "report"
	logKeyNotes    = "notes"
	logKeyHeaders  = "headers"
)

// File permissions for outputs.
const outputFileMode = 0o644

// MergeParams are the per-invocation settings of a merge run.
type MergeParams struct {
	NotesDir    string
	OutPath     string
	ReportPath  string
	Options     merge.Options
	MetricsPort int
}

// App holds the application dependencies.
type App struct {
	cfg    *config.Config
	logger *zerolog.Logger
}

// New creates a new App instance.
func New(cfg *config.Config, logger *zerolog.Logger) *App {
	return &App{
		cfg:    cfg,
		logger: logger,
	}
}

// RunMerge executes one merge run end to end: load notes, merge, write the
// merged document and the provenance report.
func (a *App) RunMerge(ctx context.Context, params MergeParams) error {
	logger := a.logger.With().Str(logKeyRunID, uuid.NewString()).Logger()

	if params.MetricsPort > 0 {
		srv := observability.NewServer(params.MetricsPort, &logger)

		go func() {
			if err := srv.Start(ctx); err != nil {
				logger.Error().Err(err).Msg("metrics server error")
			}
		}()
	}

	if err := a.runMerge(ctx, params, &logger); err != nil {
		observability.MergeRuns.WithLabelValues(statusError).Inc()

		return err
	}

	observability.MergeRuns.WithLabelValues(statusSuccess).Inc()

	return nil
}

func (a *App) runMerge(ctx context.Context, params MergeParams, logger *zerolog.Logger) error {
	normalizer, err := textnorm.New()
	if err != nil {
		return fmt.Errorf("init normalizer: %w", err)
	}

	client := embeddings.NewClient(embeddings.Config{
		OpenAIAPIKey:         a.cfg.EmbeddingAPIKey,
		OpenAIModel:          a.cfg.EmbeddingModel,
		OpenAIRateLimit:      a.cfg.EmbeddingRateLimit,
		Dimensions:           a.cfg.EmbeddingDimensions,
		CircuitBreakerConfig: embeddings.DefaultCircuitBreakerConfig(),
	}, logger)

	noteList, err := notes.LoadDir(params.NotesDir, logger)
	if err != nil {
		return fmt.Errorf("load notes: %w", err)
	}

	logger.Info().
		Str(logKeyNotesDir, params.NotesDir).
		Int(logKeyNotes, len(noteList)).
		Msg("notes loaded")

	merger := merge.New(embeddings.NewCache(client, logger), normalizer, params.Options, logger)

	result, err := merger.Merge(ctx, noteList)
	if err != nil {
		return fmt.Errorf("merge notes: %w", err)
	}

	if err := os.WriteFile(params.OutPath, []byte(result.MergedText), outputFileMode); err != nil {
		return fmt.Errorf("write merged document: %w", err)
	}

	reportJSON, err := json.MarshalIndent(result.BuildReport(), "", "    ")
	if err != nil {
		return fmt.Errorf("encode provenance report: %w", err)
	}

	if err := os.WriteFile(params.ReportPath, append(reportJSON, '\n'), outputFileMode); err != nil {
		return fmt.Errorf("write provenance report: %w", err)
	}

	logger.Info().
		Str(logKeyOut, params.OutPath).
		Str(logKeyReport, params.ReportPath).
		Int(logKeyHeaders, len(result.Headers)).
		Msg("merge run complete")

	return nil
}
