// Package main is the entrypoint for the notefuse CLI.
//
// notefuse merges multiple structured notes into one deduplicated document:
//
//	notefuse merge --notes-dir ./notes --out merged.txt --report merged_results.json
//
// Semantically equivalent headers are unified under a canonical name and
// equivalent bullets collapse to a single retained representative; every
// discarded or displaced source item is kept in the provenance report.
package main

import (
	"context"
	"errors"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/notefuse/notefuse/internal/app"
	"github.com/notefuse/notefuse/internal/platform/config"
	"github.com/notefuse/notefuse/internal/process/merge"
)

const logFileMode = 0o644

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd(cfg).ExecuteContext(ctx); err != nil {
		if errors.Is(err, context.Canceled) {
			os.Exit(0)
		}

		os.Exit(1)
	}
}

func newRootCmd(cfg *config.Config) *cobra.Command {
	root := &cobra.Command{
		Use:           "notefuse",
		Short:         "Merge structured notes into one deduplicated document",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	root.AddCommand(newMergeCmd(cfg))

	return root
}

func newMergeCmd(cfg *config.Config) *cobra.Command {
	var (
		notesDir    string
		outPath     string
		reportPath  string
		logFile     string
		metricsPort int
		opts        = merge.DefaultOptions()
	)

	cmd := &cobra.Command{
		Use:   "merge",
		Short: "Merge every notes*.json file in a directory",
		RunE: func(cmd *cobra.Command, _ []string) error {
			logger, closeLog, err := newLogger(cfg.AppEnv, logFile)
			if err != nil {
				return err
			}
			defer closeLog()

			application := app.New(cfg, &logger)

			if err := application.RunMerge(cmd.Context(), app.MergeParams{
				NotesDir:    notesDir,
				OutPath:     outPath,
				ReportPath:  reportPath,
				Options:     opts,
				MetricsPort: metricsPort,
			}); err != nil {
				logger.Error().Err(err).Msg("merge failed")

				return err
			}

			return nil
		},
	}

	cmd.Flags().StringVar(&notesDir, "notes-dir", ".", "directory containing notes*.json files")
	cmd.Flags().StringVar(&outPath, "out", "merged.txt", "path of the merged document")
	cmd.Flags().StringVar(&reportPath, "report", "merged_results.json", "path of the provenance report")
	cmd.Flags().StringVar(&logFile, "log-file", "", "append the run log to this file")
	cmd.Flags().IntVar(&metricsPort, "metrics-port", 0, "serve Prometheus metrics on this port for the run (0 disables)")
	cmd.Flags().Float32Var(&opts.SimilarityThreshold, "similarity-threshold", opts.SimilarityThreshold,
		"cosine similarity threshold for duplicate bullets")
	cmd.Flags().Float64Var(&opts.OverlapThreshold, "overlap-threshold", opts.OverlapThreshold,
		"lexical overlap threshold for duplicate bullets")
	cmd.Flags().Float32Var(&opts.HeaderSimilarityThreshold, "header-similarity-threshold", opts.HeaderSimilarityThreshold,
		"cosine similarity threshold for header clustering")

	return cmd
}

func newLogger(appEnv, logFile string) (zerolog.Logger, func(), error) {
	var base io.Writer
	if appEnv == "local" {
		base = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	} else {
		base = os.Stderr
	}

	closeLog := func() {}

	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, logFileMode)
		if err != nil {
			return zerolog.Logger{}, nil, err
		}

		base = zerolog.MultiLevelWriter(base, f)
		closeLog = func() { _ = f.Close() }
	}

	return zerolog.New(base).With().Timestamp().Logger(), closeLog, nil
}
