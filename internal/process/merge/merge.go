// Package merge coordinates a full merge run: header clustering, per-cluster
// bullet deduplication, and rendering of the merged document plus the
// provenance report.
package merge

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/notefuse/notefuse/internal/core/domain"
	"github.com/notefuse/notefuse/internal/core/embeddings"
	"github.com/notefuse/notefuse/internal/core/textnorm"
	"github.com/notefuse/notefuse/internal/platform/observability"
	"github.com/notefuse/notefuse/internal/process/cluster"
	"github.com/notefuse/notefuse/internal/process/dedup"
)

// Default thresholds.
const (
	DefaultSimilarityThreshold       = 0.7
	DefaultOverlapThreshold          = 0.3
	DefaultHeaderSimilarityThreshold = 0.8
)

// Log key constants.
const (
	logKeyCluster  = "cluster"
	logKeyHeader   = "header"
	logKeyBullets  = "bullets"
	logKeyRetained = "retained"
)

// Options holds the three merge thresholds.
type Options struct {
	SimilarityThreshold       float32
	OverlapThreshold          float64
	HeaderSimilarityThreshold float32
}

// DefaultOptions returns the default thresholds.
func DefaultOptions() Options {
	return Options{
		SimilarityThreshold:       DefaultSimilarityThreshold,
		OverlapThreshold:          DefaultOverlapThreshold,
		HeaderSimilarityThreshold: DefaultHeaderSimilarityThreshold,
	}
}

// MergedHeader is the outcome of merging one header cluster.
type MergedHeader struct {
	HeaderID  int
	NoteID    int
	Name      string
	Conflicts []domain.HeaderConflict
	Bullets   []domain.RetainedBullet
	Records   map[string]*domain.BulletRecord
}

// Result is the outcome of a merge run.
type Result struct {
	MergedText string
	Headers    []MergedHeader
}

// Merger drives merge runs. It owns the per-run embedding cache and the
// normalizer, so no state leaks between runs.
type Merger struct {
	embedder   *embeddings.Cache
	normalizer *textnorm.Normalizer
	opts       Options
	logger     *zerolog.Logger
}

// New creates a Merger.
func New(embedder *embeddings.Cache, normalizer *textnorm.Normalizer, opts Options, logger *zerolog.Logger) *Merger {
	return &Merger{
		embedder:   embedder,
		normalizer: normalizer,
		opts:       opts,
		logger:     logger,
	}
}

// Merge runs the full pipeline over the given notes, which must already be
// in ascending note-number order. Cancellation is honored between clusters;
// within a cluster the computation runs to completion.
func (m *Merger) Merge(ctx context.Context, noteList []domain.Note) (*Result, error) {
	if len(noteList) == 0 {
		m.logger.Info().Msg("no notes to merge")

		return &Result{Headers: []MergedHeader{}}, nil
	}

	headers := flatten(noteList)
	if len(headers) == 0 {
		m.logger.Info().Msg("no headers to process after parsing")

		return &Result{Headers: []MergedHeader{}}, nil
	}

	vectors, err := m.embedHeaders(ctx, headers)
	if err != nil {
		return nil, fmt.Errorf("embed headers: %w", err)
	}

	clusters := cluster.Headers(headers, vectors, m.opts.HeaderSimilarityThreshold, m.logger)

	result := &Result{Headers: make([]MergedHeader, 0, len(clusters))}

	for i, hc := range clusters {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("merge canceled: %w", err)
		}

		observability.HeaderClusters.Inc()

		merged, err := m.mergeCluster(ctx, hc)
		if err != nil {
			return nil, fmt.Errorf("merge cluster %d (%s): %w", i, hc.Accepted.Name, err)
		}

		result.Headers = append(result.Headers, merged)
	}

	result.MergedText = render(result.Headers)

	return result, nil
}

// flatten collects headers across all notes in ingest order, assigning
// sequential header IDs.
func flatten(noteList []domain.Note) []domain.Header {
	var headers []domain.Header

	id := 0

	for _, note := range noteList {
		for _, h := range note.Headers {
			h.ID = id
			headers = append(headers, h)
			id++
		}
	}

	return headers
}

// embedHeaders returns one embedding per header, keyed per (note, name) so a
// header repeated across notes keeps its own cache entry. The raw header
// name is embedded; normalization is reserved for lexical comparison.
func (m *Merger) embedHeaders(ctx context.Context, headers []domain.Header) ([][]float32, error) {
	keys := make([]string, len(headers))
	texts := make([]string, len(headers))

	for i, h := range headers {
		keys[i] = embeddings.HeaderKey(h.NoteNum, h.Name)
		texts[i] = h.Name
	}

	return m.embedder.EmbedKeyed(ctx, keys, texts)
}

// mergeCluster concatenates bullets from every member header in ascending
// header-ID order, re-indexed 1-based within their source header, and runs
// deduplication over them.
func (m *Merger) mergeCluster(ctx context.Context, hc domain.HeaderCluster) (MergedHeader, error) {
	type pending struct {
		noteNum   int
		bulletIdx int
		raw       string
		norm      textnorm.Result
	}

	var bullets []pending

	for _, member := range hc.Members {
		for i, raw := range member.Bullets {
			bullets = append(bullets, pending{
				noteNum:   member.NoteNum,
				bulletIdx: i + 1,
				raw:       raw,
				norm:      m.normalizer.Bullet(raw),
			})
		}
	}

	// Embed each unique normalized form once; equal bullets across notes
	// share both the cache key and the resulting vector.
	var (
		uniqueForms []string
		seen        = make(map[string]bool)
	)

	for _, b := range bullets {
		if !seen[b.norm.Text] {
			seen[b.norm.Text] = true

			uniqueForms = append(uniqueForms, b.norm.Text)
		}
	}

	formVectors := make(map[string][]float32, len(uniqueForms))

	if len(uniqueForms) > 0 {
		vectors, err := m.embedder.EmbedKeyed(ctx, uniqueForms, uniqueForms)
		if err != nil {
			return MergedHeader{}, fmt.Errorf("embed bullets: %w", err)
		}

		for i, form := range uniqueForms {
			formVectors[form] = vectors[i]
		}
	}

	candidates := make([]dedup.Candidate, len(bullets))
	for i, b := range bullets {
		candidates[i] = dedup.Candidate{
			NoteNum:    b.noteNum,
			BulletIdx:  b.bulletIdx,
			RawText:    b.raw,
			NormText:   b.norm.Text,
			AvgWordLen: b.norm.AvgWordLen,
			Embedding:  formVectors[b.norm.Text],
		}
	}

	deduped, err := dedup.Deduplicate(candidates, m.opts.SimilarityThreshold, m.opts.OverlapThreshold, m.logger)
	if err != nil {
		return MergedHeader{}, err
	}

	observability.BulletsRetained.Add(float64(len(deduped.Retained)))

	conflicted := 0
	for _, record := range deduped.Records {
		conflicted += len(record.Conflicts)
	}

	observability.BulletsConflicted.Add(float64(conflicted))

	m.logger.Debug().
		Str(logKeyHeader, hc.Accepted.Name).
		Int(logKeyCluster, hc.Accepted.ID).
		Int(logKeyBullets, len(bullets)).
		Int(logKeyRetained, len(deduped.Retained)).
		Msg("merged header cluster")

	return MergedHeader{
		HeaderID:  hc.Accepted.ID,
		NoteID:    hc.Accepted.NoteNum,
		Name:      hc.Accepted.Name,
		Conflicts: hc.Conflicts,
		Bullets:   deduped.Retained,
		Records:   deduped.Records,
	}, nil
}

// render produces the merged document: one "Header:" line per cluster
// followed by its retained bullets in retention order.
func render(headers []MergedHeader) string {
	var lines []string

	for _, h := range headers {
		lines = append(lines, h.Name+":")

		for _, b := range h.Bullets {
			lines = append(lines, "- "+b.Text)
		}
	}

	return strings.Join(lines, "\n")
}
