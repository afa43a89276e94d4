// Package dedup collapses semantically equivalent bullets to a single
// retained representative.
//
// A candidate matches a retained bullet when embedding similarity and
// lexical overlap both clear their thresholds. On a match the bullet with
// the higher average word length wins; the loser is recorded as a conflict
// on the winner. Conflict lists stay flat: a displaced bullet hands its
// accumulated conflicts to its replacement instead of nesting under it.
package dedup

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/notefuse/notefuse/internal/core/domain"
	"github.com/notefuse/notefuse/internal/index"
)

// Log key constants for deduplication.
const (
	logKeyNote     = "note"
	logKeyBullet   = "bullet"
	logKeyText     = "text"
	logKeyMatch    = "matched_text"
	logKeySim      = "similarity"
	logKeyOverlap  = "overlap_ratio"
	logKeyRetained = "retained"
)

// Candidate is one bullet entering deduplication, with its normalized form
// and embedding already computed.
type Candidate struct {
	NoteNum    int
	BulletIdx  int
	RawText    string
	NormText   string
	AvgWordLen float64
	Embedding  []float32
}

// Result holds the retained bullets in insertion order and the provenance
// record for each, keyed by retained bullet text.
type Result struct {
	Retained []domain.RetainedBullet
	Records  map[string]*domain.BulletRecord
}

// Deduplicate processes candidates in order against the set retained so far.
// simThreshold gates embedding similarity and is checked first;
// overlapThreshold gates the lexical overlap ratio of the normalized forms.
// The highest-similarity retained bullet that clears both thresholds
// arbitrates the match.
//
// On replacement the loser's entry is overwritten in place: its text,
// normalized form, and average word length change, but its embedding stays
// in the index. Later candidates hitting that slot compare against the
// stale vector.
func Deduplicate(candidates []Candidate, simThreshold float32, overlapThreshold float64, logger *zerolog.Logger) (Result, error) {
	result := Result{
		Retained: make([]domain.RetainedBullet, 0, len(candidates)),
		Records:  make(map[string]*domain.BulletRecord),
	}

	if len(candidates) == 0 {
		return result, nil
	}

	idx := index.NewFlat(len(candidates[0].Embedding))
	normTexts := make([]string, 0, len(candidates))

	retain := func(cand Candidate, clean string) error {
		if err := idx.Add(cand.Embedding); err != nil {
			return fmt.Errorf("index bullet embedding: %w", err)
		}

		result.Retained = append(result.Retained, domain.RetainedBullet{
			NoteNum:    cand.NoteNum,
			BulletIdx:  cand.BulletIdx,
			Text:       clean,
			AvgWordLen: cand.AvgWordLen,
		})
		normTexts = append(normTexts, cand.NormText)
		result.Records[clean] = &domain.BulletRecord{
			NoteID:    cand.NoteNum,
			BulletID:  cand.BulletIdx,
			Text:      clean,
			Conflicts: []domain.BulletConflict{},
		}

		logger.Debug().
			Int(logKeyNote, cand.NoteNum).
			Int(logKeyBullet, cand.BulletIdx).
			Str(logKeyText, clean).
			Msg("retained bullet")

		return nil
	}

	for _, cand := range candidates {
		clean := strings.TrimRight(cand.RawText, ".")

		if idx.NTotal() == 0 {
			if err := retain(cand, clean); err != nil {
				return Result{}, err
			}

			continue
		}

		sims, indices, err := idx.Search(cand.Embedding, idx.NTotal())
		if err != nil {
			return Result{}, fmt.Errorf("search bullet embedding: %w", err)
		}

		matched := false

		for i, sim := range sims {
			if sim < simThreshold {
				continue
			}

			idxRetained := indices[i]
			overlap := overlapRatio(cand.NormText, normTexts[idxRetained])

			if overlap < overlapThreshold {
				continue
			}

			kept := result.Retained[idxRetained]

			if cand.AvgWordLen > kept.AvgWordLen {
				replace(&result, idxRetained, cand, clean, sim, overlap)
				normTexts[idxRetained] = cand.NormText

				logger.Debug().
					Str(logKeyText, clean).
					Str(logKeyMatch, kept.Text).
					Float32(logKeySim, sim).
					Float64(logKeyOverlap, overlap).
					Msg("replaced retained bullet")
			} else {
				record := result.Records[kept.Text]
				record.Conflicts = append(record.Conflicts, domain.BulletConflict{
					NoteID:       cand.NoteNum,
					BulletID:     cand.BulletIdx,
					Text:         clean,
					Similarity:   sim,
					OverlapRatio: overlap,
				})

				logger.Debug().
					Str(logKeyText, clean).
					Str(logKeyMatch, kept.Text).
					Float32(logKeySim, sim).
					Float64(logKeyOverlap, overlap).
					Msg("discarded duplicate bullet")
			}

			matched = true

			break
		}

		if !matched {
			if err := retain(cand, clean); err != nil {
				return Result{}, err
			}
		}
	}

	logger.Debug().Int(logKeyRetained, len(result.Retained)).Msg("bullet deduplication complete")

	return result, nil
}

// replace overwrites the retained bullet at position with the candidate. The
// displaced bullet joins the candidate's conflict list together with every
// conflict it had absorbed, keeping the list flat. The index entry is left
// untouched.
func replace(result *Result, position int, cand Candidate, clean string, sim float32, overlap float64) {
	displaced := result.Retained[position]

	old := result.Records[displaced.Text]
	delete(result.Records, displaced.Text)

	conflicts := append(old.Conflicts, domain.BulletConflict{
		NoteID:       old.NoteID,
		BulletID:     old.BulletID,
		Text:         old.Text,
		Similarity:   sim,
		OverlapRatio: overlap,
	})

	result.Records[clean] = &domain.BulletRecord{
		NoteID:    cand.NoteNum,
		BulletID:  cand.BulletIdx,
		Text:      clean,
		Conflicts: conflicts,
	}

	result.Retained[position] = domain.RetainedBullet{
		NoteNum:    cand.NoteNum,
		BulletIdx:  cand.BulletIdx,
		Text:       clean,
		AvgWordLen: cand.AvgWordLen,
	}
}

// overlapRatio computes |W1 ∩ W2| / max(|W1|, |W2|) over the space-split
// word sets of two normalized texts. Returns 0 when both are empty.
func overlapRatio(a, b string) float64 {
	wordsA := wordSet(a)
	wordsB := wordSet(b)

	longest := len(wordsA)
	if len(wordsB) > longest {
		longest = len(wordsB)
	}

	if longest == 0 {
		return 0
	}

	common := 0

	for word := range wordsA {
		if wordsB[word] {
			common++
		}
	}

	return float64(common) / float64(longest)
}

func wordSet(s string) map[string]bool {
	set := make(map[string]bool)

	for _, word := range strings.Fields(s) {
		set[word] = true
	}

	return set
}
