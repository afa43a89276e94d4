// Package notes loads source note files from disk.
//
// Note files are JSON arrays of sections living in one directory and named
// notes.json, notes1.json, notes2.json, ... The numeric suffix (empty means
// 0) is the note number and defines processing order. Each section carries a
// header and a block of bullet lines.
package notes

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/notefuse/notefuse/internal/core/domain"
	"github.com/notefuse/notefuse/internal/platform/observability"
)

// ErrNoNotes indicates that note files were found but none of them could be
// loaded.
var ErrNoNotes = errors.New("no note files could be loaded")

// DefaultHeaderName is used for sections without a header field.
const DefaultHeaderName = "Default Header"

// notePattern matches note file names and captures the note number.
var notePattern = regexp.MustCompile(`^notes(\d*)\.json$`)

// Log key constants.
const (
	logKeyFile    = "file"
	logKeyNote    = "note"
	logKeySection = "section"
)

// section is the on-disk shape of one note section. Text is the header;
// SectionText holds newline-separated bullet lines.
type section struct {
	Text        *string `json:"text"`
	SectionText *string `json:"section-text"`
}

// LoadDir discovers and parses every note file in dir, returning notes
// sorted by note number. An unreadable directory is fatal; a malformed file
// or section is skipped with a log entry. When note files exist but none of
// them can be parsed, ErrNoNotes is returned; a directory without any note
// files yields an empty list and no error.
func LoadDir(dir string, logger *zerolog.Logger) ([]domain.Note, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read notes directory: %w", err)
	}

	var loaded []domain.Note

	found := 0

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		match := notePattern.FindStringSubmatch(entry.Name())
		if match == nil {
			continue
		}

		found++

		noteNum := 0
		if match[1] != "" {
			noteNum, _ = strconv.Atoi(match[1])
		}

		note, err := loadFile(filepath.Join(dir, entry.Name()), noteNum, logger)
		if err != nil {
			logger.Warn().Err(err).Str(logKeyFile, entry.Name()).Msg("skipping unparseable note file")

			continue
		}

		observability.NotesLoaded.Inc()

		loaded = append(loaded, note)
	}

	if found > 0 && len(loaded) == 0 {
		return nil, ErrNoNotes
	}

	sort.SliceStable(loaded, func(a, b int) bool {
		return loaded[a].NoteNum < loaded[b].NoteNum
	})

	return loaded, nil
}

// loadFile parses a single note file into headers and bullets. Sections that
// do not decode to the expected shape are skipped, not fatal.
func loadFile(path string, noteNum int, logger *zerolog.Logger) (domain.Note, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return domain.Note{}, fmt.Errorf("read note file: %w", err)
	}

	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return domain.Note{}, fmt.Errorf("parse note file: %w", err)
	}

	note := domain.Note{NoteNum: noteNum}

	for i, rawSection := range raw {
		var sec section
		if err := json.Unmarshal(rawSection, &sec); err != nil {
			observability.SectionsSkipped.Inc()
			logger.Warn().
				Err(err).
				Str(logKeyFile, path).
				Int(logKeySection, i).
				Msg("skipping malformed section")

			continue
		}

		name := DefaultHeaderName
		if sec.Text != nil {
			name = *sec.Text
		}

		body := ""
		if sec.SectionText != nil {
			body = *sec.SectionText
		}

		note.Headers = append(note.Headers, domain.Header{
			NoteNum: noteNum,
			Name:    CleanHeaderName(name),
			Bullets: ParseBullets(body),
		})
	}

	logger.Debug().
		Str(logKeyFile, path).
		Int(logKeyNote, noteNum).
		Int("headers", len(note.Headers)).
		Msg("loaded note file")

	return note, nil
}

// CleanHeaderName strips outer whitespace and surrounding colons from a
// header as written in the source file.
func CleanHeaderName(name string) string {
	return strings.TrimSpace(strings.Trim(strings.TrimSpace(name), ":"))
}

// ParseBullets extracts bullet strings from a section body. A bullet line
// starts with "-" after leading whitespace; everything else is discarded.
func ParseBullets(body string) []string {
	var bullets []string

	for _, line := range strings.Split(body, "\n") {
		trimmed := strings.TrimSpace(line)
		if !strings.HasPrefix(trimmed, "-") {
			continue
		}

		bullet := strings.TrimSpace(strings.TrimLeft(trimmed, "- "))
		bullets = append(bullets, bullet)
	}

	return bullets
}
