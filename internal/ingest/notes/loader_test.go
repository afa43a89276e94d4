package notes

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *zerolog.Logger {
	logger := zerolog.Nop()
	return &logger
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestLoadDirDiscoveryAndOrder(t *testing.T) {
	dir := t.TempDir()

	writeFile(t, dir, "notes10.json", `[{"text": "Ten", "section-text": "- t"}]`)
	writeFile(t, dir, "notes.json", `[{"text": "Zero", "section-text": "- z"}]`)
	writeFile(t, dir, "notes2.json", `[{"text": "Two", "section-text": "- d"}]`)
	writeFile(t, dir, "unrelated.json", `[]`)
	writeFile(t, dir, "notesX.json", `[]`)

	loaded, err := LoadDir(dir, testLogger())
	require.NoError(t, err)

	require.Len(t, loaded, 3)
	assert.Equal(t, 0, loaded[0].NoteNum)
	assert.Equal(t, 2, loaded[1].NoteNum)
	assert.Equal(t, 10, loaded[2].NoteNum)
	assert.Equal(t, "Zero", loaded[0].Headers[0].Name)
}

func TestLoadDirEmptyDirectory(t *testing.T) {
	loaded, err := LoadDir(t.TempDir(), testLogger())
	require.NoError(t, err)
	assert.Empty(t, loaded)
}

func TestLoadDirMissingDirectoryFatal(t *testing.T) {
	_, err := LoadDir(filepath.Join(t.TempDir(), "missing"), testLogger())
	require.Error(t, err)
}

func TestLoadDirSkipsUnparseableFile(t *testing.T) {
	dir := t.TempDir()

	writeFile(t, dir, "notes.json", `{not json`)
	writeFile(t, dir, "notes1.json", `[{"text": "Good", "section-text": "- ok"}]`)

	loaded, err := LoadDir(dir, testLogger())
	require.NoError(t, err)

	require.Len(t, loaded, 1)
	assert.Equal(t, 1, loaded[0].NoteNum)
}

func TestLoadDirAllFilesBad(t *testing.T) {
	dir := t.TempDir()

	writeFile(t, dir, "notes.json", `{not json`)
	writeFile(t, dir, "notes1.json", `also bad`)

	_, err := LoadDir(dir, testLogger())
	require.ErrorIs(t, err, ErrNoNotes)
}

func TestLoadFileDefaultsAndSkips(t *testing.T) {
	dir := t.TempDir()

	writeFile(t, dir, "notes.json", `[
		{"section-text": "- no header"},
		{"text": 42, "section-text": "- bad header type"},
		{"text": "Trimmed: ", "section-text": "- kept"}
	]`)

	loaded, err := LoadDir(dir, testLogger())
	require.NoError(t, err)
	require.Len(t, loaded, 1)

	headers := loaded[0].Headers
	require.Len(t, headers, 2)
	assert.Equal(t, DefaultHeaderName, headers[0].Name)
	assert.Equal(t, "Trimmed", headers[1].Name)
}

func TestCleanHeaderName(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "trailing colon", input: "Overview:", want: "Overview"},
		{name: "whitespace and colon", input: "  Key Points : ", want: "Key Points"},
		{name: "plain", input: "Summary", want: "Summary"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CleanHeaderName(tt.input))
		})
	}
}

func TestParseBullets(t *testing.T) {
	tests := []struct {
		name string
		body string
		want []string
	}{
		{
			name: "plain bullets",
			body: "- first\n- second",
			want: []string{"first", "second"},
		},
		{
			name: "non-bullet lines discarded",
			body: "intro prose\n- kept\n\nclosing prose",
			want: []string{"kept"},
		},
		{
			name: "indented bullets",
			body: "  - spaced\n\t- tabbed",
			want: []string{"spaced", "tabbed"},
		},
		{
			name: "dash without space",
			body: "-tight",
			want: []string{"tight"},
		},
		{
			name: "empty body",
			body: "",
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseBullets(tt.body))
		})
	}
}
