package textnorm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBullet(t *testing.T) {
	n, err := New()
	require.NoError(t, err)

	tests := []struct {
		name       string
		input      string
		wantText   string
		wantAvgLen float64
	}{
		{
			name:       "empty input",
			input:      "",
			wantText:   "",
			wantAvgLen: 0,
		},
		{
			name:       "only stopwords",
			input:      "the and of",
			wantText:   "",
			wantAvgLen: 0,
		},
		{
			name:       "plural is lemmatized",
			input:      "cats",
			wantText:   "cat",
			wantAvgLen: 4,
		},
		{
			name:       "stopwords dropped before lemmatization",
			input:      "the cats and the dogs",
			wantText:   "cat dog",
			wantAvgLen: 4,
		},
		{
			name:       "case folded and punctuation ignored",
			input:      "Hello, World!",
			wantText:   "hello world",
			wantAvgLen: 5,
		},
		{
			name:       "single word",
			input:      "cat",
			wantText:   "cat",
			wantAvgLen: 3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := n.Bullet(tt.input)

			assert.Equal(t, tt.wantText, got.Text)
			assert.InDelta(t, tt.wantAvgLen, got.AvgWordLen, 1e-9)
		})
	}
}

func TestBulletAvgLenUsesInflectedForm(t *testing.T) {
	n, err := New()
	require.NoError(t, err)

	// "cat" and "cats" normalize to the same text, but the inflected form
	// counts its extra character. The longer form wins replacement later.
	short := n.Bullet("cat")
	long := n.Bullet("cats")

	assert.Equal(t, short.Text, long.Text)
	assert.Greater(t, long.AvgWordLen, short.AvgWordLen)
}

func TestBulletIdempotent(t *testing.T) {
	n, err := New()
	require.NoError(t, err)

	first := n.Bullet("several cats chasing mice")
	second := n.Bullet(first.Text)

	assert.Equal(t, first.Text, second.Text)
}

func TestBulletCaches(t *testing.T) {
	n, err := New()
	require.NoError(t, err)

	first := n.Bullet("reusable result")
	second := n.Bullet("reusable result")

	assert.Equal(t, first, second)
	assert.Len(t, n.cache, 1)
}

func TestHeader(t *testing.T) {
	n, err := New()
	require.NoError(t, err)

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "lowercase and trim", input: "  Course Overview ", want: "course overview"},
		{name: "stopwords survive", input: "The Art of War", want: "the art of war"},
		{name: "empty", input: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, n.Header(tt.input))
		})
	}
}
