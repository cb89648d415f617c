package extractor

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pdf-rag/internal/models"
)

func TestExtract_MissingFile(t *testing.T) {
	_, err := New().Extract("/no/such/file.pdf")

	require.Error(t, err)
	assert.True(t, errors.Is(err, models.ErrNotFound))
}

func TestExtract_UnsupportedFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "image.png")
	require.NoError(t, os.WriteFile(path, []byte{0x89, 0x50}, 0o644))

	_, err := New().Extract(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported file format")
}

func TestExtract_TextFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.txt")
	require.NoError(t, os.WriteFile(path, []byte("plain text body"), 0o644))

	pages, err := New().Extract(path)
	require.NoError(t, err)
	require.Len(t, pages, 1)
	assert.Equal(t, "notes.txt", pages[0].PDFName)
	assert.Equal(t, 1, pages[0].PageNumber)
	assert.Equal(t, "plain text body", pages[0].Text)
}

func TestExtract_MarkdownStripsMarkup(t *testing.T) {
	src := "# Title\n\nSome *emphasised* text with a [link](https://example.com).\n\n- item one\n- item two\n"
	path := filepath.Join(t.TempDir(), "doc.md")
	require.NoError(t, os.WriteFile(path, []byte(src), 0o644))

	pages, err := New().Extract(path)
	require.NoError(t, err)
	require.Len(t, pages, 1)

	text := pages[0].Text
	assert.Contains(t, text, "Title")
	assert.Contains(t, text, "emphasised")
	assert.Contains(t, text, "link")
	assert.Contains(t, text, "item one")
	assert.NotContains(t, text, "#")
	assert.NotContains(t, text, "*")
	assert.NotContains(t, text, "https://example.com")
}
