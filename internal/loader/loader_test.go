package loader

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docchat/internal/domain"
	"docchat/internal/errs"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadText(t *testing.T) {
	path := writeFile(t, t.TempDir(), "notes.txt", "hello world")

	doc, err := New().Load(path)
	require.NoError(t, err)

	assert.Equal(t, "hello world", doc.Content)
	assert.Equal(t, "txt", doc.Metadata["file_type"].String())
	assert.Equal(t, path, doc.Metadata["source"].String())
	assert.Equal(t, float64(11), doc.Metadata["total_chars"].Number())
	assert.NotEmpty(t, doc.Metadata["document_id"].String())
}

func TestLoadCSV(t *testing.T) {
	path := writeFile(t, t.TempDir(), "people.csv", "name,age\nAda,36\nAlan,41\n")

	doc, err := New().Load(path)
	require.NoError(t, err)

	assert.Equal(t, "name: Ada | age: 36\nname: Alan | age: 41", doc.Content)
	assert.Equal(t, "csv", doc.Metadata["file_type"].String())
	assert.Equal(t, float64(2), doc.Metadata["num_rows"].Number())
	assert.Equal(t, float64(2), doc.Metadata["num_columns"].Number())
	// Column lists are not scalars, so they arrive coerced to a string.
	assert.Equal(t, domain.KindString, doc.Metadata["columns"].Kind())
	assert.Equal(t, "[name age]", doc.Metadata["columns"].String())
}

func TestLoadCSVEmpty(t *testing.T) {
	path := writeFile(t, t.TempDir(), "empty.csv", "")

	doc, err := New().Load(path)
	require.NoError(t, err)
	assert.Empty(t, doc.Content)
	assert.Equal(t, float64(0), doc.Metadata["num_rows"].Number())
}

func TestLoadUnsupportedFormat(t *testing.T) {
	_, err := New().Load("slides.pptx")
	require.Error(t, err)
	assert.True(t, errs.IsUnsupportedFormat(err))
	assert.Contains(t, err.Error(), ".pptx")
}

func TestLoadAllSkipsBadFiles(t *testing.T) {
	dir := t.TempDir()
	good := writeFile(t, dir, "a.txt", "alpha")
	bad := filepath.Join(dir, "b.docx")
	missing := filepath.Join(dir, "gone.txt")

	docs, skipped := New().LoadAll([]string{good, bad, missing})

	require.Len(t, docs, 1)
	assert.Equal(t, "alpha", docs[0].Content)

	require.Len(t, skipped, 2)
	assert.Equal(t, bad, skipped[0].Path)
	assert.True(t, errs.IsUnsupportedFormat(skipped[0].Err))
	assert.Equal(t, missing, skipped[1].Path)
	assert.False(t, errs.IsUnsupportedFormat(skipped[1].Err))
}
