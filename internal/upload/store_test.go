package upload

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBatch_SaveAndCleanup(t *testing.T) {
	store, err := NewStore(filepath.Join(t.TempDir(), "uploads"))
	require.NoError(t, err)

	batch, err := store.NewBatch()
	require.NoError(t, err)

	f, err := batch.Save("Lecture 1.pdf", strings.NewReader("%PDF-1.4"), "")
	require.NoError(t, err)
	assert.Equal(t, "Lecture 1.pdf", f.OriginalName)
	assert.Equal(t, int64(8), f.Size)
	assert.Equal(t, "application/pdf", f.MIMEType)
	assert.True(t, strings.HasSuffix(f.Path, "-Lecture 1.pdf"))
	assert.Equal(t, ".pdf", f.Ext())

	_, err = batch.Save("notes.txt", strings.NewReader("hi"), "text/plain")
	require.NoError(t, err)
	require.Len(t, batch.Files(), 2)

	batch.Cleanup()
	_, err = os.Stat(f.Path)
	assert.True(t, os.IsNotExist(err))

	// A second cleanup is harmless.
	batch.Cleanup()
}

func TestBatch_SanitizesTraversal(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)
	batch, err := store.NewBatch()
	require.NoError(t, err)
	defer batch.Cleanup()

	f, err := batch.Save("../../etc/passwd", strings.NewReader("x"), "")
	require.NoError(t, err)
	assert.Equal(t, batch.dir, filepath.Dir(f.Path))
}

func TestFromPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "deck.PPTX")
	require.NoError(t, os.WriteFile(path, []byte("zip"), 0o600))

	f, err := FromPath(path)
	require.NoError(t, err)
	assert.Equal(t, "deck.PPTX", f.OriginalName)
	assert.Equal(t, ".pptx", f.Ext())

	_, err = FromPath(filepath.Dir(path))
	assert.Error(t, err)
}
