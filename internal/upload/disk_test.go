package upload

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/99designs/gqlgen/graphql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngHeader = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 0}

func newUpload(name, contentType string, data []byte) *graphql.Upload {
	return &graphql.Upload{
		File:        bytes.NewReader(data),
		Filename:    name,
		Size:        int64(len(data)),
		ContentType: contentType,
	}
}

func TestDisk_Store(t *testing.T) {
	dir := t.TempDir()
	d, err := NewDisk(dir, "uploads", 0, []string{"image/*"})
	require.NoError(t, err)

	f, err := d.Store(context.Background(), newUpload("my avatar.png", "", pngHeader))
	require.NoError(t, err)

	assert.NotEmpty(t, f.ID)
	assert.Equal(t, "my_avatar.png", f.Filename)
	assert.Equal(t, "image/png", f.Mimetype)
	assert.Equal(t, "/uploads/"+f.ID+"/my_avatar.png", f.Path)

	stored, err := os.ReadFile(filepath.Join(dir, f.ID, f.Filename))
	require.NoError(t, err)
	assert.Equal(t, pngHeader, stored)
}

func TestDisk_Store_NotAllowed(t *testing.T) {
	d, err := NewDisk(t.TempDir(), "uploads", 0, []string{"image/*"})
	require.NoError(t, err)

	_, err = d.Store(context.Background(), newUpload("notes.txt", "text/plain", []byte("hello")))
	assert.ErrorIs(t, err, ErrNotAllowed)
}

func TestDisk_Store_TooLarge(t *testing.T) {
	dir := t.TempDir()
	d, err := NewDisk(dir, "uploads", 4, nil)
	require.NoError(t, err)

	u := newUpload("big.bin", "application/zip", []byte(strings.Repeat("x", 10)))
	u.Size = 0 // клиент не сообщил размер
	_, err = d.Store(context.Background(), u)
	assert.ErrorIs(t, err, ErrTooLarge)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestNewDisk_InvalidPattern(t *testing.T) {
	_, err := NewDisk(t.TempDir(), "uploads", 0, []string{"image/["})
	assert.Error(t, err)
}

func TestSanitize(t *testing.T) {
	assert.Equal(t, "passwd", sanitize("../../etc/passwd"))
	assert.Equal(t, "file", sanitize(".."))
	assert.Equal(t, "a_b.jpg", sanitize(`C:\photos\a b.jpg`))
}
