package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"library-circulation/library"
)

func TestRunDefaultSeed(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, run(&out, ""))

	assert.Contains(t, out.String(), "Community Library: 5 items, 3 members")
	assert.Contains(t, out.String(), "12 (popular)")
	assert.Contains(t, out.String(), "Mohsin")
}

func TestRunRejectsInvalidSeed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seed.yaml")
	require.NoError(t, os.WriteFile(path, []byte("items:\n  - {id: X1, kind: vinyl, title: Record}\n"), 0o600))

	var out bytes.Buffer
	err := run(&out, path)
	assert.ErrorIs(t, err, library.ErrInvalidSeed)
	assert.Empty(t, out.String())
}

func TestTruncateString(t *testing.T) {
	assert.Equal(t, "short", truncateString("short", 10))
	assert.Equal(t, "abcd...", truncateString("abcdefghij", 7))
	assert.Equal(t, "ab", truncateString("abcdef", 2))
}
