package main

import (
	"io"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/khatmdev/quadramall-sub001/pkg/migrate"
)

func TestParseArgs(t *testing.T) {
	opts, err := parseArgs([]string{"-dir", "db/migrations", "up"}, io.Discard)
	require.NoError(t, err)
	require.Equal(t, "up", opts.command)
	require.Equal(t, "db/migrations", opts.dir)
	require.True(t, opts.needsDB())
	require.True(t, opts.preflight())

	opts, err = parseArgs([]string{"check"}, io.Discard)
	require.NoError(t, err)
	require.Equal(t, migrate.DefaultDir, opts.dir)
	require.False(t, opts.needsDB())

	opts, err = parseArgs([]string{"-version", "20260301091500", "to"}, io.Discard)
	require.NoError(t, err)
	require.True(t, opts.preflight())

	opts, err = parseArgs([]string{"down"}, io.Discard)
	require.NoError(t, err)
	require.False(t, opts.preflight())
}

func TestParseArgsRejects(t *testing.T) {
	_, err := parseArgs(nil, io.Discard)
	require.ErrorIs(t, err, errUsage)

	_, err = parseArgs([]string{"create"}, io.Discard)
	require.Error(t, err)

	_, err = parseArgs([]string{"to"}, io.Discard)
	require.Error(t, err)

	_, err = parseArgs([]string{"redo"}, io.Discard)
	require.Error(t, err)
}

func TestCheckFilesOnShippedMigrations(t *testing.T) {
	require.NoError(t, checkFiles(filepath.Join("..", "..", "pkg", "migrate", "migrations")))
	require.Error(t, checkFiles(t.TempDir()))
}
