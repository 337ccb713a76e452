package main

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindMigrationsDir(t *testing.T) {
	dir, err := findMigrationsDir()
	require.NoError(t, err)
	assert.Equal(t, "migrations", filepath.Base(dir))
}

func TestRootCommandRegistersSubcommands(t *testing.T) {
	root := newRootCmd()

	names := []string{}
	for _, cmd := range root.Commands() {
		names = append(names, cmd.Name())
	}
	assert.ElementsMatch(t, []string{"up", "down", "version"}, names)

	down, _, err := root.Find([]string{"down"})
	require.NoError(t, err)
	assert.NotNil(t, down.Flags().Lookup("steps"))
}

func TestNewMigratorRequiresDatabaseURL(t *testing.T) {
	t.Setenv("DB_URL", "")
	_, err := newMigrator("")
	assert.EqualError(t, err, "DB_URL environment variable is required")
}
