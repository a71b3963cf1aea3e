package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/gandaldf/sqlfrag"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("SQLFRAG_DIALECT", "")
	t.Setenv("SQLFRAG_DEBUG", "")
	t.Setenv("SQLFRAG_DATABASE_URL", "")
	t.Setenv("DATABASE_URL", "")

	cfg, err := Load(t.TempDir())
	require.NoError(t, err)
	require.Equal(t, sqlfrag.Postgres, cfg.Dialect)
	require.Empty(t, cfg.DatabaseURL)
	require.False(t, cfg.Debug)
}

func TestLoad_FileAndEnv(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".sqlfrag.yaml"), []byte("dialect: mysql\ndebug: true\n"), 0o644))
	t.Setenv("SQLFRAG_DIALECT", "")
	t.Setenv("SQLFRAG_DEBUG", "")
	t.Setenv("SQLFRAG_DATABASE_URL", "")
	t.Setenv("DATABASE_URL", "postgres://localhost/jobly")

	cfg, err := Load(dir)
	require.NoError(t, err)
	require.Equal(t, sqlfrag.MySQL, cfg.Dialect)
	require.True(t, cfg.Debug)
	require.Equal(t, "postgres://localhost/jobly", cfg.DatabaseURL)

	t.Setenv("SQLFRAG_DIALECT", "sqlserver")
	cfg, err = Load(dir)
	require.NoError(t, err)
	require.Equal(t, sqlfrag.SQLServer, cfg.Dialect)
}

func TestLoad_DotEnv(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("SQLFRAG_DATABASE_URL=postgres://env/jobly\n"), 0o644))
	t.Setenv("SQLFRAG_DATABASE_URL", "")
	os.Unsetenv("SQLFRAG_DATABASE_URL")

	cfg, err := Load(dir)
	require.NoError(t, err)
	require.Equal(t, "postgres://env/jobly", cfg.DatabaseURL)
}

func TestLoad_BadDialect(t *testing.T) {
	t.Setenv("SQLFRAG_DIALECT", "oracle")
	_, err := Load(t.TempDir())
	require.ErrorIs(t, err, sqlfrag.ErrUnknownDialect)
}
