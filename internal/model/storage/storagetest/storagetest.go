// Package storagetest opens throwaway sqlite storages for tests.
package storagetest

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"max.ks1230/travel-finances-bot/internal/entity/currency"
	"max.ks1230/travel-finances-bot/internal/model/storage"
)

type sqliteConfig struct {
	path string
}

func (c sqliteConfig) Driver() string   { return "sqlite" }
func (c sqliteConfig) Path() string     { return c.path }
func (c sqliteConfig) Host() string     { return "" }
func (c sqliteConfig) Username() string { return "" }
func (c sqliteConfig) Password() string { return "" }
func (c sqliteConfig) Database() string { return "" }

// New returns a migrated storage with default settings for the IDR anchor.
func New(t testing.TB) *storage.Storage {
	t.Helper()

	ctx := context.Background()
	s, err := storage.New(ctx, sqliteConfig{path: filepath.Join(t.TempDir(), "test.sqlite")})
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	require.NoError(t, s.EnsureSettings(ctx, currency.IDR))
	return s
}
