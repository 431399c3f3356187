package storage_test

import (
	"context"
	"io"
	"testing"

	"github.com/SanekxArcs/vdg-app-demo-sub000/internal/config"
	"github.com/SanekxArcs/vdg-app-demo-sub000/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestLocalStorage_SaveOpenList(t *testing.T) {
	ctx := context.Background()
	s, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, s.Save(ctx, "finance_2024-01.xlsx", "application/octet-stream", []byte("first")))
	require.NoError(t, s.Save(ctx, "finance_2024-01.xlsx", "application/octet-stream", []byte("replaced")))
	require.NoError(t, s.Save(ctx, "materials_2024-01.xlsx", "application/octet-stream", []byte("m")))

	rc, err := s.Open(ctx, "finance_2024-01.xlsx")
	require.NoError(t, err)
	body, err := io.ReadAll(rc)
	require.NoError(t, rc.Close())
	require.NoError(t, err)
	assert.Equal(t, "replaced", string(body))

	all, err := s.List(ctx, "")
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "finance_2024-01.xlsx", all[0].Name)
	assert.Equal(t, int64(len("replaced")), all[0].Size)

	finance, err := s.List(ctx, "finance_")
	require.NoError(t, err)
	assert.Len(t, finance, 1)
}

func TestLocalStorage_MissingAndDelete(t *testing.T) {
	ctx := context.Background()
	s, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	_, err = s.Open(ctx, "nope.xlsx")
	assert.ErrorIs(t, err, storage.ErrNotFound)

	require.NoError(t, s.Save(ctx, "a.xlsx", "", []byte("x")))
	require.NoError(t, s.Delete(ctx, "a.xlsx"))
	require.NoError(t, s.Delete(ctx, "a.xlsx"))

	_, err = s.Open(ctx, "a.xlsx")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestValidateName(t *testing.T) {
	for _, name := range []string{"../etc/passwd", "a/b.xlsx", "", ".hidden", "a..b"} {
		assert.ErrorIs(t, storage.ValidateName(name), storage.ErrInvalidName, name)
	}
	assert.NoError(t, storage.ValidateName("finance_2024-01.xlsx"))
}

func TestNewStorage(t *testing.T) {
	ctx := context.Background()

	s, err := storage.NewStorage(ctx, &config.StorageConfig{Mode: "local", LocalBasePath: t.TempDir()}, zap.NewNop())
	require.NoError(t, err)
	assert.IsType(t, &storage.LocalStorage{}, s)

	_, err = storage.NewStorage(ctx, &config.StorageConfig{Mode: "azure"}, zap.NewNop())
	assert.Error(t, err)

	_, err = storage.NewStorage(ctx, &config.StorageConfig{Mode: "ftp"}, zap.NewNop())
	assert.Error(t, err)
}
