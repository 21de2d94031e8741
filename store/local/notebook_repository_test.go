package local_test

import (
	"context"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skiffhq/skiff/core/deploy"
	"github.com/skiffhq/skiff/store/local"
)

func TestNotebookRepositoryGetAll(t *testing.T) {
	ctx := context.Background()

	t.Run("should discover notebooks sorted by name", func(t *testing.T) {
		fs := afero.NewMemMapFs()
		writeFile(t, fs, "/work/notebooks/zeta.sql", "select 1")
		writeFile(t, fs, "/work/notebooks/example.py", "print('hi')")

		repo := local.NewNotebookRepository(fs, "/work", "notebooks")
		notebooks, err := repo.GetAll(ctx)

		require.NoError(t, err)
		require.Len(t, notebooks, 2)
		assert.Equal(t, "example", notebooks[0].Name)
		assert.Equal(t, "notebooks/example.py", notebooks[0].LocalPath)
		assert.Equal(t, "PYTHON", notebooks[0].Language)
		assert.Equal(t, "SOURCE", notebooks[0].Format)
		assert.Equal(t, "zeta", notebooks[1].Name)
		assert.Equal(t, "SQL", notebooks[1].Language)
	})

	t.Run("should ignore unknown extensions and directories", func(t *testing.T) {
		fs := afero.NewMemMapFs()
		writeFile(t, fs, "/work/notebooks/example.py", "print('hi')")
		writeFile(t, fs, "/work/notebooks/readme.md", "docs")
		require.NoError(t, fs.MkdirAll("/work/notebooks/archive", 0o750))

		repo := local.NewNotebookRepository(fs, "/work", "notebooks")
		notebooks, err := repo.GetAll(ctx)

		require.NoError(t, err)
		require.Len(t, notebooks, 1)
		assert.Equal(t, "example", notebooks[0].Name)
	})

	t.Run("should apply the sidecar overrides", func(t *testing.T) {
		fs := afero.NewMemMapFs()
		writeFile(t, fs, "/work/notebooks/example.py", "print('hi')")
		writeFile(t, fs, "/work/notebooks/example.skiff.yaml", "destination: /Shared/custom\nformat: AUTO\n")

		repo := local.NewNotebookRepository(fs, "/work", "notebooks")
		notebooks, err := repo.GetAll(ctx)

		require.NoError(t, err)
		require.Len(t, notebooks, 1)
		assert.Equal(t, "/Shared/custom", notebooks[0].Destination)
		assert.Equal(t, "AUTO", notebooks[0].Format)
		assert.Equal(t, "PYTHON", notebooks[0].Language)
	})

	t.Run("should return sentinel when the dir does not exist", func(t *testing.T) {
		repo := local.NewNotebookRepository(afero.NewMemMapFs(), "/work", "notebooks")

		_, err := repo.GetAll(ctx)
		assert.ErrorIs(t, err, deploy.ErrNoNotebooks)
	})

	t.Run("should return sentinel when the dir holds no notebooks", func(t *testing.T) {
		fs := afero.NewMemMapFs()
		writeFile(t, fs, "/work/notebooks/readme.md", "docs")

		repo := local.NewNotebookRepository(fs, "/work", "notebooks")
		_, err := repo.GetAll(ctx)
		assert.ErrorIs(t, err, deploy.ErrNoNotebooks)
	})
}

func TestNotebookRepositoryGetByName(t *testing.T) {
	ctx := context.Background()

	t.Run("should find the notebook by its base name", func(t *testing.T) {
		fs := afero.NewMemMapFs()
		writeFile(t, fs, "/work/notebooks/example.py", "print('hi')")

		repo := local.NewNotebookRepository(fs, "/work", "notebooks")
		notebook, err := repo.GetByName(ctx, "example")

		require.NoError(t, err)
		assert.Equal(t, "notebooks/example.py", notebook.LocalPath)
	})

	t.Run("should return sentinel for unknown names", func(t *testing.T) {
		fs := afero.NewMemMapFs()
		writeFile(t, fs, "/work/notebooks/example.py", "print('hi')")

		repo := local.NewNotebookRepository(fs, "/work", "notebooks")
		_, err := repo.GetByName(ctx, "missing")
		assert.ErrorIs(t, err, deploy.ErrNoSuchSpec)
	})

	t.Run("should reject an empty name", func(t *testing.T) {
		repo := local.NewNotebookRepository(afero.NewMemMapFs(), "/work", "notebooks")

		_, err := repo.GetByName(ctx, " ")
		assert.Error(t, err)
	})
}

func writeFile(t *testing.T, fs afero.Fs, path, content string) {
	t.Helper()
	require.NoError(t, afero.WriteFile(fs, path, []byte(content), 0o640))
}
