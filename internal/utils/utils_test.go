package utils_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skiffhq/skiff/internal/utils"
)

func TestContainsString(t *testing.T) {
	assert.True(t, utils.ContainsString([]string{"push", "pull_request"}, "push"))
	assert.False(t, utils.ContainsString([]string{"push"}, "manual"))
	assert.False(t, utils.ContainsString(nil, "push"))
}

func TestIsPathOccupied(t *testing.T) {
	t.Run("should be true for an existing file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "skiff.yaml")
		require.NoError(t, os.WriteFile(path, []byte("version: 1"), 0o640))

		occupied, err := utils.IsPathOccupied(path)
		require.NoError(t, err)
		assert.True(t, occupied)
	})

	t.Run("should be false for a missing path", func(t *testing.T) {
		occupied, err := utils.IsPathOccupied(filepath.Join(t.TempDir(), "missing"))
		require.NoError(t, err)
		assert.False(t, occupied)
	})
}
