package cli

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/daryltucker/dex-bench/internal/benchmark"
	"github.com/daryltucker/dex-bench/internal/model"
)

func setCategoryFlags(t *testing.T, all bool, cats ...string) {
	t.Helper()
	prevAll, prevCats := allCategories, categoryFlags
	allCategories, categoryFlags = all, cats
	t.Cleanup(func() { allCategories, categoryFlags = prevAll, prevCats })
}

func TestSelectedCategories(t *testing.T) {
	registry := benchmark.NewDefaultRegistry(nil)

	t.Run("none", func(t *testing.T) {
		setCategoryFlags(t, false)
		got, err := selectedCategories(registry)
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("all", func(t *testing.T) {
		setCategoryFlags(t, true)
		got, err := selectedCategories(registry)
		require.NoError(t, err)
		assert.Equal(t, registry.Categories(), got)
	})

	t.Run("explicit", func(t *testing.T) {
		setCategoryFlags(t, false, "structured-output")
		got, err := selectedCategories(registry)
		require.NoError(t, err)
		assert.Equal(t, []model.Category{model.CategoryStructuredOutput}, got)
	})

	t.Run("unknown", func(t *testing.T) {
		setCategoryFlags(t, false, "translation")
		_, err := selectedCategories(registry)
		assert.True(t, errors.Is(err, benchmark.ErrUnknownCategory))
	})

	t.Run("all with category", func(t *testing.T) {
		setCategoryFlags(t, true, "summarization")
		_, err := selectedCategories(registry)
		assert.Error(t, err)
	})
}
