package store

import (
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeRunCorrupt(t *testing.T) {
	_, err := decodeRun("broken.json", []byte("{nope"))
	require.Error(t, err)
	assert.True(t, stderrors.Is(err, ErrCorrupt), "standard errors.Is must see ErrCorrupt")
	assert.Contains(t, err.Error(), "broken.json")

	_, err = decodeRun("empty.json", []byte(`{}`))
	assert.True(t, stderrors.Is(err, ErrCorrupt))

	run, err := decodeRun("ok.json", []byte(`{"id": "benchmark-2024-01-01T00-00-00-000Z"}`))
	require.NoError(t, err)
	assert.NotNil(t, run.Results)
	assert.NotNil(t, run.Stats)
}
