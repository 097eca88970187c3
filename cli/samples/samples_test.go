package samples

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGet(t *testing.T) {
	assert.Equal(t, []string{"legacy", "new"}, Names())

	a, err := Get("legacy")
	require.NoError(t, err)
	require.NotEmpty(t, a)
	a[0] = 'x'

	b, err := Get("legacy")
	require.NoError(t, err)
	assert.Equal(t, byte('{'), b[0], "callers get their own copy")

	_, err = Get("hybrid")
	assert.ErrorContains(t, err, `unknown sample "hybrid"`)
}
