package settings

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIntoContextRoundTrip(t *testing.T) {
	params := &Run{NoColor: true, ExitOnError: true}
	ctx := IntoContext(context.Background(), params)

	got, ok := FromContext(ctx)
	require.True(t, ok)
	assert.Same(t, params, got)
}

func TestFromContextWithoutRun(t *testing.T) {
	got, ok := FromContext(context.Background())
	assert.False(t, ok)
	assert.Nil(t, got)
}

func TestIntoContextReplacesExistingRun(t *testing.T) {
	first := &Run{NoColor: true}
	second := &Run{MinLogLevel: -1}
	ctx := IntoContext(IntoContext(context.Background(), first), second)

	got, ok := FromContext(ctx)
	require.True(t, ok)
	assert.Same(t, second, got)
}
