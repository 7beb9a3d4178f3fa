//go:build unix

package interrupt

import (
	"context"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignalSource_DeliversInterrupt(t *testing.T) {
	src := NewSignalSource()
	defer src.Close()

	first, err := src.Subscribe()
	require.NoError(t, err)
	second, err := src.Subscribe()
	require.NoError(t, err)
	assert.Equal(t, 2, src.Len())

	require.NoError(t, syscall.Kill(syscall.Getpid(), syscall.SIGINT))

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	assert.ErrorIs(t, Wait(ctx, first), ErrInterrupted)
	assert.ErrorIs(t, Wait(ctx, second), ErrInterrupted)
}
