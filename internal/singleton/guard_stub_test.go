//go:build !windows

package singleton

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAcquireThenAcquireAgainFails(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	g, err := Acquire()
	require.NoError(t, err)
	defer g.Close()

	_, err = Acquire()
	assert.ErrorIs(t, err, ErrAlreadyRunning)
}

func TestAcquireAfterCloseSucceeds(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	g, err := Acquire()
	require.NoError(t, err)
	require.NoError(t, g.Close())

	g2, err := Acquire()
	require.NoError(t, err)
	require.NoError(t, g2.Close())
}
