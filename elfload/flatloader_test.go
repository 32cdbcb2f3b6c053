package elfload

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"grasskernel/proc"
)

func noopRead(blockNo, nBlocks uint32, dst []byte) error { return nil }

func TestLoadReturnsRegisteredBody(t *testing.T) {
	l := NewFlatLoader()
	called := false
	l.Register(1, func(api proc.API) { called = true })

	entry, err := l.Load(1, noopRead)
	require.NoError(t, err)

	entry(nil)
	assert.True(t, called)
}

func TestLoadUnknownPidFails(t *testing.T) {
	l := NewFlatLoader()
	_, err := l.Load(7, noopRead)
	assert.Error(t, err)
}
