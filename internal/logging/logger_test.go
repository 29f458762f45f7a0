package logging

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewNopDoesNotPanic(t *testing.T) {
	l := NewNop()
	require.NotNil(t, l)

	timer := l.StartTimer(CategoryGraph, "AddNode")
	timer.Stop()
	require.NoError(t, l.Sync())
}

func TestForTagsCategory(t *testing.T) {
	l := NewNop()
	child := l.For(CategorySnapshot)
	require.NotNil(t, child)
}
