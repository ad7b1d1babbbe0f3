package screen

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionStartsIdle(t *testing.T) {
	var s Session
	_, editing := s.Editing()
	assert.False(t, editing)
}

func TestSessionStartEditAndFinish(t *testing.T) {
	var s Session
	s.StartEdit(5)

	target, editing := s.Editing()
	require.True(t, editing)
	assert.Equal(t, int64(5), target)

	s.Finish()
	_, editing = s.Editing()
	assert.False(t, editing)
}

func TestSessionSecondEditReplacesTarget(t *testing.T) {
	var s Session
	s.StartEdit(5)
	s.StartEdit(9)

	target, editing := s.Editing()
	require.True(t, editing)
	assert.Equal(t, int64(9), target)
}

func TestSessionCancelReturnsToIdle(t *testing.T) {
	var s Session
	s.StartEdit(5)
	s.Cancel()

	_, editing := s.Editing()
	assert.False(t, editing)
}
