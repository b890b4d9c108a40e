package options

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

type settings struct {
	size  int
	label string
}

func TestApply_InOrder(t *testing.T) {
	s := &settings{}
	err := Apply(s,
		NoError(func(s *settings) { s.size = 8 }),
		NoError(func(s *settings) { s.label = "live" }),
		NoError(func(s *settings) { s.size = 16 }),
	)
	require.NoError(t, err)
	require.Equal(t, 16, s.size, "later options win")
	require.Equal(t, "live", s.label)
}

func TestApply_StopsAtFirstError(t *testing.T) {
	boom := errors.New("boom")
	s := &settings{}
	err := Apply(s,
		NoError(func(s *settings) { s.size = 8 }),
		New(func(*settings) error { return boom }),
		NoError(func(s *settings) { s.size = 32 }),
	)
	require.ErrorIs(t, err, boom)
	require.Equal(t, 8, s.size, "options after the failure must not run")
}

func TestApply_Empty(t *testing.T) {
	require.NoError(t, Apply(&settings{}))
}
