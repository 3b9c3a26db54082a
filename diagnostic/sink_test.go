package diagnostic

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSink_DeduplicatesByFileOffsetNameMessage(t *testing.T) {
	t.Parallel()

	s := NewSink()
	d := Diagnostic{Name: "dup", Message: "m", Range: Range{File: "a.c", Offset: 10}}
	s.Add(d)
	s.Add(d) // identical key, dropped
	s.Add(Diagnostic{Name: "dup", Message: "different message", Range: Range{File: "a.c", Offset: 10}})

	got := s.Diagnostics()
	require.Len(t, got, 2)
}

func TestSink_DiagnosticsSortedByFileThenOffsetThenName(t *testing.T) {
	t.Parallel()

	s := NewSink()
	s.Add(Diagnostic{Name: "z", Message: "1", Range: Range{File: "b.c", Offset: 5}})
	s.Add(Diagnostic{Name: "a", Message: "2", Range: Range{File: "a.c", Offset: 20}})
	s.Add(Diagnostic{Name: "b", Message: "3", Range: Range{File: "a.c", Offset: 5}})

	got := s.Diagnostics()
	require.Len(t, got, 3)
	require.Equal(t, "a.c", got[0].Range.File)
	require.Equal(t, 5, got[0].Range.Offset)
	require.Equal(t, "a.c", got[1].Range.File)
	require.Equal(t, 20, got[1].Range.Offset)
	require.Equal(t, "b.c", got[2].Range.File)
}

func TestSink_HasErrors(t *testing.T) {
	t.Parallel()

	s := NewSink()
	require.False(t, s.HasErrors())

	s.Add(Diagnostic{Level: LevelWarning, Name: "w", Range: Range{File: "a.c"}})
	require.False(t, s.HasErrors())

	s.Add(Diagnostic{Level: LevelError, Name: "e", Range: Range{File: "a.c"}})
	require.True(t, s.HasErrors())
}
