package zlog

import (
	"bytes"
	"encoding/json"
	"io"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestFor_TagsComponentField(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	t.Cleanup(func() { SetOutput(io.Discard) })
	SetLevel(zerolog.InfoLevel)

	For("fixpoint").Info().Msg("hello")

	var got map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	require.Equal(t, "fixpoint", got["component"])
	require.Equal(t, "hello", got["message"])
}

func TestWithFunction_AddsFuncField(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	t.Cleanup(func() { SetOutput(io.Discard) })
	SetLevel(zerolog.InfoLevel)

	For("blockexec").WithFunction("main").Info().Msg("entered")

	var got map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	require.Equal(t, "blockexec", got["component"])
	require.Equal(t, "main", got["func"])
}

func TestSetLevel_SuppressesBelowThreshold(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	t.Cleanup(func() { SetOutput(io.Discard) })
	SetLevel(zerolog.WarnLevel)

	For("resolver").Debug().Msg("should not appear")

	require.Empty(t, buf.String())
}
