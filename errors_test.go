package qio

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTryCatchReturnsNilOnOrdinaryReturn(t *testing.T) {
	def := tryCatch("phase", func() {})
	require.Nil(t, def)
}

func TestTryCatchCapturesPanicAsDefect(t *testing.T) {
	def := tryCatch("map", func() { panic("oops") })
	require.NotNil(t, def)
	require.Equal(t, "map", def.Phase)
	require.Equal(t, "oops", def.Value)
	require.NotEmpty(t, def.Stack)
}

func TestDefectErrorMessageIncludesPhaseAndValue(t *testing.T) {
	def := newDefect("chain", "bang")
	require.Contains(t, def.Error(), "chain")
	require.Contains(t, def.Error(), "bang")
}

func TestDefectUnwrapsUnderlyingError(t *testing.T) {
	inner := errors.New("root cause")
	def := newDefect("catch", inner)
	require.ErrorIs(t, def, inner)
}

func TestDefectUnwrapIsNilForNonErrorValue(t *testing.T) {
	def := newDefect("map", 42)
	require.Nil(t, def.Unwrap())
}
