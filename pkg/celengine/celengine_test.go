package celengine

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCompileAndEvaluate(t *testing.T) {
	prg, err := Compile("weight * 0.25")
	require.NoError(t, err)

	v, err := Evaluate(prg, "plastic", 8)
	require.NoError(t, err)
	require.InDelta(t, 2.0, v, 1e-9)
}

func TestCompileConditionalOnMaterial(t *testing.T) {
	prg, err := Compile(`material == "metal" ? weight * 1.0 : weight * 0.5`)
	require.NoError(t, err)

	metal, err := Evaluate(prg, "metal", 2)
	require.NoError(t, err)
	require.InDelta(t, 2.0, metal, 1e-9)

	other, err := Evaluate(prg, "paper", 2)
	require.NoError(t, err)
	require.InDelta(t, 1.0, other, 1e-9)
}

func TestCompileRejectsNonDouble(t *testing.T) {
	_, err := Compile("weight > 1.0")
	require.Error(t, err)

	_, err = Compile("weight * ")
	require.Error(t, err)
}

func TestEvaluateRejectsNegative(t *testing.T) {
	prg, err := Compile("weight - 10.0")
	require.NoError(t, err)

	_, err = Evaluate(prg, "mixed", 1)
	require.Error(t, err)
}
