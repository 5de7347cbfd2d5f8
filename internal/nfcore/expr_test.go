package nfcore_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/amstokely/nfsim/internal/nfcore"
)

func TestDefaultExpressionEvaluatorArithmetic(t *testing.T) {
	e := nfcore.NewDefaultExpressionEvaluator()

	cases := []struct {
		expr string
		want float64
	}{
		{"1 + 2 * 3", 7},
		{"(1 + 2) * 3", 9},
		{"2 ^ 3", 8},
		{"-2 + 3", 1},
		{"10 / 2 / 5", 1},
	}
	for _, c := range cases {
		v, err := e.Eval(c.expr, nil)
		require.NoError(t, err, c.expr)
		require.InDelta(t, c.want, v, 1e-9, c.expr)
	}
}

func TestDefaultExpressionEvaluatorVariablesAndFunctions(t *testing.T) {
	e := nfcore.NewDefaultExpressionEvaluator()
	scope := map[string]float64{"x": 4}

	v, err := e.Eval("sqrt(x) + min(1, 2)", scope)
	require.NoError(t, err)
	require.InDelta(t, 3.0, v, 1e-9)

	_, err = e.Eval("y + 1", scope)
	require.Error(t, err)
}

func TestDefaultExpressionEvaluatorDivisionByZero(t *testing.T) {
	e := nfcore.NewDefaultExpressionEvaluator()
	_, err := e.Eval("1 / 0", nil)
	require.Error(t, err)
}

func TestDefaultExpressionEvaluatorRejectsTrailingGarbage(t *testing.T) {
	e := nfcore.NewDefaultExpressionEvaluator()
	_, err := e.Eval("1 + 2 )", nil)
	require.Error(t, err)
}
