package symbolic

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/knightfall/knightfall/frontend"
	"github.com/knightfall/knightfall/internal/testutil"
)

func TestKind_IsLeaf(t *testing.T) {
	t.Parallel()

	leaves := []Kind{KindScalarInt, KindScalarFloat, KindRegionSymVal, KindRegionSymExtent, KindRegionAddr, KindSymbolConjured}
	for _, k := range leaves {
		require.True(t, k.IsLeaf(), "%v must be a leaf kind", k)
	}
	nonLeaves := []Kind{KindCastSym, KindUnarySymExpr, KindBinarySymExpr}
	for _, k := range nonLeaves {
		require.False(t, k.IsLeaf(), "%v must not be a leaf kind", k)
	}
}

func TestBinarySymExpr_WorstComplexity_AddTakesMax(t *testing.T) {
	t.Parallel()

	m := NewManager()
	lhs := m.GetScalarInt(1, testutil.IntType)
	deep := m.GetUnarySymExpr(m.GetUnarySymExpr(lhs, frontend.UnaryNot, testutil.IntType), frontend.UnaryNot, testutil.IntType)

	add := m.GetBinarySymExpr(lhs, deep, frontend.BinaryAdd, testutil.IntType)
	require.Equal(t, deep.WorstComplexity(), add.WorstComplexity())
}

func TestBinarySymExpr_WorstComplexity_MulMultipliesAndSaturates(t *testing.T) {
	t.Parallel()

	m := NewManager()
	lhs := m.GetScalarInt(1, testutil.IntType)
	rhs := m.GetScalarInt(2, testutil.IntType)

	mul := m.GetBinarySymExpr(lhs, rhs, frontend.BinaryMul, testutil.IntType)
	require.Equal(t, uint(1), mul.WorstComplexity(), "two leaves multiply to 1*1=1")
}

func TestCastSym_WorstComplexityDelegatesToOperand(t *testing.T) {
	t.Parallel()

	m := NewManager()
	operand := m.GetScalarInt(1, testutil.IntType)
	cast := m.GetCastSymExpr(operand, testutil.IntType, testutil.BoolType)
	require.Equal(t, operand.WorstComplexity(), cast.WorstComplexity())
	require.False(t, cast.IsLeaf())
}
