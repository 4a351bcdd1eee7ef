package contextx_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"card_arbitrage/pkg/contextx"
)

func TestOperator(t *testing.T) {
	rq := require.New(t)
	ctx := context.Background()

	var testOperatorEmpty contextx.Operator

	testOperatorNotEmpty := contextx.Operator("desk-1")

	operator, err := contextx.OperatorFromContext(ctx)
	rq.Equal(testOperatorEmpty, operator)
	rq.ErrorIs(err, contextx.ErrNoValue)
	rq.ErrorContains(err, "operator: no value in context")
	rq.Equal(contextx.Operator("system"), contextx.OperatorOrSystem(ctx))

	ctx = contextx.WithOperator(ctx, testOperatorNotEmpty)

	operator, err = contextx.OperatorFromContext(ctx)
	rq.Equal(testOperatorNotEmpty, operator)
	rq.NoError(err)
	rq.Equal(testOperatorNotEmpty, contextx.OperatorOrSystem(ctx))
}
