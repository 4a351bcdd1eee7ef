package contextx

import (
	"context"
	"fmt"
)

// Operator: идентификатор оператора, подтверждающего или отклоняющего сделки.
type Operator string

type contextKeyOperator struct{}

func (o Operator) String() string {
	return string(o)
}

func WithOperator(ctx context.Context, operator Operator) context.Context {
	return context.WithValue(ctx, contextKeyOperator{}, operator)
}

func OperatorFromContext(ctx context.Context) (Operator, error) {
	operator, ok := ctx.Value(contextKeyOperator{}).(Operator)
	if !ok {
		return "", fmt.Errorf("operator: %w", ErrNoValue)
	}

	return operator, nil
}

// OperatorOrSystem возвращает оператора из контекста или "system" для фоновых задач.
func OperatorOrSystem(ctx context.Context) Operator {
	operator, err := OperatorFromContext(ctx)
	if err != nil || operator == "" {
		return "system"
	}

	return operator
}
