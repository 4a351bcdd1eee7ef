package domain_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"card_arbitrage/internal/domain"
	"card_arbitrage/pkg/errcodes"
)

func TestAppError(t *testing.T) {
	rq := require.New(t)

	cause := errors.New("connection reset")
	err := fmt.Errorf("repo.Get: %w", domain.WrapError(cause, errcodes.InternalServerError, "failed to get deal"))

	rq.True(domain.IsAppError(err))
	rq.ErrorIs(err, cause)
	rq.ErrorContains(err, "failed to get deal: connection reset")

	code, ok := domain.GetCode(err)
	rq.True(ok)
	rq.Equal(errcodes.InternalServerError, code)

	rq.True(domain.HasCode(domain.NewError(errcodes.DealNotFound, "deal not found"), errcodes.DealNotFound))
	rq.False(domain.HasCode(cause, errcodes.DealNotFound))
	rq.False(domain.IsAppError(cause))
}
