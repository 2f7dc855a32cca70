package leave

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestError_IsKind(t *testing.T) {
	err := fmt.Errorf("failed to submit: %w", ErrInsufficientBalanceFor("10", "5"))

	assert.ErrorIs(t, err, ErrInsufficientBalance)
	assert.False(t, errors.Is(err, ErrValidation))
	assert.ErrorIs(t, err, &Error{Kind: KindInsufficientBalance, Code: "INSUFFICIENT_BALANCE"})
	assert.False(t, errors.Is(err, &Error{Kind: KindInsufficientBalance, Code: "OTHER"}))

	e, ok := AsError(err)
	require.True(t, ok)
	assert.Equal(t, "INSUFFICIENT_BALANCE", e.Code)
	assert.Equal(t, "10", e.Details["requested"])
	assert.Equal(t, "5", e.Details["remaining"])
}

func TestAsError_Plain(t *testing.T) {
	_, ok := AsError(errors.New("boom"))
	assert.False(t, ok)
}
