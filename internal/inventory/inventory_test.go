package inventory

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestCanFulfill(t *testing.T) {
	assert.True(t, CanFulfill(5, 3))
	assert.True(t, CanFulfill(5, 5))
	assert.False(t, CanFulfill(5, 6))
	assert.False(t, CanFulfill(0, 1))
}

func TestOrderable(t *testing.T) {
	assert.True(t, Orderable(decimal.NewFromFloat(0.01)))
	assert.False(t, Orderable(decimal.Zero))
	assert.False(t, Orderable(decimal.NewFromInt(-1)))
}

func TestValidateProductInput(t *testing.T) {
	assert.NoError(t, ValidateProductInput(decimal.NewFromInt(10), 0))
	assert.NoError(t, ValidateProductInput(decimal.NewFromFloat(9.99), 100))

	assert.ErrorIs(t, ValidateProductInput(decimal.Zero, 5), ErrNonPositivePrice)
	assert.ErrorIs(t, ValidateProductInput(decimal.NewFromInt(-3), 5), ErrNonPositivePrice)
	assert.ErrorIs(t, ValidateProductInput(decimal.NewFromInt(10), -1), ErrNegativeStock)
}
