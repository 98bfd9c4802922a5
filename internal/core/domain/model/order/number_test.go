package order_test

import (
	"testing"
	"time"

	"kitchenpos/internal/core/domain/model/order"
	"kitchenpos/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewNumber(t *testing.T) {
	day := time.Date(2025, time.January, 15, 18, 30, 0, 0, time.Local)

	t.Run("should zero pad the sequence to four digits", func(t *testing.T) {
		n, err := order.NewNumber(day, 7)

		require.NoError(t, err)
		assert.Equal(t, "ORD202501150007", n.String())
		assert.Equal(t, "20250115", n.Day())
		assert.Equal(t, 7, n.Sequence())
	})

	t.Run("should accept the largest four digit sequence", func(t *testing.T) {
		n, err := order.NewNumber(day, order.MaxDailySequence)

		require.NoError(t, err)
		assert.Equal(t, "ORD202501159999", n.String())
	})

	t.Run("should reject sequences that do not fit", func(t *testing.T) {
		for _, seq := range []int{0, -1, 10000} {
			_, err := order.NewNumber(day, seq)

			require.ErrorIs(t, err, errs.ErrValueIsOutOfRange)
		}
	})
}

func TestParseNumber(t *testing.T) {
	t.Run("should parse a persisted number", func(t *testing.T) {
		n, err := order.ParseNumber("ORD202501150007")

		require.NoError(t, err)
		assert.Equal(t, "ORD202501150007", n.String())
		assert.Equal(t, 7, n.Sequence())
	})

	t.Run("should reject malformed numbers", func(t *testing.T) {
		for _, raw := range []string{"", "ORD_20250115_007", "ORD2025011500071", "ORD202513150007", "ORD202501150000"} {
			_, err := order.ParseNumber(raw)

			require.Error(t, err, raw)
			assert.True(t, errs.IsValidation(err), raw)
		}
	})
}

func TestNumber_Validate(t *testing.T) {
	var n order.Number

	assert.True(t, n.IsZero())
	assert.Equal(t, "", n.String())
	require.ErrorIs(t, n.Validate(), errs.ErrValueIsRequired)
}
