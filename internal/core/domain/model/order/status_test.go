package order_test

import (
	"fmt"
	"testing"

	"kitchenpos/internal/core/domain/model/order"
	"kitchenpos/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsValidStatus(t *testing.T) {
	t.Run("should accept the five enumerated statuses", func(t *testing.T) {
		for _, name := range []string{"pending", "received", "cooking", "ready", "completed"} {
			assert.True(t, order.IsValidStatus(name), name)
		}
	})

	t.Run("should reject anything else", func(t *testing.T) {
		for _, name := range []string{"", "bogus", "not_a_status", "Cooking", " ready", "unknown", "cancelled"} {
			assert.False(t, order.IsValidStatus(name), name)
		}
	})
}

func TestParseStatus(t *testing.T) {
	t.Run("should round trip through String", func(t *testing.T) {
		for _, s := range order.Statuses() {
			t.Run(s.String(), func(t *testing.T) {
				parsed, err := order.ParseStatus(s.String())

				require.NoError(t, err)
				assert.Equal(t, s, parsed)
			})
		}
	})

	t.Run("should return a validation error for unknown names", func(t *testing.T) {
		parsed, err := order.ParseStatus("not_a_status")

		require.ErrorIs(t, err, errs.ErrValueIsInvalid)
		assert.IsType(t, &errs.ValueIsInvalidError{}, err)
		assert.Equal(t, order.Unknown, parsed)
		assert.Contains(t, err.Error(), `"not_a_status" is not a valid status`)
	})
}

func TestStatus_Validate(t *testing.T) {
	for _, s := range order.Statuses() {
		require.NoError(t, s.Validate())
	}

	for _, s := range []order.Status{order.Unknown, order.Status(-1), order.Status(6), order.Status(100)} {
		t.Run(fmt.Sprintf("should reject %d", int(s)), func(t *testing.T) {
			err := s.Validate()

			require.ErrorIs(t, err, errs.ErrValueIsInvalid)
			assert.Equal(t, "unknown", s.String())
		})
	}
}

func TestStatuses_FlowOrder(t *testing.T) {
	assert.Equal(t,
		[]order.Status{order.Pending, order.Received, order.Cooking, order.Ready, order.Completed},
		order.Statuses())
	assert.True(t, order.Completed.IsTerminal())
	assert.False(t, order.Ready.IsTerminal())
}
