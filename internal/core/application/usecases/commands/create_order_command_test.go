package commands_test

import (
	"encoding/json"
	"testing"

	"kitchenpos/internal/core/application/usecases/commands"
	"kitchenpos/internal/pkg/errs"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCreateOrderCommand_ValidInput(t *testing.T) {
	items := []json.RawMessage{json.RawMessage(`{"name":"Burger","qty":2}`)}

	cmd, err := commands.NewCreateOrderCommand(items, decimal.RequireFromString("200"), "no onions", commands.CreateOrderOptions{})

	require.NoError(t, err)
	assert.Equal(t, items, cmd.Items())
	assert.Equal(t, "200", cmd.Total().String())
	assert.Equal(t, "no onions", cmd.Notes())
	assert.NoError(t, cmd.Validate())
}

func TestNewCreateOrderCommand_EmptyItemsAllowedByDefault(t *testing.T) {
	cmd, err := commands.NewCreateOrderCommand(nil, decimal.Zero, "", commands.CreateOrderOptions{})

	require.NoError(t, err)
	assert.Empty(t, cmd.Items())
}

func TestNewCreateOrderCommand_EmptyItemsRejectedWhenRequired(t *testing.T) {
	_, err := commands.NewCreateOrderCommand(nil, decimal.Zero, "", commands.CreateOrderOptions{RequireItems: true})

	require.Error(t, err)
	assert.ErrorIs(t, err, commands.ErrItemsAreRequired)
	assert.True(t, errs.IsValidation(err))
}

func TestNewCreateOrderCommand_NegativeTotal(t *testing.T) {
	_, err := commands.NewCreateOrderCommand(nil, decimal.RequireFromString("-0.01"), "", commands.CreateOrderOptions{})

	require.Error(t, err)
	assert.ErrorIs(t, err, errs.ErrValueIsInvalid)
}

func TestNewCreateOrderCommand_InvalidItem(t *testing.T) {
	items := []json.RawMessage{json.RawMessage(`{"name":`)}

	_, err := commands.NewCreateOrderCommand(items, decimal.Zero, "", commands.CreateOrderOptions{})

	require.Error(t, err)
	assert.ErrorIs(t, err, errs.ErrValueIsInvalid)
}

func TestCreateOrderCommand_ZeroValueIsNotConstructed(t *testing.T) {
	var cmd commands.CreateOrderCommand

	assert.ErrorIs(t, cmd.Validate(), commands.ErrCreateOrderCommandIsNotConstructed)
}
