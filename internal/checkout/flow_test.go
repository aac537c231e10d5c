package checkout

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlow_HappyPath(t *testing.T) {
	v := NewValidator()
	f := NewFlow()
	assert.Equal(t, Idle, f.State())

	require.NoError(t, f.Fill(validForm()))
	assert.Equal(t, FormFilled, f.State())
	require.NoError(t, f.Validate(v))
	assert.Equal(t, Validated, f.State())
	require.NoError(t, f.Place())
	assert.Equal(t, OrderPlaced, f.State())

	assert.ErrorIs(t, f.Fill(validForm()), ErrInvalidTransition)
	f.Reset()
	assert.Equal(t, Idle, f.State())
}

func TestFlow_IllegalTransitions(t *testing.T) {
	v := NewValidator()
	f := NewFlow()
	assert.ErrorIs(t, f.Validate(v), ErrInvalidTransition)
	assert.ErrorIs(t, f.Place(), ErrInvalidTransition)

	bad := validForm()
	bad.Payment.CVV = "1"
	require.NoError(t, f.Fill(bad))
	assert.ErrorIs(t, f.Validate(v), ErrInvalidForm)
	assert.Equal(t, FormFilled, f.State())
	assert.ErrorIs(t, f.Place(), ErrInvalidTransition)

	require.NoError(t, f.Fill(validForm()))
	require.NoError(t, f.Validate(v))
	require.NoError(t, f.Fill(validForm()))
	assert.Equal(t, FormFilled, f.State())
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "order_placed", OrderPlaced.String())
	assert.Equal(t, "state(9)", State(9).String())
}
