package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestValidationError_MatchesInvalid(t *testing.T) {
	t.Parallel()

	v := NewValidation()
	require.NoError(t, v.Err())

	v.Check(false, "pickUp", "required")
	v.Check(true, "dropOff", "required")
	v.Add("pickUp", "second message is ignored")

	err := fmt.Errorf("create order: %w", v.Err())
	require.ErrorIs(t, err, ErrInvalid)

	var ve *ValidationError
	require.True(t, errors.As(err, &ve))
	require.Equal(t, map[string]string{"pickUp": "required"}, ve.Fields)
	require.Equal(t, "invalid input: pickUp: required", ve.Error())
}

func TestReason_UnwrapsToKind(t *testing.T) {
	t.Parallel()

	err := fmt.Errorf("place bid: %w", Reject(ErrOrderNotAvailable, "vehicle_mismatch"))
	require.ErrorIs(t, err, ErrOrderNotAvailable)
	require.NotErrorIs(t, err, ErrDriverNotEligible)

	reason, ok := ReasonOf(err)
	require.True(t, ok)
	require.Equal(t, "vehicle_mismatch", reason)

	_, ok = ReasonOf(errors.New("boom"))
	require.False(t, ok)
	_, ok = ReasonOf(nil)
	require.False(t, ok)
}
