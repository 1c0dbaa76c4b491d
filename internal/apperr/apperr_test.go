package apperr

import (
	"errors"
	"fmt"
	"testing"

	pkgerrors "github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

func TestMessage_PassesServerMessageThrough(t *testing.T) {
	err := pkgerrors.Wrap(Business("Shipment already closed"), "update status")
	require.Equal(t, "Shipment already closed", Message(err, "fallback"))
	require.Equal(t, KindBusiness, KindOf(err))
}

func TestMessage_FallbackForTransport(t *testing.T) {
	err := Transport(errors.New("connection refused"))
	require.Equal(t, "fallback", Message(err, "fallback"))
	require.Equal(t, DefaultMessage, Message(err, ""))
	require.True(t, Is(err, KindTransport))
}

func TestMessage_PlainError(t *testing.T) {
	require.Equal(t, "x", Message(errors.New("boom"), "x"))
	require.Equal(t, Kind(""), KindOf(errors.New("boom")))
	require.False(t, Is(nil, KindTransport))
}

func TestError_UnwrapAndFormat(t *testing.T) {
	inner := errors.New("dial tcp")
	err := Transport(inner)
	require.ErrorIs(t, err, inner)
	require.Contains(t, err.Error(), "transport")

	v := Validationf("pickup window %s", "missing")
	require.Equal(t, "validation: pickup window missing", v.Error())
	require.True(t, Is(fmt.Errorf("wrapped: %w", v), KindValidation))
}
