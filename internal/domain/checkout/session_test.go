// internal/domain/checkout/session_test.go
package checkout

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSessionDefaults(t *testing.T) {
	session := newSession(1)

	state := session.State()
	assert.Equal(t, int(StepAddress), state.Step)
	assert.Equal(t, "Delivery Address", state.StepTitle)
	assert.Equal(t, PaymentCashOnDelivery, state.PaymentMethod)
	assert.Equal(t, SubmissionIdle, state.SubmissionState)
	assert.False(t, state.PrescriptionAttached)
}

func TestSessionForwardTransitions(t *testing.T) {
	session := newSession(1)

	require.NoError(t, session.Next())
	assert.Equal(t, StepPayment, session.Step())

	require.NoError(t, session.Next())
	assert.Equal(t, StepReview, session.Step())

	// Review completes through submission, never through Next
	err := session.Next()
	assert.ErrorIs(t, err, ErrReviewRequiresSubmit)
	assert.Equal(t, StepReview, session.Step())
}

func TestSessionBackwardTransitions(t *testing.T) {
	session := newSession(1)

	err := session.Back()
	assert.ErrorIs(t, err, ErrInvalidTransition)

	require.NoError(t, session.Next())
	require.NoError(t, session.Back())
	assert.Equal(t, StepAddress, session.Step())
}

func TestSessionCompleteIsTerminal(t *testing.T) {
	session := newSession(1)
	session.step = StepComplete

	assert.ErrorIs(t, session.Next(), ErrSessionComplete)
	assert.ErrorIs(t, session.Back(), ErrSessionComplete)
	assert.ErrorIs(t, session.SetDeliveryAddress(DeliveryAddress{}), ErrSessionComplete)
	assert.ErrorIs(t, session.SetPaymentMethod(PaymentCashOnDelivery), ErrSessionComplete)
	assert.ErrorIs(t, session.SetInstructions("leave at door"), ErrSessionComplete)
	assert.ErrorIs(t, session.AttachPrescription("rx.pdf"), ErrSessionComplete)
}

func TestSessionSetPaymentMethod(t *testing.T) {
	session := newSession(1)

	assert.NoError(t, session.SetPaymentMethod(PaymentCashOnDelivery))

	err := session.SetPaymentMethod(PaymentOnline)
	assert.ErrorIs(t, err, ErrPaymentMethodUnavailable)

	err = session.SetPaymentMethod("bitcoin")
	assert.ErrorIs(t, err, ErrPaymentMethodUnknown)

	assert.Equal(t, PaymentCashOnDelivery, session.State().PaymentMethod)
}

func TestPaymentMethodsListing(t *testing.T) {
	methods := PaymentMethods()
	require.Len(t, methods, 2)

	assert.Equal(t, PaymentCashOnDelivery, methods[0].ID)
	assert.True(t, methods[0].Available)
	assert.True(t, methods[0].Recommended)

	assert.Equal(t, PaymentOnline, methods[1].ID)
	assert.False(t, methods[1].Available)
}

func TestDeliveryAddressComplete(t *testing.T) {
	assert.False(t, DeliveryAddress{}.Complete())
	assert.False(t, DeliveryAddress{Street: "12 Mall Road"}.Complete())
	assert.False(t, DeliveryAddress{Street: "  ", City: "Lahore"}.Complete())
	assert.True(t, DeliveryAddress{Street: "12 Mall Road", City: "Lahore"}.Complete())
}

func TestStepTitles(t *testing.T) {
	assert.Equal(t, "Delivery Address", StepAddress.Title())
	assert.Equal(t, "Payment Method", StepPayment.Title())
	assert.Equal(t, "Review Order", StepReview.Title())
	assert.Equal(t, "Order Complete", StepComplete.Title())
}
