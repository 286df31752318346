// internal/domain/checkout/session.go
package checkout

import (
	"errors"
	"strings"
	"sync"
)

// Step is one stage of the linear order-placement workflow
type Step int

const (
	StepAddress  Step = 1
	StepPayment  Step = 2
	StepReview   Step = 3
	StepComplete Step = 4
)

// Title returns the display title of a step
func (s Step) Title() string {
	switch s {
	case StepAddress:
		return "Delivery Address"
	case StepPayment:
		return "Payment Method"
	case StepReview:
		return "Review Order"
	case StepComplete:
		return "Order Complete"
	default:
		return "Unknown"
	}
}

// SubmissionState tracks the order submission lifecycle
type SubmissionState string

const (
	SubmissionIdle       SubmissionState = "idle"
	SubmissionSubmitting SubmissionState = "submitting"
	SubmissionSucceeded  SubmissionState = "succeeded"
	SubmissionFailed     SubmissionState = "failed"
)

// DeliveryAddress is where the order ships
type DeliveryAddress struct {
	Street string `json:"street"`
	City   string `json:"city"`
	Area   string `json:"area"`
}

// Complete reports whether enough of the address is filled in to ship
func (a DeliveryAddress) Complete() bool {
	return strings.TrimSpace(a.Street) != "" && strings.TrimSpace(a.City) != ""
}

// Payment method identifiers
const (
	PaymentCashOnDelivery = "cash_on_delivery"
	PaymentOnline         = "online"
)

// PaymentMethod represents a payment option shown at step 2
type PaymentMethod struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Available   bool   `json:"available"`
	Recommended bool   `json:"recommended"`
}

// PaymentMethods lists the payment options. Online payment is
// presented but not yet selectable.
func PaymentMethods() []PaymentMethod {
	return []PaymentMethod{
		{
			ID:          PaymentCashOnDelivery,
			Name:        "Cash on Delivery",
			Description: "Pay when your order is delivered to your doorstep",
			Available:   true,
			Recommended: true,
		},
		{
			ID:          PaymentOnline,
			Name:        "Online Payment",
			Description: "Credit/Debit cards, JazzCash, EasyPaisa (Available soon)",
			Available:   false,
		},
	}
}

var (
	// ErrInvalidTransition rejects any step change that is not forward
	// or backward by exactly one step
	ErrInvalidTransition = errors.New("checkout: invalid step transition")

	// ErrReviewRequiresSubmit rejects advancing past review without a
	// successful order submission
	ErrReviewRequiresSubmit = errors.New("checkout: the review step completes through order submission")

	// ErrSessionComplete rejects mutations on a completed session
	ErrSessionComplete = errors.New("checkout: session already completed")

	// ErrPaymentMethodUnknown rejects a payment method id that is not offered
	ErrPaymentMethodUnknown = errors.New("checkout: unknown payment method")

	// ErrPaymentMethodUnavailable rejects a payment method that is
	// offered but not yet enabled
	ErrPaymentMethodUnavailable = errors.New("checkout: payment method not available yet")
)

// Session is the transient state of one user's checkout flow. It is
// created when checkout begins, mutated through its methods only, and
// discarded when the user completes or leaves checkout.
type Session struct {
	mu               sync.Mutex
	userID           uint
	step             Step
	address          DeliveryAddress
	paymentMethod    string
	instructions     string
	prescriptionPath string
	submission       SubmissionState
	orderNumber      string
}

func newSession(userID uint) *Session {
	return &Session{
		userID:        userID,
		step:          StepAddress,
		paymentMethod: PaymentCashOnDelivery,
		submission:    SubmissionIdle,
	}
}

// Step returns the current step
func (s *Session) Step() Step {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.step
}

// Next advances one step forward. Review advances only through a
// successful submission, and a completed session cannot move.
func (s *Session) Next() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.step {
	case StepAddress, StepPayment:
		s.step++
		return nil
	case StepReview:
		return ErrReviewRequiresSubmit
	default:
		return ErrSessionComplete
	}
}

// Back moves one step backward. The first step and the terminal step
// have no backward transition.
func (s *Session) Back() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.step {
	case StepPayment, StepReview:
		s.step--
		return nil
	case StepComplete:
		return ErrSessionComplete
	default:
		return ErrInvalidTransition
	}
}

// SetDeliveryAddress records the delivery address collected at step 1
func (s *Session) SetDeliveryAddress(addr DeliveryAddress) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.step == StepComplete {
		return ErrSessionComplete
	}
	s.address = addr
	return nil
}

// SetPaymentMethod records the payment method selected at step 2
func (s *Session) SetPaymentMethod(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.step == StepComplete {
		return ErrSessionComplete
	}

	for _, method := range PaymentMethods() {
		if method.ID != id {
			continue
		}
		if !method.Available {
			return ErrPaymentMethodUnavailable
		}
		s.paymentMethod = id
		return nil
	}
	return ErrPaymentMethodUnknown
}

// SetInstructions records free-text delivery instructions
func (s *Session) SetInstructions(text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.step == StepComplete {
		return ErrSessionComplete
	}
	s.instructions = text
	return nil
}

// AttachPrescription records the stored path of an uploaded
// prescription file
func (s *Session) AttachPrescription(path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.step == StepComplete {
		return ErrSessionComplete
	}
	s.prescriptionPath = path
	return nil
}

// SessionState is a read-only snapshot of a session
type SessionState struct {
	Step                 int             `json:"step"`
	StepTitle            string          `json:"step_title"`
	DeliveryAddress      DeliveryAddress `json:"delivery_address"`
	PaymentMethod        string          `json:"payment_method"`
	SpecialInstructions  string          `json:"special_instructions"`
	PrescriptionAttached bool            `json:"prescription_attached"`
	SubmissionState      SubmissionState `json:"submission_state"`
	OrderNumber          string          `json:"order_number,omitempty"`
}

// State returns a snapshot of the session for display
func (s *Session) State() SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()

	return SessionState{
		Step:                 int(s.step),
		StepTitle:            s.step.Title(),
		DeliveryAddress:      s.address,
		PaymentMethod:        s.paymentMethod,
		SpecialInstructions:  s.instructions,
		PrescriptionAttached: s.prescriptionPath != "",
		SubmissionState:      s.submission,
		OrderNumber:          s.orderNumber,
	}
}
