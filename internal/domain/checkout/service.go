// internal/domain/checkout/service.go
package checkout

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
	"github.com/your-org/pharmacy-backend/internal/domain/cart"
)

var (
	// ErrNoSession means checkout was not begun for this user
	ErrNoSession = errors.New("checkout: no active session")

	// ErrSubmitInFlight rejects a second submit while one is in
	// progress; the duplicate attempt is a no-op
	ErrSubmitInFlight = errors.New("checkout: submission already in progress")

	// ErrEmptyCart refuses submission of an empty cart before any
	// network call is made
	ErrEmptyCart = errors.New("checkout: cart is empty")

	// ErrNotAtReview means submit was called from a step other than review
	ErrNotAtReview = errors.New("checkout: orders are placed from the review step")

	// ErrAddressIncomplete means the delivery address is missing
	// required fields
	ErrAddressIncomplete = errors.New("checkout: delivery address is incomplete")
)

// CartInvalidError carries the validator's reasons when a cart fails
// the checkout gate
type CartInvalidError struct {
	Validation cart.Validation
}

func (e *CartInvalidError) Error() string {
	return "checkout: cart validation failed: " + strings.Join(e.Validation.Errors, "; ")
}

// OrderLine is one cart line carried into the order request
type OrderLine struct {
	ProductID uint   `json:"product_id"`
	Name      string `json:"name"`
	UnitPrice int64  `json:"unit_price"`
	Quantity  int    `json:"quantity"`
}

// PlaceOrderRequest is the order assembled at the review step from
// the current cart contents and the collected form data
type PlaceOrderRequest struct {
	Items               []OrderLine     `json:"items"`
	DeliveryAddress     DeliveryAddress `json:"delivery_address"`
	PaymentMethod       string          `json:"payment_method"`
	SpecialInstructions string          `json:"special_instructions"`
	PrescriptionFile    string          `json:"prescription_file,omitempty"`
}

// PlacedOrder identifies a successfully created order
type PlacedOrder struct {
	OrderID     uint   `json:"order_id"`
	OrderNumber string `json:"order_number"`
}

// OrderPlacer creates orders. The checkout service treats it as an
// opaque remote call: it is issued exactly once per successful
// checkout and never retried automatically.
type OrderPlacer interface {
	PlaceOrder(ctx context.Context, userID uint, req *PlaceOrderRequest) (*PlacedOrder, error)
}

// Service drives the checkout workflow: it gates entry on cart
// validity, tracks one session per user, and reconciles the cart with
// the order-creation call exactly once.
type Service struct {
	carts  *cart.Service
	orders OrderPlacer
	logger *logrus.Logger

	mu       sync.Mutex
	sessions map[uint]*Session
}

// NewService creates a new checkout service
func NewService(carts *cart.Service, orders OrderPlacer, logger *logrus.Logger) *Service {
	return &Service{
		carts:    carts,
		orders:   orders,
		logger:   logger,
		sessions: make(map[uint]*Session),
	}
}

// CartOwner is the cart storage key for an authenticated user
func CartOwner(userID uint) string {
	return fmt.Sprintf("user:%d", userID)
}

// Begin starts (or resumes) checkout for a user. Entry is refused with
// a CartInvalidError unless the cart validator passes; the caller is
// expected to send the user back to resolve the cart.
func (s *Service) Begin(ctx context.Context, userID uint) (*Session, error) {
	engine, err := s.carts.Engine(ctx, CartOwner(userID))
	if err != nil {
		return nil, err
	}

	if validation := engine.Validate(); !validation.Valid {
		return nil, &CartInvalidError{Validation: validation}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if session, ok := s.sessions[userID]; ok && session.Step() != StepComplete {
		return session, nil
	}

	session := newSession(userID)
	s.sessions[userID] = session
	return session, nil
}

// Session returns the user's active checkout session, if any
func (s *Service) Session(userID uint) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[userID]
	if !ok {
		return nil, ErrNoSession
	}
	return session, nil
}

// End discards the user's checkout session. The machine is not
// reusable after completion; leaving checkout always discards it.
func (s *Service) End(userID uint) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, userID)
}

// Submit places the order from the review step. It is single-flight:
// a submit attempt while another is in progress is a no-op. On
// success the cart is cleared and the session moves to the terminal
// step; on failure the session stays on review and the cart is left
// untouched, so a retry is safe.
func (s *Service) Submit(ctx context.Context, userID uint) (*PlacedOrder, error) {
	s.mu.Lock()
	session, ok := s.sessions[userID]
	s.mu.Unlock()
	if !ok {
		return nil, ErrNoSession
	}

	session.mu.Lock()
	if session.step != StepReview {
		session.mu.Unlock()
		return nil, ErrNotAtReview
	}
	if session.submission == SubmissionSubmitting {
		session.mu.Unlock()
		return nil, ErrSubmitInFlight
	}
	if !session.address.Complete() {
		session.mu.Unlock()
		return nil, ErrAddressIncomplete
	}
	session.submission = SubmissionSubmitting
	address := session.address
	paymentMethod := session.paymentMethod
	instructions := session.instructions
	prescription := session.prescriptionPath
	session.mu.Unlock()

	engine, err := s.carts.Engine(ctx, CartOwner(userID))
	if err != nil {
		s.failSubmission(session)
		return nil, err
	}

	items := engine.Items()
	if len(items) == 0 {
		// Cart drained between review entry and submit; refuse
		// locally, no order call is made
		s.failSubmission(session)
		return nil, ErrEmptyCart
	}

	if validation := cart.Validate(items); !validation.Valid {
		s.failSubmission(session)
		return nil, &CartInvalidError{Validation: validation}
	}

	req := &PlaceOrderRequest{
		DeliveryAddress:     address,
		PaymentMethod:       paymentMethod,
		SpecialInstructions: instructions,
		PrescriptionFile:    prescription,
	}
	for _, item := range items {
		req.Items = append(req.Items, OrderLine{
			ProductID: item.ProductID,
			Name:      item.Name,
			UnitPrice: item.UnitPrice,
			Quantity:  item.Quantity,
		})
	}

	placed, err := s.orders.PlaceOrder(ctx, userID, req)
	if err != nil {
		s.failSubmission(session)
		return nil, fmt.Errorf("failed to place order: %w", err)
	}

	engine.Clear()

	session.mu.Lock()
	session.submission = SubmissionSucceeded
	session.step = StepComplete
	session.orderNumber = placed.OrderNumber
	session.mu.Unlock()

	s.logger.WithFields(logrus.Fields{
		"user_id":      userID,
		"order_number": placed.OrderNumber,
	}).Info("Order placed")

	return placed, nil
}

// failSubmission leaves the session on the review step with a failed
// submission marker; the cart is untouched so a retry is safe
func (s *Service) failSubmission(session *Session) {
	session.mu.Lock()
	session.submission = SubmissionFailed
	session.mu.Unlock()
}
