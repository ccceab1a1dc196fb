package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/bookbuddy/bookbuddy-server/internal/domain"
	domainerrors "github.com/bookbuddy/bookbuddy-server/internal/errors"
	"github.com/bookbuddy/bookbuddy-server/internal/id"
	"github.com/bookbuddy/bookbuddy-server/internal/metrics"
	"github.com/bookbuddy/bookbuddy-server/internal/payment"
	"github.com/bookbuddy/bookbuddy-server/internal/store"
	"github.com/bookbuddy/bookbuddy-server/internal/store/sqlite"
	"github.com/bookbuddy/bookbuddy-server/internal/validation"
)

// Verification results as counted in metrics.
const (
	verifyResultVerified   = "verified"
	verifyResultMismatch   = "mismatch"
	verifyResultIdempotent = "already_paid"
)

// PaymentService creates checkout orders and verifies the provider's
// payment signatures.
type PaymentService struct {
	store     *sqlite.Store
	verifier  *payment.Verifier
	keyID     string
	validator *validation.Validator
	logger    *slog.Logger
	now       func() time.Time
}

// NewPaymentService creates a new payment service. keyID is the public key
// handed to the checkout widget.
func NewPaymentService(
	store *sqlite.Store,
	verifier *payment.Verifier,
	keyID string,
	validator *validation.Validator,
	logger *slog.Logger,
) *PaymentService {
	return &PaymentService{
		store:     store,
		verifier:  verifier,
		keyID:     keyID,
		validator: validator,
		logger:    loggerOrDiscard(logger),
		now:       time.Now,
	}
}

// CreateOrderRequest starts a checkout. Amount is in paise.
type CreateOrderRequest struct {
	Amount int64            `json:"amount" validate:"gt=0"`
	BookID string           `json:"book_id,omitempty" validate:"required_if=Type book_purchase"`
	Type   domain.OrderType `json:"type" validate:"required,oneof=book_purchase premium_subscription"`
}

// CreateOrderResponse is what the checkout widget needs.
type CreateOrderResponse struct {
	OrderID  string `json:"order_id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Key      string `json:"key"`
}

// VerifyPaymentRequest carries the provider's checkout result.
type VerifyPaymentRequest struct {
	OrderID   string           `json:"order_id" validate:"required"`
	PaymentID string           `json:"payment_id" validate:"required"`
	Signature string           `json:"signature" validate:"required"`
	BookID    string           `json:"book_id,omitempty"`
	Type      domain.OrderType `json:"type,omitempty" validate:"omitempty,oneof=book_purchase premium_subscription"`
}

// VerifyPaymentResponse confirms a paid order.
type VerifyPaymentResponse struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	OrderID   string `json:"order_id"`
	PaymentID string `json:"payment_id"`
}

// CreateOrder records a new order in the created state.
func (s *PaymentService) CreateOrder(ctx context.Context, userID string, req CreateOrderRequest) (*CreateOrderResponse, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}
	if req.Type == domain.OrderTypePremiumSubscription {
		req.BookID = ""
	}
	if req.BookID != "" {
		if _, err := s.store.GetBook(ctx, req.BookID); err != nil {
			return nil, notFound(err, "book not found")
		}
	}

	now := s.now()
	orderID, err := id.GenerateOrderID(now)
	if err != nil {
		return nil, fmt.Errorf("generate order ID: %w", err)
	}

	order := &domain.Order{
		ID:        orderID,
		UserID:    userID,
		Amount:    req.Amount,
		Currency:  domain.DefaultCurrency,
		Type:      req.Type,
		BookID:    req.BookID,
		Status:    domain.OrderStatusCreated,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.CreateOrder(ctx, order); err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}

	metrics.RecordOrderCreated(string(order.Type))
	s.logger.Info("Order created",
		"order_id", order.ID,
		"user_id", userID,
		"type", order.Type,
		"amount", order.Amount,
	)

	return &CreateOrderResponse{
		OrderID:  order.ID,
		Amount:   order.Amount,
		Currency: order.Currency,
		Key:      s.keyID,
	}, nil
}

// VerifyPayment checks the provider signature for one of the caller's orders.
// A valid signature marks the order paid; an invalid one marks it failed and
// returns PAYMENT_FAILED. Paid orders are final, so verifying one again with a
// valid signature succeeds without changing it.
func (s *PaymentService) VerifyPayment(ctx context.Context, userID string, req VerifyPaymentRequest) (*VerifyPaymentResponse, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	order, err := s.store.GetOrder(ctx, req.OrderID)
	if err != nil {
		return nil, notFound(err, "order not found")
	}
	if order.UserID != userID {
		return nil, domainerrors.NotFound("order not found")
	}
	if req.Type != "" && req.Type != order.Type {
		return nil, domainerrors.Validation("type does not match the order")
	}
	if req.BookID != "" && req.BookID != order.BookID {
		return nil, domainerrors.Validation("book_id does not match the order")
	}

	valid, err := s.verifier.Verify(order.ID, req.PaymentID, req.Signature)
	if err != nil {
		s.logger.Error("Payment verification unavailable", "order_id", order.ID, "error", err)
		return nil, domainerrors.Internal("payment verification is not configured").WithCause(err)
	}

	if !valid {
		metrics.RecordPaymentVerification(verifyResultMismatch)
		s.logger.Warn("Payment signature mismatch", "order_id", order.ID, "user_id", userID)

		if order.Status != domain.OrderStatusPaid {
			s.setStatus(ctx, order, domain.OrderStatusFailed, req.PaymentID)
		}
		return nil, domainerrors.PaymentFailed("payment verification failed")
	}

	if order.Status == domain.OrderStatusPaid {
		metrics.RecordPaymentVerification(verifyResultIdempotent)
		return s.paid(order), nil
	}

	order, err = s.markPaid(ctx, order, req.PaymentID)
	if err != nil {
		return nil, err
	}

	metrics.RecordPaymentVerification(verifyResultVerified)
	s.logger.Info("Payment verified", "order_id", order.ID, "user_id", userID, "type", order.Type)
	return s.paid(order), nil
}

// markPaid records the payment on order. When a concurrent verification got
// there first, the stored order wins and is returned instead.
func (s *PaymentService) markPaid(ctx context.Context, order *domain.Order, paymentID string) (*domain.Order, error) {
	updated := *order
	updated.Status = domain.OrderStatusPaid
	updated.PaymentID = paymentID
	updated.UpdatedAt = s.now()

	err := s.store.UpdateOrderStatus(ctx, &updated)
	if errors.Is(err, store.ErrConflict) {
		stored, err := s.store.GetOrder(ctx, order.ID)
		if err != nil {
			return nil, fmt.Errorf("reload paid order: %w", err)
		}
		return stored, nil
	}
	if err != nil {
		return nil, fmt.Errorf("mark order paid: %w", err)
	}
	return &updated, nil
}

func (s *PaymentService) setStatus(ctx context.Context, order *domain.Order, status domain.OrderStatus, paymentID string) {
	order.Status = status
	order.PaymentID = paymentID
	order.UpdatedAt = s.now()
	if err := s.store.UpdateOrderStatus(ctx, order); err != nil {
		s.logger.Warn("Failed to record order status", "order_id", order.ID, "status", status, "error", err)
	}
}

func (s *PaymentService) paid(order *domain.Order) *VerifyPaymentResponse {
	return &VerifyPaymentResponse{
		Success:   true,
		Message:   payment.SuccessMessage(order.Type),
		OrderID:   order.ID,
		PaymentID: order.PaymentID,
	}
}

// GetPremiumFeatures returns the subscription offer.
func (s *PaymentService) GetPremiumFeatures() domain.PremiumPlan {
	return payment.PremiumPlan()
}
