package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/bookbuddy/bookbuddy-server/internal/domain"
	"github.com/bookbuddy/bookbuddy-server/internal/service"
)

func (s *Server) registerPaymentRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "createOrder",
		Method:      http.MethodPost,
		Path:        "/api/v1/payments/orders",
		Summary:     "Create order",
		Description: "Starts a checkout for a book purchase or premium subscription. Amounts are in paise.",
		Tags:        []string{"Payments"},
		Security:    bearerAuth,
	}, s.handleCreateOrder)

	huma.Register(s.api, huma.Operation{
		OperationID: "verifyPayment",
		Method:      http.MethodPost,
		Path:        "/api/v1/payments/verify",
		Summary:     "Verify payment",
		Description: "Checks the payment provider's signature and marks the order paid",
		Tags:        []string{"Payments"},
		Security:    bearerAuth,
	}, s.handleVerifyPayment)

	huma.Register(s.api, huma.Operation{
		OperationID: "getPremiumFeatures",
		Method:      http.MethodGet,
		Path:        "/api/v1/payments/premium",
		Summary:     "Premium plan",
		Description: "Lists premium features and prices",
		Tags:        []string{"Payments"},
	}, s.handleGetPremiumFeatures)
}

// === DTOs ===

// CreateOrderRequest is the request body for starting a checkout.
type CreateOrderRequest struct {
	Amount int64            `json:"amount" doc:"Amount in paise"`
	BookID string           `json:"book_id,omitempty" doc:"Book being bought; required for book purchases"`
	Type   domain.OrderType `json:"type" enum:"book_purchase,premium_subscription" doc:"Order type"`
}

// CreateOrderInput wraps the order request for Huma.
type CreateOrderInput struct {
	Body CreateOrderRequest
}

// CreateOrderOutput wraps the checkout details for Huma.
type CreateOrderOutput struct {
	Body *service.CreateOrderResponse
}

// VerifyPaymentRequest is the provider's checkout result.
type VerifyPaymentRequest struct {
	OrderID   string           `json:"order_id" doc:"Order ID"`
	PaymentID string           `json:"payment_id" doc:"Provider payment ID"`
	Signature string           `json:"signature" doc:"Provider signature (hex HMAC-SHA256)"`
	BookID    string           `json:"book_id,omitempty" doc:"Book being bought"`
	Type      domain.OrderType `json:"type,omitempty" enum:"book_purchase,premium_subscription" doc:"Order type"`
}

// VerifyPaymentInput wraps the verification request for Huma.
type VerifyPaymentInput struct {
	Body VerifyPaymentRequest
}

// VerifyPaymentOutput wraps the verification result for Huma.
type VerifyPaymentOutput struct {
	Body *service.VerifyPaymentResponse
}

// PremiumOutput wraps the premium plan for Huma.
type PremiumOutput struct {
	Body domain.PremiumPlan
}

// === Handlers ===

func (s *Server) handleCreateOrder(ctx context.Context, input *CreateOrderInput) (*CreateOrderOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	order, err := s.services.Payment.CreateOrder(ctx, userID, service.CreateOrderRequest{
		Amount: input.Body.Amount,
		BookID: input.Body.BookID,
		Type:   input.Body.Type,
	})
	if err != nil {
		return nil, err
	}
	return &CreateOrderOutput{Body: order}, nil
}

func (s *Server) handleVerifyPayment(ctx context.Context, input *VerifyPaymentInput) (*VerifyPaymentOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	resp, err := s.services.Payment.VerifyPayment(ctx, userID, service.VerifyPaymentRequest{
		OrderID:   input.Body.OrderID,
		PaymentID: input.Body.PaymentID,
		Signature: input.Body.Signature,
		BookID:    input.Body.BookID,
		Type:      input.Body.Type,
	})
	if err != nil {
		return nil, err
	}
	return &VerifyPaymentOutput{Body: resp}, nil
}

func (s *Server) handleGetPremiumFeatures(_ context.Context, _ *struct{}) (*PremiumOutput, error) {
	return &PremiumOutput{Body: s.services.Payment.GetPremiumFeatures()}, nil
}
