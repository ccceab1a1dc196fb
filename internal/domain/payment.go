package domain

import "time"

// OrderType is what an order pays for.
type OrderType string

const (
	OrderTypeBookPurchase        OrderType = "book_purchase"
	OrderTypePremiumSubscription OrderType = "premium_subscription"
)

// Valid reports whether t is a known order type.
func (t OrderType) Valid() bool {
	return t == OrderTypeBookPurchase || t == OrderTypePremiumSubscription
}

// OrderStatus tracks an order through checkout.
type OrderStatus string

const (
	OrderStatusCreated OrderStatus = "created"
	OrderStatusPaid    OrderStatus = "paid"
	OrderStatusFailed  OrderStatus = "failed"
)

// DefaultCurrency is the only currency orders are created in.
const DefaultCurrency = "INR"

// Order is a checkout created for the payment provider widget.
// Amount is in minor units (paise).
type Order struct {
	ID        string      `json:"id"`
	UserID    string      `json:"user_id"`
	Amount    int64       `json:"amount"`
	Currency  string      `json:"currency"`
	Type      OrderType   `json:"type"`
	BookID    string      `json:"book_id,omitempty"`
	Status    OrderStatus `json:"status"`
	PaymentID string      `json:"payment_id,omitempty"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}

// PremiumPlan describes the subscription offer.
type PremiumPlan struct {
	Features       []string `json:"features"`
	MonthlyPrice   int      `json:"monthly_price"`
	YearlyPrice    int      `json:"yearly_price"`
	YearlyDiscount string   `json:"yearly_discount"`
}
