package payment

import "github.com/bookbuddy/bookbuddy-server/internal/domain"

// Premium prices in paise.
const (
	PremiumMonthlyPrice = 299
	PremiumYearlyPrice  = 2999
)

var premiumFeatures = []string{
	"Unlimited AI book recommendations",
	"Advanced mood-based filtering",
	"Spotify playlist integration",
	"Priority customer support",
	"Early access to new features",
	"Export reading lists",
	"Advanced reading analytics",
}

// PremiumPlan returns the subscription offer.
func PremiumPlan() domain.PremiumPlan {
	return domain.PremiumPlan{
		Features:       append([]string(nil), premiumFeatures...),
		MonthlyPrice:   PremiumMonthlyPrice,
		YearlyPrice:    PremiumYearlyPrice,
		YearlyDiscount: "Save 17%",
	}
}

// SuccessMessage is what the client shows once an order of type t is paid.
func SuccessMessage(t domain.OrderType) string {
	if t == domain.OrderTypeBookPurchase {
		return "Book purchased successfully!"
	}
	return "Premium subscription activated!"
}
