package providers

import (
	"github.com/samber/do/v2"

	"github.com/bookbuddy/bookbuddy-server/internal/auth"
	"github.com/bookbuddy/bookbuddy-server/internal/config"
	"github.com/bookbuddy/bookbuddy-server/internal/logger"
	"github.com/bookbuddy/bookbuddy-server/internal/payment"
	"github.com/bookbuddy/bookbuddy-server/internal/service"
	"github.com/bookbuddy/bookbuddy-server/internal/validation"
)

// ProvideSessionService provides the session management service.
func ProvideSessionService(i do.Injector) (*service.SessionService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	tokenService := do.MustInvoke[*auth.TokenService](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewSessionService(storeHandle.Store, tokenService, log.Logger), nil
}

// ProvideAuthService provides the authentication service.
func ProvideAuthService(i do.Injector) (*service.AuthService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	tokenService := do.MustInvoke[*auth.TokenService](i)
	sessionService := do.MustInvoke[*service.SessionService](i)
	hasher := do.MustInvoke[*auth.PasswordHasher](i)
	validator := do.MustInvoke[*validation.Validator](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewAuthService(storeHandle.Store, tokenService, sessionService, hasher, validator, log.Logger), nil
}

// ProvideBookService provides the catalog service.
func ProvideBookService(i do.Injector) (*service.BookService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	indexHandle := do.MustInvoke[*SearchIndexHandle](i)
	coverHandle := do.MustInvoke[*CoverWorkerHandle](i)
	validator := do.MustInvoke[*validation.Validator](i)
	log := do.MustInvoke[*logger.Logger](i)

	var covers service.CoverQueue
	if coverHandle.Worker != nil {
		covers = coverHandle.Worker
	}

	return service.NewBookService(storeHandle.Store, indexHandle.SearchIndex, covers, validator, log.Logger), nil
}

// ProvideReviewService provides the review service.
func ProvideReviewService(i do.Injector) (*service.ReviewService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	validator := do.MustInvoke[*validation.Validator](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewReviewService(storeHandle.Store, validator, log.Logger), nil
}

// ProvideReadingListService provides the reading list service.
func ProvideReadingListService(i do.Injector) (*service.ReadingListService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	validator := do.MustInvoke[*validation.Validator](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewReadingListService(storeHandle.Store, validator, log.Logger), nil
}

// ProvideUserService provides the profile and preferences service.
func ProvideUserService(i do.Injector) (*service.UserService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	validator := do.MustInvoke[*validation.Validator](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewUserService(storeHandle.Store, validator, log.Logger), nil
}

// ProvideChatService provides the assistant chat service.
func ProvideChatService(i do.Injector) (*service.ChatService, error) {
	chatHandle := do.MustInvoke[*ChatStoreHandle](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	aiHandle := do.MustInvoke[*AIClientHandle](i)
	validator := do.MustInvoke[*validation.Validator](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewChatService(chatHandle.Store, storeHandle.Store, aiHandle.Client, validator, log.Logger), nil
}

// ProvideRecommendationService provides the recommendation pipeline.
func ProvideRecommendationService(i do.Injector) (*service.RecommendationService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	bookService := do.MustInvoke[*service.BookService](i)
	aiHandle := do.MustInvoke[*AIClientHandle](i)
	validator := do.MustInvoke[*validation.Validator](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewRecommendationService(storeHandle.Store, bookService, aiHandle.Client, validator, log.Logger), nil
}

// ProvidePaymentService provides order creation and signature verification.
func ProvidePaymentService(i do.Injector) (*service.PaymentService, error) {
	cfg := do.MustInvoke[*config.Config](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	validator := do.MustInvoke[*validation.Validator](i)
	log := do.MustInvoke[*logger.Logger](i)

	verifier := payment.NewVerifier(cfg.Payment.KeySecret)
	if !verifier.Configured() {
		log.Warn("RAZORPAY_KEY_SECRET not set, payment verification will fail")
	}

	return service.NewPaymentService(storeHandle.Store, verifier, cfg.Payment.KeyID, validator, log.Logger), nil
}
