package payments

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/google/uuid"

	"github.com/xidik12/MiyZapis-sub005/pkg/logging"
)

// RedirectGateway models hosted-checkout providers (PayPal, Coinbase
// Commerce): the intent stays pending and the customer finishes on the
// provider's page. Capture confirmation arrives out of band.
type RedirectGateway struct {
	provider string
	baseURL  string
	logger   *logging.Logger
}

// NewPayPalGateway creates a gateway that hands off to PayPal checkout.
func NewPayPalGateway(baseURL string, logger *logging.Logger) *RedirectGateway {
	return newRedirectGateway("paypal", baseURL, logger)
}

// NewCoinbaseGateway creates a gateway that hands off to Coinbase Commerce.
func NewCoinbaseGateway(baseURL string, logger *logging.Logger) *RedirectGateway {
	return newRedirectGateway("coinbase", baseURL, logger)
}

func newRedirectGateway(provider, baseURL string, logger *logging.Logger) *RedirectGateway {
	if logger == nil {
		logger = logging.Default()
	}
	return &RedirectGateway{
		provider: provider,
		baseURL:  strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		logger:   logger,
	}
}

func (g *RedirectGateway) CreateIntent(ctx context.Context, req IntentRequest) (*IntentResult, error) {
	_ = ctx
	if req.BookingID == uuid.Nil {
		return nil, fmt.Errorf("payments: %s intent requires booking id", g.provider)
	}
	if req.AmountCents <= 0 {
		return nil, fmt.Errorf("payments: %s intent requires a positive amount", g.provider)
	}
	if !isValidBaseURL(g.baseURL) {
		return nil, fmt.Errorf("payments: %s base URL must be an absolute http(s) URL", g.provider)
	}

	ref := g.provider + ":" + uuid.NewString()
	checkoutURL := fmt.Sprintf("%s/checkout/%s?amount=%d&currency=%s",
		g.baseURL, req.BookingID, req.AmountCents, url.QueryEscape(req.Currency))

	g.logger.Info("hosted checkout intent created",
		"provider", g.provider, "booking_id", req.BookingID, "provider_ref", ref)

	return &IntentResult{
		Status:          IntentPending,
		RequiresPayment: true,
		PaymentURL:      checkoutURL,
		ProviderRef:     ref,
	}, nil
}

func isValidBaseURL(value string) bool {
	parsed, err := url.Parse(value)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return false
	}
	switch strings.ToLower(parsed.Scheme) {
	case "http", "https":
		return true
	default:
		return false
	}
}
