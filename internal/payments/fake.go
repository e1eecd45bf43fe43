package payments

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/xidik12/MiyZapis-sub005/pkg/logging"
)

// FakeGateway is a dev/demo provider that completes every intent
// immediately without collecting money.
//
// This MUST be gated by configuration (ALLOW_FAKE_PAYMENTS) and should
// never be enabled in production.
type FakeGateway struct {
	logger *logging.Logger
}

func NewFakeGateway(logger *logging.Logger) *FakeGateway {
	if logger == nil {
		logger = logging.Default()
	}
	return &FakeGateway{logger: logger}
}

func (g *FakeGateway) CreateIntent(ctx context.Context, req IntentRequest) (*IntentResult, error) {
	_ = ctx
	if req.BookingID == uuid.Nil {
		return nil, fmt.Errorf("payments: fake intent requires booking id")
	}
	g.logger.Warn("fake payment intent completed without collection",
		"booking_id", req.BookingID, "amount_cents", req.AmountCents)
	return &IntentResult{
		Status:          IntentCompleted,
		RequiresPayment: true,
		ProviderRef:     "fake:" + req.BookingID.String(),
	}, nil
}
