package payments

import (
	"context"
	"fmt"
)

// MultiGateway routes intent requests to the gateway registered for the
// requested method. Nil gateways mean the method is not offered.
type MultiGateway struct {
	wallet   Gateway
	paypal   Gateway
	coinbase Gateway
	fake     Gateway
}

// NewMultiGateway assembles the per-method routing table. The fake
// gateway is only consulted when allowFake is set.
func NewMultiGateway(wallet, paypal, coinbase, fake Gateway, allowFake bool) *MultiGateway {
	m := &MultiGateway{wallet: wallet, paypal: paypal, coinbase: coinbase}
	if allowFake {
		m.fake = fake
	}
	return m
}

func (m *MultiGateway) CreateIntent(ctx context.Context, req IntentRequest) (*IntentResult, error) {
	var g Gateway
	switch req.Method {
	case MethodWallet:
		g = m.wallet
	case MethodPayPal:
		g = m.paypal
	case MethodCoinbase:
		g = m.coinbase
	case MethodFake:
		g = m.fake
	}
	if g == nil {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedMethod, req.Method)
	}
	return g.CreateIntent(ctx, req)
}
