package payments

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/xidik12/MiyZapis-sub005/pkg/logging"
)

// WalletDB abstracts the pgx interface needed by the wallet store.
type WalletDB interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// WalletStore holds customer wallet balances.
type WalletStore struct {
	db WalletDB
}

// NewWalletStore creates a wallet store.
func NewWalletStore(db WalletDB) *WalletStore {
	return &WalletStore{db: db}
}

// Balance returns the customer's balance in cents. Missing wallets read
// as zero.
func (s *WalletStore) Balance(ctx context.Context, customerID uuid.UUID) (int64, error) {
	var balance int64
	err := s.db.QueryRow(ctx, `
		SELECT balance_cents FROM wallets WHERE user_id = $1`, customerID).Scan(&balance)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("payments: wallet balance: %w", err)
	}
	return balance, nil
}

// Debit atomically subtracts amountCents if the balance covers it.
// Returns false when funds are insufficient; nothing is written then.
func (s *WalletStore) Debit(ctx context.Context, customerID uuid.UUID, amountCents int64) (bool, error) {
	if amountCents <= 0 {
		return false, fmt.Errorf("payments: debit amount must be positive")
	}
	tag, err := s.db.Exec(ctx, `
		UPDATE wallets SET balance_cents = balance_cents - $1, updated_at = now()
		WHERE user_id = $2 AND balance_cents >= $1`, amountCents, customerID)
	if err != nil {
		return false, fmt.Errorf("payments: wallet debit: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// Credit adds funds to a wallet, creating it on first use.
func (s *WalletStore) Credit(ctx context.Context, customerID uuid.UUID, amountCents int64, currency string) error {
	if amountCents <= 0 {
		return fmt.Errorf("payments: credit amount must be positive")
	}
	_, err := s.db.Exec(ctx, `
		INSERT INTO wallets (user_id, balance_cents, currency, updated_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (user_id) DO UPDATE
		SET balance_cents = wallets.balance_cents + EXCLUDED.balance_cents, updated_at = now()`,
		customerID, amountCents, currency)
	if err != nil {
		return fmt.Errorf("payments: wallet credit: %w", err)
	}
	return nil
}

// WalletGateway settles intents from the customer's stored balance.
// A full cover completes the intent without external payment collection.
type WalletGateway struct {
	store  *WalletStore
	logger *logging.Logger
}

// NewWalletGateway creates a wallet-funded gateway.
func NewWalletGateway(store *WalletStore, logger *logging.Logger) *WalletGateway {
	if store == nil {
		panic("payments: wallet store required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &WalletGateway{store: store, logger: logger}
}

func (g *WalletGateway) CreateIntent(ctx context.Context, req IntentRequest) (*IntentResult, error) {
	ok, err := g.store.Debit(ctx, req.CustomerID, req.AmountCents)
	if err != nil {
		return nil, err
	}
	if !ok {
		g.logger.Info("wallet intent declined, insufficient funds",
			"booking_id", req.BookingID, "amount_cents", req.AmountCents)
		return &IntentResult{Status: IntentFailed, RequiresPayment: true}, nil
	}
	g.logger.Info("wallet intent completed",
		"booking_id", req.BookingID, "amount_cents", req.AmountCents)
	return &IntentResult{
		Status:          IntentCompleted,
		RequiresPayment: false,
		ProviderRef:     "wallet:" + req.BookingID.String(),
	}, nil
}
