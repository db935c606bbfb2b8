package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SavingsContribution is an immutable, signed ledger entry against a
// savings pot (a planned expense template or the free pot). A pot's
// balance is the sum of its contributions; the pot's denormalized
// savedAmount must never diverge from that sum.
//
// A transfer between pots is exactly two contributions sharing one
// TransferID and one timestamp: a negative entry on the source and an
// equal positive entry on the destination, created atomically.
type SavingsContribution struct {
	ID         int32           `json:"id"`
	UserID     uuid.UUID       `json:"userId"`
	PotID      int32           `json:"potId"`
	Amount     decimal.Decimal `json:"amount"`
	Note       *string         `json:"note,omitempty"`
	TransferID *uuid.UUID      `json:"transferId,omitempty"`
	CreatedAt  time.Time       `json:"createdAt"`
}

// SavingsRepository persists the contribution ledger and keeps pot
// balances in step with it.
type SavingsRepository interface {
	// CreateContribution appends the entry and moves the pot's
	// savedAmount by the same (signed) amount, atomically.
	CreateContribution(ctx context.Context, c *SavingsContribution) (*SavingsContribution, error)
	// CreateTransferPair appends the debit and credit entries and moves
	// both pot balances in one transaction; a failure creates neither.
	CreateTransferPair(ctx context.Context, debit, credit *SavingsContribution) (*SavingsContribution, *SavingsContribution, error)
	// ListByPot returns the pot's contributions, newest first.
	ListByPot(ctx context.Context, userID uuid.UUID, potID int32) ([]*SavingsContribution, error)
	// SumByPot returns the replay balance of the pot.
	SumByPot(ctx context.Context, userID uuid.UUID, potID int32) (decimal.Decimal, error)
	// SetPotBalance overwrites the denormalized savedAmount
	// (reconciliation repair).
	SetPotBalance(ctx context.Context, userID uuid.UUID, potID int32, balance decimal.Decimal) error
}
