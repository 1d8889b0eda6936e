package investor

import (
	"context"

	"github.com/samvad-hq/prosper-autoinvest/pkg/prosper"
	"github.com/samvad-hq/prosper-autoinvest/pkg/publishers"
)

// LendingAPI is the subset of the Prosper client a pass needs.
type LendingAPI interface {
	GetAccount(ctx context.Context) (prosper.Account, error)
	GetNotes(ctx context.Context) ([]prosper.Note, error)
	GetListings(ctx context.Context) ([]prosper.Listing, error)
	GetPendingInvestments(ctx context.Context) ([]prosper.Investment, error)
	Invest(ctx context.Context, listingID, amount string) (prosper.InvestResponse, error)
}

// EventPublisher publishes order outcomes downstream.
type EventPublisher interface {
	Publish(ctx context.Context, evt publishers.Event) (int, error)
}

// Ledger remembers listings that already received an order and how much was bought.
type Ledger interface {
	Invested(listingNumber int) (bool, error)
	MarkInvested(listingNumber int, amount float64) error
}
