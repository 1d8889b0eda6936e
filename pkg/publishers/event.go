package publishers

import (
	"strconv"
	"time"

	"github.com/samvad-hq/prosper-autoinvest/pkg/prosper"
	"github.com/samvad-hq/prosper-autoinvest/pkg/strategy"
)

// Event represents the payload published downstream for every order attempt.
type Event struct {
	ListingNumber   int       `json:"listing_number"`
	ProsperRating   string    `json:"prosper_rating,omitempty"`
	BorrowerRate    float64   `json:"borrower_rate,omitempty"`
	RequestedAmount float64   `json:"requested_amount"`
	AmountInvested  float64   `json:"amount_invested"`
	Status          string    `json:"status"`
	Message         string    `json:"message,omitempty"`
	DryRun          bool      `json:"dry_run"`
	SubmittedAt     time.Time `json:"submitted_at"`
}

// NewEvent constructs an Event for the given order and API response.
func NewEvent(order strategy.Order, resp prosper.InvestResponse, dryRun bool) Event {
	requested := resp.RequestedAmount
	if requested == 0 {
		requested = order.Amount
	}
	return Event{
		ListingNumber:   order.ListingNumber,
		ProsperRating:   order.ProsperRating,
		BorrowerRate:    order.BorrowerRate,
		RequestedAmount: requested,
		AmountInvested:  resp.AmountInvested,
		Status:          resp.Status,
		Message:         resp.Message,
		DryRun:          dryRun,
		SubmittedAt:     time.Now().UTC(),
	}
}

// listingAttr is the message attribute value used by queue and topic sinks.
func (e Event) listingAttr() string {
	return strconv.Itoa(e.ListingNumber)
}
