package investor

import (
	"context"
	"errors"
	"fmt"

	"github.com/samvad-hq/prosper-autoinvest/internal/logger"
	"github.com/samvad-hq/prosper-autoinvest/pkg/prosper"
	"github.com/samvad-hq/prosper-autoinvest/pkg/publishers"
	"github.com/samvad-hq/prosper-autoinvest/pkg/strategy"
)

// StatusDryRun marks events for orders that were selected but not submitted.
const StatusDryRun = "DryRun"

// Service runs investment passes against the Prosper API.
type Service struct {
	api       LendingAPI
	strategy  strategy.Strategy
	publisher EventPublisher
	ledger    Ledger
	log       logger.Logger
	dryRun    bool
}

// Summary describes the outcome of a single pass.
type Summary struct {
	Listings       int     `json:"listings"`
	Pending        int     `json:"pending"`
	Selected       int     `json:"selected"`
	Skipped        int     `json:"skipped"`
	Submitted      int     `json:"submitted"`
	Failed         int     `json:"failed"`
	AmountInvested float64 `json:"amount_invested"`
}

// NewService wires an investor with its collaborators. publisher and ledger may be nil.
func NewService(api LendingAPI, strat strategy.Strategy, publisher EventPublisher, log logger.Logger, ledger Ledger, dryRun bool) *Service {
	if log == nil {
		log = logger.NopLogger{}
	}
	return &Service{
		api:       api,
		strategy:  strat,
		publisher: publisher,
		ledger:    ledger,
		log:       log,
		dryRun:    dryRun,
	}
}

// Run executes one pass: read the account state, select orders and submit them.
// Failures reading account state abort the pass; per-order failures are joined.
func (s *Service) Run(ctx context.Context) (Summary, error) {
	var summary Summary
	if s == nil || s.api == nil {
		return summary, fmt.Errorf("investor service is not initialized")
	}

	account, err := s.api.GetAccount(ctx)
	if err != nil {
		return summary, fmt.Errorf("get account: %w", err)
	}
	listings, err := s.api.GetListings(ctx)
	if err != nil {
		return summary, fmt.Errorf("get listings: %w", err)
	}
	pending, err := s.api.GetPendingInvestments(ctx)
	if err != nil {
		return summary, fmt.Errorf("get pending investments: %w", err)
	}
	var notes []prosper.Note
	if s.strategy.ExcludePriorListings {
		if notes, err = s.api.GetNotes(ctx); err != nil {
			return summary, fmt.Errorf("get notes: %w", err)
		}
	}
	summary.Listings = len(listings)
	summary.Pending = len(pending)

	orders := s.strategy.SelectExcluding(account, listings, pending, notes)
	fresh := s.filterNewOrders(orders)
	summary.Selected = len(fresh)
	summary.Skipped = len(orders) - len(fresh)

	s.log.InfoObj("orders selected", "selection", map[string]any{
		"available_cash": account.AvailableCashBalance,
		"listings":       len(listings),
		"pending":        len(pending),
		"selected":       len(fresh),
		"skipped":        summary.Skipped,
		"dry_run":        s.dryRun,
	})

	var errs []error
	for _, order := range fresh {
		if ctx.Err() != nil {
			break
		}
		invested, err := s.submit(ctx, order)
		if err != nil {
			summary.Failed++
			errs = append(errs, err)
			continue
		}
		if invested > 0 {
			summary.Submitted++
			summary.AmountInvested += invested
		}
	}

	return summary, errors.Join(errs...)
}

// submit places one order and returns the amount Prosper accepted.
func (s *Service) submit(ctx context.Context, order strategy.Order) (float64, error) {
	if s.dryRun {
		resp := prosper.InvestResponse{
			Status:          StatusDryRun,
			ListingID:       order.ListingNumber,
			RequestedAmount: order.Amount,
		}
		s.log.InfoObj("dry run order", "order", order)
		return 0, s.publish(ctx, publishers.NewEvent(order, resp, true))
	}

	resp, err := s.api.Invest(ctx, order.ListingID(), order.AmountString())
	if err != nil {
		s.log.ErrorObj("order submission failed", "order_error", map[string]any{
			"listing_number": order.ListingNumber,
			"amount":         order.AmountString(),
			"error":          err.Error(),
		})
		evt := publishers.NewEvent(order, prosper.InvestResponse{Status: "Error", Message: err.Error()}, false)
		return 0, errors.Join(
			fmt.Errorf("invest listing %d: %w", order.ListingNumber, err),
			s.publish(ctx, evt),
		)
	}

	s.log.InfoObj("order submitted", "order_result", map[string]any{
		"listing_number":  order.ListingNumber,
		"status":          resp.Status,
		"amount_invested": resp.AmountInvested,
	})

	var errs []error
	if resp.AmountInvested > 0 && s.ledger != nil {
		if err := s.ledger.MarkInvested(order.ListingNumber, resp.AmountInvested); err != nil {
			errs = append(errs, fmt.Errorf("mark listing %d: %w", order.ListingNumber, err))
		}
	}
	if err := s.publish(ctx, publishers.NewEvent(order, resp, false)); err != nil {
		errs = append(errs, err)
	}
	return resp.AmountInvested, errors.Join(errs...)
}

func (s *Service) publish(ctx context.Context, evt publishers.Event) error {
	if s.publisher == nil {
		return nil
	}
	if _, err := s.publisher.Publish(ctx, evt); err != nil {
		return fmt.Errorf("publish listing %d: %w", evt.ListingNumber, err)
	}
	return nil
}

// filterNewOrders drops listings recorded in the ledger. A failed lookup skips the
// order so a listing is never bought twice.
func (s *Service) filterNewOrders(orders []strategy.Order) []strategy.Order {
	if s.ledger == nil || len(orders) == 0 {
		return orders
	}

	out := make([]strategy.Order, 0, len(orders))
	for _, order := range orders {
		seen, err := s.ledger.Invested(order.ListingNumber)
		if err != nil {
			s.log.WarnObj("ledger lookup failed", "ledger_error", map[string]any{
				"listing_number": order.ListingNumber,
				"error":          err.Error(),
			})
			continue
		}
		if seen {
			continue
		}
		out = append(out, order)
	}
	return out
}
