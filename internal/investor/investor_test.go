package investor

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/samvad-hq/prosper-autoinvest/pkg/prosper"
	"github.com/samvad-hq/prosper-autoinvest/pkg/publishers"
	"github.com/samvad-hq/prosper-autoinvest/pkg/strategy"
)

// fakeAPI serves canned account state and records Invest calls.
type fakeAPI struct {
	mu         sync.Mutex
	account    prosper.Account
	listings   []prosper.Listing
	pending    []prosper.Investment
	notes      []prosper.Note
	accountErr error
	investErr  map[string]error
	calls      []string
}

func (f *fakeAPI) GetAccount(context.Context) (prosper.Account, error) {
	return f.account, f.accountErr
}

func (f *fakeAPI) GetNotes(context.Context) ([]prosper.Note, error) {
	return f.notes, nil
}

func (f *fakeAPI) GetListings(context.Context) ([]prosper.Listing, error) {
	return f.listings, nil
}

func (f *fakeAPI) GetPendingInvestments(context.Context) ([]prosper.Investment, error) {
	return f.pending, nil
}

func (f *fakeAPI) Invest(_ context.Context, listingID, amount string) (prosper.InvestResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, listingID+"="+amount)
	if err := f.investErr[listingID]; err != nil {
		return prosper.InvestResponse{}, err
	}
	return prosper.InvestResponse{Status: "Success", AmountInvested: 25, RequestedAmount: 25}, nil
}

// fakePublisher records published events and can inject errors.
type fakePublisher struct {
	mu     sync.Mutex
	events []publishers.Event
	err    error
}

func (f *fakePublisher) Publish(_ context.Context, evt publishers.Event) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, evt)
	if f.err != nil {
		return 0, f.err
	}
	return 1, nil
}

// fakeLedger tracks invested listings and the amounts recorded for them.
type fakeLedger struct {
	mu      sync.Mutex
	seen    map[int]bool
	amounts map[int]float64
	failID  int
	failErr error
}

func (f *fakeLedger) Invested(n int) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if n == f.failID && f.failErr != nil {
		return false, f.failErr
	}
	return f.seen[n], nil
}

func (f *fakeLedger) MarkInvested(n int, amount float64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.seen == nil {
		f.seen = make(map[int]bool)
	}
	if f.amounts == nil {
		f.amounts = make(map[int]float64)
	}
	f.seen[n] = true
	f.amounts[n] = amount
	return nil
}

func testStrategy() strategy.Strategy {
	return strategy.Strategy{AmountPerListing: 25, Ratings: []string{"A", "B"}}
}

func listing(n int, rating string, rate float64) prosper.Listing {
	return prosper.Listing{ListingNumber: n, ProsperRating: rating, BorrowerRate: rate, AmountRemaining: 1000}
}

func TestRunInvestsFreshListingsOnly(t *testing.T) {
	api := &fakeAPI{
		account: prosper.Account{AvailableCashBalance: 100},
		listings: []prosper.Listing{
			listing(1, "A", 0.10),
			listing(2, "B", 0.20),
			listing(3, "C", 0.30),
			listing(4, "A", 0.15),
		},
		pending: []prosper.Investment{{ListingNumber: 4}},
	}
	ledger := &fakeLedger{seen: map[int]bool{1: true}}
	pub := &fakePublisher{}

	svc := NewService(api, testStrategy(), pub, nil, ledger, false)
	summary, err := svc.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if len(api.calls) != 1 || api.calls[0] != "2=25.00" {
		t.Fatalf("unexpected invest calls %v", api.calls)
	}
	if summary.Submitted != 1 || summary.Skipped != 1 || summary.AmountInvested != 25 {
		t.Fatalf("unexpected summary %+v", summary)
	}
	if !ledger.seen[2] || ledger.amounts[2] != 25 {
		t.Fatalf("listing 2 not recorded with its amount, ledger=%v", ledger.amounts)
	}
	if len(pub.events) != 1 || pub.events[0].ListingNumber != 2 || pub.events[0].Status != "Success" {
		t.Fatalf("unexpected events %+v", pub.events)
	}
}

func TestRunDryRunDoesNotInvest(t *testing.T) {
	api := &fakeAPI{
		account:  prosper.Account{AvailableCashBalance: 100},
		listings: []prosper.Listing{listing(7, "A", 0.12)},
	}
	ledger := &fakeLedger{}
	pub := &fakePublisher{}

	summary, err := NewService(api, testStrategy(), pub, nil, ledger, true).Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(api.calls) != 0 {
		t.Fatalf("dry run must not call Invest, got %v", api.calls)
	}
	if ledger.seen[7] {
		t.Fatalf("dry run must not mark the ledger")
	}
	if summary.Selected != 1 || summary.Submitted != 0 {
		t.Fatalf("unexpected summary %+v", summary)
	}
	if len(pub.events) != 1 || !pub.events[0].DryRun || pub.events[0].Status != StatusDryRun {
		t.Fatalf("unexpected events %+v", pub.events)
	}
}

func TestRunAggregatesOrderErrors(t *testing.T) {
	api := &fakeAPI{
		account:   prosper.Account{AvailableCashBalance: 100},
		listings:  []prosper.Listing{listing(10, "A", 0.2), listing(11, "A", 0.1)},
		investErr: map[string]error{"10": &prosper.StatusError{StatusCode: 400}},
	}
	ledger := &fakeLedger{}
	pub := &fakePublisher{}

	summary, err := NewService(api, testStrategy(), pub, nil, ledger, false).Run(context.Background())
	if err == nil || !strings.Contains(err.Error(), "listing 10") {
		t.Fatalf("expected error mentioning listing 10, got %v", err)
	}
	var statusErr *prosper.StatusError
	if !errors.As(err, &statusErr) || statusErr.StatusCode != 400 {
		t.Fatalf("expected wrapped StatusError, got %v", err)
	}
	if len(api.calls) != 2 {
		t.Fatalf("a failed order must not stop the pass, calls=%v", api.calls)
	}
	if summary.Failed != 1 || summary.Submitted != 1 {
		t.Fatalf("unexpected summary %+v", summary)
	}
	if ledger.seen[10] || !ledger.seen[11] {
		t.Fatalf("unexpected ledger state %v", ledger.seen)
	}
	if len(pub.events) != 2 || pub.events[0].Status != "Error" {
		t.Fatalf("expected failure event first, got %+v", pub.events)
	}
}

func TestRunAbortsWhenAccountUnavailable(t *testing.T) {
	api := &fakeAPI{accountErr: prosper.ErrInvalidCredentials}
	_, err := NewService(api, testStrategy(), nil, nil, nil, false).Run(context.Background())
	if !errors.Is(err, prosper.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestRunReportsPublishErrors(t *testing.T) {
	api := &fakeAPI{
		account:  prosper.Account{AvailableCashBalance: 30},
		listings: []prosper.Listing{listing(5, "A", 0.2)},
	}
	pub := &fakePublisher{err: errors.New("sink down")}

	summary, err := NewService(api, testStrategy(), pub, nil, nil, false).Run(context.Background())
	if err == nil || !strings.Contains(err.Error(), "sink down") {
		t.Fatalf("expected publish error, got %v", err)
	}
	if len(api.calls) != 1 {
		t.Fatalf("expected invest call, got %v", api.calls)
	}
	if summary.Failed != 1 {
		t.Fatalf("unexpected summary %+v", summary)
	}
}

func TestFilterNewOrdersSkipsLedgerErrors(t *testing.T) {
	ledger := &fakeLedger{
		seen:    map[int]bool{2: true},
		failID:  3,
		failErr: errors.New("lookup failed"),
	}
	svc := NewService(&fakeAPI{}, testStrategy(), nil, nil, ledger, false)
	orders := []strategy.Order{{ListingNumber: 1}, {ListingNumber: 2}, {ListingNumber: 3}}

	filtered := svc.filterNewOrders(orders)
	if len(filtered) != 1 || filtered[0].ListingNumber != 1 {
		t.Fatalf("unexpected filter result %#v", filtered)
	}
}

func TestRunStopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	api := &fakeAPI{
		account:  prosper.Account{AvailableCashBalance: 100},
		listings: []prosper.Listing{listing(1, "A", 0.1)},
	}
	if _, err := NewService(api, testStrategy(), nil, nil, nil, false).Run(ctx); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(api.calls) != 0 {
		t.Fatalf("expected no orders after cancellation, got %v", api.calls)
	}
}

func TestRunUninitialized(t *testing.T) {
	var svc *Service
	if _, err := svc.Run(context.Background()); err == nil {
		t.Fatalf("expected error for nil service")
	}
}

func TestRunExcludesListingsWithOwnedNotes(t *testing.T) {
	api := &fakeAPI{
		account:  prosper.Account{AvailableCashBalance: 100},
		listings: []prosper.Listing{listing(1, "A", 0.2), listing(2, "A", 0.1)},
		notes:    []prosper.Note{{ListingNumber: 1}},
	}
	strat := testStrategy()
	strat.ExcludePriorListings = true

	if _, err := NewService(api, strat, nil, nil, nil, false).Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(api.calls) != 1 || api.calls[0] != "2=25.00" {
		t.Fatalf("unexpected invest calls %v", api.calls)
	}
}
