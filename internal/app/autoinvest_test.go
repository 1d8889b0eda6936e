package app

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/samvad-hq/prosper-autoinvest/internal/config"
)

// fakeProsper serves a minimal Prosper API and records invest requests.
type fakeProsper struct {
	mu      sync.Mutex
	status  int
	invests []string
}

func (f *fakeProsper) handler(w http.ResponseWriter, r *http.Request) {
	if f.status != 0 {
		w.WriteHeader(f.status)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	switch r.URL.Path {
	case "/v1/account/":
		_, _ = w.Write([]byte(`{"AvailableCashBalance":100}`))
	case "/v1/Listings/":
		_, _ = w.Write([]byte(`[{"ListingNumber":23443,"ProsperRating":"A","BorrowerRate":0.12,"AmountRemaining":500}]`))
	case "/v1/Investments/":
		_, _ = w.Write([]byte(`[]`))
	case "/v1/Invest/":
		if err := r.ParseForm(); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		f.mu.Lock()
		f.invests = append(f.invests, r.PostForm.Get("listingId")+"="+r.PostForm.Get("amount"))
		f.mu.Unlock()
		_, _ = w.Write([]byte(`{"Status":"Success","ListingId":23443,"RequestedAmount":25,"AmountInvested":25}`))
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (f *fakeProsper) investCalls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.invests...)
}

func testConfig(t *testing.T, baseURL string) *config.Config {
	t.Helper()
	dir := t.TempDir()
	strategyPath := filepath.Join(dir, "strategy.yaml")
	raw := "strategy:\n  amount_per_listing: 25\n  ratings: [A]\n"
	if err := os.WriteFile(strategyPath, []byte(raw), 0o644); err != nil {
		t.Fatalf("write strategy: %v", err)
	}
	return &config.Config{
		ProsperUsername:        "lender",
		ProsperPassword:        "secret",
		ProsperBaseURL:         baseURL + "/v1/",
		HTTPTimeout:            5 * time.Second,
		StrategyFile:           strategyPath,
		InvestInterval:         time.Hour,
		StorageType:            "bbolt",
		BBoltPath:              filepath.Join(dir, "ledger.db"),
		StorageTTL:             time.Hour,
		StorageCleanupInterval: time.Hour,
	}
}

func TestRunOnceInvestsAndRemembersListing(t *testing.T) {
	api := &fakeProsper{}
	srv := httptest.NewServer(http.HandlerFunc(api.handler))
	defer srv.Close()

	a, err := NewAutoInvestor(context.Background(), testConfig(t, srv.URL), nil)
	if err != nil {
		t.Fatalf("NewAutoInvestor: %v", err)
	}
	defer a.close()

	for i := 0; i < 2; i++ {
		if err := a.runOnce(context.Background()); err != nil {
			t.Fatalf("runOnce #%d: %v", i, err)
		}
	}

	calls := api.investCalls()
	if len(calls) != 1 || calls[0] != "23443=25.00" {
		t.Fatalf("expected a single order for 23443, got %v", calls)
	}
}

func TestRunOnceDryRunPlacesNoOrders(t *testing.T) {
	api := &fakeProsper{}
	srv := httptest.NewServer(http.HandlerFunc(api.handler))
	defer srv.Close()

	cfg := testConfig(t, srv.URL)
	cfg.DryRun = true
	a, err := NewAutoInvestor(context.Background(), cfg, nil)
	if err != nil {
		t.Fatalf("NewAutoInvestor: %v", err)
	}
	defer a.close()

	if err := a.runOnce(context.Background()); err != nil {
		t.Fatalf("runOnce: %v", err)
	}
	if calls := api.investCalls(); len(calls) != 0 {
		t.Fatalf("dry run placed orders: %v", calls)
	}
}

func TestRunFailsOnRejectedCredentials(t *testing.T) {
	api := &fakeProsper{status: http.StatusUnauthorized}
	srv := httptest.NewServer(http.HandlerFunc(api.handler))
	defer srv.Close()

	a, err := NewAutoInvestor(context.Background(), testConfig(t, srv.URL), nil)
	if err != nil {
		t.Fatalf("NewAutoInvestor: %v", err)
	}
	if err := a.Run(context.Background()); !errors.Is(err, ErrAuthentication) {
		t.Fatalf("expected ErrAuthentication, got %v", err)
	}
}

func TestRunExitsOnCancel(t *testing.T) {
	api := &fakeProsper{}
	srv := httptest.NewServer(http.HandlerFunc(api.handler))
	defer srv.Close()

	a, err := NewAutoInvestor(context.Background(), testConfig(t, srv.URL), nil)
	if err != nil {
		t.Fatalf("NewAutoInvestor: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()
	if err := a.Run(ctx); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if calls := api.investCalls(); len(calls) != 1 {
		t.Fatalf("expected initial pass to place one order, got %v", calls)
	}
}

func TestNewAutoInvestorRejectsMissingCredentials(t *testing.T) {
	cfg := testConfig(t, "http://127.0.0.1:1")
	cfg.ProsperPassword = ""
	if _, err := NewAutoInvestor(context.Background(), cfg, nil); err == nil {
		t.Fatalf("expected error for blank password")
	}
}

func TestNewAutoInvestorLoadsPublishers(t *testing.T) {
	cfg := testConfig(t, "http://127.0.0.1:1")
	cfg.StorageType = "none"
	cfg.PublishersFile = filepath.Join(t.TempDir(), "publishers.yaml")
	raw := "publishers:\n  - id: hook\n    type: http\n    http:\n      url: http://127.0.0.1:1/hook\n"
	if err := os.WriteFile(cfg.PublishersFile, []byte(raw), 0o644); err != nil {
		t.Fatalf("write publishers: %v", err)
	}

	a, err := NewAutoInvestor(context.Background(), cfg, nil)
	if err != nil {
		t.Fatalf("NewAutoInvestor: %v", err)
	}
	defer a.close()
	if a.fanout.Size() != 1 {
		t.Fatalf("expected 1 publisher, got %d", a.fanout.Size())
	}
}
