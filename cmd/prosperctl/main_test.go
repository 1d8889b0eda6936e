package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/samvad-hq/prosper-autoinvest/internal/storage"
)

func newProsperServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		if !ok || user != "lender" || pass != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		switch r.URL.Path {
		case "/v1/account/":
			_, _ = w.Write([]byte(`{"AvailableCashBalance":50000}`))
		case "/v1/Invest/":
			_ = r.ParseForm()
			_, _ = w.Write([]byte(`{"Status":"Success","ListingId":` + r.PostForm.Get("listingId") + `,"AmountInvested":` + r.PostForm.Get("amount") + `}`))
		case "/v1/Investments/":
			if got := r.URL.Query().Get("$filter"); got != "ListingStatus eq 2" {
				t.Errorf("unexpected filter %q", got)
			}
			_, _ = w.Write([]byte(`[{"ListingNumber":1,"ListingStatus":2}]`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func runCLI(t *testing.T, srv *httptest.Server, args ...string) (string, error) {
	t.Helper()
	base := []string{"--base-url", srv.URL + "/v1/", "--username", "lender", "--password", "secret"}
	var stdout, stderr bytes.Buffer
	err := run(context.Background(), append(base, args...), &stdout, &stderr)
	return stdout.String(), err
}

func TestAccountCommand(t *testing.T) {
	out, err := runCLI(t, newProsperServer(t), "account")
	if err != nil {
		t.Fatalf("account: %v", err)
	}
	var got map[string]any
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, out)
	}
	if got["AvailableCashBalance"] != float64(50000) {
		t.Fatalf("unexpected output %s", out)
	}
}

func TestInvestCommand(t *testing.T) {
	out, err := runCLI(t, newProsperServer(t), "invest", "--listing", "23443", "--amount", "20")
	if err != nil {
		t.Fatalf("invest: %v", err)
	}
	if !strings.Contains(out, `"ListingId": 23443`) || !strings.Contains(out, `"AmountInvested": 20`) {
		t.Fatalf("unexpected output %s", out)
	}
}

func TestInvestRequiresFlags(t *testing.T) {
	_, err := runCLI(t, newProsperServer(t), "invest", "--listing", "23443")
	if !errors.Is(err, errUsage) {
		t.Fatalf("expected usage error, got %v", err)
	}
}

func TestPendingCommandUsesFilter(t *testing.T) {
	out, err := runCLI(t, newProsperServer(t), "pending")
	if err != nil {
		t.Fatalf("pending: %v", err)
	}
	if !strings.Contains(out, `"ListingNumber": 1`) {
		t.Fatalf("unexpected output %s", out)
	}
}

func TestGetCommandPrintsRawJSON(t *testing.T) {
	out, err := runCLI(t, newProsperServer(t), "get", "account/")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !strings.Contains(out, `"AvailableCashBalance": 50000`) {
		t.Fatalf("unexpected output %s", out)
	}
}

func TestAuthCommandReportsFailure(t *testing.T) {
	srv := newProsperServer(t)
	var stdout, stderr bytes.Buffer
	args := []string{"--base-url", srv.URL + "/v1/", "-u", "lender", "-p", "wrong", "auth"}
	err := run(context.Background(), args, &stdout, &stderr)
	if !errors.Is(err, errAuthFailed) {
		t.Fatalf("expected errAuthFailed, got %v", err)
	}
	if !strings.Contains(stdout.String(), `"authenticated": false`) {
		t.Fatalf("unexpected output %s", stdout.String())
	}
}

func TestUnknownCommand(t *testing.T) {
	_, err := runCLI(t, newProsperServer(t), "withdraw")
	if !errors.Is(err, errUsage) {
		t.Fatalf("expected usage error, got %v", err)
	}
}

func TestMissingCommandPrintsUsage(t *testing.T) {
	var stdout, stderr bytes.Buffer
	err := run(context.Background(), []string{"-u", "lender", "-p", "secret"}, &stdout, &stderr)
	if !errors.Is(err, errUsage) {
		t.Fatalf("expected usage error, got %v", err)
	}
	if !strings.Contains(stderr.String(), "Commands:") {
		t.Fatalf("usage not printed: %s", stderr.String())
	}
}

func TestLedgerCommandListsRecords(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.db")
	store, err := storage.NewStore("bbolt", path, storage.Options{})
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	if err := store.MarkInvested(23443, 25); err != nil {
		t.Fatalf("MarkInvested: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	var stdout, stderr bytes.Buffer
	if err := run(context.Background(), []string{"--ledger-path", path, "ledger"}, &stdout, &stderr); err != nil {
		t.Fatalf("ledger: %v", err)
	}
	var got []storage.Record
	if err := json.Unmarshal(stdout.Bytes(), &got); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, stdout.String())
	}
	if len(got) != 1 || got[0].ListingNumber != 23443 || got[0].Amount != 25 {
		t.Fatalf("unexpected ledger %+v", got)
	}
}
