package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/pflag"

	"github.com/samvad-hq/prosper-autoinvest/internal/config"
	"github.com/samvad-hq/prosper-autoinvest/internal/storage"
	"github.com/samvad-hq/prosper-autoinvest/pkg/httpclient"
	"github.com/samvad-hq/prosper-autoinvest/pkg/prosper"
)

const usage = `Usage: prosperctl [flags] <command> [args]

Commands:
  auth                                check the credentials
  account                             show the account summary
  notes                               list owned notes
  listings                            list active listings
  pending                             list pending investments
  invest --listing N --amount X       order X dollars of listing N
  get PATH                            fetch PATH relative to the API root
  ledger                              list orders recorded in the local ledger

Flags:
`

var (
	errUsage      = errors.New("invalid usage")
	errAuthFailed = errors.New("authentication failed")
)

type options struct {
	username string
	password string
	baseURL  string
	staging  bool
	timeout  time.Duration
	listing  string
	amount   string
	ledger   string
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if !errors.Is(err, pflag.ErrHelp) {
			fmt.Fprintf(os.Stderr, "prosperctl: %v\n", err)
		}
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	fs := pflag.NewFlagSet("prosperctl", pflag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprint(stderr, usage)
		fs.PrintDefaults()
	}

	var opts options
	fs.StringVarP(&opts.username, "username", "u", "", "API username (default $PROSPER_USERNAME)")
	fs.StringVarP(&opts.password, "password", "p", "", "API password (default $PROSPER_PASSWORD)")
	fs.StringVar(&opts.baseURL, "base-url", "", "API root (default $PROSPER_BASE_URL)")
	fs.BoolVar(&opts.staging, "staging", false, "use the staging API root")
	fs.DurationVar(&opts.timeout, "timeout", 0, "request timeout (default $HTTP_TIMEOUT_SECONDS)")
	fs.StringVar(&opts.listing, "listing", "", "listing number for invest")
	fs.StringVar(&opts.amount, "amount", "", "amount in dollars for invest")
	fs.StringVar(&opts.ledger, "ledger-path", "", "bbolt ledger file for ledger (default $BBOLT_PATH)")

	if err := fs.Parse(args); err != nil {
		return err
	}
	cmd := fs.Args()
	if len(cmd) == 0 {
		fs.Usage()
		return errUsage
	}

	var (
		out any
		err error
	)
	if strings.EqualFold(cmd[0], "ledger") {
		out, err = orNil(listLedger(opts))
	} else {
		var client *prosper.Client
		if client, err = newClient(opts); err != nil {
			return err
		}
		out, err = execute(ctx, client, cmd, opts)
	}
	if out != nil {
		if werr := writeJSON(stdout, out); werr != nil {
			return werr
		}
	}
	return err
}

// newClient builds a client from flags, falling back to the environment config.
func newClient(opts options) (*prosper.Client, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	username := firstNonEmpty(opts.username, cfg.ProsperUsername)
	password := firstNonEmpty(opts.password, cfg.ProsperPassword)
	baseURL := firstNonEmpty(opts.baseURL, cfg.ProsperBaseURL)
	if opts.staging {
		baseURL = prosper.StagingURL
	}
	timeout := cfg.HTTPTimeout
	if opts.timeout > 0 {
		timeout = opts.timeout
	}

	client, err := prosper.New(username, password,
		prosper.WithBaseURL(baseURL),
		prosper.WithHTTPClient(httpclient.NewRestyClient(timeout)),
	)
	if err != nil {
		return nil, fmt.Errorf("create client: %w", err)
	}
	return client, nil
}

// listLedger reads the order ledger the auto-invest loop keeps. Prosper is not contacted.
func listLedger(opts options) ([]storage.Record, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	typ, path := cfg.StorageType, cfg.BBoltPath
	if opts.ledger != "" {
		typ, path = "bbolt", opts.ledger
	}
	store, err := storage.NewStore(typ, path, storage.Options{
		EntryTTL:        cfg.StorageTTL,
		CleanupInterval: cfg.StorageCleanupInterval,
	})
	if err != nil {
		return nil, fmt.Errorf("open ledger: %w", err)
	}
	defer store.Close()

	records, err := store.Records()
	if err != nil {
		return nil, fmt.Errorf("read ledger: %w", err)
	}
	if records == nil {
		records = []storage.Record{}
	}
	return records, nil
}

func execute(ctx context.Context, client *prosper.Client, cmd []string, opts options) (any, error) {
	switch strings.ToLower(cmd[0]) {
	case "auth":
		ok := client.Authenticate(ctx)
		out := map[string]any{"authenticated": ok, "base_url": client.BaseURL()}
		if !ok {
			return out, errAuthFailed
		}
		return out, nil
	case "account":
		return orNil(client.GetAccount(ctx))
	case "notes":
		return orNil(client.GetNotes(ctx))
	case "listings":
		return orNil(client.GetListings(ctx))
	case "pending":
		return orNil(client.GetPendingInvestments(ctx))
	case "invest":
		if opts.listing == "" || opts.amount == "" {
			return nil, fmt.Errorf("%w: invest needs --listing and --amount", errUsage)
		}
		return orNil(client.Invest(ctx, opts.listing, opts.amount))
	case "get":
		if len(cmd) != 2 {
			return nil, fmt.Errorf("%w: get needs exactly one PATH", errUsage)
		}
		return orNil(prosper.Fetch[json.RawMessage](ctx, client, cmd[1]))
	default:
		return nil, fmt.Errorf("%w: unknown command %q", errUsage, cmd[0])
	}
}

// orNil drops the value when err is set so nothing is printed for failed calls.
func orNil[T any](v T, err error) (any, error) {
	if err != nil {
		return nil, err
	}
	return v, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
