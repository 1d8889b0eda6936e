package storage

import (
	"fmt"
	"strings"
	"time"
)

// Package storage keeps a local ledger of listings already ordered.

// Store is the ledger of orders Prosper accepted.
type Store interface {
	Close() error
	Invested(listingNumber int) (bool, error)
	MarkInvested(listingNumber int, amount float64) error
	Lookup(listingNumber int) (Record, bool, error)
	Records() ([]Record, error)
}

// Record is one accepted order. It is forgotten once ExpiresAt passes.
type Record struct {
	ListingNumber int       `json:"listing_number"`
	Amount        float64   `json:"amount"`
	InvestedAt    time.Time `json:"invested_at"`
	ExpiresAt     time.Time `json:"expires_at"`
}

// Expired reports whether the record is past its retention window at now.
func (r Record) Expired(now time.Time) bool {
	return !now.Before(r.ExpiresAt)
}

// Options controls retention characteristics for concrete store implementations.
type Options struct {
	EntryTTL        time.Duration
	CleanupInterval time.Duration
}

const (
	defaultEntryTTL        = 30 * 24 * time.Hour
	defaultCleanupInterval = 12 * time.Hour
)

// NewStore creates the configured storage backend.
func NewStore(typ, path string, opts Options) (Store, error) {
	typ = strings.TrimSpace(strings.ToLower(typ))
	opts = normalizeOptions(opts)

	switch typ {
	case "", "none", "disabled":
		return noopStore{}, nil
	case "bbolt":
		if strings.TrimSpace(path) == "" {
			return nil, fmt.Errorf("bbolt storage requires a path")
		}
		return openBolt(path, opts)
	default:
		return nil, fmt.Errorf("unsupported storage type %q", typ)
	}
}

func normalizeOptions(opts Options) Options {
	if opts.EntryTTL <= 0 {
		opts.EntryTTL = defaultEntryTTL
	}
	if opts.CleanupInterval <= 0 {
		opts.CleanupInterval = defaultCleanupInterval
	}
	return opts
}

type noopStore struct{}

func (noopStore) Close() error                     { return nil }
func (noopStore) Invested(int) (bool, error)       { return false, nil }
func (noopStore) MarkInvested(int, float64) error  { return nil }
func (noopStore) Lookup(int) (Record, bool, error) { return Record{}, false, nil }
func (noopStore) Records() ([]Record, error)       { return nil, nil }
