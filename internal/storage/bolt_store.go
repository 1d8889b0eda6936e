package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"sync"
	"time"

	bolt "go.etcd.io/bbolt"
)

var ledgerBucket = []byte("investments")

var errBucketMissing = errors.New("investment bucket missing")

// boltStore is a Store backed by BoltDB. Keys are listing numbers, values are
// JSON-encoded Records.
type boltStore struct {
	db              *bolt.DB
	entryTTL        time.Duration
	cleanupInterval time.Duration
	now             func() time.Time

	mu        sync.Mutex
	lastPrune time.Time
}

// openBolt initializes a BoltDB-backed Store.
func openBolt(path string, opts Options) (Store, error) {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create storage directory: %w", err)
		}
	}

	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open bbolt db: %w", err)
	}
	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(ledgerBucket)
		return err
	}); err != nil {
		db.Close()
		return nil, fmt.Errorf("init bucket: %w", err)
	}

	return &boltStore{
		db:              db,
		entryTTL:        opts.EntryTTL,
		cleanupInterval: opts.CleanupInterval,
		now:             time.Now,
		lastPrune:       time.Now(),
	}, nil
}

// Close closes the BoltDB store.
func (b *boltStore) Close() error {
	if b == nil || b.db == nil {
		return nil
	}
	return b.db.Close()
}

// Invested reports whether the listing has an unexpired record.
func (b *boltStore) Invested(listingNumber int) (bool, error) {
	_, ok, err := b.Lookup(listingNumber)
	return ok, err
}

// Lookup returns the unexpired record for the listing.
func (b *boltStore) Lookup(listingNumber int) (Record, bool, error) {
	now := b.now()
	if err := b.maybePrune(now); err != nil {
		return Record{}, false, err
	}

	var (
		rec   Record
		found bool
	)
	err := b.view(func(bucket *bolt.Bucket) error {
		raw := bucket.Get(listingKey(listingNumber))
		if raw == nil {
			return nil
		}
		r, err := decodeRecord(raw)
		if err != nil {
			return fmt.Errorf("listing %d: %w", listingNumber, err)
		}
		if r.Expired(now) {
			return nil
		}
		rec, found = r, true
		return nil
	})
	return rec, found, err
}

// MarkInvested stores a record for the listing, replacing any earlier one.
func (b *boltStore) MarkInvested(listingNumber int, amount float64) error {
	now := b.now()
	if err := b.maybePrune(now); err != nil {
		return err
	}

	raw, err := json.Marshal(Record{
		ListingNumber: listingNumber,
		Amount:        amount,
		InvestedAt:    now.UTC(),
		ExpiresAt:     now.Add(b.entryTTL).UTC(),
	})
	if err != nil {
		return fmt.Errorf("encode record: %w", err)
	}
	return b.update(func(bucket *bolt.Bucket) error {
		return bucket.Put(listingKey(listingNumber), raw)
	})
}

// Records returns unexpired records, oldest first.
func (b *boltStore) Records() ([]Record, error) {
	now := b.now()
	var out []Record
	err := b.view(func(bucket *bolt.Bucket) error {
		return bucket.ForEach(func(_, raw []byte) error {
			r, err := decodeRecord(raw)
			if err != nil || r.Expired(now) {
				return nil
			}
			out = append(out, r)
			return nil
		})
	})
	sort.Slice(out, func(i, j int) bool {
		if !out[i].InvestedAt.Equal(out[j].InvestedAt) {
			return out[i].InvestedAt.Before(out[j].InvestedAt)
		}
		return out[i].ListingNumber < out[j].ListingNumber
	})
	return out, err
}

// maybePrune deletes expired and unreadable records at most once per cleanup interval.
func (b *boltStore) maybePrune(now time.Time) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if now.Sub(b.lastPrune) < b.cleanupInterval {
		return nil
	}

	err := b.update(func(bucket *bolt.Bucket) error {
		var stale [][]byte
		if err := bucket.ForEach(func(k, raw []byte) error {
			if r, err := decodeRecord(raw); err != nil || r.Expired(now) {
				stale = append(stale, append([]byte(nil), k...))
			}
			return nil
		}); err != nil {
			return err
		}
		for _, k := range stale {
			if err := bucket.Delete(k); err != nil {
				return err
			}
		}
		return nil
	})
	if err == nil {
		b.lastPrune = now
	}
	return err
}

func (b *boltStore) view(fn func(*bolt.Bucket) error) error {
	return b.db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(ledgerBucket)
		if bucket == nil {
			return errBucketMissing
		}
		return fn(bucket)
	})
}

func (b *boltStore) update(fn func(*bolt.Bucket) error) error {
	return b.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(ledgerBucket)
		if bucket == nil {
			return errBucketMissing
		}
		return fn(bucket)
	})
}

func listingKey(listingNumber int) []byte {
	return []byte(strconv.Itoa(listingNumber))
}

func decodeRecord(raw []byte) (Record, error) {
	var r Record
	if err := json.Unmarshal(raw, &r); err != nil {
		return Record{}, fmt.Errorf("decode ledger record: %w", err)
	}
	return r, nil
}
