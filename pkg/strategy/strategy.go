package strategy

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Package strategy holds the listing selection rules (YAML/JSON) used by the investor.

// MinimumInvestment is the smallest order the platform accepts.
const MinimumInvestment = 25.0

// Strategy describes which listings to order and how much to put in each.
type Strategy struct {
	AmountPerListing float64  `json:"amount_per_listing" yaml:"amount_per_listing"`
	MaxOrdersPerRun  int      `json:"max_orders_per_run" yaml:"max_orders_per_run"`
	MinCashReserve   float64  `json:"min_cash_reserve" yaml:"min_cash_reserve"`
	Ratings          []string `json:"ratings" yaml:"ratings"`
	MinBorrowerRate  float64  `json:"min_borrower_rate" yaml:"min_borrower_rate"`
	MaxBorrowerRate  float64  `json:"max_borrower_rate" yaml:"max_borrower_rate"`
	Terms            []int    `json:"terms" yaml:"terms"`

	// ExcludePriorListings skips listings the account already holds a note in.
	ExcludePriorListings bool `json:"exclude_prior_listings" yaml:"exclude_prior_listings"`
}

type strategyFile struct {
	Strategy *Strategy `json:"strategy" yaml:"strategy"`
}

// Load reads and validates a strategy file.
func Load(path string) (Strategy, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return Strategy{}, errors.New("strategy file path is empty")
	}

	file, err := os.Open(path)
	if err != nil {
		return Strategy{}, fmt.Errorf("open strategy file: %w", err)
	}
	defer file.Close()

	raw, err := io.ReadAll(file)
	if err != nil {
		return Strategy{}, fmt.Errorf("read strategy file: %w", err)
	}

	s, err := parseStrategy(raw, filepath.Ext(path))
	if err != nil {
		return Strategy{}, err
	}

	s = sanitizeStrategy(s)
	if err := s.Validate(); err != nil {
		return Strategy{}, err
	}
	return s, nil
}

type unmarshalFn func([]byte, any) error

func parseStrategy(data []byte, ext string) (Strategy, error) {
	ext = strings.ToLower(strings.TrimSpace(ext))

	decoders := []struct {
		name string
		ext  string
		fn   unmarshalFn
	}{
		{name: "yaml", ext: ".yaml", fn: yaml.Unmarshal},
		{name: "yaml", ext: ".yml", fn: yaml.Unmarshal},
		{name: "json", ext: ".json", fn: json.Unmarshal},
	}

	var lastErr error
	for _, d := range decoders {
		if ext != "" && ext != d.ext {
			continue
		}
		s, err := unmarshalStrategy(d.name, data, d.fn)
		if err == nil {
			return s, nil
		}
		lastErr = err
	}

	if lastErr == nil {
		return Strategy{}, fmt.Errorf("strategy file extension %q not supported (expected .yaml, .yml or .json)", ext)
	}
	return Strategy{}, fmt.Errorf("parse strategy file: %w", lastErr)
}

func unmarshalStrategy(name string, data []byte, fn unmarshalFn) (Strategy, error) {
	var f strategyFile
	if err := fn(data, &f); err != nil {
		return Strategy{}, fmt.Errorf("decode %s strategy: %w", name, err)
	}
	if f.Strategy == nil {
		return Strategy{}, fmt.Errorf("decode %s strategy: missing strategy block", name)
	}
	return *f.Strategy, nil
}

func sanitizeStrategy(s Strategy) Strategy {
	ratings := make([]string, 0, len(s.Ratings))
	for _, r := range s.Ratings {
		r = strings.ToUpper(strings.TrimSpace(r))
		if r != "" {
			ratings = append(ratings, r)
		}
	}
	s.Ratings = ratings
	if s.MaxOrdersPerRun < 0 {
		s.MaxOrdersPerRun = 0
	}
	return s
}

// Validate checks the rules are usable.
func (s Strategy) Validate() error {
	if s.AmountPerListing < MinimumInvestment {
		return fmt.Errorf("amount_per_listing must be at least %.2f", MinimumInvestment)
	}
	if s.MinCashReserve < 0 {
		return errors.New("min_cash_reserve must not be negative")
	}
	if s.MinBorrowerRate < 0 || s.MaxBorrowerRate < 0 {
		return errors.New("borrower rate bounds must not be negative")
	}
	if s.MaxBorrowerRate > 0 && s.MinBorrowerRate > s.MaxBorrowerRate {
		return errors.New("min_borrower_rate exceeds max_borrower_rate")
	}
	for _, term := range s.Terms {
		if term <= 0 {
			return fmt.Errorf("invalid term %d", term)
		}
	}
	return nil
}
