package strategy

import (
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/samvad-hq/prosper-autoinvest/pkg/prosper"
)

// Order is a single investment the strategy wants to place.
type Order struct {
	ListingNumber int     `json:"listing_number"`
	Amount        float64 `json:"amount"`
	ProsperRating string  `json:"prosper_rating"`
	BorrowerRate  float64 `json:"borrower_rate"`
}

// ListingID returns the listing number in the form the Invest endpoint expects.
func (o Order) ListingID() string {
	return strconv.Itoa(o.ListingNumber)
}

// AmountString returns the amount rounded to cents.
func (o Order) AmountString() string {
	return strconv.FormatFloat(roundCents(o.Amount), 'f', 2, 64)
}

// Select picks orders from listings. Listings with a pending investment are skipped,
// the rest are filtered by the rules, ranked by borrower rate (highest first) and
// taken while cash above the reserve and the per-run cap allow.
func (s Strategy) Select(account prosper.Account, listings []prosper.Listing, pending []prosper.Investment) []Order {
	return s.SelectExcluding(account, listings, pending, nil)
}

// SelectExcluding is Select that also skips listings behind notes the account
// already holds when ExcludePriorListings is set.
func (s Strategy) SelectExcluding(account prosper.Account, listings []prosper.Listing, pending []prosper.Investment, notes []prosper.Note) []Order {
	pendingSet := make(map[int]struct{}, len(pending)+len(notes))
	for _, inv := range pending {
		pendingSet[inv.ListingNumber] = struct{}{}
	}
	if s.ExcludePriorListings {
		for _, n := range notes {
			pendingSet[n.ListingNumber] = struct{}{}
		}
	}

	amount := roundCents(s.AmountPerListing)
	candidates := make([]prosper.Listing, 0, len(listings))
	seen := make(map[int]struct{}, len(listings))
	for _, l := range listings {
		if _, dup := seen[l.ListingNumber]; dup {
			continue
		}
		seen[l.ListingNumber] = struct{}{}
		if _, ok := pendingSet[l.ListingNumber]; ok {
			continue
		}
		if !s.matches(l, amount) {
			continue
		}
		candidates = append(candidates, l)
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].BorrowerRate != candidates[j].BorrowerRate {
			return candidates[i].BorrowerRate > candidates[j].BorrowerRate
		}
		return candidates[i].ListingNumber < candidates[j].ListingNumber
	})

	budget := account.AvailableCashBalance - s.MinCashReserve
	var orders []Order
	for _, l := range candidates {
		if s.MaxOrdersPerRun > 0 && len(orders) >= s.MaxOrdersPerRun {
			break
		}
		if budget < amount {
			break
		}
		orders = append(orders, Order{
			ListingNumber: l.ListingNumber,
			Amount:        amount,
			ProsperRating: l.ProsperRating,
			BorrowerRate:  l.BorrowerRate,
		})
		budget -= amount
	}
	return orders
}

func (s Strategy) matches(l prosper.Listing, amount float64) bool {
	if l.AmountRemaining < amount {
		return false
	}
	if len(s.Ratings) > 0 && !containsRating(s.Ratings, l.ProsperRating) {
		return false
	}
	if l.BorrowerRate < s.MinBorrowerRate {
		return false
	}
	if s.MaxBorrowerRate > 0 && l.BorrowerRate > s.MaxBorrowerRate {
		return false
	}
	if len(s.Terms) > 0 && !containsTerm(s.Terms, l.ListingTerm) {
		return false
	}
	return true
}

func containsRating(ratings []string, rating string) bool {
	rating = strings.ToUpper(strings.TrimSpace(rating))
	for _, r := range ratings {
		if r == rating {
			return true
		}
	}
	return false
}

func containsTerm(terms []int, term int) bool {
	for _, t := range terms {
		if t == term {
			return true
		}
	}
	return false
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
