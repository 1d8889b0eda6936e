package prosper

import (
	"context"
	"net/url"
	"strconv"

	"github.com/samvad-hq/prosper-autoinvest/pkg/httpclient"
)

// Resource paths relative to the API root.
const (
	PathAccount     = "account/"
	PathNotes       = "notes/"
	PathListings    = "Listings/"
	PathInvestments = "Investments/"
	PathInvest      = "Invest/"
)

// ListingStatusPending is the listing status of investments not yet originated.
const ListingStatusPending = 2

// ODataFilter appends a $filter query to path, percent-encoding the expression.
func ODataFilter(path, expr string) string {
	return path + "?$filter=" + url.PathEscape(expr)
}

// GetAccount returns the account summary.
func (c *Client) GetAccount(ctx context.Context) (Account, error) {
	return Fetch[Account](ctx, c, PathAccount)
}

// GetNotes returns every note held by the account.
func (c *Client) GetNotes(ctx context.Context) ([]Note, error) {
	return Fetch[[]Note](ctx, c, PathNotes)
}

// GetListings returns the currently active listings.
func (c *Client) GetListings(ctx context.Context) ([]Listing, error) {
	return Fetch[[]Listing](ctx, c, PathListings)
}

// GetPendingInvestments returns investments whose listings have not originated yet,
// which is how callers avoid ordering the same listing twice.
func (c *Client) GetPendingInvestments(ctx context.Context) ([]Investment, error) {
	return Fetch[[]Investment](ctx, c, pendingInvestmentsPath)
}

var pendingInvestmentsPath = ODataFilter(PathInvestments, "ListingStatus eq "+strconv.Itoa(ListingStatusPending))

// Invest orders amount in the listing. Both values are sent verbatim; the API is
// responsible for validating them.
func (c *Client) Invest(ctx context.Context, listingID, amount string) (InvestResponse, error) {
	return Post[InvestResponse](ctx, c, PathInvest, []httpclient.FormField{
		{Key: "listingId", Value: listingID},
		{Key: "amount", Value: amount},
	})
}
