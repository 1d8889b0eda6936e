package prosper

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/samvad-hq/prosper-autoinvest/pkg/httpclient"
)

// Fetch GETs path relative to the client's base URL and decodes the JSON body into T.
// The path may carry a query string such as an OData $filter; it is sent as given.
//
// A non-200 status yields *StatusError, an undecodable body *DecodeError, and a
// transport failure is returned unchanged. Nothing is retried.
func Fetch[T any](ctx context.Context, c *Client, path string) (T, error) {
	target := c.resolve(path)
	resp, err := c.http.Get(ctx, target, c.headers())
	if err != nil {
		var zero T
		return zero, err
	}
	return decode[T](http.MethodGet, target, resp)
}

// Post sends form as an application/x-www-form-urlencoded body to path and decodes
// the JSON response into T. Errors follow the same contract as Fetch.
func Post[T any](ctx context.Context, c *Client, path string, form []httpclient.FormField) (T, error) {
	target := c.resolve(path)
	resp, err := c.http.PostForm(ctx, target, c.headers(), form)
	if err != nil {
		var zero T
		return zero, err
	}
	return decode[T](http.MethodPost, target, resp)
}

func decode[T any](method, target string, resp httpclient.Response) (T, error) {
	var out T
	if resp.StatusCode() != http.StatusOK {
		return out, &StatusError{StatusCode: resp.StatusCode(), Method: method, URL: target}
	}
	body := resp.Body()
	if err := json.Unmarshal(body, &out); err != nil {
		var zero T
		return zero, &DecodeError{Body: body, Err: err}
	}
	return out, nil
}
