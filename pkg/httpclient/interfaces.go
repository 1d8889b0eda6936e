package httpclient

import "context"

// Response is a minimal HTTP response contract.
type Response interface {
	Body() []byte
	StatusCode() int
}

// FormField is a single form-encoded key/value pair. Fields are sent in the order given.
type FormField struct {
	Key   string
	Value string
}

// Client abstracts HTTP calls so callers can inject mocks or different transports.
type Client interface {
	Get(ctx context.Context, url string, headers map[string]string) (Response, error)
	PostForm(ctx context.Context, url string, headers map[string]string, form []FormField) (Response, error)
}
