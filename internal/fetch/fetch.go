// Package fetch defines the "fetch metadata by URL" capability shared by the
// fixture and network backends, plus adapters that deliver a fetch result
// exactly once through a callback or a channel.
package fetch

import (
	"context"
	"time"
)

// Fetcher retrieves the metadata buffer addressed by url.
//
// Implementations return either a non-nil *Response whose URL equals the
// requested url, or a non-nil error and no buffer. The returned Data is owned
// by the caller.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (*Response, error)
}

// FetcherFunc adapts a plain function to the Fetcher interface.
type FetcherFunc func(ctx context.Context, url string) (*Response, error)

func (f FetcherFunc) Fetch(ctx context.Context, url string) (*Response, error) {
	return f(ctx, url)
}

// Response is a successful fetch.
type Response struct {
	URL       string
	Data      []byte
	FetchedAt time.Time
}

// EmptyDictionary is the body served for well-formed URLs that address no
// data.
const EmptyDictionary = "{}"

// IsEmptyDictionary reports whether data is exactly the empty JSON object
// returned for keys without data.
func IsEmptyDictionary(data []byte) bool {
	return string(data) == EmptyDictionary
}
