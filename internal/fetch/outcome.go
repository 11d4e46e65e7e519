package fetch

import (
	"context"
	"errors"
)

// Outcome is the discriminated result of one fetch.
// Success == false implies Data == nil. URL always echoes the request.
type Outcome struct {
	Success bool
	URL     string
	Data    []byte
	Err     error
}

// Callback receives a fetch outcome. Data is nil when success is false and is
// owned by the callback otherwise.
type Callback func(success bool, url string, data []byte)

var errNilResponse = errors.New("fetcher returned neither a response nor an error")

// Resolve runs f synchronously and folds its result into an Outcome.
// A fetcher that breaks the contract (nil response and nil error) is
// reported as a failure rather than a success without data.
func Resolve(ctx context.Context, f Fetcher, url string) Outcome {
	resp, err := f.Fetch(ctx, url)
	switch {
	case err != nil:
		return Outcome{URL: url, Err: err}
	case resp == nil:
		return Outcome{URL: url, Err: errNilResponse}
	}
	return Outcome{Success: true, URL: url, Data: resp.Data}
}

// Download fetches url and invokes cb exactly once with the outcome. The
// invocation happens before Download returns; callers that need
// out-of-band completion should use Async.
func Download(ctx context.Context, f Fetcher, url string, cb Callback) {
	if cb == nil {
		panic("fetch: Download called with nil callback")
	}
	o := Resolve(ctx, f, url)
	cb(o.Success, o.URL, o.Data)
}

// Async starts the fetch on its own goroutine. The returned channel yields
// exactly one Outcome and is then closed, so it never blocks the sender even
// if the receiver goes away.
func Async(ctx context.Context, f Fetcher, url string) <-chan Outcome {
	ch := make(chan Outcome, 1)
	go func() {
		defer close(ch)
		ch <- Resolve(ctx, f, url)
	}()
	return ch
}
