// Package fixture implements fetch.Fetcher without any I/O, serving records
// from a fixture dataset.
package fixture

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/raysh454/addrmeta/internal/dataset"
	"github.com/raysh454/addrmeta/internal/fetch"
	"github.com/raysh454/addrmeta/internal/logging"
	"github.com/raysh454/addrmeta/internal/lookupkey"
)

// Fetcher resolves URLs against a dataset.
//
// A URL under the single-record or aggregate prefix always succeeds: with
// the stored buffer when the key has data, and with "{}" otherwise (this
// mirrors the real service, which answers 200 with an empty object). Any
// other URL fails with *fetch.UnroutableError.
//
// Fetcher holds no mutable state; concurrent calls are safe.
type Fetcher struct {
	data      lookupkey.Util
	aggregate lookupkey.Util
	ds        *dataset.Dataset
	logger    logging.Logger
	now       func() time.Time
}

// New returns a Fetcher serving ds. Empty prefixes in cfg fall back to the
// defaults from fetch.DefaultConfig.
func New(cfg fetch.FixtureConfig, ds *dataset.Dataset, logger logging.Logger) (*Fetcher, error) {
	if ds == nil {
		return nil, errors.New("fixture: dataset is nil")
	}
	if cfg.DataURL == "" {
		cfg.DataURL = fetch.DefaultDataURL
	}
	if cfg.AggregateDataURL == "" {
		cfg.AggregateDataURL = fetch.DefaultAggregateDataURL
	}
	if cfg.DataURL == cfg.AggregateDataURL {
		return nil, fmt.Errorf("fixture: data and aggregate prefixes must differ, both are %q", cfg.DataURL)
	}

	return &Fetcher{
		data:      lookupkey.New(cfg.DataURL),
		aggregate: lookupkey.New(cfg.AggregateDataURL),
		ds:        ds,
		logger:    logging.OrNop(logger).With(logging.Field{Key: "component", Value: "fixture"}),
		now:       time.Now,
	}, nil
}

// Fetch implements fetch.Fetcher. It completes synchronously and ignores ctx.
func (f *Fetcher) Fetch(_ context.Context, url string) (*fetch.Response, error) {
	if key, ok := f.data.KeyForURL(url); ok {
		return f.respond(url, key, f.ds.Record), nil
	}
	if key, ok := f.aggregate.KeyForURL(url); ok {
		return f.respond(url, key, f.ds.Aggregate), nil
	}

	f.logger.Debug("unroutable url", logging.Field{Key: "url", Value: url})
	return nil, &fetch.UnroutableError{URL: url}
}

func (f *Fetcher) respond(url, key string, lookup func(string) ([]byte, bool)) *fetch.Response {
	var data []byte
	found := false
	if key != "" {
		data, found = lookup(key)
	}
	if !found {
		data = []byte(fetch.EmptyDictionary)
	}
	f.logger.Debug("served fixture",
		logging.Field{Key: "url", Value: url},
		logging.Field{Key: "key", Value: key},
		logging.Field{Key: "found", Value: found})
	return &fetch.Response{URL: url, Data: data, FetchedAt: f.now()}
}

// DataURL returns the single-record URL for key.
func (f *Fetcher) DataURL(key string) string { return f.data.URLForKey(key) }

// AggregateURL returns the aggregate URL for key.
func (f *Fetcher) AggregateURL(key string) string { return f.aggregate.URLForKey(key) }

// Dataset returns the dataset being served.
func (f *Fetcher) Dataset() *dataset.Dataset { return f.ds }

var _ fetch.Fetcher = (*Fetcher)(nil)
