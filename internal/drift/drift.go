// Package drift compares the bodies two fetchers return for the same
// lookups, typically the fixture dataset against the live service.
package drift

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"

	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/raysh454/addrmeta/internal/fetch"
	"github.com/raysh454/addrmeta/internal/logging"
)

type Status string

const (
	StatusMatch          Status = "match"
	StatusBodyDiffers    Status = "body_differs"
	StatusOutcomeDiffers Status = "outcome_differs"
	StatusBothFailed     Status = "both_failed"
)

// Chunk is one inserted or removed run of text, seen from want to got.
type Chunk struct {
	Type    string `json:"type"` // "added" or "removed"
	Content string `json:"content"`
}

// Report is the comparison of a single URL.
type Report struct {
	URL       string  `json:"url"`
	RemoteURL string  `json:"remote_url"`
	Status    Status  `json:"status"`
	WantError string  `json:"want_error,omitempty"`
	GotError  string  `json:"got_error,omitempty"`
	Diff      []Chunk `json:"diff,omitempty"`
}

// OK reports whether both sides agree. Two failures agree.
func (r Report) OK() bool {
	return r.Status == StatusMatch || r.Status == StatusBothFailed
}

type Config struct {
	MaxConcurrency int
}

func DefaultConfig() Config {
	return Config{MaxConcurrency: 8}
}

// Comparer fetches each URL from want, and its mapped counterpart from got.
type Comparer struct {
	MaxConcurrency int
	// MapURL turns a want URL into the URL fetched from got. Nil keeps it.
	MapURL func(string) string

	want   fetch.Fetcher
	got    fetch.Fetcher
	logger logging.Logger
}

func New(cfg Config, want, got fetch.Fetcher, logger logging.Logger) (*Comparer, error) {
	if want == nil || got == nil {
		return nil, errors.New("drift: both fetchers are required")
	}
	if cfg.MaxConcurrency <= 0 {
		cfg.MaxConcurrency = 1
	}
	return &Comparer{
		MaxConcurrency: cfg.MaxConcurrency,
		want:           want,
		got:            got,
		logger:         logging.OrNop(logger).With(logging.Field{Key: "component", Value: "drift"}),
	}, nil
}

// Compare fetches every URL from both fetchers and reports the differences.
func Compare(ctx context.Context, want, got fetch.Fetcher, urls []string) ([]Report, error) {
	c, err := New(DefaultConfig(), want, got, nil)
	if err != nil {
		return nil, err
	}
	return c.Compare(ctx, urls)
}

// Compare returns one report per URL, in input order. If ctx ends first the
// reports gathered so far are returned with ctx's error; unfinished entries
// have an empty Status.
func (c *Comparer) Compare(ctx context.Context, urls []string) ([]Report, error) {
	reports := make([]Report, len(urls))
	sem := make(chan struct{}, c.MaxConcurrency)
	var wg sync.WaitGroup

	for i, u := range urls {
		if ctx.Err() != nil {
			break
		}

		wg.Add(1)
		go func(i int, u string) {
			defer wg.Done()

			select {
			case sem <- struct{}{}:
			case <-ctx.Done():
				return
			}
			defer func() { <-sem }()

			reports[i] = c.compareOne(ctx, u)
		}(i, u)
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return reports, err
	}

	mismatched := 0
	for _, r := range reports {
		if !r.OK() {
			mismatched++
		}
	}
	c.logger.Info("compared fetchers",
		logging.Field{Key: "urls", Value: len(urls)},
		logging.Field{Key: "mismatched", Value: mismatched})
	return reports, nil
}

func (c *Comparer) compareOne(ctx context.Context, u string) Report {
	remote := u
	if c.MapURL != nil {
		remote = c.MapURL(u)
	}

	want := fetch.Resolve(ctx, c.want, u)
	got := fetch.Resolve(ctx, c.got, remote)

	r := Report{URL: u, RemoteURL: remote}
	if want.Err != nil {
		r.WantError = want.Err.Error()
	}
	if got.Err != nil {
		r.GotError = got.Err.Error()
	}

	switch {
	case !want.Success && !got.Success:
		r.Status = StatusBothFailed
	case want.Success != got.Success:
		r.Status = StatusOutcomeDiffers
	case sameBody(want.Data, got.Data):
		r.Status = StatusMatch
	default:
		r.Status = StatusBodyDiffers
		r.Diff = Diff(want.Data, got.Data)
	}

	if !r.OK() {
		c.logger.Debug("drift detected",
			logging.Field{Key: "url", Value: u},
			logging.Field{Key: "remote_url", Value: remote},
			logging.Field{Key: "status", Value: string(r.Status)})
	}
	return r
}

// sameBody compares JSON bodies structurally, so key order and whitespace
// do not count as drift. Anything else is compared byte for byte.
func sameBody(a, b []byte) bool {
	if bytes.Equal(a, b) {
		return true
	}
	ca, errA := canonicalJSON(a)
	cb, errB := canonicalJSON(b)
	if errA != nil || errB != nil {
		return false
	}
	return bytes.Equal(ca, cb)
}

func canonicalJSON(b []byte) ([]byte, error) {
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return nil, err
	}
	return json.Marshal(v)
}

// Diff returns the semantic character diff from want to got, without the
// unchanged runs.
func Diff(want, got []byte) []Chunk {
	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(string(want), string(got), true)
	diffs = dmp.DiffCleanupSemantic(diffs)

	chunks := make([]Chunk, 0)
	for _, d := range diffs {
		var chunkType string
		switch d.Type {
		case diffmatchpatch.DiffInsert:
			chunkType = "added"
		case diffmatchpatch.DiffDelete:
			chunkType = "removed"
		case diffmatchpatch.DiffEqual:
			continue
		}
		if strings.TrimSpace(d.Text) != "" {
			chunks = append(chunks, Chunk{Type: chunkType, Content: d.Text})
		}
	}
	return chunks
}

// Rebase moves url from one prefix to another, e.g. from the fixture's
// "test:///plain/" space to the live service's base URL.
func Rebase(url, fromPrefix, toPrefix string) (string, bool) {
	rest, ok := strings.CutPrefix(url, fromPrefix)
	if !ok {
		return url, false
	}
	return toPrefix + rest, true
}

// Rebaser returns a MapURL function that rebases a URL using the longest
// matching from prefix in pairs. URLs matching none are returned unchanged.
func Rebaser(pairs map[string]string) func(string) string {
	return func(u string) string {
		best := ""
		for from := range pairs {
			if strings.HasPrefix(u, from) && len(from) > len(best) {
				best = from
			}
		}
		if best == "" {
			return u
		}
		out, _ := Rebase(u, best, pairs[best])
		return out
	}
}
