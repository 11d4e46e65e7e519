// Package testutil provides shared test doubles for use across package tests.
// All dummies implement the corresponding interfaces from the production code,
// allowing injection into components under test without real I/O or side effects.
package testutil

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/raysh454/addrmeta/internal/fetch"
	"github.com/raysh454/addrmeta/internal/logging"
)

// ─── Logger ────────────────────────────────────────────────────────────

// DummyLogger implements logging.Logger with in-memory recording.
type DummyLogger struct {
	mu     sync.Mutex
	Errors []string
	Infos  []string
	Debugs []string
	Warns  []string
}

func (l *DummyLogger) Debug(msg string, fields ...logging.Field) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Debugs = append(l.Debugs, msg)
}

func (l *DummyLogger) Info(msg string, fields ...logging.Field) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Infos = append(l.Infos, msg)
}

func (l *DummyLogger) Warn(msg string, fields ...logging.Field) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Warns = append(l.Warns, msg)
}

func (l *DummyLogger) Error(msg string, fields ...logging.Field) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Errors = append(l.Errors, msg)
}

func (l *DummyLogger) With(_ ...logging.Field) logging.Logger { return l }

// WarnCount returns the number of Warn calls so far.
func (l *DummyLogger) WarnCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.Warns)
}

// ─── Fetcher ───────────────────────────────────────────────────────────

// StubFetcher implements fetch.Fetcher from canned data.
// Bodies[url] is returned as a success; Errors[url] as a failure; any other
// URL fails with *fetch.UnroutableError. Delay, when set, is honoured
// unless ctx ends first.
type StubFetcher struct {
	Bodies map[string]string
	Errors map[string]error
	Delay  time.Duration

	mu    sync.Mutex
	Calls []string
}

func (s *StubFetcher) Fetch(ctx context.Context, url string) (*fetch.Response, error) {
	s.mu.Lock()
	s.Calls = append(s.Calls, url)
	s.mu.Unlock()

	if s.Delay > 0 {
		select {
		case <-time.After(s.Delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err, ok := s.Errors[url]; ok {
		return nil, err
	}
	if body, ok := s.Bodies[url]; ok {
		return &fetch.Response{URL: url, Data: []byte(body), FetchedAt: time.Now()}, nil
	}
	return nil, &fetch.UnroutableError{URL: url}
}

// CallCount returns how many fetches were made.
func (s *StubFetcher) CallCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.Calls)
}

// ─── Callback ──────────────────────────────────────────────────────────

// RecordingCallback captures every invocation of a fetch.Callback.
type RecordingCallback struct {
	mu      sync.Mutex
	Calls   int
	Success bool
	URL     string
	Data    []byte
}

// Func returns the fetch.Callback that records into r.
func (r *RecordingCallback) Func() fetch.Callback {
	return func(success bool, url string, data []byte) {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.Calls++
		r.Success = success
		r.URL = url
		r.Data = data
	}
}

// AssertCalledOnce fails the test unless the callback ran exactly once and,
// as the contract requires, carried no data on failure.
func (r *RecordingCallback) AssertCalledOnce(t *testing.T) {
	t.Helper()
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Calls != 1 {
		t.Fatalf("callback invoked %d times, want exactly 1", r.Calls)
	}
	if !r.Success && r.Data != nil {
		t.Fatalf("failed outcome carried data %q", r.Data)
	}
}
