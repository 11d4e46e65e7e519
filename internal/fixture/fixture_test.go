package fixture_test

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/raysh454/addrmeta/internal/dataset"
	"github.com/raysh454/addrmeta/internal/fetch"
	"github.com/raysh454/addrmeta/internal/fixture"
	"github.com/raysh454/addrmeta/internal/testutil"
)

func newFetcher(t *testing.T) *fixture.Fetcher {
	t.Helper()
	ds, err := dataset.Embedded()
	if err != nil {
		t.Fatalf("Embedded: %v", err)
	}
	f, err := fixture.New(fetch.FixtureConfig{}, ds, &testutil.DummyLogger{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return f
}

// download runs the callback form of the contract and returns what the
// callback saw.
func download(t *testing.T, f fetch.Fetcher, url string) *testutil.RecordingCallback {
	t.Helper()
	rec := &testutil.RecordingCallback{}
	fetch.Download(context.Background(), f, url, rec.Func())
	rec.AssertCalledOnce(t)
	return rec
}

func checkRecord(t *testing.T, data []byte, key string) {
	t.Helper()
	if len(data) == 0 {
		t.Fatal("empty data")
	}
	begin := `{"id":"` + key + `"`
	if !bytes.HasPrefix(data, []byte(begin)) {
		t.Errorf("%s does not begin with %s", data, begin)
	}
	if !bytes.HasSuffix(data, []byte(`"}`)) {
		t.Errorf(`%s does not end with "}`, data)
	}
}

func checkAggregate(t *testing.T, data []byte, key string) {
	t.Helper()
	if len(data) == 0 {
		t.Fatal("empty data")
	}
	begin := `{"` + key
	if !bytes.HasPrefix(data, []byte(begin)) {
		t.Errorf("%s does not begin with %s", data, begin)
	}
	if !bytes.HasSuffix(data, []byte(`"}}`)) {
		t.Errorf(`%s does not end with "}}`, data)
	}
}

// ─── Every region ──────────────────────────────────────────────────────

func TestFetcher_HasValidDataForEveryRegion(t *testing.T) {
	t.Parallel()
	f := newFetcher(t)

	codes := f.Dataset().RegionCodes()
	if len(codes) == 0 {
		t.Fatal("dataset has no regions")
	}
	for _, code := range codes {
		code := code
		t.Run(code, func(t *testing.T) {
			t.Parallel()
			key := "data/" + code
			url := fetch.DefaultDataURL + key

			rec := download(t, f, url)
			if !rec.Success {
				t.Fatalf("expected success for %s", url)
			}
			if rec.URL != url {
				t.Errorf("url not echoed: got %q want %q", rec.URL, url)
			}
			checkRecord(t, rec.Data, key)
		})
	}
}

func TestFetcher_HasValidAggregatedDataForEveryRegion(t *testing.T) {
	t.Parallel()
	f := newFetcher(t)

	for _, code := range f.Dataset().RegionCodes() {
		code := code
		t.Run(code, func(t *testing.T) {
			t.Parallel()
			key := "data/" + code
			url := fetch.DefaultAggregateDataURL + key

			rec := download(t, f, url)
			if !rec.Success {
				t.Fatalf("expected success for %s", url)
			}
			if rec.URL != url {
				t.Errorf("url not echoed: got %q want %q", rec.URL, url)
			}
			checkAggregate(t, rec.Data, key)
		})
	}
}

// ─── Fixed keys ────────────────────────────────────────────────────────

func TestFetcher_DownloadExistingData(t *testing.T) {
	t.Parallel()
	f := newFetcher(t)
	url := fetch.DefaultDataURL + "data"

	rec := download(t, f, url)
	if !rec.Success {
		t.Fatal("expected success")
	}
	if rec.URL != url {
		t.Errorf("got url %q", rec.URL)
	}
	checkRecord(t, rec.Data, "data")
}

func TestFetcher_MissingKeysReturnEmptyDictionary(t *testing.T) {
	t.Parallel()
	f := newFetcher(t)

	urls := []string{
		fetch.DefaultDataURL + "junk",
		fetch.DefaultAggregateDataURL + "junk",
		fetch.DefaultDataURL,
		fetch.DefaultAggregateDataURL,
		// a sub-region has a record but no aggregate
		fetch.DefaultAggregateDataURL + "data/CH/AG",
	}
	for _, url := range urls {
		rec := download(t, f, url)
		if !rec.Success {
			t.Errorf("%s: expected success", url)
		}
		if rec.URL != url {
			t.Errorf("%s: got url %q", url, rec.URL)
		}
		if string(rec.Data) != "{}" {
			t.Errorf("%s: expected {}, got %q", url, rec.Data)
		}
	}
}

func TestFetcher_RealURLFails(t *testing.T) {
	t.Parallel()
	f := newFetcher(t)

	for _, url := range []string{"http://www.example.com/", "", "test:///plain", "TEST:///plain/data"} {
		rec := download(t, f, url)
		if rec.Success {
			t.Errorf("%q: expected failure", url)
		}
		if rec.URL != url {
			t.Errorf("%q: url not echoed, got %q", url, rec.URL)
		}
		if rec.Data != nil {
			t.Errorf("%q: expected no data, got %q", url, rec.Data)
		}

		_, err := f.Fetch(context.Background(), url)
		var uerr *fetch.UnroutableError
		if !errors.As(err, &uerr) {
			t.Fatalf("%q: expected *UnroutableError, got %v", url, err)
		}
		if uerr.URL != url {
			t.Errorf("error url = %q, want %q", uerr.URL, url)
		}
		if !fetch.IsUnroutable(err) {
			t.Errorf("%q: errors.Is(err, ErrUnroutable) = false", url)
		}
	}
}

// ─── Properties ────────────────────────────────────────────────────────

func TestFetcher_Idempotent(t *testing.T) {
	t.Parallel()
	f := newFetcher(t)

	for _, url := range []string{
		fetch.DefaultDataURL + "data/CH",
		fetch.DefaultAggregateDataURL + "data/US",
		fetch.DefaultDataURL + "junk",
		"http://www.example.com/",
	} {
		a := fetch.Resolve(context.Background(), f, url)
		b := fetch.Resolve(context.Background(), f, url)
		if a.Success != b.Success || a.URL != b.URL || !bytes.Equal(a.Data, b.Data) {
			t.Errorf("%s: outcomes differ: %+v vs %+v", url, a, b)
		}
	}
}

func TestFetcher_CallerOwnsBuffer(t *testing.T) {
	t.Parallel()
	f := newFetcher(t)
	url := fetch.DefaultDataURL + "data/CH"

	first, err := f.Fetch(context.Background(), url)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	for i := range first.Data {
		first.Data[i] = 'x'
	}

	second, err := f.Fetch(context.Background(), url)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	checkRecord(t, second.Data, "data/CH")
}

func TestFetcher_ConcurrentCalls(t *testing.T) {
	t.Parallel()
	f := newFetcher(t)

	var wg sync.WaitGroup
	errs := make(chan string, 64)
	for i := 0; i < 64; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			url := fetch.DefaultAggregateDataURL + "data/US"
			if i%2 == 0 {
				url = fetch.DefaultDataURL + "data/US"
			}
			resp, err := f.Fetch(context.Background(), url)
			if err != nil {
				errs <- err.Error()
				return
			}
			if !strings.Contains(string(resp.Data), `"data/US"`) {
				errs <- "unexpected body " + string(resp.Data)
			}
		}(i)
	}
	wg.Wait()
	close(errs)
	for e := range errs {
		t.Error(e)
	}
}

func TestFetcher_IgnoresCancelledContext(t *testing.T) {
	t.Parallel()
	f := newFetcher(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	resp, err := f.Fetch(ctx, fetch.DefaultDataURL+"data/CH")
	if err != nil {
		t.Fatalf("Fetch with cancelled ctx: %v", err)
	}
	checkRecord(t, resp.Data, "data/CH")
}

// ─── Construction ──────────────────────────────────────────────────────

func TestNew_CustomPrefixes(t *testing.T) {
	t.Parallel()
	ds := dataset.FromRecords(map[string]string{"data/CH": `{"id":"data/CH","name":"SWITZERLAND"}`})
	f, err := fixture.New(fetch.FixtureConfig{
		DataURL:          "https://Example.com/ssl-address/",
		AggregateDataURL: "https://example.com/ssl-aggregate-address/",
	}, ds, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if got := f.DataURL("data/CH"); got != "https://example.com/ssl-address/data/CH" {
		t.Errorf("DataURL = %q", got)
	}
	resp, err := f.Fetch(context.Background(), f.AggregateURL("data/CH"))
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	checkAggregate(t, resp.Data, "data/CH")

	if _, err := f.Fetch(context.Background(), fetch.DefaultDataURL+"data/CH"); !fetch.IsUnroutable(err) {
		t.Errorf("default prefix should not route with custom config, got %v", err)
	}
}

func TestNew_MixedCasePrefixRoutesItsOwnURLs(t *testing.T) {
	t.Parallel()
	ds := dataset.FromRecords(map[string]string{"data/CH": `{"id":"data/CH","name":"SWITZERLAND"}`})
	cfg := fetch.FixtureConfig{
		DataURL:          "https://Example.COM/ssl-address/",
		AggregateDataURL: "https://Example.COM/ssl-aggregate-address/",
	}
	f, err := fixture.New(cfg, ds, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	url := cfg.DataURL + "data/CH"
	resp, err := f.Fetch(context.Background(), url)
	if err != nil {
		t.Fatalf("Fetch(%s): %v", url, err)
	}
	if resp.URL != url {
		t.Errorf("url not echoed: got %q want %q", resp.URL, url)
	}
	checkRecord(t, resp.Data, "data/CH")

	resp, err = f.Fetch(context.Background(), cfg.AggregateDataURL+"junk")
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if string(resp.Data) != "{}" {
		t.Errorf("expected {}, got %q", resp.Data)
	}
}

func TestNew_Errors(t *testing.T) {
	t.Parallel()
	if _, err := fixture.New(fetch.FixtureConfig{}, nil, nil); err == nil {
		t.Error("expected error for nil dataset")
	}
	ds := dataset.FromRecords(nil)
	if _, err := fixture.New(fetch.FixtureConfig{DataURL: "x://", AggregateDataURL: "x://"}, ds, nil); err == nil {
		t.Error("expected error for identical prefixes")
	}
}
