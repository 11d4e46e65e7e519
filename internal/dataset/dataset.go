// Package dataset holds the read-only fixture data served by the fixture
// fetcher: single records keyed by lookup key, and per-region aggregates
// derived from them.
package dataset

import (
	"bufio"
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/raysh454/addrmeta/internal/lookupkey"
)

//go:embed countryinfo.txt
var embedded []byte

var ErrDuplicateKey = errors.New("duplicate key")

// maxLineSize bounds a single "key=value" line.
const maxLineSize = 1 << 20

// Dataset is immutable once constructed and safe for concurrent use.
type Dataset struct {
	records    map[string][]byte
	aggregates map[string][]byte
	keys       []string
	regions    []string
}

// Embedded parses the dataset bundled with the binary.
func Embedded() (*Dataset, error) {
	return Parse(bytes.NewReader(embedded))
}

// ParseFile parses a dataset file in the format accepted by Parse.
func ParseFile(path string) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dataset: %w", err)
	}
	defer f.Close()
	ds, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return ds, nil
}

// Parse reads one "key=value" record per line, e.g.
//
//	data/CH/AG={"id":"data/CH/AG","key":"AG","name":"Aargau"}
//
// Blank lines, lines starting with '#', and lines without '=' are skipped.
// A key appearing twice is an error.
func Parse(r io.Reader) (*Dataset, error) {
	records := make(map[string]string)
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimRight(sc.Text(), "\r")
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok || key == "" {
			continue
		}
		if _, dup := records[key]; dup {
			return nil, fmt.Errorf("line %d: %w: %q", lineNo, ErrDuplicateKey, key)
		}
		records[key] = value
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read dataset: %w", err)
	}
	return FromRecords(records), nil
}

// FromRecords builds a dataset from key -> JSON value pairs. Empty keys are
// ignored.
func FromRecords(records map[string]string) *Dataset {
	ds := &Dataset{
		records:    make(map[string][]byte, len(records)),
		aggregates: make(map[string][]byte),
	}
	for k, v := range records {
		if k == "" {
			continue
		}
		ds.records[k] = []byte(v)
		ds.keys = append(ds.keys, k)
	}
	sort.Strings(ds.keys)

	// Keys are sorted, so a region key precedes its sub-keys and each
	// aggregate starts with {"data/XX.
	builders := make(map[string]*bytes.Buffer)
	var order []string
	for _, k := range ds.keys {
		agg, ok := lookupkey.AggregateKey(k)
		if !ok {
			continue
		}
		b, seen := builders[agg]
		if !seen {
			b = &bytes.Buffer{}
			b.WriteString("{")
			builders[agg] = b
			order = append(order, agg)
		} else {
			b.WriteString(", ")
		}
		b.WriteString(`"` + k + `": `)
		b.Write(ds.records[k])
	}
	for _, agg := range order {
		b := builders[agg]
		b.WriteString("}")
		ds.aggregates[agg] = b.Bytes()
		if code, ok := lookupkey.RegionCode(agg); ok {
			ds.regions = append(ds.regions, code)
		}
	}
	sort.Strings(ds.regions)
	return ds
}

// Record returns a copy of the single record stored under key.
func (d *Dataset) Record(key string) ([]byte, bool) {
	v, ok := d.records[key]
	if !ok {
		return nil, false
	}
	return bytes.Clone(v), true
}

// Aggregate returns a copy of the aggregate for a region key such as
// "data/CH".
func (d *Dataset) Aggregate(key string) ([]byte, bool) {
	v, ok := d.aggregates[key]
	if !ok {
		return nil, false
	}
	return bytes.Clone(v), true
}

// Keys returns every record key in sorted order.
func (d *Dataset) Keys() []string {
	return append([]string(nil), d.keys...)
}

// AggregateKeys returns every aggregate key ("data/XX") in sorted order.
func (d *Dataset) AggregateKeys() []string {
	out := make([]string, 0, len(d.regions))
	for _, code := range d.regions {
		out = append(out, lookupkey.RegionKey(code))
	}
	return out
}

// RegionCodes returns the region codes that have data, e.g. "CH", "US".
func (d *Dataset) RegionCodes() []string {
	return append([]string(nil), d.regions...)
}

// Len returns the number of single records.
func (d *Dataset) Len() int { return len(d.records) }
