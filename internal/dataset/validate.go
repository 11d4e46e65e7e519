package dataset

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Problem describes one record that does not have the shape consumers rely
// on.
type Problem struct {
	Key       string
	Aggregate bool
	Reason    string
}

func (p Problem) String() string {
	kind := "record"
	if p.Aggregate {
		kind = "aggregate"
	}
	return fmt.Sprintf("%s %q: %s", kind, p.Key, p.Reason)
}

// ValidationError lists every problem found by Validate.
type ValidationError struct {
	Problems []Problem
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Problems))
	for _, p := range e.Problems {
		parts = append(parts, p.String())
	}
	return fmt.Sprintf("dataset has %d invalid entries: %s", len(e.Problems), strings.Join(parts, "; "))
}

// Validate checks that every record is valid JSON beginning with
// {"id":"<key>" and ending with "}, and that every aggregate is valid JSON
// beginning with {"<key> and ending with "}}. Keys outside "data" are only
// checked for JSON validity.
func (d *Dataset) Validate() error {
	var problems []Problem
	for _, k := range d.keys {
		v := d.records[k]
		if !json.Valid(v) {
			problems = append(problems, Problem{Key: k, Reason: "invalid JSON"})
			continue
		}
		if k != "data" && !strings.HasPrefix(k, "data/") {
			continue
		}
		if r := checkShape(v, `{"id":"`+k+`"`, `"}`); r != "" {
			problems = append(problems, Problem{Key: k, Reason: r})
		}
	}
	for _, k := range d.AggregateKeys() {
		v := d.aggregates[k]
		if !json.Valid(v) {
			problems = append(problems, Problem{Key: k, Aggregate: true, Reason: "invalid JSON"})
			continue
		}
		if r := checkShape(v, `{"`+k, `"}}`); r != "" {
			problems = append(problems, Problem{Key: k, Aggregate: true, Reason: r})
		}
	}
	if len(problems) > 0 {
		return &ValidationError{Problems: problems}
	}
	return nil
}

func checkShape(v []byte, begin, end string) string {
	if !bytes.HasPrefix(v, []byte(begin)) {
		return "does not begin with " + begin
	}
	if !bytes.HasSuffix(v, []byte(end)) {
		return "does not end with " + end
	}
	return ""
}
