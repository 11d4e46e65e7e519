package fetch

import (
	"time"

	"github.com/raysh454/addrmeta/internal/dataset"
)

type Backend string

const (
	BackendFixture Backend = "fixture"
	BackendHTTP    Backend = "http"
)

const (
	DefaultDataURL          = "test:///plain/"
	DefaultAggregateDataURL = "test:///aggregate/"
)

// Config selects and parameterises a fetch backend.
type Config struct {
	Backend Backend
	Fixture FixtureConfig
	HTTP    HTTPConfig
}

// FixtureConfig configures the no-I/O fixture backend.
type FixtureConfig struct {
	// DataURL prefixes single-record URLs, e.g. "test:///plain/data/CH".
	DataURL string
	// AggregateDataURL prefixes aggregate URLs, e.g. "test:///aggregate/data/CH".
	AggregateDataURL string

	// Dataset is served when set. Otherwise DataFile is parsed, and failing
	// that the embedded dataset is used.
	Dataset  *dataset.Dataset
	DataFile string
}

// HTTPConfig configures the network backend.
type HTTPConfig struct {
	Timeout     time.Duration
	MaxBodySize int64
	UserAgent   string
}

// DefaultConfig returns a Config selecting the fixture backend.
func DefaultConfig() Config {
	return Config{
		Backend: BackendFixture,
		Fixture: FixtureConfig{
			DataURL:          DefaultDataURL,
			AggregateDataURL: DefaultAggregateDataURL,
		},
		HTTP: HTTPConfig{
			Timeout:     30 * time.Second,
			MaxBodySize: 10 << 20,
			UserAgent:   "addrmeta/0.1",
		},
	}
}
