package fixture

import (
	"fmt"

	"github.com/raysh454/addrmeta/internal/dataset"
	"github.com/raysh454/addrmeta/internal/fetch"
	"github.com/raysh454/addrmeta/internal/logging"
)

// Register makes the fixture backend available to fetch.New.
func Register() {
	fetch.RegisterBackend(string(fetch.BackendFixture), newBackend)
}

func newBackend(cfg fetch.Config, logger logging.Logger) (fetch.Fetcher, error) {
	ds, err := LoadDataset(cfg.Fixture)
	if err != nil {
		return nil, err
	}
	f, err := New(cfg.Fixture, ds, logger)
	if err != nil {
		return nil, err
	}
	logger.Debug("created fixture fetcher",
		logging.Field{Key: "data_url", Value: f.data.Prefix()},
		logging.Field{Key: "aggregate_url", Value: f.aggregate.Prefix()},
		logging.Field{Key: "records", Value: ds.Len()})
	return f, nil
}

// LoadDataset resolves the dataset named by cfg: an explicit Dataset, then
// DataFile, then the embedded fixtures.
func LoadDataset(cfg fetch.FixtureConfig) (*dataset.Dataset, error) {
	switch {
	case cfg.Dataset != nil:
		return cfg.Dataset, nil
	case cfg.DataFile != "":
		ds, err := dataset.ParseFile(cfg.DataFile)
		if err != nil {
			return nil, fmt.Errorf("load fixture data: %w", err)
		}
		return ds, nil
	}
	ds, err := dataset.Embedded()
	if err != nil {
		return nil, fmt.Errorf("load embedded fixture data: %w", err)
	}
	return ds, nil
}
