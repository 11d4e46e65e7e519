package app

import (
	"github.com/raysh454/addrmeta/internal/drift"
	"github.com/raysh454/addrmeta/internal/fetch"
	"github.com/raysh454/addrmeta/internal/fixtureserver"
	"github.com/raysh454/addrmeta/internal/logging"
)

// Config is the runtime configuration shared by the commands. Each module
// keeps its own config struct; this only composes them.
type Config struct {
	ServerCfg fixtureserver.Config

	// Fetch backend selection; the fixture section also names the data file.
	FetchCfg fetch.Config

	DriftCfg drift.Config

	// DBPath is the snapshot database. Empty means fixtures are read from
	// FetchCfg.Fixture (data file or embedded dataset).
	DBPath string

	// SnapshotID selects the snapshot served from DBPath; empty means the
	// most recent one.
	SnapshotID string

	LogLevel logging.Level
}

// DefaultConfig returns a Config populated with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		ServerCfg: fixtureserver.DefaultConfig(),
		FetchCfg:  fetch.DefaultConfig(),
		DriftCfg:  drift.DefaultConfig(),
		LogLevel:  logging.LevelInfo,
	}
}
