package fixtureserver

import "github.com/raysh454/addrmeta/internal/logging"

type Config struct {
	// ListenAddr is the HTTP listen address, e.g. ":8088".
	ListenAddr string
	Logger     logging.Logger
}

func DefaultConfig() Config {
	return Config{ListenAddr: "127.0.0.1:8088"}
}
