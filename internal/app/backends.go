package app

import (
	"sync"

	"github.com/raysh454/addrmeta/internal/fixture"
	"github.com/raysh454/addrmeta/internal/httpfetch"
)

var registerOnce sync.Once

// RegisterDefaultBackends registers the built-in fetch backends. It is safe
// to call more than once.
func RegisterDefaultBackends() {
	registerOnce.Do(func() {
		fixture.Register()
		httpfetch.Register()
	})
}
