// Command addrmeta serves, inspects and verifies address metadata fixtures.
//
// Usage:
//
//	addrmeta fetch test:///plain/data/CH
//	addrmeta keys --regions
//	addrmeta serve --addr :8088
//	addrmeta import countryinfo.txt --db fixtures.db
//	addrmeta verify --remote-plain https://host/address/ --remote-aggregate https://host/aggregate/
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := execute(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		stop()
		os.Exit(1)
	}
}
