package main

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/raysh454/addrmeta/internal/drift"
	"github.com/raysh454/addrmeta/internal/httpfetch"
	"github.com/raysh454/addrmeta/internal/lookupkey"
)

type verifyOptions struct {
	remotePlain     string
	remoteAggregate string
	allKeys         bool
	concurrency     int
	asJSON          bool
}

func newVerifyCmd(root *rootOptions) *cobra.Command {
	opts := &verifyOptions{}
	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Compare the fixtures with a live metadata service",
		Long: `Fetch every region (and with --all-keys every record) from the fixtures and
from the live service, and report bodies that differ. JSON bodies are compared
structurally. The command fails when any lookup drifted.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.remotePlain == "" && opts.remoteAggregate == "" {
				return errors.New("verify requires --remote-plain or --remote-aggregate")
			}
			a := root.app
			local, err := a.Fixture(cmd.Context())
			if err != nil {
				return err
			}
			remote := httpfetch.New(a.Config.FetchCfg.HTTP, a.Logger, nil)

			ds := local.Dataset()
			keys := ds.Keys()
			if !opts.allKeys {
				keys = keys[:0:0]
				for _, code := range ds.RegionCodes() {
					keys = append(keys, lookupkey.RegionKey(code))
				}
			}

			pairs := map[string]string{}
			var urls []string
			if opts.remotePlain != "" {
				pairs[local.DataURL("")] = opts.remotePlain
				for _, k := range keys {
					urls = append(urls, local.DataURL(k))
				}
			}
			if opts.remoteAggregate != "" {
				pairs[local.AggregateURL("")] = opts.remoteAggregate
				for _, k := range keys {
					if lookupkey.IsRegionKey(k) {
						urls = append(urls, local.AggregateURL(k))
					}
				}
			}

			cfg := a.Config.DriftCfg
			if opts.concurrency > 0 {
				cfg.MaxConcurrency = opts.concurrency
			}
			c, err := drift.New(cfg, local, remote, a.Logger)
			if err != nil {
				return err
			}
			c.MapURL = drift.Rebaser(pairs)

			reports, err := c.Compare(cmd.Context(), urls)
			if err != nil {
				return err
			}
			return printReports(cmd, reports, opts.asJSON)
		},
	}
	cmd.Flags().StringVar(&opts.remotePlain, "remote-plain", "", "live base URL for single records")
	cmd.Flags().StringVar(&opts.remoteAggregate, "remote-aggregate", "", "live base URL for aggregates")
	cmd.Flags().BoolVar(&opts.allKeys, "all-keys", false, "verify every record, not only regions")
	cmd.Flags().IntVar(&opts.concurrency, "concurrency", 0, "parallel lookups (default from config)")
	cmd.Flags().BoolVar(&opts.asJSON, "json", false, "print reports as JSON lines")
	return cmd
}

func printReports(cmd *cobra.Command, reports []drift.Report, asJSON bool) error {
	out := cmd.OutOrStdout()
	enc := json.NewEncoder(out)
	drifted := 0
	for _, r := range reports {
		if !r.OK() {
			drifted++
		}
		if asJSON {
			if err := enc.Encode(r); err != nil {
				return err
			}
			continue
		}
		if r.OK() {
			continue
		}
		fmt.Fprintf(out, "%s %s -> %s\n", r.Status, r.URL, r.RemoteURL)
		if r.WantError != "" || r.GotError != "" {
			fmt.Fprintf(out, "  fixture error: %q, live error: %q\n", r.WantError, r.GotError)
		}
		for _, c := range r.Diff {
			sign := "+"
			if c.Type == "removed" {
				sign = "-"
			}
			fmt.Fprintf(out, "  %s %q\n", sign, c.Content)
		}
	}
	if !asJSON {
		fmt.Fprintf(out, "%d checked, %d drifted\n", len(reports), drifted)
	}
	if drifted > 0 {
		return fmt.Errorf("%d of %d lookups drifted", drifted, len(reports))
	}
	return nil
}
