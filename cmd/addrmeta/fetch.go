package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/raysh454/addrmeta/internal/fetch"
)

type fetchOptions struct {
	backend string
	asJSON  bool
}

type fetchResult struct {
	Success bool   `json:"success"`
	URL     string `json:"url"`
	Data    string `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

func newFetchCmd(root *rootOptions) *cobra.Command {
	opts := &fetchOptions{}
	cmd := &cobra.Command{
		Use:   "fetch URL...",
		Short: "Fetch URLs and print their bodies",
		Long: `Fetch every URL concurrently and print the results in argument order.
The command fails when any fetch fails.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := root.app
			if opts.backend != "" {
				a.Config.FetchCfg.Backend = fetch.Backend(opts.backend)
			}
			f, err := a.Fetcher(cmd.Context())
			if err != nil {
				return err
			}

			pending := make([]<-chan fetch.Outcome, len(args))
			for i, u := range args {
				pending[i] = fetch.Async(cmd.Context(), f, u)
			}

			out := cmd.OutOrStdout()
			enc := json.NewEncoder(out)
			failed := 0
			for _, ch := range pending {
				o := <-ch
				res := fetchResult{Success: o.Success, URL: o.URL}
				if o.Success {
					res.Data = string(o.Data)
				} else {
					failed++
					if o.Err != nil {
						res.Error = o.Err.Error()
					}
				}

				if opts.asJSON {
					if err := enc.Encode(res); err != nil {
						return err
					}
					continue
				}
				if res.Success {
					fmt.Fprintln(out, res.Data)
				} else {
					fmt.Fprintf(cmd.ErrOrStderr(), "%s: %s\n", res.URL, res.Error)
				}
			}

			if failed > 0 {
				return fmt.Errorf("%d of %d fetches failed", failed, len(args))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&opts.backend, "backend", "", "fetch backend: fixture or http")
	cmd.Flags().BoolVar(&opts.asJSON, "json", false, "print one JSON outcome per line")
	return cmd
}
