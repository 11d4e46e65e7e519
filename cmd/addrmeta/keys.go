package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newKeysCmd(root *rootOptions) *cobra.Command {
	var regions bool
	cmd := &cobra.Command{
		Use:   "keys",
		Short: "List the record keys in the fixture dataset",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ds, err := root.app.Dataset(cmd.Context())
			if err != nil {
				return err
			}
			list := ds.Keys()
			if regions {
				list = ds.RegionCodes()
			}
			for _, k := range list {
				fmt.Fprintln(cmd.OutOrStdout(), k)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&regions, "regions", false, "list region codes instead of keys")
	return cmd
}
