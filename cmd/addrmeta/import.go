package main

import (
	"errors"
	"fmt"
	"path/filepath"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/raysh454/addrmeta/internal/dataset"
)

func newImportCmd(root *rootOptions) *cobra.Command {
	var (
		name           string
		skipValidation bool
	)
	cmd := &cobra.Command{
		Use:   "import FILE",
		Short: "Import a fixture data file as a new snapshot",
		Long: `Parse FILE (one key=json record per line), validate it and store it in the
database named by --db. The new snapshot id is printed.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if root.dbPath == "" {
				return errors.New("import requires --db")
			}
			ds, err := dataset.ParseFile(args[0])
			if err != nil {
				return err
			}
			if !skipValidation {
				if err := ds.Validate(); err != nil {
					return err
				}
			}

			s, err := root.app.Store()
			if err != nil {
				return err
			}
			if name == "" {
				name = filepath.Base(args[0])
			}
			snap, err := s.Import(cmd.Context(), name, ds)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), snap.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "snapshot name (default: file name)")
	cmd.Flags().BoolVar(&skipValidation, "skip-validation", false, "store records even if they are malformed")
	return cmd
}

func newSnapshotsCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "snapshots",
		Short: "List the snapshots stored in --db",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := root.app.Store()
			if err != nil {
				return err
			}
			snaps, err := s.List(cmd.Context())
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tNAME\tRECORDS\tCREATED")
			for _, snap := range snaps {
				fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n", snap.ID, snap.Name, snap.RecordCount, snap.CreatedAt.Format(time.RFC3339))
			}
			return tw.Flush()
		},
	}
}
