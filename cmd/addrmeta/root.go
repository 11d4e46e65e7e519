package main

import (
	"context"
	"io"

	"github.com/spf13/cobra"

	"github.com/raysh454/addrmeta/internal/app"
	"github.com/raysh454/addrmeta/internal/logging"
)

const appName = "addrmeta"

// rootOptions holds the persistent flags and the application they build.
type rootOptions struct {
	verbose    bool
	logLevel   string
	dataFile   string
	dbPath     string
	snapshotID string

	app *app.Application
}

func newRootCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   appName,
		Short: "Serve and verify address metadata fixtures",
		Long: `addrmeta answers address metadata lookups from a fixture dataset instead of
the network. URLs under the plain prefix return a single record, URLs under
the aggregate prefix return a region with all its sub-records, unknown keys
return {} and any other URL fails.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.init(cmd)
		},
	}

	flags := cmd.PersistentFlags()
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "log debug output to stderr (same as --log-level debug)")
	flags.StringVar(&opts.logLevel, "log-level", "warn", "minimum log level: debug, info, warn or error")
	flags.StringVar(&opts.dataFile, "data", "", "fixture data file (default: embedded dataset)")
	flags.StringVar(&opts.dbPath, "db", "", "snapshot database; serves the latest snapshot when set")
	flags.StringVar(&opts.snapshotID, "snapshot", "", "snapshot id to serve from --db (default: latest)")

	cmd.AddCommand(
		newFetchCmd(opts),
		newKeysCmd(opts),
		newServeCmd(opts),
		newImportCmd(opts),
		newSnapshotsCmd(opts),
		newVerifyCmd(opts),
	)
	return cmd
}

func (o *rootOptions) init(cmd *cobra.Command) error {
	cfg := app.DefaultConfig()
	cfg.FetchCfg.Fixture.DataFile = o.dataFile
	cfg.DBPath = o.dbPath
	cfg.SnapshotID = o.snapshotID
	level, err := logging.ParseLevel(o.logLevel)
	if err != nil {
		return err
	}
	if o.verbose {
		level = logging.LevelDebug
	}
	cfg.LogLevel = level

	logger := logging.NewLogger(cmd.ErrOrStderr(), appName, cfg.LogLevel)
	o.app = app.NewApplication(cfg, logger)
	return nil
}

// execute runs the command tree against args and releases the application
// afterwards.
func execute(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	opts := &rootOptions{}
	cmd := newRootCmd(opts)
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	err := cmd.ExecuteContext(ctx)
	if opts.app != nil {
		if serr := opts.app.Shutdown(context.Background()); serr != nil && err == nil {
			err = serr
		}
	}
	return err
}
