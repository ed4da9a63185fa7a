// Package cli implements the filenode command line.
package cli

import (
	"context"
	"log/slog"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/leafo/filenode/internal/config"
	"github.com/leafo/filenode/internal/filenode"
)

// app carries state shared by every subcommand once flags are parsed.
type app struct {
	configPath string
	verbose    bool

	cfg    *config.Config
	logger *slog.Logger
	tree   *filenode.Tree
}

func newRootCmd() *cobra.Command {
	a := &app{}

	cmd := &cobra.Command{
		Use:   "filenode",
		Short: "Browse and classify a local directory tree",
		Long: `filenode lists directories, classifies files as text or binary and
records a tree into a SQLite catalog that can be pushed to Meilisearch
or a shell command.

Settings come from filenode.yaml (or --config), a .env file and
FILENODE_* environment variables, in increasing priority.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
	}

	cmd.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "Enable debug logging")
	cmd.PersistentFlags().StringVar(&a.configPath, "config", "", "Path to a config file (default ./"+config.ConfigFileName+")")

	cmd.AddCommand(
		newLsCmd(a),
		newFindCmd(a),
		newCatCmd(a),
		newClassifyCmd(a),
		newTreeCmd(a),
		newIndexCmd(a),
		newStoredCmd(a),
		newVersionCmd(),
	)
	return cmd
}

func (a *app) setup(cmd *cobra.Command) error {
	level := slog.LevelInfo
	if a.verbose {
		level = slog.LevelDebug
	}
	a.logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))

	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if err := cfg.Validate(a.logger); err != nil {
		return err
	}
	a.cfg = cfg
	a.tree = filenode.NewTree(cfg.TreeOptions(), a.logger)
	return nil
}

// rootArg returns the first argument or the configured root.
func (a *app) rootArg(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return a.cfg.Root
}

// Execute runs the root command and cancels on interrupt.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	return newRootCmd().ExecuteContext(ctx)
}
