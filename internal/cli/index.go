package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/leafo/filenode/internal/catalog"
	"github.com/leafo/filenode/internal/filenode"
)

func newIndexCmd(a *app) *cobra.Command {
	var dbPath string

	cmd := &cobra.Command{
		Use:   "index [dir]",
		Short: "Record a directory tree into the SQLite catalog",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			root, err := filepath.Abs(a.rootArg(args))
			if err != nil {
				return fmt.Errorf("resolve root: %w", err)
			}
			if dbPath == "" {
				dbPath = a.cfg.Catalog.DBPath
			}

			db, err := catalog.OpenDatabase(ctx, dbPath)
			if err != nil {
				return err
			}
			defer db.Close()
			a.logger.Info("Opened database", "path", dbPath)

			c := catalog.NewCatalog(db, a.tree, root, a.cfg.CatalogOptions(), a.logger)

			a.logger.Info("Launching synchronization", "root", root)
			summary, err := c.Synchronize(ctx)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "indexed %d entries (%d text files), removed %d; chunks +%d ~%d -%d; catalog holds %d entries and %d chunks\n",
				summary.EntriesSeen, summary.TextFiles, summary.EntriesRemoved,
				summary.ChunksInserted, summary.ChunksUpdated, summary.ChunksDeleted,
				summary.TotalEntries, summary.TotalChunks)
			return nil
		},
	}

	cmd.Flags().StringVar(&dbPath, "db", "", "Path to the SQLite database file (default from config)")
	return cmd
}

func newStoredCmd(a *app) *cobra.Command {
	var dbPath string

	cmd := &cobra.Command{
		Use:   "stored [path]",
		Short: "Show catalogued entries, or the stored chunks of one path",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if dbPath == "" {
				dbPath = a.cfg.Catalog.DBPath
			}

			db, err := catalog.OpenDatabase(ctx, dbPath)
			if err != nil {
				return err
			}
			defer db.Close()

			c := catalog.NewCatalog(db, a.tree, a.cfg.Root, catalog.Options{}, a.logger)
			out := cmd.OutOrStdout()
			st := newStyles(out)

			if len(args) == 1 {
				chunks, err := c.StoredChunks(ctx, filepath.ToSlash(args[0]))
				if err != nil {
					return err
				}
				for _, chunk := range chunks {
					fmt.Fprintf(out, "%s\n%s\n", st.muted.Render(fmt.Sprintf("--- lines %d-%d (%s)", chunk.StartLine, chunk.EndLine, chunk.ContentHash)), chunk.Content)
				}
				return nil
			}

			entries, err := c.StoredEntries(ctx)
			if err != nil {
				return err
			}
			for _, entry := range entries {
				fmt.Fprintf(out, "%s %s %s\n", st.kind(kindFromStored(entry.Kind)), entry.Path, st.muted.Render(fmt.Sprintf("chunks=%d updated=%s", entry.Chunks, entry.UpdatedAt)))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&dbPath, "db", "", "Path to the SQLite database file (default from config)")
	return cmd
}

func kindFromStored(s string) filenode.Kind {
	kind, err := filenode.ParseKind(s)
	if err != nil {
		return filenode.KindFile
	}
	return kind
}
