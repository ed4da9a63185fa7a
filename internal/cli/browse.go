package cli

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/leafo/filenode/internal/filenode"
)

func newLsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "ls [dir]",
		Short: "List the immediate children of a directory",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := a.tree.Directory(a.rootArg(args))
			if err != nil {
				return err
			}
			entries, err := dir.Entries()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			st := newStyles(out)
			for _, entry := range entries {
				fmt.Fprintf(out, "%s %s\n", st.kind(entry.Kind()), entry.Name())
			}
			return nil
		},
	}
}

func newFindCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "find <dir> <name>",
		Short: "Look up a child of a directory by exact name",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := a.tree.Directory(args[0])
			if err != nil {
				return err
			}
			entry, ok, err := dir.Find(args[1])
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("no entry named %q in %s", args[1], dir.Path())
			}
			fmt.Fprintln(cmd.OutOrStdout(), entry.String())
			return nil
		},
	}
}

func newCatCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "cat <file>",
		Short: "Print the contents of a text file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			file, err := a.tree.TextFile(args[0])
			if err != nil {
				return err
			}
			content, err := file.Content()
			if err != nil {
				return err
			}
			_, err = io.WriteString(cmd.OutOrStdout(), content)
			return err
		},
	}
}

func newClassifyCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "classify <path>...",
		Short: "Report whether each path is a directory, a text file or a generic file",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			st := newStyles(out)

			var errs []error
			for _, path := range args {
				kind, err := a.tree.Classify(path)
				if err != nil {
					fmt.Fprintf(out, "%s %s\n", st.errLabel.Render("error"), path)
					errs = append(errs, err)
					continue
				}
				fmt.Fprintf(out, "%s %s\n", st.kind(kind), path)
			}
			return errors.Join(errs...)
		},
	}
}

func newTreeCmd(a *app) *cobra.Command {
	var dirsOnly bool

	cmd := &cobra.Command{
		Use:   "tree [dir]",
		Short: "Print a directory and everything below it",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := a.tree.Directory(a.rootArg(args))
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			st := newStyles(out)
			return dir.Walk(func(entry filenode.Entry, err error) error {
				if err != nil {
					a.logger.Warn("Cannot list directory", "path", entry.Path(), "error", err)
					return nil
				}
				if entry.Path() == dir.Path() {
					fmt.Fprintln(out, dir.Path())
					return nil
				}
				if dirsOnly && entry.Kind() != filenode.KindDirectory {
					return nil
				}

				rel, relErr := filepath.Rel(dir.Path(), entry.Path())
				if relErr != nil {
					return relErr
				}
				depth := strings.Count(rel, string(filepath.Separator))
				name := entry.Name()
				if entry.Kind() == filenode.KindDirectory {
					name += "/"
				} else if entry.Kind() == filenode.KindFile {
					name = st.muted.Render(name)
				}
				fmt.Fprintf(out, "%s%s\n", strings.Repeat("  ", depth+1), name)
				return nil
			})
		},
	}

	cmd.Flags().BoolVarP(&dirsOnly, "dirs-only", "d", false, "Only print directories")
	return cmd
}
