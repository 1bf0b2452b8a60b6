package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/idilsaglam/checklist/internal/tui"
	"github.com/idilsaglam/checklist/internal/ui"
)

func importCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Import a list from a JSON file (- for stdin)",
		Args:  exactArgs(1, "import <file>"),
		RunE: func(cmd *cobra.Command, args []string) error {
			var raw []byte
			var err error
			if args[0] == "-" {
				raw, err = io.ReadAll(cmd.InOrStdin())
			} else {
				raw, err = os.ReadFile(args[0])
			}
			if err != nil {
				return fmt.Errorf("read %s: %w", args[0], err)
			}
			l, err := a.store.ImportLists(cmd.Context(), raw)
			if err != nil {
				return err
			}
			ui.OK(cmd.OutOrStdout(), fmt.Sprintf("Imported %q (%s) with %d tasks", l.Title, l.Slug, len(l.Items)))
			return nil
		},
	}
}

func exportCmd(a *app) *cobra.Command {
	var outPath string
	cmd := &cobra.Command{
		Use:   "export <slug>",
		Short: "Write a list as JSON",
		Args:  exactArgs(1, "export <slug> [-o file]"),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := a.store.ExportList(args[0])
			if err != nil {
				return err
			}
			if outPath == "" || outPath == "-" {
				_, err = cmd.OutOrStdout().Write(append(raw, '\n'))
				return err
			}
			if err := os.WriteFile(outPath, raw, 0o644); err != nil {
				return fmt.Errorf("write %s: %w", outPath, err)
			}
			ui.OK(cmd.OutOrStdout(), "Exported "+args[0]+" to "+outPath)
			return nil
		},
	}
	cmd.Flags().StringVarP(&outPath, "output", "o", "", "file to write (default stdout)")
	return cmd
}

func tuiCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "tui <slug>",
		Short: "Edit a list interactively",
		Args:  exactArgs(1, "tui <slug>"),
		RunE: func(cmd *cobra.Command, args []string) error {
			return tui.Run(cmd.Context(), a.store, args[0])
		},
	}
}
