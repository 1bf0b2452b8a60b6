package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/idilsaglam/checklist/internal/model"
	"github.com/idilsaglam/checklist/internal/ordering"
	"github.com/idilsaglam/checklist/internal/ui"
)

func lsCmd(a *app) *cobra.Command {
	var sortBy string
	var page int
	cmd := &cobra.Command{
		Use:   "ls",
		Short: "Show all lists",
		Args:  exactArgs(0, "ls [--sort new|old] [--page N]"),
		RunE: func(cmd *cobra.Command, _ []string) error {
			order, err := ordering.ParseOrder(sortBy)
			if err != nil {
				return usageError{msg: err.Error()}
			}
			out := cmd.OutOrStdout()
			lists := ordering.ListsBy(a.store.Lists(), order)
			if len(lists) == 0 {
				fmt.Fprintln(out, `No lists yet. Create one with: checklist new "Groceries"`)
				return nil
			}
			p := ordering.Paginate(lists, a.cfg.PageSize, page)
			lines := make([]string, 0, len(p.Items)+2)
			for _, l := range p.Items {
				lines = append(lines, ui.ListLine(l))
			}
			if p.TotalPages > 1 {
				lines = append(lines, "", fmt.Sprintf("page %d/%d", p.Current, p.TotalPages))
			}
			ui.Panel(out, lines)
			return nil
		},
	}
	cmd.Flags().StringVar(&sortBy, "sort", "new", "order by creation time: new or old")
	cmd.Flags().IntVar(&page, "page", 1, "page to show")
	return cmd
}

func newCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "new <title...>",
		Short: "Create a list",
		Args:  minArgs(1, "new <title...>"),
		RunE: func(cmd *cobra.Command, args []string) error {
			l, err := a.store.CreateList(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return err
			}
			ui.OK(cmd.OutOrStdout(), fmt.Sprintf("Created %q (%s)", l.Title, l.Slug))
			return nil
		},
	}
}

func renameCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "rename <slug> <title...>",
		Short: "Change a list's title",
		Args:  minArgs(2, "rename <slug> <title...>"),
		RunE: func(cmd *cobra.Command, args []string) error {
			l, err := a.store.UpdateListTitle(cmd.Context(), args[0], strings.Join(args[1:], " "))
			if err != nil {
				return err
			}
			ui.OK(cmd.OutOrStdout(), fmt.Sprintf("Renamed %s to %q", l.Slug, l.Title))
			return nil
		},
	}
}

func rmCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "rm <slug>",
		Short: "Delete a list and its tasks",
		Args:  exactArgs(1, "rm <slug>"),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, ok := a.store.GetListBySlug(args[0]); !ok {
				return &model.NotFoundError{Kind: "list", Key: args[0]}
			}
			if err := a.store.DeleteList(cmd.Context(), args[0]); err != nil {
				return err
			}
			ui.OK(cmd.OutOrStdout(), "Deleted "+args[0])
			return nil
		},
	}
}
