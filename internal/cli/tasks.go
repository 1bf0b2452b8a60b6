package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/idilsaglam/checklist/internal/model"
	"github.com/idilsaglam/checklist/internal/ordering"
	"github.com/idilsaglam/checklist/internal/ui"
)

func showCmd(a *app) *cobra.Command {
	var sortBy string
	var group bool
	cmd := &cobra.Command{
		Use:   "show <slug>",
		Short: "Show the tasks of a list",
		Long: `Show the tasks of a list. Without --sort tasks appear pending first.
The numbers shown are the ones to pass to edit, done and del.`,
		Args: exactArgs(1, "show <slug> [--sort new|old] [--group]"),
		RunE: func(cmd *cobra.Command, args []string) error {
			l, ok := a.store.GetListBySlug(args[0])
			if !ok {
				return &model.NotFoundError{Kind: "list", Key: args[0]}
			}
			rows := make([]ordering.Indexed, len(l.Items))
			for i, it := range l.Items {
				rows[i] = ordering.Indexed{Item: it, Index: i}
			}
			if sortBy != "" {
				order, err := ordering.ParseOrder(sortBy)
				if err != nil {
					return usageError{msg: err.Error()}
				}
				rows = ordering.View(l.Items, order)
			}
			done, pending := l.Stats()
			lines := []string{ui.Header(l.Title, done, pending), ""}
			if len(rows) == 0 {
				lines = append(lines, fmt.Sprintf("No tasks yet. Add one with: checklist add %s \"Buy milk\"", l.Slug))
			}
			if group {
				lines = append(lines, section("Pending", rows, false)...)
				lines = append(lines, section("Done", rows, true)...)
			} else {
				for _, r := range rows {
					lines = append(lines, ui.TaskLine(r.Index+1, r.Item))
				}
			}
			if total := done + pending; total > 0 {
				lines = append(lines, "", ui.ProgressBar(done, total, 24))
			}
			ui.Panel(cmd.OutOrStdout(), lines)
			return nil
		},
	}
	cmd.Flags().StringVar(&sortBy, "sort", "", "order by creation time: new or old")
	cmd.Flags().BoolVar(&group, "group", false, "group output by pending and done")
	return cmd
}

func section(title string, rows []ordering.Indexed, done bool) []string {
	var out []string
	for _, r := range rows {
		if r.Done == done {
			out = append(out, ui.TaskLine(r.Index+1, r.Item))
		}
	}
	if len(out) == 0 {
		return nil
	}
	return append([]string{title + ":"}, out...)
}

func addCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "add <slug> <message...>",
		Short: "Add a task to a list",
		Args:  minArgs(2, "add <slug> <message...>"),
		RunE: func(cmd *cobra.Command, args []string) error {
			it, err := a.store.AddTaskToList(cmd.Context(), args[0], strings.Join(args[1:], " "))
			if err != nil {
				return err
			}
			ui.OK(cmd.OutOrStdout(), fmt.Sprintf("Added %q", it.Message))
			return nil
		},
	}
}

func editCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "edit <slug> <n> <message...>",
		Short: "Change the text of task n",
		Args:  minArgs(3, "edit <slug> <n> <message...>"),
		RunE: func(cmd *cobra.Command, args []string) error {
			i, err := a.taskIndex(args[0], args[1])
			if err != nil {
				return err
			}
			msg := strings.Join(args[2:], " ")
			if err := a.store.EditTaskInList(cmd.Context(), args[0], i, msg); err != nil {
				return err
			}
			ui.OK(cmd.OutOrStdout(), fmt.Sprintf("Updated task %s", args[1]))
			return nil
		},
	}
}

func doneCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "done <slug> <n>",
		Short: "Toggle task n between pending and done",
		Args:  exactArgs(2, "done <slug> <n>"),
		RunE: func(cmd *cobra.Command, args []string) error {
			i, err := a.taskIndex(args[0], args[1])
			if err != nil {
				return err
			}
			l, _ := a.store.GetListBySlug(args[0])
			it := l.Items[i]
			if err := a.store.ToggleTask(cmd.Context(), args[0], it.ID); err != nil {
				return err
			}
			state := "done"
			if it.Done {
				state = "pending"
			}
			ui.OK(cmd.OutOrStdout(), fmt.Sprintf("Marked %q %s", it.Message, state))
			return nil
		},
	}
}

func delCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "del <slug> <n>",
		Short: "Delete task n",
		Args:  exactArgs(2, "del <slug> <n>"),
		RunE: func(cmd *cobra.Command, args []string) error {
			i, err := a.taskIndex(args[0], args[1])
			if err != nil {
				return err
			}
			l, _ := a.store.GetListBySlug(args[0])
			it := l.Items[i]
			if err := a.store.DeleteTask(cmd.Context(), args[0], it.ID); err != nil {
				return err
			}
			ui.OK(cmd.OutOrStdout(), fmt.Sprintf("Deleted %q", it.Message))
			return nil
		},
	}
}
