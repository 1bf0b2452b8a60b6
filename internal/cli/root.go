// Package cli wires configuration, storage and the checklist store into a
// cobra command tree.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/idilsaglam/checklist/internal/checklist"
	"github.com/idilsaglam/checklist/internal/config"
	"github.com/idilsaglam/checklist/internal/model"
	"github.com/idilsaglam/checklist/internal/persist"
	"github.com/idilsaglam/checklist/internal/store/kvstore"
	"github.com/idilsaglam/checklist/internal/store/sqlstore"
	"github.com/idilsaglam/checklist/internal/ui"
)

// Exit codes: 0 ok, 1 error, 2 usage or invalid input.
const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2
)

const closeTimeout = 5 * time.Second

// usageError marks bad invocations (wrong arg count, bad numbers, bad flags).
type usageError struct{ msg string }

func (e usageError) Error() string { return e.msg }

func usagef(format string, a ...any) error { return usageError{msg: fmt.Sprintf(format, a...)} }

// app holds what every subcommand needs once storage is open.
type app struct {
	cfg   config.Config
	log   *slog.Logger
	store *checklist.Store
	dual  *persist.Dual
	sql   *sqlstore.Store

	theme string
	noSQL bool
}

func (a *app) open(ctx context.Context, stderr io.Writer) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if a.noSQL {
		cfg.DisableSQL = true
	}
	a.cfg = cfg
	theme := cfg.Theme
	if a.theme != "" {
		theme = a.theme
	}
	ui.SetTheme(theme)
	a.log = slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: cfg.Level()}))

	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}

	flat, err := kvstore.Open(cfg.FlatPath())
	if err != nil {
		return fmt.Errorf("open flat store: %w", err)
	}
	var rel persist.Relational
	if !cfg.DisableSQL {
		db, err := sqlstore.Open(cfg.DBPath())
		if err != nil {
			// the relational store is optional; the flat store covers for it
			a.log.Warn("relational store unavailable", slog.String("path", cfg.DBPath()), slog.Any("error", err))
		} else {
			a.sql = db
			rel = db
		}
	}
	a.dual = persist.NewDual(flat, rel, persist.WithLogger(a.log))
	a.store = checklist.New(a.dual, checklist.WithLogger(a.log))

	loadCtx, cancel := context.WithTimeout(ctx, cfg.LoadTimeout)
	defer cancel()
	a.store.Load(loadCtx)
	return nil
}

// close drains the relational writer even when ctx was cancelled by a signal.
func (a *app) close(ctx context.Context) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), closeTimeout)
	defer cancel()
	if a.dual != nil {
		if err := a.dual.Close(ctx); err != nil {
			a.log.Warn("flush relational store", slog.Any("error", err))
		}
	}
	if a.sql != nil {
		_ = a.sql.Close()
	}
}

func newRootCmd(a *app, stderr io.Writer) *cobra.Command {
	root := &cobra.Command{
		Use:   "checklist",
		Short: "checklist - named task lists kept on your machine",
		Long: `checklist keeps named lists of tasks in local storage.

Lists are addressed by slug (shown by "checklist ls"); tasks by the number
shown by "checklist show <slug>".`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args: func(_ *cobra.Command, args []string) error {
			if len(args) > 0 {
				return usagef("unknown command %q (run `checklist --help`)", args[0])
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.HasParent() {
				return nil
			}
			return a.open(cmd.Context(), stderr)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			a.close(cmd.Context())
		},
	}
	root.PersistentFlags().StringVar(&a.theme, "theme", "", "color theme: classic, neon or mono")
	root.PersistentFlags().BoolVar(&a.noSQL, "no-sql", false, "skip the SQLite mirror and use only the flat store")
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error { return usageError{msg: err.Error()} })

	root.AddCommand(
		lsCmd(a), newCmd(a), renameCmd(a), rmCmd(a),
		showCmd(a), addCmd(a), editCmd(a), doneCmd(a), delCmd(a),
		importCmd(a), exportCmd(a), tuiCmd(a),
	)
	return root
}

// Execute runs the command line and returns the process exit code.
func Execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	a := &app{}
	root := newRootCmd(a, stderr)
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.ExecuteContext(ctx)
	if err == nil {
		return exitOK
	}
	// storage was opened but PostRun is skipped when RunE fails
	a.close(ctx)

	ui.Fail(stderr, describe(err))
	var ue usageError
	switch {
	case errors.As(err, &ue), model.IsValidation(err):
		return exitUsage
	}
	return exitError
}

func describe(err error) string {
	var ve *model.ValidationError
	if errors.As(err, &ve) {
		switch {
		case errors.Is(err, model.ErrTooLong) && ve.Field == "title":
			return fmt.Sprintf("title is longer than %d characters", model.MaxTitleLen)
		case errors.Is(err, model.ErrTooLong):
			return fmt.Sprintf("task is longer than %d characters", model.MaxMessageLen)
		case errors.Is(err, model.ErrDuplicate) && ve.Field == "title":
			return "a list with that title already exists"
		case errors.Is(err, model.ErrDuplicate):
			return "that task is already in the list"
		case errors.Is(err, model.ErrUnaddressable):
			return "title needs at least one letter or digit"
		case errors.Is(err, model.ErrSlugTaken):
			return "another list already uses that slug; pick a different title"
		}
	}
	if errors.Is(err, checklist.ErrNotReady) {
		return "storage is still loading, try again"
	}
	return err.Error()
}

// exactArgs and minArgs report arity problems as usage errors.
func exactArgs(n int, usage string) cobra.PositionalArgs {
	return func(_ *cobra.Command, args []string) error {
		if len(args) != n {
			return usagef("usage: checklist %s", usage)
		}
		return nil
	}
}

func minArgs(n int, usage string) cobra.PositionalArgs {
	return func(_ *cobra.Command, args []string) error {
		if len(args) < n {
			return usagef("usage: checklist %s", usage)
		}
		return nil
	}
}

// taskIndex turns a 1-based task number into a storage index, checking it
// against the list as it is now.
func (a *app) taskIndex(slug, arg string) (int, error) {
	n, err := strconv.Atoi(arg)
	if err != nil {
		return 0, usagef("not a number: %s", arg)
	}
	l, ok := a.store.GetListBySlug(slug)
	if !ok {
		return 0, &model.NotFoundError{Kind: "list", Key: slug}
	}
	if n < 1 || n > len(l.Items) {
		return 0, usagef("task number out of range: have %d, got %d (run `checklist show %s`)", len(l.Items), n, slug)
	}
	return n - 1, nil
}
