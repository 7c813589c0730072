package cmd

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/abdul-hamid-achik/hitclient/packages/core/env"
	"github.com/abdul-hamid-achik/hitclient/packages/history"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List journaled target transitions",
	Long: `List the transitions recorded by resolve or fetch with --history.

Examples:
  hitclient history --history history.db
  hitclient history --history history.db --host httpbin.org -n 20
  hitclient history --history history.db --failed -o json`,
	Args: cobra.NoArgs,
	RunE: historyCommand,
}

var (
	historyHostFlag   string
	historyFailedFlag bool
	historyLimitFlag  int
)

func init() {
	historyCmd.Flags().StringVar(&historyFlag, "history", env.String("HITCLIENT_HISTORY", ""), "SQLite journal to read (env: HITCLIENT_HISTORY)")
	historyCmd.Flags().StringVar(&historyHostFlag, "host", "", "Only transitions whose resulting host is this")
	historyCmd.Flags().BoolVar(&historyFailedFlag, "failed", false, "Only rejected transitions")
	historyCmd.Flags().IntVarP(&historyLimitFlag, "limit", "n", 0, "Only the most recent N transitions")
}

func historyCommand(cmd *cobra.Command, args []string) error {
	settings, err := loadSettings()
	if err != nil {
		return err
	}
	if settings.History == "" {
		return usageError(errors.New("no journal configured (pass --history or set history in the config file)"))
	}
	if historyLimitFlag < 0 {
		return usageError(errors.New("--limit must not be negative"))
	}

	log, err := newLogger(settings, cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	store, err := history.Open(settings.History, history.WithLogger(log))
	if err != nil {
		return configError(err)
	}
	defer store.Close()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	entries, err := store.List(ctx, history.Filter{
		Host:       historyHostFlag,
		OnlyFailed: historyFailedFlag,
		Limit:      historyLimitFlag,
	})
	if err != nil {
		return err
	}

	formatter, closeOut, err := newFormatter(cmd, settings)
	if err != nil {
		return err
	}
	defer closeOut()

	formatter.FormatEntries(entries)
	return formatter.Flush()
}
