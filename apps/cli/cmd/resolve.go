package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/abdul-hamid-achik/hitclient/packages/core/config"
	"github.com/abdul-hamid-achik/hitclient/packages/core/env"
)

var resolveCmd = &cobra.Command{
	Use:   "resolve [url...]",
	Short: "Initialize a client handle and apply URL updates in order",
	Long: `Initialize a client handle from the config file and flags, then apply
each update with SetURL and print the resulting target.

Updates come from --set flags first, then from the arguments.

Examples:
  hitclient resolve --host httpbin.org -u user --password challenge /something-else/
  hitclient resolve --url http://httpbin.org/ http://httpbin.org/get
  hitclient resolve --config .hitclient.yaml --set /a --set "?page=2" -o json
  hitclient resolve --history history.db --watch`,
	RunE: resolveCommand,
}

const (
	// WatchDebounceDelay is the debounce delay for file watch events
	WatchDebounceDelay = 300 * time.Millisecond
)

var (
	setFlags  []string
	bailFlag  bool
	watchFlag bool
)

func init() {
	addTargetFlags(resolveCmd)
	resolveCmd.Flags().StringArrayVarP(&setFlags, "set", "s", nil, "URL update to apply, absolute or relative (repeatable)")
	resolveCmd.Flags().BoolVar(&bailFlag, "bail", env.Bool("HITCLIENT_BAIL", false), "Stop at the first rejected update (env: HITCLIENT_BAIL)")
	resolveCmd.Flags().BoolVarP(&watchFlag, "watch", "w", false, "Watch the config and env files and resolve again on change")
}

func resolveCommand(cmd *cobra.Command, args []string) error {
	updates := append(append([]string{}, setFlags...), args...)

	err := resolveOnce(cmd, updates)
	if !watchFlag {
		return err
	}
	if err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
	}

	return watchFiles(cmd, watchedFiles(), func() error {
		return resolveOnce(cmd, updates)
	})
}

func resolveOnce(cmd *cobra.Command, updates []string) error {
	s, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	s.formatter.FormatHeader(version)
	applyErr := s.apply(updates, bailFlag)

	if err := s.formatter.Flush(); err != nil {
		return fmt.Errorf("error writing output: %w", err)
	}
	return applyErr
}

// watchedFiles lists the files whose changes trigger a new resolution: the
// config file (or every candidate name when none exists yet) and the env file.
func watchedFiles() []string {
	var files []string
	switch {
	case configFlag != "":
		files = append(files, configFlag)
	case config.FindConfigPath(".") != "":
		files = append(files, config.FindConfigPath("."))
	default:
		files = append(files, config.ConfigFilenames...)
	}
	if envFileFlag != "" {
		files = append(files, envFileFlag)
	}

	for i, f := range files {
		if abs, err := filepath.Abs(f); err == nil {
			files[i] = abs
		}
	}
	return files
}

func isWatched(name string, files []string) bool {
	abs, err := filepath.Abs(name)
	if err != nil {
		return false
	}
	for _, f := range files {
		if f == abs {
			return true
		}
	}
	return false
}

// watchFiles calls run, debounced, whenever one of files is written or
// created, until interrupted.
func watchFiles(cmd *cobra.Command, files []string, run func() error) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer watcher.Close()

	// watch directories so editors that replace files are still seen
	watchedDirs := make(map[string]bool)
	for _, f := range files {
		dir := filepath.Dir(f)
		if watchedDirs[dir] {
			continue
		}
		if err := watcher.Add(dir); err != nil {
			return fmt.Errorf("failed to watch %s: %w", dir, err)
		}
		watchedDirs[dir] = true
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "\nWatching for changes... (press Ctrl+C to stop)\n\n")

	var debounceTimer *time.Timer
	defer func() {
		if debounceTimer != nil {
			debounceTimer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !(event.Has(fsnotify.Write) || event.Has(fsnotify.Create)) || !isWatched(event.Name, files) {
				continue
			}
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			name := event.Name
			debounceTimer = time.AfterFunc(WatchDebounceDelay, func() {
				fmt.Fprintf(out, "\n\nFile changed: %s\nResolving again...\n\n", name)
				if err := run(); err != nil {
					fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
				}
				fmt.Fprintf(out, "\nWatching for changes... (press Ctrl+C to stop)\n")
			})

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Error: watcher error: %v\n", err)
		}
	}
}
