package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/abdul-hamid-achik/hitclient/packages/core/env"
)

var (
	version   = "dev"
	buildTime = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "hitclient",
	Short: "One handle, one target. Resolve it, reach it.",
	Long: `hitclient owns a single HTTP target built from a config file or flags
and lets you move it around with absolute or relative URLs.

A relative update ("/path?query") keeps scheme, host, port and credentials.
An absolute update replaces all of them, and clears the credentials unless
the new URL carries its own.`,
	SilenceUsage: true,
}

var (
	configFlag     string
	envFileFlag    string
	logLevelFlag   string
	logFormatFlag  string
	outputFlag     string
	outputFileFlag string
	noColorFlag    bool
	verboseFlag    int
)

func Execute(v, bt string) {
	version = v
	buildTime = bt
	if err := rootCmd.Execute(); err != nil {
		os.Exit(exitCode(err))
	}
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configFlag, "config", env.String("HITCLIENT_CONFIG", ""), "Path to config file (env: HITCLIENT_CONFIG)")
	pf.StringVar(&envFileFlag, "env-file", env.String("HITCLIENT_ENV_FILE", ""), "Path to .env file exported before the config is read (env: HITCLIENT_ENV_FILE)")
	pf.StringVar(&logLevelFlag, "log-level", env.String("HITCLIENT_LOG_LEVEL", ""), "Log level: debug, info, warn, error (env: HITCLIENT_LOG_LEVEL)")
	pf.StringVar(&logFormatFlag, "log-format", env.String("HITCLIENT_LOG_FORMAT", ""), "Log format: text, json (env: HITCLIENT_LOG_FORMAT)")
	pf.StringVarP(&outputFlag, "output", "o", env.String("HITCLIENT_OUTPUT", ""), "Output format: console, json, tap (env: HITCLIENT_OUTPUT)")
	pf.StringVar(&outputFileFlag, "output-file", env.String("HITCLIENT_OUTPUT_FILE", ""), "Write output to file (default: stdout) (env: HITCLIENT_OUTPUT_FILE)")
	pf.BoolVar(&noColorFlag, "no-color", env.Bool("HITCLIENT_NO_COLOR", false), "Disable colored output (env: HITCLIENT_NO_COLOR)")
	pf.CountVarP(&verboseFlag, "verbose", "v", "Verbose output")

	rootCmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return usageError(err)
	})

	rootCmd.AddCommand(resolveCmd)
	rootCmd.AddCommand(fetchCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(benchCmd)
	rootCmd.AddCommand(versionCmd)
}
