package cmd

import (
	"fmt"
	"os"

	"psrun/pkg/broker"
	"psrun/pkg/config"
	"psrun/pkg/log"
	"psrun/pkg/runner"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

var (
	cfgFile     string
	logLevel    string
	interpreter string
	logger      log.Logger
	cmdRunner   runner.CommandRunner = &runner.LiveCommandRunner{}
	// cmdLauncher stays nil in production; the broker falls back to a live
	// process launcher. Tests inject a fake here.
	cmdLauncher broker.Launcher
	// appFs backs relay channel files. Tests swap it for an in-memory
	// filesystem.
	appFs afero.Fs = afero.NewOsFs()
	// exitCode is what the process exits with after a run subcommand; it
	// carries the invoked command's native exit code out to the caller.
	exitCode int
	rootCmd  = &cobra.Command{
		Use:   "psrun",
		Short: "psrun executes commands through a PowerShell-compatible interpreter",
		Long: `A thin execution layer over a PowerShell-compatible interpreter: it runs
command text or script files, optionally through an OS elevation prompt,
and captures decoded output and a unified completion status.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level, err := config.ParseLogLevel(logLevel)
			if err != nil {
				return err
			}
			logger = log.NewSlogLogger(level, cmd.ErrOrStderr())
			return nil
		},
	}
)

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if exitCode != 0 {
		os.Exit(exitCode)
	}
}

func loadConfig() (config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return cfg, err
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	if interpreter != "" {
		cfg.Interpreter = interpreter
	}
	return cfg, nil
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "./psrun.yaml", "config file (default is ./psrun.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&interpreter, "interpreter", "", "Interpreter binary (default powershell on Windows, pwsh elsewhere)")
}
