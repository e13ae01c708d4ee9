package cmd

import (
	"errors"
	"fmt"
	"time"

	"psrun/pkg/invoke"

	"github.com/spf13/cobra"
)

var (
	runElevate     bool
	runScript      bool
	runPropagate   bool
	runForceStop   bool
	runAutoElevate bool
	runTimeout     time.Duration
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run [command text | script path]",
	Short: "Runs command text or a script file through the interpreter",
	Long: `The run command executes the given command text (or, with --script, a
script file path) through the configured interpreter and prints the captured
output. With --elevate the command runs behind the OS elevation prompt; with
--auto-elevate a command that fails with an access-denied error is retried
elevated once.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		timeout := runTimeout
		if timeout == 0 {
			timeout = cfg.Timeout()
		}
		inv := invoke.New(invoke.Options{
			Interpreter:    cfg.Interpreter,
			Launcher:       cmdLauncher,
			Runner:         cmdRunner,
			Fs:             appFs,
			TempDir:        cfg.TempDir,
			DefaultTimeout: timeout,
			Logger:         logger,
		})

		spec := invoke.CommandSpec{
			Body:              args[0],
			IsScriptFile:      runScript,
			Elevate:           runElevate,
			PropagateExitCode: runPropagate,
			ForceStopOnError:  runForceStop,
		}

		res := inv.Run(cmd.Context(), spec)
		if runAutoElevate && !spec.Elevate && needsElevation(res) {
			logger.Info("access denied, retrying elevated")
			spec.Elevate = true
			res = inv.Run(cmd.Context(), spec)
		}

		fmt.Fprint(cmd.OutOrStdout(), res.Stdout)
		fmt.Fprint(cmd.ErrOrStderr(), res.Stderr)
		for _, w := range res.Warnings {
			logger.Warn(w)
		}

		switch res.Status {
		case invoke.StatusSuccess:
			return nil
		case invoke.StatusNonZeroExit:
			exitCode = *res.ExitCode
			return nil
		case invoke.StatusTerminatingError:
			exitCode = 1
			return nil
		default:
			return fmt.Errorf("invocation failed: %s", res.Status)
		}
	},
}

// needsElevation reports whether a failed result looks like a privilege
// problem rather than any other kind of failure.
func needsElevation(res invoke.Result) bool {
	if res.Status == invoke.StatusSuccess {
		return false
	}
	return errors.Is(invoke.Classify(res.Stderr), invoke.ErrAccessDenied)
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().BoolVar(&runElevate, "elevate", false, "Run behind the OS elevation prompt")
	runCmd.Flags().BoolVar(&runScript, "script", false, "Treat the argument as a script file path instead of command text")
	runCmd.Flags().BoolVar(&runPropagate, "propagate", true, "Propagate the command's native exit code")
	runCmd.Flags().BoolVar(&runForceStop, "force-stop", false, "Turn non-terminating errors into terminating ones")
	runCmd.Flags().BoolVar(&runAutoElevate, "auto-elevate", false, "Retry elevated when the command fails with access denied")
	runCmd.Flags().DurationVar(&runTimeout, "timeout", 0, "Invocation deadline (overrides config)")
}
