package cmd

import (
	"errors"
	"fmt"
	"strings"

	"psrun/pkg/invoke"

	"github.com/spf13/cobra"
)

// doctorCmd represents the doctor command
var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Checks that the interpreter is present and allowed to run",
	Long: `The doctor command runs a trivial echo through the configured interpreter
and reports whether it is installed, executable, and not blocked by an
execution policy.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		inv := invoke.New(invoke.Options{
			Interpreter: cfg.Interpreter,
			Launcher:    cmdLauncher,
			Runner:      cmdRunner,
			Fs:          appFs,
			TempDir:     cfg.TempDir,
			Logger:      logger,
		})
		res := inv.Run(cmd.Context(), invoke.CommandSpec{
			Body:              "Write-Output 'hello'",
			PropagateExitCode: true,
		})

		if res.Status == invoke.StatusSuccess && strings.Contains(res.Stdout, "hello") {
			fmt.Fprintln(cmd.OutOrStdout(), "interpreter healthy")
			return nil
		}

		cause := invoke.Classify(res.Stderr)
		switch {
		case errors.Is(cause, invoke.ErrInterpreterDisabled):
			return fmt.Errorf("interpreter is blocked by execution policy: %s", firstLine(res.Stderr))
		case cause != nil:
			return fmt.Errorf("interpreter check failed: %w", cause)
		default:
			return fmt.Errorf("interpreter check failed with status %s", res.Status)
		}
	},
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return strings.TrimSpace(s[:i])
	}
	return strings.TrimSpace(s)
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}
