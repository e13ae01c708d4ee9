package cmd

import (
	"fmt"

	"psrun/pkg/shell"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// probeCmd represents the probe command
var probeCmd = &cobra.Command{
	Use:   "probe",
	Short: "Probes the interpreter and prints its detected capabilities",
	Long: `The probe command asks the configured interpreter for its major version
and prints the capability set derived from it: the output encoding it uses
for redirected streams and how elevated output can be captured on this host.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		name := cfg.Interpreter
		if name == "" {
			name = shell.DefaultInterpreter()
		}
		caps, err := shell.Probe(cmd.Context(), cmdRunner, name)
		if err != nil {
			return err
		}

		out, err := yaml.Marshal(caps)
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), string(out))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(probeCmd)
}
