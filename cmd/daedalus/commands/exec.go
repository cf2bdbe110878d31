package commands

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newExecCommand(logger *zap.Logger) *cobra.Command {
	var inputsJSON, configJSON string

	cmd := &cobra.Command{
		Use:   "exec <unit-id>",
		Short: "Execute a unit once and print its result",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var inputs, config map[string]interface{}
			if err := json.Unmarshal([]byte(inputsJSON), &inputs); err != nil {
				return fmt.Errorf("invalid --inputs: %w", err)
			}
			if err := json.Unmarshal([]byte(configJSON), &config); err != nil {
				return fmt.Errorf("invalid --config: %w", err)
			}

			reg, err := buildRegistry(cmd, logger)
			if err != nil {
				return err
			}
			defer func() { _ = reg.Close(cmd.Context()) }()

			result, err := reg.ExecuteUnit(cmd.Context(), args[0], inputs, config)
			if err != nil {
				return err
			}
			return json.NewEncoder(cmd.OutOrStdout()).Encode(result)
		},
	}

	cmd.Flags().StringVar(&inputsJSON, "inputs", "{}", "unit inputs as JSON")
	cmd.Flags().StringVar(&configJSON, "config", "{}", "unit configuration as JSON")
	return cmd
}
