package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

func newImportCmd(env *commandEnv) *cobra.Command {
	return &cobra.Command{
		Use:   "import [FILE]",
		Short: "Import a key-value backup of the mobile app's storage",
		Long:  "Import a JSON object of storage keys to string values, read from FILE or stdin. Unknown keys are ignored.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readImportSource(cmd, args)
			if err != nil {
				return err
			}

			var dump map[string]string
			if err := json.Unmarshal(data, &dump); err != nil {
				return fmt.Errorf("parse import json: %w", err)
			}

			return env.run(cmd, func(ctx context.Context, a *app) error {
				imported, err := a.repos.UserData.Import(ctx, dump)
				if err != nil {
					return err
				}
				if err := a.records.ResyncPredictedPeriod(ctx); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "imported %d keys\n", imported)
				return nil
			})
		},
	}
}

func readImportSource(cmd *cobra.Command, args []string) ([]byte, error) {
	if len(args) == 1 && args[0] != "-" {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return nil, fmt.Errorf("read import file: %w", err)
		}
		return data, nil
	}

	if cmd.InOrStdin() == os.Stdin && stdinIsTerminal() {
		return nil, fmt.Errorf("import expects a FILE argument or piped stdin")
	}
	data, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return nil, fmt.Errorf("read stdin: %w", err)
	}
	return data, nil
}
