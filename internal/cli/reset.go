package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

func newResetCmd(env *commandEnv) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Delete every record, setting and scheduled reminder",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			confirmed, _ := cmd.Flags().GetBool("yes")
			if !confirmed {
				return fmt.Errorf("reset deletes all data; pass --yes to confirm")
			}
			return env.run(cmd, func(ctx context.Context, a *app) error {
				if err := a.records.ResetAll(ctx); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "all data deleted")
				return nil
			})
		},
	}
	cmd.Flags().Bool("yes", false, "Confirm the reset")
	return cmd
}
