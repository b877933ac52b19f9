package cmd

import (
	"github.com/spf13/cobra"
)

// newKeygenCmd creates the 'keygen' subcommand.
func newKeygenCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "keygen",
		Short: "Create the IndexNow key file if none exists",
		Long: `Looks for a <uuid>.txt key file in the public directory. When none is
present a UUID is obtained from the configured source and written as
<uuid>.txt containing the UUID itself.

Failures are logged but never change the exit status, so the command is
safe to run as a build hook.`,
		Args: cobra.NoArgs,
		RunE: runKeygenCommand,
	}
}

func runKeygenCommand(cmd *cobra.Command, _ []string) error {
	appInstance, err := resolveApp(cmd.Context())
	if err != nil {
		return err
	}
	defer appInstance.Close()

	appInstance.Provisioner().Run(cmd.Context())
	return nil
}
