package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// newNotifyCmd creates the 'notify' subcommand.
func newNotifyCmd() *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "notify",
		Short: "Submit new video URLs to IndexNow",
		Long: `Derives the canonical URL of every video in the data file, submits the
ones missing from the sent-URL cache to IndexNow in batches of up to
10,000, then replaces the cache with the full URL list.

Exits with status 1 when the site URL is not configured or no key file
exists. Rejected batches are logged and do not change the exit status.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runNotifyCommand(cmd, dryRun)
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "compute and log pending URLs without submitting or updating the cache")
	return cmd
}

func runNotifyCommand(cmd *cobra.Command, dryRun bool) error {
	appInstance, err := resolveApp(cmd.Context())
	if err != nil {
		return err
	}
	defer appInstance.Close()

	if err := appInstance.GetConfig().ValidateNotify(); err != nil {
		return err
	}

	n, err := appInstance.Notifier(cmd.Context(), dryRun)
	if err != nil {
		return fmt.Errorf("init notifier: %w", err)
	}
	if _, err := n.Run(cmd.Context()); err != nil {
		return fmt.Errorf("notify: %w", err)
	}
	return nil
}
