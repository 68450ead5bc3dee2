package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/samzong/gsc/internal/workflow"
)

var shipCmd = &cobra.Command{
	Use:   "ship",
	Short: "Stage everything, commit with a generated message and push",
	Long: `Stage all changes, generate one commit message, commit and push the current branch.

The first push of a branch sets its upstream on origin. When the push fails
the commit is undone and its changes stay staged.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if configErr != nil {
			return configErrorf(configErr)
		}
		return runShip(cmd.Context())
	},
}

func init() {
	addCommitFlags(shipCmd)
	rootCmd.AddCommand(shipCmd)
}

func runShip(ctx context.Context) error {
	c, err := newClients(ctx)
	if err != nil {
		return err
	}

	flow := workflow.NewShipFlow(c.git, c.gen, c.cfg, workflow.ShipOptions{
		AutoYes:   autoYes,
		DryRun:    dryRun,
		IssueNum:  issueNum,
		ErrWriter: c.errW,
		OutWriter: c.outW,
		Logger:    c.log,
	})
	_, err = flow.Run(ctx)
	return err
}
