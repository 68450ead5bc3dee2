package cmd

import (
	"context"
	"strings"

	"github.com/spf13/cobra"

	"github.com/samzong/gsc/internal/workflow"
)

var checkoutBranch bool

var branchCmd = &cobra.Command{
	Use:   "branch <description>",
	Short: "Generate a branch name from a description",
	Long: `Generate a conventional branch name such as fix/login-timeout from a plain
description of the work. With --checkout the branch is created at HEAD and
checked out.

Examples:
  gsc branch "fix login timeout"
  gsc branch add user avatar upload -c`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if configErr != nil {
			return configErrorf(configErr)
		}
		return runBranch(cmd.Context(), strings.Join(args, " "))
	},
}

func init() {
	branchCmd.Flags().BoolVarP(&checkoutBranch, "checkout", "c", false, "Create and switch to the generated branch")
	rootCmd.AddCommand(branchCmd)
}

func runBranch(ctx context.Context, description string) error {
	c, err := newClients(ctx)
	if err != nil {
		return err
	}

	flow := workflow.NewBranchFlow(c.git, c.gen, workflow.BranchOptions{
		Checkout:  checkoutBranch,
		ErrWriter: c.errW,
		OutWriter: c.outW,
	})
	_, err = flow.Run(ctx, description)
	return err
}
