package cmd

import (
	"github.com/spf13/cobra"
)

var addCmd = &cobra.Command{
	Use:   "add <paths...>",
	Short: "Stage paths and commit them with a generated message",
	Long: `Stage the given paths, then generate a commit message for the staged changes.

Files staged by this command are unstaged again if staging fails part way
or the commit is cancelled. Files that were already staged are left alone.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if configErr != nil {
			return configErrorf(configErr)
		}
		return runCommit(cmd.Context(), args)
	},
}

func init() {
	addCommitFlags(addCmd)
	addSplitFlags(addCmd)
	rootCmd.AddCommand(addCmd)
}
