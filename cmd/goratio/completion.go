package main

import (
	"os"

	"github.com/philipparndt/goratio/internal/session"
	"github.com/spf13/cobra"
)

var completionCmd = &cobra.Command{
	Use:   "completion [bash|zsh|fish|powershell]",
	Short: "Generate shell completion script",
	Long: `Generate shell completion script for goratio.

Bash:
  $ source <(goratio completion bash)

Zsh:
  $ goratio completion zsh > "${fpath[1]}/_goratio"

Fish:
  $ goratio completion fish > ~/.config/fish/completions/goratio.fish
`,
	DisableFlagsInUseLine: true,
	ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
	Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	Run: func(cmd *cobra.Command, args []string) {
		switch args[0] {
		case "bash":
			rootCmd.GenBashCompletion(os.Stdout)
		case "zsh":
			rootCmd.GenZshCompletion(os.Stdout)
		case "fish":
			rootCmd.GenFishCompletion(os.Stdout, true)
		case "powershell":
			rootCmd.GenPowerShellCompletionWithDesc(os.Stdout)
		}
	},
}

func init() {
	rootCmd.AddCommand(completionCmd)

	for _, cmd := range []*cobra.Command{copyCmd, labelCmd, exportCmd, summaryCmd, watchCmd, compareCmd, dbPushCmd} {
		cmd.ValidArgsFunction = completeSessions
	}
}

func completeLabels(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	return cfg.Labels, cobra.ShellCompDirectiveNoFileComp
}

func completeSessions(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	return []string{session.Extension[1:]}, cobra.ShellCompDirectiveFilterFileExt
}
