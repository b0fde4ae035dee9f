package commands

import (
	"github.com/spf13/cobra"
)

func newCompletionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion script",
		Long: `Generate shell completion script for ocl-algebra.

To load completions:

Bash:
  $ ocl-algebra completion bash > ~/.local/share/bash-completion/completions/ocl-algebra

Zsh:
  $ ocl-algebra completion zsh > ~/.zsh/completion/_ocl-algebra

Fish:
  $ ocl-algebra completion fish > ~/.config/fish/completions/ocl-algebra.fish

PowerShell:
  PS> ocl-algebra completion powershell | Out-String | Invoke-Expression
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		// Completion does not need config or logging.
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
		RunE:              runCompletion,
	}
}

func runCompletion(cmd *cobra.Command, args []string) error {
	w := cmd.OutOrStdout()
	switch args[0] {
	case "bash":
		return cmd.Root().GenBashCompletion(w)
	case "zsh":
		return cmd.Root().GenZshCompletion(w)
	case "fish":
		return cmd.Root().GenFishCompletion(w, true)
	case "powershell":
		return cmd.Root().GenPowerShellCompletionWithDesc(w)
	}
	return nil
}
