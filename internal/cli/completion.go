package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// completionCommand prints shell completion scripts.
func (c *CLI) completionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for greetcard, including template name
completion for --template.

To load completions:

Bash:
  $ source <(greetcard completion bash)

  # To load completions for each session, execute once:
  # Linux:
  $ greetcard completion bash > /etc/bash_completion.d/greetcard
  # macOS:
  $ greetcard completion bash > $(brew --prefix)/etc/bash_completion.d/greetcard

Zsh:
  # If shell completion is not already enabled in your environment,
  # you will need to enable it. You can execute the following once:
  $ echo "autoload -U compinit; compinit" >> ~/.zshrc

  # To load completions for each session, execute once:
  $ greetcard completion zsh > "${fpath[1]}/_greetcard"

  # You will need to start a new shell for this setup to take effect.

Fish:
  $ greetcard completion fish | source

  # To load completions for each session, execute once:
  $ greetcard completion fish > ~/.config/fish/completions/greetcard.fish

PowerShell:
  PS> greetcard completion powershell | Out-String | Invoke-Expression

  # To load completions for every new session, run:
  PS> greetcard completion powershell > greetcard.ps1
  # and source this file from your PowerShell profile.
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletion(out)
			case "zsh":
				return cmd.Root().GenZshCompletion(out)
			case "fish":
				return cmd.Root().GenFishCompletion(out, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(out)
			}
			return fmt.Errorf("unsupported shell %q", args[0])
		},
	}
}
