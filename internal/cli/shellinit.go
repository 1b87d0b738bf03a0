package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sxtool/sx/internal/shell"
)

var shellInitCmd = &cobra.Command{
	Use:   "shell-init <zsh|bash|fish>",
	Short: "Print the shell integration script",
	Long: `Print the prompt indicator, completions, and aliases for a shell.

Install with:
  source <(sx shell-init zsh)      # ~/.zshrc
  source <(sx shell-init bash)     # ~/.bashrc
  sx shell-init fish | source      # ~/.config/fish/config.fish`,
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"zsh", "bash", "fish"},
	RunE: func(cmd *cobra.Command, args []string) error {
		t := shell.TypeFromPath(args[0])
		script := shell.IntegrationScript(t)
		if script == "" {
			return fmt.Errorf("unsupported shell %q (expected zsh, bash, or fish)", args[0])
		}
		fmt.Print(script)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(shellInitCmd)
}
