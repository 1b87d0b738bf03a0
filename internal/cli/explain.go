package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sxtool/sx/internal/diag"
)

var explainCmd = &cobra.Command{
	Use:   "explain [profiles...]",
	Short: "Show the effective sandbox configuration",
	Long: `Resolve configuration, profiles, and flags exactly as a run would,
then print the result instead of executing anything.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, err := buildContext(args)
		if err != nil {
			return err
		}
		p := ctx.Params

		fmt.Printf("%s %s\n", diag.Paint(diag.Bold, "Network:"), p.NetworkMode)
		fmt.Printf("%s %s\n", diag.Paint(diag.Bold, "Working dir:"), p.WorkingDir)
		if ctx.Shell != "" {
			fmt.Printf("%s %s\n", diag.Paint(diag.Bold, "Shell:"), ctx.Shell)
		}

		printPaths("Allowed reads", p.AllowRead)
		printPaths("Denied reads", p.DenyRead)
		printPaths("Allowed writes", p.AllowWrite)
		printPaths("List-only dirs", p.AllowListDirs)

		if ctx.ShellEnv != nil {
			printPaths("Env passed", ctx.ShellEnv.PassEnv)
			printPaths("Env denied", ctx.ShellEnv.DenyEnv)
		}
		if p.RawRules != "" {
			fmt.Printf("\n%s\n%s\n", diag.Paint(diag.Bold, "Custom policy rules:"), p.RawRules)
		}
		return nil
	},
}

func printPaths(label string, paths []string) {
	if len(paths) == 0 {
		return
	}
	fmt.Printf("\n%s\n", diag.Paint(diag.Bold, label+":"))
	for _, p := range paths {
		fmt.Printf("  %s\n", p)
	}
}

func init() {
	rootCmd.AddCommand(explainCmd)
}
