package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sxtool/sx/internal/diag"
	"github.com/sxtool/sx/internal/profile"
)

var profilesCmd = &cobra.Command{
	Use:   "profiles",
	Short: "List the builtin profiles",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		for _, name := range profile.BuiltinNames() {
			// Pad before painting so color codes do not skew the column.
			fmt.Printf("%s %s\n", diag.Paint(diag.Cyan, fmt.Sprintf("%-12s", name)), profile.Describe(name))
		}
	},
}

func init() {
	rootCmd.AddCommand(profilesCmd)
}
