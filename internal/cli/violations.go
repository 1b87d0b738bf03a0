package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sxtool/sx/internal/diag"
	"github.com/sxtool/sx/internal/sandbox"
)

var violationsCmd = &cobra.Command{
	Use:   "violations",
	Short: "Show recorded sandbox violations",
	Long: `Print the persistent violation log written by traced runs.
The location comes from sandbox.log_file, falling back to the default
under ~/Library/Application Support/sx.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, err := buildContext(nil)
		if err != nil {
			return err
		}
		path := ctx.LogFile
		if path == "" {
			path, err = sandbox.DefaultLogPath()
			if err != nil {
				return fmt.Errorf("resolve violation log path: %w", err)
			}
		}
		violations, err := sandbox.ReadViolations(path)
		if os.IsNotExist(err) {
			diag.Tracef("no violations recorded (%s)", path)
			return nil
		}
		if err != nil {
			return fmt.Errorf("read %s: %w", path, err)
		}
		for _, v := range violations {
			fmt.Println(v.Format(diag.ColorEnabled()))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(violationsCmd)
}
