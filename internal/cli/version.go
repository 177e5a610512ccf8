package cli

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

// version is overridden at build time via
// -ldflags "-X github.com/ppiankov/hostprint/internal/cli.version=...".
var version = "dev"

func init() {
	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("hostprint %s (%s/%s)\n", version, runtime.GOOS, runtime.GOARCH)
	},
}
