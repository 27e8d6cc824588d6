package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	// version is overwritten at build time via -ldflags by goreleaser;
	// it stays "dev" for a plain `go build`.
	version = "dev"
)

// versionCmd prints "<toolName> version <version>", e.g.
// "hprof-redact version v1.2.3".
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), versionLine())
	},
}

func versionLine() string {
	return fmt.Sprintf("%s version %s", toolName, version)
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
