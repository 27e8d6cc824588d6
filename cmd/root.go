package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

const toolName = "hprof-redact"

var rootCmd = &cobra.Command{
	Use:   toolName,
	Short: "Redact strings and primitive values from HotSpot HPROF heap dumps",
	Long:  `hprof-redact rewrites a HotSpot HPROF heap dump, replacing symbol strings and/or primitive field, static, and array values through a pluggable transformer while preserving the record framing and object graph structure.`,
}

// Execute runs the root command, exiting the process with a non-zero
// status if it returns an error. Called once from main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
