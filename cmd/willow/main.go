package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	version = "0.1.0-preview"
	commit  = "dev"
	date    = "unknown"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "willow",
		Short: "willow - an Elm-architecture UI runtime for Go",
		Long: `willow renders a Go view function to a virtual DOM, diffs it against
the previous frame, and applies the result either directly to the browser
DOM (client mode, WASM) or over a WebSocket as an edit script
(server-driven mode).`,
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
	}

	rootCmd.AddCommand(newServeCommand())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
