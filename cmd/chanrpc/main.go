// Package main provides the chanrpc CLI tool for exercising the compute
// demo service over an in-memory channel.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/go-chanrpc/chanrpc/cmd/chanrpc/commands"
)

var (
	// Version information (set by build flags)
	version   = "dev"
	commit    = "unknown"
	buildDate = "unknown"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "chanrpc",
		Short: "Typed RPC patterns over an abstract bidirectional channel",
		Long: `chanrpc maps four RPC interaction patterns - unary, client-streaming,
server-streaming, and bidi-streaming - onto any transport that can open and
accept bidirectional substreams.

This CLI runs the bundled compute demo service in-process over an in-memory
channel, for exercising and inspecting the four patterns without a network.`,
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, buildDate),
	}

	rootCmd.AddCommand(
		commands.NewVersionCommand(version, commit, buildDate),
		commands.NewServeCommand(),
		commands.NewCallCommand(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
