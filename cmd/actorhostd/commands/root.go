// Package commands implements the actorhostd command-line interface.
package commands

import (
	"github.com/spf13/cobra"
)

var (
	// dbPath is the path to the dead-letter audit sqlite database.
	dbPath string

	// logDir is the directory rotating log files are written to. Empty
	// disables file logging.
	logDir string

	// systemID names the local actor system for logging and for
	// addressing it from foreign peers.
	systemID string

	// grpcListenAddr, if non-empty, starts a gRPC bridge server so
	// foreign systems can reach local actors.
	grpcListenAddr string
)

// rootCmd is the base command for the actorhostd CLI.
var rootCmd = &cobra.Command{
	Use:   "actorhostd",
	Short: "actorhostd runs and inspects an in-process actor system",
	Long: `actorhostd hosts a local actor system, optionally bridging it to
foreign peers over gRPC, and provides subcommands to run the system or
inspect its current topology.`,
}

// Execute runs the CLI.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(
		&dbPath, "db", "~/.actorhostd/deadletters.db",
		"path to the dead-letter audit sqlite database",
	)
	rootCmd.PersistentFlags().StringVar(
		&logDir, "log-dir", "~/.actorhostd/logs",
		"directory for rotating log files (empty disables file logging)",
	)
	rootCmd.PersistentFlags().StringVar(
		&systemID, "system-id", "local",
		"identifier for this actor system",
	)
	rootCmd.PersistentFlags().StringVar(
		&grpcListenAddr, "grpc", "",
		"address to serve the foreign-peer gRPC bridge on (empty disables it)",
	)

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(topologyCmd)
}
