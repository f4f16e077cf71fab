package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var version = "dev"

var configPath string

var rootCmd = &cobra.Command{
	Use:   "orientd",
	Short: "device-orientation event pump daemon",
	Long: `orientd polls device-orientation sensors (relative preferred, absolute as
a one-shot fallback), filters insignificant changes, and delivers coalesced
orientation events over SSE, UDP, and an optional GPIO activity indicator.`,
	RunE:          runDaemon,
	SilenceUsage:  true,
	SilenceErrors: true,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "print the orientd version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(version)
	},
}

var feedCmd = &cobra.Command{
	Use:   "feed",
	Short: "write simulated readings into the configured shm buffers",
	Long: `feed stands in for the platform sensor service during bring-up: it creates
the shared-memory reading buffers named in the config and writes simulated
orientation readings into them until interrupted.`,
	RunE: runFeed,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "./orientd.yaml", "path to YAML config")
	rootCmd.AddCommand(versionCmd, feedCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "orientd:", err)
		os.Exit(1)
	}
}
