package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "registrar",
	Short: "registrar is a university course registration and section scheduling service",
	Long: `Registrar validates section schedules against room, faculty, and
student conflicts, keeps theory/lab section pairs in sync, and serves the
registration api`,
}

func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.Flags().BoolP("toggle", "t", false, "Help message for toggle")
}
