package cmd

import (
	"github.com/spf13/cobra"
)

// appCmd represents the app command
var appCmd = &cobra.Command{
	Use:   "app",
	Short: "used to run the registrar service",
	Long: `The registrar service is a json api for course registration
(this command is not ran directly)`,
}

func init() {
	rootCmd.AddCommand(appCmd)
}
