package cmd

import (
	"github.com/spf13/cobra"
	"github.com/tahsinm/registrar/server"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Runs the api service",
	Long:  `Runs the api service`,
	Run: func(cmd *cobra.Command, args []string) {
		server.Serve()
	},
}

func init() {
	appCmd.AddCommand(serveCmd)
}
