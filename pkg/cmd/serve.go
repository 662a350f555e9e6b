package cmd

import (
	"github.com/spf13/cobra"

	"github.com/yeisme/postvault/pkg/app"
)

var serveCmd = &cobra.Command{
	Use:     "serve",
	Short:   "Start the HTTP server",
	Aliases: []string{"server", "run"},
	RunE: func(cmd *cobra.Command, args []string) error {
		a := app.NewApp(configPath)
		defer func() { _ = a.Close() }()

		return a.Run()
	},
}

// registerServeCommands 注册服务启动命令.
func registerServeCommands() {
	rootCmd.AddCommand(serveCmd)
}
