package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/nkjh2020/investment-manager/internal/app"
)

// serveCmd HTTP API 서버
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "HTTP API 서버 시작",
	Long:  `API 서버를 시작합니다. Ctrl+C로 종료할 수 있습니다.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		return withApp(ctx, func(a *app.App) error {
			return a.Serve(ctx, version)
		})
	},
}
