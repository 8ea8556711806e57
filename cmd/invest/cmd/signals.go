package cmd

import (
	"github.com/spf13/cobra"

	"github.com/nkjh2020/investment-manager/internal/app"
)

var (
	userID  string
	refresh bool
)

// signalsCmd 보유 종목 신호 조회
var signalsCmd = &cobra.Command{
	Use:   "signals",
	Short: "보유 종목 신호 조회 (JSON)",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd.Context(), func(a *app.App) error {
			resp, err := a.Orchestrator.GetSignals(cmd.Context(), userID, refresh)
			if err != nil {
				return err
			}
			return printJSON(resp)
		})
	},
}

// rebalanceCmd 리밸런싱 계획 조회
var rebalanceCmd = &cobra.Command{
	Use:   "rebalance",
	Short: "저장된 목표 비중 기준 리밸런싱 계획 (JSON)",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd.Context(), func(a *app.App) error {
			plan, err := a.Portfolio.Rebalance(cmd.Context(), userID)
			if err != nil {
				return err
			}
			return printJSON(plan)
		})
	},
}

func init() {
	signalsCmd.Flags().StringVar(&userID, "user", "local", "user id")
	signalsCmd.Flags().BoolVar(&refresh, "refresh", false, "force refresh (bypass caches)")
	rebalanceCmd.Flags().StringVar(&userID, "user", "local", "user id")
}
