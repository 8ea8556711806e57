package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nkjh2020/investment-manager/internal/app"
	"github.com/nkjh2020/investment-manager/internal/domain/signals"
	"github.com/nkjh2020/investment-manager/internal/service/indicators"
	signalssvc "github.com/nkjh2020/investment-manager/internal/service/signals"
)

// indicatorsCmd 단일 종목 지표 / 점수 계산
var indicatorsCmd = &cobra.Command{
	Use:   "indicators <code>",
	Short: "종목 기술적 지표와 점수 계산",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		code := args[0]

		return withApp(cmd.Context(), func(a *app.App) error {
			series, err := a.Prices.GetDailySeries(cmd.Context(), code)
			if err != nil {
				return fmt.Errorf("daily series %s: %w", code, err)
			}

			ind := indicators.ComputeAll(series)
			res := signalssvc.NewScorer().Score(ind, signalssvc.HoldingContext{})

			return printJSON(struct {
				Code       string             `json:"stockCode"`
				Bars       int                `json:"bars"`
				Indicators signals.Indicators `json:"indicators"`
				Score      signals.Score      `json:"score"`
				Action     signals.ActionType `json:"action"`
				Reason     string             `json:"reason"`
			}{code, len(series), ind, res.Score, res.Action, res.Reason})
		})
	},
}
