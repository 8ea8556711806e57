// Package cmd - invest CLI commands
package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/nkjh2020/investment-manager/internal/app"
	"github.com/nkjh2020/investment-manager/internal/pkg/config"
	"github.com/nkjh2020/investment-manager/internal/pkg/logger"
)

const version = "1.0.0"

var (
	// 공통 플래그
	cfgFile string
	verbose bool

	cfg *config.Config
)

// rootCmd 루트 커맨드
var rootCmd = &cobra.Command{
	Use:   "invest",
	Short: "Investment Manager - holdings signals & rebalancing",
	Long: `Investment Manager - CLI

Commands:
    serve        - HTTP API server
    signals      - 보유 종목 신호 조회
    rebalance    - 리밸런싱 계획 조회
    indicators   - 종목 기술적 지표 계산
`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initConfig()
	},
}

// Execute 루트 커맨드 실행
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "env file (default is .env)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(signalsCmd)
	rootCmd.AddCommand(rebalanceCmd)
	rootCmd.AddCommand(indicatorsCmd)
}

// initConfig loads the env file, the config and the logger
func initConfig() error {
	if cfgFile != "" {
		if err := godotenv.Load(cfgFile); err != nil {
			return fmt.Errorf("load %s: %w", cfgFile, err)
		}
	}

	var err error
	cfg, err = config.Load()
	if err != nil {
		return err
	}

	level := cfg.Logging.Level
	if verbose {
		level = "debug"
	}

	return logger.Init(logger.Config{
		Level:          level,
		Format:         cfg.Logging.Format,
		FileEnabled:    cfg.Logging.FileEnabled,
		FilePath:       cfg.Logging.FilePath,
		RotationSize:   cfg.Logging.RotationSize,
		RetentionDays:  cfg.Logging.RetentionDays,
		ServiceName:    "invest",
		ServiceVersion: version,
	})
}

// withApp builds the components, runs fn, then releases them
func withApp(ctx context.Context, fn func(*app.App) error) error {
	a, err := app.New(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(a)
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
