package commands

import (
	"github.com/spf13/cobra"
)

var (
	// Global flags
	strategyFile string
	env          string
	verbose      bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "quant",
	Short: "energyls - 에너지 섹터 주간 롱/숏 리밸런서",
	Long: `energyls Unified CLI

에너지 섹터(309) 유니버스에서 10일/30일 이동평균 비교로
롱/숏 신호를 만들고 달러 중립 목표 비중을 매주 산출합니다.

Usage:
  go run ./cmd/quant [command]

Examples:
  go run ./cmd/quant rebalance run --dry-run
  go run ./cmd/quant scheduler start
  go run ./cmd/quant api
  go run ./cmd/quant bands --security XOM
  go run ./cmd/quant strategy show
  go run ./cmd/quant check`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&strategyFile, "strategy", "", "strategy YAML (default is $STRATEGY_CONFIG)")
	rootCmd.PersistentFlags().StringVar(&env, "env", "", "environment override (development|staging|production)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output (debug logs)")
}
