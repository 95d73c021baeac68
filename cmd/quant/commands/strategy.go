package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/wonny/energyls/internal/strategyconfig"
	"github.com/wonny/energyls/pkg/config"
	"github.com/wonny/energyls/pkg/logger"
)

// strategyCmd represents the strategy command group
var strategyCmd = &cobra.Command{
	Use:   "strategy",
	Short: "전략 설정",
}

var strategyShowCmd = &cobra.Command{
	Use:   "show",
	Short: "전략 파일 검증 및 출력",
	Long: `전략 YAML을 로드/검증하고 해시, 크론 스펙, 경고를 출력합니다.

Example:
  go run ./cmd/quant strategy show
  go run ./cmd/quant strategy show --strategy config/strategy/energy_ls.yaml`,
	RunE: showStrategy,
}

func init() {
	rootCmd.AddCommand(strategyCmd)
	strategyCmd.AddCommand(strategyShowCmd)
}

func showStrategy(cmd *cobra.Command, args []string) error {
	// --strategy does not need the rest of the environment (DATABASE_URL)
	path := strategyFile
	if path == "" {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		path = cfg.StrategyConfigPath
	}

	strategy, hash, err := loadStrategy(&config.Config{StrategyConfigPath: path}, logger.Nop())
	if err != nil {
		return err
	}

	out, err := yaml.Marshal(strategy)
	if err != nil {
		return err
	}

	fmt.Printf("# %s\n", path)
	fmt.Println(string(out))
	fmt.Printf("hash:    %s\n", hash)
	fmt.Printf("warmup:  %s\n", strategy.WarmupCronSpec())
	fmt.Printf("cron:    %s\n", strategy.CronSpec())

	warnings := strategyconfig.Warn(strategy)
	if len(warnings) == 0 {
		fmt.Println("\n✅ No warnings")
		return nil
	}

	fmt.Println("\n⚠️  Warnings:")
	for _, w := range warnings {
		fmt.Printf("  [%s] %s\n", w.Code, w.Message)
	}
	return nil
}
