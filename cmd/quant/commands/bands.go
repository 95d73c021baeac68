package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/energyls/internal/indicators"
)

// bandsCmd prints a Bollinger band table for one security
var bandsCmd = &cobra.Command{
	Use:   "bands",
	Short: "볼린저 밴드 계산 (CSV)",
	Long: `한 종목의 종가로 볼린저 밴드(mean ± k·std)를 계산해 CSV로 출력합니다.
window/k 는 전략 파일의 bands 섹션을 따릅니다.

Example:
  go run ./cmd/quant bands --security XOM
  go run ./cmd/quant bands --security XOM --from 2024-01-01 --to 2024-03-29 --out xom.csv`,
	RunE: runBands,
}

var (
	bandsSecurity string
	bandsFrom     string
	bandsTo       string
	bandsOut      string
)

func init() {
	rootCmd.AddCommand(bandsCmd)

	bandsCmd.Flags().StringVar(&bandsSecurity, "security", "", "security id")
	bandsCmd.Flags().StringVar(&bandsFrom, "from", "", "first date YYYY-MM-DD (default: to - 180 days)")
	bandsCmd.Flags().StringVar(&bandsTo, "to", "", "last date YYYY-MM-DD (default: today)")
	bandsCmd.Flags().StringVar(&bandsOut, "out", "", "output file (default: stdout)")
	_ = bandsCmd.MarkFlagRequired("security")
}

func runBands(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.close()

	to, err := cycleDate(bandsTo, time.Now().In(a.strategy.Location()))
	if err != nil {
		return err
	}
	from := to.AddDate(0, 0, -180)
	if bandsFrom != "" {
		if from, err = time.Parse("2006-01-02", bandsFrom); err != nil {
			return fmt.Errorf("invalid --from %q: %w", bandsFrom, err)
		}
	}

	bands, err := indicators.LoadBands(ctx, a.prices, bandsSecurity, from, to, a.strategy.BollingerConfig())
	if err != nil {
		return fmt.Errorf("compute bands: %w", err)
	}
	if len(bands) == 0 {
		return fmt.Errorf("no prices for %s between %s and %s", bandsSecurity, from.Format("2006-01-02"), to.Format("2006-01-02"))
	}

	var w io.Writer = os.Stdout
	if bandsOut != "" {
		f, err := os.Create(bandsOut)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}

	return indicators.Frame(bands).WriteCSV(w)
}
