package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/energyls/internal/contracts"
	"github.com/wonny/energyls/internal/rebalance"
)

// rebalanceCmd represents the rebalance command group
var rebalanceCmd = &cobra.Command{
	Use:   "rebalance",
	Short: "리밸런싱 사이클",
}

var rebalanceRunCmd = &cobra.Command{
	Use:   "run",
	Short: "리밸런싱 사이클 1회 실행",
	Long: `유니버스 → 보유종목 → 목표 비중 → 발행 순서로 사이클을 1회 실행합니다.

--dry-run 이면 플랜을 저장/발행하지 않고 로그로만 출력합니다.

Example:
  go run ./cmd/quant rebalance run
  go run ./cmd/quant rebalance run --date 2024-03-11 --dry-run`,
	RunE: runRebalance,
}

var (
	rebalanceDate   string
	rebalanceDryRun bool
)

func init() {
	rootCmd.AddCommand(rebalanceCmd)
	rebalanceCmd.AddCommand(rebalanceRunCmd)

	rebalanceRunCmd.Flags().StringVar(&rebalanceDate, "date", "", "cycle date YYYY-MM-DD (default: today in the strategy timezone)")
	rebalanceRunCmd.Flags().BoolVar(&rebalanceDryRun, "dry-run", false, "log the plan without persisting or publishing")
}

func runRebalance(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.close()

	date, err := cycleDate(rebalanceDate, time.Now().In(a.strategy.Location()))
	if err != nil {
		return err
	}

	r, err := a.rebalancer()
	if err != nil {
		return err
	}

	result, err := r.Run(ctx, rebalance.RunConfig{Date: date, DryRun: rebalanceDryRun})
	printCycle(result)
	if err != nil {
		return fmt.Errorf("rebalance failed: %w", err)
	}
	return nil
}

// cycleDate parses --date, defaulting to the calendar day of now
func cycleDate(s string, now time.Time) (time.Time, error) {
	if s == "" {
		y, m, d := now.Date()
		return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), nil
	}
	date, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --date %q (expected YYYY-MM-DD): %w", s, err)
	}
	return date, nil
}

func printCycle(result *rebalance.CycleResult) {
	if result == nil {
		return
	}

	fmt.Println()
	fmt.Println("═══════════════════════════════════════════════════════════")
	fmt.Printf("  Rebalance %s\n", result.Date.Format("2006-01-02"))
	fmt.Println("───────────────────────────────────────────────────────────")
	fmt.Printf("  Run ID    : %s\n", result.RunID)
	fmt.Printf("  Universe  : %d\n", result.Universe)
	fmt.Printf("  Snapshots : %d\n", result.Snapshots)
	fmt.Printf("  Holdings  : %d\n", result.Holdings)
	fmt.Printf("  Duration  : %s\n", result.Duration.Round(time.Millisecond))
	fmt.Println("───────────────────────────────────────────────────────────")

	if plan := result.Plan; plan != nil {
		for _, in := range plan.Instructions {
			fmt.Printf("  %-12s %-10s %+.4f\n", in.Kind, in.SecurityID, in.TargetWeight)
		}
		if len(plan.Skipped) > 0 {
			fmt.Printf("  skipped (not tradable): %v\n", plan.Skipped)
		}
		printExcluded(plan)
		fmt.Printf("  long %.4f / short %.4f\n", plan.LongWeight, plan.ShortWeight)
	}

	if result.Success {
		fmt.Println("\n✅ Cycle completed")
	} else {
		fmt.Printf("\n❌ Cycle failed: %v\n", result.Error)
	}
}

func printExcluded(plan *contracts.AllocationPlan) {
	if len(plan.Excluded) == 0 {
		return
	}
	ids := make([]string, 0, len(plan.Excluded))
	for id := range plan.Excluded {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		fmt.Printf("  excluded     %-10s %s\n", id, plan.Excluded[id])
	}
}
