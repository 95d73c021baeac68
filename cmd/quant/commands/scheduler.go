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

	"github.com/wonny/energyls/internal/api"
	"github.com/wonny/energyls/internal/scheduler"
	"github.com/wonny/energyls/internal/scheduler/jobs"
)

// schedulerCmd represents the scheduler command
var schedulerCmd = &cobra.Command{
	Use:   "scheduler",
	Short: "스케줄러 관리",
	Long: `스케줄러를 시작하거나 작업을 관리합니다.

Subcommands:
  start   - 스케줄러 시작
  list    - 등록된 작업 목록
  run     - 특정 작업 즉시 실행
  status  - 작업 스케줄/실행 상태 조회

Example:
  go run ./cmd/quant scheduler start
  go run ./cmd/quant scheduler list
  go run ./cmd/quant scheduler run weekly_rebalance`,
}

var (
	schedulerStartCmd = &cobra.Command{
		Use:   "start",
		Short: "스케줄러 시작",
		Long: `스케줄러를 시작하고 등록된 모든 작업을 스케줄합니다.

등록되는 작업:
- snapshot_warmup: 리밸런싱 요일 장 시작 시각 (스냅샷 캐시 예열)
- weekly_rebalance: 리밸런싱 요일 장 시작 + offset (기본 월요일 10:30 ET)

METRICS_ENABLED=true 이면 METRICS_PORT 에서 /metrics 를 노출합니다.
스케줄러는 Ctrl+C로 종료할 수 있습니다.`,
		RunE: runScheduler,
	}

	schedulerListCmd = &cobra.Command{
		Use:   "list",
		Short: "등록된 작업 목록",
		RunE:  listJobs,
	}

	schedulerRunCmd = &cobra.Command{
		Use:   "run [job_name]",
		Short: "특정 작업 즉시 실행 (재시도 포함, 완료까지 대기)",
		Args:  cobra.ExactArgs(1),
		RunE:  runJob,
	}

	schedulerStatusCmd = &cobra.Command{
		Use:   "status",
		Short: "작업 스케줄/실행 상태 조회",
		RunE:  showStatus,
	}
)

func init() {
	rootCmd.AddCommand(schedulerCmd)
	schedulerCmd.AddCommand(schedulerStartCmd)
	schedulerCmd.AddCommand(schedulerListCmd)
	schedulerCmd.AddCommand(schedulerRunCmd)
	schedulerCmd.AddCommand(schedulerStatusCmd)
}

func runScheduler(cmd *cobra.Command, args []string) error {
	fmt.Println("=== energyls Scheduler ===")

	a, sched, err := initScheduler(context.Background())
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}
	defer a.close()

	// Metrics endpoint
	var metricsServer *api.Server
	if a.cfg.MetricsEnabled {
		router := api.NewRouter(api.Routes{Metrics: a.metrics.Handler()}, a.log)
		metricsServer = api.New("metrics", a.cfg.MetricsPort, router, a.log)
		go func() {
			if err := metricsServer.Start(); err != nil {
				a.log.WithError(err).Error("Metrics server failed")
			}
		}()
	}

	sched.Start()

	fmt.Println("\n✅ Scheduler started successfully")
	printJobs(sched)
	fmt.Println("\nPress Ctrl+C to stop")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	fmt.Println("\nShutting down scheduler...")
	sched.Stop()

	if metricsServer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := metricsServer.Shutdown(ctx); err != nil {
			a.log.WithError(err).Warn("Metrics server shutdown failed")
		}
	}

	fmt.Println("Scheduler stopped")
	return nil
}

func listJobs(cmd *cobra.Command, args []string) error {
	a, sched, err := initScheduler(context.Background())
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}
	defer a.close()

	printJobs(sched)
	return nil
}

func runJob(cmd *cobra.Command, args []string) error {
	jobName := args[0]

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, sched, err := initScheduler(ctx)
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}
	defer a.close()

	fmt.Printf("Running job: %s\n", jobName)

	result, err := sched.RunJobSync(ctx, jobName)
	if err != nil {
		return fmt.Errorf("run job: %w", err)
	}

	if !result.Success {
		return fmt.Errorf("job %s failed after %s: %s", jobName, result.Duration.Round(time.Millisecond), result.Error)
	}

	fmt.Printf("✅ Job %s completed in %s (attempts: %d)\n", jobName, result.Duration.Round(time.Millisecond), result.Attempts)
	if result.RunID != "" {
		fmt.Printf("   Run ID: %s\n", result.RunID)
	}
	return nil
}

func showStatus(cmd *cobra.Command, args []string) error {
	a, sched, err := initScheduler(context.Background())
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}
	defer a.close()

	stats := sched.GetJobStats()
	names := make([]string, 0, len(stats))
	for name := range stats {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Println("Job Statistics:")
	fmt.Println()

	for _, jobName := range names {
		stat := stats[jobName]
		fmt.Printf("📊 %s\n", jobName)
		fmt.Printf("   Schedule: %s\n", stat.Schedule)
		if stat.NextRun != nil {
			fmt.Printf("   Next Run: %s\n", stat.NextRun.Format("2006-01-02 15:04:05 MST"))
		}
		fmt.Printf("   Total Runs: %d\n", stat.TotalRuns)
		fmt.Printf("   Success: %d (%.1f%%)\n", stat.SuccessCount, stat.SuccessRate*100)
		fmt.Printf("   Failures: %d\n", stat.FailureCount)

		if stat.LastRun != nil {
			fmt.Printf("   Last Run: %s\n", stat.LastRun.Format("2006-01-02 15:04:05"))
		}
		if stat.LastRunID != "" {
			fmt.Printf("   Last Run ID: %s\n", stat.LastRunID)
		}
		if stat.LastSuccess != nil {
			fmt.Printf("   Last Success: %s\n", stat.LastSuccess.Format("2006-01-02 15:04:05"))
		}
		if stat.LastFailure != nil {
			fmt.Printf("   Last Failure: %s\n", stat.LastFailure.Format("2006-01-02 15:04:05"))
		}

		fmt.Println()
	}

	return nil
}

func printJobs(sched *scheduler.Scheduler) {
	fmt.Println("Registered jobs:")
	for _, jobName := range sched.GetAllJobs() {
		if next, err := sched.NextRun(jobName); err == nil && !next.IsZero() {
			fmt.Printf("  - %s (next: %s)\n", jobName, next.Format("2006-01-02 15:04 MST"))
			continue
		}
		fmt.Printf("  - %s\n", jobName)
	}
}

// initScheduler wires dependencies and registers the warmup and rebalance jobs
func initScheduler(ctx context.Context) (*app, *scheduler.Scheduler, error) {
	a, err := newApp(ctx)
	if err != nil {
		return nil, nil, err
	}

	r, err := a.rebalancer()
	if err != nil {
		a.close()
		return nil, nil, err
	}

	loc := a.strategy.Location()
	sched := scheduler.New(a.log, scheduler.WithRetry(3, time.Minute))

	if err := sched.AddJob(jobs.NewSnapshotWarmupJob(a.snapshotProvider(), a.strategy.WarmupCronSpec(), loc, a.log)); err != nil {
		a.close()
		return nil, nil, fmt.Errorf("add warmup job: %w", err)
	}
	if err := sched.AddJob(jobs.NewRebalanceJob(r, a.strategy.CronSpec(), loc, a.log)); err != nil {
		a.close()
		return nil, nil, fmt.Errorf("add rebalance job: %w", err)
	}

	return a, sched, nil
}
