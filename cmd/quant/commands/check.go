package commands

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/energyls/pkg/database"
	"github.com/wonny/energyls/pkg/logger"
	"github.com/wonny/energyls/pkg/redis"
)

// checkCmd represents the check command
var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "PostgreSQL/Redis 연결 및 전략 파일 점검",
	Long: `운영 전 의존성을 점검합니다.

이 명령어는:
- config에서 DATABASE_URL 로드
- 데이터베이스 Ping / Health Check / Pool 통계
- Redis 연결 (REDIS_ENABLED=true 인 경우)
- 전략 파일 검증 및 해시 출력

Example:
  go run ./cmd/quant check
  go run ./cmd/quant check --env production`,
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	fmt.Println("=== energyls Dependency Check ===")

	// Load configuration
	fmt.Println("Loading configuration...")
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("❌ Failed to load config: %w", err)
	}
	fmt.Printf("✅ Config loaded (ENV: %s)\n", cfg.Env)
	fmt.Printf("   Database URL: %s\n\n", maskPassword(cfg.Database.URL))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Strategy
	fmt.Printf("Loading strategy %s...\n", cfg.StrategyConfigPath)
	strategy, hash, err := loadStrategy(cfg, logger.Nop())
	if err != nil {
		return fmt.Errorf("❌ Invalid strategy: %w", err)
	}
	fmt.Printf("✅ Strategy %s v%s (hash %s)\n", strategy.Meta.StrategyID, strategy.Meta.Version, hash[:12])
	fmt.Printf("   Rebalance cron: %s\n\n", strategy.CronSpec())

	// Database
	fmt.Println("Connecting to database...")
	db, err := database.New(ctx, cfg)
	if err != nil {
		return fmt.Errorf("❌ Failed to connect to database: %w", err)
	}
	defer db.Close()

	if err := db.Ping(ctx); err != nil {
		return fmt.Errorf("❌ Failed to ping database: %w", err)
	}
	fmt.Println("✅ Ping successful")

	status, err := db.HealthCheck(ctx)
	if err != nil {
		return fmt.Errorf("❌ Health check failed: %w", err)
	}
	fmt.Printf("   Healthy: %v\n", status.Healthy)
	fmt.Printf("   Response Time: %v\n", status.ResponseTime)

	fmt.Println("📊 Connection Pool Statistics:")
	fmt.Printf("   Max Connections: %d\n", status.Stats.MaxConns)
	fmt.Printf("   Total Connections: %d\n", status.Stats.TotalConns)
	fmt.Printf("   Idle Connections: %d\n\n", status.Stats.IdleConns)

	// Redis
	if !cfg.Redis.Enabled {
		fmt.Println("⏭️  Redis disabled (snapshot cache and plan channel off)")
	} else {
		fmt.Println("Connecting to Redis...")
		rdb, err := redis.New(ctx, cfg)
		if err != nil {
			return fmt.Errorf("❌ Failed to connect to redis: %w", err)
		}
		defer rdb.Close()
		fmt.Printf("✅ Redis reachable (plan channel %s)\n", cfg.PlanChannel)
	}

	fmt.Println("\n✅ All checks passed!")
	return nil
}

// maskPassword hides the password in a database URL for display
func maskPassword(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.User == nil {
		return raw
	}
	if _, ok := u.User.Password(); !ok {
		return raw
	}
	u.User = url.UserPassword(u.User.Username(), "***")
	return u.String()
}
