// README: Benchmark runner for heuristic dispatch baselines, grounded on
// cmd/bench/main.go's flag-driven Config + Runner.RunAll + summary-line
// shape, generalized from HTTP/DB/Redis smoke checks to running full
// simulation episodes under each of component 12's reference selectors.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"
)

func main() {
	cfg := loadConfig()

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Timeout)
	defer cancel()

	runner := NewRunner(cfg)
	results := runner.RunAll(ctx)

	fmt.Println("\n== Summary ==")
	for _, r := range results {
		fmt.Printf("%-12s episodes=%d avg_reward=%.2f avg_delivered=%.2f avg_distance=%.2f\n",
			r.Selector, r.Episodes, r.AvgReward, r.AvgDelivered, r.AvgDistance)
	}
}

type Config struct {
	ScenarioPath string
	RedisAddr    string
	Episodes     int
	Timeout      time.Duration
	Selectors    []string
}

func loadConfig() Config {
	var cfg Config
	var selectorList string
	flag.StringVar(&cfg.ScenarioPath, "scenario", envOrDefault("SIM_BENCH_SCENARIO", "scenario.json"), "scenario JSON file path")
	flag.StringVar(&cfg.RedisAddr, "redis", envOrDefault("SIM_REDIS_ADDR", ""), "optional Redis address for the nearest-driver GEO index")
	flag.IntVar(&cfg.Episodes, "episodes", envOrDefaultInt("SIM_BENCH_EPISODES", 5), "episodes to run per selector")
	flag.DurationVar(&cfg.Timeout, "timeout", envOrDefaultDuration("SIM_BENCH_TIMEOUT", 60*time.Second), "total timeout")
	flag.StringVar(&selectorList, "selectors", "first,random,nearest,lowest_cost", "comma-separated selector names")
	flag.Parse()

	cfg.Selectors = strings.Split(selectorList, ",")
	return cfg
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envOrDefaultInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		var n int
		if _, err := fmt.Sscanf(v, "%d", &n); err == nil && n > 0 {
			return n
		}
	}
	return def
}

func envOrDefaultDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}
