package collect

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"

	"github.com/dtnitsch/clipmetrics/models"
	"github.com/dtnitsch/clipmetrics/pkg/artifacts"
	"github.com/dtnitsch/clipmetrics/pkg/budget"
	"github.com/dtnitsch/clipmetrics/pkg/db"
	"github.com/dtnitsch/clipmetrics/pkg/dispatch"
	"github.com/dtnitsch/clipmetrics/pkg/extract"
	"github.com/dtnitsch/clipmetrics/pkg/ratelimit"
	"github.com/dtnitsch/clipmetrics/pkg/report"
	"github.com/dtnitsch/clipmetrics/pkg/selector"
	"github.com/dtnitsch/clipmetrics/pkg/stats"
)

func CollectAction(c *cli.Context) error {
	logLevel := slog.LevelInfo
	if c.Bool("quiet") {
		logLevel = slog.LevelError
	}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))
	startTime := time.Now()

	// .env is optional; a missing file is not an error.
	_ = godotenv.Load()

	config, err := models.LoadConfig(c.String("config"))
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(2)
	}
	if c.IsSet("max-budget") {
		config.MaxBudgetPerDay = c.Float64("max-budget")
	}
	if c.IsSet("max-requests") {
		config.MaxRequestsPerDay = c.Int("max-requests")
	}

	targets, err := collectTargets(c)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Usage:")
		fmt.Fprintln(os.Stderr, `  clipmetrics collect --targets "https://www.tiktok.com/@user/video/123"`)
		fmt.Fprintln(os.Stderr, `  clipmetrics collect --targets-file targets.txt`)
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Need help? Run: clipmetrics collect --help")
		os.Exit(1)
	}

	dbPath := config.DatabasePath
	if c.IsSet("db") {
		dbPath = c.String("db")
	}
	database, err := db.Open(dbPath)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(2)
	}
	defer database.Close()

	var sink extract.RawSink
	if dir := c.String("dump-raw"); dir != "" {
		store, err := artifacts.NewStore(dir, logger)
		if err != nil {
			logger.Error("failed to initialize artifact store", "error", err)
			os.Exit(2)
		}
		sink = store
	}

	batchID := uuid.NewString()
	if err := database.CreateBatch(batchID, startTime, len(targets)); err != nil {
		logger.Error("failed to create batch", "error", err)
		os.Exit(2)
	}
	logger.Info("batch started", "batch_id", batchID, "targets", len(targets))

	writer := database.NewBatchWriter(batchID)
	writer.DetectLanguage = report.NewLanguageDetector().Detect

	budgetTracker := budget.NewTracker(config.MaxBudgetPerDay)
	statsTracker := stats.NewTracker()
	executor := dispatch.NewExecutor(
		config,
		selector.New(config),
		ratelimit.NewLimiter(config),
		budgetTracker,
		statsTracker,
		extract.All(config, sink),
		writer,
		logger,
	)

	progress := func(processed, total int) {
		fmt.Fprintf(os.Stderr, "processed %d/%d targets, spent %s\n",
			processed, total, fmt.Sprintf("$%.4f", budgetTracker.DailySpend()))
	}
	runner := dispatch.NewRunner(config, executor, budgetTracker, statsTracker, writer, progress, logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	results := runner.RunBatch(ctx, targets)

	successCount := 0
	for _, r := range results {
		if r.Success {
			successCount++
		}
	}
	if err := database.FinishBatch(batchID, time.Now(), len(results), successCount, budgetTracker.DailySpend()); err != nil {
		logger.Warn("failed to finish batch", "error", err)
	}

	finalOutput := &FinalOutput{
		BatchID:          batchID,
		TargetCount:      len(targets),
		ProcessedCount:   len(results),
		SkippedCount:     len(targets) - len(results),
		TotalTimeSeconds: time.Since(startTime).Seconds(),
		BudgetSpent:      fmt.Sprintf("$%.4f", budgetTracker.DailySpend()),
		CheapestMethod:   report.CheapestViable(config),
		Report:           report.FromTracker(statsTracker),
		Targets:          summarize(results),
	}

	outputData, err := yaml.Marshal(finalOutput)
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	fmt.Println(string(outputData))
	return nil
}

func summarize(results []models.Result) []TargetSummary {
	summaries := make([]TargetSummary, len(results))
	for i, r := range results {
		summaries[i] = TargetSummary{
			Target:  r.Target,
			Method:  r.MethodName,
			Success: r.Success,
			Error:   r.Error,
		}
		if r.Success {
			summaries[i].Views = r.Metrics.Views
			summaries[i].Likes = r.Metrics.Likes
			// EngagementRate is already a percentage.
			summaries[i].Engagement = fmt.Sprintf("%.2f%%", r.Metrics.EngagementRate)
		}
	}
	return summaries
}

// collectTargets merges --targets and --targets-file into one ordered,
// deduplicated list.
func collectTargets(c *cli.Context) ([]string, error) {
	var targets []string
	seen := make(map[string]struct{})

	add := func(raw string) {
		t := strings.TrimSpace(raw)
		if t == "" {
			return
		}
		if _, dup := seen[t]; dup {
			return
		}
		seen[t] = struct{}{}
		targets = append(targets, t)
	}

	if c.IsSet("targets") {
		for _, t := range strings.Split(c.String("targets"), ",") {
			add(t)
		}
	}

	if path := c.String("targets-file"); path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open targets file: %w", err)
		}
		defer f.Close()

		scanner := bufio.NewScanner(f)
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			if line == "" || strings.HasPrefix(line, "#") {
				continue
			}
			add(line)
		}
		if err := scanner.Err(); err != nil {
			return nil, fmt.Errorf("failed to read targets file: %w", err)
		}
	}

	if len(targets) == 0 {
		return nil, fmt.Errorf("no targets provided")
	}
	return targets, nil
}
