package reportcmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"

	"github.com/dtnitsch/clipmetrics/pkg/db"
	"github.com/dtnitsch/clipmetrics/pkg/report"
)

// batchListing is the YAML shape of `clipmetrics report --list`.
type batchListing struct {
	BatchID   string `yaml:"batch_id"`
	StartedAt string `yaml:"started_at"`
	Targets   int    `yaml:"targets"`
	Results   int    `yaml:"results"`
	Successes int    `yaml:"successes"`
	TotalCost string `yaml:"total_cost"`
}

func ReportAction(c *cli.Context) error {
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))

	database, err := db.Open(c.String("db"))
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(2)
	}
	defer database.Close()

	if c.Bool("list") {
		batches, err := database.ListBatches(c.Int("limit"))
		if err != nil {
			return fmt.Errorf("failed to list batches: %w", err)
		}

		listings := make([]batchListing, len(batches))
		for i, b := range batches {
			listings[i] = batchListing{
				BatchID:   b.BatchID,
				StartedAt: b.StartedAt.Format("2006-01-02 15:04:05"),
				Targets:   b.TargetCount,
				Results:   b.ResultCount,
				Successes: b.SuccessCount,
				TotalCost: fmt.Sprintf("$%.4f", b.TotalCost),
			}
		}

		outputData, err := yaml.Marshal(listings)
		if err != nil {
			return fmt.Errorf("failed to marshal batch list: %w", err)
		}
		fmt.Println(string(outputData))
		return nil
	}

	r, err := report.FromDB(database, c.String("batch"), c.Int("keywords"))
	if err != nil {
		return fmt.Errorf("failed to build report: %w", err)
	}

	outputData, err := yaml.Marshal(r)
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}
	fmt.Println(string(outputData))
	return nil
}
