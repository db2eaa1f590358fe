package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pratik-mahalle/costlens/internal/api/dto"
	"github.com/pratik-mahalle/costlens/internal/detector"
	"github.com/pratik-mahalle/costlens/internal/pkg/logger"
)

func newDetectCmd() *cobra.Command {
	var (
		file        string
		windowStart string
		windowEnd   string
	)

	cmd := &cobra.Command{
		Use:   "detect",
		Short: "Detect anomalies in a daily cost series",
		Long: `Reads a JSON cost series from a file and runs the full detection
pipeline locally. The file holds either an array of observations or an object
with an "observations" field:

  [{"date": "2025-03-01", "daily_cost": 104.20, "service_costs": {"Compute": 61.10}}, ...]`,
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := readSeriesFile(file)
			if err != nil {
				return err
			}
			if windowStart != "" {
				req.WindowStart = windowStart
			}
			if windowEnd != "" {
				req.WindowEnd = windowEnd
			}

			series, err := req.Series()
			if err != nil {
				return fmt.Errorf("invalid observation date: %w", err)
			}
			start, end, err := req.Window()
			if err != nil {
				return fmt.Errorf("invalid window bounds: %w", err)
			}

			log := logger.New(logger.Config{Level: "error", Format: "console"})
			cfg := detector.DefaultConfig()
			cfg.Seed = viper.GetInt64("detector.seed")

			engine := detector.NewEngine(cfg, log)
			anomalies, err := engine.Detect(context.Background(), series, start, end)
			if err != nil {
				return fmt.Errorf("detection failed: %w", err)
			}

			result := dto.NewDetectResponse(anomalies)
			switch getOutputFormat() {
			case "json":
				return printJSON(result)
			case "yaml":
				return printYAML(result)
			default:
				renderAnomalyTable(result.Anomalies)
				return nil
			}
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "path to the JSON cost series file (required)")
	cmd.Flags().StringVar(&windowStart, "window-start", "", "evaluation window start (YYYY-MM-DD)")
	cmd.Flags().StringVar(&windowEnd, "window-end", "", "evaluation window end (YYYY-MM-DD)")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}

// readSeriesFile loads a detection request from disk, accepting either a bare
// observation array or a full request object
func readSeriesFile(path string) (dto.DetectRequest, error) {
	var req dto.DetectRequest

	data, err := os.ReadFile(path)
	if err != nil {
		return req, fmt.Errorf("failed to read %s: %w", path, err)
	}

	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		if err := json.Unmarshal(trimmed, &req.Observations); err != nil {
			return req, fmt.Errorf("failed to parse %s: %w", path, err)
		}
		return req, nil
	}

	if err := json.Unmarshal(trimmed, &req); err != nil {
		return req, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return req, nil
}

func renderAnomalyTable(anomalies []dto.AnomalyDTO) {
	if len(anomalies) == 0 {
		fmt.Println("No anomalies detected.")
		return
	}

	table := NewTable("DATE", "TYPE", "SEVERITY", "CONFIDENCE", "SCORE", "ACTUAL", "EXPECTED", "METHOD")
	for _, a := range anomalies {
		table.AddRow(
			a.AnomalyDate,
			a.AnomalyType,
			formatSeverity(a.Severity),
			fmt.Sprintf("%.2f", a.Confidence),
			fmt.Sprintf("%.2f", a.AnomalyScore),
			fmt.Sprintf("$%.2f", a.ActualCost),
			fmt.Sprintf("$%.2f", a.ExpectedCost),
			truncate(a.DetectionMethod, 24),
		)
	}
	table.Render()

	fmt.Printf("\n%d anomalies detected at %s\n",
		len(anomalies), anomalies[0].DetectedAt.Format(time.RFC3339))
}
