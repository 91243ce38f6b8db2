// cmd/warranty-report/main.go
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"servicenow-toolkit/internal/common/auth"
	"servicenow-toolkit/internal/common/config"
	"servicenow-toolkit/internal/common/logger"
	"servicenow-toolkit/internal/snow"
	"servicenow-toolkit/internal/tools/warranty"
)

func main() {
	var (
		configPath   = flag.String("config", "", "path to config file (default: config.yaml search path)")
		reportType   = flag.String("type", "summary", "report type: expired, expiring, missing, summary")
		daysAhead    = flag.Int("days-ahead", 0, "days ahead for the expiring report (default from config)")
		department   = flag.String("department", "", "filter by department")
		location     = flag.String("location", "", "filter by location")
		manufacturer = flag.String("manufacturer", "", "filter by manufacturer")
		details      = flag.Bool("details", true, "include detailed asset fields")
	)
	flag.Parse()

	var (
		cfg *config.Config
		err error
	)
	if *configPath != "" {
		cfg, err = config.LoadFromFile(*configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	provider, err := auth.FromConfig(cfg.Auth)
	if err != nil {
		zapLog.Fatal("auth setup failed", zap.Error(err))
	}

	client := snow.NewClient(
		cfg.ServiceNow.InstanceURL,
		cfg.ServiceNow.APIPath,
		provider,
		config.GetDuration(cfg.ServiceNow.Timeout),
		log,
	)

	svc := warranty.NewService(client, warranty.NewSimulatedVendorAPI(), cfg.Warranty.MaxConcurrent, log)

	ahead := *daysAhead
	if ahead == 0 {
		ahead = cfg.Warranty.DaysAhead
	}

	report := svc.Report(context.Background(), warranty.ReportParams{
		ReportType:     *reportType,
		DaysAhead:      ahead,
		Department:     *department,
		Location:       *location,
		Manufacturer:   *manufacturer,
		IncludeDetails: *details,
	})

	out, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		zapLog.Fatal("report encoding failed", zap.Error(err))
	}
	fmt.Println(string(out))

	if !report.Success {
		os.Exit(1)
	}
}
