// cmd/cancel-order/main.go
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
	"servicenow-toolkit/internal/notify"
	"servicenow-toolkit/internal/snow"
	"servicenow-toolkit/internal/snow/resolve"
	"servicenow-toolkit/internal/tools/orders"
)

func main() {
	var (
		configPath = flag.String("config", "", "path to config file (default: config.yaml search path)")
		requestID  = flag.String("request", "", "sys_id of the sc_request to cancel")
		reason     = flag.String("reason", "", "cancellation reason")
		notifyUser = flag.Bool("notify", false, "email the requestor about the cancellation")
	)
	flag.Parse()

	if *requestID == "" {
		fmt.Fprintln(os.Stderr, "-request is required")
		os.Exit(1)
	}

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

	ctx := context.Background()

	notifier, err := notify.FromConfig(ctx, cfg.Notifications, log)
	if err != nil {
		zapLog.Fatal("notifier setup failed", zap.Error(err))
	}

	svc := orders.NewService(client, resolve.NewResolver(client, log), notifier, log)

	resp := svc.CancelOrder(ctx, orders.CancelOrderParams{
		RequestID:          *requestID,
		CancellationReason: *reason,
		NotifyRequestor:    *notifyUser,
	})

	out, err := json.MarshalIndent(resp, "", "  ")
	if err != nil {
		zapLog.Fatal("response encoding failed", zap.Error(err))
	}
	fmt.Println(string(out))

	if !resp.Success {
		os.Exit(1)
	}
}
