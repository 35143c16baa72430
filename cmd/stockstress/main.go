// Command stockstress races concurrent status changes on one order and checks
// that its stock was deducted exactly once.
//
//	stockstress run --workers 16
//	stockstress run --procs 2 --workers 8 --mode deduct
//
// The database comes from the same config.toml and BAKERY_ environment as the
// server. Use postgres for --procs; sqlite serialises writers.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/VMKayser/Panificadora-Nancy-sub002/internal/infrastructure/config"
	"github.com/VMKayser/Panificadora-Nancy-sub002/internal/infrastructure/logger"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	kingpin "gopkg.in/alecthomas/kingpin.v2"
)

var (
	app = kingpin.New("stockstress", "Races concurrent order confirmations against the inventory deduction")

	runCmd      = app.Command("run", "Seed an order and race workers on it").Default()
	runWorkers  = runCmd.Flag("workers", "Goroutines per process").Default("8").Int()
	runProcs    = runCmd.Flag("procs", "Child processes; 0 races goroutines in this process").Default("0").Int()
	runMode     = runCmd.Flag("mode", "status confirms the order, deduct calls the deduction directly").Default("status").Enum("status", "deduct")
	runStock    = runCmd.Flag("stock", "Initial product stock").Default("100").String()
	runQuantity = runCmd.Flag("quantity", "Units on the order").Default("3").String()
	runLead     = runCmd.Flag("lead", "Time given to child processes to start before the race").Default("2s").Duration()
	runMigrate  = runCmd.Flag("migrate", "Bring the schema up to date first").Default("true").Bool()
	runJSON     = runCmd.Flag("json", "Print the report as JSON").Bool()

	workerCmd     = app.Command("worker", "Internal: one racing process").Hidden()
	workerOrder   = workerCmd.Flag("order", "Order id").Required().String()
	workerMode    = workerCmd.Flag("mode", "Race mode").Default("status").Enum("status", "deduct")
	workerWorkers = workerCmd.Flag("workers", "Goroutines").Default("1").Int()
	workerAt      = workerCmd.Flag("at", "Start instant, RFC3339Nano").Required().String()
	workerName    = workerCmd.Flag("name", "Worker name prefix").Default("w").String()

	logLevel = app.Flag("log-level", "Log level (debug, info, warn, error)").Default("warn").String()
)

func main() {
	cmd := kingpin.MustParse(app.Parse(os.Args[1:]))

	// stdout carries results; logs go to stderr
	log, err := logger.New(&logger.Config{Level: *logLevel, Format: "console", Output: "stderr"})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(2)
	}
	defer func() { _ = log.Sync() }()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration", zap.Error(err))
	}

	ctx := context.Background()
	switch cmd {
	case workerCmd.FullCommand():
		os.Exit(runWorker(ctx, cfg, log))
	default:
		os.Exit(runParent(ctx, cfg, log))
	}
}

func runParent(ctx context.Context, cfg *config.Config, log *zap.Logger) int {
	stock, err := decimal.NewFromString(*runStock)
	if err != nil {
		log.Error("Invalid --stock", zap.Error(err))
		return 2
	}
	quantity, err := decimal.NewFromString(*runQuantity)
	if err != nil || !quantity.IsPositive() {
		log.Error("Invalid --quantity", zap.String("quantity", *runQuantity))
		return 2
	}

	a, err := newStressApp(&cfg.Database, *runMigrate, log)
	if err != nil {
		log.Error("Failed to open database", zap.Error(err))
		return 2
	}
	defer func() { _ = a.Close() }()

	runID := uuid.NewString()[:8]
	fx, err := a.seed(ctx, runID, stock, quantity)
	if err != nil {
		log.Error("Failed to seed fixture", zap.Error(err))
		return 2
	}
	log.Info("Fixture ready",
		zap.String("run", runID),
		zap.String("order_id", fx.OrderID.String()),
		zap.String("product_id", fx.ProductID.String()))

	mode := raceMode(*runMode)
	var results []attemptResult
	if *runProcs > 0 {
		results, err = raceProcesses(ctx, log, mode, fx.OrderID, *runProcs, *runWorkers, *runLead)
		if err != nil {
			log.Error("Process race failed", zap.Error(err))
			return 2
		}
	} else {
		results = raceGoroutines(ctx, a.orders, a.inventory, mode, fx.OrderID, *runWorkers, "g")
	}

	r, err := verify(ctx, a.orderRepo, a.movementRepo, a.stockRepo, fx, results)
	if err != nil {
		log.Error("Verification failed", zap.Error(err))
		return 2
	}
	printReport(r, results)
	if !r.OK() {
		return 1
	}
	return 0
}

func runWorker(ctx context.Context, cfg *config.Config, log *zap.Logger) int {
	orderID, err := uuid.Parse(*workerOrder)
	if err != nil {
		log.Error("Invalid --order", zap.Error(err))
		return 2
	}
	at, err := time.Parse(time.RFC3339Nano, *workerAt)
	if err != nil {
		log.Error("Invalid --at", zap.Error(err))
		return 2
	}

	a, err := newStressApp(&cfg.Database, false, log)
	if err != nil {
		log.Error("Failed to open database", zap.Error(err))
		return 2
	}
	defer func() { _ = a.Close() }()

	if wait := time.Until(at); wait > 0 {
		time.Sleep(wait)
	} else {
		log.Warn("Worker started after the race instant", zap.Duration("late", -wait))
	}

	results := raceGoroutines(ctx, a.orders, a.inventory, raceMode(*workerMode), orderID, *workerWorkers, *workerName)
	enc := json.NewEncoder(os.Stdout)
	for _, r := range results {
		if err := enc.Encode(r); err != nil {
			log.Error("Failed to write result", zap.Error(err))
			return 2
		}
	}
	return 0
}

func printReport(r *report, results []attemptResult) {
	if *runJSON {
		out := struct {
			*report
			Results []attemptResult `json:"results"`
		}{r, results}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(out)
		return
	}

	fmt.Printf("attempts=%d applied=%d skipped=%d rejected=%d failed=%d\n",
		r.Attempts, r.Applied, r.Skipped, r.Rejected, r.Failed)
	fmt.Printf("inventory_deducted=%t sale_movements=%d stock=%s expected=%s\n",
		r.Deducted, r.SaleMovements, r.FinalStock, r.ExpectedStock)
	for _, res := range results {
		if res.Outcome == outcomeFailed {
			fmt.Printf("  %s: %s\n", res.Worker, res.Error)
		}
	}
	if r.OK() {
		fmt.Println("OK: stock deducted exactly once")
		return
	}
	for _, p := range r.Problems {
		fmt.Println("FAIL:", p)
	}
}
