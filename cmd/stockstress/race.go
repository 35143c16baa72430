package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"time"

	inventoryapp "github.com/VMKayser/Panificadora-Nancy-sub002/internal/application/inventory"
	orderapp "github.com/VMKayser/Panificadora-Nancy-sub002/internal/application/order"
	"github.com/VMKayser/Panificadora-Nancy-sub002/internal/domain/order"
	"github.com/VMKayser/Panificadora-Nancy-sub002/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// raceMode selects the call every worker makes
type raceMode string

const (
	// modeStatus confirms the order through the order service
	modeStatus raceMode = "status"
	// modeDeduct calls the inventory deduction directly
	modeDeduct raceMode = "deduct"
)

type outcome string

const (
	outcomeApplied  outcome = "applied"
	outcomeSkipped  outcome = "skipped"
	outcomeRejected outcome = "rejected"
	outcomeFailed   outcome = "failed"
)

// attemptResult is one worker's call. Child processes print these as JSON lines.
type attemptResult struct {
	Worker  string        `json:"worker"`
	Outcome outcome       `json:"outcome"`
	Code    string        `json:"code,omitempty"`
	Error   string        `json:"error,omitempty"`
	Elapsed time.Duration `json:"elapsed"`
}

// orderActions is the slice of the services a worker calls
type orderActions interface {
	ChangeStatus(ctx context.Context, id uuid.UUID, req orderapp.ChangeStatusRequest, actorID *uuid.UUID) (*orderapp.OrderResponse, error)
}

type deductor interface {
	DeductForOrder(ctx context.Context, orderID uuid.UUID, actorID *uuid.UUID) (*inventoryapp.DeductionResult, error)
}

func attempt(ctx context.Context, orders orderActions, stock deductor, mode raceMode, orderID uuid.UUID, worker string) (res attemptResult) {
	res.Worker = worker
	start := time.Now()
	defer func() { res.Elapsed = time.Since(start) }()

	switch mode {
	case modeDeduct:
		r, err := stock.DeductForOrder(ctx, orderID, nil)
		if err != nil {
			classify(&res, err)
			return res
		}
		if r.Applied() {
			res.Outcome = outcomeApplied
		} else {
			res.Outcome, res.Code = outcomeSkipped, r.SkipReason
		}
	default:
		_, err := orders.ChangeStatus(ctx, orderID, orderapp.ChangeStatusRequest{
			Status: order.StatusConfirmed,
			Reason: "stockstress " + worker,
		}, nil)
		if err != nil {
			classify(&res, err)
			return res
		}
		res.Outcome = outcomeApplied
	}
	return res
}

// classify sorts expected losers from real failures. Losing the race shows up
// as an invalid transition or a version conflict.
func classify(res *attemptResult, err error) {
	res.Error = err.Error()
	res.Code = shared.CodeOf(err)
	switch {
	case errors.Is(err, shared.ErrInvalidState), errors.Is(err, shared.ErrConcurrencyConflict):
		res.Outcome = outcomeRejected
	default:
		res.Outcome = outcomeFailed
	}
}

// raceGoroutines releases workers calls at the same instant and waits for all
func raceGoroutines(ctx context.Context, orders orderActions, stock deductor, mode raceMode, orderID uuid.UUID, workers int, prefix string) []attemptResult {
	results := make([]attemptResult, workers)
	gate := make(chan struct{})

	var g errgroup.Group
	for i := range workers {
		g.Go(func() error {
			<-gate
			results[i] = attempt(ctx, orders, stock, mode, orderID, fmt.Sprintf("%s%d", prefix, i))
			return nil
		})
	}
	close(gate)
	_ = g.Wait()
	return results
}

// raceProcesses starts procs copies of this binary, each running workers
// goroutines, all released at the same wall clock instant
func raceProcesses(ctx context.Context, log *zap.Logger, mode raceMode, orderID uuid.UUID, procs, workers int, lead time.Duration) ([]attemptResult, error) {
	self, err := os.Executable()
	if err != nil {
		return nil, fmt.Errorf("locate executable: %w", err)
	}
	at := time.Now().Add(lead)

	outputs := make([][]byte, procs)
	g, gctx := errgroup.WithContext(ctx)
	for p := range procs {
		g.Go(func() error {
			cmd := exec.CommandContext(gctx, self, "worker",
				"--order", orderID.String(),
				"--mode", string(mode),
				"--workers", strconv.Itoa(workers),
				"--at", at.Format(time.RFC3339Nano),
				"--name", fmt.Sprintf("p%d-", p),
			)
			cmd.Env = os.Environ()
			var stderr bytes.Buffer
			cmd.Stderr = &stderr
			out, err := cmd.Output()
			if err != nil {
				log.Error("Worker process failed",
					zap.Int("proc", p),
					zap.String("stderr", stderr.String()),
					zap.Error(err))
				return fmt.Errorf("worker process %d: %w", p, err)
			}
			outputs[p] = out
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var results []attemptResult
	for p, out := range outputs {
		dec := json.NewDecoder(bytes.NewReader(out))
		for dec.More() {
			var r attemptResult
			if err := dec.Decode(&r); err != nil {
				return nil, fmt.Errorf("read results of process %d: %w", p, err)
			}
			results = append(results, r)
		}
	}
	return results, nil
}
