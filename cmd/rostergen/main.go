package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sbanks1000/rota-scheduler/internal/roster"
	"github.com/sbanks1000/rota-scheduler/internal/solver"
	"github.com/sbanks1000/rota-scheduler/pkg/config"
	"github.com/sbanks1000/rota-scheduler/pkg/logger"
	"github.com/sbanks1000/rota-scheduler/pkg/types"
)

func main() {
	requestPath := flag.String("request", "", "path to the scheduling input JSON file")
	outPath := flag.String("out", "", "path to write the result JSON to (default: stdout)")
	timeout := flag.Duration("timeout", 0, "override the configured solver time limit")
	flag.Parse()

	if *requestPath == "" {
		log.Fatal("missing required -request flag")
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	appLog := logger.New(cfg.LogLevel)

	input, err := readInput(*requestPath)
	if err != nil {
		appLog.WithError(err).Fatal("Failed to read scheduling input")
	}

	req, err := roster.BuildRequest(input, cfg.Rules)
	if err != nil {
		appLog.WithError(err).Fatal("Failed to assemble scheduling request")
	}
	if *timeout > 0 {
		req.Budget.TimeLimit = *timeout
		if req.Budget.MaxNodes == 0 {
			req.Budget.MaxNodes = cfg.Search.MaxNodes
		}
	}

	appLog.WithFields(map[string]interface{}{
		"horizon_start": req.HorizonStart.Format("2006-01-02"),
		"horizon_end":   req.HorizonEnd.Format("2006-01-02"),
		"slots":         len(req.Slots),
		"doctors":       len(req.Doctors),
	}).Info("Starting schedule generation")

	// Cancel the run cooperatively on interrupt; the engine returns the best
	// schedule found so far.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	engine := solver.New(cfg, appLog)
	started := time.Now()
	result, err := engine.Solve(ctx, req)
	if err != nil {
		appLog.WithError(err).Fatal("Schedule generation failed")
	}

	appLog.WithRunID(result.ID).WithFields(map[string]interface{}{
		"status":  result.Status,
		"elapsed": time.Since(started).String(),
	}).Info("Schedule generation finished")

	if err := writeResult(*outPath, result); err != nil {
		appLog.WithError(err).Fatal("Failed to write result")
	}

	if !result.IsFeasible() {
		os.Exit(2)
	}
}

func readInput(path string) (*roster.ScheduleInput, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var input roster.ScheduleInput
	if err := json.Unmarshal(data, &input); err != nil {
		return nil, fmt.Errorf("invalid scheduling input: %w", err)
	}
	return &input, nil
}

func writeResult(path string, result *types.ScheduleResult) error {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return err
	}
	if path == "" {
		_, err = os.Stdout.Write(append(data, '\n'))
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
