package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"curveScope/internal/chain"
	"curveScope/internal/indexer"
	"curveScope/internal/launchpad"
	"curveScope/internal/model"
)

type inspectedEvent struct {
	Kind  launchpad.Kind        `json:"kind"`
	Event launchpad.DomainEvent `json:"event"`
}

type inspectReport struct {
	Version  uint64              `json:"version"`
	Hash     string              `json:"hash"`
	Success  bool                `json:"success"`
	Function string              `json:"function,omitempty"`
	Relevant bool                `json:"relevant"`
	Events   []inspectedEvent    `json:"events"`
	Failures []model.DecodeError `json:"failures"`
}

func runInspect(cmd *cobra.Command, _ []string) error {
	cfg, logger, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	defer logger.Sync()

	raw, _ := cmd.Flags().GetString("hash")
	hash, err := indexer.ParseHash(raw)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client, err := chain.NewClient(cfg.NodeURL, chain.Options{})
	if err != nil {
		return err
	}
	pipeline, err := indexer.NewPipeline(cfg.Contract)
	if err != nil {
		return err
	}

	tx, err := client.TransactionByHash(ctx, hash)
	if err != nil {
		return fmt.Errorf("fetch %s: %w", hash, err)
	}

	decoded := pipeline.Decode(tx)
	report := inspectReport{
		Version:  tx.Version,
		Hash:     tx.Hash,
		Success:  tx.Success,
		Function: tx.FunctionName(),
		Relevant: decoded.Relevant,
		Events:   make([]inspectedEvent, 0, len(decoded.Events)),
		Failures: decoded.Failures,
	}
	for _, event := range decoded.Events {
		report.Events = append(report.Events, inspectedEvent{Kind: event.Kind(), Event: event})
	}
	if report.Failures == nil {
		report.Failures = []model.DecodeError{}
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}
