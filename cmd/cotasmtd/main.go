// Command cotasmtd wires up the SMT core's process-wide collaborators:
// configuration, logging, and the KV store. It does not serve requests —
// the JSON-RPC transport is out of scope for this repository (spec.md
// §1); wiring a transport on top of entries.Builder is left to the
// caller.
package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/nervina-labs/cota-smt-aggregator/config"
	"github.com/nervina-labs/cota-smt-aggregator/entries"
	"github.com/nervina-labs/cota-smt-aggregator/kvstore"
	"github.com/nervina-labs/cota-smt-aggregator/obslog"
	"github.com/nervina-labs/cota-smt-aggregator/snapshot"
	"go.uber.org/zap"
)

func main() {
	if err := run(); err != nil {
		zap.L().Fatal("cotasmtd: fatal startup error", zap.Error(err))
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log, err := obslog.New(cfg.Debug)
	if err != nil {
		return err
	}
	defer log.Sync() //nolint:errcheck

	kv, err := kvstore.Open(cfg.StoreDir, log)
	if err != nil {
		return err
	}
	defer kv.Close()

	// snapshot.MemSource stands in for the relational store this core
	// reads through (out of scope here, per spec.md §1); whatever process
	// embeds this core wires a real snapshot.Source backed by its own
	// schema instead.
	src := snapshot.NewMemSource()
	builder := entries.NewBuilder(kv, src)
	_ = builder

	log.Info("cotasmtd: store opened", zap.String("dir", cfg.StoreDir))

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Info("cotasmtd: shutting down")
	return nil
}
