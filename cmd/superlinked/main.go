// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// The superlinked binary assembles the evaluation graph and the
// ingestion loader from a YAML config and serves the loader API.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"github.com/weaviate/weaviate-go-client/v5/weaviate"

	"github.com/Rich-Data-F/superlinked/cmd/superlinked/config"
	"github.com/Rich-Data-F/superlinked/pkg/logging"
	"github.com/Rich-Data-F/superlinked/pkg/validation"
	"github.com/Rich-Data-F/superlinked/services/evaluator/dag"
	"github.com/Rich-Data-F/superlinked/services/evaluator/index"
	"github.com/Rich-Data-F/superlinked/services/evaluator/online"
	"github.com/Rich-Data-F/superlinked/services/evaluator/storage"
	"github.com/Rich-Data-F/superlinked/services/loader"
)

var (
	configPath string

	rootCmd = &cobra.Command{
		Use:   "superlinked",
		Short: "Online vector evaluation over a schema DAG",
		Long: `superlinked turns ingested records into fixed-length embedding
vectors by evaluating a configured node graph, and serves an HTTP API
for triggering and monitoring ingestion.`,
	}

	serveCmd = &cobra.Command{
		Use:   "serve",
		Short: "Run the loader API server",
		RunE:  runServe,
	}

	checkCmd = &cobra.Command{
		Use:   "check",
		Short: "Validate the config and graph without serving",
		RunE:  runCheck,
	}
)

func main() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "",
		"config file (default ~/.superlinked/superlinked.yaml)")
	rootCmd.AddCommand(serveCmd, checkCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runCheck(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	graph, err := buildGraph(&cfg.Graph)
	if err != nil {
		return err
	}
	fmt.Printf("config ok: %d nodes, %d sources\n", graph.NodeCount(), len(cfg.Sources))
	return nil
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logger, closeLogs, err := logging.New(logging.Config{
		Level:   cfg.Logging.Level,
		Service: "superlinked",
		LogDir:  cfg.Logging.Dir,
		JSON:    cfg.Logging.JSON,
	})
	if err != nil {
		return err
	}
	defer closeLogs()

	store, err := storage.OpenBadger(storage.BadgerConfig{
		Path:     cfg.Storage.Path,
		InMemory: cfg.Storage.InMemory,
		Logger:   logger,
	})
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer store.Close()

	graph, err := buildGraph(&cfg.Graph)
	if err != nil {
		return err
	}
	runtime, err := online.BuildRuntime(graph, store, online.Options{Logger: logger})
	if err != nil {
		return fmt.Errorf("build runtime: %w", err)
	}
	logger.Info("graph ready", "nodes", runtime.NodeCount())

	var indexer index.Indexer
	if cfg.Index.Enabled {
		client, err := weaviate.NewClient(weaviate.Config{
			Host:   cfg.Index.Host,
			Scheme: cfg.Index.Scheme,
		})
		if err != nil {
			return fmt.Errorf("weaviate client: %w", err)
		}
		populator := index.NewPopulator(client, logger)
		ensureCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		err = populator.EnsureSchema(ensureCtx)
		cancel()
		if err != nil {
			return fmt.Errorf("ensure index schema: %w", err)
		}
		indexer = populator
		logger.Info("index population enabled", "host", cfg.Index.Host)
	}

	ld := loader.New(loader.Options{Logger: logger})
	if err := registerSources(cfg, runtime, store, ld, indexer, logger); err != nil {
		return err
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	loader.RegisterRoutes(router, ld)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("loader API listening", "addr", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	case sig := <-stop:
		logger.Info("shutting down", "signal", sig.String())
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
	}
	return nil
}

// buildGraph translates the node configs into a validated graph.
func buildGraph(gc *config.GraphConfig) (*dag.Graph, error) {
	b := dag.NewBuilder()
	for _, nc := range gc.Nodes {
		if err := validation.ValidateName(nc.ID); err != nil {
			return nil, fmt.Errorf("node %q: %w", nc.ID, err)
		}
		periods := make([]time.Duration, len(nc.Periods))
		for i, p := range nc.Periods {
			periods[i] = time.Duration(p)
		}
		node := dag.NewNode(nc.ID, dag.NodeKind(nc.Kind), nc.Length, dag.EmbeddingConfig{
			Field:          nc.Field,
			Categories:     nc.Categories,
			NegativeFilter: nc.NegativeFilter,
			Min:            nc.Min,
			Max:            nc.Max,
			Periods:        periods,
			DefaultVector:  nc.DefaultVector,
		}, nc.Parents...)
		b.AddNode(node)
	}
	return b.Build()
}

// registerSources wires each configured source file to an ingestion
// sink on its target node. Source paths must resolve under the
// configured data directory; when an indexer is supplied, each sink is
// wrapped so ingested batches are also evaluated and indexed.
func registerSources(cfg *config.Config, runtime *online.Runtime, store storage.Writer, ld *loader.Loader, indexer index.Indexer, logger *slog.Logger) error {
	for _, entry := range cfg.Sources {
		if err := validation.ValidateName(entry.Name); err != nil {
			return fmt.Errorf("source %q: %w", entry.Name, err)
		}
		path, err := validation.ValidateDataPath(cfg.DataDir, entry.Path)
		if err != nil {
			return fmt.Errorf("source %q: %w", entry.Name, err)
		}
		node, ok := runtime.Node(entry.Node)
		if !ok {
			return fmt.Errorf("source %q targets unknown node %q", entry.Name, entry.Node)
		}
		var sink loader.Sink
		sink, err = online.NewIngestSink(node.Node(), store, online.SinkConfig{
			Schema:  entry.Schema,
			Field:   entry.Field,
			IDField: entry.IDField,
			Origin:  cfg.Graph.Origin,
			Version: cfg.Graph.Version,
		}, logger)
		if err != nil {
			return fmt.Errorf("source %q: %w", entry.Name, err)
		}
		if indexer != nil {
			sink, err = index.NewSink(sink, node, indexer, index.SinkConfig{
				Schema:  entry.Schema,
				IDField: entry.IDField,
				Origin:  cfg.Graph.Origin,
				Version: cfg.Graph.Version,
			}, logger)
			if err != nil {
				return fmt.Errorf("source %q: %w", entry.Name, err)
			}
		}

		var delim rune
		if entry.Options.Delimiter != "" {
			delim = []rune(entry.Options.Delimiter)[0]
		}
		src := &loader.Source{
			Config: loader.SourceConfig{
				Name:   entry.Name,
				Path:   path,
				Format: loader.DataFormat(entry.Format),
				Options: loader.ReadOptions{
					Delimiter:  delim,
					NoHeader:   entry.Options.NoHeader,
					FieldNames: entry.Options.FieldNames,
					Widths:     entry.Options.Widths,
					RecordTag:  entry.Options.RecordTag,
					ChunkSize:  entry.Options.ChunkSize,
				},
			},
			Sink: sink,
		}
		if err := ld.RegisterSources(src); err != nil {
			return err
		}
	}
	return nil
}
