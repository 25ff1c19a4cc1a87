// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"

	"github.com/poiesic/docindex"
	"github.com/poiesic/docindex/config"
	"github.com/poiesic/docindex/core"
	"github.com/poiesic/docindex/ingest"
	"github.com/poiesic/docindex/storage"
)

func main() {
	app := &cli.App{
		Name:  "docindex",
		Usage: "Queue-driven document ingestion and vector indexing",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
			&cli.StringFlag{
				Name:  "env-file",
				Usage: "Path to an env file loaded before configuration",
				Value: ".env",
			},
		},
		Before: setup,
		Commands: []*cli.Command{
			{
				Name:   "run",
				Usage:  "Run the ingestion worker against the configured queue",
				Action: runCommand,
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "concurrency",
						Usage: "Number of batch records processed in parallel",
						Value: 1,
					},
				},
			},
			{
				Name:      "ingest",
				Usage:     "Ingest a local file directly, bypassing the queue",
				Action:    ingestCommand,
				ArgsUsage: "FILE",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "session",
						Aliases:  []string{"s"},
						Usage:    "Session UUID the document belongs to",
						Required: true,
					},
				},
			},
			{
				Name:      "status",
				Usage:     "Show the processing status of a document",
				Action:    statusCommand,
				ArgsUsage: "DOCUMENT_ID",
			},
			{
				Name:   "query",
				Usage:  "Search indexed chunks by semantic similarity",
				Action: queryCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "text",
						Aliases:  []string{"t"},
						Usage:    "Query text",
						Required: true,
					},
					&cli.StringFlag{
						Name:    "session",
						Aliases: []string{"s"},
						Usage:   "Restrict results to a session UUID",
					},
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum number of results",
						Value: 5,
					},
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func runCommand(c *cli.Context) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.FromEnv()
	if err != nil {
		return err
	}

	svc, err := docindex.NewService(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to build service: %w", err)
	}
	defer svc.Close()

	var coordOpts []ingest.CoordinatorOption
	if n := c.Int("concurrency"); n > 1 {
		coordOpts = append(coordOpts, ingest.WithConcurrency(n))
	}
	coordinator, err := svc.NewCoordinator(coordOpts...)
	if err != nil {
		return fmt.Errorf("failed to create coordinator: %w", err)
	}
	defer coordinator.Close()

	consumer, err := svc.NewConsumer(coordinator)
	if err != nil {
		return fmt.Errorf("failed to create consumer: %w", err)
	}
	defer consumer.Close()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return consumer.Run(gctx)
	})

	slog.Info("worker running",
		"topic", cfg.KafkaTopic,
		"group", cfg.KafkaGroupID,
		"batch_size", cfg.BatchSize)
	return g.Wait()
}

func ingestCommand(c *cli.Context) error {
	if c.NArg() != 1 {
		return fmt.Errorf("expected exactly one FILE argument")
	}
	filePath := c.Args().First()

	sessionID, err := uuid.Parse(c.String("session"))
	if err != nil {
		return fmt.Errorf("invalid session UUID: %w", err)
	}

	ctx := context.Background()
	cfg, err := config.FromEnv()
	if err != nil {
		return err
	}
	if cfg.ObjectBackend != config.ObjectBackendFS {
		return fmt.Errorf("direct ingest requires the fs object backend")
	}

	svc, err := docindex.NewService(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to build service: %w", err)
	}
	defer svc.Close()

	filename := filepath.Base(filePath)
	key := fmt.Sprintf("documents/%s/%s", sessionID, filename)
	size, err := stageLocalFile(filePath, filepath.Join(cfg.DataDir, cfg.DocumentsBucket), key)
	if err != nil {
		return err
	}

	doc := &core.Document{
		ID:        uuid.New(),
		SessionID: sessionID,
		Name:      filename,
		Status:    core.StatusPending,
		UploadURL: key,
	}
	if err := svc.DocumentRepository().CreateDocument(ctx, doc); err != nil {
		return fmt.Errorf("failed to create document row: %w", err)
	}

	job := &core.IngestJob{
		DocumentID: doc.ID,
		SessionID:  sessionID,
		StorageKey: key,
		Filename:   filename,
		FileSize:   size,
		Source:     core.JobSourceDirect,
	}

	if err := svc.Tracker().MarkProcessing(ctx, doc.ID); err != nil {
		return err
	}
	count, err := svc.Pipeline().Process(ctx, job)
	if err != nil {
		if markErr := svc.Tracker().MarkFailed(ctx, doc.ID, err.Error()); markErr != nil {
			slog.Error("failed to record failure", "document_id", doc.ID, "error", markErr)
		}
		return fmt.Errorf("ingestion failed: %w", err)
	}
	if err := svc.Tracker().MarkCompleted(ctx, doc.ID); err != nil {
		return err
	}

	fmt.Printf("Indexed %s: document %s, %d chunks\n", filename, doc.ID, count)
	return nil
}

func statusCommand(c *cli.Context) error {
	if c.NArg() != 1 {
		return fmt.Errorf("expected exactly one DOCUMENT_ID argument")
	}
	docID, err := uuid.Parse(c.Args().First())
	if err != nil {
		return fmt.Errorf("invalid document UUID: %w", err)
	}

	ctx := context.Background()
	cfg, err := config.FromEnv()
	if err != nil {
		return err
	}
	svc, err := docindex.NewService(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to build service: %w", err)
	}
	defer svc.Close()

	doc, err := svc.DocumentRepository().GetDocument(ctx, docID)
	if err != nil {
		return err
	}

	fmt.Printf("Document:  %s\n", doc.ID)
	fmt.Printf("Session:   %s\n", doc.SessionID)
	fmt.Printf("Name:      %s\n", doc.Name)
	fmt.Printf("Status:    %s\n", doc.Status)
	if doc.ErrorMessage != "" {
		fmt.Printf("Error:     %s\n", doc.ErrorMessage)
	}
	fmt.Printf("Updated:   %s\n", doc.UpdatedAt)
	return nil
}

func queryCommand(c *cli.Context) error {
	ctx := context.Background()
	cfg, err := config.FromEnv()
	if err != nil {
		return err
	}
	svc, err := docindex.NewService(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to build service: %w", err)
	}
	defer svc.Close()

	vector, err := svc.Embedder().EmbedText(ctx, c.String("text"))
	if err != nil {
		return fmt.Errorf("failed to embed query: %w", err)
	}

	filter := storage.VectorFilter{SessionID: c.String("session")}
	matches, err := svc.VectorIndex().FindSimilar(ctx, vector, filter, c.Int("limit"))
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if len(matches) == 0 {
		fmt.Println("No matches.")
		return nil
	}
	for i, m := range matches {
		fmt.Printf("%2d. score=%.4f chunk=%s doc=%s page=%s\n",
			i+1,
			m.Score,
			m.Record.ID,
			m.Record.Metadata[core.MetaDocID],
			m.Record.Metadata[core.MetaPage])
	}
	return nil
}

// stageLocalFile copies a local file into the fs object store so the
// pipeline can fetch it by key. Returns the file size.
func stageLocalFile(srcPath, storeRoot, key string) (int64, error) {
	src, err := os.Open(srcPath)
	if err != nil {
		return 0, fmt.Errorf("failed to open %s: %w", srcPath, err)
	}
	defer src.Close()

	destPath := filepath.Join(storeRoot, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(destPath), 0755); err != nil {
		return 0, fmt.Errorf("failed to create store directory: %w", err)
	}
	dest, err := os.Create(destPath)
	if err != nil {
		return 0, fmt.Errorf("failed to create %s: %w", destPath, err)
	}
	defer dest.Close()

	size, err := io.Copy(dest, src)
	if err != nil {
		return 0, fmt.Errorf("failed to stage %s: %w", srcPath, err)
	}
	return size, nil
}

func setup(c *cli.Context) error {
	// Missing env file is fine; the environment may be set directly.
	if err := godotenv.Load(c.String("env-file")); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to load env file: %w", err)
	}

	level, err := config.ParseLevel(c.String("log-level"))
	if err != nil {
		return err
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)
	return nil
}
