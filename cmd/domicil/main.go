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
	"encoding/json"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"

	"github.com/poiesic/domicil"
	"github.com/poiesic/domicil/ai"
	"github.com/poiesic/domicil/core"
	"github.com/poiesic/domicil/indexer"
	"github.com/poiesic/domicil/retrieval"
)

func main() {
	app := &cli.App{
		Name:  "domicil",
		Usage: "Hybrid property listing search engine",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "data-dir",
				Aliases: []string{"d"},
				Usage:   "Directory holding the listing store and vector index",
				Value:   "./data",
				EnvVars: []string{"DOMICIL_DATA_DIR"},
			},
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
			&cli.StringFlag{
				Name:    "embedding-host",
				Usage:   "Embedding service host URL",
				Value:   "http://localhost:11434/v1",
				EnvVars: []string{"DOMICIL_EMBEDDING_HOST"},
			},
			&cli.StringFlag{
				Name:    "embedding-model",
				Usage:   "Embedding model name",
				Value:   "embeddinggemma",
				EnvVars: []string{"DOMICIL_EMBEDDING_MODEL"},
			},
			&cli.StringFlag{
				Name:    "parser-host",
				Usage:   "Constraint parser service host URL (defaults to embedding-host)",
				EnvVars: []string{"DOMICIL_PARSER_HOST"},
			},
			&cli.StringFlag{
				Name:    "parser-model",
				Usage:   "Constraint parser model name",
				Value:   "qwen2.5:3b",
				EnvVars: []string{"DOMICIL_PARSER_MODEL"},
			},
		},
		Before: setup,
		Commands: []*cli.Command{
			{
				Name:   "seed",
				Usage:  "Load listings from a JSON file into the store",
				Action: seedCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "file",
						Aliases:  []string{"f"},
						Usage:    "Path to a JSON array of listings",
						Required: true,
					},
					&cli.BoolFlag{
						Name:  "sync",
						Usage: "Run an index sync pass after loading",
					},
				},
			},
			{
				Name:   "sync",
				Usage:  "Synchronize the vector index with the listing store",
				Action: syncCommand,
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "watch",
						Usage: "Keep syncing on an interval until interrupted",
					},
					&cli.DurationFlag{
						Name:  "interval",
						Usage: "Pause between sync passes in watch mode",
						Value: indexer.DefaultInterval,
					},
					&cli.IntFlag{
						Name:  "workers",
						Usage: "Concurrent embedding batches",
						Value: indexer.DefaultWorkers,
					},
					&cli.IntFlag{
						Name:  "batch-size",
						Usage: "Listings per embedding call",
						Value: indexer.DefaultBatchSize,
					},
				},
			},
			{
				Name:      "search",
				Usage:     "Search listings with a natural-language query",
				ArgsUsage: "<query>",
				Action:    searchCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "strategy",
						Aliases: []string{"s"},
						Usage:   "Retrieval strategy (hybrid, structured, semantic)",
						Value:   "hybrid",
					},
					&cli.IntFlag{
						Name:    "max",
						Aliases: []string{"n"},
						Usage:   "Maximum number of results",
						Value:   retrieval.DefaultMaxResults,
					},
				},
			},
			{
				Name:   "stats",
				Usage:  "Show store and index statistics",
				Action: statsCommand,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func setup(c *cli.Context) error {
	// A missing .env is fine; flags and real env still apply.
	_ = godotenv.Load()

	levelStr := strings.ToLower(c.String("log-level"))

	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}

func openCatalog(c *cli.Context) (*domicil.Catalog, error) {
	parserHost := c.String("parser-host")
	if parserHost == "" {
		parserHost = c.String("embedding-host")
	}

	aiConfig := ai.NewConfig(
		ai.WithEmbeddingHost(c.String("embedding-host")),
		ai.WithEmbeddingModel(c.String("embedding-model")),
		ai.WithParserHost(parserHost),
		ai.WithParserModel(c.String("parser-model")),
	)

	catalog, err := domicil.OpenCatalog(c.String("data-dir"), domicil.WithAIConfig(aiConfig))
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog at %s: %w", c.String("data-dir"), err)
	}
	return catalog, nil
}

func seedCommand(c *cli.Context) error {
	ctx := context.Background()

	data, err := os.ReadFile(c.String("file"))
	if err != nil {
		return fmt.Errorf("failed to read seed file: %w", err)
	}

	var listings []core.Listing
	if err := json.Unmarshal(data, &listings); err != nil {
		return fmt.Errorf("failed to parse seed file: %w", err)
	}

	// Records without an ID get a stable one from their content.
	for i := range listings {
		if listings[i].ID == "" {
			listings[i].ID = core.IDFromContent(listings[i].Title + "|" + listings[i].Location.Address)
		}
	}

	catalog, err := openCatalog(c)
	if err != nil {
		return err
	}
	defer catalog.Close()

	if err := catalog.AddListings(ctx, listings...); err != nil {
		return fmt.Errorf("failed to store listings: %w", err)
	}
	fmt.Fprintf(os.Stderr, "Stored %d listings\n", len(listings))

	if c.Bool("sync") {
		ix, err := catalog.NewIndexer(indexer.DefaultWorkers)
		if err != nil {
			return fmt.Errorf("failed to create indexer: %w", err)
		}
		defer ix.Close()
		if err := ix.SyncNow(ctx); err != nil {
			return fmt.Errorf("index sync failed: %w", err)
		}
		fmt.Fprintln(os.Stderr, "Index synced")
	}
	return nil
}

func syncCommand(c *cli.Context) error {
	catalog, err := openCatalog(c)
	if err != nil {
		return err
	}
	defer catalog.Close()

	ix, err := catalog.NewIndexer(c.Int("workers"),
		indexer.WithInterval(c.Duration("interval")),
		indexer.WithBatchSize(c.Int("batch-size")),
	)
	if err != nil {
		return fmt.Errorf("failed to create indexer: %w", err)
	}
	defer ix.Close()

	if !c.Bool("watch") {
		if err := ix.SyncNow(context.Background()); err != nil {
			return fmt.Errorf("index sync failed: %w", err)
		}
		fmt.Fprintln(os.Stderr, "Index synced")
		return nil
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Fprintf(os.Stderr, "Syncing every %s, Ctrl-C to stop\n", c.Duration("interval"))
	ix.Run(ctx)
	return nil
}

func searchCommand(c *cli.Context) error {
	query := strings.TrimSpace(strings.Join(c.Args().Slice(), " "))
	if query == "" {
		return fmt.Errorf("query is required")
	}

	strategy, err := retrieval.ParseStrategy(c.String("strategy"))
	if err != nil {
		return err
	}

	catalog, err := openCatalog(c)
	if err != nil {
		return err
	}
	defer catalog.Close()

	res, err := catalog.Search(context.Background(), query, strategy, c.Int("max"))
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	printResult(res)
	return nil
}

func printResult(res *retrieval.Result) {
	if len(res.Candidates) == 0 {
		fmt.Println("No listings matched.")
	}
	for i, cand := range res.Candidates {
		l := cand.Listing
		fmt.Printf("%2d. %s (%s)\n", i+1, l.Title, l.ID)
		fmt.Printf("    %s, %s | %s for %s | Rp %d\n",
			l.Location.District, l.Location.City, l.PropertyType, l.ListingType, l.Price)
		fmt.Printf("    fused %.3f (semantic %.3f, position %.3f)",
			cand.FusedScore, cand.SemanticScore, cand.PositionScore)
		if score, ok := res.Evaluation.Scores[l.ID]; ok {
			fmt.Printf(" | constraints %d/%d", score.Satisfied, score.Applicable)
		}
		fmt.Println()
	}

	fmt.Printf("\npath=%s structured_total=%d semantic_hits=%d elapsed=%s\n",
		res.Diagnostics.Path, res.Diagnostics.StructuredTotal,
		res.Diagnostics.SemanticHits, res.Diagnostics.Elapsed.Round(time.Millisecond))
	if res.Diagnostics.IndexAge >= 0 {
		fmt.Printf("index_age=%s\n", res.Diagnostics.IndexAge.Round(time.Second))
	}
	fmt.Printf("pass_ratio=%.2f query_succeeded=%t\n",
		res.Evaluation.PassRatio, res.Evaluation.QuerySucceeded)
	if res.Evaluation.HasUnscorableConstraint {
		fmt.Println("note: free-text constraint could not be checked mechanically")
	}
	for _, srcErr := range res.Diagnostics.SourceErrors {
		fmt.Fprintf(os.Stderr, "degraded: %s\n", srcErr)
	}
}

func statsCommand(c *cli.Context) error {
	ctx := context.Background()

	catalog, err := openCatalog(c)
	if err != nil {
		return err
	}
	defer catalog.Close()

	listings, err := catalog.ListingRepository().CountListings(ctx)
	if err != nil {
		return fmt.Errorf("failed to count listings: %w", err)
	}
	indexed, err := catalog.VectorIndex().Count(ctx)
	if err != nil {
		return fmt.Errorf("failed to count index entries: %w", err)
	}
	syncedAt, err := catalog.VectorIndex().LastSyncedAt(ctx)
	if err != nil {
		return fmt.Errorf("failed to read sync watermark: %w", err)
	}

	fmt.Printf("listings: %d\n", listings)
	fmt.Printf("indexed:  %d\n", indexed)
	if syncedAt.IsZero() {
		fmt.Println("last sync: never")
	} else {
		fmt.Printf("last sync: %s (%s ago)\n",
			syncedAt.Format(time.RFC3339), time.Since(syncedAt).Round(time.Second))
	}
	return nil
}
