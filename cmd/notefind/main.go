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
	"log"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/poiesic/notefind"
	"github.com/poiesic/notefind/ai"
	"github.com/poiesic/notefind/core"
	"github.com/poiesic/notefind/reindex"
	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:  "notefind",
		Usage: "Hybrid retrieval over personal tasks and notes",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:      "add-task",
				Usage:     "Add or update a task",
				ArgsUsage: "TITLE",
				Action:    addTaskCommand,
				Flags: append(dbFlags(),
					&cli.StringFlag{
						Name:  "description",
						Usage: "Task description",
					},
					&cli.StringFlag{
						Name:  "status",
						Usage: "Task status (todo, in-progress, done)",
						Value: core.StatusTodo,
					},
					&cli.StringFlag{
						Name:  "priority",
						Usage: "Task priority (Low, Medium, High)",
						Value: core.PriorityMedium,
					},
					&cli.StringFlag{
						Name:  "due",
						Usage: "Due date (RFC3339 or YYYY-MM-DD)",
					},
					&cli.StringSliceFlag{
						Name:  "tag",
						Usage: "Tag to attach (repeatable)",
					},
					&cli.Uint64Flag{
						Name:  "id",
						Usage: "Update the existing task with this ID instead of creating one",
					},
				),
			},
			{
				Name:      "add-note",
				Usage:     "Add or update a note",
				ArgsUsage: "TITLE",
				Action:    addNoteCommand,
				Flags: append(dbFlags(),
					&cli.StringFlag{
						Name:  "content",
						Usage: "Note content",
					},
					&cli.StringSliceFlag{
						Name:  "tag",
						Usage: "Tag to attach (repeatable)",
					},
					&cli.Uint64Flag{
						Name:  "id",
						Usage: "Update the existing note with this ID instead of creating one",
					},
				),
			},
			{
				Name:      "search",
				Usage:     "Answer a free-form query against the store",
				ArgsUsage: "QUERY",
				Action:    searchCommand,
				Flags: append(dbFlags(),
					&cli.StringFlag{
						Name:  "classifier-host",
						Usage: "Classifier service host URL (defaults to embedding-host)",
					},
					&cli.StringFlag{
						Name:  "classifier-model",
						Usage: "Classifier model name",
						Value: "qwen2.5:3b",
					},
					&cli.DurationFlag{
						Name:  "classifier-timeout",
						Usage: "Per-query classification deadline",
						Value: 10 * time.Second,
					},
				),
			},
			{
				Name:   "reindex",
				Usage:  "Re-embed every stored task and note",
				Action: reindexCommand,
				Flags: append(dbFlags(),
					&cli.IntFlag{
						Name:  "batch-size",
						Usage: "Number of records to process in each batch",
						Value: 100,
					},
					&cli.IntFlag{
						Name:  "concurrency",
						Usage: "Number of batches embedded in parallel (0 = half the CPUs)",
					},
					&cli.IntFlag{
						Name:  "report-interval",
						Usage: "Report progress every N records",
						Value: 100,
					},
					&cli.IntFlag{
						Name:  "max-retries",
						Usage: "Maximum retry attempts for failed operations",
						Value: 3,
					},
					&cli.DurationFlag{
						Name:  "retry-delay",
						Usage: "Base delay for exponential backoff",
						Value: 1 * time.Second,
					},
				),
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

// dbFlags returns the flags shared by every command that touches the store.
func dbFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:     "db",
			Aliases:  []string{"d"},
			Usage:    "Path to BadgerDB database directory",
			Required: true,
		},
		&cli.StringFlag{
			Name:  "embedding-host",
			Usage: "Embedding service host URL",
			Value: "http://localhost:11434/v1",
		},
		&cli.StringFlag{
			Name:  "embedding-model",
			Usage: "Embedding model name",
			Value: "embeddinggemma",
		},
	}
}

// openDatabase builds the AI configuration from the shared flags and opens
// the database. The caller owns the returned handle.
func openDatabase(c *cli.Context) (*notefind.Database, error) {
	classifierHost := c.String("classifier-host")
	if classifierHost == "" {
		classifierHost = c.String("embedding-host")
	}
	classifierModel := c.String("classifier-model")
	if classifierModel == "" {
		// Commands that never classify still need a complete configuration.
		classifierModel = "unused"
	}

	opts := []ai.ConfigOption{
		ai.WithEmbeddingHost(c.String("embedding-host")),
		ai.WithEmbeddingModel(c.String("embedding-model")),
		ai.WithClassifierHost(classifierHost),
		ai.WithClassifierModel(classifierModel),
	}
	if timeout := c.Duration("classifier-timeout"); timeout > 0 {
		opts = append(opts, ai.WithClassifierTimeout(timeout))
	}

	aiConfig := ai.NewConfig(opts...)
	if err := aiConfig.Validate(); err != nil {
		return nil, fmt.Errorf("invalid AI configuration: %w", err)
	}

	db, err := notefind.NewDatabase(c.String("db"), notefind.WithAIConfig(aiConfig))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return db, nil
}

func addTaskCommand(c *cli.Context) error {
	title := strings.TrimSpace(c.Args().First())
	if title == "" {
		return fmt.Errorf("task title is required")
	}

	record := &core.Record{
		Id:       core.ID(c.Uint64("id")),
		Kind:     core.KindTask,
		Title:    title,
		Body:     c.String("description"),
		Status:   c.String("status"),
		Priority: c.String("priority"),
		Tags:     c.StringSlice("tag"),
	}

	if due := c.String("due"); due != "" {
		dueDate, err := parseDate(due)
		if err != nil {
			return fmt.Errorf("invalid due date: %w", err)
		}
		record.DueDate = dueDate
	}

	return saveRecord(c, record)
}

func addNoteCommand(c *cli.Context) error {
	title := strings.TrimSpace(c.Args().First())
	if title == "" {
		return fmt.Errorf("note title is required")
	}

	record := &core.Record{
		Id:    core.ID(c.Uint64("id")),
		Kind:  core.KindNote,
		Title: title,
		Body:  c.String("content"),
		Tags:  c.StringSlice("tag"),
	}

	return saveRecord(c, record)
}

func saveRecord(c *cli.Context, record *core.Record) error {
	ctx := context.Background()

	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	indexer, err := db.NewIndexer()
	if err != nil {
		return fmt.Errorf("failed to create indexer: %w", err)
	}

	if err := indexer.Save(ctx, record); err != nil {
		return fmt.Errorf("failed to save %s: %w", record.Kind, err)
	}

	fmt.Printf("Saved %s %d: %s\n", record.Kind, record.Id, record.Title)
	return nil
}

func searchCommand(c *cli.Context) error {
	ctx := context.Background()

	query := strings.TrimSpace(strings.Join(c.Args().Slice(), " "))
	if query == "" {
		return fmt.Errorf("query is required")
	}

	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	results, err := db.HybridSearch(ctx, query, time.Now())
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if len(results) == 0 {
		fmt.Println("No results.")
		return nil
	}

	for _, result := range results {
		printResult(result)
	}
	return nil
}

func printResult(result core.RankedResult) {
	record := result.Record

	var score string
	if result.Scored {
		score = fmt.Sprintf("%.4f", result.Score)
	} else {
		score = "-"
	}

	fmt.Printf("%-8s %-6s %-6d %s\n", score, record.Kind, record.Id, record.Title)
	if record.Kind == core.KindTask {
		due := "-"
		if !record.DueDate.IsZero() {
			due = record.DueDate.Format("2006-01-02")
		}
		fmt.Printf("         status=%s priority=%s due=%s\n", record.Status, record.Priority, due)
	}
	if len(record.Tags) > 0 {
		fmt.Printf("         tags=%s\n", strings.Join(record.Tags, ","))
	}
}

func reindexCommand(c *cli.Context) error {
	ctx := context.Background()

	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	config := reindex.DefaultConfig()
	config.BatchSize = c.Int("batch-size")
	config.ReportInterval = c.Int("report-interval")
	config.MaxRetries = c.Int("max-retries")
	config.RetryDelay = c.Duration("retry-delay")
	if concurrency := c.Int("concurrency"); concurrency > 0 {
		config.Concurrency = concurrency
	}

	// Validate config
	if config.BatchSize <= 0 {
		return fmt.Errorf("batch-size must be greater than 0")
	}
	if config.ReportInterval <= 0 {
		return fmt.Errorf("report-interval must be greater than 0")
	}
	if config.MaxRetries <= 0 {
		return fmt.Errorf("max-retries must be greater than 0")
	}

	reindexer, err := db.NewReindexer(config, os.Stderr)
	if err != nil {
		return fmt.Errorf("failed to create reindexer: %w", err)
	}

	fmt.Fprintf(os.Stderr, "Database: %s\n", c.String("db"))
	fmt.Fprintf(os.Stderr, "Embedding host: %s\n", c.String("embedding-host"))
	fmt.Fprintf(os.Stderr, "Embedding model: %s\n", c.String("embedding-model"))
	fmt.Fprintln(os.Stderr)

	if err := reindexer.Run(ctx); err != nil {
		return fmt.Errorf("reindexing failed: %w", err)
	}

	return nil
}

// parseDate accepts RFC3339 timestamps and bare dates.
func parseDate(value string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", value)
}

func setupLogger(c *cli.Context) error {
	// Get log level from flag and normalize to lowercase
	levelStr := strings.ToLower(c.String("log-level"))

	// Map string to slog.Level
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

	// Configure slog with the specified level
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
