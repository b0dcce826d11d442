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
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/poiesic/recall"
	"github.com/poiesic/recall/core"
	"github.com/poiesic/recall/corpus"
	"github.com/poiesic/recall/search"
	"github.com/urfave/cli/v2"
)

func init() {
	godotenv.Load()
}

func main() {
	if err := newApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "recall",
		Usage: "Keyword search over a markdown memory workspace",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "workspace",
				Aliases: []string{"w"},
				Usage:   "Path to the memory workspace directory",
				Value:   ".",
				EnvVars: []string{"RECALL_WORKSPACE"},
			},
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "warn",
			},
		},
		Before: setupLogger,
		Action: func(c *cli.Context) error {
			// Bare arguments read as a query, so "recall standup notes"
			// works without the search subcommand.
			if c.NArg() == 0 {
				return cli.ShowAppHelp(c)
			}
			return searchCommand(c)
		},
		Commands: []*cli.Command{
			{
				Name:      "search",
				Usage:     "Search memory documents and extracted facts",
				ArgsUsage: "<query>",
				Action:    searchCommand,
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:    "limit",
						Aliases: []string{"n"},
						Usage:   "Maximum number of results to return",
						Value:   search.DefaultLimit,
					},
					&cli.BoolFlag{
						Name:  "docs-only",
						Usage: "Search memory documents only, skipping facts",
					},
				},
			},
			{
				Name:   "recent",
				Usage:  "List dated memories from the trailing window of days",
				Action: recentCommand,
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "days",
						Usage: "Number of days to look back",
						Value: search.DefaultRecentDays,
					},
					&cli.IntFlag{
						Name:    "limit",
						Aliases: []string{"n"},
						Usage:   "Maximum number of memories to list",
						Value:   search.DefaultLimit,
					},
				},
			},
			{
				Name:      "range",
				Usage:     "List dated memories between two dates, oldest first",
				ArgsUsage: "<start> <end>",
				Action:    rangeCommand,
			},
			{
				Name:   "stats",
				Usage:  "Show index statistics for the workspace",
				Action: statsCommand,
			},
			{
				Name:   "watch",
				Usage:  "Watch the workspace and rebuild the index on changes",
				Action: watchCommand,
				Flags: []cli.Flag{
					&cli.DurationFlag{
						Name:  "debounce",
						Usage: "Quiet period before a change triggers a rebuild",
						Value: corpus.DefaultDebounce,
					},
				},
			},
		},
	}
}

// openWorkspace loads the workspace configuration, opens the workspace, and
// builds a fresh index so every command queries current data.
func openWorkspace(ctx context.Context, c *cli.Context) (*recall.Workspace, error) {
	cfg, err := recall.LoadConfig(c.String("workspace"))
	if err != nil {
		return nil, fmt.Errorf("failed to load workspace config: %w", err)
	}

	ws, err := recall.Open(cfg, recall.WithLogger(slog.Default()))
	if err != nil {
		return nil, fmt.Errorf("failed to open workspace: %w", err)
	}

	if err := ws.Refresh(ctx); err != nil {
		ws.Close()
		return nil, fmt.Errorf("failed to build index: %w", err)
	}

	return ws, nil
}

func searchCommand(c *cli.Context) error {
	query := strings.TrimSpace(strings.Join(c.Args().Slice(), " "))
	if query == "" {
		return fmt.Errorf("search query is required")
	}

	ctx := context.Background()
	ws, err := openWorkspace(ctx, c)
	if err != nil {
		return err
	}
	defer ws.Close()

	opts := &search.SearchOptions{
		Limit:         c.Int("limit"),
		DocumentsOnly: c.Bool("docs-only"),
	}
	results, err := ws.Engine().Search(ctx, query, opts)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	out := c.App.Writer
	fmt.Fprintf(out, "Found %d results\n", len(results))
	for i, hit := range results {
		switch {
		case hit.Kind == core.SourceDocument && hit.WordCount > 0:
			fmt.Fprintf(out, "%d. [%s] %s (score %.1f, %d words)\n", i+1, hit.Kind, hit.Key, hit.Score, hit.WordCount)
		case hit.Kind == core.SourceFact && hit.DateExtracted != "":
			fmt.Fprintf(out, "%d. [%s] %s (score %.1f, extracted %s)\n", i+1, hit.Kind, hit.Key, hit.Score, hit.DateExtracted)
		default:
			fmt.Fprintf(out, "%d. [%s] %s (score %.1f)\n", i+1, hit.Kind, hit.Key, hit.Score)
		}
		for _, snippet := range hit.Snippets {
			fmt.Fprintf(out, "     %s\n", snippet)
		}
	}

	return nil
}

func recentCommand(c *cli.Context) error {
	ctx := context.Background()
	ws, err := openWorkspace(ctx, c)
	if err != nil {
		return err
	}
	defer ws.Close()

	days := c.Int("days")
	results, err := ws.Engine().Recent(ctx, days, c.Int("limit"))
	if err != nil {
		return fmt.Errorf("failed to list recent memories: %w", err)
	}

	out := c.App.Writer
	fmt.Fprintf(out, "Found %d memories from the last %d days\n", len(results), days)
	for _, hit := range results {
		fmt.Fprintf(out, "[%s] %d words\n", hit.Key, hit.WordCount)
		for _, snippet := range hit.Snippets {
			fmt.Fprintf(out, "  %s\n", snippet)
		}
	}

	return nil
}

func rangeCommand(c *cli.Context) error {
	if c.NArg() != 2 {
		return fmt.Errorf("range requires <start> and <end> dates in YYYY-MM-DD form")
	}
	start, end := c.Args().Get(0), c.Args().Get(1)

	ctx := context.Background()
	ws, err := openWorkspace(ctx, c)
	if err != nil {
		return err
	}
	defer ws.Close()

	results, err := ws.Engine().SearchByDateRange(ctx, start, end)
	if err != nil {
		return fmt.Errorf("failed to list memories: %w", err)
	}

	out := c.App.Writer
	fmt.Fprintf(out, "Found %d memories between %s and %s\n", len(results), start, end)
	for _, hit := range results {
		fmt.Fprintf(out, "[%s] %d words\n", hit.Key, hit.WordCount)
		for _, snippet := range hit.Snippets {
			fmt.Fprintf(out, "  %s\n", snippet)
		}
	}

	return nil
}

func statsCommand(c *cli.Context) error {
	ctx := context.Background()
	ws, err := openWorkspace(ctx, c)
	if err != nil {
		return err
	}
	defer ws.Close()

	stats, err := ws.Engine().Stats(ctx)
	if err != nil {
		return fmt.Errorf("failed to read stats: %w", err)
	}

	out := c.App.Writer
	fmt.Fprintf(out, "Documents: %d\n", stats.Documents)
	fmt.Fprintf(out, "Indexed terms: %d\n", stats.Terms)
	fmt.Fprintf(out, "Facts: %d\n", stats.Facts)
	for _, category := range core.Categories() {
		if n := stats.FactCounts[category]; n > 0 {
			fmt.Fprintf(out, "  %s: %d\n", category, n)
		}
	}
	if !stats.LastBuild.IsZero() {
		fmt.Fprintf(out, "Last build: %s\n", stats.LastBuild.Format(time.RFC3339))
	}
	if !stats.LastUpdated.IsZero() {
		fmt.Fprintf(out, "Fact store updated: %s\n", stats.LastUpdated.Format(time.RFC3339))
	}

	return nil
}

func watchCommand(c *cli.Context) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ws, err := openWorkspace(ctx, c)
	if err != nil {
		return err
	}
	defer ws.Close()

	watcher, err := ws.Watch(ctx, corpus.WithDebounce(c.Duration("debounce")))
	if err != nil {
		return fmt.Errorf("failed to start watcher: %w", err)
	}
	defer watcher.Stop()

	stats, err := ws.Engine().Stats(ctx)
	if err != nil {
		return fmt.Errorf("failed to read stats: %w", err)
	}
	fmt.Fprintf(c.App.Writer, "Watching %s (%d documents, %d facts), press Ctrl-C to stop\n",
		c.String("workspace"), stats.Documents, stats.Facts)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	slog.Info("shutting down")
	return nil
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
