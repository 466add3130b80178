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
	"bufio"
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"sort"
	"strings"

	"github.com/joho/godotenv"
	"github.com/poiesic/ragdex"
	"github.com/poiesic/ragdex/config"
	"github.com/poiesic/ragdex/retrieval"
	"github.com/poiesic/ragdex/server"
	"github.com/urfave/cli/v2"
)

func main() {
	// A .env file is optional; environment variables win either way.
	_ = godotenv.Load()

	app := &cli.App{
		Name:  "ragdex",
		Usage: "Index documents into a vector store and chat with them",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to YAML configuration file",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:      "index",
				Usage:     "Index a file, directory, or URL into the vector store",
				ArgsUsage: "<source>",
				Action:    indexCommand,
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:    "force",
						Aliases: []string{"f"},
						Usage:   "Recreate the collection before indexing",
					},
				},
			},
			{
				Name:   "chat",
				Usage:  "Chat with an indexed source",
				Action: chatCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "source",
						Aliases: []string{"s"},
						Usage:   "Source to query; indexed first if needed",
					},
					&cli.StringFlag{
						Name:    "query",
						Aliases: []string{"q"},
						Usage:   "Ask a single question instead of starting an interactive session",
					},
				},
			},
			{
				Name:   "list",
				Usage:  "List indexed sources and their collections",
				Action: listCommand,
			},
			{
				Name:      "delete",
				Usage:     "Delete a source mapping and its vector collection",
				ArgsUsage: "<source>",
				Action:    deleteCommand,
			},
			{
				Name:   "serve",
				Usage:  "Run the HTTP API server",
				Action: serveCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "addr",
						Usage: "Listen address (overrides config)",
					},
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func loadPipeline(c *cli.Context, opts ...ragdex.PipelineOption) (*ragdex.Pipeline, error) {
	var cfg *config.Config
	var err error
	if path := c.String("config"); path != "" {
		cfg, err = config.Load(path)
	} else {
		cfg, err = config.LoadDefault()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	pipeline, err := ragdex.NewPipeline(cfg, opts...)
	if err != nil {
		return nil, err
	}
	return pipeline, nil
}

func indexCommand(c *cli.Context) error {
	source := c.Args().First()
	if source == "" {
		return fmt.Errorf("source argument is required")
	}

	pipeline, err := loadPipeline(c, ragdex.WithProgress(os.Stderr), ragdex.WithMemoryHistory())
	if err != nil {
		return err
	}
	defer pipeline.Close()

	ids, err := pipeline.IndexSource(context.Background(), source, c.Bool("force"))
	if err != nil {
		return fmt.Errorf("indexing failed: %w", err)
	}

	fmt.Fprintf(os.Stderr, "Indexed %d chunks from %s\n", len(ids), source)
	return nil
}

func chatCommand(c *cli.Context) error {
	ctx := context.Background()

	pipeline, err := loadPipeline(c, ragdex.WithProgress(os.Stderr))
	if err != nil {
		return err
	}
	defer pipeline.Close()

	session := pipeline.NewSession()
	if source := c.String("source"); source != "" {
		collection, err := pipeline.EnsureSource(ctx, source)
		if err != nil {
			return fmt.Errorf("failed to prepare source: %w", err)
		}
		session.SetActive(collection)
		fmt.Fprintf(os.Stderr, "Using collection %s for %s\n", collection, source)
	}

	stream := func(ctx context.Context, chunk []byte) error {
		_, err := os.Stdout.Write(chunk)
		return err
	}

	if query := c.String("query"); query != "" {
		// Streaming prints the answer; just terminate the line.
		if _, err := pipeline.Ask(ctx, session, query, stream); err != nil {
			return err
		}
		fmt.Println()
		return nil
	}

	return chatLoop(ctx, pipeline, session, stream)
}

func chatLoop(ctx context.Context, pipeline *ragdex.Pipeline, session *retrieval.Session, stream func(context.Context, []byte) error) error {
	fmt.Fprintln(os.Stderr, "Type a question, or 'exit' to quit.")

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		query := strings.TrimSpace(scanner.Text())
		if query == "" {
			continue
		}
		if query == "exit" || query == "quit" {
			break
		}

		if _, err := pipeline.Ask(ctx, session, query, stream); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			continue
		}
		fmt.Println()
	}
	return scanner.Err()
}

func listCommand(c *cli.Context) error {
	pipeline, err := loadPipeline(c, ragdex.WithMemoryHistory())
	if err != nil {
		return err
	}
	defer pipeline.Close()

	mappings := pipeline.ListSources()
	if len(mappings) == 0 {
		fmt.Println("No sources indexed.")
		return nil
	}

	keys := make([]string, 0, len(mappings))
	for key := range mappings {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		m := mappings[key]
		lastIndexed := "never"
		if m.LastIndexed != nil {
			lastIndexed = m.LastIndexed.Format("2006-01-02 15:04:05")
		}
		fmt.Printf("%s\n  collection: %s\n  documents: %d\n  last indexed: %s\n",
			key, m.CollectionName, m.DocumentCount, lastIndexed)
	}
	return nil
}

func deleteCommand(c *cli.Context) error {
	source := c.Args().First()
	if source == "" {
		return fmt.Errorf("source argument is required")
	}

	pipeline, err := loadPipeline(c, ragdex.WithMemoryHistory())
	if err != nil {
		return err
	}
	defer pipeline.Close()

	existed, err := pipeline.DeleteSource(context.Background(), source)
	if err != nil {
		return fmt.Errorf("deletion failed: %w", err)
	}
	if !existed {
		return fmt.Errorf("source not found: %s", source)
	}

	fmt.Fprintf(os.Stderr, "Deleted %s\n", source)
	return nil
}

func serveCommand(c *cli.Context) error {
	var cfg *config.Config
	var err error
	if path := c.String("config"); path != "" {
		cfg, err = config.Load(path)
	} else {
		cfg, err = config.LoadDefault()
	}
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	pipeline, err := ragdex.NewPipeline(cfg)
	if err != nil {
		return err
	}
	defer pipeline.Close()

	addr := cfg.Server.Addr
	if flagAddr := c.String("addr"); flagAddr != "" {
		addr = flagAddr
	}

	return server.NewServer(pipeline, addr).Start()
}

func setupLogger(c *cli.Context) error {
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
