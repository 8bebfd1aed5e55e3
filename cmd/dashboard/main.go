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
	"strings"
	"syscall"
	"text/tabwriter"

	"github.com/poiesic/dashboard"
	"github.com/poiesic/dashboard/auth"
	"github.com/poiesic/dashboard/config"
	"github.com/poiesic/dashboard/core"
	"github.com/poiesic/dashboard/search"
	"github.com/poiesic/dashboard/server"
	"github.com/poiesic/dashboard/users"
	"github.com/urfave/cli/v2"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "dashboard",
		Usage: "Admin dashboard backend",
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
				Usage:   "Path to a TOML configuration file",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Run the HTTP server",
				Action: serveCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "listen",
						Usage: "Address to listen on (overrides config)",
					},
					&cli.StringFlag{
						Name:    "db",
						Aliases: []string{"d"},
						Usage:   "Path to BadgerDB database directory (overrides config)",
					},
					&cli.BoolFlag{
						Name:  "in-memory",
						Usage: "Keep all data in memory",
					},
					&cli.StringFlag{
						Name:  "catalog",
						Usage: "YAML file replacing the built-in search catalog",
					},
					&cli.StringSliceFlag{
						Name:  "allowed-origin",
						Usage: "Origin allowed by CORS (repeatable, overrides config)",
					},
				},
			},
			{
				Name:      "search",
				Usage:     "Run an app-bar search against the catalog",
				ArgsUsage: "QUERY",
				Action:    searchCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "catalog",
						Usage: "YAML file replacing the built-in search catalog",
					},
					&cli.BoolFlag{
						Name:  "explain",
						Usage: "Print how each entry was matched",
					},
				},
			},
			{
				Name:  "users",
				Usage: "Inspect dashboard accounts",
				Subcommands: []*cli.Command{
					{
						Name:   "list",
						Usage:  "List every user",
						Action: listUsersCommand,
						Flags: []cli.Flag{
							&cli.StringFlag{
								Name:    "db",
								Aliases: []string{"d"},
								Usage:   "Path to BadgerDB database directory (overrides config)",
							},
						},
					},
				},
			},
		},
	}
}

// loadConfig reads --config when set and applies the flags that override it.
func loadConfig(c *cli.Context) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if path := c.String("config"); path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	var opts []config.ConfigOption
	if c.IsSet("listen") {
		opts = append(opts, config.WithListen(c.String("listen")))
	}
	if c.IsSet("db") {
		opts = append(opts, config.WithDatabasePath(c.String("db")))
	}
	if c.IsSet("in-memory") {
		opts = append(opts, config.WithInMemory(c.Bool("in-memory")))
	}
	if c.IsSet("catalog") {
		opts = append(opts, config.WithCatalogPath(c.String("catalog")))
	}
	if c.IsSet("allowed-origin") {
		opts = append(opts, config.WithAllowedOrigins(c.StringSlice("allowed-origin")...))
	}
	for _, opt := range opts {
		opt(cfg)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func openDatabase(cfg *config.Config) (*dashboard.Database, error) {
	var opts []dashboard.DatabaseOption
	if cfg.InMemory {
		opts = append(opts, dashboard.WithInMemory())
	}
	db, err := dashboard.NewDatabase(cfg.DatabasePath, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return db, nil
}

func serveCommand(c *cli.Context) error {
	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	ranker, err := dashboard.NewRanker(cfg.CatalogPath)
	if err != nil {
		return fmt.Errorf("failed to load catalog: %w", err)
	}

	db, err := openDatabase(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	userOpts := []users.Option{users.WithHashCost(cfg.HashCost)}
	if cfg.PoolSize > 0 {
		userOpts = append(userOpts, users.WithPoolSize(cfg.PoolSize))
	}
	svc, err := db.NewUserService(userOpts...)
	if err != nil {
		return fmt.Errorf("failed to create user service: %w", err)
	}
	defer svc.Release()

	provider, err := db.NewAuthProvider(
		auth.WithSessionTTL(cfg.SessionTTL),
		auth.WithRememberTTL(cfg.RememberTTL),
	)
	if err != nil {
		return fmt.Errorf("failed to create auth provider: %w", err)
	}

	if cfg.SeedAdmin {
		created, err := svc.SeedDefaultAdmin(ctx)
		if err != nil {
			return fmt.Errorf("failed to seed admin: %w", err)
		}
		if created {
			slog.Info("seeded default admin", "email", users.DefaultAdmin().Email)
		}
	}

	srv := server.New(ranker.Func(), provider, svc,
		server.WithAllowedOrigins(cfg.AllowedOrigins...),
		server.WithShutdownTimeout(cfg.ShutdownTimeout),
	)
	return srv.Run(ctx, cfg.Listen)
}

func searchCommand(c *cli.Context) error {
	ranker, err := dashboard.NewRanker(c.String("catalog"))
	if err != nil {
		return fmt.Errorf("failed to load catalog: %w", err)
	}

	query := strings.Join(c.Args().Slice(), " ")
	var monitor search.Monitor
	if c.Bool("explain") {
		monitor = search.NewTraceMonitor(c.App.ErrWriter)
	}
	writeEntries(c.App.Writer, ranker.SearchWithMonitor(query, monitor))
	return nil
}

func listUsersCommand(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	db, err := openDatabase(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	list, err := db.UserRepository().ListUsers(context.Background())
	if err != nil {
		return fmt.Errorf("failed to list users: %w", err)
	}

	w := tabwriter.NewWriter(c.App.Writer, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tUSERNAME\tEMAIL\tROLE\tPLAN\tSTATUS")
	for _, user := range list {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\n",
			user.Id, user.Username, user.Email, user.DisplayRole(), user.CurrentPlan, user.Status)
	}
	return w.Flush()
}

func writeEntries(out io.Writer, entries []core.Entry) {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	for _, entry := range entries {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", entry.Id, entry.Category, entry.Title, entry.URL)
	}
	w.Flush()
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
