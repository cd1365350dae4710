// Copyright (c) 2025 Adam Chubbuck <archubbuck@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/apex/log"
	"github.com/urfave/cli/v3"

	"github.com/archubbuck/cli-ops-sub001/internal/cache"
	"github.com/archubbuck/cli-ops-sub001/internal/config"
	"github.com/archubbuck/cli-ops-sub001/internal/history"
	"github.com/archubbuck/cli-ops-sub001/internal/meta"
)

// InitApp assembles the opsctl command tree and the shared services behind
// it. A cache directory that cannot be created is fatal here; everything
// after init treats cache trouble as a miss.
func InitApp(ctx context.Context, args []string) (*cli.Command, error) {
	sd, _ := os.Getwd()

	// The arg immediately following the binary is the subcommand and also
	// the namespace key for config lookups. Ignore it if it looks like a
	// flag.
	var ns string
	if len(args) > 1 && !strings.HasPrefix(args[1], "-") {
		ns = args[1]
	}

	cfg, _ := config.Load(ns)

	cacheDir, err := config.CacheDir()
	if err != nil {
		return nil, err
	}
	ttlMinutes, _ := config.GetInt("cache.ttl", 60)
	svc := cache.New(cache.Config{
		Dir:        cacheDir,
		DefaultTTL: time.Duration(ttlMinutes) * time.Minute,
	})
	if err := svc.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize cache: %w", err)
	}

	// Opt-in housekeeping: the cache never sweeps on reads, but cache.sweep
	// lets a config ask for a best-effort pass at startup.
	if sweep, _ := config.GetBool("cache.sweep", false); sweep {
		removed := svc.Sweep()
		log.Debugf("startup cache sweep removed %d entries", removed)
	}

	dataDir, err := config.DataDir()
	if err != nil {
		return nil, err
	}

	m := meta.Meta{
		Args:        args,
		Config:      cfg,
		Context:     ctx,
		Cache:       svc,
		History:     history.New(filepath.Join(dataDir, "history.jsonl")),
		StartingDir: sd,
	}

	app := &cli.Command{
		Name:     "opsctl",
		Usage:    "developer workbench: tasks, fetches and repo inspection",
		Metadata: map[string]any{"meta": m},
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "version",
				Aliases:     []string{"v"},
				Usage:       "opsctl version info",
				HideDefault: true,
			},
		},
	}

	app.Commands = append(app.Commands,
		CacheCommandBuilder(app, m),
		FetchCommandBuilder(app, m),
		HistoryCommandBuilder(app, m),
		RepoCommandBuilder(app, m),
		TaskCommandBuilder(app, m),
	)

	// Make sure flags are sorted for the --help text.
	for _, cmd := range app.Commands {
		sort.Slice(cmd.Flags, func(i, j int) bool {
			return cmd.Flags[i].Names()[0] < cmd.Flags[j].Names()[0]
		})
	}

	return app, nil
}

// GetMeta returns the meta.Meta stored in the command's Metadata, falling
// back to the root command for nested subcommands. If missing or of an
// unexpected type, it returns the zero value.
func GetMeta(cmd *cli.Command) meta.Meta {
	if cmd == nil {
		return meta.Meta{}
	}
	if m, ok := cmd.Metadata["meta"].(meta.Meta); ok {
		return m
	}
	if root := cmd.Root(); root != nil && root != cmd {
		if m, ok := root.Metadata["meta"].(meta.Meta); ok {
			return m
		}
	}
	return meta.Meta{}
}
