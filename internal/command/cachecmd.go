// Copyright (c) 2025 Adam Chubbuck <archubbuck@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/urfave/cli/v3"

	"github.com/archubbuck/cli-ops-sub001/internal/meta"
	"github.com/archubbuck/cli-ops-sub001/internal/output"
)

func CacheListAction(ctx context.Context, cmd *cli.Command) error {
	m := GetMeta(cmd)

	entries, err := m.Cache.Entries()
	if err != nil {
		return err
	}

	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, []string{
			e.Name,
			humanize.Bytes(uint64(e.Size)), //nolint:gosec
			humanize.Time(e.ModTime),
		})
	}

	return output.Render(os.Stdout, cmd.String("output"), cmd.Bool("titles"),
		[]string{"Entry", "Size", "Written"}, rows, entries)
}

func CachePathAction(ctx context.Context, cmd *cli.Command) error {
	fmt.Println(GetMeta(cmd).Cache.Dir())
	return nil
}

func CacheClearAction(ctx context.Context, cmd *cli.Command) error {
	return GetMeta(cmd).Cache.Clear()
}

func CacheSweepAction(ctx context.Context, cmd *cli.Command) error {
	c := GetMeta(cmd).Cache
	removed := c.Sweep()
	fmt.Printf("removed %d expired entries, %d remain\n", removed, c.Len())
	return nil
}

// CacheCommandBuilder constructs the "cache" command, the admin surface of
// the shared response cache.
func CacheCommandBuilder(app *cli.Command, m meta.Meta) *cli.Command {
	return &cli.Command{
		Name:      "cache",
		Usage:     "inspect and manage the response cache",
		UsageText: `opsctl cache (ls|path|clear|sweep)`,
		Metadata:  map[string]any{"meta": m},
		Commands: []*cli.Command{
			{
				Name:   "ls",
				Usage:  "list cache entries",
				Flags:  NewGlobalFlags("cache", m.Config.Source),
				Action: CacheListAction,
			},
			{
				Name:   "path",
				Usage:  "print the cache directory",
				Action: CachePathAction,
			},
			{
				Name:   "clear",
				Usage:  "remove every cache entry",
				Action: CacheClearAction,
			},
			{
				Name:   "sweep",
				Usage:  "remove expired and unreadable entries",
				Action: CacheSweepAction,
			},
		},
	}
}
