// Copyright (c) 2025 Adam Chubbuck <archubbuck@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/archubbuck/cli-ops-sub001/internal/config"
	"github.com/archubbuck/cli-ops-sub001/internal/fetch"
	"github.com/archubbuck/cli-ops-sub001/internal/meta"
	"github.com/archubbuck/cli-ops-sub001/internal/output"
)

func FetchAction(ctx context.Context, cmd *cli.Command) error {
	url := cmd.Args().First()
	if url == "" {
		return fmt.Errorf("usage: opsctl fetch URL")
	}

	m := GetMeta(cmd)

	opts := []fetch.Option{fetch.WithRetries(cmd.Int("retries"))}
	if !cmd.Bool("no-cache") {
		ttl := time.Duration(cmd.Int("ttl")) * time.Minute
		opts = append(opts, fetch.WithCache(m.Cache, ttl))
	}

	resp, err := fetch.NewClient(opts...).Get(ctx, url)
	if err != nil {
		return err
	}

	// text output is just the body; structured formats carry the whole
	// response.
	format := cmd.String("output")
	if format == output.FormatText {
		if cmd.Bool("titles") {
			fmt.Printf("Status: %d\n\n", resp.Status)
		}
		fmt.Print(resp.Body)
		return nil
	}
	return output.Render(os.Stdout, format, cmd.Bool("titles"), nil, nil, resp)
}

// FetchCommandBuilder constructs the "fetch" command, the HTTP demo tool.
func FetchCommandBuilder(app *cli.Command, m meta.Meta) *cli.Command {
	retries, _ := config.GetInt("fetch.retries", 3)
	ttl, _ := config.GetInt("fetch.ttl", 0)

	return &cli.Command{
		Name:      "fetch",
		Usage:     "fetch a URL with retries and response caching",
		UsageText: `opsctl fetch URL [options]`,
		Metadata:  map[string]any{"meta": m},
		Flags: append([]cli.Flag{
			&cli.BoolFlag{
				Name:        "no-cache",
				Usage:       "bypass the response cache",
				HideDefault: true,
			},
			&cli.IntFlag{
				Name:    "retries",
				Aliases: []string{"r"},
				Usage:   "max retries for failed requests",
				Value:   retries,
			},
			&cli.IntFlag{
				Name:  "ttl",
				Usage: "cache TTL in minutes (0 means the cache default)",
				Value: ttl,
			},
		}, NewGlobalFlags("fetch", m.Config.Source)...),
		Action: FetchAction,
	}
}
