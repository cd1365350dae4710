// Copyright (c) 2025 Adam Chubbuck <archubbuck@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"os"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/urfave/cli/v3"

	"github.com/archubbuck/cli-ops-sub001/internal/meta"
	"github.com/archubbuck/cli-ops-sub001/internal/output"
)

func HistoryListAction(ctx context.Context, cmd *cli.Command) error {
	m := GetMeta(cmd)

	records, err := m.History.List(cmd.Int("limit"))
	if err != nil {
		return err
	}

	rows := make([][]string, 0, len(records))
	for _, r := range records {
		rows = append(rows, []string{
			humanize.Time(r.Time),
			r.Command,
			strings.Join(r.Args, " "),
			strconv.Itoa(r.ExitCode),
		})
	}

	return output.Render(os.Stdout, cmd.String("output"), cmd.Bool("titles"),
		[]string{"When", "Command", "Args", "Exit"}, rows, records)
}

func HistoryClearAction(ctx context.Context, cmd *cli.Command) error {
	return GetMeta(cmd).History.Clear()
}

// HistoryCommandBuilder constructs the "history" command.
func HistoryCommandBuilder(app *cli.Command, m meta.Meta) *cli.Command {
	return &cli.Command{
		Name:      "history",
		Usage:     "invocation history",
		UsageText: `opsctl history (list|clear) [options]`,
		Metadata:  map[string]any{"meta": m},
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "list recent invocations",
				Flags: append([]cli.Flag{
					&cli.IntFlag{
						Name:    "limit",
						Aliases: []string{"l"},
						Usage:   "most recent N records (0 for all)",
						Value:   25,
					},
				}, NewGlobalFlags("history", m.Config.Source)...),
				Action: HistoryListAction,
			},
			{
				Name:   "clear",
				Usage:  "delete the history file",
				Action: HistoryClearAction,
			},
		},
	}
}
