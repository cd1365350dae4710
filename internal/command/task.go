// Copyright (c) 2025 Adam Chubbuck <archubbuck@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/urfave/cli/v3"

	"github.com/archubbuck/cli-ops-sub001/internal/config"
	"github.com/archubbuck/cli-ops-sub001/internal/meta"
	"github.com/archubbuck/cli-ops-sub001/internal/output"
	"github.com/archubbuck/cli-ops-sub001/internal/task"
)

func taskStore() (*task.Store, error) {
	dataDir, err := config.DataDir()
	if err != nil {
		return nil, err
	}
	path, _ := config.GetString("task.file", filepath.Join(dataDir, "tasks.json"))
	return task.NewStore(path), nil
}

func TaskAddAction(ctx context.Context, cmd *cli.Command) error {
	title := strings.TrimSpace(strings.Join(cmd.Args().Slice(), " "))
	if title == "" {
		return fmt.Errorf("usage: opsctl task add TITLE")
	}

	store, err := taskStore()
	if err != nil {
		return err
	}

	t, err := store.Add(title, cmd.String("priority"))
	if err != nil {
		return err
	}

	fmt.Printf("added task %d: %s\n", t.ID, t.Title)
	return nil
}

func TaskListAction(ctx context.Context, cmd *cli.Command) error {
	store, err := taskStore()
	if err != nil {
		return err
	}

	tasks, err := store.List(cmd.Bool("all"))
	if err != nil {
		return err
	}

	rows := make([][]string, 0, len(tasks))
	for _, t := range tasks {
		state := "pending"
		if t.Done {
			state = "done"
		}
		rows = append(rows, []string{
			strconv.Itoa(t.ID),
			t.Title,
			t.Priority,
			state,
			humanize.Time(t.CreatedAt),
		})
	}

	headers := []string{"ID", "Title", "Priority", "State", "Created"}
	return output.Render(os.Stdout,
		cmd.String("output"), cmd.Bool("titles"), headers, rows, tasks)
}

func TaskDoneAction(ctx context.Context, cmd *cli.Command) error {
	id, err := strconv.Atoi(cmd.Args().First())
	if err != nil {
		return fmt.Errorf("usage: opsctl task done ID")
	}

	store, err := taskStore()
	if err != nil {
		return err
	}

	t, err := store.Done(id)
	if err != nil {
		return err
	}

	fmt.Printf("done: %s\n", t.Title)
	return nil
}

func TaskRemoveAction(ctx context.Context, cmd *cli.Command) error {
	id, err := strconv.Atoi(cmd.Args().First())
	if err != nil {
		return fmt.Errorf("usage: opsctl task rm ID")
	}

	store, err := taskStore()
	if err != nil {
		return err
	}

	return store.Remove(id)
}

// TaskCommandBuilder constructs the "task" command and its subcommands.
func TaskCommandBuilder(app *cli.Command, m meta.Meta) *cli.Command {
	return &cli.Command{
		Name:      "task",
		Usage:     "task manager",
		UsageText: `opsctl task (add|list|done|rm) [options]`,
		Metadata:  map[string]any{"meta": m},
		Commands: []*cli.Command{
			{
				Name:      "add",
				Usage:     "add a task",
				UsageText: `opsctl task add TITLE [--priority P]`,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "priority",
						Aliases: []string{"p"},
						Usage:   "priority label (e.g. high, low)",
					},
				},
				Action: TaskAddAction,
			},
			{
				Name:  "list",
				Usage: "list tasks",
				Flags: append([]cli.Flag{
					&cli.BoolFlag{
						Name:    "all",
						Aliases: []string{"a"},
						Usage:   "include completed tasks",
					},
				}, NewGlobalFlags("task", m.Config.Source)...),
				Action: TaskListAction,
			},
			{
				Name:      "done",
				Usage:     "mark a task complete",
				UsageText: `opsctl task done ID`,
				Action:    TaskDoneAction,
			},
			{
				Name:      "rm",
				Usage:     "remove a task",
				UsageText: `opsctl task rm ID`,
				Action:    TaskRemoveAction,
			},
		},
	}
}
