// Copyright (c) 2025 Adam Chubbuck <archubbuck@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/urfave/cli/v3"

	"github.com/archubbuck/cli-ops-sub001/internal/github"
	"github.com/archubbuck/cli-ops-sub001/internal/gitio"
	"github.com/archubbuck/cli-ops-sub001/internal/meta"
	"github.com/archubbuck/cli-ops-sub001/internal/output"
)

// resolveOwnerRepo takes --repo when given, otherwise derives owner/repo
// from the origin remote of the working directory.
func resolveOwnerRepo(ctx context.Context, cmd *cli.Command) (string, string, error) {
	if spec := cmd.String("repo"); spec != "" {
		return gitio.ParseOwnerRepo(spec)
	}

	url, err := gitio.RemoteURL(ctx, ".", "origin")
	if err != nil {
		return "", "", fmt.Errorf("no --repo given and %w", err)
	}
	return gitio.ParseOwnerRepo(url)
}

func RepoStatusAction(ctx context.Context, cmd *cli.Command) error {
	branch, err := gitio.CurrentBranch(ctx, ".")
	if err != nil {
		return err
	}

	statuses, err := gitio.Status(ctx, ".")
	if err != nil {
		return err
	}

	format := cmd.String("output")
	if format == output.FormatText {
		fmt.Printf("On branch %s\n", branch)
		if len(statuses) == 0 {
			fmt.Println("working tree clean")
			return nil
		}
	}

	rows := make([][]string, 0, len(statuses))
	for _, s := range statuses {
		rows = append(rows, []string{s.Code, s.Path})
	}

	v := struct {
		Branch string             `json:"branch"`
		Files  []gitio.FileStatus `json:"files"`
	}{Branch: branch, Files: statuses}

	return output.Render(os.Stdout,
		format, cmd.Bool("titles"), []string{"St", "Path"}, rows, v)
}

func RepoLogAction(ctx context.Context, cmd *cli.Command) error {
	commits, err := gitio.Log(ctx, ".", cmd.Int("limit"))
	if err != nil {
		return err
	}

	rows := make([][]string, 0, len(commits))
	for _, c := range commits {
		rows = append(rows, []string{c.Hash, c.When, c.Author, c.Subject})
	}

	return output.Render(os.Stdout, cmd.String("output"), cmd.Bool("titles"),
		[]string{"Hash", "When", "Author", "Subject"}, rows, commits)
}

func RepoInfoAction(ctx context.Context, cmd *cli.Command) error {
	owner, name, err := resolveOwnerRepo(ctx, cmd)
	if err != nil {
		return err
	}

	m := GetMeta(cmd)
	repo, err := github.NewClient(m.Cache).Repo(ctx, owner, name)
	if err != nil {
		return err
	}

	rows := [][]string{
		{"Repo", repo.FullName},
		{"Description", repo.Description},
		{"Language", repo.Language},
		{"Stars", humanize.Comma(repo.Stars)},
		{"Forks", humanize.Comma(repo.Forks)},
		{"Open issues", humanize.Comma(repo.OpenIssues)},
		{"Updated", repo.UpdatedAt},
	}

	return output.Render(os.Stdout,
		cmd.String("output"), cmd.Bool("titles"), []string{"Field", "Value"}, rows, repo)
}

func RepoIssuesAction(ctx context.Context, cmd *cli.Command) error {
	return repoItemsAction(ctx, cmd, false)
}

func RepoPullsAction(ctx context.Context, cmd *cli.Command) error {
	return repoItemsAction(ctx, cmd, true)
}

func repoItemsAction(ctx context.Context, cmd *cli.Command, pulls bool) error {
	owner, name, err := resolveOwnerRepo(ctx, cmd)
	if err != nil {
		return err
	}

	m := GetMeta(cmd)
	client := github.NewClient(m.Cache)
	state := cmd.String("state")

	var items []github.Item
	if pulls {
		items, err = client.PullRequests(ctx, owner, name, state)
	} else {
		items, err = client.Issues(ctx, owner, name, state)
	}
	if err != nil {
		return err
	}

	if limit := cmd.Int("limit"); limit > 0 && len(items) > limit {
		items = items[:limit]
	}

	rows := make([][]string, 0, len(items))
	for _, it := range items {
		rows = append(rows, []string{
			"#" + strconv.FormatInt(it.Number, 10),
			strings.TrimSpace(it.Title),
			it.State,
			it.Author,
		})
	}

	return output.Render(os.Stdout, cmd.String("output"), cmd.Bool("titles"),
		[]string{"No", "Title", "State", "Author"}, rows, items)
}

// RepoCommandBuilder constructs the "repo" command: the local git and
// GitHub inspector.
func RepoCommandBuilder(app *cli.Command, m meta.Meta) *cli.Command {
	repoFlag := &cli.StringFlag{
		Name:    "repo",
		Aliases: []string{"R"},
		Usage:   "owner/name to inspect, defaults to the origin remote",
		Sources: cli.NewValueSourceChain(
			cli.EnvVar("OPSCTL_REPO"),
		),
	}
	stateFlag := &cli.StringFlag{
		Name:      "state",
		Aliases:   []string{"s"},
		Usage:     "issue/PR state (open, closed, all)",
		Value:     "open",
		Validator: StateValidator,
	}
	limitFlag := &cli.IntFlag{
		Name:    "limit",
		Aliases: []string{"l"},
		Usage:   "limit results returned",
		Value:   30,
	}

	return &cli.Command{
		Name:      "repo",
		Usage:     "git and GitHub inspector",
		UsageText: `opsctl repo (status|log|info|issues|prs) [options]`,
		Metadata:  map[string]any{"meta": m},
		Commands: []*cli.Command{
			{
				Name:   "status",
				Usage:  "branch and working tree status",
				Flags:  NewGlobalFlags("repo", m.Config.Source),
				Action: RepoStatusAction,
			},
			{
				Name:  "log",
				Usage: "recent commits",
				Flags: append([]cli.Flag{limitFlag},
					NewGlobalFlags("repo", m.Config.Source)...),
				Action: RepoLogAction,
			},
			{
				Name:  "info",
				Usage: "GitHub repository metadata",
				Flags: append([]cli.Flag{repoFlag},
					NewGlobalFlags("repo", m.Config.Source)...),
				Action: RepoInfoAction,
			},
			{
				Name:  "issues",
				Usage: "GitHub issues",
				Flags: append([]cli.Flag{repoFlag, stateFlag, limitFlag},
					NewGlobalFlags("repo", m.Config.Source)...),
				Action: RepoIssuesAction,
			},
			{
				Name:  "prs",
				Usage: "GitHub pull requests",
				Flags: append([]cli.Flag{repoFlag, stateFlag, limitFlag},
					NewGlobalFlags("repo", m.Config.Source)...),
				Action: RepoPullsAction,
			},
		},
	}
}
