// Copyright (c) 2025 Adam Chubbuck <archubbuck@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

// Package gitio shells out to git for the local half of the repo
// subcommand.
package gitio

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"github.com/apex/log"
)

// Commit is one line of git log output.
type Commit struct {
	Hash    string `json:"hash"`
	Author  string `json:"author"`
	When    string `json:"when"`
	Subject string `json:"subject"`
}

// FileStatus is one line of porcelain status output.
type FileStatus struct {
	Code string `json:"code"`
	Path string `json:"path"`
}

func run(ctx context.Context, dir string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = dir

	var out, errOut bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &errOut

	log.Debugf("running git %s", strings.Join(args, " "))
	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(errOut.String())
		if msg == "" {
			msg = err.Error()
		}
		return "", fmt.Errorf("git %s failed: %s", args[0], msg)
	}

	return strings.TrimRight(out.String(), "\n"), nil
}

// CurrentBranch returns the checked-out branch name.
func CurrentBranch(ctx context.Context, dir string) (string, error) {
	return run(ctx, dir, "rev-parse", "--abbrev-ref", "HEAD")
}

// RemoteURL returns the fetch URL of the named remote.
func RemoteURL(ctx context.Context, dir, remote string) (string, error) {
	return run(ctx, dir, "remote", "get-url", remote)
}

// Status parses `git status --porcelain`.
func Status(ctx context.Context, dir string) ([]FileStatus, error) {
	out, err := run(ctx, dir, "status", "--porcelain")
	if err != nil {
		return nil, err
	}

	var statuses []FileStatus
	for _, line := range strings.Split(out, "\n") {
		if len(line) < 4 {
			continue
		}
		statuses = append(statuses, FileStatus{
			Code: strings.TrimSpace(line[:2]),
			Path: line[3:],
		})
	}
	return statuses, nil
}

// Log returns the n most recent commits.
func Log(ctx context.Context, dir string, n int) ([]Commit, error) {
	out, err := run(ctx, dir,
		"log", "--pretty=format:%h%x09%an%x09%ar%x09%s", "-n", strconv.Itoa(n))
	if err != nil {
		return nil, err
	}

	var commits []Commit
	for _, line := range strings.Split(out, "\n") {
		parts := strings.SplitN(line, "\t", 4)
		if len(parts) != 4 {
			continue
		}
		commits = append(commits, Commit{
			Hash:    parts[0],
			Author:  parts[1],
			When:    parts[2],
			Subject: parts[3],
		})
	}
	return commits, nil
}

// ParseOwnerRepo extracts "owner" and "repo" from a GitHub remote URL in
// either SSH or HTTPS form.
func ParseOwnerRepo(url string) (string, string, error) {
	s := strings.TrimSuffix(strings.TrimSpace(url), ".git")

	switch {
	case strings.HasPrefix(s, "git@"):
		// git@github.com:owner/repo
		_, after, ok := strings.Cut(s, ":")
		if !ok {
			break
		}
		s = after
	case strings.Contains(s, "://"):
		// https://github.com/owner/repo
		_, after, _ := strings.Cut(s, "://")
		_, after, ok := strings.Cut(after, "/")
		if !ok {
			break
		}
		s = after
	}

	parts := strings.Split(s, "/")
	if len(parts) == 2 && parts[0] != "" && parts[1] != "" {
		return parts[0], parts[1], nil
	}

	return "", "", fmt.Errorf("cannot determine owner/repo from remote %q", url)
}
