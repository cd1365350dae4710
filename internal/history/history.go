// Copyright (c) 2025 Adam Chubbuck <archubbuck@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

// Package history keeps an append-only log of opsctl invocations, one JSON
// record per line. Recording is best-effort and must never fail a command.
package history

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/apex/log"
)

// Record is one invocation.
type Record struct {
	Time     time.Time `json:"time"`
	Command  string    `json:"command"`
	Args     []string  `json:"args,omitempty"`
	ExitCode int       `json:"exitCode"`
}

// Log is a JSONL file of Records.
type Log struct {
	path string
}

func New(path string) *Log {
	return &Log{path: path}
}

// Append writes one record. The parent directory is created on demand.
func (l *Log) Append(r Record) error {
	if err := os.MkdirAll(filepath.Dir(l.path), 0o755); err != nil { //nolint:mnd
		return fmt.Errorf("failed to create history directory: %w", err)
	}

	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600) //nolint:mnd
	if err != nil {
		return fmt.Errorf("failed to open history file: %w", err)
	}
	defer f.Close()

	raw, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("failed to encode history record: %w", err)
	}

	if _, err := f.Write(append(raw, '\n')); err != nil {
		return fmt.Errorf("failed to append history record: %w", err)
	}
	return nil
}

// List returns the most recent records, oldest first, at most limit of them
// (limit <= 0 means all). Unparseable lines are skipped.
func (l *Log) List(limit int) ([]Record, error) {
	f, err := os.Open(l.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to open history file: %w", err)
	}
	defer f.Close()

	var records []Record
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var r Record
		if err := json.Unmarshal(scanner.Bytes(), &r); err != nil {
			log.Debugf("skipping bad history line: %v", err)
			continue
		}
		records = append(records, r)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read history file: %w", err)
	}

	if limit > 0 && len(records) > limit {
		records = records[len(records)-limit:]
	}
	return records, nil
}

// Clear removes the history file. Missing file is a no-op.
func (l *Log) Clear() error {
	if err := os.Remove(l.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove history file: %w", err)
	}
	return nil
}
