// Copyright (c) 2025 Adam Chubbuck <archubbuck@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

// Package task is the file-backed store behind the task subcommand.
package task

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// ErrNotFound is returned when an ID does not match any task.
var ErrNotFound = errors.New("task not found")

// Task is one tracked item.
type Task struct {
	ID        int        `json:"id"`
	Title     string     `json:"title"`
	Priority  string     `json:"priority,omitempty"`
	Done      bool       `json:"done"`
	CreatedAt time.Time  `json:"createdAt"`
	DoneAt    *time.Time `json:"doneAt,omitempty"`
}

// document is the on-disk form of the whole store.
type document struct {
	NextID int    `json:"nextId"`
	Tasks  []Task `json:"tasks"`
}

// Store reads and writes the task document. Unlike the cache, a corrupt
// store file is an error, not a miss: silently dropping a task list is
// worse than asking the user to look at the file.
type Store struct {
	path string
}

func NewStore(path string) *Store {
	return &Store{path: path}
}

// Add appends a new pending task and returns it.
func (s *Store) Add(title, priority string) (Task, error) {
	doc, err := s.load()
	if err != nil {
		return Task{}, err
	}

	doc.NextID++
	t := Task{
		ID:        doc.NextID,
		Title:     title,
		Priority:  priority,
		CreatedAt: time.Now(),
	}
	doc.Tasks = append(doc.Tasks, t)

	if err := s.save(doc); err != nil {
		return Task{}, err
	}
	return t, nil
}

// List returns tasks in insertion order. Completed tasks are included only
// when includeDone is set.
func (s *Store) List(includeDone bool) ([]Task, error) {
	doc, err := s.load()
	if err != nil {
		return nil, err
	}

	if includeDone {
		return doc.Tasks, nil
	}

	pending := make([]Task, 0, len(doc.Tasks))
	for _, t := range doc.Tasks {
		if !t.Done {
			pending = append(pending, t)
		}
	}
	return pending, nil
}

// Done marks the task complete and returns its updated form. Completing an
// already-done task just refreshes DoneAt.
func (s *Store) Done(id int) (Task, error) {
	doc, err := s.load()
	if err != nil {
		return Task{}, err
	}

	for i := range doc.Tasks {
		if doc.Tasks[i].ID != id {
			continue
		}
		now := time.Now()
		doc.Tasks[i].Done = true
		doc.Tasks[i].DoneAt = &now
		if err := s.save(doc); err != nil {
			return Task{}, err
		}
		return doc.Tasks[i], nil
	}

	return Task{}, fmt.Errorf("%w: %d", ErrNotFound, id)
}

// Remove deletes the task with the given ID.
func (s *Store) Remove(id int) error {
	doc, err := s.load()
	if err != nil {
		return err
	}

	for i := range doc.Tasks {
		if doc.Tasks[i].ID != id {
			continue
		}
		doc.Tasks = append(doc.Tasks[:i], doc.Tasks[i+1:]...)
		return s.save(doc)
	}

	return fmt.Errorf("%w: %d", ErrNotFound, id)
}

func (s *Store) load() (document, error) {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return document{}, nil
		}
		return document{}, fmt.Errorf("failed to read task store: %w", err)
	}

	var doc document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return document{}, fmt.Errorf("failed to parse task store %s: %w", s.path, err)
	}
	return doc, nil
}

// save writes the document whole via temp-file-and-rename so a crash never
// leaves a torn store.
func (s *Store) save(doc document) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil { //nolint:mnd
		return fmt.Errorf("failed to create task store directory: %w", err)
	}

	raw, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode task store: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, raw, os.FileMode(0o600)); err != nil { //nolint:mnd
		return fmt.Errorf("failed to write task store: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("failed to replace task store: %w", err)
	}
	return nil
}
