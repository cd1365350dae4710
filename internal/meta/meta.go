// Copyright (c) 2025 Adam Chubbuck <archubbuck@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package meta

import (
	"context"

	"github.com/archubbuck/cli-ops-sub001/internal/cache"
	"github.com/archubbuck/cli-ops-sub001/internal/config"
	"github.com/archubbuck/cli-ops-sub001/internal/history"
)

// Meta carries the shared services and state that every command needs.
// It is threaded through the command builders explicitly rather than
// living in package-level singletons.
type Meta struct {
	Args        []string
	Config      config.Type
	Context     context.Context
	Cache       *cache.Service
	History     *history.Log
	StartingDir string
}
