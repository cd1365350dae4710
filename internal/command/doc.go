// Copyright (c) 2025 Adam Chubbuck <archubbuck@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

// Package command defines the CLI command set for opsctl. It wires flags,
// validators and actions for the subcommands.
package command
