// Copyright (c) 2025 Adam Chubbuck <archubbuck@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

// Package exitcode defines the process exit codes shared by all opsctl
// commands so that scripts can branch on failure stage.
package exitcode

const (
	// OK is returned when the command completed.
	OK = 0
	// InitFailure is returned when the app could not be assembled, for
	// example a bad config file or an unusable cache directory.
	InitFailure = 1
	// RunFailure is returned when the selected command itself failed.
	RunFailure = 2
)
