// Copyright (c) 2025 Adam Chubbuck <archubbuck@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

// opsctl is the main package for the opsctl command line tool. It wires the
// CLI, delegates to internal packages, and serves as the entry point.
package main
